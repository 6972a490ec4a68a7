package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/agent"
	toolgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/tool"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

func newRich(t *testing.T, agent *erroringAgent, input string) (*RichSession, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	s := NewRichSession(agent, toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		WithRichInput(strings.NewReader(input)),
		WithRichOutput(&out),
	)
	return s, &out
}

func TestRichSession_ExitWithoutEscalation(t *testing.T) {
	var out strings.Builder
	s := NewRichSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		WithRichInput(strings.NewReader("exit\n")),
		WithRichOutput(&out),
	)

	escalated := s.Run(context.Background())

	assert.False(t, escalated)
	assert.False(t, s.IsActive())
	assert.Contains(t, out.String(), "kaiwa session")
}

func TestRichSession_EchoTurn(t *testing.T) {
	var out strings.Builder
	s := NewRichSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		WithRichInput(strings.NewReader("hello\nexit\n")),
		WithRichOutput(&out),
	)

	escalated := s.Run(context.Background())

	assert.False(t, escalated)
	assert.Contains(t, out.String(), "mock: hello")
}

func TestRichSession_EscalatesOnCriticalFault(t *testing.T) {
	agent := &erroringAgent{err: fault.New("agent crashed",
		fault.WithCategory(model.CategoryNetwork),
		fault.WithSeverity(model.SeverityCritical),
		fault.WithRecoverable(false),
	)}
	s, out := newRich(t, agent, "do something\n")

	escalated := s.Run(context.Background())

	assert.True(t, escalated)
	assert.Contains(t, out.String(), "switching to fallback mode")
}

func TestRichSession_NonCriticalFaultKeepsRunning(t *testing.T) {
	agent := &erroringAgent{err: errors.New("connection refused")}
	s, out := newRich(t, agent, "hello\nexit\n")

	escalated := s.Run(context.Background())

	assert.False(t, escalated)
	assert.NotContains(t, out.String(), "switching to fallback mode")
}

func TestRichSession_HistoryCommand(t *testing.T) {
	var out strings.Builder
	s := NewRichSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		WithRichInput(strings.NewReader("first question\nhistory\nexit\n")),
		WithRichOutput(&out),
	)

	s.Run(context.Background())

	assert.Contains(t, out.String(), "  first question")
}

func TestRichSession_StatsCommand(t *testing.T) {
	agent := &erroringAgent{err: errors.New("connection refused")}
	s, out := newRich(t, agent, "hello\nstats\nexit\n")

	s.Run(context.Background())

	assert.Contains(t, out.String(), "NETWORK: 1")
}

func TestRichSession_SessionID(t *testing.T) {
	var out strings.Builder
	s := NewRichSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		WithRichInput(strings.NewReader("exit\n")),
		WithRichOutput(&out),
	)

	require.NotEmpty(t, s.SessionID())
	s.Run(context.Background())
	assert.Contains(t, out.String(), shortID(s.SessionID()))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("123456789abc"))
	assert.Equal(t, "short", shortID("short"))
}
