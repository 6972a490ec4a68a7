package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/agent"
	toolgw "github.com/YoshitsuguKoike/kaiwa/internal/adapter/gateway/tool"
	"github.com/YoshitsuguKoike/kaiwa/internal/adapter/presenter/console"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/dto"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
	"github.com/YoshitsuguKoike/kaiwa/internal/application/service"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model"
	"github.com/YoshitsuguKoike/kaiwa/internal/domain/model/fault"
)

// failingStrategy never recovers and offers no fallback.
type failingStrategy struct{}

func (failingStrategy) CanRecover(f *fault.Fault) bool                          { return false }
func (failingStrategy) Recover(ctx context.Context, f *fault.Fault) bool        { return false }
func (failingStrategy) FallbackAction(f *fault.Fault) func(ctx context.Context) { return nil }

// erroringAgent fails every Send with the configured error.
type erroringAgent struct {
	err error
}

func (a *erroringAgent) Send(ctx context.Context, conversation []output.Message, tools []output.ToolSpec) (*output.Reply, error) {
	return nil, a.err
}
func (a *erroringAgent) HealthCheck(ctx context.Context) error { return nil }
func (a *erroringAgent) Name() string                          { return "stub" }

func newSessionHandler(t *testing.T) *service.FaultHandler {
	t.Helper()
	h := service.NewFaultHandler(service.HandlerConfig{
		MaxRetries: 1,
		RetryDelay: 0,
		LogErrors:  false,
		StateDir:   t.TempDir(),
	}, console.New(io.Discard, true), nil)
	h.RegisterStrategy(model.CategoryNetwork, failingStrategy{})
	return h
}

func newDegraded(t *testing.T, agent output.AgentGateway, input string) (*DegradedSession, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	s := NewDegradedSession(agent, toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		dto.DegradedConfig{DisableColors: true},
		WithInput(strings.NewReader(input)),
		WithOutput(&out),
	)
	return s, &out
}

func TestDegradedSession_ExitCommand(t *testing.T) {
	s, out := newDegraded(t, agentgw.NewMockGateway(), "exit\n")

	require.NoError(t, s.Start(context.Background()))

	assert.False(t, s.IsActive())
	assert.Contains(t, out.String(), "degraded mode")
	assert.Contains(t, out.String(), "session closed")
}

func TestDegradedSession_FullWidthExit(t *testing.T) {
	s, _ := newDegraded(t, agentgw.NewMockGateway(), "ｅｘｉｔ\n")

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsActive())
}

func TestDegradedSession_EOFEndsLoop(t *testing.T) {
	s, out := newDegraded(t, agentgw.NewMockGateway(), "")

	require.NoError(t, s.Start(context.Background()))

	assert.False(t, s.IsActive())
	assert.Contains(t, out.String(), "session closed")
}

func TestDegradedSession_DoubleStartRejected(t *testing.T) {
	s, _ := newDegraded(t, agentgw.NewMockGateway(), "exit\n")
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	assert.Error(t, s.Start(context.Background()))
}

func TestDegradedSession_EchoTurn(t *testing.T) {
	s, out := newDegraded(t, agentgw.NewMockGateway(), "hello there\nexit\n")

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), "mock: hello there")
}

func TestDegradedSession_ToolDispatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "notes.txt", []byte("remember the milk"), 0644))

	var out strings.Builder
	s := NewDegradedSession(agentgw.NewMockGateway(), toolgw.NewGateway(fs), newSessionHandler(t),
		dto.DegradedConfig{DisableColors: true},
		WithInput(strings.NewReader("!tool read_file {\"path\":\"notes.txt\"}\nexit\n")),
		WithOutput(&out),
	)

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), "[read_file] remember the milk")
}

func TestDegradedSession_ToolFailureStaysInLoop(t *testing.T) {
	var out strings.Builder
	s := NewDegradedSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		dto.DegradedConfig{DisableColors: true},
		WithInput(strings.NewReader("!tool read_file {\"path\":\"missing.txt\"}\nstill here\nexit\n")),
		WithOutput(&out),
	)

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), "tool read_file failed")
	assert.Contains(t, out.String(), "mock: still here", "the loop must survive a failed tool call")
}

func TestDegradedSession_AgentFailureStaysInLoop(t *testing.T) {
	agent := &erroringAgent{err: errors.New("connection refused")}
	s, out := newDegraded(t, agent, "hello\nexit\n")

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), "error: connection refused")
	assert.Contains(t, out.String(), "session closed")
}

func TestDegradedSession_NoColorsWhenDisabled(t *testing.T) {
	s, out := newDegraded(t, agentgw.NewMockGateway(), "exit\n")

	require.NoError(t, s.Start(context.Background()))

	assert.NotContains(t, out.String(), "\x1b[")
}

func TestDegradedSession_ColorsWhenEnabled(t *testing.T) {
	var out strings.Builder
	s := NewDegradedSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		dto.DegradedConfig{},
		WithInput(strings.NewReader("exit\n")),
		WithOutput(&out),
	)

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), ansiYellow)
}

func TestDegradedSession_ClearResetsConversation(t *testing.T) {
	s, out := newDegraded(t, agentgw.NewMockGateway(), "hello\nclear\nexit\n")

	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, out.String(), "conversation cleared")
	assert.Empty(t, s.conversation)
}

func TestDegradedSession_ShutdownIdempotent(t *testing.T) {
	s, _ := newDegraded(t, agentgw.NewMockGateway(), "exit\n")
	require.NoError(t, s.Start(context.Background()))

	assert.NotPanics(t, func() {
		s.Shutdown()
		s.Shutdown()
	})
}

func TestGetInput(t *testing.T) {
	var out strings.Builder
	s := NewDegradedSession(agentgw.NewMockGateway(), toolgw.NewGateway(afero.NewMemMapFs()), newSessionHandler(t),
		dto.DegradedConfig{},
		WithInput(strings.NewReader("first line\r\nsecond")),
		WithOutput(&out),
	)

	line, err := s.GetInput("> ")
	require.NoError(t, err)
	assert.Equal(t, "first line", line)
	assert.Contains(t, out.String(), "> ")

	// a final line without newline is still returned
	line, err = s.GetInput("> ")
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = s.GetInput("> ")
	assert.Error(t, err)
}
