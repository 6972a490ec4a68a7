package agent

import (
	"context"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
)

// MockGateway is a deterministic offline backend used by tests and by
// `kaiwa doctor --offline`. A user message of the form
// `!tool <name> <json>` produces a matching tool call; anything else
// is echoed back.
type MockGateway struct{}

// NewMockGateway creates a mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Send echoes the last user message, or emits the requested tool call
func (g *MockGateway) Send(ctx context.Context, conversation []output.Message, tools []output.ToolSpec) (*output.Reply, error) {
	last := ""
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Role == output.RoleUser {
			last = conversation[i].Content
			break
		}
	}

	reply := &output.Reply{AgentType: g.Name(), Duration: time.Millisecond}

	if rest, ok := strings.CutPrefix(last, "!tool "); ok {
		name, input, _ := strings.Cut(rest, " ")
		if input == "" {
			input = "{}"
		}
		reply.Text = "running tool " + name
		reply.ToolCalls = []output.ToolCall{{Name: name, Input: input}}
		return reply, nil
	}

	reply.Text = "mock: " + last
	return reply, nil
}

// HealthCheck always succeeds; the mock has no dependencies
func (g *MockGateway) HealthCheck(ctx context.Context) error {
	return nil
}

// Name returns the backend identifier
func (g *MockGateway) Name() string {
	return "mock"
}
