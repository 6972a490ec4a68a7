package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
	"github.com/YoshitsuguKoike/kaiwa/internal/interface/external/claudecli"
)

// ClaudeCLIGateway implements AgentGateway using the claude binary.
// The binary dispatches its own tools, so local ToolSpecs are not
// forwarded and replies never carry tool calls.
type ClaudeCLIGateway struct {
	runner claudecli.Runner
}

// NewClaudeCLIGateway creates a Claude CLI gateway
func NewClaudeCLIGateway(bin string, timeout time.Duration) *ClaudeCLIGateway {
	if bin == "" {
		bin = "claude"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ClaudeCLIGateway{
		runner: claudecli.Runner{Bin: bin, Timeout: timeout},
	}
}

// Send flattens the conversation into one prompt and runs the binary
func (g *ClaudeCLIGateway) Send(ctx context.Context, conversation []output.Message, tools []output.ToolSpec) (*output.Reply, error) {
	start := time.Now()
	result, err := g.runner.Run(ctx, FlattenConversation(conversation))
	if err != nil {
		return nil, fmt.Errorf("claude CLI send failed: %w", err)
	}
	return &output.Reply{
		Text:      result,
		AgentType: g.Name(),
		Duration:  time.Since(start),
	}, nil
}

// HealthCheck verifies the claude binary is on PATH
func (g *ClaudeCLIGateway) HealthCheck(ctx context.Context) error {
	return g.runner.Available()
}

// Name returns the backend identifier
func (g *ClaudeCLIGateway) Name() string {
	return "claude-cli"
}

// FlattenConversation renders the conversation as a role-prefixed
// transcript, the form the print-mode binary accepts.
func FlattenConversation(conversation []output.Message) string {
	var b strings.Builder
	for _, m := range conversation {
		switch m.Role {
		case output.RoleSystem:
			b.WriteString("System: ")
		case output.RoleAssistant:
			b.WriteString("Assistant: ")
		case output.RoleTool:
			fmt.Fprintf(&b, "Tool result (%s): ", m.ToolName)
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}
