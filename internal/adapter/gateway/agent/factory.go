package agent

import (
	"fmt"
	"os"
	"time"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
)

// NewAgentGateway creates an agent gateway based on agent type.
// Supported types: claude-cli, openai, mock.
// Note: User is responsible for ensuring the backend is available
// (e.g. claude CLI installed, OPENAI_API_KEY set).
func NewAgentGateway(agentType string, bin string, timeout time.Duration) (output.AgentGateway, error) {
	switch agentType {
	case "claude-cli":
		return NewClaudeCLIGateway(bin, timeout), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set for openai")
		}
		return NewOpenAIGateway(apiKey, os.Getenv("OPENAI_MODEL")), nil

	case "mock":
		return NewMockGateway(), nil

	default:
		return nil, fmt.Errorf("unknown agent type: %s (supported: claude-cli, openai, mock)", agentType)
	}
}

// GetDefaultAgent returns the default agent type to use
func GetDefaultAgent() string {
	return "claude-cli"
}
