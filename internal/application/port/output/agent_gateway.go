package output

import (
	"context"
	"time"
)

// Role identifies the author of a conversation message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of the conversation sent to the agent
type Message struct {
	Role     Role
	Content  string
	ToolName string // set when Role is RoleTool
}

// ToolSpec describes a tool the agent may request
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema fragment for the tool input
}

// ToolCall is a single tool invocation requested by the agent.
// Calls are executed sequentially in the order they appear.
type ToolCall struct {
	Name  string
	Input string // raw JSON argument object
}

// Reply is the agent's answer to one conversation turn
type Reply struct {
	Text      string
	ToolCalls []ToolCall
	AgentType string
	Duration  time.Duration
}

// AgentGateway is the interface for AI agent backends.
// This abstraction allows different backends (Claude CLI, OpenAI, mock).
type AgentGateway interface {
	// Send submits the conversation so far and returns the agent's reply
	Send(ctx context.Context, conversation []Message, tools []ToolSpec) (*Reply, error)

	// HealthCheck verifies if the backend is available
	HealthCheck(ctx context.Context) error

	// Name returns the backend identifier
	Name() string
}
