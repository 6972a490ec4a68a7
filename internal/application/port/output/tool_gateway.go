package output

import "context"

// ToolGateway exposes the local tools available to the agent.
// Invocations may fail; the caller routes failures through the fault handler.
type ToolGateway interface {
	// ListTools returns the specs of every registered tool
	ListTools() []ToolSpec

	// Invoke runs one tool with a raw JSON input and returns its output
	Invoke(ctx context.Context, name string, input string) (string, error)
}
