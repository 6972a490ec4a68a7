package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
)

// OpenAIGateway implements AgentGateway using the OpenAI chat completion
// API with function tools.
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

// NewOpenAIGateway creates an OpenAI gateway
func NewOpenAIGateway(apiKey string, model string) *OpenAIGateway {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGateway{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Send submits the conversation and maps any tool calls in the reply
func (g *OpenAIGateway) Send(ctx context.Context, conversation []output.Message, tools []output.ToolSpec) (*output.Reply, error) {
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: toOpenAIMessages(conversation),
		Tools:    toOpenAITools(tools),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	choice := resp.Choices[0].Message
	reply := &output.Reply{
		Text:      choice.Content,
		AgentType: g.Name(),
		Duration:  time.Since(start),
	}
	for _, tc := range choice.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, output.ToolCall{
			Name:  tc.Function.Name,
			Input: tc.Function.Arguments,
		})
	}
	return reply, nil
}

// HealthCheck lists models to verify the key and connectivity
func (g *OpenAIGateway) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}

// Name returns the backend identifier
func (g *OpenAIGateway) Name() string {
	return "openai"
}

func toOpenAIMessages(conversation []output.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(conversation))
	for _, m := range conversation {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case output.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case output.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case output.RoleTool:
			// Tool results travel as user messages; kaiwa does not track
			// the tool_call_id the strict tool role requires.
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Tool result (%s): %s", m.ToolName, m.Content),
			})
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}

func toOpenAITools(tools []output.ToolSpec) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		params, err := json.Marshal(t.Parameters)
		if err != nil {
			params = []byte(`{"type":"object"}`)
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}
	return out
}
