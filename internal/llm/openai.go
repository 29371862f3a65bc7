package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI talks to any provider that speaks the OpenAI chat completions wire
// format. The base URL points it at the deployment's provider.
type OpenAI struct {
	client openai.Client
}

func NewOpenAI(baseURL, apiKey string) *OpenAI {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAI{client: openai.NewClient(opts...)}
}

func (o *OpenAI) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}

	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: params,
		Model:    model,
	})
	if err != nil {
		slog.Error("openai error: chat completions failed", "model", model, "error", err)
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(res.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return res.Choices[0].Message.Content, nil
}
