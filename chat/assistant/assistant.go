// Package assistant wraps the chat-completion backend used when the
// deterministic resolver cannot handle a message.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://generativelanguage.googleapis.com/v1beta/openai"`
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model       string        `envconfig:"MODEL" split_words:"true" default:"gemini-2.0-flash"`
	MaxTokens   int64         `envconfig:"MAX_TOKENS" split_words:"true" default:"1000"`
	Temperature float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.6"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Assistant talks to an OpenAI-compatible completion endpoint.
type Assistant struct {
	client *openaisdk.Client
	cfg    Config
}

var _ contractx.Responder = (*Assistant)(nil)

func New(cfg Config) (*Assistant, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("assistant: api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	client := openaisdk.NewClient(opts...)
	return &Assistant{client: &client, cfg: cfg}, nil
}

// Respond sends the user message with a storefront system prompt and
// returns the raw model reply.
func (a *Assistant) Respond(ctx context.Context, message string, pctx contractx.PromptContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	completion, err := a.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(a.cfg.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt(pctx)),
			openaisdk.UserMessage(message),
		},
		MaxTokens:   openaisdk.Int(a.cfg.MaxTokens),
		Temperature: openaisdk.Float(a.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("assistant: completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("assistant: empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}
