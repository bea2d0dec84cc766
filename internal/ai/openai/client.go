// Package openai adapts the OpenAI chat completions API to ai.Generator.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/utils"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxLogLen = 200
)

type completions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Generator struct {
	completions completions
	model       string
	logger      *zap.Logger
}

// NewGenerator creates a chat completions backed generator. The SDK performs
// its own retries for transient failures: up to maxRetries after the first
// call, none when maxRetries is zero.
func NewGenerator(apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}

	client := openai.NewClient(opts...)

	return &Generator{
		completions: &client.Chat.Completions,
		model:       model,
		logger:      logger,
	}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.completions == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	g.logger.Debug("openai chat completion request",
		zap.String("prompt_preview", utils.TruncateForLog(prompt, defaultMaxLogLen)),
	)

	completion, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(g.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(completion.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
