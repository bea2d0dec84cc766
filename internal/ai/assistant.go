package ai

import (
	"context"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Generator turns a fully assembled prompt into a free-text reply.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
