package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

type stubCompletions struct {
	completion *openai.ChatCompletion
	err        error
	calls      int
	lastModel  string
}

func (s *stubCompletions) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.calls++
	s.lastModel = string(body.Model)
	return s.completion, s.err
}

func TestGenerateContent(t *testing.T) {
	stub := &stubCompletions{completion: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: "  Consider data science.  "},
		}},
	}}
	g := &Generator{completions: stub, model: "gpt-test", logger: zap.NewNop()}

	out, err := g.GenerateContent(context.Background(), "what should I study")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Consider data science." {
		t.Fatalf("unexpected output: %q", out)
	}
	if stub.lastModel != "gpt-test" {
		t.Fatalf("unexpected model: %q", stub.lastModel)
	}
}

func TestGenerateContentErrors(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompletions
	}{
		{name: "api error", stub: &stubCompletions{err: errors.New("boom")}},
		{name: "no choices", stub: &stubCompletions{completion: &openai.ChatCompletion{}}},
		{name: "blank content", stub: &stubCompletions{completion: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: " "}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Generator{completions: tt.stub, model: "gpt-test", logger: zap.NewNop()}
			if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator("  ", "", 0, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
