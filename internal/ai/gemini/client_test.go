package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	mu      sync.Mutex
	queue   []fakeResponse
	prompts []string
	models  []string
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, content := range contents {
		for _, part := range content.Parts {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	f.models = append(f.models, model)

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func stubWait(t *testing.T) *[]time.Duration {
	t.Helper()
	var waited []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		waited = append(waited, d)
		return nil
	}
	t.Cleanup(func() { wait = original })
	return &waited
}

func TestGeneratorReturnsJoinedText(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse(" first ", "", "second"), nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "  prompt  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "first\nsecond" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(models.prompts) != 1 || models.prompts[0] != "prompt" {
		t.Fatalf("unexpected prompts: %+v", models.prompts)
	}
	if models.models[0] != "gemini-pro" {
		t.Fatalf("unexpected model: %s", models.models[0])
	}
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	waited := stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse("retry ok"), nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	output, err := g.GenerateContent(context.Background(), "message")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if len(models.prompts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.prompts))
	}
	if len(*waited) != 1 {
		t.Fatalf("expected a single backoff wait, got %v", *waited)
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 2, logger: zap.NewNop()}

	_, err := g.GenerateContent(context.Background(), "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if len(models.prompts) != 3 {
		t.Fatalf("expected first call plus 2 retries, got %d", len(models.prompts))
	}
}

func TestGeneratorZeroRetriesMakesSingleCall(t *testing.T) {
	waited := stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"})

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 0, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error")
	}
	if len(models.prompts) != 1 {
		t.Fatalf("expected single call, got %d", len(models.prompts))
	}
	if len(*waited) != 0 {
		t.Fatalf("did not expect backoff, got %v", *waited)
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if len(models.prompts) != 1 {
		t.Fatalf("expected single call, got %d", len(models.prompts))
	}
}

func TestGeneratorHonoursShortQuotaDelay(t *testing.T) {
	waited := stubWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusTooManyRequests, Message: "retry in 2s"})
	models.enqueue(textResponse("ok"), nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*waited) != 1 || (*waited)[0] != 2*time.Second {
		t.Fatalf("expected to wait 2s, got %v", *waited)
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 3, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error")
	}
	if len(models.prompts) != 1 {
		t.Fatalf("expected single call, got %d", len(models.prompts))
	}
}

func TestGeneratorRejectsEmptyResponse(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("   "), nil)

	g := &Generator{models: models, model: "gemini-pro", maxRetries: 1, logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	g := &Generator{models: &fakeModels{}, model: "gemini-pro", logger: zap.NewNop()}

	if _, err := g.GenerateContent(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}
