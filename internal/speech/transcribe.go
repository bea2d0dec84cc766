package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const DefaultTranscribeURL = "https://api-inference.huggingface.co/models/openai/whisper-large-v3"

type transcription struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcriber converts one recorded utterance into text.
type Transcriber struct {
	apiKey     string
	modelURL   string
	logger     *zap.Logger
	HTTPClient *http.Client
}

func NewTranscriber(logger *zap.Logger, apiKey, modelURL string) (*Transcriber, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("transcription api key is required")
	}

	if modelURL = strings.TrimSpace(modelURL); modelURL == "" {
		modelURL = DefaultTranscribeURL
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transcriber{
		apiKey:     apiKey,
		modelURL:   modelURL,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Transcribe returns the recognised text. Empty audio yields "" without a
// request.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	req, err := http.NewRequest(http.MethodPost, t.modelURL, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.apiKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	data, err := doRequest(ctx, t.HTTPClient, req)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	var out transcription
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("transcribe audio: %s", out.Error)
	}

	text := strings.TrimSpace(out.Text)
	t.logger.Debug("audio transcribed", zap.Int("bytes", len(audio)), zap.Int("chars", len(text)))

	return text, nil
}
