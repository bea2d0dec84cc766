// Package classifier sends resume text to a hosted zero-shot classification
// model and returns the ranked career labels.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/utils"
)

const (
	DefaultModelURL = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	retryBaseDelay    = 500 * time.Millisecond
	retryMaxDelay     = 4 * time.Second
	maxErrorBody      = 512
)

// CandidateLabels are the careers a resume is scored against.
var CandidateLabels = []string{
	"Software Engineering",
	"Data Science",
	"Design",
	"Marketing",
	"Finance",
	"Education",
	"Healthcare",
}

var wait = utils.WaitFor

// Result holds either index-aligned labels and scores or a provider error.
type Result struct {
	Labels []string  `json:"labels,omitempty"`
	Scores []float64 `json:"scores,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (r Result) Failed() bool {
	return r.Error != ""
}

// Top returns the best scoring label.
func (r Result) Top() (string, float64, bool) {
	if r.Failed() || len(r.Labels) == 0 || len(r.Scores) == 0 {
		return "", 0, false
	}
	return r.Labels[0], r.Scores[0], true
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type Client struct {
	apiKey     string
	modelURL   string
	labels     []string
	logger     *zap.Logger
	HTTPClient *http.Client
	// MaxRetries is the number of retries after the first request.
	MaxRetries int
}

// New creates a classifier client. modelURL defaults to DefaultModelURL.
func New(logger *zap.Logger, apiKey, modelURL string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("classifier api key is required")
	}

	if modelURL = strings.TrimSpace(modelURL); modelURL == "" {
		modelURL = DefaultModelURL
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:     apiKey,
		modelURL:   modelURL,
		labels:     CandidateLabels,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		MaxRetries: defaultMaxRetries,
	}, nil
}

// Classify scores text against the candidate labels. Failures never escape as
// Go errors; they are returned in Result.Error.
func (c *Client) Classify(ctx context.Context, text string) Result {
	body, err := json.Marshal(request{
		Inputs:     text,
		Parameters: parameters{CandidateLabels: c.labels},
	})
	if err != nil {
		return Result{Error: fmt.Sprintf("encode request: %v", err)}
	}

	attempts := utils.Attempts(c.MaxRetries)

	var result Result
	for attempt := 1; attempt <= attempts; attempt++ {
		var retry bool
		result, retry = c.post(ctx, body)
		if !retry || attempt == attempts || ctx.Err() != nil {
			break
		}

		delay := utils.Backoff(attempt, retryBaseDelay, retryMaxDelay)
		c.logger.Debug("retrying classification request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("error", result.Error),
		)
		if err := wait(ctx, delay); err != nil {
			return Result{Error: err.Error()}
		}
	}

	if result.Failed() {
		c.logger.Warn("resume classification failed", zap.String("error", result.Error))
	}

	return result
}

// post performs a single request and reports whether the failure is transient.
func (c *Client) post(ctx context.Context, body []byte) (Result, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(body))
	if err != nil {
		return Result{Error: err.Error()}, false
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{Error: err.Error()}, true
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Error: err.Error()}, true
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Result{Error: fmt.Sprintf("bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), maxErrorBody))}, transient(resp.StatusCode)
		}
		return Result{Error: fmt.Sprintf("decode response: %v", err)}, false
	}

	if result.Failed() {
		// Provider errors are handed back verbatim; a loading model answers 503.
		return result, transient(resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{Error: fmt.Sprintf("bad status: %s", resp.Status)}, transient(resp.StatusCode)
	}

	if len(result.Labels) != len(result.Scores) {
		return Result{Error: fmt.Sprintf("malformed response: %d labels, %d scores", len(result.Labels), len(result.Scores))}, false
	}

	return result, false
}

func transient(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
