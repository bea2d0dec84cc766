package jobsearch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"

	retryBaseDelay = 300 * time.Millisecond
	retryMaxDelay  = 3 * time.Second
)

var wait = utils.WaitFor

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.status)
}

func (e *statusError) temporary() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// getJSON makes a GET request and decodes the JSON body into target. Network
// errors and 429/5xx responses are retried with backoff.
func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	attempts := utils.Attempts(c.MaxRetries)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.getJSONOnce(ctx, rawURL, q, target)
		if lastErr == nil {
			return nil
		}

		if !retryable(ctx, lastErr) || attempt == attempts {
			break
		}

		delay := utils.Backoff(attempt, retryBaseDelay, retryMaxDelay)
		c.logger.Debug("retrying job search request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		if err := wait(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

func (c *Client) getJSONOnce(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.temporary()
	}

	var ue *url.Error
	return errors.As(err, &ue)
}
