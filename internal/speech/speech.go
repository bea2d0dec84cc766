// Package speech adapts hosted speech-to-text and text-to-speech services.
package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spigell/pathfinder/internal/utils"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

func readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), maxErrorBody))
	}

	return data, nil
}

func doRequest(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readBody(resp)
}
