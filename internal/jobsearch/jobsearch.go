// Package jobsearch is a thin client for the JSearch job listings API
// published on RapidAPI.
package jobsearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultLocation = "India"
	// MaxListings is the number of listings shown in a chat reply.
	MaxListings = 5

	searchPath        = "/search"
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2

	NoJobsMessage   = "🔍 No jobs found for this query."
	listingsHeading = "Here are some job openings:"
	failurePrefix   = "⚠ Failed to fetch jobs: "
)

type Client struct {
	apiKey     string
	host       string
	logger     *zap.Logger
	filters    []Filter
	HTTPClient *http.Client
	// APIURL overrides the https://{host} base, used by tests.
	APIURL string
	// MaxRetries is the number of retries after the first request.
	MaxRetries int
}

// New creates a client for the given RapidAPI host. Both the key and the host
// are required.
func New(logger *zap.Logger, apiKey, host string, filters ...Filter) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	host = strings.TrimSpace(host)

	if apiKey == "" {
		return nil, errors.New("rapidapi key is required")
	}
	if host == "" {
		return nil, errors.New("rapidapi host is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:  apiKey,
		host:    host,
		logger:  logger,
		filters: filters,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		APIURL:     fmt.Sprintf("https://%s", host),
		MaxRetries: defaultMaxRetries,
	}, nil
}

// Search looks up listings for query and renders them as a chat reply. It
// never fails: errors are reported inside the returned text.
func (c *Client) Search(ctx context.Context, query, location string) string {
	listings, err := c.Listings(ctx, query, location)
	if err != nil {
		c.logger.Warn("job search failed", zap.String("query", query), zap.Error(err))
		return failurePrefix + err.Error()
	}

	if listings.Len() == 0 {
		return NoJobsMessage
	}

	return listings.Format(MaxListings)
}

// Listings fetches the first page of listings for query and applies the
// configured filters.
func (c *Client) Listings(ctx context.Context, query, location string) (*Listings, error) {
	if location = strings.TrimSpace(location); location == "" {
		location = DefaultLocation
	}

	listings, err := c.search(ctx, query, location)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got listings from job search",
		zap.String("location", location),
		zap.Int("count", listings.Len()),
	)

	return runFilters(ctx, c.logger, c.filters, listings)
}
