package jobsearch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

type searchResponse struct {
	Status string           `json:"status"`
	Data   []map[string]any `json:"data"`
}

func (c *Client) search(ctx context.Context, query, location string) (*Listings, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("location", location)
	q.Set("page", "1")
	q.Set("num_pages", "1")

	var response searchResponse
	if err := c.getJSON(ctx, c.APIURL+searchPath, q, &response); err != nil {
		return nil, err
	}

	var items []*Listing
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &items,
		TagName:  "json",
		// The API occasionally returns numbers or booleans for text fields.
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(response.Data); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	listings := &Listings{Items: make([]*Listing, 0, len(items))}
	for _, item := range items {
		// JSearch occasionally pads data with null entries.
		if item == nil {
			continue
		}
		listings.Items = append(listings.Items, item)
	}

	return listings, nil
}
