package chordsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type chordResponse struct {
	Chords []string `json:"chords"`
}

type Client struct {
	BaseURL string
	Cache   *Cache

	http *http.Client
	log  *zap.Logger
	now  func() time.Time
}

func NewClient(baseURL string, cache *Cache, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/") + "/",
		Cache:   cache,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
		now:     time.Now,
	}
}

// FetchChords returns the chord names served by the remote API, using the
// on-disk cache while it is fresh.
func (c *Client) FetchChords(ctx context.Context) ([]string, error) {
	if c.Cache != nil {
		if chords, ok := c.Cache.Get(c.now(), c.BaseURL); ok {
			c.log.Debug("chords served from cache", zap.Int("count", len(chords)))
			return chords, nil
		}
	}
	chords, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.Cache != nil {
		if err := c.Cache.Put(c.now(), c.BaseURL, chords); err != nil {
			c.log.Warn("failed to cache chords", zap.Error(err))
		}
	}
	return chords, nil
}

func (c *Client) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chords: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("chords api error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data chordResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode chords response: %w", err)
	}
	c.log.Debug("chords fetched",
		zap.String("url", c.BaseURL),
		zap.Int("count", len(data.Chords)),
		zap.Duration("took", c.now().Sub(start)))
	if data.Chords == nil {
		data.Chords = []string{}
	}
	return data.Chords, nil
}
