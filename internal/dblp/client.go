// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dblp queries the DBLP publication search API and normalizes its
// responses into candidate records. The client is rate-limited: DBLP
// throttles aggressively and a banned client fails every reference at once.
package dblp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/Ad1th/Reference-Halucinations/internal/httputil"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Cache is an optional lookup cache consulted before the network. Put
// failures are ignored; the cache is an optimization, not a source of truth.
type Cache interface {
	Get(query string) ([]types.Candidate, bool)
	Put(query string, candidates []types.Candidate) error
}

// Client is a rate-limited HTTP client for the DBLP search endpoint.
type Client struct {
	cfg        types.SearchConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (tests use the httptest client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache attaches a lookup cache.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a DBLP client from cfg. Zero-valued config fields fall
// back to the defaults in types.DefaultConfig.
func NewClient(cfg types.SearchConfig, opts ...Option) *Client {
	def := types.DefaultConfig().Search
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.MaxHits <= 0 {
		cfg.MaxHits = def.MaxHits
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = def.MinRequestInterval
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.MinRequestInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries DBLP and returns candidate publications for query. A
// cached lookup bypasses the network entirely. Failures surface as errors;
// the resolver downgrades them to an empty candidate list for the affected
// reference.
func (c *Client) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	if c.cache != nil {
		if cands, ok := c.cache.Get(query); ok {
			return cands, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"h":      {fmt.Sprintf("%d", c.cfg.MaxHits)},
	}
	reqURL := c.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("DBLP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DBLP returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing DBLP response: %w", err)
	}

	candidates := sr.candidates()

	if c.cache != nil {
		c.cache.Put(query, candidates)
	}
	return candidates, nil
}
