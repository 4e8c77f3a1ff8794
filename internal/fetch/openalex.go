// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves publication records from the OpenAlex API,
// one HTTP GET per DOI, with retry and rate-limit pacing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmeta/internal/httputil"
	"github.com/pdiddy/pubmeta/pkg/types"
)

// defaultWorksBase is the public OpenAlex works endpoint.
const defaultWorksBase = "https://api.openalex.org/works/"

// maxResponseBytes caps how much of a response body is read. OpenAlex work
// records are well under this; the limit guards against a misbehaving proxy.
const maxResponseBytes = 10 << 20

const (
	defaultTimeout           = 10 * time.Second
	defaultUserAgent         = "pubmeta/0.1"
	defaultMaxRetries        = 3
	defaultRequestsPerSecond = 5
)

// Fetcher issues per-DOI requests against the OpenAlex works endpoint.
// Requests are paced through a token bucket so sequential batch processing
// respects the API's usage policy. Construct with New; the zero value is
// not usable.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     types.FetchConfig
}

// New builds a Fetcher from cfg, applying defaults for unset fields.
func New(cfg types.FetchConfig) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultWorksBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}

	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cfg:     cfg,
	}
}

// Work fetches the OpenAlex record for one validated DOI and returns the
// raw JSON body. Transient failures (network errors, HTTP 429, HTTP 5xx)
// are retried by the shared retry helper; after exhaustion, and for any
// other non-200 status, Work returns an error naming the DOI. It never
// panics up the stack.
func (f *Fetcher) Work(ctx context.Context, doi string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	// OpenAlex accepts the DOI URL form as a works path segment.
	reqURL := f.cfg.BaseURL + "https://doi.org/" + doi

	params := url.Values{}
	if f.cfg.Email != "" {
		params.Set("mailto", f.cfg.Email)
	}
	if f.cfg.APIKey != "" {
		params.Set("api_key", f.cfg.APIKey)
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", doi, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request for %s: %w", doi, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d for %s", resp.StatusCode, doi)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading OpenAlex response for %s: %w", doi, err)
	}
	return body, nil
}
