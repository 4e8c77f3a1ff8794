// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/pubmeta/internal/httputil"
	"github.com/pdiddy/pubmeta/pkg/types"
)

func init() {
	httputil.RetryDelay = 1 * time.Millisecond
}

const sampleWork = `{
  "id": "https://openalex.org/W2741809807",
  "doi": "https://doi.org/10.1038/s41591-019-0726-6",
  "title": "High-performance medicine"
}`

func testConfig(baseURL string) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "pubmeta-test/0.1",
		},
		BaseURL:           baseURL,
		MaxRetries:        3,
		RequestsPerSecond: 1000,
	}
}

func TestWork_Success(t *testing.T) {
	var gotPath, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(sampleWork))
	}))
	defer ts.Close()

	f := New(testConfig(ts.URL + "/works/"))
	body, err := f.Work(context.Background(), "10.1038/s41591-019-0726-6")
	if err != nil {
		t.Fatalf("Work: %v", err)
	}

	if !strings.Contains(string(body), "W2741809807") {
		t.Errorf("body missing work ID: %s", body)
	}
	if want := "/works/https://doi.org/10.1038/s41591-019-0726-6"; gotPath != want {
		t.Errorf("request path = %q, want %q", gotPath, want)
	}
	if gotUA != "pubmeta-test/0.1" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestWork_PolitePoolParams(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleWork))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL + "/works/")
	cfg.Email = "researcher@example.org"
	cfg.APIKey = "premium-key"

	f := New(cfg)
	if _, err := f.Work(context.Background(), "10.1000/123"); err != nil {
		t.Fatalf("Work: %v", err)
	}

	if !strings.Contains(gotQuery, "mailto=researcher%40example.org") {
		t.Errorf("query missing mailto: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "api_key=premium-key") {
		t.Errorf("query missing api_key: %q", gotQuery)
	}
}

func TestWork_TransientFailuresThenSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleWork))
	}))
	defer ts.Close()

	f := New(testConfig(ts.URL + "/works/"))
	body, err := f.Work(context.Background(), "10.1000/123")
	if err != nil {
		t.Fatalf("Work after transient failures: %v", err)
	}
	if len(body) == 0 {
		t.Error("empty body on success")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestWork_ExhaustedRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	f := New(testConfig(ts.URL + "/works/"))
	_, err := f.Work(context.Background(), "10.1000/123")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !strings.Contains(err.Error(), "10.1000/123") {
		t.Errorf("error does not name the DOI: %v", err)
	}
	// 1 initial + 3 retries = 4 total calls.
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("calls = %d, want 4", got)
	}
}

func TestWork_NotFoundFailsWithoutRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	f := New(testConfig(ts.URL + "/works/"))
	_, err := f.Work(context.Background(), "10.1000/missing")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("error = %v, want HTTP 404 mention", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1 (404 is not retryable)", got)
	}
}

func TestWork_NetworkError(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/works/")
	cfg.Timeout = 1 * time.Second

	f := New(cfg)
	_, err := f.Work(context.Background(), "10.1000/123")
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestWork_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleWork))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(testConfig(ts.URL + "/works/"))
	if _, err := f.Work(ctx, "10.1000/123"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
