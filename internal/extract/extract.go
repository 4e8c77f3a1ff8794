// Package extract drives the DOI-to-metadata pipeline: normalize the raw
// input, partition the DOIs into chunks, fetch and flatten each one in
// order, and aggregate successes and per-DOI failures.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/pubmeta/internal/doi"
	"github.com/pdiddy/pubmeta/internal/fetch"
	"github.com/pdiddy/pubmeta/internal/flatten"
	"github.com/pdiddy/pubmeta/pkg/types"
)

// DefaultChunkSize is the number of DOIs per processing chunk.
const DefaultChunkSize = 50

// ErrNoValidDOIs is returned when normalization yields zero usable DOIs
// from the entire input.
var ErrNoValidDOIs = errors.New("no valid DOIs found in input")

// FailureKind classifies a per-DOI failure.
type FailureKind string

const (
	// KindInvalidDOI marks input the normalizer rejected.
	KindInvalidDOI FailureKind = "invalid_doi_format"
	// KindFetchFailed marks exhausted retries against the OpenAlex API.
	KindFetchFailed FailureKind = "fetch_failed"
	// KindMalformedResponse marks a structurally unrecognizable API response.
	KindMalformedResponse FailureKind = "malformed_response"
)

// Failure records why one DOI produced no metadata record.
type Failure struct {
	DOI    string      `json:"doi"`
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// BatchResult holds the outcome of one extraction run. Records preserves
// input order for successes; Failures maps each failed DOI (or raw invalid
// token) to its reason. The result is scoped to one request and holds no
// shared state.
type BatchResult struct {
	Records    []types.MetadataRecord `json:"records"`
	Failures   map[string]Failure     `json:"failures,omitempty"`
	Duplicates int                    `json:"duplicates"`
}

// Succeeded returns the number of flattened records.
func (r BatchResult) Succeeded() int { return len(r.Records) }

// Failed returns the number of failed inputs.
func (r BatchResult) Failed() int { return len(r.Failures) }

// Total returns the total number of inputs processed.
func (r BatchResult) Total() int { return r.Succeeded() + r.Failed() + r.Duplicates }

// HasFailures reports whether any input failed.
func (r BatchResult) HasFailures() bool { return len(r.Failures) > 0 }

// Chunks partitions dois into consecutive chunks of size, preserving order.
// A size of zero or less falls back to DefaultChunkSize. The returned
// slices share the backing array of dois.
func Chunks(dois []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(dois); start += size {
		end := start + size
		if end > len(dois) {
			end = len(dois)
		}
		chunks = append(chunks, dois[start:end])
	}
	return chunks
}

// Extract runs the full pipeline over a free-form input blob (one DOI per
// line or comma-separated). DOIs are processed strictly sequentially,
// first to last; one DOI's failure never aborts the rest. Works that
// resolve to an already-seen OpenAlex ID are counted as duplicates and
// keep their first occurrence. Per-item progress goes to w.
//
// ErrNoValidDOIs is returned when normalization yields nothing usable; the
// accompanying BatchResult still carries the invalid-input failures for
// reporting.
func Extract(ctx context.Context, fetcher *fetch.Fetcher, rawText string, cfg types.ExtractConfig, w io.Writer) (BatchResult, error) {
	result := BatchResult{Failures: make(map[string]Failure)}

	parsed := doi.Parse(rawText)
	for _, raw := range parsed.Invalid {
		fmt.Fprintf(w, "invalid: %s (not a DOI)\n", raw)
		result.Failures[raw] = Failure{
			DOI:    raw,
			Kind:   KindInvalidDOI,
			Reason: "does not match DOI syntax 10.<registrant>/<suffix>",
		}
	}
	if len(parsed.DOIs) == 0 {
		return result, ErrNoValidDOIs
	}

	chunks := Chunks(parsed.DOIs, cfg.ChunkSize)
	seen := make(map[string]bool)

	for i, chunk := range chunks {
		fmt.Fprintf(w, "chunk %d/%d (%d DOIs)\n", i+1, len(chunks), len(chunk))
		for _, d := range chunk {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			raw, err := fetcher.Work(ctx, d)
			if err != nil {
				fmt.Fprintf(w, "failed:  %s (%v)\n", d, err)
				result.Failures[d] = Failure{DOI: d, Kind: KindFetchFailed, Reason: err.Error()}
				continue
			}

			record, err := flatten.Flatten(raw)
			if err != nil {
				fmt.Fprintf(w, "failed:  %s (%v)\n", d, err)
				result.Failures[d] = Failure{DOI: d, Kind: KindMalformedResponse, Reason: err.Error()}
				continue
			}

			if record.ID != "" && seen[record.ID] {
				fmt.Fprintf(w, "duplicate: %s (same work as an earlier DOI)\n", d)
				result.Duplicates++
				continue
			}
			if record.ID != "" {
				seen[record.ID] = true
			}

			fmt.Fprintf(w, "ok:      %s\n", d)
			result.Records = append(result.Records, record)
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d failed, %d duplicates (total: %d)\n",
		result.Succeeded(), result.Failed(), result.Duplicates, result.Total())
	return result, nil
}
