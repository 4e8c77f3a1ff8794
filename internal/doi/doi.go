// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doi cleans and validates DOI strings from free-form user input.
package doi

import (
	"regexp"
	"strings"
)

// prefixes lists the decorations users paste in front of bare DOIs.
// Clean strips the first matching prefix only.
var prefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"dx.doi.org/",
	"doi:",
}

// doiPattern matches the general DOI syntax "10.<registrant>/<suffix>" with
// a numeric-dotted registrant, e.g. "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{2,9}(?:\.\d+)*/\S+$`)

// Clean strips whitespace and a leading URL or "doi:" prefix from raw and
// lower-cases the result. OpenAlex stores DOIs lower-cased, so lookups are
// case-insensitive anyway.
func Clean(raw string) string {
	cleaned := strings.TrimSpace(raw)
	lower := strings.ToLower(cleaned)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			cleaned = cleaned[len(p):]
			break
		}
	}
	return strings.ToLower(cleaned)
}

// IsValid reports whether doi (already cleaned) matches the general DOI syntax.
func IsValid(doi string) bool {
	return doiPattern.MatchString(doi)
}

// ParseResult holds the outcome of normalizing a free-form input blob.
type ParseResult struct {
	// DOIs are the cleaned, validated DOIs in first-appearance order with
	// duplicates removed.
	DOIs []string

	// Invalid lists the raw tokens that did not survive validation, in input
	// order. Rejected tokens are reported, never silently dropped.
	Invalid []string
}

// splitPattern separates tokens on newlines and commas.
var splitPattern = regexp.MustCompile(`[\n\r,]+`)

// Parse splits rawText into tokens (one DOI per line or comma-separated),
// cleans and validates each, and dedupes while preserving order.
func Parse(rawText string) ParseResult {
	var result ParseResult
	seen := make(map[string]bool)

	for _, token := range splitPattern.Split(rawText, -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		cleaned := Clean(token)
		if !IsValid(cleaned) {
			result.Invalid = append(result.Invalid, token)
			continue
		}
		if seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		result.DOIs = append(result.DOIs, cleaned)
	}

	return result
}
