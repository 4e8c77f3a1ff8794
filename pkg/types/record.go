// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strconv"

// MetadataRecord is the flattened tabular row for one publication.
// Multi-valued source fields (authors, affiliations, countries, keywords,
// grants) are joined into a single string with "; " so each record maps to
// exactly one CSV row. Missing source fields are empty, never an error.
type MetadataRecord struct {
	// ID is the OpenAlex work URL (e.g. "https://openalex.org/W2741809807").
	ID string `json:"id" yaml:"id"`

	// Title is the work title.
	Title string `json:"title" yaml:"title"`

	// DisplayName is the work display name, usually identical to Title.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// AllAuthors joins author display names in source order.
	AllAuthors string `json:"all_authors" yaml:"all_authors"`

	// AllAffiliations joins each author's primary institution; an author
	// without one contributes an empty slot to preserve positional
	// correspondence with AllAuthors.
	AllAffiliations string `json:"all_affiliations" yaml:"all_affiliations"`

	// AllCountries joins each author's primary institution country,
	// positionally aligned like AllAffiliations.
	AllCountries string `json:"all_countries" yaml:"all_countries"`

	// DOI is the resolvable DOI URL as returned by the API.
	DOI string `json:"doi" yaml:"doi"`

	// PublicationDate is the publication date as YYYY-MM-DD.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// PublicationYear is the publication year, 0 when unknown.
	PublicationYear int `json:"publication_year" yaml:"publication_year"`

	// Type is the work type (e.g. "article").
	Type string `json:"type" yaml:"type"`

	// Language is the ISO language code.
	Language string `json:"language" yaml:"language"`

	// OpenAccess reports whether the work is open access.
	OpenAccess bool `json:"open_access" yaml:"open_access"`

	// OpenAccessStatus is the OA color (e.g. "gold", "green").
	OpenAccessStatus string `json:"open_access_status" yaml:"open_access_status"`

	// OpenAccessURL is the best open-access URL if any.
	OpenAccessURL string `json:"open_access_url" yaml:"open_access_url"`

	// CitedByCount is the citation count.
	CitedByCount int `json:"cited_by_count" yaml:"cited_by_count"`

	// Keywords joins keyword display names.
	Keywords string `json:"keywords" yaml:"keywords"`

	// Grants joins funder:award pairs.
	Grants string `json:"grants" yaml:"grants"`
}

// RecordFields lists the column names in the fixed export order.
func RecordFields() []string {
	return []string{
		"id", "title", "display_name", "all_authors", "all_affiliations",
		"all_countries", "doi", "publication_date", "publication_year",
		"type", "language", "open_access", "open_access_status",
		"open_access_url", "cited_by_count", "keywords", "grants",
	}
}

// Values returns the record's field values as strings in RecordFields order.
// A zero PublicationYear renders as an empty cell.
func (r MetadataRecord) Values() []string {
	year := ""
	if r.PublicationYear != 0 {
		year = strconv.Itoa(r.PublicationYear)
	}
	return []string{
		r.ID, r.Title, r.DisplayName, r.AllAuthors, r.AllAffiliations,
		r.AllCountries, r.DOI, r.PublicationDate, year,
		r.Type, r.Language, strconv.FormatBool(r.OpenAccess),
		r.OpenAccessStatus, r.OpenAccessURL,
		strconv.Itoa(r.CitedByCount), r.Keywords, r.Grants,
	}
}
