// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flatten converts nested OpenAlex work records into flat
// MetadataRecord rows.
package flatten

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/pubmeta/pkg/types"
)

// listSep joins multi-valued fields into a single column.
const listSep = "; "

// Work captures the fields we need from an OpenAlex work record.
type Work struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	DisplayName     string       `json:"display_name"`
	DOI             string       `json:"doi"`
	PublicationDate string       `json:"publication_date"`
	PublicationYear int          `json:"publication_year"`
	Type            string       `json:"type"`
	Language        string       `json:"language"`
	Authorships     []Authorship `json:"authorships"`
	OpenAccess      OpenAccess   `json:"open_access"`
	CitedByCount    int          `json:"cited_by_count"`
	Keywords        []Keyword    `json:"keywords"`
	Grants          []Grant      `json:"grants"`
}

// Authorship links an author to their institutions for one work.
type Authorship struct {
	Author       Author        `json:"author"`
	Institutions []Institution `json:"institutions"`
}

// Author identifies one author.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Institution identifies one affiliation.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
}

// OpenAccess holds the work's open-access flags.
type OpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}

// Keyword is one tagged keyword.
type Keyword struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Grant links a work to a funder and award. OpenAlex represents the funder
// as an ID URL plus a separate display name field.
type Grant struct {
	Funder            string `json:"funder"`
	FunderDisplayName string `json:"funder_display_name"`
	AwardID           string `json:"award_id"`
}

// countryNames maps ISO country codes to display names for the countries
// that dominate the corpus. Unknown codes pass through raw.
var countryNames = map[string]string{
	"US": "USA",
	"GB": "United Kingdom",
	"CA": "Canada",
	"DE": "Germany",
	"FR": "France",
	"AU": "Australia",
	"JP": "Japan",
	"CN": "China",
	"IN": "India",
	"BR": "Brazil",
	"IT": "Italy",
	"ES": "Spain",
	"NL": "Netherlands",
	"SE": "Sweden",
	"CH": "Switzerland",
	"NP": "Nepal",
}

// Flatten parses a raw work record and produces one MetadataRecord.
// Missing optional fields become empty values; only a structurally
// unrecognizable body (invalid JSON, non-object) is an error, which the
// caller ties to the originating DOI.
func Flatten(raw []byte) (types.MetadataRecord, error) {
	var work Work
	if err := json.Unmarshal(raw, &work); err != nil {
		return types.MetadataRecord{}, fmt.Errorf("unrecognizable work record: %w", err)
	}
	return FlattenWork(work), nil
}

// FlattenWork flattens an already-parsed work record.
func FlattenWork(work Work) types.MetadataRecord {
	authors, affiliations, countries := flattenAuthorships(work.Authorships)

	return types.MetadataRecord{
		ID:               work.ID,
		Title:            work.Title,
		DisplayName:      work.DisplayName,
		AllAuthors:       authors,
		AllAffiliations:  affiliations,
		AllCountries:     countries,
		DOI:              work.DOI,
		PublicationDate:  work.PublicationDate,
		PublicationYear:  work.PublicationYear,
		Type:             work.Type,
		Language:         work.Language,
		OpenAccess:       work.OpenAccess.IsOA,
		OpenAccessStatus: work.OpenAccess.OAStatus,
		OpenAccessURL:    work.OpenAccess.OAURL,
		CitedByCount:     work.CitedByCount,
		Keywords:         flattenKeywords(work.Keywords),
		Grants:           flattenGrants(work.Grants),
	}
}

// flattenAuthorships walks the authorship list in source order and joins
// per-author values. An author without an affiliation or country contributes
// an empty slot so the three columns stay positionally aligned. Affiliation
// and country come from the author's first listed institution.
func flattenAuthorships(authorships []Authorship) (authors, affiliations, countries string) {
	var names, affs, ctrys []string

	for _, a := range authorships {
		if a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}

		aff, ctry := "", ""
		if len(a.Institutions) > 0 {
			primary := a.Institutions[0]
			aff = primary.DisplayName
			if primary.CountryCode != "" {
				ctry = primary.CountryCode
				if name, ok := countryNames[primary.CountryCode]; ok {
					ctry = name
				}
			}
		}
		affs = append(affs, aff)
		ctrys = append(ctrys, ctry)
	}

	return strings.Join(names, listSep), strings.Join(affs, listSep), strings.Join(ctrys, listSep)
}

func flattenKeywords(keywords []Keyword) string {
	var names []string
	for _, kw := range keywords {
		if kw.DisplayName != "" {
			names = append(names, kw.DisplayName)
		}
	}
	return strings.Join(names, listSep)
}

// flattenGrants renders funder:award pairs. Grants without a funder name
// are skipped; a grant without an award renders as the funder name alone.
func flattenGrants(grants []Grant) string {
	var pairs []string
	for _, g := range grants {
		if g.FunderDisplayName == "" {
			continue
		}
		pair := g.FunderDisplayName
		if g.AwardID != "" {
			pair += ":" + g.AwardID
		}
		pairs = append(pairs, pair)
	}
	return strings.Join(pairs, listSep)
}
