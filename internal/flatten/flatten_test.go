// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flatten

import (
	"strings"
	"testing"
)

const sampleWork = `{
  "id": "https://openalex.org/W2741809807",
  "doi": "https://doi.org/10.1038/s41591-019-0726-6",
  "title": "High-performance medicine: the convergence of human and artificial intelligence",
  "display_name": "High-performance medicine: the convergence of human and artificial intelligence",
  "publication_date": "2019-01-07",
  "publication_year": 2019,
  "type": "article",
  "language": "en",
  "cited_by_count": 4321,
  "authorships": [
    {
      "author": {"id": "https://openalex.org/A5017898742", "display_name": "Eric Topol"},
      "institutions": [
        {"id": "https://openalex.org/I1303153112", "display_name": "Scripps Research Institute", "country_code": "US"},
        {"id": "https://openalex.org/I9999", "display_name": "Second Institute", "country_code": "GB"}
      ]
    }
  ],
  "open_access": {"is_oa": true, "oa_status": "bronze", "oa_url": "https://www.nature.com/articles/s41591-019-0726-6.pdf"},
  "keywords": [
    {"id": "https://openalex.org/keywords/artificial-intelligence", "display_name": "Artificial Intelligence"},
    {"id": "https://openalex.org/keywords/digital-medicine", "display_name": "Digital Medicine"}
  ],
  "grants": [
    {"funder": "https://openalex.org/F4320306076", "funder_display_name": "National Institutes of Health", "award_id": "UL1TR002550"},
    {"funder": "https://openalex.org/F9999", "funder_display_name": "Wellcome Trust", "award_id": ""}
  ]
}`

func TestFlatten_FullRecord(t *testing.T) {
	record, err := Flatten([]byte(sampleWork))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if record.ID != "https://openalex.org/W2741809807" {
		t.Errorf("ID = %q", record.ID)
	}
	if record.DOI != "https://doi.org/10.1038/s41591-019-0726-6" {
		t.Errorf("DOI = %q", record.DOI)
	}
	if record.AllAuthors != "Eric Topol" {
		t.Errorf("AllAuthors = %q", record.AllAuthors)
	}
	// First institution only.
	if record.AllAffiliations != "Scripps Research Institute" {
		t.Errorf("AllAffiliations = %q", record.AllAffiliations)
	}
	if record.AllCountries != "USA" {
		t.Errorf("AllCountries = %q (country code should map to name)", record.AllCountries)
	}
	if record.PublicationYear != 2019 || record.PublicationDate != "2019-01-07" {
		t.Errorf("date fields = %d, %q", record.PublicationYear, record.PublicationDate)
	}
	if !record.OpenAccess || record.OpenAccessStatus != "bronze" {
		t.Errorf("open access fields = %v, %q", record.OpenAccess, record.OpenAccessStatus)
	}
	if record.CitedByCount != 4321 {
		t.Errorf("CitedByCount = %d", record.CitedByCount)
	}
	if record.Keywords != "Artificial Intelligence; Digital Medicine" {
		t.Errorf("Keywords = %q", record.Keywords)
	}
	if record.Grants != "National Institutes of Health:UL1TR002550; Wellcome Trust" {
		t.Errorf("Grants = %q", record.Grants)
	}
}

func TestFlatten_PositionalAlignment(t *testing.T) {
	// Second author has no institutions: affiliation and country columns
	// keep an empty slot so positions still correspond to authors.
	raw := `{
	  "id": "https://openalex.org/W1",
	  "authorships": [
	    {"author": {"display_name": "A"}, "institutions": [{"display_name": "X", "country_code": "US"}]},
	    {"author": {"display_name": "B"}}
	  ]
	}`

	record, err := Flatten([]byte(raw))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if record.AllAuthors != "A; B" {
		t.Errorf("AllAuthors = %q, want %q", record.AllAuthors, "A; B")
	}
	if record.AllAffiliations != "X; " {
		t.Errorf("AllAffiliations = %q, want %q", record.AllAffiliations, "X; ")
	}
	if record.AllCountries != "USA; " {
		t.Errorf("AllCountries = %q, want %q", record.AllCountries, "USA; ")
	}
}

func TestFlatten_UnknownCountryCodePassesThrough(t *testing.T) {
	raw := `{
	  "id": "https://openalex.org/W2",
	  "authorships": [
	    {"author": {"display_name": "A"}, "institutions": [{"display_name": "X", "country_code": "ZZ"}]}
	  ]
	}`

	record, err := Flatten([]byte(raw))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if record.AllCountries != "ZZ" {
		t.Errorf("AllCountries = %q, want raw code %q", record.AllCountries, "ZZ")
	}
}

func TestFlatten_MissingOptionalFields(t *testing.T) {
	record, err := Flatten([]byte(`{"id": "https://openalex.org/W3"}`))
	if err != nil {
		t.Fatalf("Flatten should tolerate missing optional fields: %v", err)
	}

	if record.ID != "https://openalex.org/W3" {
		t.Errorf("ID = %q", record.ID)
	}
	for name, got := range map[string]string{
		"Title":        record.Title,
		"AllAuthors":   record.AllAuthors,
		"AllCountries": record.AllCountries,
		"Keywords":     record.Keywords,
		"Grants":       record.Grants,
	} {
		if got != "" {
			t.Errorf("%s = %q, want empty", name, got)
		}
	}
	if record.OpenAccess {
		t.Error("OpenAccess should default to false")
	}
	if record.PublicationYear != 0 {
		t.Errorf("PublicationYear = %d, want 0", record.PublicationYear)
	}
}

func TestFlatten_GrantWithoutFunderSkipped(t *testing.T) {
	raw := `{
	  "id": "https://openalex.org/W4",
	  "grants": [
	    {"funder": "https://openalex.org/F1", "funder_display_name": "", "award_id": "123"},
	    {"funder": "https://openalex.org/F2", "funder_display_name": "NSF", "award_id": "ABI 1661218"}
	  ]
	}`

	record, err := Flatten([]byte(raw))
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if record.Grants != "NSF:ABI 1661218" {
		t.Errorf("Grants = %q", record.Grants)
	}
}

func TestFlatten_StructurallyBroken(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid JSON", `{"id": "W1"`},
		{"JSON array", `[1, 2, 3]`},
		{"JSON string", `"not an object"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error for structurally broken input")
			}
			if !strings.Contains(err.Error(), "unrecognizable") {
				t.Errorf("error = %v", err)
			}
		})
	}
}
