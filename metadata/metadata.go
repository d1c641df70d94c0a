// Package metadata defines the data model shared across the lookup pipeline:
// the caller's query, parsed catalog candidates, scored candidates, and the
// normalized records handed back to the host. It is a pure types package and
// performs no I/O.
package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Identifier kinds recognized by this source. Unrecognized kinds in a query
// are ignored rather than rejected.
const (
	IdentifierDouban = "douban"
	IdentifierISBN   = "isbn"
)

// Query describes the book the host wants metadata for. At least one of
// Title or a recognized identifier must be set, otherwise the lookup is a
// no-op that returns no records.
type Query struct {
	Title   string
	Authors []string
	// Identifiers maps identifier kind to value, e.g. "isbn" -> "9787536692930".
	Identifiers map[string]string
	// MaxResults caps how many candidates a single catalog request may
	// yield. 0 means the source default.
	MaxResults int
}

// Candidate is one parsed search or detail result from the catalog, before
// ranking. Field values stay in the catalog's own formats: PubDate is the raw
// date string, Language the raw language name, Rating the catalog's 0-10
// average. Absent optional fields are zero values, never fabricated.
type Candidate struct {
	Identifiers   map[string]string
	Title         string
	Subtitle      string
	OriginalTitle string
	Authors       []string
	Publisher     string
	Series        string
	PubDate       string
	Language      string
	Description   string
	Rating        float64
	Pages         int
	Tags          []string
	CoverURL      string
}

// ScoredCandidate pairs a Candidate with its ranking score in [0, 1].
// ExactIDMatch is set when the candidate shares a value with the query for
// some identifier kind, which pins the score at 1.0.
type ScoredCandidate struct {
	Candidate    Candidate
	Score        float64
	ExactIDMatch bool
}

// Record is the normalized, host-facing form of a Candidate: dates in the
// canonical partial-date form, language mapped to an ISO-639 code where the
// lookup table knows it, rating on the host's 0-5 scale, authors and tags
// de-duplicated. Records serialize cleanly to JSON and YAML.
type Record struct {
	Identifiers   map[string]string `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
	Title         string            `json:"title" yaml:"title"`
	OriginalTitle string            `json:"original_title,omitempty" yaml:"original_title,omitempty"`
	Authors       []string          `json:"authors,omitempty" yaml:"authors,omitempty"`
	Publisher     string            `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Series        string            `json:"series,omitempty" yaml:"series,omitempty"`
	PubDate       PartialDate       `json:"pub_date,omitzero" yaml:"pub_date,omitempty"`
	Language      string            `json:"language,omitempty" yaml:"language,omitempty"`
	// LanguageUnmapped marks a language value that had no entry in the
	// ISO-639 lookup table and was passed through unchanged.
	LanguageUnmapped bool     `json:"language_unmapped,omitempty" yaml:"language_unmapped,omitempty"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	Rating           float64  `json:"rating,omitempty" yaml:"rating,omitempty"`
	Pages            int      `json:"pages,omitempty" yaml:"pages,omitempty"`
	Tags             []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
}

// PartialDate is a publication date of year, year-month, or full precision.
// Month and Day are 0 below their precision. The zero value means "unknown".
type PartialDate struct {
	Year  int
	Month int
	Day   int
}

// IsZero reports whether the date is unknown.
func (d PartialDate) IsZero() bool {
	return d.Year == 0
}

// String renders the date at its own precision: "2008", "2008-01" or
// "2008-01-15". The zero value renders as "".
func (d PartialDate) String() string {
	switch {
	case d.Year == 0:
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// MarshalJSON renders the date as its string form rather than a struct.
func (d PartialDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *PartialDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parsePartialDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d PartialDate) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *PartialDate) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := parsePartialDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func parsePartialDate(s string) (PartialDate, error) {
	if s == "" {
		return PartialDate{}, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return PartialDate{}, fmt.Errorf("invalid partial date %q", s)
	}
	var d PartialDate
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return PartialDate{}, fmt.Errorf("invalid partial date %q: %w", s, err)
		}
		switch i {
		case 0:
			d.Year = n
		case 1:
			d.Month = n
		case 2:
			d.Day = n
		}
	}
	return d, nil
}
