// Package normalize maps raw catalog candidates onto the canonical record
// shape hosts consume.
package normalize

import (
	"strings"

	"github.com/bookmeta/douban/metadata"
)

// Options tune how a candidate is folded into a record.
type Options struct {
	// IncludeSubtitle appends the candidate's subtitle to the title as
	// "Title: Subtitle".
	IncludeSubtitle bool
}

// Record maps one candidate to the canonical record: the subtitle folded
// into the title, the publish date parsed to its actual precision, the
// language mapped to ISO 639-1, authors and tags de-duplicated, and Douban's
// 0-10 rating halved to the 0-5 scale. Missing fields stay empty; Record
// never fails.
func Record(cand metadata.Candidate, opts Options) metadata.Record {
	rec := metadata.Record{
		Identifiers:   cand.Identifiers,
		Title:         cand.Title,
		OriginalTitle: cand.OriginalTitle,
		Authors:       cand.Authors,
		Publisher:     cand.Publisher,
		Series:        cand.Series,
		PubDate:       ParseDate(cand.PubDate),
		Language:      cand.Language,
		Description:   cand.Description,
		Rating:        cand.Rating / 2, // Douban rates 0-10, hosts take 0-5
		Pages:         cand.Pages,
		Tags:          cand.Tags,
		CoverURL:      cand.CoverURL,
	}
	if subtitle := strings.TrimSpace(cand.Subtitle); subtitle != "" && opts.IncludeSubtitle {
		rec.Title = mergeSubtitle(strings.TrimSpace(cand.Title), subtitle)
	}
	return Canonical(rec)
}

// Canonical scrubs a record into canonical form. It is a fixed point:
// applied to its own output it changes nothing, so re-normalizing an
// already normalized record is a no-op.
func Canonical(rec metadata.Record) metadata.Record {
	out := rec
	out.Identifiers = canonicalIdentifiers(rec.Identifiers)
	out.Title = strings.TrimSpace(rec.Title)
	out.OriginalTitle = strings.TrimSpace(rec.OriginalTitle)
	out.Authors = dedupe(rec.Authors)
	out.Publisher = strings.TrimSpace(rec.Publisher)
	out.Series = strings.TrimSpace(rec.Series)
	out.PubDate = canonicalDate(rec.PubDate)
	out.Description = strings.TrimSpace(rec.Description)
	out.Rating = clampRating(rec.Rating)
	out.Tags = dedupe(rec.Tags)
	out.CoverURL = strings.TrimSpace(rec.CoverURL)
	if rec.Pages < 0 {
		out.Pages = 0
	}

	code, ok := mapLanguage(rec.Language)
	out.Language = code
	out.LanguageUnmapped = !ok

	return out
}

func mergeSubtitle(title, subtitle string) string {
	if title == "" {
		return subtitle
	}
	return title + ": " + subtitle
}

func canonicalIdentifiers(ids map[string]string) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string]string, len(ids))
	for kind, value := range ids {
		value = strings.TrimSpace(value)
		if kind == "" || value == "" {
			continue
		}
		out[kind] = metadata.NormalizeIdentifier(kind, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func canonicalDate(d metadata.PartialDate) metadata.PartialDate {
	if d.Year < 1000 || d.Year > 2999 {
		return metadata.PartialDate{}
	}
	if d.Month < 1 || d.Month > 12 {
		return metadata.PartialDate{Year: d.Year}
	}
	if d.Day < 1 || d.Day > 31 {
		return metadata.PartialDate{Year: d.Year, Month: d.Month}
	}
	return d
}

// dedupe drops blank and case-insensitively repeated values, keeping the
// first seen spelling and order.
func dedupe(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func clampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}
