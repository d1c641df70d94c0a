package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookmeta/douban/metadata"
)

var subjectIDPattern = regexp.MustCompile(`/subject/(\d+)`)

// SearchEntry is one summary row from the search endpoint. It carries far
// less than a subject page; the cast line is a loose "author / publisher /
// year" string that Douban renders under each hit.
type SearchEntry struct {
	SubjectID string
	Title     string
	Rating    float64
	Authors   []string
	Publisher string
	PubDate   string
}

// Search runs a free-text book query and returns up to limit entries.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchEntry, error) {
	params := url.Values{}
	params.Set("t", "book")
	params.Set("p", "0")
	params.Set("q", query)

	endpoint := fmt.Sprintf("%s?%s", c.searchURL, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	entries, err := parseSearch(body)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// parseSearch decodes the search envelope: a JSON object whose "items" key
// holds rendered HTML snippets, one per hit. A response without an items
// list is malformed; an empty list is a valid zero-hit result.
func parseSearch(payload []byte) ([]SearchEntry, error) {
	var response struct {
		Items *[]string `json:"items"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, &metadata.LookupError{
			Kind: metadata.FailMalformedPayload,
			Err:  fmt.Errorf("decode search response: %w", err),
		}
	}
	if response.Items == nil {
		return nil, &metadata.LookupError{
			Kind: metadata.FailMalformedPayload,
			Err:  fmt.Errorf("search response has no items list"),
		}
	}

	entries := make([]SearchEntry, 0, len(*response.Items))
	for _, snippet := range *response.Items {
		if entry, ok := parseSearchItem(snippet); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// parseSearchItem extracts one entry from a result snippet. Snippets without
// a resolvable subject link or a title are dropped silently.
func parseSearchItem(snippet string) (SearchEntry, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return SearchEntry{}, false
	}

	var entry SearchEntry
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		id := subjectIDFromHref(s.AttrOr("href", ""))
		if id == "" {
			return
		}
		if title := strings.TrimSpace(s.AttrOr("title", "")); title != "" {
			if entry.SubjectID == "" || entry.Title == "" {
				entry.SubjectID = id
				entry.Title = title
			}
			return
		}
		if entry.SubjectID == "" {
			entry.SubjectID = id
			entry.Title = strings.TrimSpace(s.Text())
		}
	})
	if entry.SubjectID == "" || entry.Title == "" {
		return SearchEntry{}, false
	}

	if rating := strings.TrimSpace(doc.Find("span.rating_nums").First().Text()); rating != "" {
		if v, err := strconv.ParseFloat(rating, 64); err == nil {
			entry.Rating = v
		}
	}
	entry.Authors, entry.Publisher, entry.PubDate = splitCast(doc.Find("span.subject-cast").First().Text())

	return entry, true
}

// subjectIDFromHref digs the subject id out of a result link. Douban routes
// result anchors through a redirect whose target URL is query-escaped, so
// the id may sit one unescape away.
func subjectIDFromHref(href string) string {
	if m := subjectIDPattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	if unescaped, err := url.QueryUnescape(href); err == nil {
		if m := subjectIDPattern.FindStringSubmatch(unescaped); m != nil {
			return m[1]
		}
	}
	return ""
}

// splitCast breaks the "author / publisher / year" line apart. A trailing
// segment starting with four digits is the publish date; the segment before
// it is the publisher; everything earlier is authors.
func splitCast(cast string) (authors []string, publisher, pubDate string) {
	var fields []string
	for _, part := range strings.Split(cast, "/") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	if len(fields) == 0 {
		return nil, "", ""
	}
	if last := fields[len(fields)-1]; len(fields) > 1 && startsWithYear(last) {
		pubDate = last
		fields = fields[:len(fields)-1]
	}
	if len(fields) > 1 {
		publisher = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}
	return fields, publisher, pubDate
}

func startsWithYear(s string) bool {
	if len(s) < 4 {
		return false
	}
	for _, r := range s[:4] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Candidate converts a summary row into a candidate record. The pipeline
// falls back to it when the detail fetch for an entry fails.
func (e SearchEntry) Candidate() metadata.Candidate {
	return metadata.Candidate{
		Identifiers: map[string]string{metadata.IdentifierDouban: e.SubjectID},
		Title:       e.Title,
		Authors:     append([]string(nil), e.Authors...),
		Publisher:   e.Publisher,
		PubDate:     e.PubDate,
		Rating:      e.Rating,
	}
}
