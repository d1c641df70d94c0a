package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookmeta/douban/metadata"
)

var (
	// infoLabelPattern matches the label rows of a subject page's #info
	// block once flattened to text. Every label Douban emits must be listed:
	// an unknown label's line would otherwise be glued onto the previous
	// field's value.
	infoLabelPattern = regexp.MustCompile(`^(作者|出版社|出品方|副标题|原作名|译者|出版年|页数|定价|装帧|丛书|ISBN|统一书号|语言)\s*[::]\s*(.*)$`)

	brPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// Subject fetches one book detail page and parses it into a candidate.
func (c *Client) Subject(ctx context.Context, id string) (*metadata.Candidate, error) {
	endpoint := fmt.Sprintf("%s/%s/", c.bookURL, url.PathEscape(id))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return parseSubject(id, body)
}

// parseSubject extracts a candidate from subject page HTML. A page carrying
// neither a title nor an #info block is not a book page at all; Douban
// serves interstitial and captcha pages with status 200.
func parseSubject(id string, payload []byte) (*metadata.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &metadata.LookupError{
			Kind: metadata.FailMalformedPayload,
			Err:  fmt.Errorf("parse subject page: %w", err),
		}
	}

	title := strings.TrimSpace(doc.Find(`h1 span[property="v:itemreviewed"]`).First().Text())
	info := doc.Find("#info")
	if title == "" && info.Length() == 0 {
		return nil, &metadata.LookupError{
			Kind: metadata.FailMalformedPayload,
			Err:  fmt.Errorf("subject page has neither title nor info block"),
		}
	}

	fields := parseInfoFields(infoLines(info))

	cand := &metadata.Candidate{
		Identifiers:   map[string]string{metadata.IdentifierDouban: id},
		Title:         title,
		Subtitle:      fields["副标题"],
		OriginalTitle: fields["原作名"],
		Authors:       splitNames(fields["作者"]),
		Publisher:     fields["出版社"],
		Series:        fields["丛书"],
		PubDate:       fields["出版年"],
		Language:      fields["语言"],
		Pages:         leadingInt(fields["页数"]),
	}
	if cand.Publisher == "" {
		cand.Publisher = fields["出品方"]
	}

	if isbn := bestISBN(fields["ISBN"]); isbn != "" {
		cand.Identifiers[metadata.IdentifierISBN] = isbn
	}

	if rating := strings.TrimSpace(doc.Find("strong.rating_num").First().Text()); rating != "" {
		if v, err := strconv.ParseFloat(rating, 64); err == nil {
			cand.Rating = v
		}
	}

	cand.Description = longestIntro(doc)

	doc.Find("a.tag").Each(func(_ int, s *goquery.Selection) {
		if tag := strings.TrimSpace(s.Text()); tag != "" {
			cand.Tags = append(cand.Tags, tag)
		}
	})

	src := doc.Find("#mainpic img").First().AttrOr("src", "")
	// a "book-default" placeholder image means the book has no cover
	if src != "" && !strings.Contains(src, "book-default") {
		cand.CoverURL = src
	}

	return cand, nil
}

// infoLines flattens the #info block to one line per <br>-separated field.
// The block's source formatting is free-form, so literal whitespace is
// collapsed first and only <br> boundaries survive as line breaks.
func infoLines(info *goquery.Selection) []string {
	html, err := info.Html()
	if err != nil {
		return nil
	}
	html = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(html)
	html = brPattern.ReplaceAllString(html, "\n")

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(frag.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseInfoFields(lines []string) map[string]string {
	fields := make(map[string]string)
	current := ""
	for _, line := range lines {
		if m := infoLabelPattern.FindStringSubmatch(line); m != nil {
			current = m[1]
			appendField(fields, current, m[2])
			continue
		}
		if current != "" {
			appendField(fields, current, line)
		}
	}
	return fields
}

func appendField(fields map[string]string, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if existing := fields[key]; existing != "" {
		fields[key] = existing + " " + value
		return
	}
	fields[key] = value
}

func splitNames(value string) []string {
	var names []string
	for _, name := range strings.FieldsFunc(value, func(r rune) bool { return r == '/' || r == '、' }) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// bestISBN returns the longest check-digit-valid ISBN on the line, so an
// ISBN-13 wins over an ISBN-10 when the page lists both.
func bestISBN(value string) string {
	best := ""
	for _, token := range strings.FieldsFunc(value, func(r rune) bool {
		return r == '/' || r == ',' || r == ';' || r == ' '
	}) {
		if isbn, ok := metadata.CheckISBN(token); ok && len(isbn) > len(best) {
			best = isbn
		}
	}
	return best
}

func leadingInt(value string) int {
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}

// longestIntro picks the fullest intro block; subject pages often carry both
// a truncated preview and the complete text.
func longestIntro(doc *goquery.Document) string {
	best := ""
	doc.Find("div.intro").Each(func(_ int, s *goquery.Selection) {
		var paras []string
		s.Find("p").Each(func(_ int, p *goquery.Selection) {
			if txt := strings.TrimSpace(p.Text()); txt != "" {
				paras = append(paras, txt)
			}
		})
		if joined := strings.Join(paras, "\n\n"); len(joined) > len(best) {
			best = joined
		}
	})
	return best
}
