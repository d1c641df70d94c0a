package catalog

import (
	"strings"

	"github.com/bookmeta/douban/metadata"
)

// RequestKind selects which catalog endpoint a planned request targets.
type RequestKind int

const (
	// RequestSubject fetches one subject detail page directly by id.
	RequestSubject RequestKind = iota
	// RequestSearch runs a free-text query against the search endpoint.
	RequestSearch
)

// Request is one planned remote lookup. Subject requests carry the subject
// id; search requests carry the query string. Limit caps how many entries
// the caller will consume from the response.
type Request struct {
	Kind      RequestKind
	SubjectID string
	Query     string
	Limit     int
}

// BuildPlan turns a query into an ordered list of requests to attempt, most
// specific first: a direct subject fetch when a douban id is known, an ISBN
// search next, then a free-text title search with the first author appended.
// When an identifier request is planned and a title is also known, the title
// search is kept as a fallback for stale or mistyped identifiers. Author-only
// queries have too little signal and produce an empty plan, as does a query
// with nothing usable at all.
func BuildPlan(q metadata.Query, limit int) []Request {
	if limit <= 0 {
		limit = 1
	}

	ids := metadata.KnownIdentifiers(q)
	var plan []Request

	if subject := ids[metadata.IdentifierDouban]; subject != "" {
		plan = append(plan, Request{Kind: RequestSubject, SubjectID: subject, Limit: 1})
	} else if isbn := ids[metadata.IdentifierISBN]; isbn != "" {
		plan = append(plan, Request{Kind: RequestSearch, Query: isbn, Limit: limit})
	}

	if term := freeTextTerm(q); term != "" {
		plan = append(plan, Request{Kind: RequestSearch, Query: term, Limit: limit})
	}

	return plan
}

func freeTextTerm(q metadata.Query) string {
	title := strings.Join(strings.Fields(q.Title), " ")
	if title == "" {
		return ""
	}
	if len(q.Authors) > 0 {
		if author := strings.Join(strings.Fields(q.Authors[0]), " "); author != "" {
			return title + " " + author
		}
	}
	return title
}
