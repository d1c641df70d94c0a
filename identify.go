package douban

import (
	"context"
	"log/slog"

	"github.com/bookmeta/douban/internal/catalog"
	"github.com/bookmeta/douban/internal/match"
	"github.com/bookmeta/douban/internal/normalize"
	"github.com/bookmeta/douban/metadata"
)

// Outcome distinguishes the ways a lookup can finish without an error.
type Outcome string

const (
	// OutcomeMatched means at least one record cleared the score threshold.
	OutcomeMatched Outcome = "matched"
	// OutcomeNoMatch means the catalog answered but nothing matched the
	// query well enough.
	OutcomeNoMatch Outcome = "no-match"
	// OutcomeInsufficientQuery means the query held nothing to search by.
	OutcomeInsufficientQuery Outcome = "insufficient-query"
)

// Result is what a finished lookup returns. Records are ordered best match
// first and empty unless Outcome is OutcomeMatched.
type Result struct {
	Records []metadata.Record
	Outcome Outcome
}

// Identify looks the query up on Douban and returns normalized records,
// best match first. Catalog failures come back as *metadata.LookupError
// so the host can tell a throttled catalog from an unreachable one.
func (s *Source) Identify(ctx context.Context, q metadata.Query) (*Result, error) {
	limit := q.MaxResults
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	plan := catalog.BuildPlan(q, limit)
	if len(plan) == 0 {
		slog.Debug("nothing to look up", "title", q.Title)
		return &Result{Outcome: OutcomeInsufficientQuery}, nil
	}

	candidates, err := s.collect(ctx, plan)
	if err != nil {
		return nil, err
	}

	ranked := match.Rank(q, candidates, s.cfg.MinScore)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		slog.Debug("no candidate cleared the threshold", "candidates", len(candidates), "min_score", s.cfg.MinScore)
		return &Result{Outcome: OutcomeNoMatch}, nil
	}

	opts := normalize.Options{IncludeSubtitle: !s.cfg.OmitSubtitle}
	records := make([]metadata.Record, 0, len(ranked))
	for _, sc := range ranked {
		records = append(records, normalize.Record(sc.Candidate, opts))
	}

	slog.Debug("identify finished", "records", len(records), "top_score", ranked[0].Score)
	return &Result{Records: records, Outcome: OutcomeMatched}, nil
}

// collect walks the request plan in order and returns the candidates of the
// first step that yields any. Later steps are fallbacks, not supplements:
// mixing a subject hit with loose title-search results would only dilute
// the ranking.
func (s *Source) collect(ctx context.Context, plan []catalog.Request) ([]metadata.Candidate, error) {
	for _, req := range plan {
		if err := ctx.Err(); err != nil {
			return nil, &metadata.LookupError{Kind: metadata.FailTimeout, Err: err}
		}

		switch req.Kind {
		case catalog.RequestSubject:
			cand, err := s.client.Subject(ctx, req.SubjectID)
			if err != nil {
				if le, ok := metadata.AsLookupError(err); ok && le.Kind == metadata.FailNotFound {
					// Stale or mistyped id. The plan carries a
					// search fallback, use it.
					slog.Debug("subject gone, falling back", "subject", req.SubjectID)
					continue
				}
				return nil, err
			}
			return []metadata.Candidate{*cand}, nil

		case catalog.RequestSearch:
			entries, err := s.client.Search(ctx, req.Query, req.Limit)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				slog.Debug("search came back empty", "query", req.Query)
				continue
			}
			return s.expand(ctx, entries)
		}
	}
	return nil, nil
}

// expand upgrades search summaries to full subject records. A failed detail
// fetch degrades that entry to its summary instead of failing the lookup,
// except when the catalog is throttling: then the remaining fetches would
// only make it worse, so the whole lookup reports RateLimited.
func (s *Source) expand(ctx context.Context, entries []catalog.SearchEntry) ([]metadata.Candidate, error) {
	candidates := make([]metadata.Candidate, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, &metadata.LookupError{Kind: metadata.FailTimeout, Err: err}
		}

		cand, err := s.client.Subject(ctx, entry.SubjectID)
		if err != nil {
			if metadata.IsRateLimited(err) {
				return nil, err
			}
			slog.Debug("detail fetch failed, keeping search summary", "subject", entry.SubjectID, "error", err)
			candidates = append(candidates, entry.Candidate())
			continue
		}
		candidates = append(candidates, *cand)
	}
	return candidates, nil
}
