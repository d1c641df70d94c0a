// Package match scores and orders catalog candidates against the query that
// produced them.
package match

import (
	"sort"

	"github.com/bookmeta/douban/metadata"
)

// Score weights are tunable constants, not a reverse-engineered formula.
const (
	titleWeight        = 0.6
	authorWeight       = 0.3
	completenessWeight = 0.1

	// containmentCeiling keeps a decorated superset title under an exact one.
	containmentCeiling = 0.9
)

// DefaultMinScore is the acceptance threshold below which a candidate is
// treated as a non-match and dropped rather than ranked low.
const DefaultMinScore = 0.5

// Rank scores every candidate, drops those under minScore and returns the
// rest best-first. Ordering is deterministic: score, then exact identifier
// match, then completeness, then input order.
func Rank(q metadata.Query, candidates []metadata.Candidate, minScore float64) []metadata.ScoredCandidate {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	scored := make([]metadata.ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		sc := Score(q, cand)
		if sc.Score < minScore {
			continue
		}
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].ExactIDMatch != scored[j].ExactIDMatch {
			return scored[i].ExactIDMatch
		}
		return completeness(scored[i].Candidate) > completeness(scored[j].Candidate)
	})
	return scored
}

// Score computes one candidate's composite score. An exact match on any
// identifier the host supplied is conclusive and short-circuits to the
// maximum score.
func Score(q metadata.Query, cand metadata.Candidate) metadata.ScoredCandidate {
	if exactIdentifierMatch(q, cand) {
		return metadata.ScoredCandidate{Candidate: cand, Score: 1.0, ExactIDMatch: true}
	}

	score := titleWeight*titleSimilarity(q.Title, cand.Title) +
		authorWeight*authorOverlap(q.Authors, cand.Authors) +
		completenessWeight*completeness(cand)

	return metadata.ScoredCandidate{Candidate: cand, Score: score}
}

func exactIdentifierMatch(q metadata.Query, cand metadata.Candidate) bool {
	for kind, qv := range q.Identifiers {
		if qv == "" {
			continue
		}
		cv := cand.Identifiers[kind]
		if cv == "" {
			continue
		}
		if metadata.NormalizeIdentifier(kind, qv) == metadata.NormalizeIdentifier(kind, cv) {
			return true
		}
	}
	return false
}

// completeness is the fraction of a candidate's optional fields that carry
// a value. Identifiers, title and authors are core fields and not counted.
func completeness(cand metadata.Candidate) float64 {
	populated := 0
	for _, set := range []bool{
		cand.Subtitle != "",
		cand.OriginalTitle != "",
		cand.Publisher != "",
		cand.Series != "",
		cand.PubDate != "",
		cand.Language != "",
		cand.Description != "",
		cand.Rating > 0,
		cand.Pages > 0,
		len(cand.Tags) > 0,
		cand.CoverURL != "",
	} {
		if set {
			populated++
		}
	}
	return float64(populated) / 11
}
