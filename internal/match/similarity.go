package match

import (
	"regexp"
	"strings"
)

var punctPattern = regexp.MustCompile(`[\p{P}\p{S}]+`)

// normalizeText lowercases, strips punctuation and collapses whitespace so
// titles differing only in casing or decoration compare equal. Punctuation
// is matched by Unicode class; Douban titles mix CJK and Latin freely.
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = punctPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// titleSimilarity scores two titles in [0,1]: the better of edit-distance
// similarity and capped token containment. Containment keeps decorated
// editions ("Norwegian Wood (Vol. 1)") close to the plain query title while
// the cap keeps them under an exact match.
func titleSimilarity(query, candidate string) float64 {
	q := normalizeText(query)
	c := normalizeText(candidate)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}
	sim := levenshteinSimilarity(q, c)
	if contained := containmentCeiling * tokenContainment(q, c); contained > sim {
		sim = contained
	}
	return sim
}

func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshteinDistance(ra, rb))/float64(maxLen)
}

// tokenContainment is the fraction of query tokens present in the candidate.
func tokenContainment(query, candidate string) float64 {
	qTokens := strings.Fields(query)
	if len(qTokens) == 0 {
		return 0
	}
	cTokens := make(map[string]bool)
	for _, tok := range strings.Fields(candidate) {
		cTokens[tok] = true
	}
	matched := 0
	for _, tok := range qTokens {
		if cTokens[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}

// authorOverlap is the fraction of query authors found among the candidate's
// authors.
func authorOverlap(queryAuthors, candidateAuthors []string) float64 {
	if len(queryAuthors) == 0 {
		return 0
	}
	matched := 0
	for _, qa := range queryAuthors {
		for _, ca := range candidateAuthors {
			if sameAuthor(qa, ca) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryAuthors))
}

// sameAuthor treats two names as the same person when one's token set
// contains the other's: "Murakami, Haruki" matches "Haruki Murakami", and
// Douban's "[日] 村上春树" matches a plain "村上春树".
func sameAuthor(a, b string) bool {
	ta := strings.Fields(normalizeText(a))
	tb := strings.Fields(normalizeText(b))
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	if len(ta) > len(tb) {
		ta, tb = tb, ta
	}
	set := make(map[string]bool, len(tb))
	for _, tok := range tb {
		set[tok] = true
	}
	for _, tok := range ta {
		if !set[tok] {
			return false
		}
	}
	return true
}

func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
