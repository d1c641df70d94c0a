package normalize

import (
	"strconv"
	"strings"

	"github.com/bookmeta/douban/metadata"
)

// dateSeparators rewrites the date punctuation Douban uses (CJK date
// characters, dots, slashes) to a single separator.
var dateSeparators = strings.NewReplacer("年", "-", "月", "-", "日", "", ".", "-", "/", "-")

// ParseDate turns a catalog date string into a partial date: "2008" keeps
// year precision, "2008-1" year and month, "2008-1-15" the full date.
// Trailing garbage ends parsing at the last valid part; a string with no
// parseable year yields the zero date, never some arbitrary epoch.
func ParseDate(raw string) metadata.PartialDate {
	cleaned := strings.TrimSpace(dateSeparators.Replace(raw))
	cleaned = strings.TrimRight(cleaned, "-")
	if cleaned == "" {
		return metadata.PartialDate{}
	}

	parts := strings.Split(cleaned, "-")

	year := atoiStrict(parts[0])
	if year < 1000 || year > 2999 {
		return metadata.PartialDate{}
	}
	date := metadata.PartialDate{Year: year}

	if len(parts) < 2 {
		return date
	}
	month := atoiStrict(parts[1])
	if month < 1 || month > 12 {
		return date
	}
	date.Month = month

	if len(parts) < 3 {
		return date
	}
	day := atoiStrict(parts[2])
	if day < 1 || day > 31 {
		return date
	}
	date.Day = day

	return date
}

// atoiStrict parses a string of digits only; anything else yields -1.
func atoiStrict(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
