package metadata

import "strings"

// NormalizeISBN strips hyphens and spaces and upper-cases a trailing check
// character. It returns false when the result is not even ISBN-shaped: 13
// digits, or 10 characters of digits with an optional final X. The check
// digit is not verified; use CheckISBN for that.
func NormalizeISBN(raw string) (string, bool) {
	isbn := strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(raw))
	switch len(isbn) {
	case 10:
		for i, r := range isbn {
			if r >= '0' && r <= '9' {
				continue
			}
			if r == 'X' && i == 9 {
				continue
			}
			return "", false
		}
		return isbn, true
	case 13:
		for _, r := range isbn {
			if r < '0' || r > '9' {
				return "", false
			}
		}
		return isbn, true
	}
	return "", false
}

// CheckISBN validates the check digit of an ISBN-10 or ISBN-13 and returns
// the normalized form. Scraped catalog pages occasionally carry mangled
// ISBNs, so the parser runs every harvested value through this.
func CheckISBN(raw string) (string, bool) {
	isbn, ok := NormalizeISBN(raw)
	if !ok {
		return "", false
	}
	if len(isbn) == 10 {
		if validISBN10(isbn) {
			return isbn, true
		}
		return "", false
	}
	if validISBN13(isbn) {
		return isbn, true
	}
	return "", false
}

func validISBN10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		digit := int(r - '0')
		if r == 'X' {
			digit = 10
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return sum%10 == 0
}
