package metadata

// KnownIdentifiers extracts the identifier kinds this source understands
// from a query, dropping everything else. Values are normalized but not
// checksum-validated: hosts routinely carry ISBNs straight from upstream
// records and a bad check digit should degrade to a title search, not to a
// hard failure. Extraction never fails; at worst the result is empty.
func KnownIdentifiers(q Query) map[string]string {
	ids := make(map[string]string)
	for kind, value := range q.Identifiers {
		switch kind {
		case IdentifierDouban:
			if validSubjectID(value) {
				ids[kind] = value
			}
		case IdentifierISBN:
			if isbn, ok := NormalizeISBN(value); ok {
				ids[kind] = isbn
			}
		}
	}
	return ids
}

// NormalizeIdentifier canonicalizes an identifier value for comparison.
// ISBNs lose separators and case; other kinds are compared as-is.
func NormalizeIdentifier(kind, value string) string {
	if kind == IdentifierISBN {
		if isbn, ok := NormalizeISBN(value); ok {
			return isbn
		}
	}
	return value
}

func validSubjectID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
