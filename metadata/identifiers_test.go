package metadata

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestKnownIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  map[string]string
	}{
		{
			name:  "no identifiers",
			query: Query{Title: "挪威的森林"},
			want:  map[string]string{},
		},
		{
			name: "douban subject id",
			query: Query{Identifiers: map[string]string{
				IdentifierDouban: "2567698",
			}},
			want: map[string]string{IdentifierDouban: "2567698"},
		},
		{
			name: "non numeric subject id dropped",
			query: Query{Identifiers: map[string]string{
				IdentifierDouban: "abc123",
			}},
			want: map[string]string{},
		},
		{
			name: "isbn normalized",
			query: Query{Identifiers: map[string]string{
				IdentifierISBN: "978-7-5366-9293-0",
			}},
			want: map[string]string{IdentifierISBN: "9787536692930"},
		},
		{
			name: "isbn kept without check digit validation",
			query: Query{Identifiers: map[string]string{
				IdentifierISBN: "9787544255978",
			}},
			want: map[string]string{IdentifierISBN: "9787544255978"},
		},
		{
			name: "malformed isbn dropped",
			query: Query{Identifiers: map[string]string{
				IdentifierISBN: "not-an-isbn",
			}},
			want: map[string]string{},
		},
		{
			name: "unrecognized kinds ignored",
			query: Query{Identifiers: map[string]string{
				"goodreads":      "12345",
				"amazon":         "B00ABCDEF",
				IdentifierDouban: "1046265",
			}},
			want: map[string]string{IdentifierDouban: "1046265"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KnownIdentifiers(tt.query))
		})
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "9787536692930", NormalizeIdentifier(IdentifierISBN, "978-7-5366-9293-0"))
	assert.Equal(t, "080442957X", NormalizeIdentifier(IdentifierISBN, "080442957x"))
	assert.Equal(t, "not-an-isbn", NormalizeIdentifier(IdentifierISBN, "not-an-isbn"))
	assert.Equal(t, "2567698", NormalizeIdentifier(IdentifierDouban, "2567698"))
}
