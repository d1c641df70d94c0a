package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/bookmeta/douban/metadata"
)

// stdout is swappable so tests can capture rendered output.
var stdout io.Writer = os.Stdout

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")).
			Width(12)

	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true)
)

// renderRecords writes records in the requested format. Unknown formats fall
// back to the human-readable table.
func renderRecords(w io.Writer, records []metadata.Record, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, rec := range records {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, renderRecord(rec)); err != nil {
				return err
			}
		}
		return nil
	}
}

func renderRecord(rec metadata.Record) string {
	header := titleStyle.Render(rec.Title)
	if rec.OriginalTitle != "" && rec.OriginalTitle != rec.Title {
		header += " " + faintStyle.Render("("+rec.OriginalTitle+")")
	}

	lines := []string{header}
	row := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, labelStyle.Render(label)+value)
	}

	row("Authors", strings.Join(rec.Authors, ", "))
	row("Publisher", rec.Publisher)
	row("Series", rec.Series)
	row("Published", rec.PubDate.String())
	row("Language", languageLabel(rec))
	if rec.Rating > 0 {
		row("Rating", fmt.Sprintf("%.1f/5", rec.Rating))
	}
	if rec.Pages > 0 {
		row("Pages", strconv.Itoa(rec.Pages))
	}
	row("ISBN", rec.Identifiers[metadata.IdentifierISBN])
	row("Douban", rec.Identifiers[metadata.IdentifierDouban])
	row("Tags", strings.Join(rec.Tags, ", "))
	row("Cover", rec.CoverURL)
	row("About", truncate(rec.Description, 240))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func languageLabel(rec metadata.Record) string {
	if rec.LanguageUnmapped && rec.Language != "" {
		return rec.Language + " " + faintStyle.Render("(unmapped)")
	}
	return rec.Language
}

// truncate collapses whitespace and cuts at width runes; descriptions are
// mostly CJK, so byte slicing would split characters.
func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
