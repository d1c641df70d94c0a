package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/bookmeta/douban"
	"github.com/bookmeta/douban/metadata"
)

// LookupCmd represents the lookup command
type LookupCmd struct {
	Title    string   `short:"t" help:"Book title to search for"`
	Author   []string `short:"a" help:"Author name, repeatable"`
	ISBN     string   `help:"ISBN-10 or ISBN-13, hyphens allowed"`
	DoubanID string   `help:"Douban subject id, skips the search"`
	Limit    int      `short:"n" help:"Maximum number of results (0 uses the configured default)"`
}

func (l *LookupCmd) Run() error {
	query := metadata.Query{
		Title:      l.Title,
		Authors:    l.Author,
		MaxResults: l.Limit,
	}
	identifiers := make(map[string]string)
	if l.ISBN != "" {
		identifiers[metadata.IdentifierISBN] = l.ISBN
	}
	if l.DoubanID != "" {
		identifiers[metadata.IdentifierDouban] = l.DoubanID
	}
	if len(identifiers) > 0 {
		query.Identifiers = identifiers
	}

	src, err := douban.New(sourceConfig())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("lookup.timeout"))
	defer cancel()

	res, err := src.Identify(ctx, query)
	if err != nil {
		return describeLookupFailure(err)
	}

	switch res.Outcome {
	case douban.OutcomeInsufficientQuery:
		return fmt.Errorf("nothing to search by: give a title, an ISBN or a douban id")
	case douban.OutcomeNoMatch:
		slog.Info("No books matched", "title", l.Title, "isbn", l.ISBN)
		return nil
	}

	return renderRecords(stdout, res.Records, viper.GetString("output.format"))
}

// describeLookupFailure keeps typed failures in the error chain while giving
// the terminal user something actionable.
func describeLookupFailure(err error) error {
	le, ok := metadata.AsLookupError(err)
	if !ok {
		return err
	}
	switch le.Kind {
	case metadata.FailRateLimited:
		if le.RetryAfter > 0 {
			return fmt.Errorf("douban is throttling requests, retry in %s: %w", le.RetryAfter, err)
		}
		return fmt.Errorf("douban is throttling requests, slow down: %w", err)
	case metadata.FailTimeout:
		return fmt.Errorf("lookup timed out: %w", err)
	default:
		return err
	}
}
