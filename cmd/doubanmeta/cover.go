package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/bookmeta/douban"
	"github.com/bookmeta/douban/metadata"
)

// CoverCmd represents the cover command
type CoverCmd struct {
	ISBN     string `help:"ISBN-10 or ISBN-13, hyphens allowed"`
	DoubanID string `help:"Douban subject id"`
	Output   string `short:"o" help:"Path to write the image to" default:"cover.jpg"`
	MaxWidth int    `help:"Shrink covers wider than this many pixels (0 keeps the original)"`
}

func (c *CoverCmd) Run() error {
	if c.ISBN == "" && c.DoubanID == "" {
		return fmt.Errorf("a cover lookup needs --isbn or --douban-id")
	}

	identifiers := make(map[string]string)
	if c.ISBN != "" {
		identifiers[metadata.IdentifierISBN] = c.ISBN
	}
	if c.DoubanID != "" {
		identifiers[metadata.IdentifierDouban] = c.DoubanID
	}

	cfg := sourceConfig()
	if c.MaxWidth > 0 {
		cfg.MaxCoverWidth = c.MaxWidth
	}
	src, err := douban.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("lookup.timeout"))
	defer cancel()

	cover, err := src.Cover(ctx, identifiers)
	if err != nil {
		if errors.Is(err, metadata.ErrNoCover) {
			return fmt.Errorf("douban has no cover for this book")
		}
		return describeLookupFailure(err)
	}

	if err := os.WriteFile(c.Output, cover.Data, 0644); err != nil {
		return fmt.Errorf("write cover: %w", err)
	}

	slog.Info("Cover saved", "path", c.Output, "bytes", len(cover.Data), "source", cover.URL)
	return nil
}
