package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/bookmeta/douban"
)

// CLI represents the complete command structure for the doubanmeta application
type CLI struct {
	// Global flags
	Format       string        `help:"Output format: table, json or yaml" enum:"table,json,yaml" default:"table"`
	OmitSubtitle bool          `help:"Leave the subtitle out of normalized titles"`
	Timeout      time.Duration `help:"Deadline for a whole lookup" default:"30s"`

	Lookup LookupCmd `cmd:"" help:"Look up book metadata on Douban"`
	Cover  CoverCmd  `cmd:"" help:"Download a book cover from Douban"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("doubanmeta"),
		kong.Description("Look up book metadata and covers on Douban Books."),
		kong.UsageOnError(),
	)

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("douban.request_timeout", "10s")
	viper.SetDefault("douban.min_score", 0.5)
	viper.SetDefault("douban.max_results", 5)
	viper.SetDefault("douban.requests_per_second", 2.0)
	viper.SetDefault("douban.retry_attempts", 1)
	viper.SetDefault("douban.retry_backoff", "2s")
	viper.SetDefault("cover.max_width", 0)
	viper.SetDefault("lookup.timeout", "30s")
	viper.SetDefault("output.format", "table")

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := viper.BindEnv("douban.user_agent", "DOUBAN_USER_AGENT"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}
}

func updateGlobalConfig(cli *CLI) {
	viper.Set("output.format", cli.Format)
	viper.Set("douban.omit_subtitle", cli.OmitSubtitle)
	viper.Set("lookup.timeout", cli.Timeout.String())
}

// sourceConfig assembles the lookup configuration from viper, where config
// file values, environment bindings and flag overrides have already settled.
func sourceConfig() douban.Config {
	return douban.Config{
		Timeout:           viper.GetDuration("douban.request_timeout"),
		MinScore:          viper.GetFloat64("douban.min_score"),
		MaxResults:        viper.GetInt("douban.max_results"),
		RequestsPerSecond: viper.GetFloat64("douban.requests_per_second"),
		RetryAttempts:     viper.GetInt("douban.retry_attempts"),
		RetryBackoff:      viper.GetDuration("douban.retry_backoff"),
		OmitSubtitle:      viper.GetBool("douban.omit_subtitle"),
		MaxCoverWidth:     viper.GetInt("cover.max_width"),
		UserAgent:         viper.GetString("douban.user_agent"),
		SearchURL:         viper.GetString("douban.search_url"),
		BookURL:           viper.GetString("douban.book_url"),
	}
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("DOUBAN_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
