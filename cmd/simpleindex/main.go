// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// The simpleindex binary fetches, normalizes and serves Python package index
// "simple" repository pages.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/simpleindex/internal/command/index"
	"github.com/google/simpleindex/internal/command/parse"
	"github.com/google/simpleindex/internal/command/project"
	"github.com/google/simpleindex/internal/command/serve"
	"github.com/google/simpleindex/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// rootFlags are the persistent flags shared by all commands.
type rootFlags struct {
	ConfigPath  string
	IndexURL    string
	UserAgent   string
	Output      string
	Concurrency int
	MinInterval time.Duration
	NoCache     bool
	Verbose     bool
}

func (f *rootFlags) register(set *pflag.FlagSet) {
	d := config.Default()
	set.StringVar(&f.ConfigPath, "config", "", "path to a TOML config file")
	set.StringVar(&f.IndexURL, "index-url", d.IndexURL, "the simple repository root (env "+config.EnvIndexURL+")")
	set.StringVar(&f.UserAgent, "user-agent", d.UserAgent, "the User-Agent sent with requests")
	set.StringVarP(&f.Output, "output", "o", d.Output, "output format [table, json, yaml]")
	set.IntVar(&f.Concurrency, "concurrency", d.Concurrency, "maximum concurrent page fetches")
	set.DurationVar(&f.MinInterval, "min-interval", time.Duration(d.MinInterval), "minimum time between requests; zero disables rate limiting")
	set.BoolVar(&f.NoCache, "no-cache", false, "disable the in-memory response cache")
	set.BoolVarP(&f.Verbose, "verbose", "v", false, "enable debug logging")
}

// resolve layers explicitly set flags over the config file and environment.
func (f *rootFlags) resolve(set *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.FromEnvironment(osfs.Default, f.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if set.Changed("index-url") {
		cfg.IndexURL = f.IndexURL
	}
	if set.Changed("user-agent") {
		cfg.UserAgent = f.UserAgent
	}
	if set.Changed("output") {
		cfg.Output = f.Output
	}
	if set.Changed("concurrency") {
		cfg.Concurrency = f.Concurrency
	}
	if set.Changed("min-interval") {
		cfg.MinInterval = config.Duration(f.MinInterval)
	}
	if set.Changed("no-cache") {
		cfg.Cache = !f.NoCache
	}
	return cfg, nil
}

func setupLogging(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	settings := &config.Config{}
	rootCmd := &cobra.Command{
		Use:   "simpleindex [subcommand]",
		Short: "A CLI tool for Python package index simple repository pages",
		// Silence errors because we will print the error ourselves in main.
		SilenceErrors: true,
		// Don't show usage for every error.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(flags.Verbose)
			cfg, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			*settings = cfg
			log.Debug().Str("index-url", cfg.IndexURL).Str("output", cfg.Output).Int("concurrency", cfg.Concurrency).Msg("resolved settings")
			return nil
		},
	}
	flags.register(rootCmd.PersistentFlags())
	rootCmd.AddCommand(project.Command(settings))
	rootCmd.AddCommand(parse.Command(settings))
	rootCmd.AddCommand(index.Command(settings))
	rootCmd.AddCommand(serve.Command())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
