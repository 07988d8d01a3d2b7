// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package parse implements the command that normalizes a page saved to disk.
package parse

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/simpleindex/internal/cli"
	"github.com/google/simpleindex/internal/command"
	"github.com/google/simpleindex/internal/config"
	"github.com/google/simpleindex/internal/render"
	"github.com/google/simpleindex/pkg/registry/pypi/simple"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the parse command.
type Config struct {
	Settings config.Config
	// Path is the page to read, or "-" for stdin.
	Path string
	// URL is the location the page was served from.
	URL string
	// Format is "html", "json", or empty to infer it from the file extension.
	Format string
	// Root parses the page as a root listing of project names.
	Root bool
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	if c.Path == "-" && c.URL == "" && !c.Root {
		return errors.New("--url is required when reading from stdin")
	}
	if c.Format != "" {
		if _, err := simple.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	return c.Settings.Validate()
}

func (c Config) format() simple.Format {
	if c.Format != "" {
		f, _ := simple.ParseFormat(c.Format)
		return f
	}
	if strings.EqualFold(filepath.Ext(c.Path), ".json") {
		return simple.FormatJSON
	}
	return simple.FormatHTML
}

func (c Config) sourceURL() (*url.URL, error) {
	if c.URL != "" {
		return simple.ParseSourceURL(c.URL)
	}
	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return nil, errors.Wrap(err, "resolving path")
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
	FS billy.Basic
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context, Config) (*Deps, error) {
	return &Deps{FS: osfs.Default}, nil
}

func (d *Deps) open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(d.IO.In), nil
	}
	return d.FS.Open(path)
}

// Handler parses the page and prints the result.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	r, err := deps.open(cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening page")
	}
	defer r.Close()
	if cfg.Root {
		names, err := simple.ParseNames(cfg.format(), r)
		if err != nil {
			return nil, errors.Wrap(err, "parsing root listing")
		}
		return &cli.NoOutput{}, render.Names(deps.IO.Out, cfg.Settings.Output, names)
	}
	src, err := cfg.sourceURL()
	if err != nil {
		return nil, err
	}
	info, err := simple.Parse(src, cfg.format(), r, command.LogSkips(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", cfg.Path)
	}
	return &cli.NoOutput{}, render.Projects(deps.IO.Out, cfg.Settings.Output, []render.Project{{Name: cfg.Path, Info: info}})
}

// Command creates a new parse command instance.
func Command(settings *config.Config) *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "parse <file> [--url <source>] [--format html|json] [--root]",
		Short: "Normalize a simple API page read from a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: cli.RunE(
			&cfg,
			func(cfg *Config, args []string) error {
				cfg.Settings = *settings
				cfg.Path = args[0]
				return nil
			},
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().StringVar(&cfg.URL, "url", "", "the URL the page was served from, used to resolve relative links")
	cmd.Flags().StringVar(&cfg.Format, "format", "", "the page format [html, json]; inferred from the file extension when empty")
	cmd.Flags().BoolVar(&cfg.Root, "root", false, "parse the page as the root listing of project names")
	return cmd
}
