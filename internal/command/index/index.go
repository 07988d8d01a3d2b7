// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package index implements the command that lists the projects of a repository.
package index

import (
	"context"
	"slices"

	"github.com/google/simpleindex/internal/cli"
	"github.com/google/simpleindex/internal/command"
	"github.com/google/simpleindex/internal/config"
	"github.com/google/simpleindex/internal/render"
	"github.com/google/simpleindex/pkg/registry/pypi"
	"github.com/google/simpleindex/pkg/registry/pypi/distname"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the index command.
type Config struct {
	Settings config.Config
	// Normalize rewrites names to their PEP 503 form and drops duplicates.
	Normalize bool
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	return c.Settings.Validate()
}

// Deps holds dependencies for the command.
type Deps struct {
	IO       cli.IO
	Registry pypi.Registry
	close    func()
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(ctx context.Context, cfg Config) (*Deps, error) {
	r, stop := command.NewRegistry(ctx, cfg.Settings)
	return &Deps{Registry: r, close: stop}, nil
}

// Handler prints the names on the repository root page.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	if deps.close != nil {
		defer deps.close()
	}
	names, err := deps.Registry.Index(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}
	zerolog.Ctx(ctx).Debug().Int("count", len(names)).Msg("listed projects")
	if cfg.Normalize {
		for i, n := range names {
			names[i] = distname.NormalizeName(n)
		}
		slices.Sort(names)
		names = slices.Compact(names)
	}
	if err := render.Names(deps.IO.Out, cfg.Settings.Output, names); err != nil {
		return nil, err
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new index command instance.
func Command(settings *config.Config) *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "index [--normalize]",
		Short: "List the projects on the repository root page",
		Args:  cobra.NoArgs,
		RunE: cli.RunE(
			&cfg,
			func(cfg *Config, _ []string) error {
				cfg.Settings = *settings
				return nil
			},
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().BoolVar(&cfg.Normalize, "normalize", false, "print normalized names, sorted and without duplicates")
	return cmd
}
