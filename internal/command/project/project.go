// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package project implements the command that fetches and prints project pages.
package project

import (
	"context"

	"github.com/cheggaaa/pb"
	"github.com/google/simpleindex/internal/cli"
	"github.com/google/simpleindex/internal/command"
	"github.com/google/simpleindex/internal/config"
	"github.com/google/simpleindex/internal/render"
	"github.com/google/simpleindex/pkg/registry/pypi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Config holds all configuration for the project command.
type Config struct {
	Settings config.Config
	Names    []string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if len(c.Names) == 0 {
		return errors.New("at least one project name is required")
	}
	return c.Settings.Validate()
}

// Deps holds dependencies for the command.
type Deps struct {
	IO       cli.IO
	Registry pypi.Registry
	// Progress enables the progress bar for multi-project fetches.
	Progress bool
	close    func()
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(ctx context.Context, cfg Config) (*Deps, error) {
	r, stop := command.NewRegistry(ctx, cfg.Settings)
	return &Deps{Registry: r, Progress: true, close: stop}, nil
}

// Handler fetches every requested project concurrently and prints them in
// the order they were requested.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	if deps.close != nil {
		defer deps.close()
	}
	log := zerolog.Ctx(ctx)
	projects := make([]render.Project, len(cfg.Names))
	var bar *pb.ProgressBar
	if deps.Progress && len(cfg.Names) > 1 {
		bar = pb.New(len(cfg.Names))
		bar.Output = deps.IO.Err
		bar.ShowTimeLeft = true
		bar.Start()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Settings.Concurrency)
	for i, name := range cfg.Names {
		g.Go(func() error {
			info, err := deps.Registry.Project(gctx, name)
			if err != nil {
				return errors.Wrapf(err, "project %s", name)
			}
			log.Debug().Str("project", name).Int("files", len(info.Files)).Str("api-version", info.Meta.Version).Msg("fetched")
			projects[i] = render.Project{Name: name, Info: info}
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	err := g.Wait()
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	if err := render.Projects(deps.IO.Out, cfg.Settings.Output, projects); err != nil {
		return nil, err
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new project command instance. settings is read when the
// command runs, after the root command has resolved it.
func Command(settings *config.Config) *cobra.Command {
	cfg := Config{}
	return &cobra.Command{
		Use:   "project <name>...",
		Short: "Fetch and print the normalized pages of one or more projects",
		Args:  cobra.MinimumNArgs(1),
		RunE: cli.RunE(
			&cfg,
			func(cfg *Config, args []string) error {
				cfg.Settings = *settings
				cfg.Names = args
				return nil
			},
			InitDeps,
			Handler,
		),
	}
}
