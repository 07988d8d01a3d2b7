// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ParseArgs populates an Input from positional arguments.
type ParseArgs[I Input] func(in *I, args []string) error

// SkipArgs is a ParseArgs that sets no arguments.
func SkipArgs[I Input](cfg *I, args []string) error {
	return nil
}

// RunE constructs a cobra.Command.RunE from its components.
// This function wires together:
//  1. Parsing positional arguments into the Input
//  2. Validating the Input
//  3. Initializing dependencies
//  4. Attaching IO streams to dependencies
//  5. Executing the action with the global logger on its context
func RunE[I Input, O any, D Deps](
	cfg *I,
	parseArgs ParseArgs[I],
	initDeps InitDeps[I, D],
	action Action[I, O, D],
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := parseArgs(cfg, args); err != nil {
			return err
		}
		if err := (*cfg).Validate(); err != nil {
			return err
		}
		logger := log.Logger.With().Str("command", cmd.Name()).Logger()
		ctx := logger.WithContext(cmd.Context())
		deps, err := initDeps(ctx, *cfg)
		if err != nil {
			return errors.Wrap(err, "initializing dependencies")
		}
		deps.SetIO(IO{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
		zerolog.Ctx(ctx).Debug().Strs("args", args).Msg("running")
		_, err = action(ctx, *cfg, deps)
		return err
	}
}
