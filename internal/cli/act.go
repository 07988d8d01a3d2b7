// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli wires validated command configurations, their dependencies and
// their handlers into cobra commands.
package cli

import "context"

// Input is a validated input type (flags, positional arguments, etc.)
type Input interface {
	Validate() error
}

// Deps is implemented by dependency containers that write to the terminal.
type Deps interface {
	SetIO(IO)
}

// InitDeps initializes dependencies from context.
type InitDeps[I Input, D Deps] func(context.Context, I) (D, error)

// Action is the business logic of a command.
type Action[I Input, O any, D Deps] func(context.Context, I, D) (*O, error)

// NoOutput is a zero-value output for actions that only produce side effects.
type NoOutput struct{}
