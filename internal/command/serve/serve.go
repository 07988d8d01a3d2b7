// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package serve implements the command that serves a local mirror over HTTP.
package serve

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/simpleindex/internal/cli"
	"github.com/google/simpleindex/internal/httpx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Index files tried, in order, for a directory request.
var indexFiles = []string{"index.json", "index.html"}

// Config holds all configuration for the serve command.
type Config struct {
	Dir  string
	Addr string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.Wrap(err, "addr")
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
	FS billy.Filesystem
	// Listening, when set, receives the bound address once the server is accepting.
	Listening func(net.Addr)
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(_ context.Context, cfg Config) (*Deps, error) {
	return &Deps{FS: osfs.New(cfg.Dir)}, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// NewHandler serves the mirror in fs, logging each request.
func NewHandler(fs billy.Filesystem, log *zerolog.Logger) http.Handler {
	files := httpx.FSHandler(fs, indexFiles...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		files.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Handler serves the mirror until ctx is done.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	log := zerolog.Ctx(ctx)
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, errors.Wrap(err, "listening")
	}
	srv := &http.Server{Handler: NewHandler(deps.FS, log)}
	log.Info().Str("addr", ln.Addr().String()).Str("dir", cfg.Dir).Msg("serving mirror")
	if deps.Listening != nil {
		deps.Listening(ln.Addr())
	}
	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ln) }()
	select {
	case err := <-errs:
		return nil, errors.Wrap(err, "serving")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return nil, errors.Wrap(err, "shutting down")
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new serve command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "serve <dir> [--addr host:port]",
		Short: "Serve a local simple repository mirror over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: cli.RunE(
			&cfg,
			func(cfg *Config, args []string) error {
				cfg.Dir = args[0]
				return nil
			},
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", "localhost:8081", "the address on which to serve")
	return cmd
}
