// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package command holds the plumbing shared by the simpleindex subcommands.
package command

import (
	"context"
	"net/http"
	"time"

	"github.com/google/simpleindex/internal/cache"
	"github.com/google/simpleindex/internal/config"
	"github.com/google/simpleindex/internal/httpx"
	"github.com/google/simpleindex/internal/ratex"
	"github.com/google/simpleindex/pkg/registry/pypi"
	"github.com/google/simpleindex/pkg/registry/pypi/simple"
	"github.com/rs/zerolog"
)

// NewClient builds the HTTP client described by cfg. The returned func
// releases its resources.
func NewClient(base httpx.BasicClient, cfg config.Config) (httpx.BasicClient, func()) {
	var client httpx.BasicClient = &httpx.WithUserAgent{BasicClient: base, UserAgent: cfg.UserAgent}
	stop := func() {}
	if d := time.Duration(cfg.MinInterval); d > 0 {
		limiter := ratex.NewBackoffLimiter(d)
		client = &httpx.RateLimitedClient{BasicClient: client, Limiter: limiter}
		stop = limiter.Stop
	}
	if cfg.Cache {
		client = httpx.NewCachedClient(client, &cache.CoalescingMemoryCache[string, httpx.CachedResponse]{})
	}
	return client, stop
}

// LogSkips reports anchors dropped by the HTML extractor at debug level.
func LogSkips(ctx context.Context) simple.Option {
	logger := zerolog.Ctx(ctx)
	return simple.WithSkipHook(func(href string, err error) {
		logger.Debug().Str("href", href).Err(err).Msg("skipping anchor")
	})
}

// NewRegistry returns the registry described by cfg. The returned func
// releases its resources.
func NewRegistry(ctx context.Context, cfg config.Config) (*pypi.HTTPRegistry, func()) {
	client, stop := NewClient(http.DefaultClient, cfg)
	return &pypi.HTTPRegistry{
		Client:   client,
		IndexURL: cfg.ParsedIndexURL(),
		Options:  []simple.Option{LogSkips(ctx)},
	}, stop
}
