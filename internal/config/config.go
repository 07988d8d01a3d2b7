// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package config loads simpleindex settings from a TOML file and the environment.
package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvIndexURL    = "SIMPLEINDEX_INDEX_URL"
	EnvUserAgent   = "SIMPLEINDEX_USER_AGENT"
	EnvConcurrency = "SIMPLEINDEX_CONCURRENCY"
)

// Output formats accepted by the CLI.
var outputs = map[string]bool{"json": true, "yaml": true, "table": true}

// Duration is a time.Duration written as a Go duration string, e.g. "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds the settings shared by all commands.
type Config struct {
	IndexURL    string   `toml:"index-url"`
	UserAgent   string   `toml:"user-agent"`
	Output      string   `toml:"output"`
	Concurrency int      `toml:"concurrency"`
	MinInterval Duration `toml:"min-interval"`
	Cache       bool     `toml:"cache"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		IndexURL:    "https://pypi.org/simple/",
		UserAgent:   "simpleindex",
		Output:      "table",
		Concurrency: 4,
		MinInterval: Duration(100 * time.Millisecond),
		Cache:       true,
	}
}

// Load returns the defaults overlaid with the TOML file at path.
// An empty path skips the file.
func Load(fs billy.Basic, path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := util.ReadFile(fs, path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	if err := toml.Unmarshal(b, &c); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return c, nil
}

// ApplyEnv overrides settings from the environment, as read by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvIndexURL); ok && v != "" {
		c.IndexURL = v
	}
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", EnvConcurrency)
		}
		c.Concurrency = n
	}
	return nil
}

// FromEnvironment loads the file at path and applies the process environment.
func FromEnvironment(fs billy.Basic, path string) (Config, error) {
	c, err := Load(fs, path)
	if err != nil {
		return Config{}, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.IndexURL)
	if err != nil {
		return errors.Wrap(err, "index-url")
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.Errorf("index-url %q is not an absolute URL", c.IndexURL)
	}
	if !outputs[c.Output] {
		return errors.Errorf("unknown output %q", c.Output)
	}
	if c.Concurrency < 1 {
		return errors.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.MinInterval < 0 {
		return errors.Errorf("min-interval must not be negative, got %v", time.Duration(c.MinInterval))
	}
	return nil
}

// ParsedIndexURL returns IndexURL as a URL. Call Validate first.
func (c Config) ParsedIndexURL() *url.URL {
	u, _ := url.Parse(c.IndexURL)
	return u
}
