// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package pypi describes the PyPI simple repository interface.
package pypi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/google/simpleindex/internal/httpx"
	"github.com/google/simpleindex/internal/urlx"
	"github.com/google/simpleindex/pkg/registry/pypi/distname"
	"github.com/google/simpleindex/pkg/registry/pypi/simple"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultIndexURL is the simple repository root of pypi.org.
var DefaultIndexURL = urlx.MustParse("https://pypi.org/simple/")

// ErrNotFound is returned when the index has no page for the requested project.
var ErrNotFound = errors.New("not found")

// Registry is a PyPI simple repository.
type Registry interface {
	// Project returns the normalized project page for the given project name.
	Project(context.Context, string) (*simple.ProjectInfo, error)
	// Index returns the project names listed on the repository root page.
	Index(context.Context) ([]string, error)
}

// HTTPRegistry is a Registry implementation that speaks the simple API over HTTP.
type HTTPRegistry struct {
	Client httpx.BasicClient
	// IndexURL is the repository root. DefaultIndexURL is used when nil.
	IndexURL *url.URL
	// Options are passed to the HTML extractor.
	Options []simple.Option
}

var _ Registry = &HTTPRegistry{}

func (r HTTPRegistry) indexURL() *url.URL {
	if r.IndexURL == nil {
		return DefaultIndexURL
	}
	return urlx.WithTrailingSlash(r.IndexURL)
}

// ProjectURL returns the location of the page for the given project name.
func (r HTTPRegistry) ProjectURL(name string) *url.URL {
	return urlx.WithTrailingSlash(r.indexURL().JoinPath(distname.NormalizeName(name)))
}

func (r HTTPRegistry) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", simple.AcceptHeader)
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, errors.Wrap(ErrNotFound, u.String())
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, errors.New(resp.Status)
	}
	return resp, nil
}

// responseBody classifies resp and returns its body decoded to UTF-8.
func responseBody(resp *http.Response) (simple.Format, io.Reader, error) {
	ct := resp.Header.Get("Content-Type")
	f, charset := simple.DetectFormat(ct)
	if f == simple.FormatUnknown {
		return f, nil, errors.Errorf("unsupported content type %q", ct)
	}
	body, err := decodeCharset(charset, resp.Body)
	if err != nil {
		return f, nil, err
	}
	return f, body, nil
}

// decodeCharset transcodes r from the named charset. UTF-8 input is left
// untouched so that invalid sequences still fail the parse.
func decodeCharset(charset string, r io.Reader) (io.Reader, error) {
	if charset == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported charset %q", charset)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return r, nil
	}
	return enc.NewDecoder().Reader(r), nil
}

// sourceURL is the location the response was actually served from.
func sourceURL(requested *url.URL, resp *http.Response) *url.URL {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL
	}
	return requested
}

// Project fetches and normalizes the page for the given project.
func (r HTTPRegistry) Project(ctx context.Context, name string) (*simple.ProjectInfo, error) {
	u := r.ProjectURL(name)
	resp, err := r.get(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "fetching project")
	}
	defer resp.Body.Close()
	f, body, err := responseBody(resp)
	if err != nil {
		return nil, errors.Wrap(err, "reading project")
	}
	info, err := simple.Parse(sourceURL(u, resp), f, body, r.Options...)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing project %s", name)
	}
	return info, nil
}

// Index fetches the names listed on the repository root page.
func (r HTTPRegistry) Index(ctx context.Context) ([]string, error) {
	resp, err := r.get(ctx, r.indexURL())
	if err != nil {
		return nil, errors.Wrap(err, "fetching index")
	}
	defer resp.Body.Close()
	f, body, err := responseBody(resp)
	if err != nil {
		return nil, errors.Wrap(err, "reading index")
	}
	names, err := simple.ParseNames(f, body)
	if err != nil {
		return nil, errors.Wrap(err, "parsing index")
	}
	return names, nil
}

// FSRegistry is a Registry implementation over a local mirror laid out as
// <normalized-name>/index.json or <normalized-name>/index.html, with the
// root listing at the top level.
type FSRegistry struct {
	FS billy.Filesystem
	// URL is the location the mirror is served from, used to resolve relative
	// links. Links resolve to file URLs when nil.
	URL     *url.URL
	Options []simple.Option
}

var _ Registry = &FSRegistry{}

var indexFiles = []struct {
	name   string
	format simple.Format
}{
	{"index.json", simple.FormatJSON},
	{"index.html", simple.FormatHTML},
}

func (r FSRegistry) open(dir string) (billy.File, simple.Format, error) {
	for _, idx := range indexFiles {
		f, err := r.FS.Open(path.Join(dir, idx.name))
		if err == nil {
			return f, idx.format, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, simple.FormatUnknown, err
		}
	}
	return nil, simple.FormatUnknown, errors.Wrap(ErrNotFound, dir)
}

func (r FSRegistry) baseURL() *url.URL {
	if r.URL == nil {
		return &url.URL{Scheme: "file", Path: "/"}
	}
	return urlx.WithTrailingSlash(r.URL)
}

// Project reads and normalizes the mirrored page for the given project.
func (r FSRegistry) Project(_ context.Context, name string) (*simple.ProjectInfo, error) {
	dir := distname.NormalizeName(name)
	f, format, err := r.open(dir)
	if err != nil {
		return nil, errors.Wrap(err, "opening project")
	}
	defer f.Close()
	src := urlx.WithTrailingSlash(r.baseURL().JoinPath(dir))
	info, err := simple.Parse(src, format, f, r.Options...)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing project %s", name)
	}
	return info, nil
}

// Index reads the names listed on the mirrored root page.
func (r FSRegistry) Index(_ context.Context) ([]string, error) {
	f, format, err := r.open("")
	if err != nil {
		return nil, errors.Wrap(err, "opening index")
	}
	defer f.Close()
	names, err := simple.ParseNames(format, f)
	if err != nil {
		return nil, errors.Wrap(err, "parsing index")
	}
	return names, nil
}
