// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpx provides a simpler http.Client abstraction and derivative uses.
package httpx

import (
	"bufio"
	"bytes"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/google/simpleindex/internal/cache"
	"github.com/google/simpleindex/internal/ratex"
	"github.com/pkg/errors"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// CachedResponse is a serialized response along with the URL it was finally
// served from, which differs from the request URL after a redirect.
type CachedResponse struct {
	URL *url.URL
	Raw []byte
}

// uncachedResponse carries a response that must reach the caller without
// being retained.
type uncachedResponse struct {
	CachedResponse
}

func (e *uncachedResponse) Error() string { return "uncached response" }

// CachedClient is a BasicClient that caches responses. Concurrent requests
// for the same resource share a single fetch.
type CachedClient struct {
	BasicClient
	ch cache.Cache[string, CachedResponse]
}

// NewCachedClient returns a new CachedClient.
func NewCachedClient(client BasicClient, c cache.Cache[string, CachedResponse]) *CachedClient {
	return &CachedClient{client, c}
}

// cacheKey distinguishes negotiated representations of the same URL.
func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String() + " " + req.Header.Get("Accept")
}

// Do attempts to fetch from cache (if applicable) or fulfills the request using the underlying client.
func (cc *CachedClient) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return cc.BasicClient.Do(req)
	}
	cr, err := cc.ch.GetOrSet(cacheKey(req), func() (CachedResponse, error) {
		return cc.fetch(req)
	})
	var unc *uncachedResponse
	if errors.As(err, &unc) {
		cr = unc.CachedResponse
	} else if err != nil {
		return nil, err
	}
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(cr.Raw)), req)
	if err != nil {
		return nil, err
	}
	if cr.URL != nil {
		final := req.Clone(req.Context())
		u := *cr.URL
		final.URL = &u
		final.Host = u.Host
		resp.Request = final
	}
	return resp, nil
}

// fetch performs req and serializes the response. Server errors are returned
// as an *uncachedResponse so they are never retained.
func (cc *CachedClient) fetch(req *http.Request) (CachedResponse, error) {
	resp, err := cc.BasicClient.Do(req)
	if err != nil {
		return CachedResponse{}, err
	}
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	if err := resp.Write(buf); err != nil {
		return CachedResponse{}, err
	}
	cr := CachedResponse{URL: req.URL, Raw: buf.Bytes()}
	if resp.Request != nil && resp.Request.URL != nil {
		cr.URL = resp.Request.URL
	}
	if isServer := (resp.StatusCode >= 500 && resp.StatusCode <= 599); isServer {
		return CachedResponse{}, &uncachedResponse{cr}
	}
	return cr, nil
}

var _ BasicClient = &CachedClient{}

// RateLimitedClient paces requests through a BackoffLimiter, slowing down
// when the server throttles or fails and speeding back up on success.
type RateLimitedClient struct {
	BasicClient
	Limiter *ratex.BackoffLimiter
}

func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.Limiter.Wait(req.Context()); err != nil {
		return nil, errors.Wrap(err, "waiting for rate limit")
	}
	resp, err := c.BasicClient.Do(req)
	if err != nil || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.Limiter.Backoff()
	} else {
		c.Limiter.Success()
	}
	return resp, err
}

var _ BasicClient = &RateLimitedClient{}

// FSHandler serves the contents of fs. A request for a directory is answered
// with the first of indexFiles present in it.
func FSHandler(fs billy.Filesystem, indexFiles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "."
		}
		s, err := fs.Stat(name)
		if err == nil && s.IsDir() {
			s, name, err = statIndex(fs, name, indexFiles)
		}
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
			} else {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}
		file, err := fs.Open(name)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer file.Close()
		http.ServeContent(w, r, name, s.ModTime(), file)
	})
}

func statIndex(fs billy.Filesystem, dir string, indexFiles []string) (os.FileInfo, string, error) {
	for _, idx := range indexFiles {
		name := path.Join(dir, idx)
		s, err := fs.Stat(name)
		if err == nil && !s.IsDir() {
			return s, name, nil
		} else if err != nil && !os.IsNotExist(err) {
			return nil, "", err
		}
	}
	return nil, "", os.ErrNotExist
}
