// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package urlx

import (
	"net/url"
	"strings"
)

// MustParse will call url.Parse and panic if there is an error, returning on success.
func MustParse(rawURL string) *url.URL {
	if u, err := url.Parse(rawURL); err != nil {
		panic(err)
	} else {
		return u
	}
}

// LastSegment returns the unescaped final path segment of u.
// The result is empty when the path is empty or ends in a slash.
func LastSegment(u *url.URL) string {
	p := u.Path
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// WithTrailingSlash returns a copy of u whose path ends in a slash, so that
// relative references resolve beneath it rather than beside it.
func WithTrailingSlash(u *url.URL) *url.URL {
	c := *u
	if !strings.HasSuffix(c.Path, "/") {
		c.Path += "/"
		if c.RawPath != "" {
			c.RawPath += "/"
		}
	}
	return &c
}
