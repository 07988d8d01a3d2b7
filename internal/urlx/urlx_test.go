// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package urlx

import "testing"

func TestLastSegment(t *testing.T) {
	for _, tc := range []struct {
		url  string
		want string
	}{
		{"https://example.com/simple/foo/foo-1.0.tar.gz", "foo-1.0.tar.gz"},
		{"https://example.com/simple/foo/foo-1.0.tar.gz#sha256=00", "foo-1.0.tar.gz"},
		{"https://example.com/simple/foo/", ""},
		{"https://example.com", ""},
		{"https://example.com/a%20b-1.0.zip", "a b-1.0.zip"},
	} {
		if got := LastSegment(MustParse(tc.url)); got != tc.want {
			t.Errorf("LastSegment(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestWithTrailingSlash(t *testing.T) {
	for _, tc := range []struct {
		url  string
		want string
	}{
		{"https://pypi.org/simple", "https://pypi.org/simple/"},
		{"https://pypi.org/simple/", "https://pypi.org/simple/"},
		{"https://pypi.org", "https://pypi.org/"},
	} {
		u := MustParse(tc.url)
		if got := WithTrailingSlash(u).String(); got != tc.want {
			t.Errorf("WithTrailingSlash(%q) = %q, want %q", tc.url, got, tc.want)
		}
		if u.String() != tc.url {
			t.Errorf("WithTrailingSlash mutated its input: %q", u.String())
		}
	}
}
