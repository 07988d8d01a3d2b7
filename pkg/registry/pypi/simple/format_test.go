// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/simpleindex/internal/urlx"
)

func TestDetectFormat(t *testing.T) {
	for _, tc := range []struct {
		contentType string
		want        Format
		wantCharset string
	}{
		{"application/vnd.pypi.simple.v1+json", FormatJSON, ""},
		{"application/vnd.pypi.simple.latest+json", FormatJSON, ""},
		{"application/json; charset=utf-8", FormatJSON, "utf-8"},
		{"application/vnd.pypi.simple.v1+html", FormatHTML, ""},
		{"text/html", FormatHTML, ""},
		{"Text/HTML; charset=ISO-8859-1", FormatHTML, "ISO-8859-1"},
		{"text/plain", FormatUnknown, ""},
		{"", FormatUnknown, ""},
		{"not a media type;;", FormatUnknown, ""},
	} {
		t.Run(tc.contentType, func(t *testing.T) {
			got, charset := DetectFormat(tc.contentType)
			if got != tc.want || charset != tc.wantCharset {
				t.Errorf("DetectFormat(%q) = (%v, %q), want (%v, %q)", tc.contentType, got, charset, tc.want, tc.wantCharset)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"html", FormatHTML, false},
		{"JSON", FormatJSON, false},
		{"xml", FormatUnknown, true},
		{"", FormatUnknown, true},
	} {
		got, err := ParseFormat(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseRoutesByFormat(t *testing.T) {
	src := urlx.MustParse("https://example.com/simple/foo/")
	want := &ProjectInfo{
		Meta:  Meta{Version: DefaultAPIVersion},
		Files: []ArtifactInfo{artifact(t, "https://example.com/simple/foo/foo-1.0.tar.gz")},
	}
	for _, tc := range []struct {
		format Format
		body   string
	}{
		{FormatHTML, `<a href="foo-1.0.tar.gz">foo-1.0.tar.gz</a>`},
		{FormatJSON, `{"files": [{"filename": "foo-1.0.tar.gz", "url": "foo-1.0.tar.gz"}]}`},
	} {
		t.Run(tc.format.String(), func(t *testing.T) {
			got, err := Parse(src, tc.format, strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(want, got, urlComparer); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if _, err := Parse(src, FormatUnknown, strings.NewReader("")); err == nil {
		t.Error("Parse(FormatUnknown) succeeded, want error")
	}
}

func TestParseNamesRoutesByFormat(t *testing.T) {
	for _, tc := range []struct {
		format Format
		body   string
	}{
		{FormatHTML, `<a href="/simple/a/">a</a><a href="/simple/b/">b</a>`},
		{FormatJSON, `{"projects": [{"name": "a"}, {"name": "b"}]}`},
	} {
		t.Run(tc.format.String(), func(t *testing.T) {
			got, err := ParseNames(tc.format, strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("ParseNames() error = %v", err)
			}
			if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
				t.Errorf("ParseNames() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
