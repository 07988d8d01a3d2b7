// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/simpleindex/internal/urlx"
	"github.com/google/simpleindex/pkg/registry/pypi/distname"
)

var urlComparer = cmp.Comparer(func(a, b *url.URL) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
})

func mustName(t *testing.T, filename string) distname.ArtifactName {
	t.Helper()
	n, err := distname.Parse(filename)
	if err != nil {
		t.Fatalf("distname.Parse(%q): %v", filename, err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }

func artifact(t *testing.T, rawURL string) ArtifactInfo {
	t.Helper()
	u := urlx.MustParse(rawURL)
	return ArtifactInfo{Filename: mustName(t, urlx.LastSegment(u)), URL: u}
}

func TestHTMLAndJSONCollapseAlike(t *testing.T) {
	src := urlx.MustParse("https://example.com/simple/foo/")
	for _, tc := range []struct {
		name      string
		htmlAttrs string
		jsonField string
	}{
		{name: "empty yank reason", htmlAttrs: `data-yanked=""`, jsonField: `"yanked": ""`},
		{name: "yank reason", htmlAttrs: `data-yanked="bad"`, jsonField: `"yanked": "bad"`},
		{name: "metadata available", htmlAttrs: `data-dist-info-metadata="true"`, jsonField: `"dist-info-metadata": true`},
		{name: "metadata hash", htmlAttrs: `data-core-metadata="md5=` + strings.Repeat("0", 32) + `"`, jsonField: `"core-metadata": {"md5": "` + strings.Repeat("0", 32) + `"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fromHTML, err := ParseProjectInfoHTML(src, strings.NewReader(`<a href="foo-1.0.tar.gz" `+tc.htmlAttrs+`>foo</a>`))
			if err != nil {
				t.Fatalf("ParseProjectInfoHTML() error = %v", err)
			}
			fromJSON, err := ParseProjectInfoJSON(src, strings.NewReader(`{"files": [{"filename": "foo-1.0.tar.gz", "url": "foo-1.0.tar.gz", `+tc.jsonField+`}]}`))
			if err != nil {
				t.Fatalf("ParseProjectInfoJSON() error = %v", err)
			}
			if diff := cmp.Diff(fromJSON, fromHTML, urlComparer); diff != "" {
				t.Errorf("html and json disagree (-json +html):\n%s", diff)
			}
		})
	}
}
