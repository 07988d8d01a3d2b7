// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestParsePackageNamesHTML(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "root listing",
			doc: `<html>
  <head>
    <meta name="pypi:repository-version" content="1.1">
    <title>Simple index</title>
  </head>
  <body>
    <a href="/simple/0/">0</a>
    <a href="/simple/0-0/">0-._.-._.-._.-._.-._.-._.-0</a>
    <a href="/simple/00print-lol/">00print_lol</a>
    <a href="/simple/00smalinux/">00SMALINUX</a>
    <a href="/simple/0-618/">0.618</a>
    <a href="/simple/0x-contract-wrappers/">0x-contract-wrappers</a>
  </body>
</html>`,
			want: []string{"0", "0-._.-._.-._.-._.-._.-._.-0", "00print_lol", "00SMALINUX", "0.618", "0x-contract-wrappers"},
		},
		{
			name: "duplicates are kept",
			doc:  `<a href="/a/">a</a><a href="/b/">b</a><a href="/a/">a</a>`,
			want: []string{"a", "b", "a"},
		},
		{
			name: "nested text is flattened",
			doc:  `<a href="/a/"><b>zope</b>.<i>interface</i></a>`,
			want: []string{"zope.interface"},
		},
		{
			name: "entities are decoded",
			doc:  `<a>a&amp;b</a>`,
			want: []string{"a&b"},
		},
		{
			name: "no anchors",
			doc:  `<html><body><p>nothing here</p></body></html>`,
			want: []string{},
		},
		{
			name: "empty document",
			doc:  ``,
			want: []string{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePackageNamesHTML(strings.NewReader(tc.doc))
			if err != nil {
				t.Fatalf("ParsePackageNamesHTML() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParsePackageNamesHTML() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePackageNamesHTMLMalformed(t *testing.T) {
	_, err := ParsePackageNamesHTML(strings.NewReader("<a>\xc3\x28</a>"))
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("err = %v, want ErrMalformedDocument", err)
	}
}
