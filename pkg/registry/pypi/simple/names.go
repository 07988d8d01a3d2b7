// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ParsePackageNamesHTML returns the text of every anchor in a root index page
// (e.g. /simple/), in document order and without deduplication.
func ParsePackageNamesHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(transform.NewReader(r, encoding.UTF8Validator))
	if err != nil {
		return nil, malformed(err)
	}
	names := []string{}
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	return names, nil
}
