// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"io"
	"mime"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Format is the wire format of a simple API page.
type Format int

const (
	FormatUnknown Format = iota
	FormatHTML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Content types defined by PEP 691.
const (
	ContentTypeJSON       = "application/vnd.pypi.simple.v1+json"
	ContentTypeHTML       = "application/vnd.pypi.simple.v1+html"
	ContentTypeLatestJSON = "application/vnd.pypi.simple.latest+json"
	ContentTypeLatestHTML = "application/vnd.pypi.simple.latest+html"
)

// AcceptHeader prefers JSON and falls back to either form of HTML.
const AcceptHeader = ContentTypeJSON + ", " + ContentTypeHTML + ";q=0.2, text/html;q=0.01"

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatUnknown, errors.Errorf("unknown format %q", name)
	}
}

// DetectFormat classifies a Content-Type header value. The returned charset is
// empty when the header does not declare one.
func DetectFormat(contentType string) (f Format, charset string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatUnknown, ""
	}
	charset = params["charset"]
	switch mediaType {
	case ContentTypeJSON, ContentTypeLatestJSON, "application/json":
		return FormatJSON, charset
	case ContentTypeHTML, ContentTypeLatestHTML, "text/html", "application/xhtml+xml":
		return FormatHTML, charset
	default:
		return FormatUnknown, charset
	}
}

// Parse routes r to the extractor for f.
func Parse(src *url.URL, f Format, r io.Reader, opts ...Option) (*ProjectInfo, error) {
	switch f {
	case FormatHTML:
		return ParseProjectInfoHTML(src, r, opts...)
	case FormatJSON:
		return ParseProjectInfoJSON(src, r)
	default:
		return nil, errors.Errorf("unsupported page format %v", f)
	}
}

// ParseNames routes a root index page to the name extractor for f.
func ParseNames(f Format, r io.Reader) ([]string, error) {
	switch f {
	case FormatHTML:
		return ParsePackageNamesHTML(r)
	case FormatJSON:
		return ParsePackageNamesJSON(r)
	default:
		return nil, errors.Errorf("unsupported page format %v", f)
	}
}
