// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"io"
	"net/url"
	"strings"

	"github.com/google/simpleindex/internal/urlx"
	"github.com/google/simpleindex/pkg/registry/pypi/distname"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// repositoryVersionName is the <meta name=...> that declares the API version.
const repositoryVersionName = "pypi:repository-version"

const (
	hrefAttr             = "href"
	nameAttr             = "name"
	contentAttr          = "content"
	requiresPythonAttr   = "data-requires-python"
	yankedAttr           = "data-yanked"
	distInfoMetadataAttr = "data-dist-info-metadata"
	coreMetadataAttr     = "data-core-metadata"
)

// Option configures HTML extraction.
type Option func(*options)

type options struct {
	onSkip func(href string, err error)
}

// WithSkipHook registers fn to be called for every anchor that could not be
// turned into an artifact. Skipped anchors never fail the page.
func WithSkipHook(fn func(href string, err error)) Option {
	return func(o *options) { o.onSkip = fn }
}

// tokenSink receives the events of a single forward walk over a document.
type tokenSink interface {
	startTag(name string, attrs []html.Attribute)
	endTag(name string)
	text(data []byte)
	comment(data []byte)
	doctype(data []byte)
}

// nopSink ignores every event. Embed it and override what matters.
type nopSink struct{}

func (nopSink) startTag(string, []html.Attribute) {}
func (nopSink) endTag(string)                     {}
func (nopSink) text([]byte)                       {}
func (nopSink) comment([]byte)                    {}
func (nopSink) doctype([]byte)                    {}

var _ tokenSink = nopSink{}

// walk tokenizes r exactly once, feeding every token to sink in document order.
// Input that is not valid UTF-8 fails the walk.
func walk(r io.Reader, sink tokenSink) error {
	z := html.NewTokenizer(transform.NewReader(r, encoding.UTF8Validator))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return malformed(err)
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, more := z.TagName()
			var attrs []html.Attribute
			for more {
				var k, v []byte
				k, v, more = z.TagAttr()
				attrs = append(attrs, html.Attribute{Key: string(k), Val: string(v)})
			}
			sink.startTag(string(name), attrs)
		case html.EndTagToken:
			name, _ := z.TagName()
			sink.endTag(string(name))
		case html.TextToken:
			sink.text(z.Text())
		case html.CommentToken:
			sink.comment(z.Text())
		case html.DoctypeToken:
			sink.doctype(z.Text())
		}
	}
}

// getAttr returns the value of the first attribute named key.
func getAttr(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// projectInfoSink builds a ProjectInfo from the meta, base, and anchor tags of a page.
type projectInfoSink struct {
	nopSink
	base *url.URL
	// baseFixed is set once a <base> was seen. Only the first one counts.
	baseFixed bool
	info      *ProjectInfo
	opts      options
}

func (s *projectInfoSink) startTag(name string, attrs []html.Attribute) {
	switch name {
	case "meta":
		if n, _ := getAttr(attrs, nameAttr); n == repositoryVersionName {
			if v, ok := getAttr(attrs, contentAttr); ok {
				s.info.Meta.Version = v
			}
		}
	case "base":
		if s.baseFixed {
			return
		}
		s.baseFixed = true
		if href, ok := getAttr(attrs, hrefAttr); ok {
			if u, err := s.base.Parse(strings.TrimSpace(href)); err == nil {
				s.base = u
			}
		}
	case "a":
		href, ok := getAttr(attrs, hrefAttr)
		if !ok {
			return
		}
		a, err := s.artifact(href, attrs)
		if err != nil {
			if s.opts.onSkip != nil {
				s.opts.onSkip(href, err)
			}
			return
		}
		s.info.Files = append(s.info.Files, a)
	}
}

// artifact builds an ArtifactInfo from an anchor, resolving href against the
// base in effect at this point in the document.
func (s *projectInfoSink) artifact(href string, attrs []html.Attribute) (ArtifactInfo, error) {
	u, err := s.base.Parse(strings.TrimSpace(href))
	if err != nil {
		return ArtifactInfo{}, errors.Wrap(err, "resolving href")
	}
	filename, err := distname.Parse(urlx.LastSegment(u))
	if err != nil {
		return ArtifactInfo{}, err
	}
	a := ArtifactInfo{
		Filename: filename,
		URL:      u,
		Hashes:   parseFragmentHash(u.Fragment),
	}
	if v, ok := getAttr(attrs, requiresPythonAttr); ok {
		a.RequiresPython = &v
	}
	if v, ok := getAttr(attrs, distInfoMetadataAttr); ok {
		a.DistInfoMetadata = distInfoMetadataFromAttr(v)
	} else if v, ok := getAttr(attrs, coreMetadataAttr); ok {
		a.DistInfoMetadata = distInfoMetadataFromAttr(v)
	}
	if v, ok := getAttr(attrs, yankedAttr); ok {
		a.Yanked = yankedFromAttr(v)
	}
	return a, nil
}

// distInfoMetadataFromAttr interprets a present data-dist-info-metadata value.
// Presence alone marks the metadata as available; a recognized hash adds digests.
func distInfoMetadataFromAttr(v string) DistInfoMetadata {
	hashes, _ := parseAttrHash(v)
	return DistInfoMetadata{Available: true, Hashes: hashes}
}

// yankedFromAttr interprets a present data-yanked value, which holds the
// reason, possibly empty.
func yankedFromAttr(v string) Yanked {
	return Yanked{Yanked: true, Reason: &v}
}

// ParseSourceURL parses the URL a page was served from.
func ParseSourceURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSourceURL, "%v", err)
	}
	if err := checkSourceURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

func checkSourceURL(src *url.URL) error {
	if src == nil {
		return errors.Wrap(ErrInvalidSourceURL, "missing")
	}
	if !src.IsAbs() || (src.Host == "" && src.Scheme != "file") {
		return errors.Wrapf(ErrInvalidSourceURL, "%q is not absolute", src.String())
	}
	return nil
}

// ParseProjectInfoHTML extracts the artifacts of a PEP 503 project page read
// from r. src is the URL the page was served from and the initial base for
// resolving links.
//
// Anchors that do not name a recognizable distribution are skipped. The call
// only fails when src is unusable or r is not a readable UTF-8 document.
func ParseProjectInfoHTML(src *url.URL, r io.Reader, opts ...Option) (*ProjectInfo, error) {
	if err := checkSourceURL(src); err != nil {
		return nil, err
	}
	base := *src
	sink := &projectInfoSink{base: &base, info: NewProjectInfo()}
	for _, opt := range opts {
		opt(&sink.opts)
	}
	if err := walk(r, sink); err != nil {
		return nil, err
	}
	return sink.info, nil
}
