// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package simple normalizes package index project pages, published as either
// HTML (PEP 503) or JSON (PEP 691), into a single model.
package simple

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/url"

	"github.com/google/simpleindex/pkg/registry/pypi/distname"
)

// DefaultAPIVersion is assumed when a page does not declare its version.
const DefaultAPIVersion = "1.0"

// ProjectInfo lists the files an index provides for a single project.
type ProjectInfo struct {
	Meta Meta `json:"meta" yaml:"meta"`
	// Files are kept in document order. Earlier entries may be preferred as primary.
	Files []ArtifactInfo `json:"files" yaml:"files"`
}

// NewProjectInfo returns an empty ProjectInfo at the default API version.
func NewProjectInfo() *ProjectInfo {
	return &ProjectInfo{Meta: Meta{Version: DefaultAPIVersion}, Files: []ArtifactInfo{}}
}

// Meta describes the version of the API that served the page.
type Meta struct {
	Version string `json:"api-version" yaml:"api-version"`
}

// ArtifactInfo describes a single downloadable file.
type ArtifactInfo struct {
	Filename distname.ArtifactName
	URL      *url.URL
	// Hashes is nil when the index published no digest for the file.
	Hashes           *ArtifactHashes
	RequiresPython   *string
	DistInfoMetadata DistInfoMetadata
	Yanked           Yanked
}

// ArtifactHashes holds the decoded digests of an artifact.
// A nil digest is absent, which is distinct from a present but zero-valued one.
type ArtifactHashes struct {
	SHA256 []byte
	MD5    []byte
}

// IsEmpty reports whether no digest is present.
func (h ArtifactHashes) IsEmpty() bool {
	return h.SHA256 == nil && h.MD5 == nil
}

func (h ArtifactHashes) hexDigests() map[string]string {
	m := map[string]string{}
	if h.SHA256 != nil {
		m["sha256"] = hex.EncodeToString(h.SHA256)
	}
	if h.MD5 != nil {
		m["md5"] = hex.EncodeToString(h.MD5)
	}
	return m
}

// MarshalJSON encodes the digests as a mapping of algorithm to hex digest.
func (h ArtifactHashes) MarshalJSON() ([]byte, error) {
	return marshalJSON(h.hexDigests())
}

// MarshalYAML encodes the digests as a mapping of algorithm to hex digest.
func (h ArtifactHashes) MarshalYAML() (any, error) {
	return h.hexDigests(), nil
}

// DistInfoMetadata describes whether the core metadata of an artifact can be
// fetched separately from {url}.metadata (PEP 658).
// Hashes is always empty when Available is false.
type DistInfoMetadata struct {
	Available bool
	Hashes    ArtifactHashes
}

// wire returns the PEP 691 encoding: false, true, or a hash mapping.
func (m DistInfoMetadata) wire() any {
	switch {
	case !m.Available:
		return false
	case m.Hashes.IsEmpty():
		return true
	default:
		return m.Hashes.hexDigests()
	}
}

// Yanked describes whether an artifact was retracted (PEP 592).
// Reason is only ever set when Yanked is true.
type Yanked struct {
	Yanked bool
	Reason *string
}

// wire returns the PEP 691 encoding: a bool, or the reason string.
func (y Yanked) wire() any {
	if y.Reason != nil {
		return *y.Reason
	}
	return y.Yanked
}

// artifactDoc is the PEP 691 shape of an ArtifactInfo.
type artifactDoc struct {
	Filename         string            `json:"filename" yaml:"filename"`
	URL              string            `json:"url" yaml:"url"`
	Hashes           map[string]string `json:"hashes" yaml:"hashes"`
	RequiresPython   *string           `json:"requires-python,omitempty" yaml:"requires-python,omitempty"`
	DistInfoMetadata any               `json:"dist-info-metadata" yaml:"dist-info-metadata"`
	Yanked           any               `json:"yanked" yaml:"yanked"`
}

func (a ArtifactInfo) doc() artifactDoc {
	d := artifactDoc{
		Filename:         a.Filename.String(),
		Hashes:           map[string]string{},
		RequiresPython:   a.RequiresPython,
		DistInfoMetadata: a.DistInfoMetadata.wire(),
		Yanked:           a.Yanked.wire(),
	}
	if a.URL != nil {
		d.URL = a.URL.String()
	}
	if a.Hashes != nil {
		d.Hashes = a.Hashes.hexDigests()
	}
	return d
}

// MarshalJSON encodes the artifact in its PEP 691 form.
func (a ArtifactInfo) MarshalJSON() ([]byte, error) {
	return marshalJSON(a.doc())
}

// MarshalYAML encodes the artifact in its PEP 691 form.
func (a ArtifactInfo) MarshalYAML() (any, error) {
	return a.doc(), nil
}

// marshalJSON encodes v without escaping HTML characters, which are common in
// version specifiers.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	e := json.NewEncoder(&buf)
	e.SetEscapeHTML(false)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
