// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package distname parses Python distribution filenames.
package distname

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Kind distinguishes built distributions from source distributions.
type Kind int

const (
	// SDist is a source archive such as foo-1.0.tar.gz.
	SDist Kind = iota
	// Wheel is a built distribution as described by PEP 427.
	Wheel
)

func (k Kind) String() string {
	switch k {
	case Wheel:
		return "wheel"
	case SDist:
		return "sdist"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFilename is returned for filenames that are neither a wheel nor a known sdist archive.
var ErrUnsupportedFilename = errors.New("unsupported distribution filename")

// sdistFormats are matched in order, so multi-part extensions come first.
var sdistFormats = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.Z", ".tgz", ".tar", ".zip"}

var validName = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// ArtifactName is the structured form of a distribution filename.
type ArtifactName struct {
	// Filename is the original, unmodified filename.
	Filename string
	Kind     Kind
	Name     string
	Version  string
	// Format is the archive extension of an sdist, e.g. ".tar.gz".
	Format string
	// BuildTag, PythonTags, ABITags and PlatformTags are only set for wheels.
	BuildTag     string
	PythonTags   []string
	ABITags      []string
	PlatformTags []string
}

// String returns the original filename.
func (n ArtifactName) String() string {
	return n.Filename
}

// MarshalText encodes the name as its filename.
func (n ArtifactName) MarshalText() ([]byte, error) {
	return []byte(n.Filename), nil
}

// UnmarshalText parses a filename.
func (n *ArtifactName) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// NormalizedName returns the distribution name normalized according to PEP 503.
func (n ArtifactName) NormalizedName() string {
	return NormalizeName(n.Name)
}

// Parse decomposes a bare filename into its name, version, and tags.
func Parse(filename string) (ArtifactName, error) {
	if filename == "" || strings.ContainsAny(filename, "/\\") {
		return ArtifactName{}, errors.Wrapf(ErrUnsupportedFilename, "%q", filename)
	}
	if stem, ok := strings.CutSuffix(filename, ".whl"); ok {
		return parseWheel(filename, stem)
	}
	for _, ext := range sdistFormats {
		if stem, ok := strings.CutSuffix(filename, ext); ok {
			return parseSDist(filename, stem, ext)
		}
	}
	return ArtifactName{}, errors.Wrapf(ErrUnsupportedFilename, "%q", filename)
}

func parseWheel(filename, stem string) (ArtifactName, error) {
	parts := strings.Split(stem, "-")
	n := ArtifactName{Filename: filename, Kind: Wheel}
	switch len(parts) {
	case 5:
	case 6:
		n.BuildTag = parts[2]
		if n.BuildTag == "" || n.BuildTag[0] < '0' || n.BuildTag[0] > '9' {
			return ArtifactName{}, errors.Errorf("invalid wheel build tag in %q", filename)
		}
	default:
		return ArtifactName{}, errors.Errorf("invalid wheel filename %q: expected 5 or 6 components", filename)
	}
	n.Name, n.Version = parts[0], parts[1]
	if !validName.MatchString(n.Name) {
		return ArtifactName{}, errors.Errorf("invalid distribution name in %q", filename)
	}
	if n.Version == "" {
		return ArtifactName{}, errors.Errorf("missing version in %q", filename)
	}
	tags := parts[len(parts)-3:]
	var err error
	if n.PythonTags, err = splitTags(tags[0]); err != nil {
		return ArtifactName{}, errors.Wrapf(err, "python tag of %q", filename)
	}
	if n.ABITags, err = splitTags(tags[1]); err != nil {
		return ArtifactName{}, errors.Wrapf(err, "abi tag of %q", filename)
	}
	if n.PlatformTags, err = splitTags(tags[2]); err != nil {
		return ArtifactName{}, errors.Wrapf(err, "platform tag of %q", filename)
	}
	return n, nil
}

// splitTags expands a compressed tag set like "py2.py3".
func splitTags(s string) ([]string, error) {
	tags := strings.Split(s, ".")
	for _, t := range tags {
		if t == "" {
			return nil, errors.New("empty tag")
		}
	}
	return tags, nil
}

func parseSDist(filename, stem, ext string) (ArtifactName, error) {
	// Legacy sdist names may themselves contain dashes so the version starts
	// after the last dash that is followed by a digit.
	idx := -1
	for i := len(stem) - 2; i > 0; i-- {
		if stem[i] == '-' && stem[i+1] >= '0' && stem[i+1] <= '9' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ArtifactName{}, errors.Wrapf(ErrUnsupportedFilename, "no version in %q", filename)
	}
	n := ArtifactName{
		Filename: filename,
		Kind:     SDist,
		Name:     stem[:idx],
		Version:  stem[idx+1:],
		Format:   ext,
	}
	if !validName.MatchString(n.Name) {
		return ArtifactName{}, errors.Errorf("invalid distribution name in %q", filename)
	}
	return n, nil
}

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName normalizes a package name according to PEP 503.
func NormalizeName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(name, "-"))
}
