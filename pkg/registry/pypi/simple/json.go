// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/google/simpleindex/internal/hashext"
	"github.com/google/simpleindex/pkg/registry/pypi/distname"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

type object map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func shapeError(path, want string) error {
	return &DecodeError{Path: path, Err: errors.Errorf("expected %s", want)}
}

// decodeRoot reads a single JSON object from r. Anything after it is malformed.
func decodeRoot(r io.Reader) (object, error) {
	dec := json.NewDecoder(transform.NewReader(r, encoding.UTF8Validator))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after document")
		}
		return nil, malformed(err)
	}
	var root object
	if firstByte(raw) != '{' || json.Unmarshal(raw, &root) != nil {
		return nil, shapeError("$", "an object")
	}
	return root, nil
}

// ParseProjectInfoJSON decodes a PEP 691 project page read from r.
//
// src, when non-nil, is the URL the page was served from and is used to
// resolve relative file URLs. Any field that matches none of its legal shapes
// fails the whole decode with a *DecodeError naming the field.
func ParseProjectInfoJSON(src *url.URL, r io.Reader) (*ProjectInfo, error) {
	if src != nil {
		if err := checkSourceURL(src); err != nil {
			return nil, err
		}
	}
	root, err := decodeRoot(r)
	if err != nil {
		return nil, err
	}
	info := NewProjectInfo()
	if raw, ok := root["meta"]; ok && !isNull(raw) {
		version, err := decodeMeta(raw)
		if err != nil {
			return nil, err
		}
		if version != nil {
			info.Meta.Version = *version
		}
	}
	if raw, ok := root["files"]; ok && !isNull(raw) {
		var files []json.RawMessage
		if firstByte(raw) != '[' || json.Unmarshal(raw, &files) != nil {
			return nil, shapeError("files", "an array")
		}
		for i, f := range files {
			a, err := decodeFile(src, fmt.Sprintf("files[%d]", i), f)
			if err != nil {
				return nil, err
			}
			info.Files = append(info.Files, a)
		}
	}
	return info, nil
}

func decodeMeta(raw json.RawMessage) (*string, error) {
	var meta object
	if firstByte(raw) != '{' || json.Unmarshal(raw, &meta) != nil {
		return nil, shapeError("meta", "an object")
	}
	return decodeOptionalString("meta.api-version", meta["api-version"])
}

func decodeOptionalString(path string, raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, shapeError(path, "a string")
	}
	return &s, nil
}

func decodeRequiredString(path string, raw json.RawMessage) (string, error) {
	s, err := decodeOptionalString(path, raw)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", &DecodeError{Path: path, Err: errors.New("missing required field")}
	}
	return *s, nil
}

func decodeFile(src *url.URL, path string, raw json.RawMessage) (ArtifactInfo, error) {
	var fields object
	if firstByte(raw) != '{' || json.Unmarshal(raw, &fields) != nil {
		return ArtifactInfo{}, shapeError(path, "an object")
	}
	var a ArtifactInfo
	filename, err := decodeRequiredString(path+".filename", fields["filename"])
	if err != nil {
		return ArtifactInfo{}, err
	}
	if a.Filename, err = distname.Parse(filename); err != nil {
		return ArtifactInfo{}, &DecodeError{Path: path + ".filename", Err: err}
	}
	rawURL, err := decodeRequiredString(path+".url", fields["url"])
	if err != nil {
		return ArtifactInfo{}, err
	}
	if a.URL, err = resolveFileURL(src, rawURL); err != nil {
		return ArtifactInfo{}, &DecodeError{Path: path + ".url", Err: err}
	}
	if raw := fields["hashes"]; !isNull(raw) {
		if firstByte(raw) != '{' {
			return ArtifactInfo{}, shapeError(path+".hashes", "a mapping of hash name to hex digest")
		}
		h, err := decodeHashes(path+".hashes", raw)
		if err != nil {
			return ArtifactInfo{}, err
		}
		a.Hashes = &h
	}
	if a.RequiresPython, err = decodeOptionalString(path+".requires-python", fields["requires-python"]); err != nil {
		return ArtifactInfo{}, err
	}
	metaKey := "dist-info-metadata"
	if _, ok := fields[metaKey]; !ok {
		metaKey = "core-metadata"
	}
	if a.DistInfoMetadata, err = decodeDistInfoMetadata(path+"."+metaKey, fields[metaKey]); err != nil {
		return ArtifactInfo{}, err
	}
	if a.Yanked, err = decodeYanked(path+".yanked", fields["yanked"]); err != nil {
		return ArtifactInfo{}, err
	}
	return a, nil
}

func resolveFileURL(src *url.URL, rawURL string) (*url.URL, error) {
	var u *url.URL
	var err error
	if src != nil {
		u, err = src.Parse(rawURL)
	} else {
		u, err = url.Parse(rawURL)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errors.Errorf("relative url %q without a source url", rawURL)
	}
	return u, nil
}

// decodeHashes reads the supported digests of a hash mapping, ignoring other algorithms.
func decodeHashes(path string, raw json.RawMessage) (ArtifactHashes, error) {
	var m object
	if err := json.Unmarshal(raw, &m); err != nil {
		return ArtifactHashes{}, shapeError(path, "a mapping of hash name to hex digest")
	}
	var h ArtifactHashes
	for _, name := range []string{"sha256", "md5"} {
		v, ok := m[name]
		if !ok {
			continue
		}
		var digest string
		if err := json.Unmarshal(v, &digest); err != nil {
			return ArtifactHashes{}, shapeError(path+"."+name, "a hex digest")
		}
		b, ok := hashext.DecodeNamedHex(name, digest)
		if !ok {
			return ArtifactHashes{}, &DecodeError{Path: path + "." + name, Err: errors.Errorf("invalid %s digest %q", name, digest)}
		}
		switch name {
		case "sha256":
			h.SHA256 = b
		case "md5":
			h.MD5 = b
		}
	}
	return h, nil
}

// decodeDistInfoMetadata accepts a boolean or a hash mapping.
func decodeDistInfoMetadata(path string, raw json.RawMessage) (DistInfoMetadata, error) {
	if isNull(raw) {
		return DistInfoMetadata{}, nil
	}
	var available bool
	if err := json.Unmarshal(raw, &available); err == nil {
		return DistInfoMetadata{Available: available}, nil
	}
	if firstByte(raw) != '{' {
		return DistInfoMetadata{}, shapeError(path, "a boolean or a mapping of hash name to hex digest")
	}
	hashes, err := decodeHashes(path, raw)
	if err != nil {
		return DistInfoMetadata{}, err
	}
	return DistInfoMetadata{Available: true, Hashes: hashes}, nil
}

// decodeYanked accepts a boolean or a reason string.
func decodeYanked(path string, raw json.RawMessage) (Yanked, error) {
	if isNull(raw) {
		return Yanked{}, nil
	}
	var yanked bool
	if err := json.Unmarshal(raw, &yanked); err == nil {
		return Yanked{Yanked: yanked}, nil
	}
	var reason string
	if err := json.Unmarshal(raw, &reason); err == nil {
		return Yanked{Yanked: true, Reason: &reason}, nil
	}
	return Yanked{}, shapeError(path, "a boolean or a reason string")
}

// ParsePackageNamesJSON returns the project names of a PEP 691 root index page.
func ParsePackageNamesJSON(r io.Reader) ([]string, error) {
	root, err := decodeRoot(r)
	if err != nil {
		return nil, err
	}
	names := []string{}
	raw, ok := root["projects"]
	if !ok || isNull(raw) {
		return names, nil
	}
	var projects []json.RawMessage
	if firstByte(raw) != '[' || json.Unmarshal(raw, &projects) != nil {
		return nil, shapeError("projects", "an array")
	}
	for i, p := range projects {
		path := fmt.Sprintf("projects[%d]", i)
		var fields object
		if firstByte(p) != '{' || json.Unmarshal(p, &fields) != nil {
			return nil, shapeError(path, "an object")
		}
		name, err := decodeRequiredString(path+".name", fields["name"])
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
