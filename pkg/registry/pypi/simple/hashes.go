// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"crypto"
	"strings"

	"github.com/google/simpleindex/internal/hashext"
)

// parseFragmentHash decodes a URL fragment of the form sha256=<hex>.
// Only sha256 is defined for fragments; anything else carries no hash.
func parseFragmentHash(fragment string) *ArtifactHashes {
	algo, digest, ok := strings.Cut(fragment, "=")
	if !ok || algo != "sha256" {
		return nil
	}
	b, ok := hashext.DecodeHex(crypto.SHA256, digest)
	if !ok {
		return nil
	}
	return &ArtifactHashes{SHA256: b}
}

// parseAttrHash decodes an attribute value of the form <algo>=<hex> where
// algo is sha256 or md5.
func parseAttrHash(value string) (ArtifactHashes, bool) {
	name, digest, ok := strings.Cut(value, "=")
	if !ok {
		return ArtifactHashes{}, false
	}
	b, ok := hashext.DecodeNamedHex(name, digest)
	if !ok {
		return ArtifactHashes{}, false
	}
	var h ArtifactHashes
	switch name {
	case "sha256":
		h.SHA256 = b
	case "md5":
		h.MD5 = b
	}
	return h, true
}
