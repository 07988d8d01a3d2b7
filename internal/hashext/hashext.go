// Copyright 2024 The OSS Rebuild Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashext provides extensions to the standard crypto/hash package.
package hashext

import (
	"crypto"
	_ "crypto/md5"
	_ "crypto/sha256"
	"encoding/hex"
)

// algorithms are the digest names an index may publish that we decode.
// In theory any hashlib name is allowed but only these are in common use.
var algorithms = map[string]crypto.Hash{
	"sha256": crypto.SHA256,
	"md5":    crypto.MD5,
}

// ParseAlgorithm returns the crypto.Hash for an index digest name.
func ParseAlgorithm(name string) (crypto.Hash, bool) {
	h, ok := algorithms[name]
	return h, ok
}

// Name returns the index digest name for the algorithm, or "" if unsupported.
func Name(algo crypto.Hash) string {
	for name, h := range algorithms {
		if h == algo {
			return name
		}
	}
	return ""
}

// DecodeHex decodes a hex digest for algo.
// The digest must be exactly algo.Size() bytes long.
func DecodeHex(algo crypto.Hash, s string) ([]byte, bool) {
	if !algo.Available() || len(s) != 2*algo.Size() {
		return nil, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

// DecodeNamedHex is DecodeHex keyed by the index digest name.
func DecodeNamedHex(name, s string) ([]byte, bool) {
	algo, ok := ParseAlgorithm(name)
	if !ok {
		return nil, false
	}
	return DecodeHex(algo, s)
}
