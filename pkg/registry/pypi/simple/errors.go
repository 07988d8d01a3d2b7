// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package simple

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSourceURL is returned when the page URL cannot serve as a base.
	ErrInvalidSourceURL = errors.New("invalid source url")
	// ErrMalformedDocument is returned when the input cannot be tokenized at all.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrStructure is matched by every *DecodeError.
	ErrStructure = errors.New("unexpected document structure")
)

// DecodeError reports a structured document field that matched none of its
// legal shapes, or a mandatory field that was missing.
type DecodeError struct {
	// Path locates the field, e.g. "files[2].yanked".
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes every DecodeError match ErrStructure.
func (e *DecodeError) Is(target error) bool { return target == ErrStructure }

// documentError marks a failure of the input stream as a whole.
type documentError struct {
	err error
}

func (e *documentError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedDocument, e.err)
}

func (e *documentError) Unwrap() error { return e.err }

func (e *documentError) Is(target error) bool { return target == ErrMalformedDocument }

func malformed(err error) error {
	return &documentError{err}
}
