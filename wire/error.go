// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
)

// DeserializationError describes bytes that could not be decoded into a
// well formed value.  It is returned by the decode functions of this package
// and carries the underlying I/O error, if any, so callers can use errors.Is
// to detect truncated input.
type DeserializationError struct {
	Func        string // Function name
	Description string // Human readable description of the issue
	Err         error  // Underlying error, may be nil
}

// Error satisfies the error interface and prints human-readable errors.
func (e *DeserializationError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%v: %v", e.Func, e.Description)
	}
	return e.Description
}

// Unwrap returns the underlying error.
func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// deserializationError creates an error for the given function and
// description.
func deserializationError(f string, desc string) *DeserializationError {
	return &DeserializationError{Func: f, Description: desc}
}

// wrapReadError converts a read failure into a DeserializationError unless it
// already is one.
func wrapReadError(f string, err error) error {
	if _, ok := err.(*DeserializationError); ok {
		return err
	}
	return &DeserializationError{Func: f, Description: err.Error(), Err: err}
}
