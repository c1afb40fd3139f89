// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
)

// ErrorCode identifies a kind of pool error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrDuplicateTransaction indicates a transaction with the same hash
	// is already in the pool.  Callers treat it as already known.
	ErrDuplicateTransaction ErrorCode = iota

	// ErrConflictingTransaction indicates a transaction claims a key
	// image already claimed by a transaction in the pool.
	ErrConflictingTransaction

	// ErrNotFound indicates the requested transaction is not in the pool.
	ErrNotFound

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrDuplicateTransaction:   "ErrDuplicateTransaction",
	ErrConflictingTransaction: "ErrConflictingTransaction",
	ErrNotFound:               "ErrNotFound",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error satisfies the error interface so an ErrorCode can be used as the
// target of errors.Is.
func (e ErrorCode) Error() string {
	return e.String()
}

// RuleError identifies a rejection by the pool.  Use errors.Is with an
// ErrorCode to test for a specific reason.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Is reports whether target is the ErrorCode of the rule error.
func (e RuleError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.ErrorCode
}

// txRuleError creates a RuleError given a set of arguments.
func txRuleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
