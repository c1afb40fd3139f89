// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrNoTxInputs indicates a transaction does not have any inputs.  A
	// valid transaction must have at least one input.
	ErrNoTxInputs ErrorCode = iota

	// ErrNoTxOutputs indicates a transaction does not have any outputs.  A
	// valid transaction must have at least one output.
	ErrNoTxOutputs

	// ErrTxTooBig indicates a transaction exceeds the maximum allowed size
	// when serialized.
	ErrTxTooBig

	// ErrBadTxOutValue indicates an output value for a transaction is
	// zero or the sum of the outputs overflows.
	ErrBadTxOutValue

	// ErrBadTxInput indicates a transaction input is invalid in some way
	// such as a key input that references no outputs.
	ErrBadTxInput

	// ErrSpendTooHigh indicates a transaction is attempting to spend more
	// value than the sum of all of its inputs.
	ErrSpendTooHigh

	// ErrMultipleCoinbases indicates a transaction contains more than one
	// base input or mixes base and key inputs.
	ErrMultipleCoinbases

	// ErrBadSignatureCount indicates the signature groups of a transaction
	// do not match its inputs.
	ErrBadSignatureCount

	// ErrDuplicateKeyImage indicates a transaction publishes the same key
	// image more than once.
	ErrDuplicateKeyImage

	// ErrSpentKeyImage indicates a transaction publishes a key image that
	// is already spent on the main chain.
	ErrSpentKeyImage

	// ErrCoinbaseTx indicates a coinbase transaction was offered outside of
	// a block.
	ErrCoinbaseTx

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNoTxInputs:        "ErrNoTxInputs",
	ErrNoTxOutputs:       "ErrNoTxOutputs",
	ErrTxTooBig:          "ErrTxTooBig",
	ErrBadTxOutValue:     "ErrBadTxOutValue",
	ErrBadTxInput:        "ErrBadTxInput",
	ErrSpendTooHigh:      "ErrSpendTooHigh",
	ErrMultipleCoinbases: "ErrMultipleCoinbases",
	ErrBadSignatureCount: "ErrBadSignatureCount",
	ErrDuplicateKeyImage: "ErrDuplicateKeyImage",
	ErrSpentKeyImage:     "ErrSpentKeyImage",
	ErrCoinbaseTx:        "ErrCoinbaseTx",
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

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use errors.Is with an ErrorCode or errors.As to
// access the ErrorCode field to ascertain the specific reason for the rule
// violation.
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

// ruleError creates an RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
