// Copyright (c) 2017 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"testing"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrDuplicateTransaction, "ErrDuplicateTransaction"},
		{ErrConflictingTransaction, "ErrConflictingTransaction"},
		{ErrNotFound, "ErrNotFound"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	if len(tests)-1 != int(numErrorCodes) {
		t.Errorf("It appears an error code was added without adding an " +
			"associated stringer test")
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d\n got: %s want: %s", i, result,
				test.want)
		}
	}
}

// TestRuleErrorIs ensures errors.Is distinguishes the codes.
func TestRuleErrorIs(t *testing.T) {
	t.Parallel()

	err := error(txRuleError(ErrNotFound, "gone"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is did not match ErrNotFound")
	}
	if errors.Is(err, ErrDuplicateTransaction) {
		t.Fatalf("errors.Is matched ErrDuplicateTransaction")
	}
	if err.Error() != "gone" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
