// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"
)

// TestPolicyTxSpace ensures the space left for pool transactions accounts
// for the reserved bytes and never goes negative.
func TestPolicyTxSpace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy Policy
		want   int
	}{
		{"default", *DefaultPolicy(), DefaultBlockMaxSize - DefaultReservedSize},
		{"no reserve", Policy{BlockMaxSize: 1000}, 1000},
		{"reserve equals max", Policy{BlockMaxSize: 10, ReservedSize: 10}, 0},
		{"reserve exceeds max", Policy{BlockMaxSize: 10, ReservedSize: 20}, 0},
	}

	for _, test := range tests {
		if got := test.policy.txSpace(); got != test.want {
			t.Errorf("%s: got %d, want %d", test.name, got, test.want)
		}
	}
}
