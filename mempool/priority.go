// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/bits"
)

// PriorityFunc compares the selection priority of two pool entries.  It
// returns a positive number when a should be mined before b, a negative
// number when b should be mined before a and zero when neither is
// preferred.  The result must only depend on the immutable fields of the
// descriptors.
type PriorityFunc func(a, b *TxDesc) int

// FeeDensityPriority prefers the entry paying the higher fee per serialized
// byte and falls back to the earlier receive time.  Densities are compared
// exactly.
func FeeDensityPriority(a, b *TxDesc) int {
	if c := compareFeeDensity(a, b); c != 0 {
		return c
	}
	return ArrivalPriority(a, b)
}

// ArrivalPriority prefers the entry that entered the pool first.
func ArrivalPriority(a, b *TxDesc) int {
	switch {
	case a.Added.Before(b.Added):
		return 1
	case b.Added.Before(a.Added):
		return -1
	}
	return 0
}

// compareFeeDensity compares a.Fee/a.Size with b.Fee/b.Size by cross
// multiplying into 128-bit products.
func compareFeeDensity(a, b *TxDesc) int {
	aHi, aLo := bits.Mul64(a.Fee, uint64(b.Size))
	bHi, bLo := bits.Mul64(b.Fee, uint64(a.Size))
	switch {
	case aHi > bHi || (aHi == bHi && aLo > bLo):
		return 1
	case aHi < bHi || (aHi == bHi && aLo < bLo):
		return -1
	}
	return 0
}
