// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"math/bits"

	"github.com/alloyproject/alloyd/crypto"
)

// CheckHash reports whether a proof of work hash satisfies difficulty.  The
// hash is read as a little endian 256-bit integer and the check passes when
// its product with difficulty still fits in 256 bits.
func CheckHash(hash *crypto.Hash, difficulty uint64) bool {
	var w [4]uint64
	for i := range w {
		w[i] = binary.LittleEndian.Uint64(hash[i*8:])
	}

	// The top word alone must not spill past 256 bits.
	high, top := bits.Mul64(w[3], difficulty)
	if high != 0 {
		return false
	}

	cur, _ := bits.Mul64(w[0], difficulty)
	high, low := bits.Mul64(w[1], difficulty)
	_, carry := bits.Add64(cur, low, 0)
	cur = high
	high, low = bits.Mul64(w[2], difficulty)
	_, carry = bits.Add64(cur, low, carry)
	_, carry = bits.Add64(high, top, carry)
	return carry == 0
}
