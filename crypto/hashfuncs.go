// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"io"

	"golang.org/x/crypto/sha3"
)

// FastHashB calculates the Keccak-256 fast hash of b and returns the resulting
// bytes.
func FastHashB(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	return h.Sum(nil)
}

// FastHashH calculates the Keccak-256 fast hash of b and returns the resulting
// bytes as a Hash.
func FastHashH(b []byte) Hash {
	var hash Hash
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	h.Sum(hash[:0])
	return hash
}

// FastHashRaw calculates the fast hash of whatever serializer writes to the
// provided writer.  This avoids building an intermediate buffer when the
// caller only needs the hash.
func FastHashRaw(serializer func(w io.Writer) error) Hash {
	h := sha3.NewLegacyKeccak256()

	// Writes to the hash state cannot fail.
	_ = serializer(h)

	var hash Hash
	h.Sum(hash[:0])
	return hash
}
