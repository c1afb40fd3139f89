// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"encoding/hex"
)

const (
	// KeySize is the size of public keys and key images.
	KeySize = 32

	// SignatureSize is the size of a single ring signature element.
	SignatureSize = 64
)

// PublicKey is an ed25519 point as it appears on the wire.
type PublicKey [KeySize]byte

// String returns the key as a hexadecimal string.
func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// KeyImage identifies a spent output.  Two transactions carrying the same key
// image spend the same output and therefore conflict.
type KeyImage [KeySize]byte

// String returns the key image as a hexadecimal string.
func (k KeyImage) String() string {
	return hex.EncodeToString(k[:])
}

// Less reports whether k sorts before other in byte order.
func (k *KeyImage) Less(other *KeyImage) bool {
	return bytes.Compare(k[:], other[:]) < 0
}

// Signature is one element of a ring signature.
type Signature [SignatureSize]byte
