// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto defines the fixed size identifiers of the CryptoNote
// protocol and the fast hash function used to produce transaction and block
// identifiers.
//
// This package provides a wrapper around the hash function used.  This is
// designed to isolate the code that needs to be changed to support coins
// with different hash functions.  Signatures and key derivation are not
// implemented here; the types only carry their bytes.
package crypto
