// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cnutil

import (
	"fmt"
	"sync/atomic"

	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/wire"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
//
// blockchain imports this package, so it cannot share blockchain.AssertError.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// CachedTransaction wraps a CryptoNote transaction and memoizes the values
// derived from it: the hash, the prefix hash, the serialized bytes and the
// fee.  Each value is computed on first access.
//
// The wrapped transaction must not be modified once it has been handed to a
// CachedTransaction.  Accessors are safe for concurrent use; two readers
// racing on the first access may both compute a value, which is harmless
// since the result is identical.
type CachedTransaction struct {
	msgTx *wire.MsgTx

	hash       atomic.Pointer[crypto.Hash]
	prefixHash atomic.Pointer[crypto.Hash]
	rawBytes   atomic.Pointer[[]byte]
	fee        atomic.Pointer[uint64]
}

// NewCachedTransaction returns a new instance wrapping msgTx.  The caller
// gives up ownership of msgTx.
func NewCachedTransaction(msgTx *wire.MsgTx) *CachedTransaction {
	return &CachedTransaction{msgTx: msgTx}
}

// NewCachedTransactionCopy returns a new instance wrapping a deep copy of
// msgTx so the caller keeps ownership of the original.
func NewCachedTransactionCopy(msgTx *wire.MsgTx) *CachedTransaction {
	return &CachedTransaction{msgTx: msgTx.Copy()}
}

// NewCachedTransactionFromBytes decodes the serialized transaction in
// serializedTx.  A *wire.DeserializationError is returned when the bytes are
// not a well formed transaction.  The bytes are copied and kept as the
// memoized serialized form.
func NewCachedTransactionFromBytes(serializedTx []byte) (*CachedTransaction, error) {
	var msgTx wire.MsgTx
	if err := msgTx.DeserializeBytes(serializedTx); err != nil {
		return nil, err
	}

	raw := make([]byte, len(serializedTx))
	copy(raw, serializedTx)

	t := &CachedTransaction{msgTx: &msgTx}
	t.rawBytes.Store(&raw)
	return t, nil
}

// MsgTx returns the underlying wire.MsgTx for the transaction.  It must be
// treated as read only.
func (t *CachedTransaction) MsgTx() *wire.MsgTx {
	return t.msgTx
}

// Hash returns the identifier of the transaction, the fast hash of its
// serialized bytes.
func (t *CachedTransaction) Hash() *crypto.Hash {
	if hash := t.hash.Load(); hash != nil {
		return hash
	}

	hash := crypto.FastHashH(t.Bytes())
	t.hash.Store(&hash)
	return &hash
}

// PrefixHash returns the hash of the transaction prefix.
func (t *CachedTransaction) PrefixHash() *crypto.Hash {
	if hash := t.prefixHash.Load(); hash != nil {
		return hash
	}

	hash := t.msgTx.PrefixHash()
	t.prefixHash.Store(&hash)
	return &hash
}

// Bytes returns the serialized transaction.  The returned slice must not be
// modified.
//
// Serialization of a transaction whose signature groups do not match its
// inputs is a programming error and panics.
func (t *CachedTransaction) Bytes() []byte {
	if raw := t.rawBytes.Load(); raw != nil {
		return *raw
	}

	raw, err := t.msgTx.Bytes()
	if err != nil {
		panic(AssertError(fmt.Sprintf("serialize transaction: %v", err)))
	}
	t.rawBytes.Store(&raw)
	return raw
}

// Size returns the number of bytes of the serialized transaction.
func (t *CachedTransaction) Size() int {
	return len(t.Bytes())
}

// Fee returns the fee paid by the transaction: the amount of its key inputs
// minus the amount of its outputs.  Transactions with a base input mint
// coins and pay no fee.
func (t *CachedTransaction) Fee() uint64 {
	if fee := t.fee.Load(); fee != nil {
		return *fee
	}

	fee := calcFee(t.msgTx)
	t.fee.Store(&fee)
	return fee
}

// KeyImages returns the key images published by the key inputs of the
// transaction in input order.
func (t *CachedTransaction) KeyImages() []crypto.KeyImage {
	images := make([]crypto.KeyImage, 0, len(t.msgTx.TxIn))
	for _, in := range t.msgTx.TxIn {
		if ki, ok := in.(*wire.KeyInput); ok {
			images = append(images, ki.KeyImage)
		}
	}
	return images
}

// IsCoinBase reports whether the transaction mints the block reward.
func (t *CachedTransaction) IsCoinBase() bool {
	for _, in := range t.msgTx.TxIn {
		if _, ok := in.(*wire.BaseInput); ok {
			return true
		}
	}
	return false
}

func calcFee(msgTx *wire.MsgTx) uint64 {
	var inputAmount, outputAmount uint64
	for _, out := range msgTx.TxOut {
		outputAmount += out.Amount
	}

	for _, in := range msgTx.TxIn {
		switch in := in.(type) {
		case *wire.KeyInput:
			inputAmount += in.Amount
		case *wire.BaseInput:
			return 0
		default:
			panic(AssertError(fmt.Sprintf("unknown input type %T", in)))
		}
	}

	return inputAmount - outputAmount
}
