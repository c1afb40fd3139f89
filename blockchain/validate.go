// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math"

	"github.com/alloyproject/alloyd/cnutil"
	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/wire"
)

// DefaultMaxTxSize is the serialized size limit applied when a Validator is
// configured without one.
const DefaultMaxTxSize = 125 * 1024

// IsCoinBase determines whether or not a transaction is a coinbase.  A
// coinbase is a special transaction created by miners that has exactly one
// input and that input is a base input.
func IsCoinBase(msgTx *wire.MsgTx) bool {
	if len(msgTx.TxIn) != 1 {
		return false
	}
	_, ok := msgTx.TxIn[0].(*wire.BaseInput)
	return ok
}

// CheckTransactionSanity performs some preliminary checks on a transaction
// to ensure it is sane.  These checks are context free.
func CheckTransactionSanity(tx *cnutil.CachedTransaction, maxTxSize int) error {
	// A transaction must have at least one input.
	msgTx := tx.MsgTx()
	if len(msgTx.TxIn) == 0 {
		return ruleError(ErrNoTxInputs, "transaction has no inputs")
	}

	// A transaction must have at least one output.
	if len(msgTx.TxOut) == 0 {
		return ruleError(ErrNoTxOutputs, "transaction has no outputs")
	}

	// There must be one signature group per input and each group must be
	// as wide as the ring of its input.  This comes before the size check
	// since a transaction with mismatched groups cannot be serialized.
	if len(msgTx.Signatures) != len(msgTx.TxIn) {
		str := fmt.Sprintf("transaction has %d signature groups for %d "+
			"inputs", len(msgTx.Signatures), len(msgTx.TxIn))
		return ruleError(ErrBadSignatureCount, str)
	}
	for i, txIn := range msgTx.TxIn {
		want := 0
		if in, ok := txIn.(*wire.KeyInput); ok {
			want = len(in.OutputIndexes)
		}
		if len(msgTx.Signatures[i]) != want {
			str := fmt.Sprintf("input %d has %d signatures, want %d",
				i, len(msgTx.Signatures[i]), want)
			return ruleError(ErrBadSignatureCount, str)
		}
	}

	// A transaction must not exceed the maximum allowed size when
	// serialized.
	serializedTxSize := tx.Size()
	if serializedTxSize > maxTxSize {
		str := fmt.Sprintf("serialized transaction is too big - got "+
			"%d, max %d", serializedTxSize, maxTxSize)
		return ruleError(ErrTxTooBig, str)
	}

	// Every output must carry value and the total must not wrap.
	var totalOut uint64
	for i, txOut := range msgTx.TxOut {
		if txOut.Amount == 0 {
			str := fmt.Sprintf("transaction output %d has zero value", i)
			return ruleError(ErrBadTxOutValue, str)
		}
		if txOut.Amount > math.MaxUint64-totalOut {
			str := "total value of all transaction outputs overflows"
			return ruleError(ErrBadTxOutValue, str)
		}
		totalOut += txOut.Amount
	}

	// Check the inputs.  A base input must be the only input.
	var totalIn uint64
	var numBase int
	for i, txIn := range msgTx.TxIn {
		switch in := txIn.(type) {
		case *wire.BaseInput:
			numBase++

		case *wire.KeyInput:
			if len(in.OutputIndexes) == 0 {
				str := fmt.Sprintf("key input %d references no "+
					"outputs", i)
				return ruleError(ErrBadTxInput, str)
			}
			if in.Amount > math.MaxUint64-totalIn {
				str := "total value of all transaction inputs " +
					"overflows"
				return ruleError(ErrBadTxInput, str)
			}
			totalIn += in.Amount

		default:
			panic(AssertError(fmt.Sprintf("unknown input type %T",
				txIn)))
		}
	}
	if numBase > 0 && len(msgTx.TxIn) > 1 {
		str := fmt.Sprintf("transaction has %d base inputs among %d "+
			"inputs", numBase, len(msgTx.TxIn))
		return ruleError(ErrMultipleCoinbases, str)
	}
	if numBase == 0 && totalIn < totalOut {
		str := fmt.Sprintf("total value of all transaction inputs %d is "+
			"less than the amount spent %d", totalIn, totalOut)
		return ruleError(ErrSpendTooHigh, str)
	}

	return nil
}

// ValidatorConfig houses the collaborators a Validator consults.
type ValidatorConfig struct {
	// MaxTxSize is the largest serialized transaction accepted.  Zero
	// selects DefaultMaxTxSize.
	MaxTxSize int

	// SpentKeyImage reports whether a key image is already spent on the
	// main chain.  A nil function treats every key image as unspent.
	SpentKeyImage func(crypto.KeyImage) bool
}

// Validator checks loose transactions before they enter a pool and computes
// the key images each one claims.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator returns a Validator using the given configuration.
func NewValidator(cfg *ValidatorConfig) *Validator {
	v := &Validator{cfg: *cfg}
	if v.cfg.MaxTxSize == 0 {
		v.cfg.MaxTxSize = DefaultMaxTxSize
	}
	return v
}

// ValidateTransaction runs the sanity checks on a loose transaction, rejects
// coinbase transactions and key images already spent on chain, and returns
// the state the transaction would claim.
func (v *Validator) ValidateTransaction(tx *cnutil.CachedTransaction) (*ValidatorState, error) {
	if err := CheckTransactionSanity(tx, v.cfg.MaxTxSize); err != nil {
		return nil, err
	}

	// A coinbase is only valid inside a block.
	if IsCoinBase(tx.MsgTx()) {
		str := fmt.Sprintf("transaction %v is an individual coinbase",
			tx.Hash())
		return nil, ruleError(ErrCoinbaseTx, str)
	}

	state, err := ExtractValidatorState(tx)
	if err != nil {
		return nil, err
	}

	if v.cfg.SpentKeyImage != nil {
		for _, image := range state.KeyImages() {
			if v.cfg.SpentKeyImage(image) {
				str := fmt.Sprintf("transaction %v spends key "+
					"image %v which is already spent",
					tx.Hash(), image)
				return nil, ruleError(ErrSpentKeyImage, str)
			}
		}
	}

	return state, nil
}
