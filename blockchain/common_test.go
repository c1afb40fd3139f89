// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/alloyproject/alloyd/cnutil"
	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/wire"
)

// keyImage returns a key image whose first byte is b.
func keyImage(b byte) crypto.KeyImage {
	return crypto.KeyImage{b}
}

// spendTx returns a transaction with one single-member key input per key
// image, each worth inAmount, and one output paying outAmount.
func spendTx(inAmount, outAmount uint64, images ...crypto.KeyImage) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	for i, image := range images {
		tx.AddTxIn(&wire.KeyInput{
			Amount:        inAmount,
			OutputIndexes: []uint32{uint32(i)},
			KeyImage:      image,
		}, crypto.Signature{byte(i)})
	}
	tx.AddTxOut(&wire.TxOut{
		Amount: outAmount,
		Target: wire.KeyOutput{Key: crypto.PublicKey{0x01}},
	})
	return tx
}

// coinbaseTx returns a transaction minting reward at height.
func coinbaseTx(height uint32, reward uint64) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.BaseInput{BlockIndex: height})
	tx.AddTxOut(&wire.TxOut{
		Amount: reward,
		Target: wire.KeyOutput{Key: crypto.PublicKey{0x02}},
	})
	return tx
}

func cached(msgTx *wire.MsgTx) *cnutil.CachedTransaction {
	return cnutil.NewCachedTransaction(msgTx)
}
