// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"fmt"
	"time"

	"github.com/alloyproject/alloyd/blockchain"
	"github.com/alloyproject/alloyd/cnutil"
	"github.com/alloyproject/alloyd/crypto"
)

// TxDesc is a descriptor about a transaction in a transaction source along with
// additional metadata.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *cnutil.CachedTransaction

	// Added is the time when the entry was added to the source pool.
	Added time.Time

	// Fee is the total fee the transaction associated with the entry pays.
	Fee uint64

	// Size is the serialized size of the transaction in bytes.
	Size int
}

// TxSource represents a source of transactions to consider for inclusion in
// new blocks.
//
// The interface contract requires that all of these methods are safe for
// concurrent access with respect to the source.
type TxSource interface {
	// LastUpdated returns the last time a transaction was added to or
	// removed from the source pool.
	LastUpdated() time.Time

	// MiningDescs returns a slice of mining descriptors for all the
	// transactions in the source pool, highest priority first.
	MiningDescs() []*TxDesc

	// HaveTransaction returns whether or not the passed transaction hash
	// exists in the source pool.
	HaveTransaction(hash *crypto.Hash) bool
}

// BlockTemplate houses the transactions selected for a block along with the
// totals a miner needs to build the coinbase.
type BlockTemplate struct {
	// Transactions are the selected pool transactions in inclusion order.
	Transactions []*cnutil.CachedTransaction

	// Fees holds the fee of each transaction in Transactions.
	Fees []uint64

	// TotalFees is the sum of Fees.
	TotalFees uint64

	// TotalSize is the number of bytes used by the selected transactions.
	TotalSize int

	// SourceUpdated is the LastUpdated value of the source at the time the
	// template was generated.
	SourceUpdated time.Time
}

// NewBlockTemplate returns a template holding transactions from source
// selected under policy.
//
// Descriptors are visited in the order the source returns them.  A
// transaction is skipped when it pays less than policy.MinFee, does not fit
// in the space that is left, or claims a key image already claimed by an
// earlier pick.  Selection stops once no transaction can fit any more.
func NewBlockTemplate(policy *Policy, source TxSource) (*BlockTemplate, error) {
	if policy == nil {
		return nil, fmt.Errorf("mining: no policy")
	}

	updated := source.LastUpdated()
	descs := source.MiningDescs()
	space := policy.txSpace()

	template := &BlockTemplate{
		Transactions:  make([]*cnutil.CachedTransaction, 0, len(descs)),
		Fees:          make([]uint64, 0, len(descs)),
		SourceUpdated: updated,
	}
	var claimed blockchain.ValidatorState
	for _, desc := range descs {
		// Stop once the block is full.
		if space-template.TotalSize <= 0 {
			break
		}

		tx := desc.Tx
		if desc.Fee < policy.MinFee {
			log.Tracef("Skipping tx %v with fee %d below minimum %d",
				tx.Hash(), desc.Fee, policy.MinFee)
			continue
		}
		if template.TotalSize+desc.Size > space {
			log.Tracef("Skipping tx %v of %d bytes which would "+
				"exceed the block size", tx.Hash(), desc.Size)
			continue
		}

		state, err := blockchain.ExtractValidatorState(tx)
		if err != nil {
			log.Debugf("Skipping tx %v: %v", tx.Hash(), err)
			continue
		}
		if claimed.Intersects(state) {
			log.Debugf("Skipping tx %v which double spends a "+
				"selected transaction", tx.Hash())
			continue
		}
		claimed.Merge(state)

		template.Transactions = append(template.Transactions, tx)
		template.Fees = append(template.Fees, desc.Fee)
		template.TotalFees += desc.Fee
		template.TotalSize += desc.Size
	}

	log.Debugf("Created new block template (%d transactions, %d in fees, "+
		"%d bytes)", len(template.Transactions), template.TotalFees,
		template.TotalSize)

	return template, nil
}
