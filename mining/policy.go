// Copyright (c) 2014-2015 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

const (
	// DefaultBlockMaxSize is the default maximum size of a generated
	// block in bytes.
	DefaultBlockMaxSize = 100000

	// DefaultReservedSize is the default number of bytes held back for
	// the coinbase transaction.
	DefaultReservedSize = 600
)

// Policy houses the policy (configuration parameters) which is used to control
// the generation of block templates.  See the documentation for
// NewBlockTemplate for more details on each of these parameters are used.
type Policy struct {
	// BlockMaxSize is the maximum block size in bytes to be used when
	// generating a block template.
	BlockMaxSize uint32

	// ReservedSize is the number of bytes of BlockMaxSize kept free for
	// the coinbase transaction and the block header.
	ReservedSize uint32

	// MinFee is the smallest absolute fee a transaction must pay to be
	// considered.  Zero admits free transactions.
	MinFee uint64
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() *Policy {
	return &Policy{
		BlockMaxSize: DefaultBlockMaxSize,
		ReservedSize: DefaultReservedSize,
	}
}

// txSpace returns the number of bytes available to pool transactions.
func (p *Policy) txSpace() int {
	if p.ReservedSize >= p.BlockMaxSize {
		return 0
	}
	return int(p.BlockMaxSize - p.ReservedSize)
}
