// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alloyproject/alloyd/blockchain"
	"github.com/alloyproject/alloyd/cnutil"
	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/mining"
	"github.com/alloyproject/alloyd/wire"
	"github.com/google/btree"
)

// priorityTreeDegree is the degree of the B-tree holding the priority view.
const priorityTreeDegree = 32

// Config is a descriptor containing the memory pool configuration.
type Config struct {
	// Priority orders the pool for block assembly.  Nil selects
	// FeeDensityPriority.
	Priority PriorityFunc

	// Now returns the current time and stamps the receive time of new
	// entries.  Nil selects time.Now.
	Now func() time.Time
}

// TxDesc is a descriptor containing a transaction in the mempool along with
// additional metadata.
type TxDesc struct {
	mining.TxDesc

	// PaymentID is the payment identifier found in the extra of the
	// transaction.  It is only meaningful when HasPaymentID is set.
	PaymentID    crypto.Hash
	HasPaymentID bool

	// state holds the key images the transaction claimed when it was
	// accepted.  It is subtracted from the pool state on removal.
	state *blockchain.ValidatorState
}

// paymentIDKey is the key of the payment id index.  The entry with Valid
// unset groups every transaction without a payment id.
type paymentIDKey struct {
	ID    crypto.Hash
	Valid bool
}

// TxPool is used as a source of transactions that need to be mined into blocks
// and relayed to other peers.  It is safe for concurrent access from multiple
// peers.
//
// Every entry is reachable through three views which are always updated
// together: by hash, by priority and by payment id.
type TxPool struct {
	// The following variables must only be used atomically.
	lastUpdated atomic.Int64 // last time pool was updated

	mtx        sync.RWMutex
	cfg        Config
	pool       map[crypto.Hash]*TxDesc
	byPriority *btree.BTreeG[*TxDesc]
	byPayment  map[paymentIDKey]map[crypto.Hash]*TxDesc
	state      blockchain.ValidatorState
}

// Ensure the TxPool type implements the mining.TxSource interface.
var _ mining.TxSource = (*TxPool)(nil)

// New returns a new memory pool for storing standalone transactions until
// they are mined into a block.
func New(cfg *Config) *TxPool {
	mp := &TxPool{
		pool:      make(map[crypto.Hash]*TxDesc),
		byPayment: make(map[paymentIDKey]map[crypto.Hash]*TxDesc),
	}
	if cfg != nil {
		mp.cfg = *cfg
	}
	if mp.cfg.Priority == nil {
		mp.cfg.Priority = FeeDensityPriority
	}
	if mp.cfg.Now == nil {
		mp.cfg.Now = time.Now
	}

	priority := mp.cfg.Priority
	mp.byPriority = btree.NewG(priorityTreeDegree, func(a, b *TxDesc) bool {
		if c := priority(a, b); c != 0 {
			return c > 0
		}
		return a.Tx.Hash().Less(b.Tx.Hash())
	})
	return mp
}

// paymentKey returns the payment id index key of the descriptor.
func paymentKey(desc *TxDesc) paymentIDKey {
	if !desc.HasPaymentID {
		return paymentIDKey{}
	}
	return paymentIDKey{ID: desc.PaymentID, Valid: true}
}

// addTransaction inserts the descriptor into every view and claims its key
// images.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) addTransaction(desc *TxDesc) {
	hash := *desc.Tx.Hash()
	mp.pool[hash] = desc
	mp.byPriority.ReplaceOrInsert(desc)

	key := paymentKey(desc)
	group := mp.byPayment[key]
	if group == nil {
		group = make(map[crypto.Hash]*TxDesc)
		mp.byPayment[key] = group
	}
	group[hash] = desc

	mp.state.Merge(desc.state)
	mp.lastUpdated.Store(mp.cfg.Now().Unix())
}

// removeTransaction is the internal function which implements the public
// RemoveTransaction.  See the comment for RemoveTransaction for more details.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) removeTransaction(hash *crypto.Hash) bool {
	desc, exists := mp.pool[*hash]
	if !exists {
		return false
	}

	delete(mp.pool, *hash)
	if _, ok := mp.byPriority.Delete(desc); !ok {
		panic(blockchain.AssertError(fmt.Sprintf("transaction %v missing "+
			"from the priority view", hash)))
	}

	key := paymentKey(desc)
	group := mp.byPayment[key]
	delete(group, *hash)
	if len(group) == 0 {
		delete(mp.byPayment, key)
	}

	mp.state.Exclude(desc.state)
	mp.lastUpdated.Store(mp.cfg.Now().Unix())
	return true
}

// PushTransaction adds tx to the pool.  The state is the set of key images
// tx claims, as computed by the validator that accepted it.
//
// A RuleError with ErrDuplicateTransaction is returned when the transaction
// is already in the pool and one with ErrConflictingTransaction when state
// intersects the key images claimed by the pool.  A rejected push leaves the
// pool untouched.
//
// This function is safe for concurrent access.
func (mp *TxPool) PushTransaction(tx *cnutil.CachedTransaction, state *blockchain.ValidatorState) error {
	hash := tx.Hash()

	// Derive everything the descriptor needs before taking the lock.
	paymentID, hasPaymentID := wire.PaymentIDFromExtra(tx.MsgTx().Extra)
	desc := &TxDesc{
		TxDesc: mining.TxDesc{
			Tx:   tx,
			Fee:  tx.Fee(),
			Size: tx.Size(),
		},
		PaymentID:    paymentID,
		HasPaymentID: hasPaymentID,
	}
	if state != nil {
		desc.state = state.Clone()
	} else {
		desc.state = &blockchain.ValidatorState{}
	}

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if _, exists := mp.pool[*hash]; exists {
		str := fmt.Sprintf("already have transaction %v", hash)
		return txRuleError(ErrDuplicateTransaction, str)
	}
	if mp.state.Intersects(desc.state) {
		str := fmt.Sprintf("transaction %v claims a key image already "+
			"claimed by a transaction in the pool", hash)
		return txRuleError(ErrConflictingTransaction, str)
	}

	desc.Added = mp.cfg.Now()
	mp.addTransaction(desc)
	return nil
}

// GetTransaction returns the transaction with the given hash.  The hash must
// be in the pool; asking for an absent transaction panics.  Use
// FetchTransaction when presence is not known.
//
// This function is safe for concurrent access.
func (mp *TxPool) GetTransaction(hash *crypto.Hash) *cnutil.CachedTransaction {
	tx, err := mp.FetchTransaction(hash)
	if err != nil {
		panic(blockchain.AssertError(err.Error()))
	}
	return tx
}

// FetchTransaction returns the requested transaction from the transaction
// pool.  A RuleError with ErrNotFound is returned when it is not there.
//
// This function is safe for concurrent access.
func (mp *TxPool) FetchTransaction(hash *crypto.Hash) (*cnutil.CachedTransaction, error) {
	mp.mtx.RLock()
	desc, exists := mp.pool[*hash]
	mp.mtx.RUnlock()

	if !exists {
		str := fmt.Sprintf("transaction %v is not in the pool", hash)
		return nil, txRuleError(ErrNotFound, str)
	}
	return desc.Tx, nil
}

// RemoveTransaction removes the transaction from every view of the pool and
// releases the key images it claimed.  It returns false when the
// transaction is not in the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) RemoveTransaction(hash *crypto.Hash) bool {
	mp.mtx.Lock()
	removed := mp.removeTransaction(hash)
	mp.mtx.Unlock()

	return removed
}

// RemoveTransactions removes every listed transaction present in the pool
// under one lock, as done when a block is connected.  It returns the number
// of transactions removed.
//
// This function is safe for concurrent access.
func (mp *TxPool) RemoveTransactions(hashes []crypto.Hash) int {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	var n int
	for i := range hashes {
		if mp.removeTransaction(&hashes[i]) {
			n++
		}
	}
	return n
}

// RemoveExpired removes the transactions received more than maxAge ago and
// returns their hashes in priority order.
//
// This function is safe for concurrent access.
func (mp *TxPool) RemoveExpired(maxAge time.Duration) []crypto.Hash {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	cutoff := mp.cfg.Now().Add(-maxAge)
	var expired []crypto.Hash
	mp.byPriority.Ascend(func(desc *TxDesc) bool {
		if desc.Added.Before(cutoff) {
			expired = append(expired, *desc.Tx.Hash())
		}
		return true
	})
	for i := range expired {
		mp.removeTransaction(&expired[i])
	}
	return expired
}

// Count returns the number of transactions in the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	count := len(mp.pool)
	mp.mtx.RUnlock()

	return count
}

// HaveTransaction returns whether or not the passed transaction already exists
// in the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) HaveTransaction(hash *crypto.Hash) bool {
	mp.mtx.RLock()
	_, exists := mp.pool[*hash]
	mp.mtx.RUnlock()

	return exists
}

// descs returns the descriptors in priority order.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) descs() []*TxDesc {
	descs := make([]*TxDesc, 0, mp.byPriority.Len())
	mp.byPriority.Ascend(func(desc *TxDesc) bool {
		descs = append(descs, desc)
		return true
	})
	return descs
}

// TxHashes returns the hashes of all transactions in the pool, highest
// priority first.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxHashes() []crypto.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	hashes := make([]crypto.Hash, 0, len(mp.pool))
	mp.byPriority.Ascend(func(desc *TxDesc) bool {
		hashes = append(hashes, *desc.Tx.Hash())
		return true
	})
	return hashes
}

// PoolTransactions returns a snapshot of the transactions in the pool,
// highest priority first.
//
// This function is safe for concurrent access.
func (mp *TxPool) PoolTransactions() []*cnutil.CachedTransaction {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	txs := make([]*cnutil.CachedTransaction, 0, len(mp.pool))
	mp.byPriority.Ascend(func(desc *TxDesc) bool {
		txs = append(txs, desc.Tx)
		return true
	})
	return txs
}

// TxDescs returns a slice of descriptors for all the transactions in the pool,
// highest priority first.  The descriptors are to be treated as read only.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mtx.RLock()
	descs := mp.descs()
	mp.mtx.RUnlock()

	return descs
}

// MiningDescs returns a slice of mining descriptors for all the transactions
// in the pool, highest priority first.
//
// This is part of the mining.TxSource interface implementation and is safe for
// concurrent access as required by the interface contract.
func (mp *TxPool) MiningDescs() []*mining.TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	descs := make([]*mining.TxDesc, 0, len(mp.pool))
	mp.byPriority.Ascend(func(desc *TxDesc) bool {
		descs = append(descs, &desc.TxDesc)
		return true
	})
	return descs
}

// ValidatorState returns a snapshot of the key images claimed by the
// transactions in the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) ValidatorState() *blockchain.ValidatorState {
	mp.mtx.RLock()
	state := mp.state.Clone()
	mp.mtx.RUnlock()

	return state
}

// ReceiveTime returns the time the transaction entered the pool.  A RuleError
// with ErrNotFound is returned when it is not there.
//
// This function is safe for concurrent access.
func (mp *TxPool) ReceiveTime(hash *crypto.Hash) (time.Time, error) {
	mp.mtx.RLock()
	desc, exists := mp.pool[*hash]
	mp.mtx.RUnlock()

	if !exists {
		str := fmt.Sprintf("transaction %v is not in the pool", hash)
		return time.Time{}, txRuleError(ErrNotFound, str)
	}
	return desc.Added, nil
}

// groupHashes returns the hashes of a payment id group in ascending order.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) groupHashes(key paymentIDKey) []crypto.Hash {
	group := mp.byPayment[key]
	hashes := make([]crypto.Hash, 0, len(group))
	for hash := range group {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Less(&hashes[j])
	})
	return hashes
}

// TxHashesByPaymentID returns the hashes of the transactions carrying the
// payment id, in ascending hash order.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxHashesByPaymentID(id crypto.Hash) []crypto.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.groupHashes(paymentIDKey{ID: id, Valid: true})
}

// TxHashesWithoutPaymentID returns the hashes of the transactions carrying no
// payment id, in ascending hash order.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxHashesWithoutPaymentID() []crypto.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.groupHashes(paymentIDKey{})
}

// LastUpdated returns the last time a transaction was added to or removed from
// the pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) LastUpdated() time.Time {
	return time.Unix(mp.lastUpdated.Load(), 0)
}
