// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrelay

import (
	"errors"
	"fmt"
	"time"

	"github.com/alloyproject/alloyd/blockchain"
	"github.com/alloyproject/alloyd/cnutil"
	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/mempool"
	"github.com/alloyproject/alloyd/p2p"
	"github.com/decred/dcrd/lru"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultRejectCacheSize is the number of rejected transactions remembered
// when the configuration does not specify it.
const DefaultRejectCacheSize = 5000

// Config is a descriptor containing the relay manager configuration.
type Config struct {
	// Pool receives the accepted transactions.
	Pool *mempool.TxPool

	// Validator checks each transaction and computes the key images it
	// claims.
	Validator *blockchain.Validator

	// RejectCacheSize is the number of rejected transactions remembered.
	// Zero selects DefaultRejectCacheSize.
	RejectCacheSize uint

	// Registerer receives the relay metrics.  They are still maintained,
	// but not exported, when it is nil.
	Registerer prometheus.Registerer
}

// Manager feeds the memory pool with transactions from peers and local
// submissions.  It is safe for concurrent access.
type Manager struct {
	cfg      Config
	rejected lru.Cache
	metrics  *metrics
}

// New returns a relay manager for the configured pool.
func New(cfg *Config) (*Manager, error) {
	if cfg.Pool == nil || cfg.Validator == nil {
		return nil, errors.New("txrelay: pool and validator are required")
	}

	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("txrelay: register metrics: %w", err)
	}

	size := cfg.RejectCacheSize
	if size == 0 {
		size = DefaultRejectCacheSize
	}
	mgr := &Manager{
		cfg:      *cfg,
		rejected: lru.NewCache(size),
		metrics:  m,
	}
	mgr.metrics.poolSize.Set(float64(cfg.Pool.Count()))
	return mgr, nil
}

// rejectReason returns the metric label for a processing error.
func rejectReason(err error) string {
	var bErr blockchain.RuleError
	if errors.As(err, &bErr) {
		return bErr.ErrorCode.String()
	}
	var mErr mempool.RuleError
	if errors.As(err, &mErr) {
		return mErr.ErrorCode.String()
	}
	return reasonDecode
}

// processTransaction decodes, validates and pushes one serialized
// transaction.  Rejections that do not depend on the pool contents are
// remembered under key.  Duplicates and conflicts are not, since either may
// be accepted once the pool entry they collide with is removed.
func (m *Manager) processTransaction(key crypto.Hash, blob []byte) (*cnutil.CachedTransaction, error) {
	tx, err := cnutil.NewCachedTransactionFromBytes(blob)
	if err != nil {
		m.reject(key, err)
		return nil, err
	}

	state, err := m.cfg.Validator.ValidateTransaction(tx)
	if err != nil {
		m.reject(key, err)
		return tx, err
	}

	err = m.cfg.Pool.PushTransaction(tx, state)
	switch {
	case errors.Is(err, mempool.ErrDuplicateTransaction):
		m.metrics.duplicate.Inc()
		return tx, err
	case errors.Is(err, mempool.ErrConflictingTransaction):
		m.metrics.rejected.WithLabelValues(rejectReason(err)).Inc()
		return tx, err
	case err != nil:
		m.reject(key, err)
		return tx, err
	}

	m.metrics.accepted.Inc()
	m.metrics.poolSize.Set(float64(m.cfg.Pool.Count()))
	return tx, nil
}

func (m *Manager) reject(key crypto.Hash, err error) {
	m.rejected.Add(key)
	m.metrics.rejected.WithLabelValues(rejectReason(err)).Inc()
}

// SubmitTransaction processes a locally submitted transaction.  Unlike
// relayed transactions it is processed even when it was rejected before so
// the caller always learns the reason.  The decoded transaction is returned
// whenever decoding succeeded.
func (m *Manager) SubmitTransaction(blob []byte) (*cnutil.CachedTransaction, error) {
	tx, err := m.processTransaction(crypto.FastHashH(blob), blob)
	if err != nil {
		return tx, err
	}
	log.Debugf("Accepted local transaction %v", tx.Hash())
	return tx, nil
}

// HandleNewTransactions processes the transactions announced by a peer and
// returns the hashes of those newly added to the pool, which should be
// relayed to the other peers.
func (m *Manager) HandleNewTransactions(peerID uint64, msg *p2p.NotifyNewTransactions) []crypto.Hash {
	var accepted []crypto.Hash
	for _, blob := range msg.Txs {
		key := crypto.FastHashH(blob)
		if m.rejected.Contains(key) {
			m.metrics.rejected.WithLabelValues(reasonKnownReject).Inc()
			continue
		}

		tx, err := m.processTransaction(key, blob)
		switch {
		case errors.Is(err, mempool.ErrDuplicateTransaction):
			log.Tracef("Transaction %v from peer %d is already known",
				tx.Hash(), peerID)
		case err != nil:
			log.Debugf("Rejected transaction %v from peer %d: %v", key,
				peerID, err)
		default:
			log.Debugf("Accepted transaction %v from peer %d", tx.Hash(),
				peerID)
			accepted = append(accepted, *tx.Hash())
		}
	}
	return accepted
}

// HandleRequestTxPool answers the pool synchronization request of a peer
// with every pool transaction missing from the hashes it already knows.
func (m *Manager) HandleRequestTxPool(msg *p2p.NotifyRequestTxPool) *p2p.NotifyNewTransactions {
	known := make(map[crypto.Hash]struct{}, len(msg.Txs))
	for _, hash := range msg.Txs {
		known[hash] = struct{}{}
	}

	reply := &p2p.NotifyNewTransactions{}
	for _, tx := range m.cfg.Pool.PoolTransactions() {
		if _, ok := known[*tx.Hash()]; ok {
			continue
		}
		reply.Txs = append(reply.Txs, tx.Bytes())
	}
	log.Debugf("Answering pool request with %d of %d transactions",
		len(reply.Txs), m.cfg.Pool.Count())
	return reply
}

// BlockConnected removes the transactions mined in a newly connected block
// from the pool and forgets any rejection recorded for them.  It returns the
// number of transactions removed from the pool.
func (m *Manager) BlockConnected(hashes []crypto.Hash) int {
	for _, hash := range hashes {
		m.rejected.Delete(hash)
	}
	n := m.cfg.Pool.RemoveTransactions(hashes)
	m.metrics.poolSize.Set(float64(m.cfg.Pool.Count()))

	log.Debugf("Removed %d mined transactions from the pool", n)
	return n
}

// ExpireTransactions removes the transactions that stayed in the pool longer
// than maxAge and returns their hashes.
func (m *Manager) ExpireTransactions(maxAge time.Duration) []crypto.Hash {
	expired := m.cfg.Pool.RemoveExpired(maxAge)
	m.metrics.poolSize.Set(float64(m.cfg.Pool.Count()))

	if len(expired) > 0 {
		log.Debugf("Expired %d transactions older than %v", len(expired),
			maxAge)
	}
	return expired
}
