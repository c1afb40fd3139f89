// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txrelay moves loose transactions between the network and the memory
pool.

A Manager decodes the transactions announced by peers, runs them through a
blockchain.Validator and pushes the survivors into a mempool.TxPool.  It
returns the hashes worth relaying onwards, answers the pool synchronization
request of a newly connected peer and drops transactions from the pool once
they are mined.

Transactions that failed to decode or were rejected by the validator are
remembered in a bounded cache, keyed by the hash of their serialized form, so
a transaction relayed again by other peers is ignored without being decoded a
second time.  Transactions conflicting with a pool entry are not remembered:
they are processed again when relayed after that entry left the pool.

The Manager optionally exports Prometheus metrics counting accepted,
duplicate and rejected transactions along with the size of the pool.
*/
package txrelay
