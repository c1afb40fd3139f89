// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides the pool of transactions waiting to be mined.

The pool keeps one descriptor per transaction hash and indexes it by
selection priority and by payment id.  It also tracks the key images claimed
by its transactions and refuses any transaction claiming one of them again.

Callers validate a transaction and compute the key images it claims before
calling PushTransaction; the pool does no consensus validation of its own.

# Errors

Rejections are returned as RuleError values.  Test for a reason with
errors.Is:

	err := pool.PushTransaction(tx, state)
	switch {
	case errors.Is(err, mempool.ErrDuplicateTransaction):
		// Already known.
	case errors.Is(err, mempool.ErrConflictingTransaction):
		// Double spend of a pooled transaction.
	}
*/
package mempool
