// Copyright (c) 2016 The Decred developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mining selects pool transactions for inclusion in new blocks.

# Overview

A TxSource hands out descriptors for its transactions in priority order.
NewBlockTemplate walks them, packing every transaction that still fits in the
block and does not claim a key image already claimed by an earlier pick, and
reports the chosen transactions with their fees.
*/
package mining
