// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain holds the chain rules a loose transaction is checked
// against before it may enter the memory pool: context free sanity checks,
// extraction of the key images it claims and the on chain spent key image
// check.  It also provides the proof of work target test.
package blockchain
