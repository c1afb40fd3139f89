// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package p2p implements the parts of the CryptoNote peer protocol a node needs
to exchange pool transactions.

Messages travel in Levin packets: a fixed 33 byte header naming the command
followed by a body.  Bodies are portable storage sections, a binary key-value
format of named and typed entries.  The payloads of the handshake, the timed
sync, the ping and the two transaction notifications are provided along with
functions mapping between command identifiers and payload types.
*/
package p2p
