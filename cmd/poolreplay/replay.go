// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/internal/log"
	"github.com/alloyproject/alloyd/mining"
	"github.com/alloyproject/alloyd/p2p"
	"github.com/alloyproject/alloyd/txrelay"
)

// replayPeerID identifies the simulated peer relaying the replayed
// transactions.
const replayPeerID = 1

// replayClock is the time source of the replayed pool.  It only moves on
// advance directives.
type replayClock struct {
	now time.Time
}

func (c *replayClock) Now() time.Time { return c.now }

// replayStats counts the outcome of a replay.
type replayStats struct {
	Relayed  int
	Accepted int
	Mined    int
	Expired  int
}

// replayer feeds the directives of a replay file through the relay manager.
//
// The supported directives, one per line, are:
//
//	tx <hex>              relay a serialized transaction
//	mined <hash> ...      connect a block mining the listed transactions
//	advance <duration>    move the pool clock forward
//	expire                drop transactions older than the max age
//	sync <hash> ...       answer a pool request from a peer knowing the hashes
//
// Blank lines and lines starting with # are ignored.  Consecutive tx
// directives are relayed as a single message.
type replayer struct {
	clock   *replayClock
	relay   *txrelay.Manager
	maxAge  time.Duration
	pending [][]byte
	stats   replayStats
}

// roundTrip passes p through the wire encoding as if it was received from a
// peer.
func roundTrip(p p2p.Payload) (p2p.Payload, error) {
	var buf bytes.Buffer
	if err := p2p.WriteMessage(&buf, p, false); err != nil {
		return nil, err
	}
	_, got, err := p2p.ReadMessage(&buf, p2p.DefaultMaxPacketSize)
	return got, err
}

// flush relays the pending transactions.
func (r *replayer) flush() error {
	if len(r.pending) == 0 {
		return nil
	}

	payload, err := roundTrip(&p2p.NotifyNewTransactions{Txs: r.pending})
	if err != nil {
		return err
	}
	msg, ok := payload.(*p2p.NotifyNewTransactions)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}

	accepted := r.relay.HandleNewTransactions(replayPeerID, msg)
	r.stats.Relayed += len(msg.Txs)
	r.stats.Accepted += len(accepted)
	log.MainLog.Debugf("Relayed %d transactions, %d accepted",
		len(msg.Txs), len(accepted))
	r.pending = r.pending[:0]
	return nil
}

func parseHashes(fields []string) ([]crypto.Hash, error) {
	hashes := make([]crypto.Hash, len(fields))
	for i, field := range fields {
		if err := crypto.Decode(&hashes[i], field); err != nil {
			return nil, err
		}
	}
	return hashes, nil
}

// directive executes one replay line.
func (r *replayer) directive(fields []string) error {
	name, args := fields[0], fields[1:]
	if name == "tx" {
		if len(args) != 1 {
			return fmt.Errorf("tx takes one argument")
		}
		blob, err := hex.DecodeString(args[0])
		if err != nil {
			return err
		}
		r.pending = append(r.pending, blob)
		return nil
	}

	if err := r.flush(); err != nil {
		return err
	}

	switch name {
	case "mined":
		hashes, err := parseHashes(args)
		if err != nil {
			return err
		}
		r.stats.Mined += r.relay.BlockConnected(hashes)

	case "advance":
		if len(args) != 1 {
			return fmt.Errorf("advance takes one argument")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return err
		}
		r.clock.now = r.clock.now.Add(d)

	case "expire":
		r.stats.Expired += len(r.relay.ExpireTransactions(r.maxAge))

	case "sync":
		hashes, err := parseHashes(args)
		if err != nil {
			return err
		}
		payload, err := roundTrip(&p2p.NotifyRequestTxPool{Txs: hashes})
		if err != nil {
			return err
		}
		req, ok := payload.(*p2p.NotifyRequestTxPool)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		reply := r.relay.HandleRequestTxPool(req)
		log.MainLog.Infof("Pool request knowing %d %s answered with %d "+
			"%s", len(hashes), log.PickNoun(uint64(len(hashes)),
			"transaction", "transactions"), len(reply.Txs),
			log.PickNoun(uint64(len(reply.Txs)), "transaction",
				"transactions"))

	default:
		return fmt.Errorf("unknown directive %q", name)
	}
	return nil
}

// run executes every directive read from in.
func (r *replayer) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, 4*1024*1024)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.directive(strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return r.flush()
}

// writeTemplate prints the transactions selected for a block.
func writeTemplate(w io.Writer, template *mining.BlockTemplate) {
	for i, tx := range template.Transactions {
		fmt.Fprintf(w, "%v fee=%d size=%d\n", tx.Hash(), template.Fees[i],
			tx.Size())
	}
	fmt.Fprintf(w, "transactions=%d fees=%d size=%d\n",
		len(template.Transactions), template.TotalFees,
		template.TotalSize)
}
