// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alloyproject/alloyd/blockchain"
	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/mempool"
	"github.com/alloyproject/alloyd/mining"
	"github.com/alloyproject/alloyd/txrelay"
	"github.com/alloyproject/alloyd/wire"
	"github.com/stretchr/testify/require"
)

// testTx returns a serialized single input transaction paying fee and its
// hash.
func testTx(t *testing.T, fee uint64, image byte) (string, crypto.Hash) {
	t.Helper()

	msgTx := wire.NewMsgTx(wire.TxVersion)
	msgTx.AddTxIn(&wire.KeyInput{
		Amount:        10000,
		OutputIndexes: []uint32{0},
		KeyImage:      crypto.KeyImage{image},
	}, crypto.Signature{image})
	msgTx.AddTxOut(&wire.TxOut{
		Amount: 10000 - fee,
		Target: wire.KeyOutput{Key: crypto.PublicKey{image}},
	})
	blob, err := msgTx.Bytes()
	require.NoError(t, err)
	return hex.EncodeToString(blob), crypto.FastHashH(blob)
}

func newTestReplayer(t *testing.T) (*replayer, *mempool.TxPool) {
	t.Helper()

	clock := &replayClock{now: replayEpoch}
	pool := mempool.New(&mempool.Config{Now: clock.Now})
	relay, err := txrelay.New(&txrelay.Config{
		Pool:      pool,
		Validator: blockchain.NewValidator(&blockchain.ValidatorConfig{}),
	})
	require.NoError(t, err)
	return &replayer{clock: clock, relay: relay, maxAge: time.Hour}, pool
}

// TestReplay runs a replay covering every directive and checks the final
// pool and block template.
func TestReplay(t *testing.T) {
	t.Parallel()

	tx1, hash1 := testTx(t, 100, 1)
	tx2, hash2 := testTx(t, 300, 2)
	tx3, hash3 := testTx(t, 200, 3)
	double, _ := testTx(t, 900, 1)
	tx4, hash4 := testTx(t, 50, 4)

	script := fmt.Sprintf(`# initial batch
tx %s
tx %s
tx %s
tx %s

sync %v
mined %v
advance 2h
tx %s
expire
`, tx1, tx2, tx3, double, hash2, hash1, tx4)

	r, pool := newTestReplayer(t)
	require.NoError(t, r.run(strings.NewReader(script)))
	require.Equal(t, replayStats{
		Relayed:  5,
		Accepted: 4,
		Mined:    1,
		Expired:  2,
	}, r.stats)
	require.Equal(t, []crypto.Hash{hash4}, pool.TxHashes())
	require.False(t, pool.HaveTransaction(&hash2))
	require.False(t, pool.HaveTransaction(&hash3))

	template, err := mining.NewBlockTemplate(mining.DefaultPolicy(), pool)
	require.NoError(t, err)

	var out bytes.Buffer
	writeTemplate(&out, template)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], hash4.String()+" fee=50 "))
	require.True(t, strings.HasPrefix(lines[1], "transactions=1 fees=50 "))
}

func TestReplayErrors(t *testing.T) {
	t.Parallel()

	tests := []string{
		"bogus",
		"tx",
		"tx zz",
		"mined 1234",
		"advance",
		"advance soon",
		"sync nothex",
	}
	for _, script := range tests {
		r, _ := newTestReplayer(t)
		err := r.run(strings.NewReader("# header\n" + script + "\n"))
		require.ErrorContains(t, err, "line 2", script)
	}
}
