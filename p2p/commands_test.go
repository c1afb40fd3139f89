// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"testing"

	"github.com/alloyproject/alloyd/crypto"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestPayloadRoundTrip sends every payload through a packet and checks it
// comes back unchanged.
func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	node := NodeData{
		NetworkID: [16]byte{0x11, 0x10, 0x01, 0x11},
		Version:   1,
		PeerID:    0xdeadbeef,
		LocalTime: 1500000000,
		MyPort:    1808,
	}
	sync := CoreSyncData{CurrentHeight: 1234, TopID: crypto.Hash{0x77}}
	peers := []PeerlistEntry{
		{IP: 0x0100007f, Port: 1808, ID: 1, LastSeen: 99},
		{IP: 0x0200000a, Port: 1809, ID: 2, LastSeen: 100},
	}

	tests := []struct {
		payload  Payload
		response bool
	}{
		{&HandshakeRequest{NodeData: node, PayloadData: sync}, false},
		{&HandshakeResponse{NodeData: node, PayloadData: sync,
			LocalPeerlist: peers}, true},
		{&TimedSyncRequest{PayloadData: sync}, false},
		{&TimedSyncResponse{LocalTime: 5, PayloadData: sync,
			LocalPeerlist: peers}, true},
		{&PingRequest{}, false},
		{&PingResponse{Status: PingOKStatus, PeerID: 3}, true},
		{&NotifyNewTransactions{Txs: [][]byte{{1, 2}, {3}}}, false},
		{&NotifyRequestTxPool{Txs: []crypto.Hash{{1}, {2}}}, false},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		var err error
		if test.response {
			err = WriteResponse(&buf, test.payload, ReturnOK)
		} else {
			err = WriteMessage(&buf, test.payload, false)
		}
		require.NoError(t, err, "#%d", i)

		hdr, got, err := ReadMessage(&buf, DefaultMaxPacketSize)
		require.NoError(t, err, "#%d", i)
		require.Equal(t, test.payload.Command(), hdr.Command)
		require.Equal(t, test.payload, got, "#%d\n%s", i,
			spew.Sdump(got))
	}
}

// TestPayloadOptionalFields ensures absent entries decode as zero values.
func TestPayloadOptionalFields(t *testing.T) {
	t.Parallel()

	body, err := NewSection().Bytes()
	require.NoError(t, err)

	var resp HandshakeResponse
	require.NoError(t, DecodePayload(body, &resp))
	require.Equal(t, HandshakeResponse{}, resp)

	var notify NotifyNewTransactions
	require.NoError(t, DecodePayload(body, &notify))
	require.Nil(t, notify.Txs)

	// A node without a version entry is treated as version zero.
	s := NewSection()
	s.SetBlob("network_id", make([]byte, 16))
	s.SetUint64("peer_id", 9)
	var node NodeData
	require.NoError(t, node.UnmarshalSection(s))
	require.Zero(t, node.Version)
	require.Equal(t, uint64(9), node.PeerID)
}

// TestPayloadMalformed ensures bad field contents are reported.
func TestPayloadMalformed(t *testing.T) {
	t.Parallel()

	s := NewSection()
	s.SetBlob("txs", make([]byte, crypto.HashSize+1))
	var pool NotifyRequestTxPool
	require.Error(t, pool.UnmarshalSection(s))

	s = NewSection()
	s.SetBlob("local_peerlist", make([]byte, peerlistEntrySize-1))
	var sync TimedSyncResponse
	require.Error(t, sync.UnmarshalSection(s))

	s = NewSection()
	s.SetBlob("top_id", []byte{1})
	var core CoreSyncData
	require.Error(t, core.UnmarshalSection(s))

	s = NewSection()
	s.SetBlob("network_id", []byte{1})
	var node NodeData
	require.Error(t, node.UnmarshalSection(s))

	// The transactions of a notification must be strings.
	s = NewSection()
	s.SetUint32("txs", 1)
	var notify NotifyNewTransactions
	require.Error(t, notify.UnmarshalSection(s))
}

// TestNetworkConfig round trips the network configuration section.
func TestNetworkConfig(t *testing.T) {
	t.Parallel()

	cfg := NetworkConfig{
		ConnectionsCount:  8,
		HandshakeInterval: 60,
		PacketMaxSize:     DefaultMaxPacketSize,
		ConfigID:          3,
	}
	s := NewSection()
	cfg.MarshalSection(s)

	var got NetworkConfig
	require.NoError(t, got.UnmarshalSection(s))
	require.Equal(t, cfg, got)
}
