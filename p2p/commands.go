// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"encoding/binary"
	"fmt"

	"github.com/alloyproject/alloyd/crypto"
)

// Command identifiers.
const (
	CmdHandshake             uint32 = 1001
	CmdTimedSync             uint32 = 1002
	CmdPing                  uint32 = 1003
	CmdNotifyNewTransactions uint32 = 2002
	CmdNotifyRequestTxPool   uint32 = 2008
)

// PingOKStatus is the status of a successful ping response.
const PingOKStatus = "OK"

// peerlistEntrySize is the size of one binary peer list record.
const peerlistEntrySize = 24

// Payload is the body of a message.  A payload serializes itself into the
// entries of a section.
type Payload interface {
	// Command returns the command identifier of the payload.
	Command() uint32

	// MarshalSection stores the payload fields in s.
	MarshalSection(s *Section)

	// UnmarshalSection loads the payload fields from s.  Absent fields
	// keep their zero value.
	UnmarshalSection(s *Section) error
}

// makeEmptyPayload creates a payload of the appropriate concrete type based
// on the command and direction.
func makeEmptyPayload(cmd uint32, response bool) (Payload, error) {
	var p Payload
	switch cmd {
	case CmdHandshake:
		if response {
			p = &HandshakeResponse{}
		} else {
			p = &HandshakeRequest{}
		}

	case CmdTimedSync:
		if response {
			p = &TimedSyncResponse{}
		} else {
			p = &TimedSyncRequest{}
		}

	case CmdPing:
		if response {
			p = &PingResponse{}
		} else {
			p = &PingRequest{}
		}

	case CmdNotifyNewTransactions:
		p = &NotifyNewTransactions{}

	case CmdNotifyRequestTxPool:
		p = &NotifyRequestTxPool{}

	default:
		return nil, ErrUnknownCommand
	}
	return p, nil
}

// EncodePayload serializes p into a message body.
func EncodePayload(p Payload) ([]byte, error) {
	s := NewSection()
	p.MarshalSection(s)
	return s.Bytes()
}

// DecodePayload parses body into p.
func DecodePayload(body []byte, p Payload) error {
	s, err := ParseSection(body)
	if err != nil {
		return err
	}
	return p.UnmarshalSection(s)
}

// optional drops the error reported for an absent entry.
func optional(err error) error {
	if IsMissing(err) {
		return nil
	}
	return err
}

// readHash loads a 32 byte blob entry into h.
func readHash(s *Section, name string, h *crypto.Hash) error {
	b, err := s.Blob(name)
	if err != nil {
		return optional(err)
	}
	if len(b) != crypto.HashSize {
		str := fmt.Sprintf("entry %q is %d bytes, want %d", name,
			len(b), crypto.HashSize)
		return messageError("readHash", str)
	}
	copy(h[:], b)
	return nil
}

// readSubsection calls fn with the named object when it is present.
func readSubsection(s *Section, name string, fn func(*Section) error) error {
	sub, err := s.Section(name)
	if err != nil {
		return optional(err)
	}
	return fn(sub)
}

// NodeData identifies a node during the handshake.
type NodeData struct {
	NetworkID [16]byte
	Version   uint8
	PeerID    uint64
	LocalTime uint64
	MyPort    uint32
}

// MarshalSection stores the node data in s.
func (d *NodeData) MarshalSection(s *Section) {
	s.SetBlob("network_id", d.NetworkID[:])
	s.SetUint8("version", d.Version)
	s.SetUint64("peer_id", d.PeerID)
	s.SetUint64("local_time", d.LocalTime)
	s.SetUint32("my_port", d.MyPort)
}

// UnmarshalSection loads the node data from s.
func (d *NodeData) UnmarshalSection(s *Section) error {
	id, err := s.Blob("network_id")
	if err != nil {
		return err
	}
	if len(id) != len(d.NetworkID) {
		str := fmt.Sprintf("network id is %d bytes", len(id))
		return messageError("NodeData.UnmarshalSection", str)
	}
	copy(d.NetworkID[:], id)

	if d.Version, err = s.Uint8("version"); optional(err) != nil {
		return err
	}
	if d.PeerID, err = s.Uint64("peer_id"); optional(err) != nil {
		return err
	}
	if d.LocalTime, err = s.Uint64("local_time"); optional(err) != nil {
		return err
	}
	if d.MyPort, err = s.Uint32("my_port"); optional(err) != nil {
		return err
	}
	return nil
}

// CoreSyncData summarizes the chain of a node.
type CoreSyncData struct {
	CurrentHeight uint32
	TopID         crypto.Hash
}

// MarshalSection stores the sync data in s.
func (d *CoreSyncData) MarshalSection(s *Section) {
	s.SetUint32("current_height", d.CurrentHeight)
	s.SetBlob("top_id", d.TopID[:])
}

// UnmarshalSection loads the sync data from s.
func (d *CoreSyncData) UnmarshalSection(s *Section) error {
	var err error
	if d.CurrentHeight, err = s.Uint32("current_height"); optional(err) != nil {
		return err
	}
	return readHash(s, "top_id", &d.TopID)
}

// NetworkConfig is the network configuration a node may announce.
type NetworkConfig struct {
	ConnectionsCount  uint32
	HandshakeInterval uint32
	PacketMaxSize     uint32
	ConfigID          uint32
}

// MarshalSection stores the configuration in s.
func (c *NetworkConfig) MarshalSection(s *Section) {
	s.SetUint32("connections_count", c.ConnectionsCount)
	s.SetUint32("handshake_interval", c.HandshakeInterval)
	s.SetUint32("packet_max_size", c.PacketMaxSize)
	s.SetUint32("config_id", c.ConfigID)
}

// UnmarshalSection loads the configuration from s.
func (c *NetworkConfig) UnmarshalSection(s *Section) error {
	fields := []struct {
		name string
		dst  *uint32
	}{
		{"connections_count", &c.ConnectionsCount},
		{"handshake_interval", &c.HandshakeInterval},
		{"packet_max_size", &c.PacketMaxSize},
		{"config_id", &c.ConfigID},
	}
	for _, field := range fields {
		v, err := s.Uint32(field.name)
		if err := optional(err); err != nil {
			return err
		}
		*field.dst = v
	}
	return nil
}

// PeerlistEntry is a known peer address.
type PeerlistEntry struct {
	IP       uint32
	Port     uint32
	ID       uint64
	LastSeen uint64
}

// encodePeerlist packs the entries into the binary record list used on the
// wire.
func encodePeerlist(peers []PeerlistEntry) []byte {
	b := make([]byte, len(peers)*peerlistEntrySize)
	le := binary.LittleEndian
	for i, p := range peers {
		rec := b[i*peerlistEntrySize:]
		le.PutUint32(rec[0:4], p.IP)
		le.PutUint32(rec[4:8], p.Port)
		le.PutUint64(rec[8:16], p.ID)
		le.PutUint64(rec[16:24], p.LastSeen)
	}
	return b
}

// decodePeerlist unpacks a binary record list.
func decodePeerlist(b []byte) ([]PeerlistEntry, error) {
	if len(b)%peerlistEntrySize != 0 {
		str := fmt.Sprintf("peer list of %d bytes is not a multiple "+
			"of %d", len(b), peerlistEntrySize)
		return nil, messageError("decodePeerlist", str)
	}
	le := binary.LittleEndian
	peers := make([]PeerlistEntry, len(b)/peerlistEntrySize)
	for i := range peers {
		rec := b[i*peerlistEntrySize:]
		peers[i] = PeerlistEntry{
			IP:       le.Uint32(rec[0:4]),
			Port:     le.Uint32(rec[4:8]),
			ID:       le.Uint64(rec[8:16]),
			LastSeen: le.Uint64(rec[16:24]),
		}
	}
	return peers, nil
}

// readPeerlist loads the local_peerlist entry of s.
func readPeerlist(s *Section) ([]PeerlistEntry, error) {
	b, err := s.Blob("local_peerlist")
	if err != nil {
		return nil, optional(err)
	}
	return decodePeerlist(b)
}

// HandshakeRequest opens a connection.
type HandshakeRequest struct {
	NodeData    NodeData
	PayloadData CoreSyncData
}

// Command returns the command identifier of the payload.
func (m *HandshakeRequest) Command() uint32 { return CmdHandshake }

// MarshalSection stores the payload fields in s.
func (m *HandshakeRequest) MarshalSection(s *Section) {
	node, sync := NewSection(), NewSection()
	m.NodeData.MarshalSection(node)
	m.PayloadData.MarshalSection(sync)
	s.SetSection("node_data", node)
	s.SetSection("payload_data", sync)
}

// UnmarshalSection loads the payload fields from s.
func (m *HandshakeRequest) UnmarshalSection(s *Section) error {
	if err := readSubsection(s, "node_data", m.NodeData.UnmarshalSection); err != nil {
		return err
	}
	return readSubsection(s, "payload_data", m.PayloadData.UnmarshalSection)
}

// HandshakeResponse answers a HandshakeRequest.
type HandshakeResponse struct {
	NodeData      NodeData
	PayloadData   CoreSyncData
	LocalPeerlist []PeerlistEntry
}

// Command returns the command identifier of the payload.
func (m *HandshakeResponse) Command() uint32 { return CmdHandshake }

// MarshalSection stores the payload fields in s.
func (m *HandshakeResponse) MarshalSection(s *Section) {
	node, sync := NewSection(), NewSection()
	m.NodeData.MarshalSection(node)
	m.PayloadData.MarshalSection(sync)
	s.SetSection("node_data", node)
	s.SetSection("payload_data", sync)
	s.SetBlob("local_peerlist", encodePeerlist(m.LocalPeerlist))
}

// UnmarshalSection loads the payload fields from s.
func (m *HandshakeResponse) UnmarshalSection(s *Section) error {
	if err := readSubsection(s, "node_data", m.NodeData.UnmarshalSection); err != nil {
		return err
	}
	if err := readSubsection(s, "payload_data", m.PayloadData.UnmarshalSection); err != nil {
		return err
	}
	peers, err := readPeerlist(s)
	m.LocalPeerlist = peers
	return err
}

// TimedSyncRequest is the periodic chain summary exchange.
type TimedSyncRequest struct {
	PayloadData CoreSyncData
}

// Command returns the command identifier of the payload.
func (m *TimedSyncRequest) Command() uint32 { return CmdTimedSync }

// MarshalSection stores the payload fields in s.
func (m *TimedSyncRequest) MarshalSection(s *Section) {
	sync := NewSection()
	m.PayloadData.MarshalSection(sync)
	s.SetSection("payload_data", sync)
}

// UnmarshalSection loads the payload fields from s.
func (m *TimedSyncRequest) UnmarshalSection(s *Section) error {
	return readSubsection(s, "payload_data", m.PayloadData.UnmarshalSection)
}

// TimedSyncResponse answers a TimedSyncRequest.
type TimedSyncResponse struct {
	LocalTime     uint64
	PayloadData   CoreSyncData
	LocalPeerlist []PeerlistEntry
}

// Command returns the command identifier of the payload.
func (m *TimedSyncResponse) Command() uint32 { return CmdTimedSync }

// MarshalSection stores the payload fields in s.
func (m *TimedSyncResponse) MarshalSection(s *Section) {
	sync := NewSection()
	m.PayloadData.MarshalSection(sync)
	s.SetUint64("local_time", m.LocalTime)
	s.SetSection("payload_data", sync)
	s.SetBlob("local_peerlist", encodePeerlist(m.LocalPeerlist))
}

// UnmarshalSection loads the payload fields from s.
func (m *TimedSyncResponse) UnmarshalSection(s *Section) error {
	var err error
	if m.LocalTime, err = s.Uint64("local_time"); optional(err) != nil {
		return err
	}
	if err := readSubsection(s, "payload_data", m.PayloadData.UnmarshalSection); err != nil {
		return err
	}
	m.LocalPeerlist, err = readPeerlist(s)
	return err
}

// PingRequest checks a peer is reachable.  It carries no data.
type PingRequest struct{}

// Command returns the command identifier of the payload.
func (m *PingRequest) Command() uint32 { return CmdPing }

// MarshalSection stores the payload fields in s.
func (m *PingRequest) MarshalSection(s *Section) {}

// UnmarshalSection loads the payload fields from s.
func (m *PingRequest) UnmarshalSection(s *Section) error { return nil }

// PingResponse answers a PingRequest.
type PingResponse struct {
	Status string
	PeerID uint64
}

// Command returns the command identifier of the payload.
func (m *PingResponse) Command() uint32 { return CmdPing }

// MarshalSection stores the payload fields in s.
func (m *PingResponse) MarshalSection(s *Section) {
	s.SetString("status", m.Status)
	s.SetUint64("peer_id", m.PeerID)
}

// UnmarshalSection loads the payload fields from s.
func (m *PingResponse) UnmarshalSection(s *Section) error {
	var err error
	if m.Status, err = s.StringValue("status"); optional(err) != nil {
		return err
	}
	if m.PeerID, err = s.Uint64("peer_id"); optional(err) != nil {
		return err
	}
	return nil
}

// NotifyNewTransactions relays serialized transactions.
type NotifyNewTransactions struct {
	Txs [][]byte
}

// Command returns the command identifier of the payload.
func (m *NotifyNewTransactions) Command() uint32 { return CmdNotifyNewTransactions }

// MarshalSection stores the payload fields in s.
func (m *NotifyNewTransactions) MarshalSection(s *Section) {
	s.SetBlobArray("txs", m.Txs)
}

// UnmarshalSection loads the payload fields from s.
func (m *NotifyNewTransactions) UnmarshalSection(s *Section) error {
	txs, err := s.BlobArray("txs")
	if err != nil {
		return optional(err)
	}
	m.Txs = txs
	return nil
}

// NotifyRequestTxPool asks a peer for the pool transactions missing from
// the listed hashes.
type NotifyRequestTxPool struct {
	Txs []crypto.Hash
}

// Command returns the command identifier of the payload.
func (m *NotifyRequestTxPool) Command() uint32 { return CmdNotifyRequestTxPool }

// MarshalSection stores the payload fields in s.
func (m *NotifyRequestTxPool) MarshalSection(s *Section) {
	b := make([]byte, 0, len(m.Txs)*crypto.HashSize)
	for i := range m.Txs {
		b = append(b, m.Txs[i][:]...)
	}
	s.SetBlob("txs", b)
}

// UnmarshalSection loads the payload fields from s.
func (m *NotifyRequestTxPool) UnmarshalSection(s *Section) error {
	b, err := s.Blob("txs")
	if err != nil {
		return optional(err)
	}
	if len(b)%crypto.HashSize != 0 {
		str := fmt.Sprintf("hash list of %d bytes is not a multiple "+
			"of %d", len(b), crypto.HashSize)
		return messageError("NotifyRequestTxPool.UnmarshalSection", str)
	}
	m.Txs = make([]crypto.Hash, len(b)/crypto.HashSize)
	for i := range m.Txs {
		copy(m.Txs[i][:], b[i*crypto.HashSize:])
	}
	return nil
}
