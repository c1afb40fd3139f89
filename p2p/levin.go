// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// LevinSignature starts every packet.
	LevinSignature uint64 = 0x0101010101012101

	// LevinProtocolVersion is the header version written and accepted.
	LevinProtocolVersion uint32 = 1

	// HeaderSize is the number of bytes of a packet header.
	HeaderSize = 33

	// DefaultMaxPacketSize bounds the body of received packets when no
	// other limit is configured.
	DefaultMaxPacketSize = 50 * 1024 * 1024
)

// Packet flags.
const (
	FlagRequest  uint32 = 0x00000001
	FlagResponse uint32 = 0x00000002
)

// Return codes carried in response headers.
const (
	ReturnOK             int32 = 0
	ReturnUnknownCommand int32 = -4
	ReturnFormatError    int32 = -7
)

// Header is the fixed part of a Levin packet.
type Header struct {
	// BodySize is the number of bytes following the header.
	BodySize uint64

	// ExpectResponse is set on requests the peer must answer.
	ExpectResponse bool

	// Command identifies the payload.
	Command uint32

	// ReturnCode is the outcome reported by a response.
	ReturnCode int32

	// Flags marks the packet as a request or a response.
	Flags uint32
}

// IsResponse reports whether the packet answers an earlier request.
func (h *Header) IsResponse() bool {
	return h.Flags&FlagResponse != 0
}

// encodeHeader serializes h into buf.
func encodeHeader(buf *[HeaderSize]byte, h *Header) {
	le := binary.LittleEndian
	le.PutUint64(buf[0:8], LevinSignature)
	le.PutUint64(buf[8:16], h.BodySize)
	if h.ExpectResponse {
		buf[16] = 1
	} else {
		buf[16] = 0
	}
	le.PutUint32(buf[17:21], h.Command)
	le.PutUint32(buf[21:25], uint32(h.ReturnCode))
	le.PutUint32(buf[25:29], h.Flags)
	le.PutUint32(buf[29:33], LevinProtocolVersion)
}

// readHeader reads and checks a packet header from r.
func readHeader(r io.Reader) (*Header, error) {
	const f = "readHeader"

	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	le := binary.LittleEndian
	if sig := le.Uint64(buf[0:8]); sig != LevinSignature {
		str := fmt.Sprintf("bad packet signature %#016x", sig)
		return nil, messageError(f, str)
	}
	if version := le.Uint32(buf[29:33]); version != LevinProtocolVersion {
		str := fmt.Sprintf("unsupported protocol version %d", version)
		return nil, messageError(f, str)
	}
	return &Header{
		BodySize:       le.Uint64(buf[8:16]),
		ExpectResponse: buf[16] != 0,
		Command:        le.Uint32(buf[17:21]),
		ReturnCode:     int32(le.Uint32(buf[21:25])),
		Flags:          le.Uint32(buf[25:29]),
	}, nil
}

// WritePacket writes a packet carrying body to w.  The BodySize of hdr is
// set from body.
func WritePacket(w io.Writer, hdr Header, body []byte) error {
	hdr.BodySize = uint64(len(body))

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(body))
	var hb [HeaderSize]byte
	encodeHeader(&hb, &hdr)
	buf.Write(hb[:])
	buf.Write(body)

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadPacket reads the next packet from r.  Bodies larger than
// maxPacketSize are refused without being read.
func ReadPacket(r io.Reader, maxPacketSize uint64) (*Header, []byte, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if hdr.BodySize > maxPacketSize {
		str := fmt.Sprintf("packet body is too large - header "+
			"indicates %d bytes, but max packet size is %d bytes",
			hdr.BodySize, maxPacketSize)
		return nil, nil, messageError("ReadPacket", str)
	}

	body := make([]byte, hdr.BodySize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}
	return hdr, body, nil
}

// WriteMessage writes p as a request.  When expectResponse is set the peer
// is asked to answer it.
func WriteMessage(w io.Writer, p Payload, expectResponse bool) error {
	body, err := EncodePayload(p)
	if err != nil {
		return err
	}
	hdr := Header{
		ExpectResponse: expectResponse,
		Command:        p.Command(),
		Flags:          FlagRequest,
	}
	log.Tracef("Sending command %d (%d bytes)", hdr.Command, len(body))
	return WritePacket(w, hdr, body)
}

// WriteResponse writes p as the answer to a request with the given return
// code.
func WriteResponse(w io.Writer, p Payload, code int32) error {
	body, err := EncodePayload(p)
	if err != nil {
		return err
	}
	hdr := Header{
		Command:    p.Command(),
		ReturnCode: code,
		Flags:      FlagResponse,
	}
	log.Tracef("Sending response %d (%d bytes, code %d)", hdr.Command,
		len(body), code)
	return WritePacket(w, hdr, body)
}

// ReadMessage reads the next packet from r and decodes its payload.  The
// payload type depends on the command and on whether the packet is a
// response.  ErrUnknownCommand is returned, along with the header, for
// commands without a payload type; the body has been consumed in that case.
func ReadMessage(r io.Reader, maxPacketSize uint64) (*Header, Payload, error) {
	hdr, body, err := ReadPacket(r, maxPacketSize)
	if err != nil {
		return nil, nil, err
	}
	log.Tracef("Received command %d (%d bytes, flags %#x)", hdr.Command,
		len(body), hdr.Flags)

	p, err := makeEmptyPayload(hdr.Command, hdr.IsResponse())
	if err != nil {
		return hdr, nil, err
	}
	if err := DecodePayload(body, p); err != nil {
		return hdr, nil, err
	}
	return hdr, p, nil
}
