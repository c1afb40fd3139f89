// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHeaderLayout checks the encoding of a packet header byte for byte.
func TestHeaderLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	hdr := Header{
		ExpectResponse: true,
		Command:        CmdPing,
		ReturnCode:     -1,
		Flags:          FlagRequest,
	}
	require.NoError(t, WritePacket(&buf, hdr, []byte{0xaa, 0xbb}))

	want := []byte{
		0x01, 0x21, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, // signature
		0x02, 0, 0, 0, 0, 0, 0, 0, // body size
		0x01,                   // expect response
		0xeb, 0x03, 0x00, 0x00, // command 1003
		0xff, 0xff, 0xff, 0xff, // return code -1
		0x01, 0x00, 0x00, 0x00, // flags
		0x01, 0x00, 0x00, 0x00, // version
		0xaa, 0xbb, // body
	}
	require.Equal(t, want, buf.Bytes())

	got, body, err := ReadPacket(bytes.NewReader(want), DefaultMaxPacketSize)
	require.NoError(t, err)
	hdr.BodySize = 2
	require.Equal(t, &hdr, got)
	require.Equal(t, []byte{0xaa, 0xbb}, body)
	require.False(t, got.IsResponse())
}

// TestReadPacketErrors ensures bad headers and oversized bodies are refused.
func TestReadPacketErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WritePacket(&buf, Header{Command: 1}, make([]byte, 10)))
	packet := buf.Bytes()

	var msgErr *MessageError
	_, _, err := ReadPacket(bytes.NewReader(packet), 9)
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	badSig := append([]byte{}, packet...)
	badSig[0] = 0
	_, _, err = ReadPacket(bytes.NewReader(badSig), DefaultMaxPacketSize)
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	badVersion := append([]byte{}, packet...)
	badVersion[29] = 2
	_, _, err = ReadPacket(bytes.NewReader(badVersion), DefaultMaxPacketSize)
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	_, _, err = ReadPacket(bytes.NewReader(packet[:HeaderSize+5]),
		DefaultMaxPacketSize)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = ReadPacket(bytes.NewReader(nil), DefaultMaxPacketSize)
	require.ErrorIs(t, err, io.EOF)
}

// TestMessageExchange writes a request and its response and reads both back
// as typed payloads.
func TestMessageExchange(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, &PingRequest{}, true))
	require.NoError(t, WriteResponse(&buf, &PingResponse{
		Status: PingOKStatus,
		PeerID: 42,
	}, ReturnOK))
	require.NoError(t, WritePacket(&buf, Header{Command: 77}, []byte{1}))

	hdr, p, err := ReadMessage(&buf, DefaultMaxPacketSize)
	require.NoError(t, err)
	require.True(t, hdr.ExpectResponse)
	require.IsType(t, &PingRequest{}, p)

	hdr, p, err = ReadMessage(&buf, DefaultMaxPacketSize)
	require.NoError(t, err)
	require.True(t, hdr.IsResponse())
	require.Equal(t, &PingResponse{Status: "OK", PeerID: 42}, p)

	hdr, _, err = ReadMessage(&buf, DefaultMaxPacketSize)
	require.ErrorIs(t, err, ErrUnknownCommand)
	require.Equal(t, uint32(77), hdr.Command)
	require.Zero(t, buf.Len(), "unknown body must be consumed")
}
