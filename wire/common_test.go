// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVarInt tests wire encode and decode for variable length integers.
func TestVarInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in  uint64
		buf []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0x01}},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, test.in), "test #%d", i)
		require.Equal(t, test.buf, buf.Bytes(), "test #%d", i)
		require.Equal(t, len(test.buf), VarIntSerializeSize(test.in),
			"test #%d", i)

		val, err := ReadVarInt(bytes.NewReader(test.buf))
		require.NoError(t, err, "test #%d", i)
		require.Equal(t, test.in, val, "test #%d", i)
	}
}

// TestVarIntErrors ensures malformed varints are rejected.
func TestVarIntErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		buf  []byte
		eof  error
	}{
		{"empty", []byte{}, io.EOF},
		{"truncated", []byte{0x80}, io.ErrUnexpectedEOF},
		{"non-canonical", []byte{0x80, 0x00}, nil},
		{"overflow", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0x02}, nil},
	}

	for _, test := range tests {
		_, err := ReadVarInt(bytes.NewReader(test.buf))
		require.Error(t, err, test.name)
		if test.eof != nil {
			require.True(t, errors.Is(err, test.eof), "%s: %v",
				test.name, err)
			continue
		}
		var dErr *DeserializationError
		require.ErrorAs(t, err, &dErr, test.name)
	}
}
