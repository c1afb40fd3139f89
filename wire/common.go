// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

const (
	// MaxVarIntPayload is the maximum payload size for a variable length
	// integer.
	MaxVarIntPayload = 10
)

// ReadVarInt reads an unsigned LEB128 variable length integer from r and
// returns it as a uint64.  Encodings that are longer than necessary are
// rejected so every value has exactly one representation on the wire.
func ReadVarInt(r io.Reader) (uint64, error) {
	var (
		buf   [1]byte
		value uint64
	)
	for i := 0; i < MaxVarIntPayload; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if i > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		b := buf[0]

		// The tenth byte may only contribute the top bit.
		if i == MaxVarIntPayload-1 && b > 1 {
			return 0, deserializationError("ReadVarInt",
				"varint overflows a 64-bit integer")
		}
		value |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, deserializationError("ReadVarInt",
					"non-canonical varint")
			}
			return value, nil
		}
	}

	return 0, deserializationError("ReadVarInt", "varint is too long")
}

// WriteVarInt serializes val to w using an unsigned LEB128 encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	var buf [MaxVarIntPayload]byte
	n := putVarInt(buf[:], val)
	_, err := w.Write(buf[:n])
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	size := 1
	for val >= 0x80 {
		val >>= 7
		size++
	}
	return size
}

// putVarInt encodes val into buf and returns the number of bytes written.
func putVarInt(buf []byte, val uint64) int {
	i := 0
	for val >= 0x80 {
		buf[i] = byte(val) | 0x80
		val >>= 7
		i++
	}
	buf[i] = byte(val)
	return i + 1
}

// readCount reads a varint element count and ensures it does not exceed max.
func readCount(r io.Reader, f, what string, max uint64) (uint64, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if count > max {
		str := fmt.Sprintf("too many %s to fit into max message size "+
			"[count %d, max %d]", what, count, max)
		return 0, deserializationError(f, str)
	}
	return count, nil
}

// readUint32 reads a varint and ensures it fits in 32 bits.
func readUint32(r io.Reader, f, what string) (uint32, error) {
	v, err := ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		str := fmt.Sprintf("%s %d overflows 32 bits", what, v)
		return 0, deserializationError(f, str)
	}
	return uint32(v), nil
}
