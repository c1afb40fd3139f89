// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var storageHeader = []byte{
	0x01, 0x11, 0x01, 0x01, // signature a
	0x01, 0x01, 0x02, 0x01, // signature b
	0x01, // version
}

// TestStorageVarInt checks the width selection of storage varints.
func TestStorageVarInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in  uint64
		buf []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0xfc}},
		{64, []byte{0x01, 0x01}},
		{16383, []byte{0xfd, 0xff}},
		{16384, []byte{0x02, 0x00, 0x01, 0x00}},
		{1073741823, []byte{0xfe, 0xff, 0xff, 0xff}},
		{1 << 30, []byte{0x03, 0, 0, 0, 0x01, 0, 0, 0}},
		{maxStorageVarInt, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff}},
	}

	for i, test := range tests {
		var buf bytes.Buffer
		require.NoError(t, writeStorageVarInt(&buf, test.in), "#%d", i)
		require.Equal(t, test.buf, buf.Bytes(), "#%d", i)

		r := &storageReader{b: test.buf}
		v, err := r.readVarInt()
		require.NoError(t, err, "#%d", i)
		require.Equal(t, test.in, v, "#%d", i)
		require.Empty(t, r.b, "#%d", i)
	}

	var buf bytes.Buffer
	require.Error(t, writeStorageVarInt(&buf, maxStorageVarInt+1))

	r := &storageReader{b: []byte{0x02, 0x00}}
	_, err := r.readVarInt()
	require.Error(t, err)
}

// TestSectionLayout checks the encoding of a small section byte for byte.
func TestSectionLayout(t *testing.T) {
	t.Parallel()

	s := NewSection()
	s.SetUint8("a", 5)
	s.SetString("st", "OK")

	want := append([]byte{}, storageHeader...)
	want = append(want,
		0x08,                  // two entries
		0x01, 'a', 0x08, 0x05, // a: uint8 5
		0x02, 's', 't', 0x0a, 0x08, 'O', 'K', // st: string "OK"
	)

	got, err := s.Bytes()
	require.NoError(t, err)
	require.Equal(t, want, got)

	parsed, err := ParseSection(got)
	require.NoError(t, err)
	v, err := parsed.Uint8("a")
	require.NoError(t, err)
	require.Equal(t, uint8(5), v)
	str, err := parsed.StringValue("st")
	require.NoError(t, err)
	require.Equal(t, "OK", str)
}

// TestSectionRoundTrip encodes every entry type and decodes it again.
func TestSectionRoundTrip(t *testing.T) {
	t.Parallel()

	inner := NewSection()
	inner.SetUint32("n", 7)

	s := NewSection()
	s.SetInt64("i64", math.MinInt64)
	s.SetInt32("i32", -5)
	s.SetUint64("u64", math.MaxUint64)
	s.SetUint32("u32", math.MaxUint32)
	s.SetUint16("u16", 0xbeef)
	s.SetUint8("u8", 0xab)
	s.SetDouble("d", 2.5)
	s.SetBool("b", true)
	s.SetBlob("blob", []byte{0, 1, 2})
	s.SetSection("obj", inner)
	s.SetBlobArray("blobs", [][]byte{{1}, {}, {2, 3}})
	s.SetSectionArray("objs", []*Section{inner, NewSection()})

	// Replacing a value keeps the position of the entry.
	s.SetUint8("u8", 0xcd)
	require.Equal(t, 12, s.Len())

	b, err := s.Bytes()
	require.NoError(t, err)
	parsed, err := ParseSection(b)
	require.NoError(t, err)

	again, err := parsed.Bytes()
	require.NoError(t, err)
	require.Equal(t, b, again)

	i64, err := parsed.Int64("i64")
	require.NoError(t, err)
	require.Equal(t, int64(math.MinInt64), i64)

	i32, err := parsed.Int64("i32")
	require.NoError(t, err)
	require.Equal(t, int64(-5), i32)

	u64, err := parsed.Uint64("u64")
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), u64)

	u32, err := parsed.Uint32("u32")
	require.NoError(t, err)
	require.Equal(t, uint32(math.MaxUint32), u32)

	u16, err := parsed.Uint64("u16")
	require.NoError(t, err)
	require.Equal(t, uint64(0xbeef), u16)

	u8, err := parsed.Uint8("u8")
	require.NoError(t, err)
	require.Equal(t, uint8(0xcd), u8)

	d, err := parsed.Double("d")
	require.NoError(t, err)
	require.Equal(t, 2.5, d)

	flag, err := parsed.Bool("b")
	require.NoError(t, err)
	require.True(t, flag)

	blob, err := parsed.Blob("blob")
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 2}, blob)

	obj, err := parsed.Section("obj")
	require.NoError(t, err)
	n, err := obj.Uint32("n")
	require.NoError(t, err)
	require.Equal(t, uint32(7), n)

	blobs, err := parsed.BlobArray("blobs")
	require.NoError(t, err)
	require.Equal(t, [][]byte{{1}, {}, {2, 3}}, blobs)

	objs, err := parsed.SectionArray("objs")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	require.True(t, objs[0].Has("n"))
	require.Zero(t, objs[1].Len())
}

// TestSectionGetterErrors checks missing entries, type mismatches and range
// checks.
func TestSectionGetterErrors(t *testing.T) {
	t.Parallel()

	s := NewSection()
	s.SetUint64("big", math.MaxUint32+1)
	s.SetInt32("neg", -1)
	s.SetBool("flag", true)

	_, err := s.Uint64("missing")
	require.True(t, IsMissing(err), "got %v", err)

	_, err = s.Uint32("big")
	var msgErr *MessageError
	require.True(t, errors.As(err, &msgErr), "got %v", err)
	require.False(t, IsMissing(err))

	_, err = s.Uint64("neg")
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	_, err = s.Blob("flag")
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	_, err = s.BlobArray("flag")
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	_, err = s.Int64("flag")
	require.True(t, errors.As(err, &msgErr), "got %v", err)

	long := NewSection()
	long.SetUint8(string(make([]byte, 256)), 1)
	_, err = long.Bytes()
	require.Error(t, err)
}

// TestParseSectionErrors ensures malformed storage is rejected.
func TestParseSectionErrors(t *testing.T) {
	t.Parallel()

	valid := NewSection()
	valid.SetUint32("n", 1)
	good, err := valid.Bytes()
	require.NoError(t, err)

	nested := func(depth int) []byte {
		b := append([]byte{}, storageHeader...)
		for i := 0; i < depth; i++ {
			b = append(b, 0x04, 0x01, 'o', TypeObject)
		}
		return append(b, 0x00)
	}

	badSig := append([]byte{}, good...)
	badSig[0] = 0xff
	badVersion := append([]byte{}, good...)
	badVersion[8] = 2

	tests := []struct {
		name string
		buf  []byte
	}{
		{"short header", good[:5]},
		{"bad signature", badSig},
		{"bad version", badVersion},
		{"truncated value", good[:len(good)-1]},
		{"trailing bytes", append(append([]byte{}, good...), 0x00)},
		{"unknown type", append(append([]byte{}, storageHeader...),
			0x04, 0x01, 'x', 0x0d)},
		{"huge count", append(append([]byte{}, storageHeader...), 0xfc)},
		{"too deep", nested(maxSectionDepth + 2)},
	}

	for _, test := range tests {
		_, err := ParseSection(test.buf)
		require.Error(t, err, test.name)
	}

	_, err = ParseSection(nested(10))
	require.NoError(t, err)
}
