// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// StorageSignatureA and StorageSignatureB open every serialized
	// section tree.
	StorageSignatureA uint32 = 0x01011101
	StorageSignatureB uint32 = 0x01020101

	// StorageFormatVersion is the only supported format version.
	StorageFormatVersion = 1

	// storageHeaderSize is the size of the two signatures and the
	// version.
	storageHeaderSize = 9

	// maxSectionDepth bounds the nesting of decoded sections.
	maxSectionDepth = 100

	// maxStorageVarInt is the largest value a storage varint can hold.
	maxStorageVarInt = math.MaxUint64 >> 2

	// maxNameLength is the longest entry name, which is length prefixed
	// by a single byte.
	maxNameLength = 255
)

// Entry type identifiers.  An array of a type is tagged with the type ORed
// with TypeArray.
const (
	TypeInt64  byte = 1
	TypeInt32  byte = 2
	TypeInt16  byte = 3
	TypeInt8   byte = 4
	TypeUint64 byte = 5
	TypeUint32 byte = 6
	TypeUint16 byte = 7
	TypeUint8  byte = 8
	TypeDouble byte = 9
	TypeString byte = 10
	TypeBool   byte = 11
	TypeObject byte = 12
	TypeArray  byte = 0x80
)

// errMissingEntry is wrapped by the getters of Section when the entry does
// not exist.
var errMissingEntry = errors.New("missing entry")

// entry is one typed value of a section.  Scalars hold the Go type matching
// the tag, strings hold []byte, objects hold *Section and arrays hold []any.
type entry struct {
	typ byte
	val any
}

// Section is an ordered set of named, typed entries.  Entries are encoded in
// insertion order; setting an existing name replaces its value in place.
type Section struct {
	names   []string
	entries map[string]entry
}

// NewSection returns an empty section.
func NewSection() *Section {
	return &Section{entries: make(map[string]entry)}
}

func (s *Section) set(name string, typ byte, val any) {
	if s.entries == nil {
		s.entries = make(map[string]entry)
	}
	if _, ok := s.entries[name]; !ok {
		s.names = append(s.names, name)
	}
	s.entries[name] = entry{typ: typ, val: val}
}

// Len returns the number of entries.
func (s *Section) Len() int { return len(s.names) }

// Has reports whether the section holds an entry with the name.
func (s *Section) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// SetInt64 sets an int64 entry.
func (s *Section) SetInt64(name string, v int64) { s.set(name, TypeInt64, v) }

// SetInt32 sets an int32 entry.
func (s *Section) SetInt32(name string, v int32) { s.set(name, TypeInt32, v) }

// SetUint64 sets a uint64 entry.
func (s *Section) SetUint64(name string, v uint64) { s.set(name, TypeUint64, v) }

// SetUint32 sets a uint32 entry.
func (s *Section) SetUint32(name string, v uint32) { s.set(name, TypeUint32, v) }

// SetUint16 sets a uint16 entry.
func (s *Section) SetUint16(name string, v uint16) { s.set(name, TypeUint16, v) }

// SetUint8 sets a uint8 entry.
func (s *Section) SetUint8(name string, v uint8) { s.set(name, TypeUint8, v) }

// SetDouble sets a double entry.
func (s *Section) SetDouble(name string, v float64) { s.set(name, TypeDouble, v) }

// SetBool sets a bool entry.
func (s *Section) SetBool(name string, v bool) { s.set(name, TypeBool, v) }

// SetString sets a string entry.
func (s *Section) SetString(name string, v string) {
	s.set(name, TypeString, []byte(v))
}

// SetBlob sets a string entry holding binary data.  The slice is retained.
func (s *Section) SetBlob(name string, v []byte) { s.set(name, TypeString, v) }

// SetSection sets an object entry.
func (s *Section) SetSection(name string, v *Section) {
	s.set(name, TypeObject, v)
}

// SetBlobArray sets an array of string entries.
func (s *Section) SetBlobArray(name string, v [][]byte) {
	vals := make([]any, len(v))
	for i := range v {
		vals[i] = v[i]
	}
	s.set(name, TypeString|TypeArray, vals)
}

// SetSectionArray sets an array of object entries.
func (s *Section) SetSectionArray(name string, v []*Section) {
	vals := make([]any, len(v))
	for i := range v {
		vals[i] = v[i]
	}
	s.set(name, TypeObject|TypeArray, vals)
}

func (s *Section) lookup(f, name string) (entry, error) {
	e, ok := s.entries[name]
	if !ok {
		return e, fmt.Errorf("%s: %w %q", f, errMissingEntry, name)
	}
	return e, nil
}

func typeError(f, name string, typ byte) error {
	str := fmt.Sprintf("entry %q has unexpected type %d", name, typ)
	return messageError(f, str)
}

// Uint64 returns the named integer entry as a uint64.  Any integer type
// holding a non-negative value is accepted.
func (s *Section) Uint64(name string) (uint64, error) {
	return s.unsigned("Section.Uint64", name, math.MaxUint64)
}

// Uint32 returns the named integer entry as a uint32.
func (s *Section) Uint32(name string) (uint32, error) {
	v, err := s.unsigned("Section.Uint32", name, math.MaxUint32)
	return uint32(v), err
}

// Uint8 returns the named integer entry as a uint8.
func (s *Section) Uint8(name string) (uint8, error) {
	v, err := s.unsigned("Section.Uint8", name, math.MaxUint8)
	return uint8(v), err
}

func (s *Section) unsigned(f, name string, max uint64) (uint64, error) {
	e, err := s.lookup(f, name)
	if err != nil {
		return 0, err
	}

	var v uint64
	switch n := e.val.(type) {
	case uint64:
		v = n
	case uint32:
		v = uint64(n)
	case uint16:
		v = uint64(n)
	case uint8:
		v = uint64(n)
	case int64, int32, int16, int8:
		i := asInt64(n)
		if i < 0 {
			str := fmt.Sprintf("entry %q is negative", name)
			return 0, messageError(f, str)
		}
		v = uint64(i)
	default:
		return 0, typeError(f, name, e.typ)
	}
	if v > max {
		str := fmt.Sprintf("entry %q value %d exceeds %d", name, v, max)
		return 0, messageError(f, str)
	}
	return v, nil
}

func asInt64(n any) int64 {
	switch n := n.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int8:
		return int64(n)
	}
	return 0
}

// Int64 returns the named signed integer entry.
func (s *Section) Int64(name string) (int64, error) {
	const f = "Section.Int64"
	e, err := s.lookup(f, name)
	if err != nil {
		return 0, err
	}
	switch n := e.val.(type) {
	case int64, int32, int16, int8:
		return asInt64(n), nil
	}
	return 0, typeError(f, name, e.typ)
}

// Double returns the named double entry.
func (s *Section) Double(name string) (float64, error) {
	const f = "Section.Double"
	e, err := s.lookup(f, name)
	if err != nil {
		return 0, err
	}
	v, ok := e.val.(float64)
	if !ok {
		return 0, typeError(f, name, e.typ)
	}
	return v, nil
}

// Bool returns the named bool entry.
func (s *Section) Bool(name string) (bool, error) {
	const f = "Section.Bool"
	e, err := s.lookup(f, name)
	if err != nil {
		return false, err
	}
	v, ok := e.val.(bool)
	if !ok {
		return false, typeError(f, name, e.typ)
	}
	return v, nil
}

// Blob returns the named string entry.  The returned slice must not be
// modified.
func (s *Section) Blob(name string) ([]byte, error) {
	const f = "Section.Blob"
	e, err := s.lookup(f, name)
	if err != nil {
		return nil, err
	}
	v, ok := e.val.([]byte)
	if !ok {
		return nil, typeError(f, name, e.typ)
	}
	return v, nil
}

// StringValue returns the named string entry as a string.
func (s *Section) StringValue(name string) (string, error) {
	b, err := s.Blob(name)
	return string(b), err
}

// Section returns the named object entry.
func (s *Section) Section(name string) (*Section, error) {
	const f = "Section.Section"
	e, err := s.lookup(f, name)
	if err != nil {
		return nil, err
	}
	v, ok := e.val.(*Section)
	if !ok {
		return nil, typeError(f, name, e.typ)
	}
	return v, nil
}

// BlobArray returns the named array of strings.
func (s *Section) BlobArray(name string) ([][]byte, error) {
	const f = "Section.BlobArray"
	e, err := s.lookup(f, name)
	if err != nil {
		return nil, err
	}
	if e.typ != TypeString|TypeArray {
		return nil, typeError(f, name, e.typ)
	}
	vals := e.val.([]any)
	blobs := make([][]byte, len(vals))
	for i, v := range vals {
		blobs[i] = v.([]byte)
	}
	return blobs, nil
}

// SectionArray returns the named array of objects.
func (s *Section) SectionArray(name string) ([]*Section, error) {
	const f = "Section.SectionArray"
	e, err := s.lookup(f, name)
	if err != nil {
		return nil, err
	}
	if e.typ != TypeObject|TypeArray {
		return nil, typeError(f, name, e.typ)
	}
	vals := e.val.([]any)
	sections := make([]*Section, len(vals))
	for i, v := range vals {
		sections[i] = v.(*Section)
	}
	return sections, nil
}

// IsMissing reports whether err was returned for an absent entry.
func IsMissing(err error) bool {
	return errors.Is(err, errMissingEntry)
}

// Bytes serializes the section as the root of a storage tree.
func (s *Section) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	var hdr [storageHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], StorageSignatureA)
	binary.LittleEndian.PutUint32(hdr[4:8], StorageSignatureB)
	hdr[8] = StorageFormatVersion
	buf.Write(hdr[:])

	if err := writeSection(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseSection decodes a storage tree and returns its root section.
func ParseSection(b []byte) (*Section, error) {
	const f = "ParseSection"

	if len(b) < storageHeaderSize {
		return nil, messageError(f, "storage header is truncated")
	}
	le := binary.LittleEndian
	if le.Uint32(b[0:4]) != StorageSignatureA ||
		le.Uint32(b[4:8]) != StorageSignatureB {

		return nil, messageError(f, "bad storage signature")
	}
	if b[8] != StorageFormatVersion {
		str := fmt.Sprintf("unsupported storage version %d", b[8])
		return nil, messageError(f, str)
	}

	r := &storageReader{b: b[storageHeaderSize:]}
	s, err := r.readSection(0)
	if err != nil {
		return nil, err
	}
	if len(r.b) != 0 {
		str := fmt.Sprintf("%d trailing bytes after storage", len(r.b))
		return nil, messageError(f, str)
	}
	return s, nil
}

// writeStorageVarInt writes v using the two low bits of the first byte to
// give the width of the encoding.
func writeStorageVarInt(buf *bytes.Buffer, v uint64) error {
	le := binary.LittleEndian
	switch {
	case v <= 63:
		buf.WriteByte(byte(v << 2))
	case v <= 16383:
		var b [2]byte
		le.PutUint16(b[:], uint16(v<<2|1))
		buf.Write(b[:])
	case v <= 1073741823:
		var b [4]byte
		le.PutUint32(b[:], uint32(v<<2|2))
		buf.Write(b[:])
	case v <= maxStorageVarInt:
		var b [8]byte
		le.PutUint64(b[:], v<<2|3)
		buf.Write(b[:])
	default:
		str := fmt.Sprintf("value %d is too large for a varint", v)
		return messageError("writeStorageVarInt", str)
	}
	return nil
}

func writeSection(buf *bytes.Buffer, s *Section) error {
	if err := writeStorageVarInt(buf, uint64(len(s.names))); err != nil {
		return err
	}
	for _, name := range s.names {
		if len(name) > maxNameLength {
			str := fmt.Sprintf("entry name %q is too long", name)
			return messageError("writeSection", str)
		}
		buf.WriteByte(byte(len(name)))
		buf.WriteString(name)

		e := s.entries[name]
		buf.WriteByte(e.typ)
		if e.typ&TypeArray == 0 {
			if err := writeValue(buf, e.typ, e.val); err != nil {
				return err
			}
			continue
		}

		vals := e.val.([]any)
		if err := writeStorageVarInt(buf, uint64(len(vals))); err != nil {
			return err
		}
		for _, v := range vals {
			if err := writeValue(buf, e.typ&^TypeArray, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeValue(buf *bytes.Buffer, typ byte, val any) error {
	le := binary.LittleEndian
	var scratch [8]byte
	switch typ {
	case TypeInt64:
		le.PutUint64(scratch[:], uint64(val.(int64)))
		buf.Write(scratch[:8])
	case TypeInt32:
		le.PutUint32(scratch[:], uint32(val.(int32)))
		buf.Write(scratch[:4])
	case TypeInt16:
		le.PutUint16(scratch[:], uint16(val.(int16)))
		buf.Write(scratch[:2])
	case TypeInt8:
		buf.WriteByte(byte(val.(int8)))
	case TypeUint64:
		le.PutUint64(scratch[:], val.(uint64))
		buf.Write(scratch[:8])
	case TypeUint32:
		le.PutUint32(scratch[:], val.(uint32))
		buf.Write(scratch[:4])
	case TypeUint16:
		le.PutUint16(scratch[:], val.(uint16))
		buf.Write(scratch[:2])
	case TypeUint8:
		buf.WriteByte(val.(uint8))
	case TypeDouble:
		le.PutUint64(scratch[:], math.Float64bits(val.(float64)))
		buf.Write(scratch[:8])
	case TypeBool:
		if val.(bool) {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case TypeString:
		b := val.([]byte)
		if err := writeStorageVarInt(buf, uint64(len(b))); err != nil {
			return err
		}
		buf.Write(b)
	case TypeObject:
		return writeSection(buf, val.(*Section))
	default:
		str := fmt.Sprintf("unknown entry type %d", typ)
		return messageError("writeValue", str)
	}
	return nil
}

// storageReader consumes a serialized storage tree.
type storageReader struct {
	b []byte
}

func (r *storageReader) next(f string, n uint64) ([]byte, error) {
	if uint64(len(r.b)) < n {
		return nil, messageError(f, "storage is truncated")
	}
	b := r.b[:n]
	r.b = r.b[n:]
	return b, nil
}

func (r *storageReader) readVarInt() (uint64, error) {
	const f = "readStorageVarInt"

	if len(r.b) == 0 {
		return 0, messageError(f, "storage is truncated")
	}
	size := uint64(1) << (r.b[0] & 0x03)
	b, err := r.next(f, size)
	if err != nil {
		return 0, err
	}

	var v uint64
	for i := int(size) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v >> 2, nil
}

// readCount reads an element count and bounds it by the bytes left, since
// every element takes at least one byte.
func (r *storageReader) readCount(f string) (uint64, error) {
	count, err := r.readVarInt()
	if err != nil {
		return 0, err
	}
	if count > uint64(len(r.b)) {
		str := fmt.Sprintf("count %d exceeds the %d bytes left", count,
			len(r.b))
		return 0, messageError(f, str)
	}
	return count, nil
}

func (r *storageReader) readSection(depth int) (*Section, error) {
	const f = "readSection"

	if depth > maxSectionDepth {
		return nil, messageError(f, "sections are nested too deeply")
	}
	count, err := r.readCount(f)
	if err != nil {
		return nil, err
	}

	s := NewSection()
	for i := uint64(0); i < count; i++ {
		nameLen, err := r.next(f, 1)
		if err != nil {
			return nil, err
		}
		name, err := r.next(f, uint64(nameLen[0]))
		if err != nil {
			return nil, err
		}
		tb, err := r.next(f, 1)
		if err != nil {
			return nil, err
		}
		typ := tb[0]

		if typ&TypeArray == 0 {
			val, err := r.readValue(typ, depth)
			if err != nil {
				return nil, err
			}
			s.set(string(name), typ, val)
			continue
		}

		n, err := r.readCount(f)
		if err != nil {
			return nil, err
		}
		vals := make([]any, 0, n)
		for j := uint64(0); j < n; j++ {
			val, err := r.readValue(typ&^TypeArray, depth)
			if err != nil {
				return nil, err
			}
			vals = append(vals, val)
		}
		s.set(string(name), typ, vals)
	}
	return s, nil
}

func (r *storageReader) readValue(typ byte, depth int) (any, error) {
	const f = "readValue"
	le := binary.LittleEndian

	fixed := func(n uint64) ([]byte, error) { return r.next(f, n) }
	switch typ {
	case TypeInt64, TypeUint64, TypeDouble:
		b, err := fixed(8)
		if err != nil {
			return nil, err
		}
		v := le.Uint64(b)
		switch typ {
		case TypeInt64:
			return int64(v), nil
		case TypeDouble:
			return math.Float64frombits(v), nil
		}
		return v, nil

	case TypeInt32, TypeUint32:
		b, err := fixed(4)
		if err != nil {
			return nil, err
		}
		if typ == TypeInt32 {
			return int32(le.Uint32(b)), nil
		}
		return le.Uint32(b), nil

	case TypeInt16, TypeUint16:
		b, err := fixed(2)
		if err != nil {
			return nil, err
		}
		if typ == TypeInt16 {
			return int16(le.Uint16(b)), nil
		}
		return le.Uint16(b), nil

	case TypeInt8, TypeUint8, TypeBool:
		b, err := fixed(1)
		if err != nil {
			return nil, err
		}
		switch typ {
		case TypeInt8:
			return int8(b[0]), nil
		case TypeBool:
			return b[0] != 0, nil
		}
		return b[0], nil

	case TypeString:
		n, err := r.readVarInt()
		if err != nil {
			return nil, err
		}
		b, err := fixed(n)
		if err != nil {
			return nil, err
		}
		v := make([]byte, len(b))
		copy(v, b)
		return v, nil

	case TypeObject:
		return r.readSection(depth + 1)
	}

	str := fmt.Sprintf("unknown entry type %d", typ)
	return nil, messageError(f, str)
}
