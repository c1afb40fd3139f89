// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alloyproject/alloyd/crypto"
)

// Tags of the fields found in the extra part of a transaction prefix.
const (
	TxExtraTagPadding     = 0x00
	TxExtraTagPubKey      = 0x01
	TxExtraTagNonce       = 0x02
	TxExtraTagMergeMining = 0x03

	// TxExtraNoncePaymentID is the first byte of a nonce carrying a
	// payment identifier.
	TxExtraNoncePaymentID = 0x00

	// TxExtraPaddingMaxCount is the maximum number of padding bytes.
	TxExtraPaddingMaxCount = 255

	// TxExtraNonceMaxCount is the maximum size of a nonce.
	TxExtraNonceMaxCount = 255
)

// ExtraField is one parsed field of the transaction extra.
type ExtraField interface {
	extraTag() byte
}

// ExtraPadding is a run of zero bytes terminating the extra.
type ExtraPadding struct {
	Size int
}

func (ExtraPadding) extraTag() byte { return TxExtraTagPadding }

// ExtraPublicKey carries the transaction public key.
type ExtraPublicKey struct {
	Key crypto.PublicKey
}

func (ExtraPublicKey) extraTag() byte { return TxExtraTagPubKey }

// ExtraNonce carries arbitrary data, most notably payment identifiers.
type ExtraNonce struct {
	Nonce []byte
}

func (ExtraNonce) extraTag() byte { return TxExtraTagNonce }

// ExtraMergeMiningTag commits to a merge mined block.
type ExtraMergeMiningTag struct {
	Depth      uint64
	MerkleRoot crypto.Hash
}

func (ExtraMergeMiningTag) extraTag() byte { return TxExtraTagMergeMining }

// ParseExtra splits the extra part of a transaction prefix into its fields.
// Parsing stops with an error at the first malformed or unknown field.
func ParseExtra(extra []byte) ([]ExtraField, error) {
	const f = "ParseExtra"

	var fields []ExtraField
	r := bytes.NewReader(extra)
	for r.Len() > 0 {
		tag, _ := r.ReadByte()
		switch tag {
		case TxExtraTagPadding:
			// Padding runs to the end and must be all zeros.
			size := 1 + r.Len()
			if size > TxExtraPaddingMaxCount {
				return fields, deserializationError(f,
					"padding is too long")
			}
			for r.Len() > 0 {
				if b, _ := r.ReadByte(); b != 0 {
					return fields, deserializationError(f,
						"non-zero byte in padding")
				}
			}
			fields = append(fields, ExtraPadding{Size: size})

		case TxExtraTagPubKey:
			var field ExtraPublicKey
			if _, err := io.ReadFull(r, field.Key[:]); err != nil {
				return fields, wrapReadError(f, err)
			}
			fields = append(fields, field)

		case TxExtraTagNonce:
			size, err := r.ReadByte()
			if err != nil {
				return fields, wrapReadError(f, err)
			}
			nonce := make([]byte, size)
			if _, err := io.ReadFull(r, nonce); err != nil {
				return fields, wrapReadError(f, err)
			}
			fields = append(fields, ExtraNonce{Nonce: nonce})

		case TxExtraTagMergeMining:
			size, err := readCount(r, f, "merge mining bytes",
				uint64(r.Len()))
			if err != nil {
				return fields, wrapReadError(f, err)
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return fields, wrapReadError(f, err)
			}
			field, err := parseMergeMiningTag(data)
			if err != nil {
				return fields, err
			}
			fields = append(fields, field)

		default:
			str := fmt.Sprintf("unknown extra tag 0x%02x", tag)
			return fields, deserializationError(f, str)
		}
	}

	return fields, nil
}

func parseMergeMiningTag(data []byte) (ExtraMergeMiningTag, error) {
	const f = "parseMergeMiningTag"

	var field ExtraMergeMiningTag
	r := bytes.NewReader(data)
	depth, err := ReadVarInt(r)
	if err != nil {
		return field, wrapReadError(f, err)
	}
	field.Depth = depth
	if _, err := io.ReadFull(r, field.MerkleRoot[:]); err != nil {
		return field, wrapReadError(f, err)
	}
	if r.Len() != 0 {
		return field, deserializationError(f, "trailing bytes in tag")
	}
	return field, nil
}

// PaymentIDFromExtra returns the payment identifier carried by the nonce of
// a transaction extra.  The second return value is false when the extra has
// no payment identifier or cannot be parsed.
func PaymentIDFromExtra(extra []byte) (crypto.Hash, bool) {
	var id crypto.Hash

	fields, err := ParseExtra(extra)
	if err != nil {
		return id, false
	}
	for _, field := range fields {
		nonce, ok := field.(ExtraNonce)
		if !ok {
			continue
		}
		if len(nonce.Nonce) != 1+crypto.HashSize ||
			nonce.Nonce[0] != TxExtraNoncePaymentID {

			return id, false
		}
		copy(id[:], nonce.Nonce[1:])
		return id, true
	}

	return id, false
}

// AppendExtraPublicKey appends a public key field to extra.
func AppendExtraPublicKey(extra []byte, key crypto.PublicKey) []byte {
	extra = append(extra, TxExtraTagPubKey)
	return append(extra, key[:]...)
}

// AppendExtraNonce appends a nonce field to extra.  Nonces longer than
// TxExtraNonceMaxCount are rejected.
func AppendExtraNonce(extra []byte, nonce []byte) ([]byte, error) {
	if len(nonce) > TxExtraNonceMaxCount {
		return nil, fmt.Errorf("nonce of %d bytes exceeds the maximum of "+
			"%d bytes", len(nonce), TxExtraNonceMaxCount)
	}
	extra = append(extra, TxExtraTagNonce, byte(len(nonce)))
	return append(extra, nonce...), nil
}

// PaymentIDNonce returns the nonce that carries the given payment
// identifier.
func PaymentIDNonce(id crypto.Hash) []byte {
	nonce := make([]byte, 0, 1+crypto.HashSize)
	nonce = append(nonce, TxExtraNoncePaymentID)
	return append(nonce, id[:]...)
}

// AppendExtraMergeMiningTag appends a merge mining tag field to extra.
func AppendExtraMergeMiningTag(extra []byte, tag ExtraMergeMiningTag) []byte {
	var buf [MaxVarIntPayload]byte
	n := putVarInt(buf[:], tag.Depth)
	size := n + crypto.HashSize

	var sizeBuf [MaxVarIntPayload]byte
	m := putVarInt(sizeBuf[:], uint64(size))

	extra = append(extra, TxExtraTagMergeMining)
	extra = append(extra, sizeBuf[:m]...)
	extra = append(extra, buf[:n]...)
	return append(extra, tag.MerkleRoot[:]...)
}
