// Copyright (c) 2013-2016 The btcsuite developers
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

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// MaxTxSize is the maximum number of bytes a serialized transaction may
	// occupy.  It bounds the element counts read from the wire.
	MaxTxSize = 1024 * 1024

	// TxInTagBase is the tag of an input minting the block reward.
	TxInTagBase = 0xff

	// TxInTagKey is the tag of an input spending earlier outputs.
	TxInTagKey = 0x02

	// TxOutTagKey is the tag of an output paying to a one-time public key.
	TxOutTagKey = 0x02

	// minTxInPayload is the minimum payload size for an input: one tag
	// byte and the one byte block index of a base input.
	minTxInPayload = 2

	// minTxOutPayload is the minimum payload size for an output: one byte
	// amount, one tag byte and the 32 byte key.
	minTxOutPayload = 2 + crypto.KeySize

	// maxTxInPerMessage is the maximum number of inputs a transaction can
	// have without exceeding MaxTxSize.
	maxTxInPerMessage = (MaxTxSize / minTxInPayload) + 1

	// maxTxOutPerMessage is the maximum number of outputs a transaction
	// can have without exceeding MaxTxSize.
	maxTxOutPerMessage = (MaxTxSize / minTxOutPayload) + 1

	// maxOutputIndexes is the maximum number of ring members a key input
	// can reference without exceeding MaxTxSize with its signatures.
	maxOutputIndexes = MaxTxSize / crypto.SignatureSize
)

// TxIn is a transaction input.  The set of implementations is closed: only
// *BaseInput and *KeyInput satisfy it.
type TxIn interface {
	// SerializeSize returns the number of bytes the input occupies,
	// including its tag.
	SerializeSize() int

	// sealed prevents implementations outside of this package.
	sealed()
}

// BaseInput mints the block reward of the block at BlockIndex.
type BaseInput struct {
	BlockIndex uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// input.
func (in *BaseInput) SerializeSize() int {
	return 1 + VarIntSerializeSize(uint64(in.BlockIndex))
}

func (in *BaseInput) sealed() {}

// KeyInput spends one of the outputs referenced by OutputIndexes.  The key
// image identifies the real output without revealing which one it is.
type KeyInput struct {
	Amount        uint64
	OutputIndexes []uint32
	KeyImage      crypto.KeyImage
}

// SerializeSize returns the number of bytes it would take to serialize the
// input.
func (in *KeyInput) SerializeSize() int {
	n := 1 + VarIntSerializeSize(in.Amount) +
		VarIntSerializeSize(uint64(len(in.OutputIndexes))) + crypto.KeySize
	for _, idx := range in.OutputIndexes {
		n += VarIntSerializeSize(uint64(idx))
	}
	return n
}

func (in *KeyInput) sealed() {}

// KeyOutput is the target of an output payable to a one-time public key.
type KeyOutput struct {
	Key crypto.PublicKey
}

// TxOut defines a transaction output.
type TxOut struct {
	Amount uint64
	Target KeyOutput
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return VarIntSerializeSize(t.Amount) + 1 + crypto.KeySize
}

// TxPrefix is the signed part of a transaction.
type TxPrefix struct {
	Version    uint8
	UnlockTime uint64
	TxIn       []TxIn
	TxOut      []*TxOut
	Extra      []byte
}

// MsgTx implements a CryptoNote transaction.  Signatures holds one group of
// ring signature elements per input, in input order.
type MsgTx struct {
	TxPrefix
	Signatures [][]crypto.Signature
}

// NewMsgTx returns a new transaction with the given version and no inputs
// or outputs.
func NewMsgTx(version uint8) *MsgTx {
	return &MsgTx{
		TxPrefix: TxPrefix{
			Version: version,
			TxIn:    make([]TxIn, 0, 1),
			TxOut:   make([]*TxOut, 0, 1),
		},
	}
}

// AddTxIn adds a transaction input along with its signatures.
func (msg *MsgTx) AddTxIn(ti TxIn, sigs ...crypto.Signature) {
	msg.TxIn = append(msg.TxIn, ti)
	msg.Signatures = append(msg.Signatures, sigs)
}

// AddTxOut adds a transaction output.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash generates the identifier of the transaction: the fast hash of its
// full serialization.
func (msg *MsgTx) TxHash() crypto.Hash {
	return crypto.FastHashRaw(msg.Serialize)
}

// PrefixHash generates the hash of the transaction prefix, which is the
// message the ring signatures sign.
func (msg *MsgTx) PrefixHash() crypto.Hash {
	return crypto.FastHashRaw(msg.SerializePrefix)
}

// Copy creates a deep copy of a transaction so that the original does not
// get modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		TxPrefix: TxPrefix{
			Version:    msg.Version,
			UnlockTime: msg.UnlockTime,
			TxIn:       make([]TxIn, 0, len(msg.TxIn)),
			TxOut:      make([]*TxOut, 0, len(msg.TxOut)),
		},
		Signatures: make([][]crypto.Signature, 0, len(msg.Signatures)),
	}

	for _, oldTxIn := range msg.TxIn {
		switch in := oldTxIn.(type) {
		case *BaseInput:
			newIn := *in
			newTx.TxIn = append(newTx.TxIn, &newIn)
		case *KeyInput:
			newIn := KeyInput{
				Amount:   in.Amount,
				KeyImage: in.KeyImage,
			}
			if in.OutputIndexes != nil {
				newIn.OutputIndexes = make([]uint32, len(in.OutputIndexes))
				copy(newIn.OutputIndexes, in.OutputIndexes)
			}
			newTx.TxIn = append(newTx.TxIn, &newIn)
		}
	}

	for _, oldTxOut := range msg.TxOut {
		newOut := *oldTxOut
		newTx.TxOut = append(newTx.TxOut, &newOut)
	}

	if msg.Extra != nil {
		newTx.Extra = make([]byte, len(msg.Extra))
		copy(newTx.Extra, msg.Extra)
	}

	for _, sigs := range msg.Signatures {
		var newSigs []crypto.Signature
		if sigs != nil {
			newSigs = make([]crypto.Signature, len(sigs))
			copy(newSigs, sigs)
		}
		newTx.Signatures = append(newTx.Signatures, newSigs)
	}

	return &newTx
}

// signatureCount returns the number of signature elements the input at the
// given position carries.
func signatureCount(in TxIn) int {
	if ki, ok := in.(*KeyInput); ok {
		return len(ki.OutputIndexes)
	}
	return 0
}

// Deserialize decodes a transaction from r into the receiver.  The whole
// transaction must be available; trailing bytes are not consumed.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	const f = "MsgTx.Deserialize"

	if err := msg.deserializePrefix(r); err != nil {
		return wrapReadError(f, err)
	}

	msg.Signatures = make([][]crypto.Signature, len(msg.TxIn))
	for i, in := range msg.TxIn {
		count := signatureCount(in)
		if count == 0 {
			continue
		}
		sigs := make([]crypto.Signature, count)
		for j := range sigs {
			if _, err := io.ReadFull(r, sigs[j][:]); err != nil {
				if err == io.EOF {
					err = io.ErrUnexpectedEOF
				}
				return wrapReadError(f, err)
			}
		}
		msg.Signatures[i] = sigs
	}

	return nil
}

// DeserializeBytes decodes a transaction from b, which must hold exactly one
// serialized transaction.
func (msg *MsgTx) DeserializeBytes(b []byte) error {
	if len(b) > MaxTxSize {
		str := fmt.Sprintf("transaction of %d bytes exceeds the maximum "+
			"of %d bytes", len(b), MaxTxSize)
		return deserializationError("MsgTx.DeserializeBytes", str)
	}

	r := bytes.NewReader(b)
	if err := msg.Deserialize(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("%d trailing bytes after transaction", r.Len())
		return deserializationError("MsgTx.DeserializeBytes", str)
	}
	return nil
}

func (msg *MsgTx) deserializePrefix(r io.Reader) error {
	const f = "MsgTx.deserializePrefix"

	version, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if version > 0xff {
		str := fmt.Sprintf("transaction version %d overflows 8 bits", version)
		return deserializationError(f, str)
	}
	msg.Version = uint8(version)

	msg.UnlockTime, err = ReadVarInt(r)
	if err != nil {
		return err
	}

	count, err := readCount(r, f, "input transactions", maxTxInPerMessage)
	if err != nil {
		return err
	}
	msg.TxIn = make([]TxIn, 0, count)
	for i := uint64(0); i < count; i++ {
		in, err := readTxIn(r)
		if err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, in)
	}

	count, err = readCount(r, f, "output transactions", maxTxOutPerMessage)
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, 0, count)
	for i := uint64(0); i < count; i++ {
		out, err := readTxOut(r)
		if err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, out)
	}

	extraLen, err := readCount(r, f, "extra bytes", MaxTxSize)
	if err != nil {
		return err
	}
	msg.Extra = make([]byte, extraLen)
	if _, err := io.ReadFull(r, msg.Extra); err != nil {
		if err == io.EOF && extraLen > 0 {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	return nil
}

// readTxIn reads the next tagged input from r.
func readTxIn(r io.Reader) (TxIn, error) {
	const f = "readTxIn"

	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch tag[0] {
	case TxInTagBase:
		index, err := readUint32(r, f, "block index")
		if err != nil {
			return nil, err
		}
		return &BaseInput{BlockIndex: index}, nil

	case TxInTagKey:
		var in KeyInput
		var err error
		in.Amount, err = ReadVarInt(r)
		if err != nil {
			return nil, err
		}
		count, err := readCount(r, f, "output indexes", maxOutputIndexes)
		if err != nil {
			return nil, err
		}
		in.OutputIndexes = make([]uint32, count)
		for i := range in.OutputIndexes {
			in.OutputIndexes[i], err = readUint32(r, f, "output index")
			if err != nil {
				return nil, err
			}
		}
		if _, err := io.ReadFull(r, in.KeyImage[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		return &in, nil
	}

	str := fmt.Sprintf("unknown input tag 0x%02x", tag[0])
	return nil, deserializationError(f, str)
}

// readTxOut reads the next output from r.
func readTxOut(r io.Reader) (*TxOut, error) {
	const f = "readTxOut"

	amount, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if tag[0] != TxOutTagKey {
		str := fmt.Sprintf("unknown output tag 0x%02x", tag[0])
		return nil, deserializationError(f, str)
	}

	out := TxOut{Amount: amount}
	if _, err := io.ReadFull(r, out.Target.Key[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &out, nil
}

// SerializePrefix encodes the transaction prefix to w.
func (msg *MsgTx) SerializePrefix(w io.Writer) error {
	if err := WriteVarInt(w, uint64(msg.Version)); err != nil {
		return err
	}
	if err := WriteVarInt(w, msg.UnlockTime); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteVarInt(w, to.Amount); err != nil {
			return err
		}
		if _, err := w.Write([]byte{TxOutTagKey}); err != nil {
			return err
		}
		if _, err := w.Write(to.Target.Key[:]); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.Extra))); err != nil {
		return err
	}
	_, err := w.Write(msg.Extra)
	return err
}

func writeTxIn(w io.Writer, ti TxIn) error {
	switch in := ti.(type) {
	case *BaseInput:
		if _, err := w.Write([]byte{TxInTagBase}); err != nil {
			return err
		}
		return WriteVarInt(w, uint64(in.BlockIndex))

	case *KeyInput:
		if _, err := w.Write([]byte{TxInTagKey}); err != nil {
			return err
		}
		if err := WriteVarInt(w, in.Amount); err != nil {
			return err
		}
		if err := WriteVarInt(w, uint64(len(in.OutputIndexes))); err != nil {
			return err
		}
		for _, idx := range in.OutputIndexes {
			if err := WriteVarInt(w, uint64(idx)); err != nil {
				return err
			}
		}
		_, err := w.Write(in.KeyImage[:])
		return err
	}

	return fmt.Errorf("unsupported input type %T", ti)
}

// Serialize encodes the transaction to w.  The signature groups must match
// the inputs they belong to.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if err := msg.SerializePrefix(w); err != nil {
		return err
	}

	if len(msg.Signatures) != 0 && len(msg.Signatures) != len(msg.TxIn) {
		return fmt.Errorf("transaction has %d signature groups for %d "+
			"inputs", len(msg.Signatures), len(msg.TxIn))
	}
	for i, sigs := range msg.Signatures {
		if want := signatureCount(msg.TxIn[i]); len(sigs) != want {
			return fmt.Errorf("input %d has %d signatures, want %d", i,
				len(sigs), want)
		}
		for j := range sigs {
			if _, err := w.Write(sigs[j][:]); err != nil {
				return err
			}
		}
	}
	if len(msg.Signatures) == 0 {
		for i, in := range msg.TxIn {
			if signatureCount(in) != 0 {
				return fmt.Errorf("input %d is missing its "+
					"signatures", i)
			}
		}
	}

	return nil
}

// Bytes returns the serialized form of the transaction.
func (msg *MsgTx) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(msg.SerializeSize())
	if err := msg.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PrefixSerializeSize returns the number of bytes it would take to serialize
// the transaction prefix.
func (msg *MsgTx) PrefixSerializeSize() int {
	n := VarIntSerializeSize(uint64(msg.Version)) +
		VarIntSerializeSize(msg.UnlockTime) +
		VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut))) +
		VarIntSerializeSize(uint64(len(msg.Extra))) + len(msg.Extra)

	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	n := msg.PrefixSerializeSize()
	for _, sigs := range msg.Signatures {
		n += len(sigs) * crypto.SignatureSize
	}
	return n
}
