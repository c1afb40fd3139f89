// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/alloyproject/alloyd/crypto"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// newKeyTx returns a transaction spending one ring of two outputs and paying
// to a single output.
func newKeyTx() *MsgTx {
	tx := NewMsgTx(TxVersion)
	tx.UnlockTime = 10
	tx.AddTxIn(&KeyInput{
		Amount:        1000,
		OutputIndexes: []uint32{5, 200},
		KeyImage:      crypto.KeyImage{0xaa},
	}, crypto.Signature{0x01}, crypto.Signature{0x02})
	tx.AddTxOut(&TxOut{Amount: 900, Target: KeyOutput{Key: crypto.PublicKey{0xbb}}})
	tx.Extra = AppendExtraPublicKey(nil, crypto.PublicKey{0xcc})
	return tx
}

// TestTxSerializeLayout checks the exact bytes produced for a small
// coinbase transaction.
func TestTxSerializeLayout(t *testing.T) {
	t.Parallel()

	tx := NewMsgTx(TxVersion)
	tx.UnlockTime = 70
	tx.AddTxIn(&BaseInput{BlockIndex: 10})
	tx.AddTxOut(&TxOut{Amount: 300, Target: KeyOutput{Key: crypto.PublicKey{0x11}}})
	tx.Extra = []byte{}

	want := []byte{
		0x01,       // version
		0x46,       // unlock time
		0x01,       // input count
		0xff, 0x0a, // base input, block index
		0x01,       // output count
		0xac, 0x02, // amount
		0x02, // key output tag
	}
	key := crypto.PublicKey{0x11}
	want = append(want, key[:]...)
	want = append(want, 0x00) // extra size

	got, err := tx.Bytes()
	require.NoError(t, err)
	require.Equal(t, want, got, spew.Sdump(got))
	require.Equal(t, len(want), tx.SerializeSize())
	require.Equal(t, len(want), tx.PrefixSerializeSize())
}

// TestTxRoundTrip ensures a transaction decodes back into the same record.
func TestTxRoundTrip(t *testing.T) {
	t.Parallel()

	tx := newKeyTx()
	buf, err := tx.Bytes()
	require.NoError(t, err)
	require.Equal(t, len(buf), tx.SerializeSize())

	var decoded MsgTx
	require.NoError(t, decoded.DeserializeBytes(buf))
	require.Equal(t, tx.Version, decoded.Version)
	require.Equal(t, tx.UnlockTime, decoded.UnlockTime)
	require.Equal(t, tx.TxIn, decoded.TxIn, spew.Sdump(decoded.TxIn))
	require.Equal(t, tx.TxOut, decoded.TxOut)
	require.Equal(t, tx.Extra, decoded.Extra)
	require.Equal(t, tx.Signatures, decoded.Signatures)
	require.Equal(t, tx.TxHash(), decoded.TxHash())
	require.Equal(t, tx.PrefixHash(), decoded.PrefixHash())
	require.NotEqual(t, tx.TxHash(), tx.PrefixHash())
}

// TestTxCopy ensures a copy does not share memory with the original.
func TestTxCopy(t *testing.T) {
	t.Parallel()

	tx := newKeyTx()
	hash := tx.TxHash()
	cp := tx.Copy()
	require.Equal(t, hash, cp.TxHash())

	cp.TxIn[0].(*KeyInput).OutputIndexes[0] = 99
	cp.TxOut[0].Amount = 1
	cp.Extra[0] = 0xff
	cp.Signatures[0][0] = crypto.Signature{0xff}
	require.Equal(t, hash, tx.TxHash(), "original must be untouched")
}

// TestTxDeserializeErrors ensures malformed encodings are reported as
// deserialization errors.
func TestTxDeserializeErrors(t *testing.T) {
	t.Parallel()

	valid, err := newKeyTx().Bytes()
	require.NoError(t, err)

	unknownIn := []byte{0x01, 0x00, 0x01, 0x03, 0x00}
	unknownOut := []byte{0x01, 0x00, 0x00, 0x01, 0x05, 0x03}

	tests := []struct {
		name string
		buf  []byte
		eof  bool
	}{
		{"empty", []byte{}, false},
		{"truncated prefix", valid[:5], true},
		{"truncated signatures", valid[:len(valid)-1], true},
		{"trailing bytes", append(append([]byte{}, valid...), 0x00), false},
		{"unknown input tag", unknownIn, false},
		{"unknown output tag", unknownOut, false},
		{"huge input count", []byte{0x01, 0x00, 0xff, 0xff, 0xff, 0xff, 0x0f}, false},
	}

	for _, test := range tests {
		var tx MsgTx
		err := tx.DeserializeBytes(test.buf)
		require.Error(t, err, test.name)

		var dErr *DeserializationError
		require.ErrorAs(t, err, &dErr, test.name)
		if test.eof {
			require.True(t, errors.Is(err, io.ErrUnexpectedEOF),
				"%s: %v", test.name, err)
		}
	}
}

// TestTxSerializeSignatureMismatch ensures transactions whose signature
// groups disagree with their inputs are not serialized.
func TestTxSerializeSignatureMismatch(t *testing.T) {
	t.Parallel()

	tx := newKeyTx()
	tx.Signatures[0] = tx.Signatures[0][:1]
	var buf bytes.Buffer
	require.Error(t, tx.Serialize(&buf))

	tx.Signatures = nil
	buf.Reset()
	require.Error(t, tx.Serialize(&buf))
}
