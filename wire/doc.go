// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the CryptoNote binary transaction format.

A transaction is made of a prefix, which carries the inputs, outputs and the
free form extra field, followed by one group of ring signature elements per
input.  Integers are encoded as unsigned little endian base 128 varints and
the input and output kinds are distinguished by a one byte tag.

Input kinds form a closed set: a TxIn is either a *BaseInput, which mints the
block reward, or a *KeyInput, which spends earlier outputs and publishes the
key image identifying what it spends.  Any other tag read from the wire is
reported as a DeserializationError, so data decoded by this package never
carries an unknown input kind.

The extra field is parsed by ParseExtra, which understands the padding,
public key, nonce and merge mining tags.  Payment identifiers live inside the
nonce and are extracted with PaymentIDFromExtra.
*/
package wire
