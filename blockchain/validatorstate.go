// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sort"

	"github.com/alloyproject/alloyd/cnutil"
	"github.com/alloyproject/alloyd/crypto"
	"github.com/alloyproject/alloyd/wire"
)

// ValidatorState is the set of key images claimed by a group of
// transactions.  It serves both as the delta a single transaction would add
// and as the aggregate claimed by every transaction in a pool.
//
// The zero value is an empty state ready to use.  A ValidatorState is not
// safe for concurrent mutation.
type ValidatorState struct {
	spentKeyImages map[crypto.KeyImage]struct{}
}

// NewValidatorState returns a state claiming the given key images.
func NewValidatorState(images ...crypto.KeyImage) *ValidatorState {
	s := &ValidatorState{
		spentKeyImages: make(map[crypto.KeyImage]struct{}, len(images)),
	}
	for _, image := range images {
		s.spentKeyImages[image] = struct{}{}
	}
	return s
}

// Add claims a key image.  It returns false when the image was already
// claimed.
func (s *ValidatorState) Add(image crypto.KeyImage) bool {
	if _, ok := s.spentKeyImages[image]; ok {
		return false
	}
	if s.spentKeyImages == nil {
		s.spentKeyImages = make(map[crypto.KeyImage]struct{})
	}
	s.spentKeyImages[image] = struct{}{}
	return true
}

// HasKeyImage returns whether the key image is claimed.
func (s *ValidatorState) HasKeyImage(image crypto.KeyImage) bool {
	_, ok := s.spentKeyImages[image]
	return ok
}

// Len returns the number of claimed key images.
func (s *ValidatorState) Len() int {
	return len(s.spentKeyImages)
}

// Merge adds every claim of other to s.
func (s *ValidatorState) Merge(other *ValidatorState) {
	if other == nil || len(other.spentKeyImages) == 0 {
		return
	}
	if s.spentKeyImages == nil {
		s.spentKeyImages = make(map[crypto.KeyImage]struct{},
			len(other.spentKeyImages))
	}
	for image := range other.spentKeyImages {
		s.spentKeyImages[image] = struct{}{}
	}
}

// Exclude removes every claim of other from s.
func (s *ValidatorState) Exclude(other *ValidatorState) {
	if other == nil {
		return
	}
	for image := range other.spentKeyImages {
		delete(s.spentKeyImages, image)
	}
}

// Intersects returns whether any key image is claimed by both states.  This
// is the double spend test.
func (s *ValidatorState) Intersects(other *ValidatorState) bool {
	if other == nil {
		return false
	}
	small, large := s.spentKeyImages, other.spentKeyImages
	if len(small) > len(large) {
		small, large = large, small
	}
	for image := range small {
		if _, ok := large[image]; ok {
			return true
		}
	}
	return false
}

// Equal returns whether both states claim exactly the same key images.
func (s *ValidatorState) Equal(other *ValidatorState) bool {
	if other == nil {
		return s.Len() == 0
	}
	if len(s.spentKeyImages) != len(other.spentKeyImages) {
		return false
	}
	for image := range s.spentKeyImages {
		if _, ok := other.spentKeyImages[image]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the state.
func (s *ValidatorState) Clone() *ValidatorState {
	c := &ValidatorState{
		spentKeyImages: make(map[crypto.KeyImage]struct{},
			len(s.spentKeyImages)),
	}
	for image := range s.spentKeyImages {
		c.spentKeyImages[image] = struct{}{}
	}
	return c
}

// KeyImages returns the claimed key images in ascending byte order.
func (s *ValidatorState) KeyImages() []crypto.KeyImage {
	images := make([]crypto.KeyImage, 0, len(s.spentKeyImages))
	for image := range s.spentKeyImages {
		images = append(images, image)
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].Less(&images[j])
	})
	return images
}

// String returns the number of claims, for log output.
func (s *ValidatorState) String() string {
	return fmt.Sprintf("%d key images", s.Len())
}

// ExtractValidatorState returns the key images the transaction claims.
// Base inputs claim nothing.  A transaction using the same key image twice
// is rejected with ErrDuplicateKeyImage.
func ExtractValidatorState(tx *cnutil.CachedTransaction) (*ValidatorState, error) {
	msgTx := tx.MsgTx()
	state := &ValidatorState{
		spentKeyImages: make(map[crypto.KeyImage]struct{}, len(msgTx.TxIn)),
	}
	for _, txIn := range msgTx.TxIn {
		in, ok := txIn.(*wire.KeyInput)
		if !ok {
			continue
		}
		if !state.Add(in.KeyImage) {
			str := fmt.Sprintf("transaction %v uses key image %v "+
				"more than once", tx.Hash(), in.KeyImage)
			return nil, ruleError(ErrDuplicateKeyImage, str)
		}
	}
	return state, nil
}
