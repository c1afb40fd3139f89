// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cnutil provides CryptoNote-specific convenience types built on the
// wire package.
package cnutil
