// Copyright (c) 2017 The Decred developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package sampleconfig provides a single constant that contains the contents of
the sample configuration file for poolreplay.  Every option is commented out
with its default value so the file can be used as a starting point.
*/
package sampleconfig
