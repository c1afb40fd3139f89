// Copyright (c) 2017 The Decred developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

// FileContents is a string containing the commented example config for
// poolreplay.
const FileContents = `[Application Options]

; ------------------------------------------------------------------------------
; Input settings
; ------------------------------------------------------------------------------

; File holding the replay directives, one per line.  The default is to require
; it on the command line.
; infile=replay.txt


; ------------------------------------------------------------------------------
; Pool settings
; ------------------------------------------------------------------------------

; Order in which pool transactions are considered for mining.  feedensity
; prefers the highest fee per byte and falls back to the arrival time, arrival
; only uses the arrival time.
; priority=feedensity

; Largest serialized transaction accepted by the validator.
; maxtxsize=128000

; Number of rejected transactions the relay remembers so they are not decoded
; again when other peers relay them.
; rejectcache=5000

; Age after which the expire directive drops a transaction from the pool.
; maxage=24h


; ------------------------------------------------------------------------------
; Block template settings
; ------------------------------------------------------------------------------

; Maximum size of the block template in bytes.
; blockmaxsize=100000

; Bytes of each block kept free for the coinbase transaction.
; reservedsize=600

; Smallest absolute fee a transaction must pay to be mined.
; minfee=0


; ------------------------------------------------------------------------------
; Debug
; ------------------------------------------------------------------------------

; Debug logging level.
; Valid levels are {trace, debug, info, warn, error, critical}
; You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set
; log level for individual subsystems.  Use poolreplay --debuglevel=show to
; list available subsystems.
; debuglevel=info

; Directory to log output.  Logs only go to standard output when unset.
; logdir=

; Write the relay metrics in the Prometheus text format to this file once the
; replay is done.
; metricsfile=
`
