// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package log

import (
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

// TestParseAndSetDebugLevels checks the accepted level specifications.  It
// mutates the package loggers so it does not run in parallel.
func TestParseAndSetDebugLevels(t *testing.T) {
	tests := []struct {
		levels string
		valid  bool
		want   map[string]btclog.Level
	}{
		{"debug", true, map[string]btclog.Level{
			"MAIN": btclog.LevelDebug,
			"TXMP": btclog.LevelDebug,
		}},
		{"info,TXMP=trace", true, map[string]btclog.Level{
			"MAIN": btclog.LevelInfo,
			"RELY": btclog.LevelInfo,
			"TXMP": btclog.LevelTrace,
		}},
		{"PEER=warn,RELY=error", true, map[string]btclog.Level{
			"PEER": btclog.LevelWarn,
			"RELY": btclog.LevelError,
		}},
		{"loud", false, nil},
		{"info,NOPE=debug", false, nil},
		{"TXMP=loud", false, nil},
		{"TXMP=debug=trace", false, nil},
		{"info,loud", false, nil},
	}

	for _, test := range tests {
		err := ParseAndSetDebugLevels(test.levels)
		if !test.valid {
			require.Error(t, err, test.levels)
			continue
		}
		require.NoError(t, err, test.levels)
		for subsys, level := range test.want {
			require.Equal(t, level, subsystemLoggers[subsys].Level(),
				"%s: %s", test.levels, subsys)
		}
	}
}

func TestSupportedSubsystems(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"MAIN", "MINR", "PEER", "RELY", "TXMP"},
		SupportedSubsystems())
}

func TestPickNoun(t *testing.T) {
	t.Parallel()

	require.Equal(t, "transaction", PickNoun(1, "transaction", "transactions"))
	require.Equal(t, "transactions", PickNoun(0, "transaction", "transactions"))
}
