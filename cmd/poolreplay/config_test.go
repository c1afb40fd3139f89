// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alloyproject/alloyd/mempool"
	"github.com/alloyproject/alloyd/mining"
	"github.com/alloyproject/alloyd/sampleconfig"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file holding contents in dir and returns its path.
func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

// TestLoadConfig checks defaults, config file loading and command line
// precedence.  Loading the config sets the global log levels, so the test
// does not run in parallel.
func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	inFile := writeFile(t, dir, "replay.txt", "")
	confFile := writeFile(t, dir, "poolreplay.conf",
		"[Application Options]\npriority=arrival\nminfee=7\nblockmaxsize=5000\n")

	cfg, _, err := loadConfig([]string{"--configfile=" + filepath.Join(dir,
		"missing.conf"), "-i", inFile})
	require.NoError(t, err)
	require.Equal(t, uint32(mining.DefaultBlockMaxSize), cfg.BlockMaxSize)
	require.Equal(t, defaultPriority, cfg.Priority)
	require.Equal(t, defaultMaxAge, cfg.MaxAge)

	cfg, _, err = loadConfig([]string{"-C", confFile, "-i", inFile,
		"--blockmaxsize=9000", "--maxage=90m"})
	require.NoError(t, err)
	require.Equal(t, "arrival", cfg.Priority)
	require.Equal(t, uint64(7), cfg.MinFee)
	require.Equal(t, uint32(9000), cfg.BlockMaxSize)
	require.Equal(t, 90*time.Minute, cfg.MaxAge)
	require.Equal(t, &mining.Policy{
		BlockMaxSize: 9000,
		ReservedSize: mining.DefaultReservedSize,
		MinFee:       7,
	}, cfg.policy())

	// The selected priority mines earlier arrivals first
	// regardless of their fee.
	early := &mempool.TxDesc{TxDesc: mining.TxDesc{Added: time.Unix(1, 0), Fee: 1, Size: 100}}
	late := &mempool.TxDesc{TxDesc: mining.TxDesc{Added: time.Unix(2, 0), Fee: 900, Size: 100}}
	require.Positive(t, cfg.priorityFunc()(early, late))
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	inFile := writeFile(t, dir, "replay.txt", "")
	missing := filepath.Join(dir, "missing.conf")
	badConf := writeFile(t, dir, "bad.conf",
		"[Application Options]\nnosuchoption=1\n")

	tests := []struct {
		name string
		args []string
	}{
		{"bad priority", []string{"-i", inFile, "--priority=bogus"}},
		{"bad debug level", []string{"-i", inFile, "-d", "loud"}},
		{"bad subsystem", []string{"-i", inFile, "-d", "NOPE=info"}},
		{"reserved too big", []string{"-i", inFile, "--blockmaxsize=600",
			"--reservedsize=600"}},
		{"bad tx size", []string{"-i", inFile, "--maxtxsize=0"}},
		{"bad max age", []string{"-i", inFile, "--maxage=0s"}},
		{"no replay file", nil},
		{"missing replay file", []string{"-i", filepath.Join(dir, "nope")}},
		{"bad config file", []string{"-C", badConf, "-i", inFile}},
	}

	for _, test := range tests {
		args := append([]string{"-C", missing}, test.args...)
		_, _, err := loadConfig(args)
		require.Error(t, err, test.name)
	}

	_, _, err := loadConfig([]string{"-C", missing, "-V"})
	require.True(t, errors.Is(err, errShowVersion), "got %v", err)

	_, _, err = loadConfig([]string{"-C", missing, "--samplecfg"})
	require.True(t, errors.Is(err, errShowSampleConfig), "got %v", err)
}

// TestSampleConfig ensures the sample configuration loads and leaves every
// default in place.
func TestSampleConfig(t *testing.T) {
	dir := t.TempDir()
	inFile := writeFile(t, dir, "replay.txt", "")
	confFile := writeFile(t, dir, "sample.conf", sampleconfig.FileContents)

	fromSample, _, err := loadConfig([]string{"-C", confFile, "-i", inFile})
	require.NoError(t, err)

	missing := filepath.Join(dir, "missing.conf")
	defaults, _, err := loadConfig([]string{"-C", missing, "-i", inFile})
	require.NoError(t, err)

	fromSample.ConfigFile = defaults.ConfigFile
	require.Equal(t, defaults, fromSample)
}
