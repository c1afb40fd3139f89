// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alloyproject/alloyd/blockchain"
	"github.com/alloyproject/alloyd/internal/log"
	"github.com/alloyproject/alloyd/internal/version"
	"github.com/alloyproject/alloyd/mempool"
	"github.com/alloyproject/alloyd/mining"
	"github.com/alloyproject/alloyd/sampleconfig"
	"github.com/alloyproject/alloyd/txrelay"
	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
)

// replayEpoch is the initial time of the replay clock.
var replayEpoch = time.Unix(1500000000, 0)

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	// Setup logging.
	if cfg.LogDir != "" {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := log.InitLogRotator(logFile); err != nil {
			return err
		}
		defer log.LogRotator.Close()
	}
	mainLog := log.MainLog

	clock := &replayClock{now: replayEpoch}
	pool := mempool.New(&mempool.Config{
		Priority: cfg.priorityFunc(),
		Now:      clock.Now,
	})
	validator := blockchain.NewValidator(&blockchain.ValidatorConfig{
		MaxTxSize: cfg.MaxTxSize,
	})
	registry := prometheus.NewRegistry()
	relay, err := txrelay.New(&txrelay.Config{
		Pool:            pool,
		Validator:       validator,
		RejectCacheSize: cfg.RejectCache,
		Registerer:      registry,
	})
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.InFile)
	if err != nil {
		return err
	}
	defer f.Close()

	r := &replayer{clock: clock, relay: relay, maxAge: cfg.MaxAge}
	if err := r.run(f); err != nil {
		return fmt.Errorf("%s: %w", cfg.InFile, err)
	}
	mainLog.Infof("Replayed %d transactions: %d accepted, %d mined, "+
		"%d expired, %d left in the pool", r.stats.Relayed,
		r.stats.Accepted, r.stats.Mined, r.stats.Expired, pool.Count())
	log.TxmpLog.Debugf("Pool key images: %v", pool.ValidatorState())

	template, err := mining.NewBlockTemplate(cfg.policy(), pool)
	if err != nil {
		return err
	}
	writeTemplate(os.Stdout, template)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := realMain(); err != nil {
		if errors.Is(err, errShowVersion) {
			fmt.Println(version.Full("poolreplay"))
			os.Exit(0)
		}
		if errors.Is(err, errShowSampleConfig) {
			fmt.Print(sampleconfig.FileContents)
			os.Exit(0)
		}
		var fErr *flags.Error
		if errors.As(err, &fErr) && fErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
