// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alloyproject/alloyd/blockchain"
	"github.com/alloyproject/alloyd/internal/log"
	"github.com/alloyproject/alloyd/mempool"
	"github.com/alloyproject/alloyd/mining"
	"github.com/alloyproject/alloyd/txrelay"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "poolreplay.conf"
	defaultLogFilename    = "poolreplay.log"
	defaultLogLevel       = "info"
	defaultPriority       = "feedensity"
	defaultMaxAge         = 24 * time.Hour
)

var (
	// errShowVersion is returned by loadConfig when the version was
	// requested.
	errShowVersion = errors.New("version requested")

	// errShowSampleConfig is returned by loadConfig when the sample
	// configuration was requested.
	errShowSampleConfig = errors.New("sample config requested")
)

// config defines the configuration options for poolreplay.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ConfigFile   string        `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion  bool          `short:"V" long:"version" description:"Display version information and exit"`
	SampleConfig bool          `long:"samplecfg" description:"Display a commented sample configuration file and exit"`
	DebugLevel   string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir       string        `long:"logdir" description:"Directory to log output; logs only go to standard output when empty"`
	InFile       string        `short:"i" long:"infile" description:"File containing the replay directives"`
	BlockMaxSize uint32        `long:"blockmaxsize" description:"Maximum block size in bytes used for the block template"`
	ReservedSize uint32        `long:"reservedsize" description:"Bytes of each block kept free for the coinbase"`
	MinFee       uint64        `long:"minfee" description:"Smallest fee a transaction must pay to be mined"`
	MaxTxSize    int           `long:"maxtxsize" description:"Largest serialized transaction accepted by the validator"`
	Priority     string        `long:"priority" choice:"feedensity" choice:"arrival" description:"Order in which pool transactions are considered for mining"`
	RejectCache  uint          `long:"rejectcache" description:"Number of rejected transactions remembered by the relay"`
	MaxAge       time.Duration `long:"maxage" description:"Age after which the expire directive drops a transaction"`
	MetricsFile  string        `long:"metricsfile" description:"Write the relay metrics in the Prometheus text format to this file"`
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// priorityFunc returns the pool ordering selected by the configuration.
func (cfg *config) priorityFunc() mempool.PriorityFunc {
	if cfg.Priority == "arrival" {
		return mempool.ArrivalPriority
	}
	return mempool.FeeDensityPriority
}

// policy returns the block template policy selected by the configuration.
func (cfg *config) policy() *mining.Policy {
	return &mining.Policy{
		BlockMaxSize: cfg.BlockMaxSize,
		ReservedSize: cfg.ReservedSize,
		MinFee:       cfg.MinFee,
	}
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence over the config file.
func loadConfig(args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile:   defaultConfigFilename,
		DebugLevel:   defaultLogLevel,
		BlockMaxSize: mining.DefaultBlockMaxSize,
		ReservedSize: mining.DefaultReservedSize,
		MaxTxSize:    blockchain.DefaultMaxTxSize,
		Priority:     defaultPriority,
		RejectCache:  txrelay.DefaultRejectCacheSize,
		MaxAge:       defaultMaxAge,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, nil, err
	}
	if preCfg.ShowVersion {
		return nil, nil, errShowVersion
	}
	if preCfg.SampleConfig {
		return nil, nil, errShowSampleConfig
	}

	// Load additional config from file.  A missing file is not an error.
	parser := flags.NewParser(&cfg, flags.Default)
	err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return nil, nil, fmt.Errorf("loadConfig: %w", err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}

	funcName := "loadConfig"

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", log.SupportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", funcName, err)
	}

	// The reserved space must leave room for transactions.
	if cfg.ReservedSize >= cfg.BlockMaxSize {
		str := "%s: the reserved size [%d] must be below the block " +
			"max size [%d]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.ReservedSize,
			cfg.BlockMaxSize)
	}

	if cfg.MaxTxSize <= 0 {
		str := "%s: the max tx size [%d] must be positive"
		return nil, nil, fmt.Errorf(str, funcName, cfg.MaxTxSize)
	}

	if cfg.MaxAge <= 0 {
		str := "%s: the max age [%v] must be positive"
		return nil, nil, fmt.Errorf(str, funcName, cfg.MaxAge)
	}

	// Ensure the specified replay file exists.
	if cfg.InFile == "" {
		return nil, nil, fmt.Errorf("%s: no replay file specified",
			funcName)
	}
	if !fileExists(cfg.InFile) {
		str := "%s: the specified replay file [%v] does not exist"
		return nil, nil, fmt.Errorf(str, funcName, cfg.InFile)
	}

	return &cfg, remainingArgs, nil
}
