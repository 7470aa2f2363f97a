// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultWordlist   = "wordlist.txt"
	defaultDbType     = "leveldb"
	defaultDebugLevel = "info"
)

var knownDbTypes = []string{"leveldb", "pebbledb"}

// config defines the configuration options for treapdict.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Wordlist   string `short:"w" long:"wordlist" description:"Path of the lowercase wordlist to index"`
	DataDir    string `short:"b" long:"datadir" description:"Persist the digit index in a database under this directory and reuse it on later runs"`
	DbType     string `long:"dbtype" description:"Database backend to use for the persistent index"`
	Prefix     bool   `short:"p" long:"prefix" description:"Also list words whose digit string extends the query"`
	LogFile    string `long:"logfile" description:"Write logs to this file with rotation"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

// validDbType returns whether or not dbType is a supported database type.
func validDbType(dbType string) bool {
	for _, knownType := range knownDbTypes {
		if dbType == knownType {
			return true
		}
	}

	return false
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := btclog.LevelFromString(logLevel)
	return ok
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		Wordlist:   defaultWordlist,
		DbType:     defaultDbType,
		DebugLevel: defaultDebugLevel,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Validate database type.
	if !validDbType(cfg.DbType) {
		str := "%s: the specified database type [%v] is invalid -- " +
			"supported types %v"
		err := fmt.Errorf(str, "loadConfig", cfg.DbType, knownDbTypes)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	// Validate debug log level.
	if !validLogLevel(cfg.DebugLevel) {
		str := "%s: the specified debug level [%v] is invalid"
		err := fmt.Errorf(str, "loadConfig", cfg.DebugLevel)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
