// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kvset/treap/writeback"
	"github.com/kvset/treap/writeback/engine"
	"github.com/kvset/treap/writeback/engine/leveldb"
	"github.com/kvset/treap/writeback/engine/pebbledb"
)

const (
	// indexDbNamePrefix is the prefix for the persistent index database.
	indexDbNamePrefix = "index"

	// Exit codes.  Wordlist and query format violations get their own
	// codes so scripts can tell them apart from operational failures.
	exitFailure     = 1
	exitBadWordlist = 2
	exitBadQuery    = 3
)

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// indexDbPath returns the path of the index database for the configured
// backend under the data directory.
func indexDbPath(cfg *config) string {
	return filepath.Join(cfg.DataDir, indexDbNamePrefix+"_"+cfg.DbType)
}

// openIndexStore opens the persistent digit index under cfg.DataDir and
// returns a store for it along with whether the caller must ingest the
// wordlist into it.  The database is created when it does not exist yet.
func openIndexStore(cfg *config) (*writeback.Store, bool, error) {
	dbPath := indexDbPath(cfg)

	exists := fileExists(dbPath)
	if !exists {
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, false, err
		}
	}

	log.Infof("Loading index database from '%s'", dbPath)
	var eng engine.Engine
	var err error
	switch cfg.DbType {
	case "pebbledb":
		eng, err = pebbledb.NewDB(dbPath, !exists, 0, 0)
	default:
		eng, err = leveldb.NewDB(dbPath, !exists)
	}
	if err != nil {
		return nil, false, err
	}
	return writeback.New(eng, 0, 0), !exists, nil
}

// indexKey builds the persistent index key for word: the digit string, a
// zero byte separator, then the word itself.  The separator sorts below
// every digit, so the byte order of keys matches the (digits, word) order
// of the in-memory index.
func indexKey(word string) []byte {
	digits := digitString(word)
	key := make([]byte, 0, len(digits)+1+len(word))
	key = append(key, digits...)
	key = append(key, 0)
	key = append(key, word...)
	return key
}

// lookupStore returns the words spelled by typing query from the persistent
// index.  An exact query scans the keys under digits plus the separator
// while an extensions query scans the bare digit prefix, which also covers
// every longer digit string.
func lookupStore(snap *writeback.Snapshot, query string, extensions bool) []string {
	prefix := []byte(query)
	if !extensions {
		prefix = append(prefix, 0)
	}

	var words []string
	iter := snap.NewIterator(engine.BytesPrefix(prefix))
	for ok := iter.First(); ok; ok = iter.Next() {
		words = append(words, string(iter.Value()))
	}
	iter.Release()
	return words
}

// ingestWordlist streams the wordlist at path through add and returns an
// exit code, zero on success.  Every line must be a nonempty lowercase
// word.
func ingestWordlist(path string, add func(word string) error) int {
	fi, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open wordlist: %v\n", err)
		return exitFailure
	}
	defer fi.Close()

	numWords := 0
	scanner := bufio.NewScanner(fi)
	for scanner.Scan() {
		word := scanner.Text()
		if !isLowerWord(word) {
			fmt.Fprintf(os.Stderr, "wordlist %s: lines must be nonempty "+
				"lowercase words, got %q\n", path, word)
			return exitBadWordlist
		}
		if err := add(word); err != nil {
			fmt.Fprintf(os.Stderr, "failed to index word %q: %v\n", word, err)
			return exitFailure
		}
		numWords++
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read wordlist: %v\n", err)
		return exitFailure
	}

	log.Infof("Indexed %d %s from %s", numWords,
		pickNoun(numWords, "word", "words"), path)
	return 0
}

// realMain is the real main function for the utility.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() int {
	cfg, _, err := loadConfig()
	if err != nil {
		return exitFailure
	}

	// Setup logging.
	defer os.Stdout.Sync()
	if cfg.LogFile != "" {
		initLogRotator(cfg.LogFile)
		defer logRotator.Close()
	}
	setLogLevels(cfg.DebugLevel)

	// Serve lookups either from a persistent index database or from an
	// in-memory index built for this run only.
	var lookup func(query string, extensions bool) []string
	if cfg.DataDir != "" {
		store, ingest, err := openIndexStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open index database: %v\n", err)
			return exitFailure
		}

		if ingest {
			code := ingestWordlist(cfg.Wordlist, func(word string) error {
				return store.Put(indexKey(word), []byte(word))
			})
			if code == 0 {
				if err := store.Flush(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to flush index: %v\n", err)
					code = exitFailure
				}
			}
			if code != 0 {
				// Drop the partial database so a later run rebuilds
				// the index instead of reusing an incomplete one.
				store.Close()
				os.RemoveAll(indexDbPath(cfg))
				return code
			}
		} else {
			log.Info("Reusing existing index, wordlist not read")
		}
		defer store.Close()

		snap, err := store.Snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to snapshot index: %v\n", err)
			return exitFailure
		}
		defer snap.Release()
		lookup = func(query string, extensions bool) []string {
			return lookupStore(snap, query, extensions)
		}
	} else {
		dict := newDictionary()
		code := ingestWordlist(cfg.Wordlist, func(word string) error {
			dict.addWord(word)
			return nil
		})
		if code != 0 {
			return code
		}
		lookup = dict.lookup
	}

	// Answer digit queries from stdin, one per line.
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := scanner.Text()
		if !isDigitQuery(query) {
			fmt.Fprintf(os.Stderr, "queries must be nonempty digit "+
				"strings, got %q\n", query)
			return exitBadQuery
		}

		var sb strings.Builder
		sb.WriteString(query)
		sb.WriteByte(':')
		for _, word := range lookup(query, cfg.Prefix) {
			sb.WriteByte(' ')
			sb.WriteString(word)
		}
		fmt.Println(sb.String())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read queries: %v\n", err)
		return exitFailure
	}

	return 0
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Work around defer not working after os.Exit()
	os.Exit(realMain())
}
