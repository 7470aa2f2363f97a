// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package writeback

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/decred/dcrd/lru"

	"github.com/kvset/treap"
	"github.com/kvset/treap/writeback/engine"
)

const (
	// defaultMaxStaged is the default number of staged bytes that forces
	// a flush to the engine.
	defaultMaxStaged = 100 * 1024 * 1024 // 100 MiB

	// defaultFlushInterval is the default amount of time allowed to pass
	// between flushes before one is forced regardless of the staged
	// size.
	defaultFlushInterval = 5 * time.Minute

	// defaultMissCacheSize is the default number of recently confirmed
	// absent keys remembered to short-circuit repeated lookups.
	defaultMissCacheSize = 4096
)

// ErrKeyNotFound is returned when a requested key is neither staged nor
// present in the engine.
var ErrKeyNotFound = errors.New("writeback: key not found")

// entry is a staged key/value pair.  Entries are ordered bytewise by key
// alone, so an entry with the right key and any value serves as a lookup
// probe.
type entry struct {
	key   []byte
	value []byte
}

// compareEntries orders staged entries bytewise by key.
func compareEntries(a, b entry) int {
	return bytes.Compare(a.key, b.key)
}

// copyBytes returns a copy of the passed slice.
func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Store is a write-back layer in front of a storage engine.  Mutations are
// staged in ordered in-memory sets and written to the engine in a single
// transaction once the staged bytes exceed the configured maximum or the
// flush interval elapses, whichever happens first.  Readers always observe
// the staged state layered over the engine.
//
// Store is safe for concurrent use.  Staged state is guarded by an
// internal lock and engine snapshots provide stable read views.
type Store struct {
	engine engine.Engine

	// maxStaged and flushInterval are the flush thresholds and lastFlush
	// is the time the staged state last reached the engine.  They are
	// guarded by mtx since flushing happens inside mutating calls.
	maxStaged     uint64
	flushInterval time.Duration
	lastFlush     time.Time

	// mtx guards the staging sets and the byte accounting.  stagedPuts
	// holds pairs waiting to be written and stagedDels holds keys
	// waiting to be deleted; a key is never in both.
	mtx         sync.RWMutex
	stagedPuts  *treap.Set[entry]
	stagedDels  *treap.Set[[]byte]
	stagedBytes uint64

	// missCache remembers keys recently confirmed absent from the engine
	// so repeated lookups skip the snapshot round trip.  It has its own
	// internal locking.
	missCache lru.Cache
}

// New returns a store layered over eng.  maxStaged bounds the bytes staged
// in memory before a flush and flushInterval bounds the time between
// flushes.  Zero values select the defaults.
func New(eng engine.Engine, maxStaged uint64, flushInterval time.Duration) *Store {
	if maxStaged == 0 {
		maxStaged = defaultMaxStaged
	}
	if flushInterval == 0 {
		flushInterval = defaultFlushInterval
	}
	return &Store{
		engine:        eng,
		maxStaged:     maxStaged,
		flushInterval: flushInterval,
		lastFlush:     time.Now(),
		stagedPuts:    treap.NewFunc(compareEntries),
		stagedDels:    treap.NewFunc[[]byte](bytes.Compare),
		missCache:     lru.NewCache(defaultMissCacheSize),
	}
}

// Put stages key/value for write to the engine, replacing any staged value
// and superseding any staged delete for the same key.  Both slices are
// copied, so the caller may reuse them.  The returned error is from the
// flush this put may have triggered.
func (s *Store) Put(key, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	e := entry{key: copyBytes(key), value: copyBytes(value)}

	if s.stagedDels.Erase(e.key) {
		s.stagedBytes -= uint64(len(e.key))
	}
	if it := s.stagedPuts.Find(e); it.Valid() {
		old := it.Item()
		s.stagedBytes -= uint64(len(old.key) + len(old.value))
		s.stagedPuts.EraseAt(it)
	}
	s.stagedPuts.Insert(e)
	s.stagedBytes += uint64(len(e.key) + len(e.value))

	// The key exists again as far as readers are concerned.
	s.missCache.Delete(string(key))

	return s.maybeFlush()
}

// Delete stages removal of key from the engine, dropping any staged value
// for it.  Deleting an absent key is a no-op by the time the staged state
// reaches the engine.  The returned error is from the flush this delete
// may have triggered.
func (s *Store) Delete(key []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	k := copyBytes(key)
	if it := s.stagedPuts.Find(entry{key: k}); it.Valid() {
		old := it.Item()
		s.stagedBytes -= uint64(len(old.key) + len(old.value))
		s.stagedPuts.EraseAt(it)
	}
	if _, ok := s.stagedDels.Insert(k); ok {
		s.stagedBytes += uint64(len(k))
	}

	return s.maybeFlush()
}

// Get returns the value for key with the staged state taking precedence
// over the engine.  It returns ErrKeyNotFound when the key is absent.  The
// returned slice is the caller's to keep.
func (s *Store) Get(key []byte) ([]byte, error) {
	s.mtx.RLock()
	if s.stagedDels.Contains(key) {
		s.mtx.RUnlock()
		return nil, ErrKeyNotFound
	}
	if it := s.stagedPuts.Find(entry{key: key}); it.Valid() {
		value := copyBytes(it.Item().value)
		s.mtx.RUnlock()
		return value, nil
	}
	s.mtx.RUnlock()

	// A remembered miss skips the engine round trip.
	if s.missCache.Contains(string(key)) {
		return nil, ErrKeyNotFound
	}

	snap, err := s.engine.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	has, err := snap.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		s.missCache.Add(string(key))
		return nil, ErrKeyNotFound
	}
	return snap.Get(key)
}

// Has reports whether key exists, with the staged state taking precedence
// over the engine.
func (s *Store) Has(key []byte) (bool, error) {
	s.mtx.RLock()
	if s.stagedDels.Contains(key) {
		s.mtx.RUnlock()
		return false, nil
	}
	if s.stagedPuts.Contains(entry{key: key}) {
		s.mtx.RUnlock()
		return true, nil
	}
	s.mtx.RUnlock()

	if s.missCache.Contains(string(key)) {
		return false, nil
	}

	snap, err := s.engine.Snapshot()
	if err != nil {
		return false, err
	}
	defer snap.Release()

	has, err := snap.Has(key)
	if err != nil {
		return false, err
	}
	if !has {
		s.missCache.Add(string(key))
	}
	return has, nil
}

// Snapshot returns a point-in-time view pairing an engine snapshot with
// clones of the staging sets, so mutations of the store after this call do
// not leak into the view.  The snapshot must be released after use.
func (s *Store) Snapshot() (*Snapshot, error) {
	engSnap, err := s.engine.Snapshot()
	if err != nil {
		return nil, err
	}

	s.mtx.RLock()
	snap := &Snapshot{
		eng:        engSnap,
		stagedPuts: s.stagedPuts.Clone(),
		stagedDels: s.stagedDels.Clone(),
	}
	s.mtx.RUnlock()
	return snap, nil
}

// needsFlush returns whether the staged state should be written to the
// engine based on its size and the time since the last flush.
//
// This function MUST be called with mtx held.
func (s *Store) needsFlush() bool {
	if s.stagedBytes == 0 {
		return false
	}
	if time.Since(s.lastFlush) > s.flushInterval {
		return true
	}
	return s.stagedBytes > s.maxStaged
}

// maybeFlush flushes the staged state when a threshold has been crossed.
//
// This function MUST be called with mtx held.
func (s *Store) maybeFlush() error {
	if !s.needsFlush() {
		return nil
	}
	return s.flush()
}

// flush writes every staged mutation to the engine in one transaction and
// resets the staging sets.
//
// This function MUST be called with mtx held.
func (s *Store) flush() error {
	s.lastFlush = time.Now()
	if s.stagedPuts.Empty() && s.stagedDels.Empty() {
		return nil
	}
	numPuts, numDels := s.stagedPuts.Len(), s.stagedDels.Len()

	tx, err := s.engine.Transaction()
	if err != nil {
		return err
	}
	for e := range s.stagedPuts.All() {
		if err := tx.Put(e.key, e.value); err != nil {
			tx.Discard()
			return err
		}
	}
	for key := range s.stagedDels.All() {
		if err := tx.Delete(key); err != nil {
			tx.Discard()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		tx.Discard()
		return err
	}

	s.stagedPuts = treap.NewFunc(compareEntries)
	s.stagedDels = treap.NewFunc[[]byte](bytes.Compare)
	s.stagedBytes = 0

	log.Debugf("Flushed %d put(s) and %d delete(s) to the engine",
		numPuts, numDels)
	return nil
}

// Flush forces every staged mutation to the engine immediately.
func (s *Store) Flush() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.flush()
}

// Close flushes the staged state and closes the underlying engine.
func (s *Store) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.flush(); err != nil {
		// Attempt to close the engine anyway, but surface the flush
		// error since it means staged writes were lost.
		_ = s.engine.Close()
		return err
	}
	return s.engine.Close()
}
