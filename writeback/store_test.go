// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package writeback

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kvset/treap/writeback/engine"
	"github.com/kvset/treap/writeback/engine/leveldb"
	"github.com/kvset/treap/writeback/engine/pebbledb"
)

// testEngines runs fn against a store backed by each engine adapter.  The
// store is closed when fn returns, which is harmless when fn already closed
// it.
func testEngines(t *testing.T, maxStaged uint64, flushInterval time.Duration, fn func(t *testing.T, store *Store)) {
	engines := []struct {
		name string
		new  func(t *testing.T) engine.Engine
	}{
		{
			name: "leveldb",
			new: func(t *testing.T) engine.Engine {
				eng, err := leveldb.NewDB(filepath.Join(t.TempDir(), "store"), true)
				require.NoErrorf(t, err, "failed to create leveldb")
				return eng
			},
		},
		{
			name: "pebbledb",
			new: func(t *testing.T) engine.Engine {
				eng, err := pebbledb.NewDB(filepath.Join(t.TempDir(), "store"), true, 0, 0)
				require.NoErrorf(t, err, "failed to create pebbledb")
				return eng
			},
		},
	}

	for _, te := range engines {
		t.Run(te.name, func(t *testing.T) {
			store := New(te.new(t), maxStaged, flushInterval)
			defer store.Close()
			fn(t, store)
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	testEngines(t, 0, 0, func(t *testing.T, store *Store) {
		key := []byte("apple")
		value := []byte("27753")

		// Absent before any write.
		_, err := store.Get(key)
		require.ErrorIsf(t, err, ErrKeyNotFound, "expected ErrKeyNotFound")
		has, err := store.Has(key)
		require.NoErrorf(t, err, "Has failed")
		require.Falsef(t, has, "absent key reported present")

		// Staged writes are immediately visible.
		require.NoErrorf(t, store.Put(key, value), "Put failed")
		got, err := store.Get(key)
		require.NoErrorf(t, err, "Get failed")
		require.Equalf(t, value, got, "staged value mismatch")
		has, err = store.Has(key)
		require.NoErrorf(t, err, "Has failed")
		require.Truef(t, has, "staged key reported absent")

		// Overwrites replace the staged value.
		next := []byte("72777")
		require.NoErrorf(t, store.Put(key, next), "Put failed")
		got, err = store.Get(key)
		require.NoErrorf(t, err, "Get failed")
		require.Equalf(t, next, got, "overwritten value mismatch")

		// The returned slice is a copy.
		got[0] = 'x'
		fresh, err := store.Get(key)
		require.NoErrorf(t, err, "Get failed")
		require.Equalf(t, next, fresh, "caller mutation leaked into store")

		// A staged delete hides the key again.
		require.NoErrorf(t, store.Delete(key), "Delete failed")
		_, err = store.Get(key)
		require.ErrorIsf(t, err, ErrKeyNotFound, "deleted key still readable")
		has, err = store.Has(key)
		require.NoErrorf(t, err, "Has failed")
		require.Falsef(t, has, "deleted key reported present")
	})
}

func TestStoreFlush(t *testing.T) {
	testEngines(t, 0, 0, func(t *testing.T, store *Store) {
		// Stage a batch and flush it explicitly.
		for i := 0; i < 50; i++ {
			key := []byte(fmt.Sprintf("word%03d", i))
			require.NoErrorf(t, store.Put(key, key), "Put failed")
		}
		require.NoErrorf(t, store.Delete([]byte("word004")), "Delete failed")
		require.NoErrorf(t, store.Flush(), "Flush failed")

		// The staging sets reset on flush.
		store.mtx.RLock()
		stagedPuts, stagedDels := store.stagedPuts.Len(), store.stagedDels.Len()
		stagedBytes := store.stagedBytes
		store.mtx.RUnlock()
		require.Zerof(t, stagedPuts, "staged puts survived the flush")
		require.Zerof(t, stagedDels, "staged deletes survived the flush")
		require.Zerof(t, stagedBytes, "staged byte count survived the flush")

		// Reads now come from the engine.
		got, err := store.Get([]byte("word007"))
		require.NoErrorf(t, err, "Get after flush failed")
		require.Equalf(t, []byte("word007"), got, "flushed value mismatch")
		_, err = store.Get([]byte("word004"))
		require.ErrorIsf(t, err, ErrKeyNotFound, "flushed delete still readable")

		// The engine holds the pairs directly.
		snap, err := store.engine.Snapshot()
		require.NoErrorf(t, err, "engine snapshot failed")
		has, err := snap.Has([]byte("word007"))
		require.NoErrorf(t, err, "engine Has failed")
		require.Truef(t, has, "flushed key missing from engine")
		has, err = snap.Has([]byte("word004"))
		require.NoErrorf(t, err, "engine Has failed")
		require.Falsef(t, has, "deleted key present in engine")
		snap.Release()

		// A flush with nothing staged is a no-op.
		require.NoErrorf(t, store.Flush(), "empty Flush failed")
	})
}

func TestStoreSizeThreshold(t *testing.T) {
	// A tiny threshold makes every put flush almost immediately.
	testEngines(t, 64, 0, func(t *testing.T, store *Store) {
		for i := 0; i < 20; i++ {
			key := []byte(fmt.Sprintf("key%02d", i))
			value := make([]byte, 16)
			require.NoErrorf(t, store.Put(key, value), "Put failed")
		}

		// Far less than 20 puts worth of bytes may remain staged.
		store.mtx.RLock()
		stagedBytes := store.stagedBytes
		store.mtx.RUnlock()
		require.LessOrEqualf(t, stagedBytes, uint64(64+21),
			"staged bytes grew past the threshold")

		// Every key is readable regardless of which side holds it.
		for i := 0; i < 20; i++ {
			key := []byte(fmt.Sprintf("key%02d", i))
			_, err := store.Get(key)
			require.NoErrorf(t, err, "Get %s failed", key)
		}
	})
}

func TestStoreFlushInterval(t *testing.T) {
	// With an elapsed interval, the next mutation flushes regardless of
	// size.
	testEngines(t, 0, time.Millisecond, func(t *testing.T, store *Store) {
		require.NoErrorf(t, store.Put([]byte("early"), []byte("1")), "Put failed")
		time.Sleep(10 * time.Millisecond)
		require.NoErrorf(t, store.Put([]byte("late"), []byte("2")), "Put failed")

		store.mtx.RLock()
		stagedBytes := store.stagedBytes
		store.mtx.RUnlock()
		require.Zerof(t, stagedBytes, "interval flush did not happen")

		snap, err := store.engine.Snapshot()
		require.NoErrorf(t, err, "engine snapshot failed")
		defer snap.Release()
		for _, key := range []string{"early", "late"} {
			has, err := snap.Has([]byte(key))
			require.NoErrorf(t, err, "engine Has failed")
			require.Truef(t, has, "key %q missing from engine", key)
		}
	})
}

func TestStoreMissCache(t *testing.T) {
	testEngines(t, 0, 0, func(t *testing.T, store *Store) {
		key := []byte("ghost")

		// Confirm the miss twice; the second lookup is served by the
		// cache.
		_, err := store.Get(key)
		require.ErrorIsf(t, err, ErrKeyNotFound, "expected ErrKeyNotFound")
		require.Truef(t, store.missCache.Contains(string(key)),
			"miss was not cached")
		_, err = store.Get(key)
		require.ErrorIsf(t, err, ErrKeyNotFound, "expected ErrKeyNotFound")

		// A put must invalidate the cached miss even across a flush.
		require.NoErrorf(t, store.Put(key, []byte("now")), "Put failed")
		require.NoErrorf(t, store.Flush(), "Flush failed")
		got, err := store.Get(key)
		require.NoErrorf(t, err, "Get after put failed")
		require.Equalf(t, []byte("now"), got, "value mismatch")
	})
}

func TestStoreClose(t *testing.T) {
	testEngines(t, 0, 0, func(t *testing.T, store *Store) {
		require.NoErrorf(t, store.Put([]byte("k"), []byte("v")), "Put failed")

		// Close flushes the staged state before shutting the engine
		// down.
		eng := store.engine
		require.NoErrorf(t, store.Close(), "Close failed")
		_, err := eng.Snapshot()
		require.Errorf(t, err, "engine still open after Close")
	})
}
