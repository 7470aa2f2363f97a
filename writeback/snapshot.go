// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package writeback

import (
	"github.com/kvset/treap"
	"github.com/kvset/treap/writeback/engine"
)

// Snapshot is a read-only view of the store at a particular point in
// time.  It layers clones of the staging sets over an engine snapshot, so
// neither later store mutations nor later flushes change what it observes.
type Snapshot struct {
	eng        engine.Snapshot
	stagedPuts *treap.Set[entry]
	stagedDels *treap.Set[[]byte]
}

// Get returns the value for key in the view.  It returns ErrKeyNotFound
// when the key is absent.
func (snap *Snapshot) Get(key []byte) ([]byte, error) {
	if snap.stagedDels.Contains(key) {
		return nil, ErrKeyNotFound
	}
	if it := snap.stagedPuts.Find(entry{key: key}); it.Valid() {
		return copyBytes(it.Item().value), nil
	}

	has, err := snap.eng.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrKeyNotFound
	}
	return snap.eng.Get(key)
}

// Has reports whether key exists in the view.
func (snap *Snapshot) Has(key []byte) (bool, error) {
	if snap.stagedDels.Contains(key) {
		return false, nil
	}
	if snap.stagedPuts.Contains(entry{key: key}) {
		return true, nil
	}
	return snap.eng.Has(key)
}

// NewIterator returns an iterator over the view merging the staged puts
// with the engine pairs.  The iterator is not positioned on a pair until
// First, Last, or Seek is called.  slice bounds the walk to [Start, Limit)
// and may be nil for the whole key space.  The iterator must be released
// after use; releasing it does not release the snapshot.
func (snap *Snapshot) NewIterator(slice *engine.Range) *Iterator {
	if slice == nil {
		slice = &engine.Range{}
	}
	return &Iterator{
		snap:      snap,
		dbIter:    snap.eng.NewIterator(slice),
		stageIter: newStagedIter(snap.stagedPuts, slice),
	}
}

// Release releases the snapshot.  It must not be used afterwards.
func (snap *Snapshot) Release() {
	snap.eng.Release()
	snap.stagedPuts = nil
	snap.stagedDels = nil
}
