// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package writeback

import (
	"bytes"

	"github.com/kvset/treap"
	"github.com/kvset/treap/writeback/engine"
)

// stagedIter is a cursor over a snapshot's staged puts restricted to a key
// range.  It wears the engine iterator surface so the merging iterator can
// drive the staged side and the engine side identically.
type stagedIter struct {
	set   *treap.Set[entry]
	pos   treap.Iterator[entry]
	valid bool
	start []byte
	limit []byte
}

// Enforce stagedIter implements the engine.Iterator interface.
var _ engine.Iterator = (*stagedIter)(nil)

// newStagedIter returns an unpositioned cursor over set bounded to the
// keys in [slice.Start, slice.Limit).
func newStagedIter(set *treap.Set[entry], slice *engine.Range) *stagedIter {
	return &stagedIter{
		set:   set,
		pos:   set.End(),
		start: slice.Start,
		limit: slice.Limit,
	}
}

// inRange reports whether the current position holds an item inside the
// cursor's bounds.
func (it *stagedIter) inRange() bool {
	if !it.pos.Valid() {
		return false
	}
	key := it.pos.Item().key
	if it.start != nil && bytes.Compare(key, it.start) < 0 {
		return false
	}
	if it.limit != nil && bytes.Compare(key, it.limit) >= 0 {
		return false
	}
	return true
}

// First positions the cursor at the smallest staged key in range and
// returns whether one exists.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) First() bool {
	if it.start != nil {
		it.pos = it.set.LowerBound(entry{key: it.start})
	} else {
		it.pos = it.set.Begin()
	}
	it.valid = it.inRange()
	return it.valid
}

// Last positions the cursor at the largest staged key in range and returns
// whether one exists.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Last() bool {
	end := it.set.End()
	if it.limit != nil {
		end = it.set.LowerBound(entry{key: it.limit})
	}
	if end == it.set.Begin() {
		// Nothing staged below the limit.
		it.valid = false
		return false
	}
	it.pos = end.Prev()
	it.valid = it.inRange()
	return it.valid
}

// Seek positions the cursor at the smallest staged key in range that is
// greater than or equal to key and returns whether one exists.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Seek(key []byte) bool {
	if it.start != nil && bytes.Compare(key, it.start) < 0 {
		key = it.start
	}
	it.pos = it.set.LowerBound(entry{key: key})
	it.valid = it.inRange()
	return it.valid
}

// Next moves the cursor one staged pair forward.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Next() bool {
	if !it.valid {
		return false
	}
	it.pos = it.pos.Next()
	it.valid = it.inRange()
	return it.valid
}

// Prev moves the cursor one staged pair backward.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Prev() bool {
	if !it.valid {
		return false
	}
	if it.pos == it.set.Begin() {
		it.pos = it.set.End()
		it.valid = false
		return false
	}
	it.pos = it.pos.Prev()
	it.valid = it.inRange()
	return it.valid
}

// Valid reports whether the cursor rests on a staged pair.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Valid() bool {
	return it.valid
}

// Key returns the key of the current staged pair, or nil when the cursor
// is exhausted.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Key() []byte {
	if !it.valid {
		return nil
	}
	return it.pos.Item().key
}

// Value returns the value of the current staged pair, or nil when the
// cursor is exhausted.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Value() []byte {
	if !it.valid {
		return nil
	}
	return it.pos.Item().value
}

// Error is only provided to satisfy the iterator surface since a memory
// cursor cannot fail.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Error() error {
	return nil
}

// Release is only provided to satisfy the iterator surface since the
// cursor holds no resources.
//
// This is part of the engine.Iterator interface implementation.
func (it *stagedIter) Release() {
}

// Iterator walks the merged view of a snapshot: the staged puts unified
// with the engine's pairs, minus everything a staged delete or staged
// overwrite supersedes.  A fresh iterator is not positioned on a pair
// until First, Last, or Seek is called, and once it reports exhaustion it
// stays exhausted until repositioned.
type Iterator struct {
	snap        *Snapshot
	dbIter      engine.Iterator
	stageIter   *stagedIter
	currentIter engine.Iterator
	released    bool
}

// Enforce Iterator implements the engine.Iterator interface.
var _ engine.Iterator = (*Iterator)(nil)

// skipSuperseded advances the engine iterator in the given direction past
// every pair the staged state overrides, either because the key carries a
// staged delete or because a staged put supersedes the engine's value.
func (iter *Iterator) skipSuperseded(forwards bool) {
	for iter.dbIter.Valid() {
		key := iter.dbIter.Key()
		if !iter.snap.stagedDels.Contains(key) &&
			!iter.snap.stagedPuts.Contains(entry{key: key}) {

			break
		}

		if forwards {
			iter.dbIter.Next()
		} else {
			iter.dbIter.Prev()
		}
	}
}

// chooseIterator first skips any engine pairs the staged state overrides
// and then selects the side holding the next pair for the walk direction:
// the smaller key moving forwards, the larger moving backwards.  It
// returns whether either side still holds a pair.
func (iter *Iterator) chooseIterator(forwards bool) bool {
	iter.skipSuperseded(forwards)

	// When both sides are exhausted, the merged walk is done.
	if !iter.dbIter.Valid() && !iter.stageIter.Valid() {
		iter.currentIter = nil
		return false
	}
	if !iter.stageIter.Valid() {
		iter.currentIter = iter.dbIter
		return true
	}
	if !iter.dbIter.Valid() {
		iter.currentIter = iter.stageIter
		return true
	}

	// Both sides hold a pair.  The staged side never shows a key the
	// engine side still shows, so the comparison is strict.
	compare := bytes.Compare(iter.dbIter.Key(), iter.stageIter.Key())
	if (forwards && compare > 0) || (!forwards && compare < 0) {
		iter.currentIter = iter.stageIter
	} else {
		iter.currentIter = iter.dbIter
	}
	return true
}

// First positions the iterator at the first pair of the merged view and
// returns whether one exists.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) First() bool {
	iter.dbIter.First()
	iter.stageIter.First()
	return iter.chooseIterator(true)
}

// Last positions the iterator at the last pair of the merged view and
// returns whether one exists.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Last() bool {
	iter.dbIter.Last()
	iter.stageIter.Last()
	return iter.chooseIterator(false)
}

// Seek positions the iterator at the first pair of the merged view whose
// key is greater than or equal to key and returns whether one exists.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Seek(key []byte) bool {
	iter.dbIter.Seek(key)
	iter.stageIter.Seek(key)
	return iter.chooseIterator(true)
}

// Next moves the iterator one pair forward and returns whether one
// exists.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Next() bool {
	if iter.currentIter == nil {
		return false
	}
	iter.currentIter.Next()
	return iter.chooseIterator(true)
}

// Prev moves the iterator one pair backward and returns whether one
// exists.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Prev() bool {
	if iter.currentIter == nil {
		return false
	}
	iter.currentIter.Prev()
	return iter.chooseIterator(false)
}

// Valid reports whether the iterator rests on a pair of the merged view.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Valid() bool {
	return iter.currentIter != nil
}

// Key returns the key of the current pair, or nil when the iterator is
// exhausted.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Key() []byte {
	if iter.currentIter == nil {
		return nil
	}
	return iter.currentIter.Key()
}

// Value returns the value of the current pair, or nil when the iterator
// is exhausted.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Value() []byte {
	if iter.currentIter == nil {
		return nil
	}
	return iter.currentIter.Value()
}

// Error returns the engine side's accumulated error, if any.  The staged
// side cannot fail.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Error() error {
	return iter.dbIter.Error()
}

// Release releases the iterator.  The snapshot it was created from stays
// usable and must be released separately.
//
// This is part of the engine.Iterator interface implementation.
func (iter *Iterator) Release() {
	if !iter.released {
		iter.dbIter.Release()
		iter.stageIter.Release()
		iter.currentIter = nil
		iter.released = true
	}
}
