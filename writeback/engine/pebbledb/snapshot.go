package pebbledb

import (
	"github.com/cockroachdb/pebble"

	"github.com/kvset/treap/writeback/engine"
)

// Snapshot wraps a pebble snapshot as an engine.Snapshot.
type Snapshot struct {
	*pebble.Snapshot
	released bool
}

func (s *Snapshot) Get(key []byte) ([]byte, error) {
	if s.released {
		return nil, ErrSnapshotReleased
	}

	// The slice pebble hands out is only alive until the closer runs, so
	// return a copy.
	val, closer, err := s.Snapshot.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *Snapshot) Has(key []byte) (bool, error) {
	if s.released {
		return false, ErrSnapshotReleased
	}

	_, closer, err := s.Snapshot.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

func (s *Snapshot) NewIterator(slice *engine.Range) engine.Iterator {
	if s.released {
		return nil
	}

	iter, _ := s.Snapshot.NewIter(&pebble.IterOptions{
		LowerBound: slice.Start,
		UpperBound: slice.Limit,
	})

	// Park the iterator just before the range so a bare Next lands on the
	// first pair, matching the other engines.
	if slice.Start != nil {
		iter.SeekLT(slice.Start)
	}
	return &Iterator{Iterator: iter}
}

func (s *Snapshot) Release() {
	if !s.released {
		s.released = true
		s.Snapshot.Close()
	}
}
