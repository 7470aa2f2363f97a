package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/kvset/treap/writeback/engine"
)

// Snapshot wraps a leveldb snapshot as an engine.Snapshot.  The leveldb
// types already implement the exact read semantics the engine interface
// asks for, so the wrapper only reshapes signatures.
type Snapshot struct {
	*leveldb.Snapshot
}

func (s *Snapshot) Get(key []byte) ([]byte, error) {
	return s.Snapshot.Get(key, nil)
}

func (s *Snapshot) Has(key []byte) (bool, error) {
	return s.Snapshot.Has(key, nil)
}

func (s *Snapshot) NewIterator(slice *engine.Range) engine.Iterator {
	return s.Snapshot.NewIterator(&util.Range{
		Start: slice.Start,
		Limit: slice.Limit,
	}, nil)
}

func (s *Snapshot) Release() {
	s.Snapshot.Release()
}
