package pebbledb

import (
	"github.com/cockroachdb/pebble"

	"github.com/kvset/treap/writeback/engine"
)

// Iterator wraps a pebble iterator as an engine.Iterator.  Most methods
// are ready to promote as is.  Seek translates to SeekGE and Key and Value
// gain the exhausted-means-nil convention of the engine interface.
type Iterator struct {
	*pebble.Iterator
	released bool
}

func (i *Iterator) Seek(key []byte) bool {
	return i.Iterator.SeekGE(key)
}

func (i *Iterator) Key() []byte {
	if !i.Iterator.Valid() {
		return nil
	}
	return i.Iterator.Key()
}

func (i *Iterator) Value() []byte {
	if !i.Iterator.Valid() {
		return nil
	}
	return i.Iterator.Value()
}

func (i *Iterator) Error() error {
	if i.released {
		return engine.ErrIterReleased
	}
	return i.Iterator.Error()
}

func (i *Iterator) Release() {
	if !i.released {
		i.released = true
		i.Iterator.Close()
	}
}
