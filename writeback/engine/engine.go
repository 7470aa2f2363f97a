// Package engine defines the storage engine surface the writeback store
// runs on top of, together with adapters for concrete engines in the
// subpackages.
package engine

import "errors"

// Engine is a persistent ordered key/value store.  Writes happen through
// transactions and reads through point-in-time snapshots.
type Engine interface {
	Transaction() (Transaction, error)
	Snapshot() (Snapshot, error)
	Close() error
}

// Transaction batches writes so they become durable atomically on Commit.
// A transaction that is not committed must be discarded.  Discard after
// Commit is a no-op.
type Transaction interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}

// Snapshot is a read-only view of the engine at the moment it was taken.
// It must be released after use.
type Snapshot interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	NewIterator(*Range) Iterator
	Releaser
}

// Releaser frees the resources held by an iterator or snapshot.  Multiple
// calls are safe.
type Releaser interface {
	Release()
}

// ErrIterReleased is returned by iterator operations invoked after the
// iterator was released.
var ErrIterReleased = errors.New("engine: iterator released")

// Iterator walks a key range of a snapshot in both directions.  A fresh
// iterator is not positioned on any pair until one of the positioning
// methods is called.  Key and Value return slices that may be reused by the
// next positioning call, so callers keep a copy when they hold on to them.
type Iterator interface {
	// First moves to the smallest key in range and reports whether such
	// a pair exists.
	First() bool

	// Last moves to the largest key in range and reports whether such a
	// pair exists.
	Last() bool

	// Seek moves to the smallest key in range that is greater than or
	// equal to the given key and reports whether such a pair exists.
	Seek(key []byte) bool

	// Next moves one pair forward and reports false once the iterator
	// is exhausted.
	Next() bool

	// Prev moves one pair backward and reports false once the iterator
	// is exhausted.
	Prev() bool

	// Valid reports whether the iterator currently rests on a pair.
	Valid() bool

	// Error returns the accumulated error, if any.  Exhaustion is not an
	// error.
	Error() error

	// Key returns the key of the current pair, or nil when exhausted.
	Key() []byte

	// Value returns the value of the current pair, or nil when
	// exhausted.
	Value() []byte

	Releaser
}

// Range bounds a key scan.  Start is included, Limit is excluded, and a
// nil bound leaves that side open.
type Range struct {
	Start []byte
	Limit []byte
}

// BytesPrefix returns the range of every key carrying the given prefix.
func BytesPrefix(prefix []byte) *Range {
	var limit []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c < 0xff {
			limit = make([]byte, i+1)
			copy(limit, prefix)
			limit[i] = c + 1
			break
		}
	}
	return &Range{Start: prefix, Limit: limit}
}
