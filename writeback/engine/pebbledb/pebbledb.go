// Package pebbledb adapts pebble to the engine interfaces.
package pebbledb

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"

	"github.com/kvset/treap/writeback/engine"
)

var (
	ErrDbClosed         = errors.New("pebbledb: closed")
	ErrTxClosed         = errors.New("pebbledb: transaction already closed")
	ErrSnapshotReleased = errors.New("pebbledb: snapshot released")
)

// Default cache size in MiB and open file handle count used when the
// caller passes non-positive values.
const (
	DefaultCache   = 64
	DefaultHandles = 16
)

// NewDB opens or creates the database at dbPath.  When create is true the
// open fails if the database already exists.  cache is the block cache
// size in MiB and handles bounds the open file descriptors.
func NewDB(dbPath string, create bool, cache, handles int) (engine.Engine, error) {
	if cache <= 0 {
		cache = DefaultCache
	}
	if handles <= 0 {
		handles = DefaultHandles
	}

	// Target file sizes double per level starting at 2 MiB, each level
	// carrying a 10 bit per key bloom filter.
	levels := make([]pebble.LevelOptions, 7)
	for i := range levels {
		levels[i] = pebble.LevelOptions{
			TargetFileSize: 2 << (20 + i),
			FilterPolicy:   bloom.FilterPolicy(10),
		}
	}

	opts := &pebble.Options{
		Cache:                    pebble.NewCache(int64(cache) * 1024 * 1024),
		ErrorIfExists:            create,
		MaxOpenFiles:             handles,
		MaxConcurrentCompactions: runtime.NumCPU,
		Levels:                   levels,
	}
	opts.Experimental.ReadSamplingMultiplier = -1

	pdb, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, err
	}
	return &DB{DB: pdb}, nil
}

// DB wraps a pebble database as an engine.Engine.  pebble panics on use
// after close, so the wrapper tracks the closed state itself and turns
// late calls into errors.
type DB struct {
	*pebble.DB

	closed atomic.Bool
}

func (d *DB) Transaction() (engine.Transaction, error) {
	if d.closed.Load() {
		return nil, ErrDbClosed
	}
	return &Transaction{Batch: d.DB.NewBatch()}, nil
}

func (d *DB) Snapshot() (engine.Snapshot, error) {
	if d.closed.Load() {
		return nil, ErrDbClosed
	}
	return &Snapshot{Snapshot: d.DB.NewSnapshot()}, nil
}

func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return ErrDbClosed
	}
	return d.DB.Close()
}
