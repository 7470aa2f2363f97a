package pebbledb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvset/treap/writeback/engine"
)

func TestSuitePebbleDB(t *testing.T) {
	engine.TestSuiteEngine(t, func() engine.Engine {
		dbPath := filepath.Join(t.TempDir(), "pebbledb-testsuite")

		pdb, err := NewDB(dbPath, true, 0, 0)
		require.NoErrorf(t, err, "failed to create pebbledb")
		return pdb
	})
}
