package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSuiteEngine runs the conformance suite every engine adapter must
// pass.  The new function is called once per subtest and returns a fresh
// engine backed by its own storage.
func TestSuiteEngine(t *testing.T, new func() Engine) {
	t.Run("SnapshotIsolation", func(t *testing.T) {
		eng := new()
		defer eng.Close()

		tx, err := eng.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		key := []byte("apple")
		value := []byte("27753")
		require.NoErrorf(t, tx.Put(key, value), "failed to put data into transaction")

		// A snapshot taken before the commit must not see the write.
		snapshot, err := eng.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		has, err := snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check key in snapshot")
		require.Falsef(t, has, "uncommitted key visible in snapshot")

		gotValue, err := snapshot.Get(key)
		require.Errorf(t, err, "expected an error getting an absent key")
		require.Nil(t, gotValue, "expected nil value for an absent key")
		snapshot.Release()

		require.NoErrorf(t, tx.Commit(), "failed to commit transaction")

		// A snapshot taken after the commit sees the write.
		snapshot, err = eng.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		gotValue, err = snapshot.Get(key)
		require.NoErrorf(t, err, "failed to get committed value")
		require.Equalf(t, value, gotValue, "committed value mismatch")

		has, err = snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check key in snapshot")
		require.Truef(t, has, "committed key missing from snapshot")
		snapshot.Release()
	})

	t.Run("RangeScan", func(t *testing.T) {
		words := map[string]string{
			"ada":   "232",
			"bat":   "228",
			"cat":   "228",
			"catty": "22889",
			"dog":   "364",
		}
		for _, test := range []struct {
			name   string
			slice  *Range
			expect [][2]string
		}{
			{
				name:   "below range",
				slice:  &Range{Start: []byte("a"), Limit: []byte("ada")},
				expect: nil,
			},
			{
				name:   "single key",
				slice:  &Range{Start: []byte("ada"), Limit: []byte("bat")},
				expect: [][2]string{{"ada", "232"}},
			},
			{
				name:   "interior",
				slice:  &Range{Start: []byte("bat"), Limit: []byte("dog")},
				expect: [][2]string{{"bat", "228"}, {"cat", "228"}, {"catty", "22889"}},
			},
			{
				name:   "start between keys",
				slice:  &Range{Start: []byte("ax"), Limit: []byte("catt")},
				expect: [][2]string{{"bat", "228"}, {"cat", "228"}},
			},
			{
				name:   "empty range",
				slice:  &Range{Start: []byte("cat"), Limit: []byte("cat")},
				expect: nil,
			},
			{
				name:   "prefix",
				slice:  BytesPrefix([]byte("cat")),
				expect: [][2]string{{"cat", "228"}, {"catty", "22889"}},
			},
		} {
			eng := new()

			tx, err := eng.Transaction()
			require.NoErrorf(t, err, "%s: failed to create transaction", test.name)
			for k, v := range words {
				require.NoErrorf(t, tx.Put([]byte(k), []byte(v)),
					"%s: failed to put data", test.name)
			}
			require.NoErrorf(t, tx.Commit(), "%s: failed to commit", test.name)

			snapshot, err := eng.Snapshot()
			require.NoErrorf(t, err, "%s: failed to create snapshot", test.name)

			iter := snapshot.NewIterator(test.slice)
			var idx int
			for iter.Next() {
				require.Lessf(t, idx, len(test.expect),
					"%s: extra pair %s=%s", test.name, iter.Key(), iter.Value())
				require.Equalf(t, []byte(test.expect[idx][0]), iter.Key(),
					"%s: key mismatch at %d", test.name, idx)
				require.Equalf(t, []byte(test.expect[idx][1]), iter.Value(),
					"%s: value mismatch at %d", test.name, idx)
				idx++
			}
			require.NoErrorf(t, iter.Error(), "%s: iterator error", test.name)
			require.Equalf(t, len(test.expect), idx, "%s: pair count mismatch", test.name)

			iter.Release()
			snapshot.Release()
			require.NoErrorf(t, eng.Close(), "%s: failed to close engine", test.name)
		}
	})

	t.Run("ReverseScan", func(t *testing.T) {
		eng := new()
		defer eng.Close()

		tx, err := eng.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")
		for _, k := range []string{"one", "two", "three", "four"} {
			require.NoErrorf(t, tx.Put([]byte(k), []byte(k)), "failed to put data")
		}
		require.NoErrorf(t, tx.Commit(), "failed to commit")

		snapshot, err := eng.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")
		defer snapshot.Release()

		// Walk backwards from the end with Last/Prev.
		iter := snapshot.NewIterator(&Range{})
		defer iter.Release()

		want := []string{"two", "three", "one", "four"} // reverse byte order
		require.Truef(t, iter.Last(), "Last found no pair")
		for i, k := range want {
			require.Truef(t, iter.Valid(), "iterator exhausted at %d", i)
			require.Equalf(t, []byte(k), iter.Key(), "key mismatch at %d", i)
			if i < len(want)-1 {
				require.Truef(t, iter.Prev(), "Prev exhausted at %d", i)
			}
		}
		require.Falsef(t, iter.Prev(), "Prev ran past the first pair")

		// Seek then walk backwards across the boundary.
		require.Truef(t, iter.Seek([]byte("three")), "Seek found no pair")
		require.Equalf(t, []byte("three"), iter.Key(), "Seek key mismatch")
		require.Truef(t, iter.Prev(), "Prev after Seek found no pair")
		require.Equalf(t, []byte("one"), iter.Key(), "Prev key mismatch")
	})

	t.Run("Lifecycle", func(t *testing.T) {
		eng := new()

		// Discard is idempotent and a discarded transaction refuses to
		// commit.
		tx, err := eng.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")
		tx.Discard()
		tx.Discard()
		require.Errorf(t, tx.Commit(), "expected an error committing a discarded transaction")

		// Iterator and snapshot releases are idempotent, and a released
		// snapshot refuses reads.
		snapshot, err := eng.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		iter := snapshot.NewIterator(&Range{})
		require.NoErrorf(t, iter.Error(), "fresh iterator reports an error")
		iter.Release()
		iter.Release()

		snapshot.Release()
		snapshot.Release()
		_, err = snapshot.Get([]byte("apple"))
		require.Errorf(t, err, "expected an error reading a released snapshot")

		// Close is terminal and everything derived from a closed engine
		// fails.
		require.NoErrorf(t, eng.Close(), "failed to close engine")
		require.Errorf(t, eng.Close(), "expected an error closing twice")
		_, err = eng.Transaction()
		require.Errorf(t, err, "expected an error starting a transaction on a closed engine")
		_, err = eng.Snapshot()
		require.Errorf(t, err, "expected an error taking a snapshot of a closed engine")
	})
}
