// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package writeback implements a write-back key/value store that stages
mutations in ordered in-memory sets in front of a persistent storage
engine.

Puts and deletes land in two treap-backed staging sets and become durable
in a single engine transaction when the staged bytes cross a size
threshold, when a configured interval has passed, or when the store is
flushed or closed.  This batches many small writes into few engine
commits without changing what readers observe: lookups consult the staged
state first and fall through to an engine snapshot, and iteration merges
the staged puts with the engine's pairs while hiding anything a staged
delete or overwrite supersedes.

Point-in-time reads are provided by Snapshot, which pairs an engine
snapshot with clones of the staging sets.  Since the clones preserve the
staged sets' shape and contents, a snapshot is unaffected by any store
mutation that happens after it was taken.  Snapshots and iterators must be
released after use.

An LRU cache of recently confirmed misses short-circuits repeated lookups
of absent keys so they do not pay for an engine snapshot every time.
*/
package writeback
