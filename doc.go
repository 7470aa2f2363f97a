// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package treap implements an ordered set container backed by a treap, a
binary search tree that is kept balanced with heap semantics over random
priorities.

The set simultaneously maintains two properties.  All items are arranged
according to binary search tree rules under the set's ordering, and every
node carries a priority which is at least as large as the priorities of its
children.  Since the priorities are independent random draws, the expected
height of the tree is logarithmic in the number of items without any
explicit balance bookkeeping.  Insertion bubbles a new node up with
rotations until heap order is restored, and removal rotates a node down to
a leaf before unlinking it.

Sets are created with New for ordered types or NewFunc for an arbitrary
three-way comparison.  The comparison defines equivalence as well, so there
is no separate equality predicate and at most one of any group of mutually
equivalent items is held.  Inserting an item that is already present leaves
the set unchanged and reports the existing item.

Positions within a set are represented by the Iterator type which supports
bidirectional travel between Begin, the smallest item, and End, the
position one past the largest.  Lookup operations such as Find, LowerBound,
and UpperBound return iterators, and iterators in turn feed the positional
operations InsertHint, EraseAt, and EraseRange.  For simple traversal the
All, Backward, and Scan methods provide range-over-func sequences.

The priorities that shape the tree come from a PrioritySource.  The default
source draws from math/rand/v2, which is appropriate for production use,
while tests can inject a deterministic source to obtain reproducible tree
shapes.  Clone copies node priorities verbatim, so a clone is structurally
identical to its source, and Move and Swap transfer whole trees in constant
time.

This package is not safe for concurrent use without external
synchronization.
*/
package treap
