// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// sameShape reports whether the trees rooted at a and b are structurally
// identical with equal items and priorities in every position.
func sameShape[T comparable](a, b *node[T]) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.item == b.item && a.priority == b.priority &&
		sameShape(a.left, b.left) && sameShape(a.right, b.right)
}

// TestCloneShape ensures a clone reproduces the source tree node for node,
// priorities included, rather than merely the same items.
func TestCloneShape(t *testing.T) {
	t.Parallel()

	s := NewWithSource[int](sequenceSource(10, 20, 5, 15, 1))
	for _, key := range []int{1, 5, 3, 2, 4} {
		s.Insert(key)
	}

	c := s.Clone()
	if err := checkTreeInvariants(c); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if !sameShape(s.root, c.root) {
		t.Fatalf("Clone: shape mismatch\noriginal: %sclone: %s",
			spew.Sdump(s.root), spew.Sdump(c.root))
	}

	// Ensure the clone holds copies, not the original nodes.
	for sn, cn := s.root.leftmost(), c.root.leftmost(); sn != nil; sn, cn = sn.successor(), cn.successor() {
		if sn == cn {
			t.Fatalf("Clone: node %d is shared with the source", sn.item)
		}
	}

	// Cloning an empty set yields an independent empty set.
	e := New[int]().Clone()
	if !e.Empty() {
		t.Fatalf("Clone: empty source produced non-empty clone")
	}
	if _, ok := e.Insert(1); !ok {
		t.Fatalf("Insert: item reported as duplicate in cloned empty set")
	}
}

// TestCloneIndependence ensures mutations of a clone and its source never
// affect each other.
func TestCloneIndependence(t *testing.T) {
	t.Parallel()

	numItems := 500
	rng := rand.New(rand.NewPCG(3, 9))
	s := New[int]()
	for _, item := range rng.Perm(numItems) {
		s.Insert(item)
	}

	c := s.Clone()
	if !c.Equal(s) {
		t.Fatalf("Equal: clone differs from source")
	}

	// Mutate the clone and ensure the source is untouched.
	for i := 0; i < numItems; i += 2 {
		c.Erase(i)
	}
	c.Insert(numItems + 1)
	if gotLen := s.Len(); gotLen != numItems {
		t.Fatalf("Len: source length changed - got %d, want %d",
			gotLen, numItems)
	}
	for i := 0; i < numItems; i++ {
		if !s.Contains(i) {
			t.Fatalf("Contains: source lost item %d", i)
		}
	}

	// Mutate the source and ensure the clone is untouched.
	s.Clear()
	if !c.Contains(numItems+1) || c.Len() != numItems/2+1 {
		t.Fatalf("clone changed by source mutation")
	}
	if err := checkTreeInvariants(c); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

// TestMove ensures moving a set transfers ownership of the items without
// touching them and leaves the source empty but usable.
func TestMove(t *testing.T) {
	t.Parallel()

	s := Of(1, 2, 3, 4, 5)
	before := s.Find(3)

	m := s.Move()

	// Ensure the source is empty and the destination took everything.
	if !s.Empty() {
		t.Fatalf("Empty: source still holds items after move")
	}
	if s.Begin() != s.End() {
		t.Fatalf("Begin: does not equal End on moved-from set")
	}
	if got, want := slices.Collect(m.All()), []int{1, 2, 3, 4, 5}; !slices.Equal(got, want) {
		t.Fatalf("All: unexpected items - got %v, want %v", got, want)
	}
	if err := checkTreeInvariants(m); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	// Ensure an iterator captured before the move still reaches its item
	// and its neighbors.
	if got := before.Item(); got != 3 {
		t.Fatalf("Item: unexpected item - got %d, want 3", got)
	}
	if got := before.Next().Item(); got != 4 {
		t.Fatalf("Next: unexpected item - got %d, want 4", got)
	}

	// Ensure the moved-from set is immediately reusable.
	if _, ok := s.Insert(9); !ok {
		t.Fatalf("Insert: item reported as duplicate in moved-from set")
	}
	if m.Contains(9) {
		t.Fatalf("Contains: destination sees items inserted into source")
	}
}

// TestSwap ensures swapping two sets exchanges their contents together
// with their orderings in constant time semantics, including when one side
// is empty.
func TestSwap(t *testing.T) {
	t.Parallel()

	// One set ascending, the other descending, so the ordering must
	// travel with the items for the invariants to keep holding.
	asc := Of(1, 2, 3)
	desc := NewFunc(func(a, b int) int { return cmp.Compare(b, a) })
	desc.InsertSlice([]int{10, 20, 30})

	asc.Swap(desc)

	if got, want := slices.Collect(asc.All()), []int{30, 20, 10}; !slices.Equal(got, want) {
		t.Fatalf("All: unexpected items - got %v, want %v", got, want)
	}
	if got, want := slices.Collect(desc.All()), []int{1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("All: unexpected items - got %v, want %v", got, want)
	}
	if err := checkTreeInvariants(asc); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if err := checkTreeInvariants(desc); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	// The smallest item under the traveling ordering is the largest
	// integer.
	if got := asc.Lowest(); got != 30 {
		t.Fatalf("Lowest: unexpected item - got %d, want 30", got)
	}

	// Ensure the swapped orderings govern future inserts.
	asc.Insert(15)
	if got, want := slices.Collect(asc.All()), []int{30, 20, 15, 10}; !slices.Equal(got, want) {
		t.Fatalf("All: unexpected items - got %v, want %v", got, want)
	}

	// Swapping with an empty set empties one side and fills the other.
	empty := New[int]()
	full := Of(7)
	empty.Swap(full)
	if !full.Empty() {
		t.Fatalf("Empty: swapped set still holds items")
	}
	if got := empty.Lowest(); got != 7 {
		t.Fatalf("Lowest: unexpected item - got %d, want 7", got)
	}

	// A second swap restores the original assignment.
	empty.Swap(full)
	if !empty.Empty() || !full.Contains(7) {
		t.Fatalf("Swap: double swap did not restore the original sets")
	}
}
