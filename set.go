// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

import (
	"cmp"
	"iter"
)

// Set is an ordered collection of unique items backed by a treap.  Items
// are arranged by a three-way comparison which also defines equivalence, so
// the set never holds two items that compare equal.  The zero value is not
// usable.  Sets are created with New, NewFunc, NewWithSource,
// NewFuncWithSource, or Of.
//
// Set is not safe for concurrent use.
type Set[T any] struct {
	compare func(a, b T) int
	src     PrioritySource

	root      *node[T]
	leftmost  *node[T]
	rightmost *node[T]
	count     int
}

// New returns an empty set ordered by the natural ordering of T.
func New[T cmp.Ordered]() *Set[T] {
	return NewFuncWithSource[T](cmp.Compare[T], defaultSource())
}

// NewFunc returns an empty set ordered by compare, which must define a
// total order over items.  It returns a negative number when a orders
// before b, a positive number when a orders after b, and zero when the two
// are equivalent.
func NewFunc[T any](compare func(a, b T) int) *Set[T] {
	return NewFuncWithSource(compare, defaultSource())
}

// NewWithSource returns an empty set ordered by the natural ordering of T
// with node priorities drawn from src instead of the default source.
func NewWithSource[T cmp.Ordered](src PrioritySource) *Set[T] {
	return NewFuncWithSource[T](cmp.Compare[T], src)
}

// NewFuncWithSource returns an empty set ordered by compare with node
// priorities drawn from src.
func NewFuncWithSource[T any](compare func(a, b T) int, src PrioritySource) *Set[T] {
	return &Set[T]{compare: compare, src: src}
}

// Of returns a set ordered by the natural ordering of T holding the given
// items.  Duplicates among the items are silently skipped.
func Of[T cmp.Ordered](items ...T) *Set[T] {
	s := New[T]()
	s.InsertSlice(items)
	return s
}

// Len returns the number of items in the set.
func (s *Set[T]) Len() int {
	return s.count
}

// Empty reports whether the set holds no items.
func (s *Set[T]) Empty() bool {
	return s.root == nil
}

// Lowest returns the smallest item in the set.  It panics when the set is
// empty.
func (s *Set[T]) Lowest() T {
	if s.leftmost == nil {
		panic("treap: Lowest called on empty set")
	}
	return s.leftmost.item
}

// Highest returns the largest item in the set.  It panics when the set is
// empty.
func (s *Set[T]) Highest() T {
	if s.rightmost == nil {
		panic("treap: Highest called on empty set")
	}
	return s.rightmost.item
}

// findNode returns the node holding an item equivalent to item, or nil when
// there is none.
func (s *Set[T]) findNode(item T) *node[T] {
	for n := s.root; n != nil; {
		c := s.compare(item, n.item)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// lowerBoundNode returns the smallest node whose item is not less than
// item, or nil when every item in the set is less.  The search keeps the
// most recent node it descended left from, since that node is exactly the
// smallest one known to be greater than or equal to the target.
func (s *Set[T]) lowerBoundNode(item T) *node[T] {
	var candidate *node[T]
	for n := s.root; n != nil; {
		if s.compare(n.item, item) < 0 {
			n = n.right
		} else {
			candidate = n
			n = n.left
		}
	}
	return candidate
}

// upperBoundNode returns the smallest node whose item is greater than item,
// or nil when there is none.
func (s *Set[T]) upperBoundNode(item T) *node[T] {
	var candidate *node[T]
	for n := s.root; n != nil; {
		if s.compare(item, n.item) < 0 {
			candidate = n
			n = n.left
		} else {
			n = n.right
		}
	}
	return candidate
}

// findInsertPos locates the position item would occupy as a new leaf.  It
// returns the would-be parent along with the side the item attaches on, or
// the existing node when an equivalent item is already present.  An empty
// set yields a nil parent.  Duplicate detection falls out of the descent
// itself since the comparison reports equivalence directly at the node
// where the search would otherwise branch.
func (s *Set[T]) findInsertPos(item T) (parent *node[T], left bool, existing *node[T]) {
	for n := s.root; n != nil; {
		c := s.compare(item, n.item)
		if c == 0 {
			return nil, false, n
		}
		parent = n
		left = c < 0
		if left {
			n = n.left
		} else {
			n = n.right
		}
	}
	return parent, left, nil
}

// findInsertPosHint is the hinted variant of findInsertPos.  When the hint
// turns out to be the position immediately after where item belongs, the
// position is derived from the hint and its in-order predecessor without a
// full descent.  A hint that does not pan out falls back to the ordinary
// search, so a wrong hint costs nothing beyond the attempt.
func (s *Set[T]) findInsertPosHint(hint Iterator[T], item T) (parent *node[T], left bool, existing *node[T]) {
	if s.root == nil {
		return nil, false, nil
	}

	// An End hint claims the item belongs after everything present.
	if hint.n == nil {
		if s.compare(s.rightmost.item, item) < 0 {
			return s.rightmost, false, nil
		}
		return s.findInsertPos(item)
	}

	c := s.compare(item, hint.n.item)
	if c == 0 {
		return nil, false, hint.n
	}
	if c < 0 {
		if hint.n == s.leftmost {
			return s.leftmost, true, nil
		}
		prev := hint.n.predecessor()
		pc := s.compare(prev.item, item)
		if pc == 0 {
			return nil, false, prev
		}
		if pc < 0 {
			// The item sorts between two in-order neighbors, so one
			// of the two adjacent link slots must be free.  When the
			// predecessor has a right subtree, the hint is that
			// subtree's leftmost node and its own left link is open.
			if prev.right == nil {
				return prev, false, nil
			}
			return hint.n, true, nil
		}
	}
	return s.findInsertPos(item)
}

// attach links a freshly allocated node holding item below parent on the
// given side, refreshes the cached extremes, and restores heap order by
// rotating the node towards the root while it outranks its parent.  The
// returned node is the new home of item regardless of how far it bubbled.
func (s *Set[T]) attach(parent *node[T], left bool, item T) *node[T] {
	n := &node[T]{item: item, priority: s.src.NextPriority(), parent: parent}
	s.count++

	if parent == nil {
		s.root = n
		s.leftmost = n
		s.rightmost = n
		return n
	}

	if left {
		parent.left = n
		if parent == s.leftmost {
			s.leftmost = n
		}
	} else {
		parent.right = n
		if parent == s.rightmost {
			s.rightmost = n
		}
	}

	// Bubble up.  Each rotation moves n into its parent's position, so
	// the loop ends once n reaches the root or sits below a parent with
	// at least its priority.
	for n.parent != nil && n.parent.priority < n.priority {
		if n.parent.left == n {
			s.rotateRight(n)
		} else {
			s.rotateLeft(n)
		}
	}
	return n
}

// rotateRight promotes pivot, which must be the left child of its parent,
// into the parent's position.  The pivot's right subtree switches sides to
// become the demoted parent's left subtree.  In-order positions are
// unchanged.
func (s *Set[T]) rotateRight(pivot *node[T]) {
	parent := pivot.parent

	parent.left = pivot.right
	if parent.left != nil {
		parent.left.parent = parent
	}

	pivot.parent = parent.parent
	s.relinkGrandparent(pivot, parent)

	pivot.right = parent
	parent.parent = pivot
}

// rotateLeft promotes pivot, which must be the right child of its parent,
// into the parent's position.  It mirrors rotateRight.
func (s *Set[T]) rotateLeft(pivot *node[T]) {
	parent := pivot.parent

	parent.right = pivot.left
	if parent.right != nil {
		parent.right.parent = parent
	}

	pivot.parent = parent.parent
	s.relinkGrandparent(pivot, parent)

	pivot.left = parent
	parent.parent = pivot
}

// relinkGrandparent points the link that previously led to parent at pivot
// instead.  That link is the matching child slot of the grandparent, or the
// set's root slot when the demoted parent was the root.  The caller must
// already have moved the grandparent reference onto pivot.
func (s *Set[T]) relinkGrandparent(pivot, parent *node[T]) {
	grandparent := pivot.parent
	if grandparent == nil {
		s.root = pivot
		return
	}
	if grandparent.left == parent {
		grandparent.left = pivot
	} else {
		grandparent.right = pivot
	}
}

// detach removes n from the tree.  The node is first rotated down past
// whichever child has the higher priority until it is a leaf.  Each step is
// an ordinary rotation with n as the demoted parent, so both tree
// invariants hold among the remaining nodes throughout.  The childless node
// is then unlinked and the cached extremes are refreshed.
func (s *Set[T]) detach(n *node[T]) {
	for n.left != nil || n.right != nil {
		switch {
		case n.left == nil:
			s.rotateLeft(n.right)
		case n.right == nil:
			s.rotateRight(n.left)
		case n.left.priority > n.right.priority:
			s.rotateRight(n.left)
		default:
			s.rotateLeft(n.right)
		}
	}

	s.count--
	parent := n.parent
	if parent == nil {
		// n was the only node.
		s.root = nil
		s.leftmost = nil
		s.rightmost = nil
		return
	}
	if parent.left == n {
		parent.left = nil
	} else {
		parent.right = nil
	}
	n.parent = nil

	if s.leftmost == n {
		s.leftmost = s.root.leftmost()
	}
	if s.rightmost == n {
		s.rightmost = s.root.rightmost()
	}
}

// Insert adds item to the set.  It returns an iterator on the item
// equivalent to the given one together with true when the item was inserted
// or false when an equivalent item was already present, in which case the
// set is left unchanged.
func (s *Set[T]) Insert(item T) (Iterator[T], bool) {
	parent, left, existing := s.findInsertPos(item)
	if existing != nil {
		return Iterator[T]{s: s, n: existing}, false
	}
	return Iterator[T]{s: s, n: s.attach(parent, left, item)}, true
}

// InsertHint adds item to the set using hint as a position hint and returns
// an iterator on the item equivalent to the given one, whether or not it
// was inserted.  A hint positioned immediately after where the item belongs
// makes placement constant time on top of the usual rebalancing.  Any other
// hint, including one from a different set, degrades to a plain Insert.
func (s *Set[T]) InsertHint(hint Iterator[T], item T) Iterator[T] {
	if hint.s != s {
		it, _ := s.Insert(item)
		return it
	}
	parent, left, existing := s.findInsertPosHint(hint, item)
	if existing != nil {
		return Iterator[T]{s: s, n: existing}
	}
	return Iterator[T]{s: s, n: s.attach(parent, left, item)}
}

// InsertSlice inserts every item of items, silently skipping those already
// present.  It returns the number of items actually inserted.
func (s *Set[T]) InsertSlice(items []T) int {
	var inserted int
	for _, item := range items {
		if _, ok := s.Insert(item); ok {
			inserted++
		}
	}
	return inserted
}

// InsertAll inserts every item produced by seq, silently skipping those
// already present.  It returns the number of items actually inserted.
func (s *Set[T]) InsertAll(seq iter.Seq[T]) int {
	var inserted int
	for item := range seq {
		if _, ok := s.Insert(item); ok {
			inserted++
		}
	}
	return inserted
}

// Erase removes the item equivalent to item and reports whether an item was
// removed.  Erasing an absent item is a no-op.
func (s *Set[T]) Erase(item T) bool {
	n := s.findNode(item)
	if n == nil {
		return false
	}
	s.detach(n)
	return true
}

// EraseAt removes the item it refers to and returns the position of the
// next item in order, which is End when the largest item was removed.  The
// iterator must refer to an item currently in this set.  EraseAt panics on
// the End position.
func (s *Set[T]) EraseAt(it Iterator[T]) Iterator[T] {
	if it.n == nil {
		panic("treap: EraseAt called on End iterator")
	}
	next := it.Next()
	s.detach(it.n)
	return next
}

// EraseRange removes every item in the half-open range [first, last) and
// returns last.  Passing Begin and End clears the whole set one item at a
// time.  Both iterators must be positions of this set with first at or
// before last.
func (s *Set[T]) EraseRange(first, last Iterator[T]) Iterator[T] {
	for first != last {
		first = s.EraseAt(first)
	}
	return first
}

// Clear removes all items from the set.  Dropping the root releases every
// node to the garbage collector at once, so no per-node teardown happens.
func (s *Set[T]) Clear() {
	s.root = nil
	s.leftmost = nil
	s.rightmost = nil
	s.count = 0
}

// Find returns an iterator on the item equivalent to item, or End when
// there is none.
func (s *Set[T]) Find(item T) Iterator[T] {
	return Iterator[T]{s: s, n: s.findNode(item)}
}

// Contains reports whether the set holds an item equivalent to item.
func (s *Set[T]) Contains(item T) bool {
	return s.findNode(item) != nil
}

// LowerBound returns an iterator on the smallest item that is not less than
// item, or End when every item is less.
func (s *Set[T]) LowerBound(item T) Iterator[T] {
	return Iterator[T]{s: s, n: s.lowerBoundNode(item)}
}

// UpperBound returns an iterator on the smallest item that is greater than
// item, or End when there is none.
func (s *Set[T]) UpperBound(item T) Iterator[T] {
	return Iterator[T]{s: s, n: s.upperBoundNode(item)}
}

// Equal reports whether s and other hold equivalent items in the same
// order.  The comparison is element-wise under s's ordering.  Tree shapes
// and priorities are deliberately ignored, so two sets that grew through
// different histories still compare equal when their contents match.
func (s *Set[T]) Equal(other *Set[T]) bool {
	if s.count != other.count {
		return false
	}
	na, nb := s.leftmost, other.leftmost
	for na != nil && nb != nil {
		if s.compare(na.item, nb.item) != 0 {
			return false
		}
		na, nb = na.successor(), nb.successor()
	}
	return na == nil && nb == nil
}
