// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

// cloneFrame pairs a source node with the destination parent its copy
// attaches to while a clone is in progress.
type cloneFrame[T any] struct {
	src       *node[T]
	dstParent *node[T]
	left      bool
}

// Clone returns a deep copy of the set.  Every node is freshly allocated
// holding the same item and the same priority as its source, so the copy's
// shape matches the source exactly without re-deriving balance.  The clone
// shares the ordering and the priority source with the source set, and the
// source is left untouched.
func (s *Set[T]) Clone() *Set[T] {
	c := &Set[T]{compare: s.compare, src: s.src, count: s.count}
	if s.root == nil {
		return c
	}

	// Copy the tree with an explicit work stack rather than recursing so
	// that the depth of the source never translates into call stack
	// depth.
	stack := []cloneFrame[T]{{src: s.root}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &node[T]{
			item:     frame.src.item,
			priority: frame.src.priority,
			parent:   frame.dstParent,
		}
		switch {
		case frame.dstParent == nil:
			c.root = n
		case frame.left:
			frame.dstParent.left = n
		default:
			frame.dstParent.right = n
		}

		if frame.src.left != nil {
			stack = append(stack, cloneFrame[T]{src: frame.src.left, dstParent: n, left: true})
		}
		if frame.src.right != nil {
			stack = append(stack, cloneFrame[T]{src: frame.src.right, dstParent: n})
		}
	}

	c.leftmost = c.root.leftmost()
	c.rightmost = c.root.rightmost()
	return c
}

// Move returns a new set that takes over the receiver's items, ordering,
// and priority source without touching any node.  The receiver is left
// valid and empty and keeps its ordering and source, so it can be reused
// immediately.  Iterators into the moved items remain usable only against
// the returned set.
func (s *Set[T]) Move() *Set[T] {
	moved := &Set[T]{
		compare:   s.compare,
		src:       s.src,
		root:      s.root,
		leftmost:  s.leftmost,
		rightmost: s.rightmost,
		count:     s.count,
	}
	s.root = nil
	s.leftmost = nil
	s.rightmost = nil
	s.count = 0
	return moved
}

// Swap exchanges the entire contents of s and other in constant time,
// including their orderings and priority sources.  No node is visited, so
// iterators keep referring to the items they did before, now reached
// through the other set.
func (s *Set[T]) Swap(other *Set[T]) {
	s.compare, other.compare = other.compare, s.compare
	s.src, other.src = other.src, s.src
	s.root, other.root = other.root, s.root
	s.leftmost, other.leftmost = other.leftmost, s.leftmost
	s.rightmost, other.rightmost = other.rightmost, s.rightmost
	s.count, other.count = other.count, s.count
}
