// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

import (
	"iter"
)

// Iterator is a position within a set.  It either refers to an item or it
// is the End position one past the largest item.  Iterators are cheap
// values obtained from a Set and compare with == so that, for example, a
// range scan can run until it reaches a previously captured position.
//
// An iterator stays valid across mutations of its set except that erasing
// the item it refers to invalidates it.  Using an invalidated iterator has
// undefined results.  The zero Iterator belongs to no set and must not be
// used.
type Iterator[T any] struct {
	s *Set[T]
	n *node[T]
}

// Valid reports whether the iterator refers to an item, which is to say it
// is not the End position.
func (it Iterator[T]) Valid() bool {
	return it.n != nil
}

// Item returns the item the iterator refers to.  It panics on the End
// position.
func (it Iterator[T]) Item() T {
	if it.n == nil {
		panic("treap: Item called on End iterator")
	}
	return it.n.item
}

// Next returns the position one item after it in ascending order.
// Advancing past the largest item yields End.  Next panics on the End
// position.
func (it Iterator[T]) Next() Iterator[T] {
	if it.n == nil {
		panic("treap: Next called on End iterator")
	}
	return Iterator[T]{s: it.s, n: it.n.successor()}
}

// Prev returns the position one item before it in ascending order.
// Stepping back from End yields the largest item.  Prev panics on the Begin
// position and on the End position of an empty set.
func (it Iterator[T]) Prev() Iterator[T] {
	if it.n == nil {
		if it.s.rightmost == nil {
			panic("treap: Prev called on empty set")
		}
		return Iterator[T]{s: it.s, n: it.s.rightmost}
	}
	prev := it.n.predecessor()
	if prev == nil {
		panic("treap: Prev called on Begin iterator")
	}
	return Iterator[T]{s: it.s, n: prev}
}

// Begin returns an iterator on the smallest item.  For an empty set Begin
// equals End.
func (s *Set[T]) Begin() Iterator[T] {
	return Iterator[T]{s: s, n: s.leftmost}
}

// End returns the position one past the largest item.  End refers to no
// item itself and serves as the "not found" result of the lookup
// operations.
func (s *Set[T]) End() Iterator[T] {
	return Iterator[T]{s: s}
}

// All returns an in-order sequence of every item, smallest first, for use
// with a range statement.  The set must not be mutated during the
// iteration.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := s.leftmost; n != nil && yield(n.item); n = n.successor() {
		}
	}
}

// Backward returns a sequence of every item in descending order, largest
// first, for use with a range statement.  The set must not be mutated
// during the iteration.
func (s *Set[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := s.rightmost; n != nil && yield(n.item); n = n.predecessor() {
		}
	}
}

// Scan returns an in-order sequence of the items between lo and hi
// inclusive on both ends.  The set must not be mutated during the
// iteration.
func (s *Set[T]) Scan(lo, hi T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := s.lowerBoundNode(lo); n != nil; n = n.successor() {
			if s.compare(n.item, hi) > 0 || !yield(n.item) {
				return
			}
		}
	}
}
