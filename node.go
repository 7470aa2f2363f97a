// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

// node is an element of the tree.  The left and right links form the binary
// search tree over items while parent is a non-owning back-reference that
// lets traversal and rebalancing walk the link graph in every direction.
// The priority is assigned once when the node is created and never changes
// afterwards.
type node[T any] struct {
	item     T
	priority int64
	parent   *node[T]
	left     *node[T]
	right    *node[T]
}

// leftmost returns the smallest node of the subtree rooted at n.
func (n *node[T]) leftmost() *node[T] {
	for n.left != nil {
		n = n.left
	}
	return n
}

// rightmost returns the largest node of the subtree rooted at n.
func (n *node[T]) rightmost() *node[T] {
	for n.right != nil {
		n = n.right
	}
	return n
}

// successor returns the next node in item order, or nil when n is the
// largest node of its tree.  When n has a right subtree the successor is
// that subtree's smallest node.  Otherwise it is the nearest ancestor whose
// left subtree contains n.
func (n *node[T]) successor() *node[T] {
	if n.right != nil {
		return n.right.leftmost()
	}
	parent := n.parent
	for parent != nil && parent.right == n {
		n = parent
		parent = parent.parent
	}
	return parent
}

// predecessor returns the previous node in item order, or nil when n is the
// smallest node of its tree.  It mirrors successor.
func (n *node[T]) predecessor() *node[T] {
	if n.left != nil {
		return n.left.rightmost()
	}
	parent := n.parent
	for parent != nil && parent.left == n {
		n = parent
		parent = parent.parent
	}
	return parent
}
