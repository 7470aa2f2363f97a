// Copyright (c) 2025-2026 The kvset developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package treap

import (
	"math/rand/v2"
)

// PrioritySource produces the priorities that keep a set balanced.  A set
// draws exactly one priority per inserted item, at the moment the item's
// node is allocated, and never asks again for that item.
//
// The default source returns uniformly distributed values from the
// process-seeded generator in math/rand/v2.  Any source whose draws are
// independent and spread over a large range preserves the expected
// logarithmic height of the tree.  Sources with little or no randomness,
// such as a constant, remain correct but degrade the tree towards a list,
// which is exactly what makes deterministic sources useful for shaping
// trees in tests.
type PrioritySource interface {
	// NextPriority returns the priority for the node about to be
	// created.  Larger values sort closer to the root.
	NextPriority() int64
}

// SourceFunc adapts an ordinary function to the PrioritySource interface.
type SourceFunc func() int64

// NextPriority calls f and returns its result.
//
// This is part of the PrioritySource interface implementation.
func (f SourceFunc) NextPriority() int64 {
	return f()
}

// defaultSource returns the priority source used when the caller does not
// provide one.
func defaultSource() PrioritySource {
	return SourceFunc(rand.Int64)
}
