// Package core defines the shared index types, integer domains, and
// sentinel errors used across the matching graph, flooder, matcher,
// search and driver packages.
//
// Every graph object (detector node, fill region, alternating-tree node,
// search node) is referenced by a small typed index into an Arena rather
// than by pointer, so that the whole decoder can be reset and re-run
// without allocator churn. None is the shared "no such index" sentinel,
// replacing nullable pointers.
package core

import "errors"

// NodeIdx indexes a detector node within a MatchingGraph.
type NodeIdx int32

// RegionIdx indexes a fill region within a region Arena.
type RegionIdx int32

// AltTreeIdx indexes an alternating-tree node within a node Arena.
type AltTreeIdx int32

// SearchNodeIdx indexes a node within a SearchGraph.
type SearchNodeIdx int32

// None is the shared "absent index" sentinel for all index types above.
const None int32 = -1

// NoNeighbor marks "no neighbor selected" when scanning a node's edge list.
const NoNeighbor = -1

// Valid reports whether idx refers to an actual slot (neither None nor
// BoundaryNode).
func (idx NodeIdx) Valid() bool { return idx >= 0 }

// Valid reports whether idx refers to an actual slot (not None).
func (idx RegionIdx) Valid() bool { return int32(idx) != None }

// Valid reports whether idx refers to an actual slot (not None).
func (idx AltTreeIdx) Valid() bool { return int32(idx) != None }

// Valid reports whether idx refers to an actual slot (not None).
func (idx SearchNodeIdx) Valid() bool { return int32(idx) != None }

// BoundaryNode is the sentinel neighbor index meaning "the boundary",
// as opposed to another detector node. It is distinct from None: a
// neighbor slot holding BoundaryNode is a real edge to the boundary,
// while None means "this node has no region/owner/predecessor".
const BoundaryNode NodeIdx = -2

// Integer domains, matching the word sizes the flooder relies on for its
// weight discretization and bit-packed Varying values.
type (
	// ObsMask is a bitmask over observable (logical-operator) indices.
	ObsMask = uint64
	// Weight is an unsigned discretized edge weight.
	Weight = uint32
	// SignedWeight is a signed discretized edge weight, used before the
	// absolute value and negative-weight bookkeeping are applied.
	SignedWeight = int32
	// CumulativeTime is a monotonically-advancing radius/time value.
	CumulativeTime = int64
	// TotalWeight accumulates matched-edge weights across a whole decode.
	TotalWeight = int64
	// CyclicTime is a wrapping 32-bit timestamp used for radix-queue bucketing.
	// Comparisons against it must be by equality only, never ordering,
	// since it wraps on overflow.
	CyclicTime = uint32
)

// NumDistinctWeights is the number of distinct discretized weight levels,
// matching a 32-bit Weight word: 1 << (32-8).
const NumDistinctWeights Weight = 1 << 24

// Sentinel errors shared by graph construction and decode validation.
var (
	// ErrNodeOutOfRange indicates a node index outside the graph's bounds.
	ErrNodeOutOfRange = errors.New("core: node index out of range")

	// ErrObservableOutOfRange indicates an observable index beyond the
	// supported 64-observable-per-decode limit.
	ErrObservableOutOfRange = errors.New("core: observable index out of range (max 64)")

	// ErrNaNWeight indicates a non-finite edge weight was supplied.
	ErrNaNWeight = errors.New("core: edge weight is NaN or infinite")
)
