// Package graph defines the permanent weighted adjacency structure
// (MatchingGraph, DetectorNode) and the ephemeral per-decode fill-region
// bookkeeping (FillRegion) that the flooder grows and shrinks over time.
package graph

import "github.com/katalvlaran/sparseblossom/core"

// DetectorNode is one vertex of the matching graph: a fixed list of
// weighted, observable-tagged neighbors, plus the ephemeral state the
// flooder attaches while a wavefront occupies it.
type DetectorNode struct {
	// Permanent graph structure.
	Neighbors           []core.NodeIdx
	NeighborWeights      []core.Weight
	NeighborObservables  []core.ObsMask

	// Ephemeral per-decode state, cleared by Reset.
	RegionThatArrived    core.RegionIdx // region directly owning this node
	RegionThatArrivedTop core.RegionIdx // outermost ancestor of RegionThatArrived
	ReachedFromSource    core.NodeIdx   // the detection-event node this node's wavefront grew from
	ObservablesCrossed   core.ObsMask
	RadiusOfArrival      core.CumulativeTime
	WrappedRadiusCached  int32
	NodeEventTracker     core.QueuedEventTracker
}

// NewDetectorNode returns a DetectorNode with all ephemeral fields unset.
func NewDetectorNode() DetectorNode {
	return DetectorNode{
		RegionThatArrived:    core.RegionIdx(core.None),
		RegionThatArrivedTop: core.RegionIdx(core.None),
		ReachedFromSource:    core.NodeIdx(core.None),
	}
}

// LocalRadius is the effective radius at this node: the owning top
// region's radius, adjusted by the wrapped radius accumulated from
// walking down through any enclosing blossoms.
func (n *DetectorNode) LocalRadius(regions []FillRegion) core.Varying {
	if !n.RegionThatArrivedTop.Valid() {
		return core.Frozen(0)
	}
	return regions[n.RegionThatArrivedTop].Radius.Add(int64(n.WrappedRadiusCached))
}

// ComputeWrappedRadius walks the blossom-parent chain from this node's
// immediate owning region up to its top region, summing each
// intermediate region's y-intercept, then subtracts the radius this node
// had when it first joined its immediate region.
func (n *DetectorNode) ComputeWrappedRadius(regions []FillRegion) int32 {
	if !n.ReachedFromSource.Valid() {
		return 0
	}
	var total int32
	r := n.RegionThatArrived
	for r != n.RegionThatArrivedTop {
		if !r.Valid() {
			break
		}
		total += int32(regions[r].Radius.YIntercept())
		r = regions[r].BlossomParent
	}
	return total - int32(n.RadiusOfArrival)
}

// HasSameOwnerAs reports whether n and other are currently occupied by
// the same top-level region.
func (n *DetectorNode) HasSameOwnerAs(other *DetectorNode) bool {
	return n.RegionThatArrivedTop.Valid() && n.RegionThatArrivedTop == other.RegionThatArrivedTop
}

// Reset clears all ephemeral per-decode state, leaving the permanent
// graph structure untouched.
func (n *DetectorNode) Reset() {
	n.RegionThatArrived = core.RegionIdx(core.None)
	n.RegionThatArrivedTop = core.RegionIdx(core.None)
	n.ReachedFromSource = core.NodeIdx(core.None)
	n.ObservablesCrossed = 0
	n.RadiusOfArrival = 0
	n.WrappedRadiusCached = 0
	n.NodeEventTracker.Clear()
}
