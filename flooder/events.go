// Package flooder runs the event-driven wavefront simulation: growing
// regions from detection events, colliding them with neighbors and each
// other, and shrinking matched regions back down, all ordered by a
// monotonic radix queue of flood-check events.
package flooder

import "github.com/katalvlaran/sparseblossom/core"

// FloodCheckEventKind tags which variant of FloodCheckEvent is populated.
type FloodCheckEventKind uint8

const (
	EventNone FloodCheckEventKind = iota
	EventLookAtNode
	EventLookAtShrinkingRegion
)

// FloodCheckEvent is a tagged flood-queue entry: either "look at this
// node's neighbors again" or "check whether this shrinking region has
// reached zero radius".
type FloodCheckEvent struct {
	Kind   FloodCheckEventKind
	Node   core.NodeIdx
	Region core.RegionIdx
	At     core.CyclicTime
}

// Time implements core.HasTime.
func (e FloodCheckEvent) Time() core.CyclicTime { return e.At }

// IsNoEvent implements core.HasTime.
func (e FloodCheckEvent) IsNoEvent() bool { return e.Kind == EventNone }

func lookAtNode(node core.NodeIdx, at core.CyclicTime) FloodCheckEvent {
	return FloodCheckEvent{Kind: EventLookAtNode, Node: node, At: at}
}

func lookAtShrinkingRegion(region core.RegionIdx, at core.CyclicTime) FloodCheckEvent {
	return FloodCheckEvent{Kind: EventLookAtShrinkingRegion, Region: region, At: at}
}

// MwpmEventKind tags which variant of MwpmEvent is populated.
type MwpmEventKind uint8

const (
	MwpmNoEvent MwpmEventKind = iota
	MwpmRegionHitRegion
	MwpmRegionHitBoundary
	MwpmBlossomShatter
)

// MwpmEvent is a notification the flooder hands up to the matcher:
// two regions collided, a region hit the boundary, or a blossom has
// shrunk to nothing and must shatter back into its children.
type MwpmEvent struct {
	Kind MwpmEventKind

	// RegionHitRegion / RegionHitBoundary
	Region1 core.RegionIdx
	Region2 core.RegionIdx
	Edge    core.CompressedEdge

	// BlossomShatter
	Blossom  core.RegionIdx
	InParent core.RegionIdx
	InChild  core.RegionIdx
}

// IsNoEvent reports whether e carries no notification.
func (e MwpmEvent) IsNoEvent() bool { return e.Kind == MwpmNoEvent }

var noMwpmEvent = MwpmEvent{Kind: MwpmNoEvent}
