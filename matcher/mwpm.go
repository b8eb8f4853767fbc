package matcher

import (
	"fmt"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/flooder"
	"github.com/katalvlaran/sparseblossom/graph"
)

// MatchingResult accumulates the total weight and XORed observable mask
// of a set of matched region pairs as they are extracted.
type MatchingResult struct {
	ObsMask core.ObsMask
	Weight  core.TotalWeight
}

// Add folds rhs into r in place.
func (r *MatchingResult) Add(rhs MatchingResult) {
	r.ObsMask ^= rhs.ObsMask
	r.Weight += rhs.Weight
}

// Mwpm drives the blossom algorithm: it owns the GraphFlooder and the
// alternating-tree arena, translating flooder notifications into tree
// growth, blossom formation, and blossom shattering.
type Mwpm struct {
	Flooder  *flooder.GraphFlooder
	NodeArena *core.Arena[AltTreeNode]
}

// NewMwpm wraps f in a fresh Mwpm with an empty alt-tree arena.
func NewMwpm(f *flooder.GraphFlooder) *Mwpm {
	return &Mwpm{Flooder: f, NodeArena: core.NewArena[AltTreeNode]()}
}

// CreateDetectionEvent starts a new growing region at nodeIdx and roots
// a fresh alternating tree on it.
func (m *Mwpm) CreateDetectionEvent(nodeIdx core.NodeIdx) {
	regionIdx := m.Flooder.CreateDetectionEvent(nodeIdx)
	altIdx := core.AltTreeIdx(m.NodeArena.Alloc())
	*m.NodeArena.Get(int32(altIdx)) = NewRootAltTreeNode(regionIdx)
	m.Flooder.RegionArena.Get(int32(regionIdx)).AltTreeNode = altIdx
	m.Flooder.SetRegionGrowing(regionIdx)
}

// ProcessEvent dispatches a flooder notification to the matching
// handler.
func (m *Mwpm) ProcessEvent(event flooder.MwpmEvent) {
	switch event.Kind {
	case flooder.MwpmRegionHitRegion:
		m.handleRegionHitRegion(event.Region1, event.Region2, event.Edge)
	case flooder.MwpmRegionHitBoundary:
		m.handleTreeHittingBoundary(event.Region1, event.Edge)
	case flooder.MwpmBlossomShatter:
		m.handleBlossomShattering(event.Blossom, event.InParent, event.InChild)
	}
}

func (m *Mwpm) region(idx core.RegionIdx) *graph.FillRegion {
	return m.Flooder.RegionArena.Get(int32(idx))
}

func (m *Mwpm) altNode(idx core.AltTreeIdx) *AltTreeNode {
	return m.NodeArena.Get(int32(idx))
}

func (m *Mwpm) handleRegionHitRegion(region1, region2 core.RegionIdx, edge core.CompressedEdge) {
	altNode1 := m.region(region1).AltTreeNode
	altNode2 := m.region(region2).AltTreeNode

	switch {
	case altNode1.Valid() && altNode2.Valid():
		ancestor := MostRecentCommonAncestor(altNode1, altNode2, m.NodeArena)
		if ancestor.Valid() {
			m.handleTreeHittingSameTree(region1, region2, edge, ancestor)
		} else {
			m.handleTreeHittingOtherTree(region1, region2, edge)
		}
	case altNode1.Valid():
		r2 := m.region(region2)
		if r2.HasMatch && r2.Match.HasRegion {
			m.handleTreeHittingMatch(region1, region2, edge)
		} else {
			m.handleTreeHittingBoundaryMatch(region1, region2, edge)
		}
	case altNode2.Valid():
		r1 := m.region(region1)
		revEdge := edge.Reversed()
		if r1.HasMatch && r1.Match.HasRegion {
			m.handleTreeHittingMatch(region2, region1, revEdge)
		} else {
			m.handleTreeHittingBoundaryMatch(region2, region1, revEdge)
		}
	default:
		// Neither region is in a tree; cannot happen during normal operation.
	}
}

func (m *Mwpm) handleTreeHittingBoundary(region core.RegionIdx, edge core.CompressedEdge) {
	altNode := m.region(region).AltTreeNode
	BecomeRoot(altNode, m.NodeArena)
	m.shatterDescendantsIntoMatchesAndFreeze(altNode)

	m.region(region).HasMatch = true
	m.region(region).Match = core.Match{HasRegion: false, Edge: edge}
	m.Flooder.SetRegionFrozen(region)
}

func (m *Mwpm) handleTreeHittingBoundaryMatch(unmatchedRegion, matchedRegion core.RegionIdx, edge core.CompressedEdge) {
	altNode := m.region(unmatchedRegion).AltTreeNode

	m.region(unmatchedRegion).HasMatch = true
	m.region(unmatchedRegion).Match = core.Match{HasRegion: true, Region: matchedRegion, Edge: edge}
	m.region(matchedRegion).HasMatch = true
	m.region(matchedRegion).Match = core.Match{HasRegion: true, Region: unmatchedRegion, Edge: edge.Reversed()}
	m.Flooder.SetRegionFrozen(unmatchedRegion)

	BecomeRoot(altNode, m.NodeArena)
	m.shatterDescendantsIntoMatchesAndFreeze(altNode)
}

func (m *Mwpm) handleTreeHittingOtherTree(region1, region2 core.RegionIdx, edge core.CompressedEdge) {
	altNode1 := m.region(region1).AltTreeNode
	altNode2 := m.region(region2).AltTreeNode

	BecomeRoot(altNode1, m.NodeArena)
	BecomeRoot(altNode2, m.NodeArena)

	m.shatterDescendantsIntoMatchesAndFreeze(altNode1)
	m.shatterDescendantsIntoMatchesAndFreeze(altNode2)

	m.region(region1).HasMatch = true
	m.region(region1).Match = core.Match{HasRegion: true, Region: region2, Edge: edge}
	m.region(region2).HasMatch = true
	m.region(region2).Match = core.Match{HasRegion: true, Region: region1, Edge: edge.Reversed()}
	m.Flooder.SetRegionFrozen(region1)
	m.Flooder.SetRegionFrozen(region2)
}

func (m *Mwpm) handleTreeHittingMatch(unmatchedRegion, matchedRegion core.RegionIdx, edge core.CompressedEdge) {
	altNode := m.region(unmatchedRegion).AltTreeNode

	match := m.region(matchedRegion).Match
	otherMatch := match.Region
	matchEdge := match.Edge

	m.makeChild(altNode, matchedRegion, otherMatch, matchEdge, edge)

	m.region(otherMatch).HasMatch = false
	m.region(matchedRegion).HasMatch = false

	m.Flooder.SetRegionShrinking(matchedRegion)
	m.Flooder.SetRegionGrowing(otherMatch)
}

func (m *Mwpm) handleTreeHittingSameTree(region1, region2 core.RegionIdx, edge core.CompressedEdge, commonAncestor core.AltTreeIdx) {
	altNode1 := m.region(region1).AltTreeNode
	altNode2 := m.region(region2).AltTreeNode

	pruneResult1 := PruneUpwardPathStoppingBefore(altNode1, m.NodeArena, commonAncestor, true)
	pruneResult2 := PruneUpwardPathStoppingBefore(altNode2, m.NodeArena, commonAncestor, false)

	blossomCycle := append([]core.RegionEdge(nil), pruneResult2.PrunedPathRegionEdges...)
	for i := len(pruneResult1.PrunedPathRegionEdges) - 1; i >= 0; i-- {
		blossomCycle = append(blossomCycle, pruneResult1.PrunedPathRegionEdges[i])
	}
	blossomCycle = append(blossomCycle, core.RegionEdge{Region: region1, Edge: edge})

	oldOuter := m.altNode(commonAncestor).OuterRegion
	m.region(oldOuter).AltTreeNode = core.AltTreeIdx(core.None)

	blossomRegion := m.createBlossom(blossomCycle)

	m.altNode(commonAncestor).OuterRegion = blossomRegion
	m.region(blossomRegion).AltTreeNode = commonAncestor

	innerToOuterLoc := m.altNode(commonAncestor).InnerToOuterEdge.LocFrom
	var parentLoc core.NodeIdx = core.NodeIdx(core.None)
	if parentEdge := m.altNode(commonAncestor).Parent; !parentEdge.IsEmpty() {
		parentLoc = parentEdge.Edge.LocFrom
	}
	m.region(blossomRegion).BlossomInParentLoc = parentLoc
	m.region(blossomRegion).BlossomInChildLoc = innerToOuterLoc

	for _, c := range pruneResult1.OrphanEdges {
		m.altNode(commonAncestor).Children = append(m.altNode(commonAncestor).Children, AltTreeEdge{AltTreeNode: c.AltTreeNode, Edge: c.Edge})
		m.altNode(c.AltTreeNode).Parent = AltTreeEdge{AltTreeNode: commonAncestor, Edge: c.Edge.Reversed()}
	}
	for _, c := range pruneResult2.OrphanEdges {
		m.altNode(commonAncestor).Children = append(m.altNode(commonAncestor).Children, AltTreeEdge{AltTreeNode: c.AltTreeNode, Edge: c.Edge})
		m.altNode(c.AltTreeNode).Parent = AltTreeEdge{AltTreeNode: commonAncestor, Edge: c.Edge.Reversed()}
	}
}

func (m *Mwpm) handleBlossomShattering(blossomRegion, inParentRegion, inChildRegion core.RegionIdx) {
	blossomChildren := m.region(blossomRegion).BlossomChildren
	m.region(blossomRegion).BlossomChildren = nil
	for _, child := range blossomChildren {
		m.region(child.Region).BlossomParent = core.RegionIdx(core.None)
		m.region(child.Region).BlossomParentTop = core.RegionIdx(core.None)
	}

	blossomAltNode := m.region(blossomRegion).AltTreeNode
	bsize := len(blossomChildren)

	parentIdx, childIdx := 0, 0
	for i := 0; i < bsize; i++ {
		if blossomChildren[i].Region == inParentRegion {
			parentIdx = i
		}
		if blossomChildren[i].Region == inChildRegion {
			childIdx = i
		}
	}

	gap := (childIdx + bsize - parentIdx) % bsize

	blossomParentAlt := m.altNode(blossomAltNode).Parent.AltTreeNode
	unstableEraseByNode(&m.altNode(blossomParentAlt).Children, blossomAltNode)
	childEdge := m.altNode(blossomAltNode).Parent.Edge.Reversed()

	currentAltNode := blossomParentAlt

	var evensStart, evensEnd int

	if gap%2 == 0 {
		evensStart = childIdx + 1
		evensEnd = childIdx + bsize - gap

		for i := parentIdx; i < parentIdx+gap; i += 2 {
			k1 := i % bsize
			k2 := (i + 1) % bsize
			currentAltNode = m.makeChild(currentAltNode, blossomChildren[k1].Region, blossomChildren[k2].Region, blossomChildren[k1].Edge, childEdge)
			childEdge = blossomChildren[k2].Edge
			inner := m.altNode(currentAltNode).InnerRegion
			outer := m.altNode(currentAltNode).OuterRegion
			m.Flooder.SetRegionShrinking(inner)
			m.Flooder.SetRegionGrowing(outer)
		}
	} else {
		evensStart = parentIdx + 1
		evensEnd = parentIdx + gap

		for i := 0; i < bsize-gap; i += 2 {
			k1 := (parentIdx + bsize - i) % bsize
			k2 := (parentIdx + bsize - i - 1) % bsize
			k3 := (parentIdx + bsize - i - 2) % bsize
			currentAltNode = m.makeChild(currentAltNode, blossomChildren[k1].Region, blossomChildren[k2].Region, blossomChildren[k2].Edge.Reversed(), childEdge)
			childEdge = blossomChildren[k3].Edge.Reversed()
			inner := m.altNode(currentAltNode).InnerRegion
			outer := m.altNode(currentAltNode).OuterRegion
			m.Flooder.SetRegionShrinking(inner)
			m.Flooder.SetRegionGrowing(outer)
		}
	}

	for j := evensStart; j < evensEnd; j += 2 {
		k1 := j % bsize
		k2 := (j + 1) % bsize
		r1 := blossomChildren[k1].Region
		r2 := blossomChildren[k2].Region
		e := blossomChildren[k1].Edge
		m.region(r1).HasMatch = true
		m.region(r1).Match = core.Match{HasRegion: true, Region: r2, Edge: e}
		m.region(r2).HasMatch = true
		m.region(r2).Match = core.Match{HasRegion: true, Region: r1, Edge: e.Reversed()}
		m.rescheduleRegionNodes(r1)
		m.rescheduleRegionNodes(r2)
	}

	innerRegion := blossomChildren[childIdx].Region
	m.altNode(blossomAltNode).InnerRegion = innerRegion
	m.Flooder.SetRegionShrinking(innerRegion)
	m.region(innerRegion).AltTreeNode = blossomAltNode

	rev := childEdge.Reversed()
	m.altNode(currentAltNode).Children = append(m.altNode(currentAltNode).Children, AltTreeEdge{AltTreeNode: blossomAltNode, Edge: childEdge})
	m.altNode(blossomAltNode).Parent = AltTreeEdge{AltTreeNode: currentAltNode, Edge: rev}

	m.Flooder.RegionArena.Free(int32(blossomRegion))
}

func (m *Mwpm) shatterDescendantsIntoMatchesAndFreeze(altNode core.AltTreeIdx) {
	children := m.altNode(altNode).Children
	m.altNode(altNode).Children = nil
	for _, childEdge := range children {
		m.shatterDescendantsIntoMatchesAndFreeze(childEdge.AltTreeNode)
	}

	if inner := m.altNode(altNode).InnerRegion; inner.Valid() {
		outer := m.altNode(altNode).OuterRegion
		i2o := m.altNode(altNode).InnerToOuterEdge

		m.region(inner).HasMatch = true
		m.region(inner).Match = core.Match{HasRegion: true, Region: outer, Edge: i2o}
		m.region(outer).HasMatch = true
		m.region(outer).Match = core.Match{HasRegion: true, Region: inner, Edge: i2o.Reversed()}
		m.Flooder.SetRegionFrozen(inner)
		m.Flooder.SetRegionFrozen(outer)
		m.region(inner).AltTreeNode = core.AltTreeIdx(core.None)
		m.region(outer).AltTreeNode = core.AltTreeIdx(core.None)
	}

	if outer := m.altNode(altNode).OuterRegion; outer.Valid() {
		m.region(outer).AltTreeNode = core.AltTreeIdx(core.None)
	}

	m.NodeArena.Free(int32(altNode))
}

func (m *Mwpm) makeChild(parent core.AltTreeIdx, childInner, childOuter core.RegionIdx, childInnerToOuterEdge, childCompressedEdge core.CompressedEdge) core.AltTreeIdx {
	childIdx := core.AltTreeIdx(m.NodeArena.Alloc())
	*m.NodeArena.Get(int32(childIdx)) = NewPairAltTreeNode(childInner, childOuter, childInnerToOuterEdge)
	m.region(childInner).AltTreeNode = childIdx
	m.region(childOuter).AltTreeNode = childIdx

	rev := childCompressedEdge.Reversed()
	m.altNode(parent).Children = append(m.altNode(parent).Children, AltTreeEdge{AltTreeNode: childIdx, Edge: childCompressedEdge})
	m.altNode(childIdx).Parent = AltTreeEdge{AltTreeNode: parent, Edge: rev}

	return childIdx
}

func (m *Mwpm) createBlossom(cycle []core.RegionEdge) core.RegionIdx {
	blossomIdx := core.RegionIdx(m.Flooder.RegionArena.Alloc())
	*m.Flooder.RegionArena.Get(int32(blossomIdx)) = graph.NewFillRegion()
	m.region(blossomIdx).BlossomChildren = append([]core.RegionEdge(nil), cycle...)

	for _, child := range cycle {
		m.Flooder.SetRegionFrozen(child.Region)
		m.region(child.Region).BlossomParent = blossomIdx
		m.region(child.Region).BlossomParentTop = blossomIdx
	}

	m.region(blossomIdx).Radius = core.GrowingWithZeroDistanceAtTime(m.Flooder.Queue.CurTime)

	for _, child := range cycle {
		shell := m.region(child.Region).ShellArea
		for _, nodeIdx := range shell {
			m.Flooder.Graph.Nodes[nodeIdx].RegionThatArrivedTop = blossomIdx
			m.Flooder.Graph.Nodes[nodeIdx].WrappedRadiusCached = m.Flooder.Graph.Nodes[nodeIdx].ComputeWrappedRadius(m.Flooder.RegionArena.Items())
		}
	}

	for _, child := range cycle {
		shell := m.region(child.Region).ShellArea
		for _, nodeIdx := range shell {
			m.Flooder.RescheduleEventsAtDetectorNode(nodeIdx)
		}
	}

	return blossomIdx
}

// ShatterBlossomAndExtractMatches recursively tears down region (and its
// matched partner, and any blossom children of either) into base-level
// matched pairs, accumulating their weight and XORed observable mask.
func (m *Mwpm) ShatterBlossomAndExtractMatches(region core.RegionIdx) MatchingResult {
	hasMatchRegion := m.region(region).HasMatch && m.region(region).Match.HasRegion
	hasBlossomChildren := len(m.region(region).BlossomChildren) > 0

	if hasMatchRegion {
		matchRegion := m.region(region).Match.Region
		matchRegionHasBlossom := len(m.region(matchRegion).BlossomChildren) > 0

		if !hasBlossomChildren && !matchRegionHasBlossom {
			edge := m.region(region).Match.Edge
			w1 := m.region(region).Radius.YIntercept()
			w2 := m.region(matchRegion).Radius.YIntercept()
			m.Flooder.RegionArena.Free(int32(matchRegion))
			m.Flooder.RegionArena.Free(int32(region))
			return MatchingResult{ObsMask: edge.ObsMask, Weight: core.TotalWeight(w1) + core.TotalWeight(w2)}
		}
	} else if !hasBlossomChildren {
		edge := m.region(region).Match.Edge
		w := m.region(region).Radius.YIntercept()
		m.Flooder.RegionArena.Free(int32(region))
		return MatchingResult{ObsMask: edge.ObsMask, Weight: core.TotalWeight(w)}
	}

	var res MatchingResult

	if len(m.region(region).BlossomChildren) > 0 {
		region = m.pairAndShatterSubblossoms(region, &res)
	}

	if m.region(region).HasMatch && m.region(region).Match.HasRegion {
		matchRegion := m.region(region).Match.Region
		if len(m.region(matchRegion).BlossomChildren) > 0 {
			m.pairAndShatterSubblossoms(matchRegion, &res)
		}
	}

	res.Add(m.ShatterBlossomAndExtractMatches(region))
	return res
}

// pairAndShatterSubblossoms resolves the one child of region's cycle
// that actually carries region's external match (the "heir"), transfers
// the match onto it, pairs off the remaining children around the cycle,
// and recursively shatters each pair.
func (m *Mwpm) pairAndShatterSubblossoms(region core.RegionIdx, res *MatchingResult) core.RegionIdx {
	children := append([]core.RegionEdge(nil), m.region(region).BlossomChildren...)

	matchEdge := m.region(region).Match.Edge
	locFrom := matchEdge.LocFrom
	subblossom := graph.ImmediateChildUnder(m.Flooder.RegionArena.Items(), m.Flooder.Graph.Nodes[locFrom].RegionThatArrived, region)
	if !subblossom.Valid() {
		panic(fmt.Errorf("%w: match edge loc_from has no heir region under blossom", ErrInvariantViolation))
	}

	for _, child := range children {
		m.region(child.Region).BlossomParent = core.RegionIdx(core.None)
		m.region(child.Region).BlossomParentTop = core.RegionIdx(core.None)
	}

	blossomMatch := m.region(region).Match
	m.region(subblossom).HasMatch = true
	m.region(subblossom).Match = core.Match{HasRegion: blossomMatch.HasRegion, Region: blossomMatch.Region, Edge: blossomMatch.Edge}
	if blossomMatch.HasRegion {
		other := blossomMatch.Region
		m.region(other).HasMatch = true
		m.region(other).Match = core.Match{HasRegion: true, Region: subblossom, Edge: blossomMatch.Edge.Reversed()}
	}

	res.Weight += core.TotalWeight(m.region(region).Radius.YIntercept())

	index := -1
	for i, c := range children {
		if c.Region == subblossom {
			index = i
			break
		}
	}
	if index == -1 {
		panic(fmt.Errorf("%w: heir region not found among blossom children", ErrInvariantViolation))
	}
	numChildren := len(children)

	for i := 0; i < numChildren-1; i += 2 {
		re1 := children[(index+i+1)%numChildren]
		re2 := children[(index+i+2)%numChildren]
		r1 := re1.Region
		r2 := re2.Region
		e := re1.Edge
		m.region(r1).HasMatch = true
		m.region(r1).Match = core.Match{HasRegion: true, Region: r2, Edge: e}
		m.region(r2).HasMatch = true
		m.region(r2).Match = core.Match{HasRegion: true, Region: r1, Edge: e.Reversed()}
		subRes := m.ShatterBlossomAndExtractMatches(r1)
		res.Add(subRes)
	}

	m.Flooder.RegionArena.Free(int32(region))
	return subblossom
}

// RescheduleEventsAtDetectorNode delegates to the flooder.
func (m *Mwpm) RescheduleEventsAtDetectorNode(nodeIdx core.NodeIdx) {
	m.Flooder.RescheduleEventsAtDetectorNode(nodeIdx)
}

func (m *Mwpm) rescheduleRegionNodes(region core.RegionIdx) {
	shell := m.region(region).ShellArea
	for _, nodeIdx := range shell {
		m.Flooder.RescheduleEventsAtDetectorNode(nodeIdx)
	}
}

// Reset clears the flooder and alt-tree arena, preparing for the next
// decode.
func (m *Mwpm) Reset() {
	m.Flooder.Reset()
	m.NodeArena.Clear()
}
