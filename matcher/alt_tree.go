// Package matcher maintains the alternating trees and implements the
// blossom algorithm proper: growing trees from detection events toward
// the boundary, forming blossoms when a growing region meets another
// growing region already in the same tree, and shattering them again
// once fully matched.
package matcher

import (
	"github.com/katalvlaran/sparseblossom/core"
)

// AltTreeEdge is an edge of the alternating tree: a pointer to the node
// on the other end, plus the CompressedEdge connecting the two regions.
type AltTreeEdge struct {
	AltTreeNode core.AltTreeIdx
	Edge        core.CompressedEdge
}

// EmptyAltTreeEdge returns the zero-value sentinel AltTreeEdge.
func EmptyAltTreeEdge() AltTreeEdge {
	return AltTreeEdge{AltTreeNode: core.AltTreeIdx(core.None), Edge: core.EmptyCompressedEdge()}
}

// IsEmpty reports whether e is the sentinel value.
func (e AltTreeEdge) IsEmpty() bool { return !e.AltTreeNode.Valid() }

// AltTreePruneResult is the result of pruning an upward path out of a
// tree: the children orphaned by removed nodes, and the region edges
// along the pruned path, in order.
type AltTreePruneResult struct {
	OrphanEdges          []AltTreeEdge
	PrunedPathRegionEdges []core.RegionEdge
}

// AltTreeNode is one node of an alternating tree. Each node represents a
// pair: an inner (shrinking) region and an outer (growing) region. The
// root of a tree has no inner region.
type AltTreeNode struct {
	InnerRegion      core.RegionIdx
	OuterRegion      core.RegionIdx
	InnerToOuterEdge core.CompressedEdge
	Parent           AltTreeEdge
	Children         []AltTreeEdge
	Visited          bool
}

// NewAltTreeNode returns a zeroed AltTreeNode with every optional field
// unset.
func NewAltTreeNode() AltTreeNode {
	return AltTreeNode{
		InnerRegion: core.RegionIdx(core.None),
		OuterRegion: core.RegionIdx(core.None),
		Parent:      EmptyAltTreeEdge(),
	}
}

// NewRootAltTreeNode builds a root node: outer region only.
func NewRootAltTreeNode(outerRegion core.RegionIdx) AltTreeNode {
	n := NewAltTreeNode()
	n.OuterRegion = outerRegion
	return n
}

// NewPairAltTreeNode builds a non-root node: an inner/outer region pair
// joined by innerToOuterEdge.
func NewPairAltTreeNode(innerRegion, outerRegion core.RegionIdx, innerToOuterEdge core.CompressedEdge) AltTreeNode {
	n := NewAltTreeNode()
	n.InnerRegion = innerRegion
	n.OuterRegion = outerRegion
	n.InnerToOuterEdge = innerToOuterEdge
	return n
}

// AddChild attaches child to self (identified by selfIdx within arena),
// setting the child's parent pointer back to self with the edge
// reversed.
func (n *AltTreeNode) AddChild(selfIdx core.AltTreeIdx, child AltTreeEdge, arena *core.Arena[AltTreeNode]) {
	reversed := child.Edge.Reversed()
	n.Children = append(n.Children, child)
	arena.Get(int32(child.AltTreeNode)).Parent = AltTreeEdge{AltTreeNode: selfIdx, Edge: reversed}
}

// BecomeRoot re-roots the tree at selfIdx by recursively re-rooting the
// parent first, then rotating the parent/child relationship between
// selfIdx and its (now-root) former parent.
func BecomeRoot(selfIdx core.AltTreeIdx, arena *core.Arena[AltTreeNode]) {
	self := arena.Get(int32(selfIdx))
	if self.Parent.IsEmpty() {
		return
	}
	parentEdge := self.Parent
	oldParentIdx := parentEdge.AltTreeNode

	BecomeRoot(oldParentIdx, arena)

	self = arena.Get(int32(selfIdx))
	selfInner := self.InnerRegion
	selfInnerToOuter := self.InnerToOuterEdge
	parentEdgeVal := self.Parent.Edge

	oldParent := arena.Get(int32(oldParentIdx))
	oldParent.InnerRegion = selfInner
	oldParent.InnerToOuterEdge = parentEdgeVal

	self.InnerRegion = core.RegionIdx(core.None)

	unstableEraseByNode(&oldParent.Children, selfIdx)

	self.Parent = EmptyAltTreeEdge()

	edgeToOldParent := selfInnerToOuter.Reversed()
	childEdge := AltTreeEdge{AltTreeNode: oldParentIdx, Edge: edgeToOldParent}
	reversed := edgeToOldParent.Reversed()
	self.Children = append(self.Children, childEdge)
	oldParent.Parent = AltTreeEdge{AltTreeNode: selfIdx, Edge: reversed}

	self.InnerToOuterEdge = core.EmptyCompressedEdge()
}

// MostRecentCommonAncestor finds the nearest shared ancestor of nodeA
// and nodeB by alternately walking each toward its root, marking nodes
// visited until a walk lands on an already-visited node. It returns
// core.AltTreeIdx(core.None) if the two nodes are in different trees.
func MostRecentCommonAncestor(nodeA, nodeB core.AltTreeIdx, arena *core.Arena[AltTreeNode]) core.AltTreeIdx {
	if nodeA == nodeB {
		return nodeA
	}
	arena.Get(int32(nodeA)).Visited = true
	arena.Get(int32(nodeB)).Visited = true

	aCur, bCur := nodeA, nodeB
	var commonAncestor core.AltTreeIdx

	for {
		aParentEdge := arena.Get(int32(aCur)).Parent
		bParentEdge := arena.Get(int32(bCur)).Parent
		aHasParent := !aParentEdge.IsEmpty()
		bHasParent := !bParentEdge.IsEmpty()

		if !aHasParent && !bHasParent {
			clearVisitedUpward(nodeA, arena)
			clearVisitedUpward(nodeB, arena)
			return core.AltTreeIdx(core.None)
		}

		if aHasParent {
			aCur = aParentEdge.AltTreeNode
			if arena.Get(int32(aCur)).Visited {
				commonAncestor = aCur
				break
			}
			arena.Get(int32(aCur)).Visited = true
		}
		if bHasParent {
			bCur = bParentEdge.AltTreeNode
			if arena.Get(int32(bCur)).Visited {
				commonAncestor = bCur
				break
			}
			arena.Get(int32(bCur)).Visited = true
		}
	}

	arena.Get(int32(commonAncestor)).Visited = false
	cleanup := arena.Get(int32(commonAncestor)).Parent
	for !cleanup.IsEmpty() {
		idx := cleanup.AltTreeNode
		if !arena.Get(int32(idx)).Visited {
			break
		}
		arena.Get(int32(idx)).Visited = false
		cleanup = arena.Get(int32(idx)).Parent
	}

	return commonAncestor
}

func clearVisitedUpward(start core.AltTreeIdx, arena *core.Arena[AltTreeNode]) {
	cur := start
	for {
		node := arena.Get(int32(cur))
		if !node.Visited {
			return
		}
		node.Visited = false
		if node.Parent.IsEmpty() {
			return
		}
		cur = node.Parent.AltTreeNode
	}
}

// PruneUpwardPathStoppingBefore removes nodes along the path from
// selfIdx up to (but not including) prunedParent, freeing each from
// arena and returning the children it orphaned and the region edges
// along the pruned path. When back is true edges are oriented
// inner->outer->parent; otherwise outer->inner->parent.
func PruneUpwardPathStoppingBefore(selfIdx core.AltTreeIdx, arena *core.Arena[AltTreeNode], prunedParent core.AltTreeIdx, back bool) AltTreePruneResult {
	var result AltTreePruneResult
	current := selfIdx

	for current != prunedParent {
		node := arena.Get(int32(current))

		result.OrphanEdges = append(result.OrphanEdges, node.Children...)
		node.Children = nil

		inner := node.InnerRegion
		outer := node.OuterRegion
		i2o := node.InnerToOuterEdge
		parentEdge := node.Parent
		parentIdx := parentEdge.AltTreeNode
		parentOuter := arena.Get(int32(parentIdx)).OuterRegion

		if back {
			result.PrunedPathRegionEdges = append(result.PrunedPathRegionEdges,
				core.RegionEdge{Region: inner, Edge: i2o},
				core.RegionEdge{Region: parentOuter, Edge: parentEdge.Edge.Reversed()},
			)
		} else {
			result.PrunedPathRegionEdges = append(result.PrunedPathRegionEdges,
				core.RegionEdge{Region: outer, Edge: i2o.Reversed()},
				core.RegionEdge{Region: inner, Edge: parentEdge.Edge},
			)
		}

		unstableEraseByNode(&arena.Get(int32(parentIdx)).Children, current)

		toFree := current
		current = parentIdx
		arena.Free(int32(toFree))
	}

	return result
}

// unstableEraseByNode removes the first edge in vec pointing at target,
// swapping it with the last element rather than preserving order.
func unstableEraseByNode(vec *[]AltTreeEdge, target core.AltTreeIdx) bool {
	s := *vec
	for i, e := range s {
		if e.AltTreeNode == target {
			last := len(s) - 1
			s[i] = s[last]
			*vec = s[:last]
			return true
		}
	}
	return false
}
