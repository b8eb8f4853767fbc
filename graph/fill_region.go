package graph

import "github.com/katalvlaran/sparseblossom/core"

// FillRegion is a growing/shrinking wavefront region: either a single
// detection event's region, or a blossom formed by collapsing an odd
// alternating-tree cycle into one super-region.
type FillRegion struct {
	BlossomParent    core.RegionIdx // immediate enclosing blossom, if any
	BlossomParentTop core.RegionIdx // outermost enclosing blossom, if any
	AltTreeNode      core.AltTreeIdx
	Radius           core.Varying
	ShrinkEventTracker core.QueuedEventTracker
	HasMatch         bool
	Match            core.Match
	BlossomChildren  []core.RegionEdge
	ShellArea        []core.NodeIdx

	// BlossomInParentLoc/BlossomInChildLoc anchor the two sub-regions
	// adjacent to the point where this blossom was sewn shut: the region
	// nearer the alternating tree's root (parent side) and the region
	// nearer the leaf that triggered blossom formation (child side).
	// They are set once, at blossom-creation time, and consumed when the
	// blossom later shrinks to nothing and must shatter back into its
	// constituent regions.
	BlossomInParentLoc core.NodeIdx
	BlossomInChildLoc  core.NodeIdx
}

// NewFillRegion returns a FillRegion with every optional reference unset.
func NewFillRegion() FillRegion {
	return FillRegion{
		BlossomParent:      core.RegionIdx(core.None),
		BlossomParentTop:   core.RegionIdx(core.None),
		AltTreeNode:        core.AltTreeIdx(core.None),
		Radius:             core.Frozen(0),
		BlossomInParentLoc: core.NodeIdx(core.None),
		BlossomInChildLoc:  core.NodeIdx(core.None),
	}
}

// TreeEqual reports whether r and other belong to the same alternating
// tree node.
func (r *FillRegion) TreeEqual(other *FillRegion) bool {
	return r.AltTreeNode.Valid() && r.AltTreeNode == other.AltTreeNode
}
