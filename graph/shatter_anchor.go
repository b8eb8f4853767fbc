package graph

import "github.com/katalvlaran/sparseblossom/core"

// ImmediateChildUnder walks the blossom-parent chain starting at
// startRegion until it finds the region whose direct BlossomParent is
// target, and returns that region. It returns core.RegionIdx(core.None)
// if startRegion is not (transitively) owned by target.
//
// This is the one operation both blossom-shatter anchor resolution and
// post-match heir lookup need: "given a node that is somewhere inside a
// blossom, find the immediate child region of that blossom which owns
// it". Both call sites must run this walk before any BlossomParent field
// on the blossom's children is cleared, since the walk depends on that
// chain still being intact.
func ImmediateChildUnder(regions []FillRegion, startRegion, target core.RegionIdx) core.RegionIdx {
	r := startRegion
	for r.Valid() {
		if regions[r].BlossomParent == target {
			return r
		}
		r = regions[r].BlossomParent
	}
	return core.RegionIdx(core.None)
}
