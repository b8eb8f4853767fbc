package core

// CompressedEdge summarizes the path a wavefront has travelled between
// two detector nodes (or from a node to the boundary, when LocTo is
// None) as a single logical edge: endpoints plus the XOR of every
// observable crossed along the way.
type CompressedEdge struct {
	LocFrom NodeIdx // None if this edge has no real source (empty edge)
	LocTo   NodeIdx // None means the boundary
	ObsMask ObsMask
}

// EmptyCompressedEdge returns the zero-value "no edge" CompressedEdge.
func EmptyCompressedEdge() CompressedEdge {
	return CompressedEdge{LocFrom: NodeIdx(None), LocTo: NodeIdx(None)}
}

// Reversed swaps the endpoints, leaving the observable mask unchanged.
func (e CompressedEdge) Reversed() CompressedEdge {
	return CompressedEdge{LocFrom: e.LocTo, LocTo: e.LocFrom, ObsMask: e.ObsMask}
}

// MergedWith concatenates e with a following edge other, keeping e's
// source and other's destination and XOR-ing the observable masks.
func (e CompressedEdge) MergedWith(other CompressedEdge) CompressedEdge {
	return CompressedEdge{LocFrom: e.LocFrom, LocTo: other.LocTo, ObsMask: e.ObsMask ^ other.ObsMask}
}

// RegionEdge pairs a region with the CompressedEdge that attaches it to
// its neighbor along a blossom cycle or alternating-tree path.
type RegionEdge struct {
	Region RegionIdx
	Edge   CompressedEdge
}

// Match records that a region is matched to another region (or to the
// boundary, when HasRegion is false) via the given edge.
type Match struct {
	HasRegion bool
	Region    RegionIdx
	Edge      CompressedEdge
}
