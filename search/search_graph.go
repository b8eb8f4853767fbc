// Package search reconstructs the actual node-by-node shortest path
// between two matched regions (or a region and the boundary) by running
// a bidirectional Dijkstra search over a region-free mirror of the
// matching graph, once the matcher has decided which detection events
// pair up.
package search

import (
	"github.com/katalvlaran/sparseblossom/core"
)

// SearchDetectorNode is one node of the search graph: a fixed weighted
// adjacency list, plus the ephemeral state of a single Dijkstra search
// run over it. A neighbor slot holding core.SearchNodeIdx(core.None)
// denotes an edge to the boundary.
type SearchDetectorNode struct {
	Neighbors           []core.SearchNodeIdx
	NeighborWeights     []core.Weight
	NeighborObservables []core.ObsMask

	ReachedFromSource   core.SearchNodeIdx
	DistanceFromSource  core.CumulativeTime
	IndexOfPredecessor  int
	HasPredecessor      bool
	NodeEventTracker    core.QueuedEventTracker
}

// NewSearchDetectorNode returns a SearchDetectorNode with empty ephemeral
// state.
func NewSearchDetectorNode() SearchDetectorNode {
	return SearchDetectorNode{
		ReachedFromSource: core.SearchNodeIdx(core.None),
		IndexOfPredecessor: core.NoNeighbor,
	}
}

// IndexOfNeighbor returns the index of the neighbor slot equal to target,
// panicking if none matches (a search-graph invariant violation).
func (n *SearchDetectorNode) IndexOfNeighbor(target core.SearchNodeIdx) int {
	for k, v := range n.Neighbors {
		if v == target {
			return k
		}
	}
	panic("search: neighbor not found")
}

// Reset clears n's ephemeral Dijkstra state, leaving the permanent
// adjacency lists untouched.
func (n *SearchDetectorNode) Reset() {
	n.ReachedFromSource = core.SearchNodeIdx(core.None)
	n.DistanceFromSource = 0
	n.IndexOfPredecessor = core.NoNeighbor
	n.HasPredecessor = false
	n.NodeEventTracker.Clear()
}

// SearchGraph is the permanent weighted adjacency structure shortest
// paths are extracted from: one SearchDetectorNode per detector, mirror
// of MatchingGraph but without any region state.
type SearchGraph struct {
	Nodes          []SearchDetectorNode
	NumObservables int
}

// NewSearchGraph allocates numNodes empty SearchDetectorNodes.
func NewSearchGraph(numNodes, numObservables int) *SearchGraph {
	nodes := make([]SearchDetectorNode, numNodes)
	for i := range nodes {
		nodes[i] = NewSearchDetectorNode()
	}
	return &SearchGraph{Nodes: nodes, NumObservables: numObservables}
}

// AddEdge adds a weighted edge between detector nodes u and v. Self-loops
// are ignored.
func (g *SearchGraph) AddEdge(u, v int, weight core.Weight, obsMask core.ObsMask) {
	if u == v {
		return
	}
	uIdx := core.SearchNodeIdx(u)
	vIdx := core.SearchNodeIdx(v)

	g.Nodes[u].Neighbors = append(g.Nodes[u].Neighbors, vIdx)
	g.Nodes[u].NeighborWeights = append(g.Nodes[u].NeighborWeights, weight)
	g.Nodes[u].NeighborObservables = append(g.Nodes[u].NeighborObservables, obsMask)

	g.Nodes[v].Neighbors = append(g.Nodes[v].Neighbors, uIdx)
	g.Nodes[v].NeighborWeights = append(g.Nodes[v].NeighborWeights, weight)
	g.Nodes[v].NeighborObservables = append(g.Nodes[v].NeighborObservables, obsMask)
}

// AddBoundaryEdge adds a weighted edge from detector node u to the
// boundary. It is inserted at the front of u's adjacency lists, matching
// the neighbor-ordering convention downstream path reconstruction
// depends on.
func (g *SearchGraph) AddBoundaryEdge(u int, weight core.Weight, obsMask core.ObsMask) {
	n := &g.Nodes[u]
	n.Neighbors = append([]core.SearchNodeIdx{core.SearchNodeIdx(core.None)}, n.Neighbors...)
	n.NeighborWeights = append([]core.Weight{weight}, n.NeighborWeights...)
	n.NeighborObservables = append([]core.ObsMask{obsMask}, n.NeighborObservables...)
}
