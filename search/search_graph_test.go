package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/search"
)

// SearchGraphSuite exercises the permanent region-free adjacency
// structure in isolation from any Dijkstra search over it.
type SearchGraphSuite struct {
	suite.Suite
}

func (s *SearchGraphSuite) TestAddEdgeIsSymmetric() {
	g := search.NewSearchGraph(2, 1)
	g.AddEdge(0, 1, 4, 1)

	require.Equal(s.T(), []core.SearchNodeIdx{1}, g.Nodes[0].Neighbors)
	require.Equal(s.T(), []core.SearchNodeIdx{0}, g.Nodes[1].Neighbors)
}

func (s *SearchGraphSuite) TestAddEdgeSelfLoopIgnored() {
	g := search.NewSearchGraph(1, 0)
	g.AddEdge(0, 0, 1, 0)
	require.Empty(s.T(), g.Nodes[0].Neighbors)
}

func (s *SearchGraphSuite) TestAddBoundaryEdgePrependsNoneNeighbor() {
	g := search.NewSearchGraph(1, 0)
	g.AddEdge(0, 0, 1, 0) // no-op, sanity
	g.AddBoundaryEdge(0, 3, 0)
	require.Equal(s.T(), core.SearchNodeIdx(core.None), g.Nodes[0].Neighbors[0])
}

func (s *SearchGraphSuite) TestIndexOfNeighborFindsSlot() {
	n := search.NewSearchDetectorNode()
	n.Neighbors = []core.SearchNodeIdx{5, 6, 7}
	require.Equal(s.T(), 1, n.IndexOfNeighbor(6))
}

func (s *SearchGraphSuite) TestIndexOfNeighborPanicsWhenMissing() {
	n := search.NewSearchDetectorNode()
	n.Neighbors = []core.SearchNodeIdx{5}
	require.Panics(s.T(), func() { n.IndexOfNeighbor(9) })
}

func (s *SearchGraphSuite) TestResetClearsEphemeralStateOnly() {
	n := search.NewSearchDetectorNode()
	n.Neighbors = []core.SearchNodeIdx{1}
	n.HasPredecessor = true
	n.DistanceFromSource = 10

	n.Reset()
	require.False(s.T(), n.HasPredecessor)
	require.Equal(s.T(), core.CumulativeTime(0), n.DistanceFromSource)
	require.Equal(s.T(), []core.SearchNodeIdx{1}, n.Neighbors)
}

func TestSearchGraphSuite(t *testing.T) {
	suite.Run(t, new(SearchGraphSuite))
}
