package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/search"
)

// SearchFlooderSuite exercises the region-free bidirectional Dijkstra used
// to reconstruct the actual shortest path between two matched nodes.
type SearchFlooderSuite struct {
	suite.Suite
}

func (s *SearchFlooderSuite) TestShortestPathAcrossThreeNodeChainXorsObservables() {
	g := search.NewSearchGraph(3, 1)
	g.AddEdge(0, 1, 2, 1)
	g.AddEdge(1, 2, 3, 0)

	f := search.NewSearchFlooder(g)
	edge := f.FindShortestPath(0, 2, true)

	require.Equal(s.T(), core.NodeIdx(0), edge.LocFrom)
	require.Equal(s.T(), core.NodeIdx(2), edge.LocTo)
	require.Equal(s.T(), core.ObsMask(1), edge.ObsMask)
}

func (s *SearchFlooderSuite) TestShortestPathPrefersLighterRoute() {
	g := search.NewSearchGraph(4, 1)
	g.AddEdge(0, 1, 10, 0)
	g.AddEdge(1, 3, 10, 0)
	g.AddEdge(0, 2, 1, 1)
	g.AddEdge(2, 3, 1, 1)

	f := search.NewSearchFlooder(g)
	edge := f.FindShortestPath(0, 3, true)

	// The cheap path crosses observable 1 twice, which cancels out.
	require.Equal(s.T(), core.ObsMask(0), edge.ObsMask)
}

func (s *SearchFlooderSuite) TestShortestPathToBoundary() {
	g := search.NewSearchGraph(2, 1)
	g.AddEdge(0, 1, 5, 0)
	g.AddBoundaryEdge(0, 1, 1)

	f := search.NewSearchFlooder(g)
	edge := f.FindShortestPath(0, -1, false)

	require.Equal(s.T(), core.NodeIdx(0), edge.LocFrom)
	require.False(s.T(), edge.LocTo.Valid(), "boundary match has no real destination")
	require.Equal(s.T(), core.ObsMask(1), edge.ObsMask)
}

func (s *SearchFlooderSuite) TestResetAllowsReuseAcrossQueries() {
	g := search.NewSearchGraph(2, 0)
	g.AddEdge(0, 1, 3, 0)

	f := search.NewSearchFlooder(g)
	f.FindShortestPath(0, 1, true)
	f.Reset()
	edge := f.FindShortestPath(0, 1, true)
	require.Equal(s.T(), core.NodeIdx(1), edge.LocTo)
}

func TestSearchFlooderSuite(t *testing.T) {
	suite.Run(t, new(SearchFlooderSuite))
}
