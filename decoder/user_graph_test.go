package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/decoder"
)

// UserGraphSuite exercises the edge-accumulation layer underneath Matching.
type UserGraphSuite struct {
	suite.Suite
}

func (s *UserGraphSuite) TestAddEdgeTracksNodesAndObservables() {
	g := decoder.NewUserGraph()
	require.NoError(s.T(), g.AddEdge(0, 3, []int{2}, 1.0, 0.01))
	require.Equal(s.T(), 4, g.NumNodes())
	require.Equal(s.T(), 3, g.NumObservables)
	require.Equal(s.T(), 1, g.NumEdges())
}

func (s *UserGraphSuite) TestAddEdgeRejectsNaNWeight() {
	g := decoder.NewUserGraph()
	err := g.AddEdge(0, 1, nil, nan(), 0.01)
	require.Error(s.T(), err)
}

func (s *UserGraphSuite) TestAddEdgeRejectsObservableOutOfRange() {
	g := decoder.NewUserGraph()
	err := g.AddEdge(0, 1, []int{64}, 1.0, 0.01)
	require.Error(s.T(), err)
}

func (s *UserGraphSuite) TestSetBoundaryMarksNodes() {
	g := decoder.NewUserGraph()
	require.NoError(s.T(), g.AddEdge(0, 1, nil, 1.0, 0.01))
	g.SetBoundary(map[int]struct{}{0: {}})
	require.True(s.T(), g.IsBoundaryNode(0))
	require.False(s.T(), g.IsBoundaryNode(1))
}

func (s *UserGraphSuite) TestBoundaryToBoundaryEdgeIsDropped() {
	g := decoder.NewUserGraph()
	g.SetBoundary(map[int]struct{}{0: {}, 1: {}})
	require.NoError(s.T(), g.AddEdge(0, 1, nil, 1.0, 0.01))

	mg := g.ToMatchingGraph(1 << 10)
	require.Empty(s.T(), mg.Nodes[0].Neighbors)
	require.Empty(s.T(), mg.Nodes[1].Neighbors)
}

func (s *UserGraphSuite) TestStringIncludesCounts() {
	g := decoder.NewUserGraph()
	require.NoError(s.T(), g.AddEdge(0, 1, []int{0}, 1.0, 0.01))
	str := g.String()
	require.Contains(s.T(), str, "nodes=2")
	require.Contains(s.T(), str, "edges=1")
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestUserGraphSuite(t *testing.T) {
	suite.Run(t, new(UserGraphSuite))
}
