package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/flooder"
	"github.com/katalvlaran/sparseblossom/graph"
	"github.com/katalvlaran/sparseblossom/matcher"
)

// MwpmSuite drives the flooder/matcher pipeline directly (below the
// decoder layer) to exercise alternating-tree construction and match
// extraction against small hand-built graphs.
type MwpmSuite struct {
	suite.Suite
}

func runToCompletion(m *matcher.Mwpm) {
	for {
		event := m.Flooder.RunUntilNextMwpmNotification()
		if event.IsNoEvent() {
			return
		}
		m.ProcessEvent(event)
	}
}

func (s *MwpmSuite) TestTwoNodeEdgeProducesMatchedPair() {
	g := graph.NewMatchingGraph(2, 1)
	require.NoError(s.T(), g.AddEdge(0, 1, 4, []int{0}))

	f := flooder.NewGraphFlooder(g)
	m := matcher.NewMwpm(f)
	m.CreateDetectionEvent(0)
	m.CreateDetectionEvent(1)
	runToCompletion(m)

	top := g.Nodes[0].RegionThatArrivedTop
	require.True(s.T(), top.Valid())
	res := m.ShatterBlossomAndExtractMatches(top)
	require.Equal(s.T(), core.ObsMask(1), res.ObsMask)
}

// TestTriangleOddCycleFormsAndShattersBlossom builds the three-node
// triangle (edges 0-1, 1-2, 0-2, boundary at 0) and fires all three
// detection events at once, forcing an odd-cycle collision within a
// single alternating tree. It asserts the blossom actually forms
// (all three nodes converge on one top-level region with three blossom
// children) and, once shattered, resolves to the single-edge
// prediction carrying the boundary edge's observable.
func (s *MwpmSuite) TestTriangleOddCycleFormsAndShattersBlossom() {
	g := graph.NewMatchingGraph(3, 1)
	require.NoError(s.T(), g.AddEdge(0, 1, 10, []int{0}))
	require.NoError(s.T(), g.AddEdge(1, 2, 10, nil))
	require.NoError(s.T(), g.AddEdge(0, 2, 10, nil))
	require.NoError(s.T(), g.AddBoundaryEdge(0, 20, []int{0}))

	f := flooder.NewGraphFlooder(g)
	m := matcher.NewMwpm(f)
	m.CreateDetectionEvent(0)
	m.CreateDetectionEvent(1)
	m.CreateDetectionEvent(2)
	runToCompletion(m)

	top := g.Nodes[0].RegionThatArrivedTop
	require.True(s.T(), top.Valid())
	require.Equal(s.T(), top, g.Nodes[1].RegionThatArrivedTop)
	require.Equal(s.T(), top, g.Nodes[2].RegionThatArrivedTop)

	blossom := m.Flooder.RegionArena.Get(int32(top))
	require.Len(s.T(), blossom.BlossomChildren, 3)

	res := m.ShatterBlossomAndExtractMatches(top)
	require.Equal(s.T(), core.ObsMask(1), res.ObsMask)
}

func (s *MwpmSuite) TestSingleDetectionMatchesBoundary() {
	g := graph.NewMatchingGraph(1, 1)
	require.NoError(s.T(), g.AddBoundaryEdge(0, 2, []int{0}))

	f := flooder.NewGraphFlooder(g)
	m := matcher.NewMwpm(f)
	m.CreateDetectionEvent(0)
	runToCompletion(m)

	top := g.Nodes[0].RegionThatArrivedTop
	require.True(s.T(), top.Valid())
	res := m.ShatterBlossomAndExtractMatches(top)
	require.Equal(s.T(), core.ObsMask(1), res.ObsMask)
}

func (s *MwpmSuite) TestResetClearsArenaForReuse() {
	g := graph.NewMatchingGraph(2, 0)
	require.NoError(s.T(), g.AddEdge(0, 1, 4, nil))

	f := flooder.NewGraphFlooder(g)
	m := matcher.NewMwpm(f)
	m.CreateDetectionEvent(0)
	m.CreateDetectionEvent(1)
	runToCompletion(m)

	top := g.Nodes[0].RegionThatArrivedTop
	m.ShatterBlossomAndExtractMatches(top)
	m.Reset()

	require.Equal(s.T(), 0, m.NodeArena.Len())
	require.True(s.T(), f.Queue.IsEmpty())
}

func TestMwpmSuite(t *testing.T) {
	suite.Run(t, new(MwpmSuite))
}
