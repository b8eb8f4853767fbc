package flooder_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/flooder"
	"github.com/katalvlaran/sparseblossom/graph"
)

// GraphFlooderSuite exercises the event-driven wavefront simulation in
// isolation, without the matcher's alternating-tree bookkeeping.
type GraphFlooderSuite struct {
	suite.Suite
}

func (s *GraphFlooderSuite) TestTwoDetectionEventsCollide() {
	g := graph.NewMatchingGraph(2, 1)
	require.NoError(s.T(), g.AddEdge(0, 1, 4, []int{0}))

	f := flooder.NewGraphFlooder(g)
	f.CreateDetectionEvent(0)
	f.CreateDetectionEvent(1)

	event := f.RunUntilNextMwpmNotification()
	require.False(s.T(), event.IsNoEvent())
	require.Equal(s.T(), flooder.MwpmRegionHitRegion, event.Kind)
	require.Equal(s.T(), core.ObsMask(1), event.Edge.ObsMask)
}

func (s *GraphFlooderSuite) TestSingleDetectionHitsBoundary() {
	g := graph.NewMatchingGraph(1, 0)
	require.NoError(s.T(), g.AddBoundaryEdge(0, 2, nil))

	f := flooder.NewGraphFlooder(g)
	f.CreateDetectionEvent(0)

	event := f.RunUntilNextMwpmNotification()
	require.False(s.T(), event.IsNoEvent())
	require.Equal(s.T(), flooder.MwpmRegionHitBoundary, event.Kind)
}

func (s *GraphFlooderSuite) TestNoDetectionEventsYieldsNoNotification() {
	g := graph.NewMatchingGraph(2, 0)
	require.NoError(s.T(), g.AddEdge(0, 1, 4, nil))

	f := flooder.NewGraphFlooder(g)
	event := f.RunUntilNextMwpmNotification()
	require.True(s.T(), event.IsNoEvent())
}

func (s *GraphFlooderSuite) TestResetClearsQueueAndMatchEdges() {
	g := graph.NewMatchingGraph(2, 0)
	require.NoError(s.T(), g.AddEdge(0, 1, 4, nil))

	f := flooder.NewGraphFlooder(g)
	f.CreateDetectionEvent(0)
	f.CreateDetectionEvent(1)
	f.RunUntilNextMwpmNotification()
	f.Reset()

	require.True(s.T(), f.Queue.IsEmpty())
	require.Empty(s.T(), f.MatchEdges)
}

func TestGraphFlooderSuite(t *testing.T) {
	suite.Run(t, new(GraphFlooderSuite))
}
