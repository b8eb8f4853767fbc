package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/graph"
)

// DetectorNodeSuite exercises per-decode ephemeral node state.
type DetectorNodeSuite struct {
	suite.Suite
}

func (s *DetectorNodeSuite) TestNewDetectorNodeHasNoOwner() {
	n := graph.NewDetectorNode()
	require.False(s.T(), n.RegionThatArrived.Valid())
	require.False(s.T(), n.RegionThatArrivedTop.Valid())
}

func (s *DetectorNodeSuite) TestLocalRadiusIsZeroWhenUnowned() {
	n := graph.NewDetectorNode()
	require.Equal(s.T(), int64(0), n.LocalRadius(nil).AtTime(0))
}

func (s *DetectorNodeSuite) TestLocalRadiusFollowsTopRegion() {
	regions := []graph.FillRegion{{Radius: core.Frozen(5)}}
	n := graph.NewDetectorNode()
	n.RegionThatArrivedTop = 0
	n.WrappedRadiusCached = 2
	require.Equal(s.T(), int64(7), n.LocalRadius(regions).AtTime(0))
}

func (s *DetectorNodeSuite) TestHasSameOwnerAsComparesTopRegion() {
	a := graph.NewDetectorNode()
	b := graph.NewDetectorNode()
	a.RegionThatArrivedTop = 3
	b.RegionThatArrivedTop = 3
	require.True(s.T(), a.HasSameOwnerAs(&b))

	b.RegionThatArrivedTop = 4
	require.False(s.T(), a.HasSameOwnerAs(&b))
}

func (s *DetectorNodeSuite) TestResetClearsEphemeralStateOnly() {
	n := graph.NewDetectorNode()
	n.RegionThatArrived = 1
	n.RegionThatArrivedTop = 1
	n.ObservablesCrossed = 5
	n.Neighbors = []core.NodeIdx{1, 2}

	n.Reset()
	require.False(s.T(), n.RegionThatArrived.Valid())
	require.Equal(s.T(), core.ObsMask(0), n.ObservablesCrossed)
	require.Equal(s.T(), []core.NodeIdx{1, 2}, n.Neighbors, "permanent structure must survive Reset")
}

func TestDetectorNodeSuite(t *testing.T) {
	suite.Run(t, new(DetectorNodeSuite))
}
