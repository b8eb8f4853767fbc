package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/graph"
)

// ShatterAnchorSuite exercises the blossom-parent-chain walk shared by
// blossom shattering and heir lookup.
type ShatterAnchorSuite struct {
	suite.Suite
}

func (s *ShatterAnchorSuite) TestFindsDirectChild() {
	regions := []graph.FillRegion{
		{BlossomParent: core.RegionIdx(core.None)}, // 0: the blossom itself
		{BlossomParent: 0},                          // 1: direct child
	}
	got := graph.ImmediateChildUnder(regions, 1, 0)
	require.Equal(s.T(), core.RegionIdx(1), got)
}

func (s *ShatterAnchorSuite) TestWalksUpMultipleLevels() {
	regions := []graph.FillRegion{
		{BlossomParent: core.RegionIdx(core.None)}, // 0: blossom
		{BlossomParent: 0},                          // 1: direct child of blossom
		{BlossomParent: 1},                          // 2: grandchild
	}
	got := graph.ImmediateChildUnder(regions, 2, 0)
	require.Equal(s.T(), core.RegionIdx(1), got)
}

func (s *ShatterAnchorSuite) TestReturnsNoneWhenNotOwned() {
	regions := []graph.FillRegion{
		{BlossomParent: core.RegionIdx(core.None)},
		{BlossomParent: core.RegionIdx(core.None)},
	}
	got := graph.ImmediateChildUnder(regions, 1, 0)
	require.False(s.T(), got.Valid())
}

func TestShatterAnchorSuite(t *testing.T) {
	suite.Run(t, new(ShatterAnchorSuite))
}
