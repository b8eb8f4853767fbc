package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
)

// TypesSuite exercises the index sentinel conventions.
type TypesSuite struct {
	suite.Suite
}

func (s *TypesSuite) TestNoneIsInvalid() {
	require.False(s.T(), core.NodeIdx(core.None).Valid())
	require.False(s.T(), core.RegionIdx(core.None).Valid())
	require.False(s.T(), core.AltTreeIdx(core.None).Valid())
	require.False(s.T(), core.SearchNodeIdx(core.None).Valid())
}

func (s *TypesSuite) TestNonNegativeIndexIsValid() {
	require.True(s.T(), core.NodeIdx(0).Valid())
	require.True(s.T(), core.RegionIdx(5).Valid())
}

func (s *TypesSuite) TestBoundaryNodeDistinctFromNone() {
	require.NotEqual(s.T(), core.NodeIdx(core.None), core.BoundaryNode)
	require.False(s.T(), core.BoundaryNode.Valid())
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesSuite))
}
