package decoder_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/decoder"
)

// DEMSuite exercises detector error model text parsing.
type DEMSuite struct {
	suite.Suite
}

func (s *DEMSuite) TestSingleErrorLineAddsEdge() {
	dem := "error(0.1) D0 D1 L0\n"
	m, err := decoder.FromDEM(dem)
	require.NoError(s.T(), err)

	predictions, err := m.Decode([]byte{1, 1})
	require.NoError(s.T(), err)
	require.Equal(s.T(), []byte{1}, predictions)
}

func (s *DEMSuite) TestBoundaryErrorLineAddsBoundaryEdge() {
	dem := "error(0.2) D0 L0\n"
	m, err := decoder.FromDEM(dem)
	require.NoError(s.T(), err)

	predictions, err := m.Decode([]byte{1})
	require.NoError(s.T(), err)
	require.Equal(s.T(), []byte{1}, predictions)
}

func (s *DEMSuite) TestCommentsAndBlankLinesAreIgnored() {
	dem := "# a comment\n\nerror(0.1) D0 D1\n\n# trailing\n"
	m, err := decoder.FromDEM(dem)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, m.NumNodes())
}

func (s *DEMSuite) TestCorrelatedSeparatorIsDropped() {
	dem := "error(0.1) D0 D1 L0 ^ D2 D3\n"
	m, err := decoder.FromDEM(dem)
	require.NoError(s.T(), err)
	// Only D0/D1/L0 should have been consumed; D2/D3 come from the
	// dropped correlated-error tail and must not create extra nodes.
	require.Equal(s.T(), 2, m.NumNodes())
}

func (s *DEMSuite) TestRepeatBlockShiftsDetectorIndicesPerIteration() {
	dem := "repeat 3 {\n  error(0.1) D0 D1\n}\n"
	m, err := decoder.FromDEM(dem)
	require.NoError(s.T(), err)
	// 3 iterations of a 2-detector body, shifted by 2 each time: D0..D5.
	require.Equal(s.T(), 6, m.NumNodes())
}

func (s *DEMSuite) TestExplicitShiftDetectorsOverridesInferredShift() {
	dem := "repeat 2 {\n  error(0.1) D0 D1\n  shift_detectors 4\n}\n"
	m, err := decoder.FromDEM(dem)
	require.NoError(s.T(), err)
	// iteration 0: D0,D1; iteration 1 offset by 4: D4,D5 -> max index 5 -> 6 nodes.
	require.Equal(s.T(), 6, m.NumNodes())
}

func (s *DEMSuite) TestMalformedProbabilityReturnsError() {
	dem := "error(oops) D0 D1\n"
	_, err := decoder.FromDEM(dem)
	require.Error(s.T(), err)
}

func TestDEMSuite(t *testing.T) {
	suite.Run(t, new(DEMSuite))
}
