package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
)

type queueTestEvent struct {
	at      core.CyclicTime
	isEvent bool
}

func (e queueTestEvent) Time() core.CyclicTime { return e.at }
func (e queueTestEvent) IsNoEvent() bool        { return !e.isEvent }

func ev(at uint32) queueTestEvent { return queueTestEvent{at: at, isEvent: true} }

// RadixQueueSuite exercises the monotonic radix-heap priority queue.
type RadixQueueSuite struct {
	suite.Suite
}

func (s *RadixQueueSuite) TestDequeueOnEmptyReturnsNoEvent() {
	q := core.NewRadixQueue[queueTestEvent]()
	got := q.Dequeue()
	require.True(s.T(), got.IsNoEvent())
	require.True(s.T(), q.IsEmpty())
}

func (s *RadixQueueSuite) TestDequeueOrdersByNonDecreasingTime() {
	q := core.NewRadixQueue[queueTestEvent]()
	q.Enqueue(ev(30))
	q.Enqueue(ev(10))
	q.Enqueue(ev(20))

	var times []uint32
	for q.Len() > 0 {
		times = append(times, uint32(q.Dequeue().Time()))
	}
	require.Equal(s.T(), []uint32{10, 20, 30}, times)
}

func (s *RadixQueueSuite) TestLenAndIsEmptyTrackQueuedCount() {
	q := core.NewRadixQueue[queueTestEvent]()
	require.Equal(s.T(), 0, q.Len())
	q.Enqueue(ev(1))
	q.Enqueue(ev(2))
	require.Equal(s.T(), 2, q.Len())
	require.False(s.T(), q.IsEmpty())
	q.Dequeue()
	require.Equal(s.T(), 1, q.Len())
}

func (s *RadixQueueSuite) TestClearEmptiesWithoutResettingCurTime() {
	q := core.NewRadixQueue[queueTestEvent]()
	q.Enqueue(ev(100))
	q.Dequeue()
	require.Equal(s.T(), int64(100), q.CurTime)
	q.Enqueue(ev(150))
	q.Clear()
	require.True(s.T(), q.IsEmpty())
	require.Equal(s.T(), int64(100), q.CurTime)
}

func (s *RadixQueueSuite) TestResetRewindsCurTime() {
	q := core.NewRadixQueue[queueTestEvent]()
	q.Enqueue(ev(100))
	q.Dequeue()
	q.Reset()
	require.True(s.T(), q.IsEmpty())
	require.Equal(s.T(), int64(0), q.CurTime)
}

func (s *RadixQueueSuite) TestManyEventsDequeueMonotonically() {
	q := core.NewRadixQueue[queueTestEvent]()
	input := []uint32{5, 500, 1, 1000, 0, 250, 999, 2}
	for _, t := range input {
		q.Enqueue(ev(t))
	}
	var last int64 = -1
	count := 0
	for q.Len() > 0 {
		e := q.Dequeue()
		require.GreaterOrEqual(s.T(), int64(e.Time()), last)
		last = int64(e.Time())
		count++
	}
	require.Equal(s.T(), len(input), count)
}

func TestRadixQueueSuite(t *testing.T) {
	suite.Run(t, new(RadixQueueSuite))
}
