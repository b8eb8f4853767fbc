package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/sparseblossom/core"
)

// TrackerSuite exercises QueuedEventTracker's dedup/staleness logic.
type TrackerSuite struct {
	suite.Suite
}

func (s *TrackerSuite) TestSetDesiredEventEnqueuesWhenNothingQueued() {
	q := core.NewRadixQueue[queueTestEvent]()
	var t core.QueuedEventTracker
	core.SetDesiredEvent(&t, ev(10), q)
	require.Equal(s.T(), 1, q.Len())
	require.True(s.T(), t.HasDesiredTime)
	require.True(s.T(), t.HasQueuedTime)
}

func (s *TrackerSuite) TestSetDesiredEventSkipsEnqueueWhenLater() {
	q := core.NewRadixQueue[queueTestEvent]()
	var t core.QueuedEventTracker
	core.SetDesiredEvent(&t, ev(5), q)
	core.SetDesiredEvent(&t, ev(10), q) // later than what's queued: no second enqueue
	require.Equal(s.T(), 1, q.Len())
	require.Equal(s.T(), core.CyclicTime(10), t.DesiredTime)
}

func (s *TrackerSuite) TestSetDesiredEventPreemptsWithEarlierEvent() {
	q := core.NewRadixQueue[queueTestEvent]()
	var t core.QueuedEventTracker
	core.SetDesiredEvent(&t, ev(10), q)
	core.SetDesiredEvent(&t, ev(3), q) // earlier: enqueues again
	require.Equal(s.T(), 2, q.Len())
	require.Equal(s.T(), core.CyclicTime(3), t.QueuedTime)
}

func (s *TrackerSuite) TestDequeueDecisionAcceptsLiveEvent() {
	q := core.NewRadixQueue[queueTestEvent]()
	var t core.QueuedEventTracker
	e := ev(10)
	core.SetDesiredEvent(&t, e, q)
	dequeued := q.Dequeue()

	live := core.DequeueDecision(&t, dequeued, q, func(at core.CyclicTime) queueTestEvent { return ev(uint32(at)) })
	require.True(s.T(), live)
	require.False(s.T(), t.HasDesiredTime)
}

func (s *TrackerSuite) TestDequeueDecisionRejectsStaleEvent() {
	q := core.NewRadixQueue[queueTestEvent]()
	var t core.QueuedEventTracker
	core.SetDesiredEvent(&t, ev(10), q)
	core.SetDesiredEvent(&t, ev(3), q) // preempts: queued event becomes stale at t=10

	stale := q.Dequeue() // time 3, the live one
	require.Equal(s.T(), core.CyclicTime(3), stale.Time())

	// The superseded event at t=10 no longer matches the tracker's queued time (3).
	decision := core.DequeueDecision(&t, ev(10), q, func(at core.CyclicTime) queueTestEvent { return ev(uint32(at)) })
	require.False(s.T(), decision)
}

func (s *TrackerSuite) TestDequeueDecisionReenqueuesWhenDesiredTimeMoved() {
	q := core.NewRadixQueue[queueTestEvent]()
	t := core.QueuedEventTracker{HasQueuedTime: true, QueuedTime: 10, HasDesiredTime: true, DesiredTime: 20}
	decision := core.DequeueDecision(&t, ev(10), q, func(at core.CyclicTime) queueTestEvent { return ev(uint32(at)) })
	require.False(s.T(), decision)
	require.Equal(s.T(), 1, q.Len())
	requeued := q.Dequeue()
	require.Equal(s.T(), core.CyclicTime(20), requeued.Time())
}

func (s *TrackerSuite) TestClearDropsBothStates() {
	t := core.QueuedEventTracker{HasQueuedTime: true, HasDesiredTime: true}
	t.Clear()
	require.False(s.T(), t.HasQueuedTime)
	require.False(s.T(), t.HasDesiredTime)
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}
