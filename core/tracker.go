package core

// QueuedEventTracker deduplicates wake-ups for a single node or region:
// it remembers the time of the event currently sitting in the queue for
// this owner (if any) and the time the owner actually wants to be woken
// at, so that a newly-discovered earlier event can preempt a stale later
// one without ever enqueuing more than one live event per owner.
type QueuedEventTracker struct {
	DesiredTime    CyclicTime
	QueuedTime     CyclicTime
	HasDesiredTime bool
	HasQueuedTime  bool
}

// Clear drops both desired and queued state, as when a node or region is
// reset between decodes.
func (t *QueuedEventTracker) Clear() {
	t.HasDesiredTime = false
	t.HasQueuedTime = false
}

// SetDesiredEvent records that event is when the owner next wants to be
// woken. It enqueues event only if nothing is queued yet or the new
// event is earlier than what's already queued.
func SetDesiredEvent[E HasTime](t *QueuedEventTracker, event E, queue *RadixQueue[E]) {
	t.HasDesiredTime = true
	t.DesiredTime = event.Time()
	if !t.HasQueuedTime || t.QueuedTime > event.Time() {
		t.QueuedTime = event.Time()
		t.HasQueuedTime = true
		queue.Enqueue(event)
	}
}

// SetNoDesiredEvent records that the owner no longer wants to be woken,
// without touching whatever is still sitting in the queue.
func (t *QueuedEventTracker) SetNoDesiredEvent() {
	t.HasDesiredTime = false
}

// DequeueDecision is called when event has just come out of the queue.
// It returns whether this event is still the live one the owner wants
// processed now; if the owner's desired time has since moved, it
// re-enqueues at the new time (via makeEvent) and returns false.
func DequeueDecision[E HasTime](t *QueuedEventTracker, event E, queue *RadixQueue[E], makeEvent func(CyclicTime) E) bool {
	if !t.HasQueuedTime || t.QueuedTime != event.Time() {
		return false // stale: a different event already superseded this one
	}
	t.HasQueuedTime = false

	if !t.HasDesiredTime {
		return false // owner no longer wants any event
	}

	if t.DesiredTime != event.Time() {
		newEvent := makeEvent(t.DesiredTime)
		t.QueuedTime = t.DesiredTime
		t.HasQueuedTime = true
		queue.Enqueue(newEvent)
		return false
	}

	t.HasDesiredTime = false
	return true
}
