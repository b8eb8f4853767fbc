package core

// Varying is a bit-packed, time-linear integer value: a y-intercept plus
// a slope in {frozen, growing, shrinking}. It models the radius of a
// growing or shrinking fill region, or the distance a wavefront has
// travelled, as a function of the flooder's monotonic CumulativeTime.
//
// The bottom 2 bits of the packed value encode the slope:
//
//	00 frozen   (slope 0)
//	01 growing  (slope +1)
//	10 shrinking (slope -1)
//
// the remaining bits (value >> 2) encode the y-intercept. Packing keeps
// Varying a single comparable int64 rather than a two-field struct; the
// flooder's hot loop calls YIntercept/IsGrowing on it millions of times
// per decode, so a single machine word pays off.
type Varying int64

const (
	slopeFrozen    int64 = 0
	slopeGrowing   int64 = 1
	slopeShrinking int64 = 2
	slopeMask      int64 = 3
)

// Frozen returns a Varying with the given constant value and zero slope.
func Frozen(base int64) Varying {
	return Varying(base << 2)
}

// GrowingWithZeroDistanceAtTime returns a Varying that is growing and
// equals zero at the given time.
func GrowingWithZeroDistanceAtTime(time CumulativeTime) Varying {
	return Varying((-time)<<2 | slopeGrowing)
}

// YIntercept returns the packed y-intercept (the value this Varying
// would have at time 0, extended by its current slope).
func (v Varying) YIntercept() int64 {
	return int64(v) >> 2
}

// IsGrowing reports whether v has slope +1.
func (v Varying) IsGrowing() bool {
	return int64(v)&slopeMask == slopeGrowing
}

// IsShrinking reports whether v has slope -1.
func (v Varying) IsShrinking() bool {
	return int64(v)&slopeMask == slopeShrinking
}

// IsFrozen reports whether v has slope 0.
func (v Varying) IsFrozen() bool {
	return int64(v)&slopeMask == slopeFrozen
}

// AtTime evaluates the linear function at the given time.
func (v Varying) AtTime(time CumulativeTime) int64 {
	switch {
	case v.IsGrowing():
		return v.YIntercept() + time
	case v.IsShrinking():
		return v.YIntercept() - time
	default:
		return v.YIntercept()
	}
}

// TimeOfXIntercept returns the time at which v reaches zero. Panics if v
// is frozen, since a frozen value never crosses zero (except trivially).
func (v Varying) TimeOfXIntercept() CumulativeTime {
	switch {
	case v.IsGrowing():
		return -v.YIntercept()
	case v.IsShrinking():
		return v.YIntercept()
	default:
		panic("core: frozen varying has no x-intercept")
	}
}

// TimeOfXInterceptWhenAddedTo returns the time at which v+other == 0,
// i.e. the collision time of two wavefronts travelling towards each other.
func (v Varying) TimeOfXInterceptWhenAddedTo(other Varying) CumulativeTime {
	negSum := -v.YIntercept() - other.YIntercept()
	if v.IsGrowing() && other.IsGrowing() {
		return negSum >> 1 // combined slope 2
	}
	return negSum // combined slope 1 (one side frozen)
}

// CollidingWith reports whether at least one of v, other is growing and
// neither is shrinking (i.e. the pair is approaching).
func (v Varying) CollidingWith(other Varying) bool {
	return (int64(v)|int64(other))&slopeMask == slopeGrowing
}

// ThenGrowingAtTime returns v switched to growing, preserving continuity
// at the given time.
func (v Varying) ThenGrowingAtTime(time CumulativeTime) Varying {
	return Varying((v.AtTime(time)-time)<<2 | slopeGrowing)
}

// ThenShrinkingAtTime returns v switched to shrinking, preserving
// continuity at the given time.
func (v Varying) ThenShrinkingAtTime(time CumulativeTime) Varying {
	return Varying((v.AtTime(time)+time)<<2 | slopeShrinking)
}

// ThenFrozenAtTime returns v switched to frozen, preserving continuity at
// the given time.
func (v Varying) ThenFrozenAtTime(time CumulativeTime) Varying {
	return Varying(v.AtTime(time) << 2)
}

// Add shifts the y-intercept by a constant offset, leaving the slope
// unchanged.
func (v Varying) Add(delta int64) Varying {
	return Varying(int64(v) + delta<<2)
}

// Sub shifts the y-intercept by a negative constant offset, leaving the
// slope unchanged.
func (v Varying) Sub(delta int64) Varying {
	return Varying(int64(v) - delta<<2)
}
