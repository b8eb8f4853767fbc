package matcher

import "errors"

// ErrInvariantViolation is recovered from a panic raised when the
// matching process reaches a state the blossom algorithm's invariants
// say is unreachable (a malformed detector error model, or a bug in the
// decoder itself). Decode wraps any panic carrying this sentinel into a
// returned error instead of crashing the caller.
var ErrInvariantViolation = errors.New("matcher: invariant violation")
