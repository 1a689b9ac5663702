// Package timewin provides the shared windowing primitives used by all
// detectors: fixed-interval bucket flooring and look-back range checks.
package timewin

import "time"

// BucketFloor truncates t to the start of its containing fixed interval.
func BucketFloor(t time.Time, granularity time.Duration) time.Time {
	return t.Truncate(granularity)
}

// InLookback reports whether candidate happened strictly before anchor and
// within the given window of it.
func InLookback(anchor time.Time, window time.Duration, candidate time.Time) bool {
	return candidate.Before(anchor) && anchor.Sub(candidate) < window
}

// InRange reports whether t falls in the half-open interval [from, to).
func InRange(from, to, t time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
