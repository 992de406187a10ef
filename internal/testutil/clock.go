// Package testutil provides shared test doubles: scripted upstream sources
// with call counters and a pinned wall clock.
package testutil

import "time"

// FixedClock returns a clock function pinned to the given instant.
//
// Fetcher and cache behavior depends on "the current month" and "today";
// pinning the clock keeps those decisions deterministic across test runs.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
