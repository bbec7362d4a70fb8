// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts reading the current time for testability.
// Production code injects Real(); tests inject Fake() and move time
// explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Throttle admits at most one event per interval. It is not safe for
// concurrent use.
type Throttle struct {
	clock    Clock
	interval time.Duration
	last     time.Time
	started  bool
}

// NewThrottle returns a Throttle that admits its first event
// immediately. A non-positive interval admits every event.
func NewThrottle(clock Clock, interval time.Duration) *Throttle {
	return &Throttle{clock: clock, interval: interval}
}

// Ready reports whether an event may happen now and, if so, starts a
// new interval.
func (t *Throttle) Ready() bool {
	now := t.clock.Now()
	if t.started && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.started = true
	return true
}
