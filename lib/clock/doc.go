// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Code that reads the current time accepts a [Clock] instead of
// calling time.Now directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a clock that
// moves only when Advance or Set is called.
//
// [Throttle] limits how often something happens, such as redrawing a
// progress line:
//
//	throttle := clock.NewThrottle(clock.Real(), 250*time.Millisecond)
//	for ... {
//	    if throttle.Ready() {
//	        redraw()
//	    }
//	}
package clock
