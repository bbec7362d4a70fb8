// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAndAdvance(t *testing.T) {
	c := Fake(epoch)
	if !c.Now().Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", c.Now(), epoch)
	}

	c.Advance(5 * time.Second)
	if want := epoch.Add(5 * time.Second); !c.Now().Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", c.Now(), want)
	}

	c.Set(epoch.Add(-time.Hour))
	if want := epoch.Add(-time.Hour); !c.Now().Equal(want) {
		t.Errorf("after Set, Now() = %v, want %v", c.Now(), want)
	}
}

func TestFakeConcurrentAdvance(t *testing.T) {
	c := Fake(epoch)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Second)
		}()
	}
	wg.Wait()
	if want := epoch.Add(10 * time.Second); !c.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", c.Now(), want)
	}
}

func TestThrottle(t *testing.T) {
	c := Fake(epoch)
	throttle := NewThrottle(c, 250*time.Millisecond)

	steps := []struct {
		advance time.Duration
		want    bool
	}{
		{0, true},
		{0, false},
		{100 * time.Millisecond, false},
		{149 * time.Millisecond, false},
		{1 * time.Millisecond, true},
		{249 * time.Millisecond, false},
		{time.Second, true},
	}
	for i, step := range steps {
		c.Advance(step.advance)
		if got := throttle.Ready(); got != step.want {
			t.Errorf("step %d: Ready() = %v, want %v", i, got, step.want)
		}
	}
}

func TestThrottleZeroInterval(t *testing.T) {
	throttle := NewThrottle(Fake(epoch), 0)
	for i := range 3 {
		if !throttle.Ready() {
			t.Errorf("call %d: Ready() = false with zero interval", i)
		}
	}
}

func TestThrottleClockMovesBackward(t *testing.T) {
	c := Fake(epoch)
	throttle := NewThrottle(c, time.Second)
	throttle.Ready()

	c.Set(epoch.Add(-time.Minute))
	if throttle.Ready() {
		t.Error("Ready() = true after the clock moved backward")
	}
}
