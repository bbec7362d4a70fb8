// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/carchive/lib/clock"
)

// progress draws a single status line on a terminal, redrawn in place
// at most once per interval. A disabled progress accepts updates and
// draws nothing.
type progress struct {
	w        io.Writer
	style    lipgloss.Style
	throttle *clock.Throttle
	enabled  bool
	width    int
	drawn    bool
}

func newProgress(w io.Writer, renderer *lipgloss.Renderer, c clock.Clock, enabled bool, interval time.Duration, width int) *progress {
	return &progress{
		w:        w,
		style:    renderer.NewStyle().Foreground(lipgloss.Color("8")),
		throttle: clock.NewThrottle(c, interval),
		enabled:  enabled,
		width:    width,
	}
}

// update redraws the line if the throttle allows. line is only called
// when a redraw happens.
func (p *progress) update(line func() string) {
	if !p.enabled || !p.throttle.Ready() {
		return
	}
	text := p.style.Render(line())
	if p.width > 0 {
		// Leave the last column free so the cursor never wraps.
		text = ansi.Truncate(text, p.width-1, "…")
	}
	io.WriteString(p.w, "\r"+text+"\x1b[K")
	p.drawn = true
}

// clear erases the line so the final report starts on a clean row.
func (p *progress) clear() {
	if !p.drawn {
		return
	}
	io.WriteString(p.w, "\r\x1b[K")
	p.drawn = false
}
