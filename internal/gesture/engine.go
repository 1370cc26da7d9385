package gesture

// Engine recognizes gestures from a stream of raw level samples.
// It is a pure state machine: all inputs (including time) are passed in,
// and outputs are returned. No goroutines, no channels, no clocks.
//
// Call Step with every fresh sample. Recognition windows only close when
// Step runs, so the sample period should be well under DebounceMs or the
// engine cannot tell a bounce from a press. Timestamps wrap naturally at
// the uint32 boundary (about 49.7 days); all internal arithmetic is
// wrap-safe as long as consecutive calls are less than half the uint32
// range apart.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	pressedLevel bool
	timing       Timing

	// Raw edge tracking. rawChangeMs restarts on every raw flip so a
	// bouncing contact keeps pushing its own confirmation out.
	prevRaw     bool
	rawChangeMs uint32

	// Debounced state. lastChangeMs and prevChangeMs mark the two most
	// recent confirmed flips and drive every recognition window.
	debounced    bool
	phase        phase
	lastChangeMs uint32
	prevChangeMs uint32
}

// New returns an Engine with stock timing. pressedLevel is the raw level
// a pressed button reads as: true for a pull-down wired button, false for
// the usual pull-up wiring where pressing shorts the line to ground.
func New(pressedLevel bool) *Engine {
	return NewWithTiming(pressedLevel, DefaultTiming())
}

// NewWithTiming returns an Engine with custom recognition windows.
// Zero fields in t fall back to the defaults.
func NewWithTiming(pressedLevel bool, t Timing) *Engine {
	if t.DebounceMs == 0 {
		t.DebounceMs = DefaultDebounceMs
	}
	if t.HoldCutoffMs == 0 {
		t.HoldCutoffMs = DefaultHoldCutoffMs
	}
	if t.DoubleClickMs == 0 {
		t.DoubleClickMs = DefaultDoubleClickMs
	}
	return &Engine{pressedLevel: pressedLevel, timing: t}
}

// Step feeds one raw sample taken at nowMs and returns the gesture it
// completes, or None. Most calls return None; a multi-press gesture is
// reported exactly once, on the sample that settles it.
//
// A long press is reported while the button is still down, as soon as the
// hold cutoff passes. Release is reported only after a long press; the
// release that ends a click is part of the click itself.
func (e *Engine) Step(raw bool, nowMs uint32) Gesture {
	if !e.pressedLevel {
		raw = !raw
	}

	if raw != e.prevRaw {
		// Raw edge. Could be a real press or contact bounce; restart the
		// debounce window and wait for it to hold.
		e.prevRaw = raw
		e.rawChangeMs = nowMs
		return None
	}

	if raw != e.debounced {
		if nowMs-e.rawChangeMs < e.timing.DebounceMs {
			return None
		}
		// Held steady long enough: a confirmed flip.
		g := e.flip()
		e.debounced = raw
		e.prevChangeMs = e.lastChangeMs
		e.lastChangeMs = nowMs
		return g
	}

	return e.timeout(nowMs)
}

// flip advances the phase on a confirmed press or release edge.
func (e *Engine) flip() Gesture {
	switch e.phase {
	case idle:
		e.phase = pressPending
	case pressed:
		e.phase = idle
		return Release
	case pressPending:
		e.phase = clickPending
	case clickPending:
		e.phase = clickPressPending
	case clickPressPending:
		e.phase = doubleClickPending
	case doubleClickPending:
		e.phase = doubleClickPressPending
	case doubleClickPressPending:
		// A third press arrived before the double click settled. Report
		// the double click now and let the new press start a fresh cycle.
		e.phase = clickPending
		return DoubleClick
	}
	return None
}

// timeout settles a pending phase once its recognition window closes
// with no further edges.
func (e *Engine) timeout(nowMs uint32) Gesture {
	held := e.Duration(nowMs)
	switch e.phase {
	case clickPending:
		if held > e.timing.DoubleClickMs {
			e.phase = idle
			return Click
		}
	case pressPending:
		if held >= e.timing.HoldCutoffMs {
			e.phase = pressed
			return LongPress
		}
	case clickPressPending:
		if held >= e.timing.HoldCutoffMs {
			e.phase = pressed
			return ClickAndLongPress
		}
	case doubleClickPending:
		if held >= e.timing.HoldCutoffMs {
			e.phase = idle
			return DoubleClick
		}
	case doubleClickPressPending:
		if held >= e.timing.HoldCutoffMs {
			e.phase = pressed
			return DoubleClickAndLongPress
		}
	}
	return None
}

// Pressed reports the debounced button state: true from the moment a
// press is confirmed until its release is confirmed.
func (e *Engine) Pressed() bool {
	return e.debounced
}

// Duration returns the milliseconds elapsed at nowMs since the last
// confirmed flip. The subtraction wraps, so it stays correct across the
// uint32 rollover.
func (e *Engine) Duration(nowMs uint32) uint32 {
	return nowMs - e.lastChangeMs
}

// PrevDuration returns the milliseconds between the two most recent
// confirmed flips: while the button is down this is the gap that preceded
// the press, and right after a release it is how long the press lasted.
func (e *Engine) PrevDuration() uint32 {
	return e.lastChangeMs - e.prevChangeMs
}

// ResetDuration rebases both flip timestamps to zero without touching the
// debounced state or any pending recognition.
func (e *Engine) ResetDuration() {
	e.lastChangeMs = 0
	e.prevChangeMs = 0
}
