// Package gesture turns a noisy, polled push-button signal into discrete
// input gestures: clicks, double clicks, long presses, and the composite
// forms of a long press that follows one or two clicks.
// This package has NO external dependencies (no GPIO, MQTT, OS, or clocks).
// Time is always supplied by the caller as uint32 millisecond ticks.
package gesture

// Gesture is a classified button input recognized by the Engine.
type Gesture uint8

const (
	None Gesture = iota
	Click
	DoubleClick
	LongPress
	ClickAndLongPress
	DoubleClickAndLongPress
	Release
)

// String returns a human-readable label for the gesture. Values outside
// the defined set map to "unknown".
func (g Gesture) String() string {
	switch g {
	case None:
		return "none"
	case Click:
		return "click"
	case DoubleClick:
		return "double click"
	case LongPress:
		return "long press"
	case ClickAndLongPress:
		return "click and long press"
	case DoubleClickAndLongPress:
		return "double click and long press"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Default timing values, in milliseconds.
const (
	// DefaultDebounceMs is how long a raw reading must hold steady before
	// the debounced state changes.
	DefaultDebounceMs uint32 = 20

	// DefaultHoldCutoffMs separates a click from a hold: a press shorter
	// than the cutoff is a click, a longer one is a long press.
	DefaultHoldCutoffMs uint32 = 150

	// DefaultDoubleClickMs is the longest gap after a release within which
	// a second press still counts toward a double click.
	DefaultDoubleClickMs uint32 = 150
)

// Timing holds the three recognition windows. HoldCutoffMs and
// DoubleClickMs share a default but are independent knobs; tuning one
// must not move the other.
type Timing struct {
	DebounceMs    uint32
	HoldCutoffMs  uint32
	DoubleClickMs uint32
}

// DefaultTiming returns the stock windows.
func DefaultTiming() Timing {
	return Timing{
		DebounceMs:    DefaultDebounceMs,
		HoldCutoffMs:  DefaultHoldCutoffMs,
		DoubleClickMs: DefaultDoubleClickMs,
	}
}

// phase tracks how many press/release cycles are pending classification.
// The *Pending phases are the ones for which no gesture has been delivered
// yet; idle and pressed are settled.
type phase uint8

const (
	idle phase = iota
	pressed
	pressPending
	clickPending
	clickPressPending
	doubleClickPending
	doubleClickPressPending
)
