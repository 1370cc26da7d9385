// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is read by HTTP handlers and feeds heartbeat and lifecycle snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/gesture"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip          string
	Pin           int
	ActiveLow     bool
	PollMs        int64
	DebounceMs    int64
	HoldCutoffMs  int64
	DoubleClickMs int64
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
	WSBroker      string // Websocket broker URL for browser MQTT (empty = disabled)
}

// GestureCounts tracks the number of each gesture since startup.
type GestureCounts struct {
	Click                   int
	DoubleClick             int
	LongPress               int
	ClickAndLongPress       int
	DoubleClickAndLongPress int
	Release                 int
}

// Total returns the number of gestures recognized since startup.
func (c GestureCounts) Total() int {
	return c.Click + c.DoubleClick + c.LongPress +
		c.ClickAndLongPress + c.DoubleClickAndLongPress + c.Release
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    GestureCounts
}

// Record is one recognized gesture kept in the recent history.
type Record struct {
	Time    time.Time
	Gesture gesture.Gesture
	HeldMs  uint32
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Pressed       bool
	LastGesture   gesture.Gesture
	LastGestureAt time.Time
	Counts        GestureCounts
	History       []Record // newest first
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	history       *historyRing
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		history:       newHistoryRing(HistorySize),
		lastHeartbeat: startTime,
	}
}

// SetPressed records the debounced button state.
// Called from runLoop on every tick.
func (t *Tracker) SetPressed(pressed bool) {
	t.mu.Lock()
	t.snap.Pressed = pressed
	t.mu.Unlock()
}

// RecordGesture notes a recognized gesture for counts and history.
// None is ignored.
func (t *Tracker) RecordGesture(g gesture.Gesture, at time.Time, heldMs uint32) {
	if g == gesture.None {
		return
	}

	t.mu.Lock()
	t.snap.LastGesture = g
	t.snap.LastGestureAt = at
	switch g {
	case gesture.Click:
		t.snap.Counts.Click++
	case gesture.DoubleClick:
		t.snap.Counts.DoubleClick++
	case gesture.LongPress:
		t.snap.Counts.LongPress++
	case gesture.ClickAndLongPress:
		t.snap.Counts.ClickAndLongPress++
	case gesture.DoubleClickAndLongPress:
		t.snap.Counts.DoubleClickAndLongPress++
	case gesture.Release:
		t.snap.Counts.Release++
	}
	t.history.add(Record{Time: at, Gesture: g, HeldMs: heldMs})
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.History = t.history.newestFirst()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed, or if interval is <= 0 (disabled).
func (t *Tracker) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastHeartbeat) < interval {
		return nil
	}

	t.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(t.snap.StartTime),
		Counts:    t.snap.Counts,
	}
}
