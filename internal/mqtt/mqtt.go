// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-sensor/internal/gesture"
)

// Topic is the MQTT topic for button gesture events.
const Topic = "input/button/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "input/button/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a gesture event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event represents a recognized gesture ready for publishing.
type Event struct {
	Timestamp time.Time
	Gesture   gesture.Gesture
	Pressed   bool   // debounced state when the gesture fired
	HeldMs    uint32 // how long the press behind the gesture lasted, or has lasted so far
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string         // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string         // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config     *SystemConfig  // effective settings (startup only)
	Heartbeat  *HeartbeatInfo // uptime and tallies (heartbeat only)
	Network    *NetworkInfo   // host network details, if known
	RawPayload []byte         // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool           // Whether the message should be retained by the broker
}

// SystemConfig is the effective runtime configuration announced at startup.
type SystemConfig struct {
	PollMs        uint32 `json:"poll_ms"`
	DebounceMs    uint32 `json:"debounce_ms"`
	HoldCutoffMs  uint32 `json:"hold_cutoff_ms"`
	DoubleClickMs uint32 `json:"double_click_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
}

// HeartbeatInfo carries liveness details for periodic heartbeat events.
type HeartbeatInfo struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	GestureCounts HeartbeatCounts `json:"gesture_counts"`
}

// HeartbeatCounts tallies gestures recognized since startup.
type HeartbeatCounts struct {
	Click                   int `json:"click"`
	DoubleClick             int `json:"double_click"`
	LongPress               int `json:"long_press"`
	ClickAndLongPress       int `json:"click_and_long_press"`
	DoubleClickAndLongPress int `json:"double_click_and_long_press"`
	Release                 int `json:"release"`
}

// NetworkInfo describes the host's network connection.
type NetworkInfo struct {
	Type       string `json:"type"`                  // "wifi" or "ethernet"
	IP         string `json:"ip"`                    // local IP address
	Status     string `json:"status"`                // "connected" or "disconnected"
	Gateway    string `json:"gateway,omitempty"`     // default gateway IP
	WifiStatus string `json:"wifi_status,omitempty"` // wifi link status
	SSID       string `json:"ssid,omitempty"`        // wifi network name
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the gesture event details.
type ButtonPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Pressed   bool   `json:"pressed"`
	HeldMs    uint32 `json:"held_ms"`
}

// eventName maps a gesture to its wire name on the events topic.
func eventName(g gesture.Gesture) string {
	switch g {
	case gesture.None:
		return "NONE"
	case gesture.Click:
		return "CLICK"
	case gesture.DoubleClick:
		return "DOUBLE_CLICK"
	case gesture.LongPress:
		return "LONG_PRESS"
	case gesture.ClickAndLongPress:
		return "CLICK_AND_LONG_PRESS"
	case gesture.DoubleClickAndLongPress:
		return "DOUBLE_CLICK_AND_LONG_PRESS"
	case gesture.Release:
		return "RELEASE"
	default:
		return "UNKNOWN"
	}
}

// FormatPayload creates the JSON payload for a gesture event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     eventName(event.Gesture),
			Pressed:   event.Pressed,
			HeldMs:    event.HeldMs,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Config    *SystemConfig  `json:"config,omitempty"`
	Heartbeat *HeartbeatInfo `json:"heartbeat,omitempty"`
	Network   *NetworkInfo   `json:"network,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
			Heartbeat: event.Heartbeat,
			Network:   event.Network,
		},
	}
	return json.Marshal(payload)
}
