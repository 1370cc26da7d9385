package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Pressed       bool          `json:"pressed"`
	LastGesture   string        `json:"last_gesture"`
	LastGestureAt string        `json:"last_gesture_at,omitempty"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"gesture_counts"`
	History       []HistoryJSON `json:"history,omitempty"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of gesture counts.
type CountsJSON struct {
	Click                   int `json:"click"`
	DoubleClick             int `json:"double_click"`
	LongPress               int `json:"long_press"`
	ClickAndLongPress       int `json:"click_and_long_press"`
	DoubleClickAndLongPress int `json:"double_click_and_long_press"`
	Release                 int `json:"release"`
}

// HistoryJSON is the JSON representation of one recent gesture.
type HistoryJSON struct {
	Time    string `json:"time"`
	Gesture string `json:"gesture"`
	HeldMs  uint32 `json:"held_ms"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip          string `json:"chip"`
	Pin           int    `json:"pin"`
	ActiveLow     bool   `json:"active_low"`
	PollMs        int64  `json:"poll_ms"`
	DebounceMs    int64  `json:"debounce_ms"`
	HoldCutoffMs  int64  `json:"hold_cutoff_ms"`
	DoubleClickMs int64  `json:"double_click_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	WSBroker      string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	var lastAt string
	if !snap.LastGestureAt.IsZero() {
		lastAt = snap.LastGestureAt.UTC().Format(time.RFC3339)
	}

	history := make([]HistoryJSON, 0, len(snap.History))
	for _, rec := range snap.History {
		history = append(history, HistoryJSON{
			Time:    rec.Time.UTC().Format(time.RFC3339),
			Gesture: rec.Gesture.String(),
			HeldMs:  rec.HeldMs,
		})
	}

	return StatusInner{
		Pressed:       snap.Pressed,
		LastGesture:   snap.LastGesture.String(),
		LastGestureAt: lastAt,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Click:                   snap.Counts.Click,
			DoubleClick:             snap.Counts.DoubleClick,
			LongPress:               snap.Counts.LongPress,
			ClickAndLongPress:       snap.Counts.ClickAndLongPress,
			DoubleClickAndLongPress: snap.Counts.DoubleClickAndLongPress,
			Release:                 snap.Counts.Release,
		},
		History: history,
		Config: ConfigJSON{
			Chip:          snap.Config.Chip,
			Pin:           snap.Config.Pin,
			ActiveLow:     snap.Config.ActiveLow,
			PollMs:        snap.Config.PollMs,
			DebounceMs:    snap.Config.DebounceMs,
			HoldCutoffMs:  snap.Config.HoldCutoffMs,
			DoubleClickMs: snap.Config.DoubleClickMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			WSBroker:      snap.Config.WSBroker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
