// Package config loads the daemon configuration from an optional TOML file.
// Defaults match a push button wired between a Raspberry Pi GPIO line and
// ground (internal pull-up, active low). Command-line flags override file
// values; the merge happens in main.
package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config holds the complete daemon configuration.
type Config struct {
	Button  ButtonConfig  `toml:"button"`
	Timing  TimingConfig  `toml:"timing"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	HTTP    HTTPConfig    `toml:"http"`
	HomeKit HomeKitConfig `toml:"homekit"`
	System  SystemConfig  `toml:"system"`
}

// ButtonConfig describes the GPIO line the button is wired to.
type ButtonConfig struct {
	Chip      string `toml:"chip"`
	Pin       int    `toml:"pin"`
	ActiveLow bool   `toml:"active_low"`
}

// TimingConfig holds the poll and recognition intervals in milliseconds.
type TimingConfig struct {
	PollMs        int64 `toml:"poll_ms"`
	DebounceMs    int64 `toml:"debounce_ms"`
	HoldCutoffMs  int64 `toml:"hold_cutoff_ms"`
	DoubleClickMs int64 `toml:"double_click_ms"`
}

// MQTTConfig holds broker addresses. WSBroker is the websocket URL handed
// to the status page for live updates: empty disables it, "=broker" derives
// it from the broker host.
type MQTTConfig struct {
	Broker   string `toml:"broker"`
	WSBroker string `toml:"ws_broker"`
}

// HTTPConfig holds the status server listen address. An empty address
// disables the server.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// HomeKitConfig holds the HomeKit bridge settings. An empty pin disables
// the bridge.
type HomeKitConfig struct {
	Pin        string `toml:"pin"`
	StorageDir string `toml:"storage_dir"`
}

// SystemConfig holds lifecycle settings. HeartbeatMs of 0 disables the
// periodic heartbeat.
type SystemConfig struct {
	HeartbeatMs int64 `toml:"heartbeat_ms"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Button: ButtonConfig{
			Chip:      "gpiochip0",
			Pin:       17,
			ActiveLow: true,
		},
		Timing: TimingConfig{
			PollMs:        5,
			DebounceMs:    20,
			HoldCutoffMs:  150,
			DoubleClickMs: 150,
		},
		MQTT: MQTTConfig{
			Broker: "tcp://192.168.1.200:1883",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		HomeKit: HomeKitConfig{
			StorageDir: "./homekit",
		},
		System: SystemConfig{
			HeartbeatMs: 15 * 60 * 1000,
		},
	}
}

// Load decodes the TOML file at path over the defaults. Keys absent from
// the file keep their default values. The result is not validated; callers
// validate after merging flag overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

var homekitPinRe = regexp.MustCompile(`^[0-9]{8}$`)

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	if c.Button.Chip == "" {
		return fmt.Errorf("config: button.chip must not be empty")
	}
	if c.Button.Pin < 0 {
		return fmt.Errorf("config: button.pin must not be negative (got %d)", c.Button.Pin)
	}
	for _, v := range []struct {
		name string
		ms   int64
	}{
		{"timing.poll_ms", c.Timing.PollMs},
		{"timing.debounce_ms", c.Timing.DebounceMs},
		{"timing.hold_cutoff_ms", c.Timing.HoldCutoffMs},
		{"timing.double_click_ms", c.Timing.DoubleClickMs},
	} {
		if v.ms <= 0 {
			return fmt.Errorf("config: %s must be positive (got %d)", v.name, v.ms)
		}
		if v.ms > math.MaxUint32 {
			return fmt.Errorf("config: %s too large (got %d)", v.name, v.ms)
		}
	}
	// The poll must run faster than the debounce window or confirmed
	// flips arrive a sample late.
	if c.Timing.PollMs >= c.Timing.DebounceMs {
		return fmt.Errorf("config: timing.poll_ms (%d) must be smaller than timing.debounce_ms (%d)",
			c.Timing.PollMs, c.Timing.DebounceMs)
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("config: mqtt.broker must not be empty")
	}
	if c.HomeKit.Pin != "" && !homekitPinRe.MatchString(c.HomeKit.Pin) {
		return fmt.Errorf("config: homekit.pin must be 8 digits (got %q)", c.HomeKit.Pin)
	}
	if c.System.HeartbeatMs < 0 {
		return fmt.Errorf("config: system.heartbeat_ms must not be negative (got %d)", c.System.HeartbeatMs)
	}
	return nil
}
