// Command button-sensor monitors a push button on a GPIO line and publishes
// recognized gestures to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/gesture"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/homekit"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/web"
)

func main() {
	def := config.Default()

	configPath := flag.String("config", "", "TOML config file (flags override file values)")
	chip := flag.String("chip", def.Button.Chip, "GPIO chip name")
	pin := flag.Int("pin", def.Button.Pin, "GPIO line offset of the button")
	activeLow := flag.Bool("active-low", def.Button.ActiveLow, "Button pulls the line low when pressed")
	poll := flag.Duration("poll", time.Duration(def.Timing.PollMs)*time.Millisecond, "GPIO polling interval")
	debounce := flag.Duration("debounce", time.Duration(def.Timing.DebounceMs)*time.Millisecond, "Debounce window")
	holdCutoff := flag.Duration("hold-cutoff", time.Duration(def.Timing.HoldCutoffMs)*time.Millisecond, "Hold duration that counts as a long press")
	doubleClick := flag.Duration("double-click", time.Duration(def.Timing.DoubleClickMs)*time.Millisecond, "Window for a second press after a click")
	broker := flag.String("broker", def.MQTT.Broker, "MQTT broker address")
	wsBroker := flag.String("ws-broker", def.MQTT.WSBroker, `MQTT websocket URL for the live UI ("=broker" derives from -broker, empty or "off" disables)`)
	heartbeat := flag.Duration("heartbeat", time.Duration(def.System.HeartbeatMs)*time.Millisecond, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	homekitPin := flag.String("homekit-pin", def.HomeKit.Pin, "HomeKit pairing pin (8 digits, empty disables)")
	homekitStorage := flag.String("homekit-storage", def.HomeKit.StorageDir, "HomeKit pairing state directory")
	printState := flag.Bool("print-state", false, "Print the current button state and exit")
	sim := flag.Bool("sim", false, "Read the button from stdin instead of GPIO (blank line toggles, 0/1 set the level)")
	qr := flag.Bool("qr", false, "Print a QR code of the status page URL at startup")

	flag.Parse()

	cfg := def
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	// Only flags the user actually set override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chip":
			cfg.Button.Chip = *chip
		case "pin":
			cfg.Button.Pin = *pin
		case "active-low":
			cfg.Button.ActiveLow = *activeLow
		case "poll":
			cfg.Timing.PollMs = poll.Milliseconds()
		case "debounce":
			cfg.Timing.DebounceMs = debounce.Milliseconds()
		case "hold-cutoff":
			cfg.Timing.HoldCutoffMs = holdCutoff.Milliseconds()
		case "double-click":
			cfg.Timing.DoubleClickMs = doubleClick.Milliseconds()
		case "broker":
			cfg.MQTT.Broker = *broker
		case "ws-broker":
			cfg.MQTT.WSBroker = *wsBroker
		case "heartbeat":
			cfg.System.HeartbeatMs = heartbeat.Milliseconds()
		case "http":
			cfg.HTTP.Addr = *httpAddr
		case "homekit-pin":
			cfg.HomeKit.Pin = *homekitPin
		case "homekit-storage":
			cfg.HomeKit.StorageDir = *homekitStorage
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState, *sim, *qr); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printState, sim, qr bool) error {
	// The raw level that means "pressed". Active low buttons short the
	// line to ground, so pressed reads false.
	pressedLevel := !cfg.Button.ActiveLow

	var reader gpio.Reader
	if sim {
		log.Printf("simulated button on stdin: blank line toggles, 0/1 set the level")
		reader = gpio.NewSimReader(os.Stdin, !pressedLevel)
	} else {
		r, err := gpio.NewRealReader(cfg.Button.Chip, cfg.Button.Pin, cfg.Button.ActiveLow)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		reader = r
	}
	defer reader.Close()

	// Print state mode
	if printState {
		raw, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("button: %s (raw=%v)\n", pressedString(raw == pressedLevel), raw)
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:          cfg.Button.Chip,
		Pin:           cfg.Button.Pin,
		ActiveLow:     cfg.Button.ActiveLow,
		PollMs:        cfg.Timing.PollMs,
		DebounceMs:    cfg.Timing.DebounceMs,
		HoldCutoffMs:  cfg.Timing.HoldCutoffMs,
		DoubleClickMs: cfg.Timing.DoubleClickMs,
		HeartbeatMs:   cfg.System.HeartbeatMs,
		Broker:        cfg.MQTT.Broker,
		HTTPAddr:      cfg.HTTP.Addr,
		WSBroker:      resolveWSBroker(cfg.MQTT.WSBroker, cfg.MQTT.Broker),
	})
	if info := readNetworkInfo(); info != nil {
		tracker.SetNetwork(info)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// Start HomeKit bridge
	var hk *homekit.Bridge
	if cfg.HomeKit.Pin != "" {
		hk, err = homekit.NewBridge(cfg.HomeKit.Pin, cfg.HomeKit.StorageDir)
		if err != nil {
			return fmt.Errorf("init homekit: %w", err)
		}
		go hk.Start()
		defer hk.Stop()
		log.Printf("homekit bridge up (pairing state in %s)", cfg.HomeKit.StorageDir)
	}

	if qr && cfg.HTTP.Addr != "" {
		printStatusQR(statusURL(cfg.HTTP.Addr, readNetworkInfo()))
	}

	timing := gesture.Timing{
		DebounceMs:    uint32(cfg.Timing.DebounceMs),
		HoldCutoffMs:  uint32(cfg.Timing.HoldCutoffMs),
		DoubleClickMs: uint32(cfg.Timing.DoubleClickMs),
	}
	pollInterval := time.Duration(cfg.Timing.PollMs) * time.Millisecond
	heartbeatInterval := time.Duration(cfg.System.HeartbeatMs) * time.Millisecond

	log.Printf("started: chip=%s pin=%d active_low=%v poll=%v debounce=%dms hold_cutoff=%dms double_click=%dms broker=%s heartbeat=%v",
		cfg.Button.Chip, cfg.Button.Pin, cfg.Button.ActiveLow, pollInterval,
		cfg.Timing.DebounceMs, cfg.Timing.HoldCutoffMs, cfg.Timing.DoubleClickMs,
		cfg.MQTT.Broker, heartbeatInterval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, publisher, publisher, tracker, hk, pressedLevel, timing, heartbeatInterval, time.Now, ticker.C, sigCh)
}

func runLoop(reader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, hk *homekit.Bridge, pressedLevel bool, timing gesture.Timing, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	eng := gesture.NewWithTiming(pressedLevel, timing)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				// Uptime in the payload is measured at the event time,
				// not at marshal time.
				snap.Now = event.Timestamp
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			raw, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			// The engine runs on wrapping millisecond ticks; the uint32
			// conversion keeps durations correct across the ~49.7 day wrap.
			nowMs := uint32(t.Sub(startTime).Milliseconds())
			g := eng.Step(raw, nowMs)
			pressed := eng.Pressed()

			if tracker != nil {
				tracker.SetPressed(pressed)
			}

			if g != gesture.None {
				held := heldMs(eng, g, nowMs)
				log.Printf("gesture: %s (pressed=%v held=%dms)", g, pressed, held)
				if tracker != nil {
					tracker.RecordGesture(g, t, held)
				}
				if hk != nil {
					hk.Forward(g)
				}
				event := mqtt.Event{Timestamp: t, Gesture: g, Pressed: pressed, HeldMs: held}
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			if tracker == nil {
				continue
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			// Check for heartbeat
			if hb := tracker.CheckHeartbeat(t, heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v gestures=%d", hb.Uptime, hb.Counts.Total())

				// Refresh network info for heartbeat
				if info := readNetworkInfo(); info != nil {
					tracker.SetNetwork(info)
				}
				snap := tracker.Snapshot()
				snap.Now = hb.Timestamp
				hbEvent := mqtt.SystemEvent{
					Timestamp:  hb.Timestamp,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// heldMs picks the press duration a gesture carries. The long-press family
// fires while the button is still down, so it reports the running hold;
// the others fire after a release and report the stable interval that
// just ended.
func heldMs(eng *gesture.Engine, g gesture.Gesture, nowMs uint32) uint32 {
	switch g {
	case gesture.LongPress, gesture.ClickAndLongPress, gesture.DoubleClickAndLongPress:
		return eng.Duration(nowMs)
	case gesture.Click, gesture.DoubleClick, gesture.Release:
		return eng.PrevDuration()
	}
	return 0
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "pressed"
	}
	return "released"
}

// statusURL builds the status page URL a phone on the LAN can reach.
// The host comes from the pi-helper network info when available, falling
// back to the hostname for wildcard listen addresses.
func statusURL(addr string, info *status.NetworkInfo) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		port = "8080"
	}
	if info != nil && info.IP != "" {
		host = info.IP
	} else if host == "" || host == "0.0.0.0" || host == "::" {
		if h, herr := os.Hostname(); herr == nil {
			host = h
		} else {
			host = "localhost"
		}
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func printStatusQR(u string) {
	q, err := qrcode.New(u, qrcode.Medium)
	if err != nil {
		log.Printf("qr: %v", err)
		return
	}
	fmt.Print(q.ToSmallString(false))
	log.Printf("status page: %s", u)
}

// resolveWSBroker converts the ws-broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty or
// "off" disables the live UI.
func resolveWSBroker(ws, broker string) string {
	if ws == "" || ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
