// Package homekit exposes the button to HomeKit as a stateless
// programmable switch. Clicks map to single presses, double clicks to
// double presses, and every long-press variant to a long press; the HAP
// characteristic has no value for releases, so they are dropped.
package homekit

import (
	"fmt"

	"github.com/brutella/hc"
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"

	"github.com/sweeney/button-sensor/internal/gesture"
)

// Bridge runs the HomeKit transport for one button accessory.
type Bridge struct {
	sw        *service.StatelessProgrammableSwitch
	transport hc.Transport
}

// NewBridge creates the accessory and its IP transport. pin is the 8-digit
// pairing code; storageDir holds the pairing state across restarts.
func NewBridge(pin, storageDir string) (*Bridge, error) {
	info := accessory.Info{
		Name:         "Button",
		Manufacturer: "sweeney",
		Model:        "button-sensor",
	}
	acc := accessory.New(info, accessory.TypeProgrammableSwitch)
	sw := service.NewStatelessProgrammableSwitch()
	acc.AddService(sw.Service)

	t, err := hc.NewIPTransport(hc.Config{Pin: pin, StoragePath: storageDir}, acc)
	if err != nil {
		return nil, fmt.Errorf("homekit transport: %w", err)
	}
	return &Bridge{sw: sw, transport: t}, nil
}

// Start runs the transport. It blocks until Stop is called.
func (b *Bridge) Start() {
	b.transport.Start()
}

// Stop shuts the transport down and waits for it to finish.
func (b *Bridge) Stop() {
	<-b.transport.Stop()
}

// Forward reports a recognized gesture to HomeKit. Gestures with no HAP
// representation are ignored.
func (b *Bridge) Forward(g gesture.Gesture) {
	if v, ok := PressEvent(g); ok {
		b.sw.ProgrammableSwitchEvent.SetValue(v)
	}
}

// PressEvent maps a gesture onto the HomeKit programmable switch event
// values (0 single, 1 double, 2 long). The second return is false for
// gestures HomeKit cannot represent.
func PressEvent(g gesture.Gesture) (int, bool) {
	switch g {
	case gesture.Click:
		return characteristic.ProgrammableSwitchEventSinglePress, true
	case gesture.DoubleClick:
		return characteristic.ProgrammableSwitchEventDoublePress, true
	case gesture.LongPress, gesture.ClickAndLongPress, gesture.DoubleClickAndLongPress:
		return characteristic.ProgrammableSwitchEventLongPress, true
	default:
		return 0, false
	}
}
