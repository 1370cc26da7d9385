//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the button line from actual hardware using the Linux
// GPIO character device.
type RealReader struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	pullUp bool
}

// NewRealReader requests the button pin as an input with internal bias.
// pullUp selects pull-up bias for the usual wiring where the button
// shorts the line to ground; pass false for pull-down wiring.
func NewRealReader(chipName string, pin int, pullUp bool) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	var line *gpiocdev.Line
	if pullUp {
		line, err = chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	} else {
		line, err = chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	}
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealReader{chip: chip, line: line, pullUp: pullUp}, nil
}

// Read returns the raw line level.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v != 0, nil
}

// Close releases the line and chip. The line is reconfigured to a plain
// biased input first so the pin is left in a known state for the next
// process or reboot.
func (r *RealReader) Close() error {
	var errs []error

	if r.line != nil {
		var err error
		if r.pullUp {
			err = r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp)
		} else {
			err = r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
