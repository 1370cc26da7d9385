// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device. The fake
// and sim implementations allow testing and dry runs without hardware.
package gpio

// Reader reads the raw button line level.
type Reader interface {
	// Read returns the raw line level: true for high, false for low.
	// No polarity handling happens here; the caller decides which level
	// a pressed button reads as.
	Read() (bool, error)

	// Close releases input resources.
	Close() error
}

// Defaults for Raspberry Pi style wiring (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)
