package gpio

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// SimReader simulates the button line from text input, one command per
// line: a blank line toggles the level, "1" and "0" set it directly.
// It backs the -sim flag so gestures can be exercised without hardware:
// two quick returns on a terminal make a click, a return held apart from
// the next makes a long press.
type SimReader struct {
	mu    sync.Mutex
	level bool
}

// NewSimReader starts consuming lines from in. idleLevel is the raw level
// of the unpressed line (true for pull-up wiring).
func NewSimReader(in io.Reader, idleLevel bool) *SimReader {
	s := &SimReader{level: idleLevel}
	go s.consume(in)
	return s
}

func (s *SimReader) consume(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		cmd := strings.TrimSpace(sc.Text())
		s.mu.Lock()
		switch cmd {
		case "":
			s.level = !s.level
		case "0":
			s.level = false
		case "1":
			s.level = true
		}
		s.mu.Unlock()
	}
}

// Read returns the current simulated level.
func (s *SimReader) Read() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, nil
}

// Close is a no-op; the consuming goroutine ends with its input.
func (s *SimReader) Close() error {
	return nil
}
