package gpio

import (
	"io"
	"testing"
	"time"
)

// waitLevel polls the reader until it reports want or the deadline passes.
// The consuming goroutine applies commands asynchronously.
func waitLevel(t *testing.T, s *SimReader, want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if level, err := s.Read(); err == nil && level == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("level never became %v", want)
}

func TestSimReaderIdleLevel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	s := NewSimReader(pr, true)
	if level, err := s.Read(); err != nil || level != true {
		t.Errorf("idle read = (%v, %v), want (true, nil)", level, err)
	}

	s = NewSimReader(pr, false)
	if level, err := s.Read(); err != nil || level != false {
		t.Errorf("idle read = (%v, %v), want (false, nil)", level, err)
	}
}

func TestSimReaderCommands(t *testing.T) {
	pr, pw := io.Pipe()
	s := NewSimReader(pr, true)

	// Blank line toggles.
	io.WriteString(pw, "\n")
	waitLevel(t, s, false)
	io.WriteString(pw, "\n")
	waitLevel(t, s, true)

	// Explicit levels, with surrounding whitespace tolerated.
	io.WriteString(pw, " 0 \n")
	waitLevel(t, s, false)
	io.WriteString(pw, "1\n")
	waitLevel(t, s, true)

	pw.Close()
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
