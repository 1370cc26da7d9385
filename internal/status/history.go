package status

// HistorySize is how many recent gestures the tracker keeps for display.
const HistorySize = 32

// historyRing is a fixed-capacity ring of recent gesture records.
// Not safe for concurrent use; the Tracker synchronizes access.
type historyRing struct {
	buf  []Record
	next int // next write position
	full bool
}

func newHistoryRing(capacity int) *historyRing {
	if capacity < 1 {
		capacity = 1
	}
	return &historyRing{buf: make([]Record, capacity)}
}

func (h *historyRing) add(r Record) {
	h.buf[h.next] = r
	h.next++
	if h.next == len(h.buf) {
		h.next = 0
		h.full = true
	}
}

// newestFirst returns the stored records, most recent first.
func (h *historyRing) newestFirst() []Record {
	n := h.next
	if h.full {
		n = len(h.buf)
	}
	if n == 0 {
		return nil
	}
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, h.buf[(h.next-i+len(h.buf))%len(h.buf)])
	}
	return out
}
