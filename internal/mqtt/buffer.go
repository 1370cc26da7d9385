package mqtt

import "log"

// queuedMsg is a serialized message held while the broker is unreachable.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ring is a fixed-capacity FIFO for messages awaiting replay. When full,
// pushing drops the oldest message. Not safe for concurrent use; the
// caller must synchronize.
type ring struct {
	buf     []queuedMsg
	tail    int // index of the oldest element
	count   int
	dropped int // messages lost to overflow since the last drain
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]queuedMsg, capacity)}
}

func (r *ring) push(m queuedMsg) {
	if r.count == len(r.buf) {
		if r.dropped == 0 {
			log.Printf("mqtt: replay queue full (%d messages), dropping oldest", len(r.buf))
		}
		r.buf[r.tail] = m
		r.tail = (r.tail + 1) % len(r.buf)
		r.dropped++
		return
	}
	r.buf[(r.tail+r.count)%len(r.buf)] = m
	r.count++
}

// drain returns the queued messages oldest first and empties the ring.
func (r *ring) drain() []queuedMsg {
	if r.count == 0 {
		return nil
	}
	out := make([]queuedMsg, r.count)
	for i := range out {
		out[i] = r.buf[(r.tail+i)%len(r.buf)]
	}
	if r.dropped > 0 {
		log.Printf("mqtt: %d messages were lost while the broker was unreachable", r.dropped)
	}
	r.tail = 0
	r.count = 0
	r.dropped = 0
	return out
}

func (r *ring) len() int {
	return r.count
}
