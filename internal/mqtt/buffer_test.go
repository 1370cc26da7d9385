package mqtt

import (
	"testing"
)

func TestRingEmptyDrain(t *testing.T) {
	r := newRing(10)
	got := r.drain()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingPushAndDrain(t *testing.T) {
	r := newRing(10)
	for i := 0; i < 5; i++ {
		r.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := r.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	got2 := r.drain()
	if got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingFillToCapacity(t *testing.T) {
	capacity := 10
	r := newRing(capacity)
	for i := 0; i < capacity; i++ {
		r.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := r.drain()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := 0; i < capacity; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}
}

func TestRingOverflow(t *testing.T) {
	capacity := 5
	r := newRing(capacity)

	// Push capacity+3 items (0..7); the ring should keep the most recent 5 (3..7)
	for i := 0; i < capacity+3; i++ {
		r.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := r.drain()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := 0; i < capacity; i++ {
		want := byte(i + 3) // oldest 3 were dropped
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
}

func TestRingMultipleCycles(t *testing.T) {
	r := newRing(5)

	// Cycle 1: push 3, drain
	for i := 0; i < 3; i++ {
		r.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	got := r.drain()
	if len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	// Cycle 2: push 4, drain
	for i := 10; i < 14; i++ {
		r.push(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	got = r.drain()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		want := byte(10 + i)
		if msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: expected %d, got %d", i, want, msg.payload[0])
		}
	}
}

func TestRingLen(t *testing.T) {
	r := newRing(10)
	if r.len() != 0 {
		t.Errorf("expected len 0, got %d", r.len())
	}

	r.push(queuedMsg{topic: "t"})
	r.push(queuedMsg{topic: "t"})
	if r.len() != 2 {
		t.Errorf("expected len 2, got %d", r.len())
	}

	r.drain()
	if r.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", r.len())
	}
}

func TestRingTinyCapacity(t *testing.T) {
	r := newRing(0) // normalized up to 1
	r.push(queuedMsg{topic: "t", payload: []byte{1}})
	r.push(queuedMsg{topic: "t", payload: []byte{2}})

	got := r.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].payload[0] != 2 {
		t.Errorf("expected newest payload 2, got %d", got[0].payload[0])
	}
}

func TestRingPreservesFields(t *testing.T) {
	r := newRing(10)
	r.push(queuedMsg{
		topic:    "input/test",
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := r.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != "input/test" {
		t.Errorf("topic: got %s, want input/test", got[0].topic)
	}
	if string(got[0].payload) != `{"test":true}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 {
		t.Errorf("qos: got %d, want 1", got[0].qos)
	}
	if !got[0].retained {
		t.Error("retained: got false, want true")
	}
}
