package realtime

import "testing"

func TestBroadcastReachesListeners(t *testing.T) {
	h := NewHub[int](4)
	id1, ch1 := h.Register()
	id2, ch2 := h.Register()
	defer h.Unregister(id1)
	defer h.Unregister(id2)

	h.Broadcast(7)
	if got := <-ch1; got != 7 {
		t.Errorf("listener 1 got %d", got)
	}
	if got := <-ch2; got != 7 {
		t.Errorf("listener 2 got %d", got)
	}
}

func TestLateListenerGetsLastEvent(t *testing.T) {
	h := NewHub[string](4)
	h.Broadcast("loading")
	h.Broadcast("ready")

	id, ch := h.Register()
	defer h.Unregister(id)
	if got := <-ch; got != "ready" {
		t.Errorf("late listener got %q, want ready", got)
	}
	if last, ok := h.Last(); !ok || last != "ready" {
		t.Errorf("Last = %q, %v", last, ok)
	}
}

func TestSlowListenerDropsEvents(t *testing.T) {
	h := NewHub[int](1)
	id, ch := h.Register()
	defer h.Unregister(id)

	for i := 0; i < 10; i++ {
		h.Broadcast(i)
	}
	if got := <-ch; got != 0 {
		t.Errorf("first buffered event = %d, want 0", got)
	}
	select {
	case v := <-ch:
		t.Errorf("expected the rest to be dropped, got %d", v)
	default:
	}
}

func TestUnregister(t *testing.T) {
	h := NewHub[int](0)
	id, ch := h.Register()
	if h.Size() != 1 {
		t.Fatalf("Size = %d", h.Size())
	}
	h.Unregister(id)
	h.Unregister(id)
	if _, open := <-ch; open {
		t.Error("channel should be closed")
	}
	if h.Size() != 0 {
		t.Errorf("Size = %d", h.Size())
	}

	_, ch2 := h.Register()
	h.Close()
	if _, open := <-ch2; open {
		t.Error("Close should close every channel")
	}
}
