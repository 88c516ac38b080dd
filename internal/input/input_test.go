package input

import "testing"

const (
	keyUp Key = iota + 100
	keyDown
	keyOther
)

func TestPressReleaseCycle(t *testing.T) {
	h := NewHandler()
	h.Watch(keyUp)
	h.Watch(keyDown)

	if h.IsPressed(keyUp) {
		t.Fatal("key pressed before any event")
	}

	h.Enqueue(keyUp, true)
	h.Update()
	if !h.IsPressed(keyUp) {
		t.Fatal("key not pressed after press event")
	}
	if h.IsPressed(keyDown) {
		t.Fatal("unrelated key reported pressed")
	}

	h.Enqueue(keyUp, false)
	h.Update()
	if h.IsPressed(keyUp) {
		t.Fatal("key still pressed after release event")
	}
}

func TestUpdateDrainsQueue(t *testing.T) {
	h := NewHandler()
	h.Watch(keyUp)

	h.Enqueue(keyUp, true)
	h.Enqueue(keyUp, false)
	h.Enqueue(keyUp, true)
	h.Update()
	if !h.IsPressed(keyUp) {
		t.Fatal("last queued event should win")
	}

	// queue is empty now; another Update must not change state
	h.Update()
	if !h.IsPressed(keyUp) {
		t.Fatal("state changed on empty queue")
	}
}

func TestUnwatchedEventsIgnored(t *testing.T) {
	h := NewHandler()
	h.Watch(keyUp)

	h.Enqueue(keyOther, true)
	h.Enqueue(keyOther, false)
	h.Update()

	if h.IsPressed(keyUp) {
		t.Fatal("unwatched events leaked into watched state")
	}
}

func TestWatchTwicePanics(t *testing.T) {
	h := NewHandler()
	h.Watch(keyUp)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate Watch")
		}
	}()
	h.Watch(keyUp)
}

func TestIsPressedUnwatchedPanics(t *testing.T) {
	h := NewHandler()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unwatched IsPressed")
		}
	}()
	h.IsPressed(keyOther)
}
