package input

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Key is a platform key code. The app layer converts the windowing library's
// codes into this type so the handler stays free of window-system imports.
type Key int

// Event is one press or release delivered by the platform event queue.
type Event struct {
	Key     Key
	Pressed bool
}

// Handler tracks pressed state for an explicitly watched set of keys.
// Events arrive from the window callback via Enqueue and are applied by
// Update once per frame.
type Handler struct {
	watched map[Key]bool
	pending []Event
}

func NewHandler() *Handler {
	return &Handler{watched: make(map[Key]bool)}
}

// Watch registers a key to track. Watching the same key twice is a
// programming error and panics.
func (h *Handler) Watch(key Key) {
	if _, ok := h.watched[key]; ok {
		panic(fmt.Sprintf("input: key %d is already watched", int(key)))
	}
	h.watched[key] = false
}

// IsPressed reports whether a watched key is currently held. Querying a key
// that was never watched is a programming error and panics.
func (h *Handler) IsPressed(key Key) bool {
	pressed, ok := h.watched[key]
	if !ok {
		panic(fmt.Sprintf("input: key %d is not watched", int(key)))
	}
	return pressed
}

// Enqueue records a press/release event for the next Update. Safe to call
// from window callbacks; the event loop and Update run on the same thread.
func (h *Handler) Enqueue(key Key, pressed bool) {
	h.pending = append(h.pending, Event{Key: key, Pressed: pressed})
}

// Update drains queued events into the pressed-state map. Presses of
// unwatched keys are logged and ignored; releases of unwatched keys are
// ignored silently.
func (h *Handler) Update() {
	for _, ev := range h.pending {
		if _, ok := h.watched[ev.Key]; !ok {
			if ev.Pressed {
				logrus.WithField("key", int(ev.Key)).Debug("ignoring unwatched key")
			}
			continue
		}
		h.watched[ev.Key] = ev.Pressed
	}
	h.pending = h.pending[:0]
}
