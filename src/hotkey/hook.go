package hotkey

import (
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// keyEvent is the slice of a gohook event the listeners care about.
type keyEvent struct {
	down    bool
	rawcode uint16
}

// hub fans the single gohook stream out to every registered listener.
// gohook.Start may only run once per process, so Listen and WatchModifier
// share it.
type hub struct {
	mu        sync.Mutex
	started   bool
	listeners []func(keyEvent)
}

var keyHub hub

func (h *hub) register(fn func(keyEvent)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	start := !h.started
	h.started = true
	h.mu.Unlock()
	if start {
		go h.run()
	}
}

func (h *hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Hotkey: panic in hook goroutine: %v", r)
		}
	}()

	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("Hotkey: gohook.Start returned nil channel")
		return
	}
	for ev := range evChan {
		if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
			continue
		}
		ke := keyEvent{down: ev.Kind == gohook.KeyDown, rawcode: ev.Rawcode}
		h.mu.Lock()
		fns := make([]func(keyEvent), len(h.listeners))
		copy(fns, h.listeners)
		h.mu.Unlock()
		for _, fn := range fns {
			fn(ke)
		}
	}
	log.Printf("Hotkey: event channel closed")
}
