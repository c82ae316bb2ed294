// Package hotkey turns the global gohook key stream into two signals: a
// capture combination callback and modifier press/release edges.
package hotkey

import (
	"log"
	"strings"
	"sync"
)

// chord is one key of the combination. Modifiers carry both the left and
// right variant rawcodes.
type chord struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Listen parses a combination like "Ctrl+Alt+S" and fires the callback
// whenever every key in it is held. The callback runs on the hook goroutine;
// it should hand off to the event loop rather than do work inline.
func Listen(combo string, callback func()) {
	names := parseHotkey(combo)

	var chords []chord
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			log.Printf("Hotkey: cannot map key %q, combination may not trigger", name)
			continue
		}
		chords = append(chords, chord{name: name, rawcodes: codes})
	}
	if len(chords) == 0 {
		log.Printf("Hotkey: no usable keys in %q", combo)
		return
	}
	log.Printf("Hotkey: listening for %s", combo)

	var mu sync.Mutex
	keyHub.register(func(ev keyEvent) {
		mu.Lock()
		markChord(chords, ev.rawcode, ev.down)
		if ev.down && allPressed(chords) {
			for i := range chords {
				chords[i].pressed = false
			}
			mu.Unlock()
			log.Printf("Hotkey: %s triggered", combo)
			if callback != nil {
				callback()
			}
			return
		}
		mu.Unlock()
	})
}

// WatchModifier reports edge-triggered transitions of a single modifier key
// ("alt", "ctrl", "shift" or "cmd"). The callback receives true on the press
// edge and false on the release edge; repeats while held are swallowed.
func WatchModifier(name string, onEdge func(down bool)) bool {
	codes := keyNameToRawcodes(name)
	if len(codes) == 0 || onEdge == nil {
		return false
	}

	w := &modifierWatcher{codes: codes, onEdge: onEdge}
	keyHub.register(w.handle)
	return true
}

type modifierWatcher struct {
	mu     sync.Mutex
	codes  []uint16
	down   bool
	onEdge func(down bool)
}

func (w *modifierWatcher) handle(ev keyEvent) {
	match := false
	for _, code := range w.codes {
		if ev.rawcode == code {
			match = true
			break
		}
	}
	if !match {
		return
	}
	w.mu.Lock()
	changed := ev.down != w.down
	w.down = ev.down
	w.mu.Unlock()
	if changed {
		w.onEdge(ev.down)
	}
}

func markChord(chords []chord, rawcode uint16, down bool) {
	for i := range chords {
		for _, code := range chords[i].rawcodes {
			if code == rawcode {
				chords[i].pressed = down
				return
			}
		}
	}
}

func allPressed(chords []chord) bool {
	for i := range chords {
		if !chords[i].pressed {
			return false
		}
	}
	return true
}

// parseHotkey normalizes "Ctrl+Alt+q" to lowercase key names, folding the
// OS-key aliases to "cmd".
func parseHotkey(combo string) []string {
	parts := strings.Split(strings.ToLower(combo), "+")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}
