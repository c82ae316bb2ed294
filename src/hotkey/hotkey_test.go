package hotkey

import (
	"reflect"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Ctrl+Alt+S", []string{"ctrl", "alt", "s"}},
		{"ctrl+shift+f13", []string{"ctrl", "shift", "f13"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Super+T", []string{"cmd", "t"}},
		{"Cmd+Q", []string{"cmd", "q"}},
		{" Ctrl + Alt + S ", []string{"ctrl", "alt", "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseHotkey(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseHotkey(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		name string
		want []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},
		{"s", []uint16{83}},
		{"z", []uint16{90}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"f25", nil},
		{"space", []uint16{32}},
		{"esc", []uint16{27}},
		{"escape", []uint16{27}},
		{"enter", []uint16{13}},
		{"bogus", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyNameToRawcodes(tt.name); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("keyNameToRawcodes(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestChordTracking(t *testing.T) {
	chords := []chord{
		{name: "ctrl", rawcodes: []uint16{162, 163}},
		{name: "s", rawcodes: []uint16{83}},
	}

	markChord(chords, 163, true) // right ctrl counts too
	if allPressed(chords) {
		t.Fatal("combination should not fire with only ctrl down")
	}
	markChord(chords, 83, true)
	if !allPressed(chords) {
		t.Fatal("combination should fire with ctrl+s down")
	}
	markChord(chords, 163, false)
	if allPressed(chords) {
		t.Fatal("combination should clear after ctrl release")
	}
	// Unrelated keys must not disturb the tracked state.
	markChord(chords, 65, true)
	if chords[0].pressed {
		t.Error("unrelated rawcode flipped a chord")
	}
}

func TestModifierWatcherEdges(t *testing.T) {
	var edges []bool
	w := &modifierWatcher{
		codes:  keyNameToRawcodes("alt"),
		onEdge: func(down bool) { edges = append(edges, down) },
	}

	w.handle(keyEvent{down: true, rawcode: 164})
	w.handle(keyEvent{down: true, rawcode: 164}) // key repeat, no edge
	w.handle(keyEvent{down: true, rawcode: 83})  // unrelated key
	w.handle(keyEvent{down: false, rawcode: 164})
	w.handle(keyEvent{down: false, rawcode: 164}) // already up

	want := []bool{true, false}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}
