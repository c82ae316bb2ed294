package session

import (
	"image"
	"testing"

	"screen-snip/src/element"
)

func descriptor(handle uintptr, class string, bounds image.Rectangle) *element.Descriptor {
	return &element.Descriptor{Handle: handle, ClassName: class, Bounds: bounds}
}

// Scenario: a second window may not claim the element another window already
// highlights.
func TestHighlightSameElementContention(t *testing.T) {
	s, _, ids := newTestSession(t, 2)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))

	if ok, err := s.SetHighlightedElement(x, ids[0]); err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if ok, err := s.SetHighlightedElement(x, ids[1]); err != nil || ok {
		t.Errorf("contending claim on same element: ok=%v err=%v, want denial", ok, err)
	}
	if got := s.CurrentHighlightedElement(); !got.EquivalentTo(x) {
		t.Errorf("highlight changed on denied claim: %+v", got)
	}
	if !s.IsHighlightOwner(ids[0]) || s.IsHighlightOwner(ids[1]) {
		t.Errorf("ownership moved on denied claim")
	}
}

// Scenario: a different element takes over regardless of the prior owner.
func TestHighlightTakeover(t *testing.T) {
	s, _, ids := newTestSession(t, 2)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))
	y := descriptor(0x20, "Edit", image.Rect(100, 0, 300, 24))

	if ok, _ := s.SetHighlightedElement(x, ids[0]); !ok {
		t.Fatalf("initial claim denied")
	}
	if ok, _ := s.SetHighlightedElement(y, ids[1]); !ok {
		t.Fatalf("takeover with new element denied")
	}
	if s.IsHighlightOwner(ids[0]) {
		t.Errorf("previous owner kept ownership after takeover")
	}
	if !s.IsHighlightOwner(ids[1]) {
		t.Errorf("new owner not recorded after takeover")
	}
}

// Same element, same owner: the tracking window keeps updating cheaply.
func TestHighlightOwnerRepeatedUpdates(t *testing.T) {
	s, _, ids := newTestSession(t, 1)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))
	jittered := descriptor(0x10, "Button", image.Rect(2, 1, 82, 26))

	if ok, _ := s.SetHighlightedElement(x, ids[0]); !ok {
		t.Fatalf("claim denied")
	}
	for i := 0; i < 5; i++ {
		if ok, _ := s.SetHighlightedElement(jittered, ids[0]); !ok {
			t.Fatalf("owner re-report %d denied", i)
		}
	}
}

// Sub-5px jitter is the same element; a 6px shift is a different one.
func TestHighlightTolerantEquality(t *testing.T) {
	s, _, ids := newTestSession(t, 2)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))
	jitter3 := descriptor(0x10, "Button", image.Rect(3, 3, 83, 27))
	shift6 := descriptor(0x10, "Button", image.Rect(6, 6, 86, 30))

	if ok, _ := s.SetHighlightedElement(x, ids[0]); !ok {
		t.Fatalf("claim denied")
	}
	// Jitter from another window is still the same element, so it is denied,
	// and ownership does not churn.
	if ok, _ := s.SetHighlightedElement(jitter3, ids[1]); ok {
		t.Errorf("3px jitter treated as a new element")
	}
	if !s.IsHighlightOwner(ids[0]) {
		t.Errorf("ownership churned on sub-threshold jitter")
	}
	// A 6px shift is a different element and takes over.
	if ok, _ := s.SetHighlightedElement(shift6, ids[1]); !ok {
		t.Errorf("6px shift not treated as a new element")
	}
	if !s.IsHighlightOwner(ids[1]) {
		t.Errorf("takeover on 6px shift did not transfer ownership")
	}
}

func TestHighlightClearOwnerOnly(t *testing.T) {
	s, _, ids := newTestSession(t, 2)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))

	if ok, _ := s.SetHighlightedElement(x, ids[0]); !ok {
		t.Fatalf("claim denied")
	}

	// A non-owner reporting nil is a no-op and gets false.
	if ok, _ := s.SetHighlightedElement(nil, ids[1]); ok {
		t.Errorf("non-owner nil report returned true")
	}
	if s.CurrentHighlightedElement() == nil {
		t.Fatalf("non-owner nil report cleared the highlight")
	}

	// The owner reporting nil clears and should erase its own highlight.
	if ok, _ := s.SetHighlightedElement(nil, ids[0]); !ok {
		t.Errorf("owner nil report returned false")
	}
	if s.CurrentHighlightedElement() != nil {
		t.Errorf("owner nil report did not clear the highlight")
	}
}

func TestHighlightInvariant(t *testing.T) {
	s, _, ids := newTestSession(t, 2)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))

	check := func(step string) {
		el := s.CurrentHighlightedElement()
		owned := s.IsHighlightOwner(ids[0]) || s.IsHighlightOwner(ids[1])
		if (el != nil) != owned {
			t.Fatalf("%s: invariant broken: element=%v owned=%v", step, el, owned)
		}
	}

	check("initial")
	_, _ = s.SetHighlightedElement(x, ids[0])
	check("after claim")
	s.ClearHighlightOwner(ids[1])
	check("after foreign clear")
	s.ClearHighlightOwner(ids[0])
	check("after owner clear")
}

func TestHighlightClearedOnClose(t *testing.T) {
	s, _, ids := newTestSession(t, 1)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))

	_, _ = s.SetHighlightedElement(x, ids[0])
	_ = s.Close()

	if s.CurrentHighlightedElement() != nil {
		t.Errorf("highlight survived session close")
	}
}

// The element pick rides along on the unified region event when the reporting
// window owns the highlight.
func TestRegionEventCarriesElement(t *testing.T) {
	s, wins, ids := newTestSession(t, 2)
	x := descriptor(0x10, "Button", image.Rect(0, 0, 80, 24))
	_, _ = s.SetHighlightedElement(x, ids[0])

	var got []RegionEvent
	s.OnRegionSelected(func(ev RegionEvent) { got = append(got, ev) })

	wins[1].cfg.OnRegionSelected(image.Rect(0, 0, 10, 10), true)
	wins[0].cfg.OnRegionSelected(x.Bounds, true)

	if len(got) != 2 {
		t.Fatalf("expected two region events, got %d", len(got))
	}
	if got[0].Element != nil {
		t.Errorf("non-owner event carried an element")
	}
	if got[1].Element == nil || !got[1].Element.EquivalentTo(x) {
		t.Errorf("owner event missing its element: %+v", got[1].Element)
	}
}
