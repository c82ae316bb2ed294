package session

import "screen-snip/src/element"

// highlightState tracks the single highlighted element and the window that
// owns rendering it. Invariant: current == nil ⇔ owner == AnyWindow.
type highlightState struct {
	current *element.Descriptor
	owner   WindowID
}

// SetHighlightedElement arbitrates highlight ownership for one detector
// result. The returned bool tells the caller whether it should render (or
// clear) the highlight:
//
//   - el == nil clears ownership only when owner already holds it; non-owners
//     get false and change nothing.
//   - the same element (tolerant comparison) from the current owner keeps the
//     highlight alive and returns true, so rapid mouse-move updates stay cheap.
//   - the same element from a different window is denied: one window may not
//     flicker onto an element another window is already tracking.
//   - a different element always takes over, whoever reports it.
//
// A false return is a normal negative result, not an error.
func (s *Session) SetHighlightedElement(el *element.Descriptor, owner WindowID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false, ErrSessionDisposed
	}

	if el == nil {
		if s.highlight.current != nil && s.highlight.owner == owner {
			s.highlight = highlightState{}
			return true, nil
		}
		return false, nil
	}

	if s.highlight.current != nil && el.EquivalentTo(s.highlight.current) {
		return s.highlight.owner == owner, nil
	}

	s.highlight = highlightState{current: el, owner: owner}
	return true, nil
}

// IsHighlightOwner reports whether the given window owns the current
// highlight.
func (s *Session) IsHighlightOwner(owner WindowID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight.current != nil && s.highlight.owner == owner
}

// ClearHighlightOwner releases the highlight when owner holds it; other
// callers change nothing.
func (s *Session) ClearHighlightOwner(owner WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlight.current != nil && s.highlight.owner == owner {
		s.highlight = highlightState{}
	}
}

// CurrentHighlightedElement returns the highlighted element, or nil when no
// window holds a highlight.
func (s *Session) CurrentHighlightedElement() *element.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlight.current
}
