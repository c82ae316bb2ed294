package session

// selectionState tracks which window, if any, currently owns the selection.
// Invariant: has == (active != AnyWindow).
type selectionState struct {
	has    bool
	active WindowID
}

// CanStartSelection reports whether the given window may begin a new drag.
// This is advisory: SetSelection does not re-check it, and the last writer
// wins when callers skip the check.
func (s *Session) CanStartSelection(owner WindowID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	return !s.selection.has || s.selection.active == owner
}

// SetSelection records owner as the active selection window. Setting the same
// owner again is a no-op; a different owner takes over without an error.
// Raises selectionStateChanged(true) on an actual change.
func (s *Session) SetSelection(owner WindowID) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrSessionDisposed
	}
	if s.selection.has && s.selection.active == owner {
		s.mu.Unlock()
		return nil
	}
	s.selection = selectionState{has: true, active: owner}
	stateFns := captureState(s.subs)
	s.mu.Unlock()

	for _, fn := range stateFns {
		fn(true)
	}
	return nil
}

// ClearSelection drops the active selection. With a concrete owner the clear
// only applies when that owner holds the selection; AnyWindow clears
// unconditionally. Raises selectionStateChanged(false) on an actual change.
func (s *Session) ClearSelection(owner WindowID) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrSessionDisposed
	}
	if !s.selection.has {
		s.mu.Unlock()
		return nil
	}
	if owner != AnyWindow && s.selection.active != owner {
		s.mu.Unlock()
		return nil
	}
	s.selection = selectionState{}
	stateFns := captureState(s.subs)
	s.mu.Unlock()

	for _, fn := range stateFns {
		fn(false)
	}
	return nil
}

// SelectionState returns the current selection snapshot for inspection.
func (s *Session) SelectionState() (bool, WindowID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.has, s.selection.active
}
