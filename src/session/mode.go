package session

// Mode is the session-wide selection mode. Free draws a rubber-band region;
// Element picks whole UI elements reported by the detector.
type Mode int

const (
	ModeFree Mode = iota
	ModeElement
)

func (m Mode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeElement:
		return "element"
	default:
		return "unknown"
	}
}

// Mode returns the current selection mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the session-wide selection mode. Setting the current mode
// again never notifies; a change is broadcast to every subscriber so all
// windows flip together.
func (s *Session) SetMode(m Mode) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrSessionDisposed
	}
	if s.mode == m {
		s.mu.Unlock()
		return nil
	}
	s.mode = m
	modeFns := captureMode(s.subs)
	s.mu.Unlock()

	for _, fn := range modeFns {
		fn(m)
	}
	return nil
}

// handleModifierEdge maps a modifier key press/release from any window's
// input stream onto the shared mode. Holding the modifier selects elements;
// releasing it returns to free dragging.
func (s *Session) handleModifierEdge(down bool) {
	mode := ModeFree
	if down {
		mode = ModeElement
	}
	_ = s.SetMode(mode)
}
