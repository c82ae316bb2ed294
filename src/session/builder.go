package session

import (
	"errors"
	"image"

	"github.com/google/uuid"

	"screen-snip/src/overlay"
)

var (
	// ErrNoWindowFactory is returned by Build when the session was created
	// without an overlay factory.
	ErrNoWindowFactory = errors.New("session: no window factory configured")
	// ErrBuilderIncomplete is returned by Build when a required field was not
	// set.
	ErrBuilderIncomplete = errors.New("session: window builder missing bounds or screens")
)

// WindowBuilder configures and registers one overlay window. It is a
// construction-time helper only; once Build returns, the window participates
// in the session like any other member.
type WindowBuilder struct {
	session *Session
	bounds  image.Rectangle
	screens []image.Rectangle
	detect  bool
}

// NewWindowBuilder starts configuring a window for this session.
func (s *Session) NewWindowBuilder() *WindowBuilder {
	return &WindowBuilder{session: s}
}

// WithBounds sets the window's position and size in virtual-screen
// coordinates.
func (b *WindowBuilder) WithBounds(r image.Rectangle) *WindowBuilder {
	b.bounds = r
	return b
}

// WithScreens hands the window the display list it may need for coordinate
// mapping.
func (b *WindowBuilder) WithScreens(screens []image.Rectangle) *WindowBuilder {
	b.screens = append([]image.Rectangle(nil), screens...)
	return b
}

// EnableElementDetection gives the window the session's element detector so
// its element-pick strategy can resolve UI elements under the cursor.
func (b *WindowBuilder) EnableElementDetection() *WindowBuilder {
	b.detect = true
	return b
}

// Build validates the configuration, constructs the window sized to the given
// bounds, registers it with the session, and wires the window's own events
// into the session's unified ones.
func (b *WindowBuilder) Build() (overlay.Window, WindowID, error) {
	s := b.session
	if s.Disposed() {
		return nil, AnyWindow, ErrSessionDisposed
	}
	if s.factory == nil {
		return nil, AnyWindow, ErrNoWindowFactory
	}
	if b.bounds.Empty() || len(b.screens) == 0 {
		return nil, AnyWindow, ErrBuilderIncomplete
	}

	id := uuid.New()
	cfg := overlay.Config{
		Owner:          id,
		Bounds:         b.bounds,
		Screens:        b.screens,
		DetectElements: b.detect,
		Host:           s,
		OnRegionSelected: func(bounds image.Rectangle, editable bool) {
			s.handleRegionSelected(id, bounds, editable)
		},
		OnCancelled: func() {
			s.handleCancelled(id)
		},
		OnModifierEdge: s.handleModifierEdge,
	}
	if b.detect {
		cfg.Detector = s.detector
	}

	win, err := s.factory(cfg)
	if err != nil {
		return nil, AnyWindow, err
	}
	s.addWindow(id, win)
	return win, id, nil
}
