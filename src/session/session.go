// Package session coordinates one multi-window capture operation. A capture
// spans one overlay window per display, but the user sees a single selection:
// at most one active selection, at most one highlighted element, and one
// selection mode shared by every window. The session owns that shared state
// and arbitrates it under a single mutex; windows and other subscribers are
// notified outside the lock so teardown can be invoked re-entrantly from any
// handler without deadlocking.
package session

import (
	"errors"
	"image"
	"log"
	"sync"

	"github.com/google/uuid"

	"screen-snip/src/element"
	"screen-snip/src/overlay"
)

// WindowID identifies a registered window within a session. It is an opaque
// arbitration key; the session never dereferences it.
type WindowID = uuid.UUID

// AnyWindow makes ClearSelection unconditional regardless of which window
// currently holds the selection.
var AnyWindow WindowID

// ErrSessionDisposed is returned by mutating calls made after Dispose.
var ErrSessionDisposed = errors.New("session: used after dispose")

// RegionEvent is the session's unified selection notification, forwarded from
// whichever window produced the region.
type RegionEvent struct {
	Window   WindowID
	Bounds   image.Rectangle
	Editable bool
	// Element is the highlighted element at the time of selection, when the
	// reporting window owned the highlight. Nil for free-drag selections.
	Element *element.Descriptor
}

// Options configures a new capture session.
type Options struct {
	// Windows constructs the per-display overlay windows. Required before
	// the first WindowBuilder.Build call.
	Windows overlay.Factory
	// Detector is handed to windows built with element detection enabled.
	Detector element.Detector
	// DefaultMode is the selection mode the session starts in.
	DefaultMode Mode
}

type windowEntry struct {
	id  WindowID
	win overlay.Window
}

// Session is the aggregate root for one capture operation. All shared state
// lives behind one mutex; no method holds that mutex while calling a window
// or a subscriber.
type Session struct {
	factory  overlay.Factory
	detector element.Detector

	mu        sync.Mutex
	windows   []windowEntry
	selection selectionState
	highlight highlightState
	mode      Mode
	editLock  bool
	closing   bool
	disposed  bool

	// subs is swapped to nil on Dispose. Notification paths capture handler
	// copies while holding mu, so an in-flight event cannot race the swap.
	subs      *subscribers
	nextSubID uint64
}

type subscribers struct {
	region map[uint64]func(RegionEvent)
	state  map[uint64]func(bool)
	mode   map[uint64]func(Mode)
	closed map[uint64]func()
}

// New creates a session with empty membership and no selection.
func New(opts Options) *Session {
	return &Session{
		factory:  opts.Windows,
		detector: opts.Detector,
		mode:     opts.DefaultMode,
		subs: &subscribers{
			region: make(map[uint64]func(RegionEvent)),
			state:  make(map[uint64]func(bool)),
			mode:   make(map[uint64]func(Mode)),
			closed: make(map[uint64]func()),
		},
	}
}

// Close tears the session down: membership and arbitration state are cleared
// under the lock, every previously registered window is closed best-effort
// outside it, and the closed event fires exactly once. Safe to call multiple
// times and from inside any handler the session itself triggered.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	wins := s.windows
	s.windows = nil
	s.selection = selectionState{}
	s.highlight = highlightState{}
	s.mode = ModeFree
	s.editLock = false
	closedFns := captureClosed(s.subs)
	s.mu.Unlock()

	for _, e := range wins {
		closeWindow(e)
	}
	for _, fn := range closedFns {
		fn()
	}
	return nil
}

// closeWindow closes one overlay window. A failure (or panic) in one window
// must not keep the remaining windows open.
func closeWindow(e windowEntry) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("session: window %s close panicked: %v", e.id, r)
		}
	}()
	if err := e.win.Close(); err != nil {
		log.Printf("session: window %s close failed: %v", e.id, err)
	}
}

// Dispose drops all subscriber references, then closes the session. Further
// mutating calls fail with ErrSessionDisposed; Dispose and Close themselves
// stay idempotent.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.subs = nil
	s.mu.Unlock()

	_ = s.Close()
}

// Disposed reports whether Dispose has been called.
func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Windows returns the ordered membership snapshot.
func (s *Session) Windows() []WindowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]WindowID, len(s.windows))
	for i, e := range s.windows {
		ids[i] = e.id
	}
	return ids
}

// addWindow appends a built window to the membership. Registration while the
// editable-selection ratchet is already engaged locks the newcomer
// immediately.
func (s *Session) addWindow(id WindowID, win overlay.Window) {
	s.mu.Lock()
	s.windows = append(s.windows, windowEntry{id: id, win: win})
	locked := s.editLock
	s.mu.Unlock()

	if locked {
		win.SetSelectionLocked(true)
	}
}

// handleRegionSelected is the builder-wired sink for a window's own
// regionSelected event. An editable region engages the locking protocol on
// every other window, then the unified event fires.
func (s *Session) handleRegionSelected(id WindowID, bounds image.Rectangle, editable bool) {
	s.mu.Lock()
	if s.closing || s.disposed {
		s.mu.Unlock()
		return
	}
	var el *element.Descriptor
	if s.highlight.current != nil && s.highlight.owner == id {
		el = s.highlight.current
	}
	var toLock []overlay.Window
	if editable && !s.editLock {
		s.editLock = true
		for _, e := range s.windows {
			if e.id != id {
				toLock = append(toLock, e.win)
			}
		}
	}
	regionFns := captureRegion(s.subs)
	s.mu.Unlock()

	for _, w := range toLock {
		w.SetSelectionLocked(true)
	}
	ev := RegionEvent{Window: id, Bounds: bounds, Editable: editable, Element: el}
	for _, fn := range regionFns {
		fn(ev)
	}
}

// handleCancelled is the builder-wired sink for a window's cancelled event.
// Cancellation on any window abandons the whole capture.
func (s *Session) handleCancelled(id WindowID) {
	log.Printf("session: window %s cancelled capture", id)
	_ = s.Close()
}

// OnRegionSelected subscribes to the unified selection event. The returned
// func removes the subscription; after Dispose registration is a no-op.
func (s *Session) OnRegionSelected(fn func(RegionEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		return func() {}
	}
	id := s.subID()
	s.subs.region[id] = fn
	return s.unsubscribe(func(sub *subscribers) { delete(sub.region, id) })
}

// OnSelectionStateChanged subscribes to selection gained/lost notifications.
func (s *Session) OnSelectionStateChanged(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		return func() {}
	}
	id := s.subID()
	s.subs.state[id] = fn
	return s.unsubscribe(func(sub *subscribers) { delete(sub.state, id) })
}

// OnModeChanged subscribes to selection-mode broadcasts.
func (s *Session) OnModeChanged(fn func(Mode)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		return func() {}
	}
	id := s.subID()
	s.subs.mode[id] = fn
	return s.unsubscribe(func(sub *subscribers) { delete(sub.mode, id) })
}

// OnClosed subscribes to the terminal event. It fires at most once per
// session.
func (s *Session) OnClosed(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		return func() {}
	}
	id := s.subID()
	s.subs.closed[id] = fn
	return s.unsubscribe(func(sub *subscribers) { delete(sub.closed, id) })
}

// subID must be called with mu held.
func (s *Session) subID() uint64 {
	s.nextSubID++
	return s.nextSubID
}

func (s *Session) unsubscribe(remove func(*subscribers)) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.subs != nil {
			remove(s.subs)
		}
	}
}

// The capture helpers copy handler references while the caller holds mu, so
// the invocation outside the lock reflects a single post-mutation snapshot
// even if Dispose swaps the registry away mid-flight.

func captureRegion(subs *subscribers) []func(RegionEvent) {
	if subs == nil {
		return nil
	}
	fns := make([]func(RegionEvent), 0, len(subs.region))
	for _, fn := range subs.region {
		fns = append(fns, fn)
	}
	return fns
}

func captureState(subs *subscribers) []func(bool) {
	if subs == nil {
		return nil
	}
	fns := make([]func(bool), 0, len(subs.state))
	for _, fn := range subs.state {
		fns = append(fns, fn)
	}
	return fns
}

func captureMode(subs *subscribers) []func(Mode) {
	if subs == nil {
		return nil
	}
	fns := make([]func(Mode), 0, len(subs.mode))
	for _, fn := range subs.mode {
		fns = append(fns, fn)
	}
	return fns
}

func captureClosed(subs *subscribers) []func() {
	if subs == nil {
		return nil
	}
	fns := make([]func(), 0, len(subs.closed))
	for _, fn := range subs.closed {
		fns = append(fns, fn)
	}
	return fns
}
