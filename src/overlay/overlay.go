package overlay

import (
	"image"

	"github.com/google/uuid"

	"screen-snip/src/annotation"
	"screen-snip/src/element"
)

// Window is one transparent capture overlay covering a single display. The
// session coordinator owns membership and arbitration; a Window only draws,
// tracks input, and reports outcomes through the callbacks it was built with.
type Window interface {
	Show()
	Close() error
	// SetSelectionLocked disables selection-start on this window. Once locked
	// a window stays locked until the whole session closes.
	SetSelectionLocked(locked bool)
}

// Annotator is implemented by windows that collect annotation shapes during
// the editable-selection state. Callers type-assert; test doubles need not
// provide it.
type Annotator interface {
	Shapes() []annotation.Shape
}

// SelectionHost is the arbitration surface a window's selection strategy
// calls into. It is implemented by the capture session.
type SelectionHost interface {
	CanStartSelection(owner uuid.UUID) bool
	SetSelection(owner uuid.UUID) error
	ClearSelection(owner uuid.UUID) error
	SetHighlightedElement(el *element.Descriptor, owner uuid.UUID) (bool, error)
	ClearHighlightOwner(owner uuid.UUID)
}

// Config carries everything a window needs at construction time. The session's
// window builder fills the callbacks so window events flow back into the
// session without the window ever importing it.
type Config struct {
	Owner          uuid.UUID
	Bounds         image.Rectangle
	Screens        []image.Rectangle
	DetectElements bool
	Detector       element.Detector
	Host           SelectionHost

	// OnRegionSelected fires when the user finishes a drag or picks an
	// element. editable=true means the region is finalized for annotation,
	// not merely an in-progress rubber band.
	OnRegionSelected func(bounds image.Rectangle, editable bool)
	OnCancelled      func()
	// OnModifierEdge fires on every press (down=true) and release of the
	// mode modifier key while this window has input focus.
	OnModifierEdge func(down bool)
}

// Factory constructs a Window from a Config. The session takes a Factory so
// tests can substitute doubles for the platform overlay.
type Factory func(cfg Config) (Window, error)

// NewFactory returns the platform window factory (Windows in this project).
func NewFactory() Factory {
	return newPlatformWindow
}
