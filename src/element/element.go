package element

import "image"

// BoundsTolerance is the per-edge slack, in device-independent pixels, under
// which two reported bounds are considered the same. The platform detector can
// report jittering rectangles for the same logical element on repeated polls.
const BoundsTolerance = 5

// Descriptor identifies a UI element detected under a screen point.
type Descriptor struct {
	Handle    uintptr
	ClassName string
	Bounds    image.Rectangle
}

// EquivalentTo reports whether d and other describe the same logical element.
// Handle and class name must match exactly; each bounds edge may differ by
// less than BoundsTolerance.
func (d *Descriptor) EquivalentTo(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Handle != other.Handle || d.ClassName != other.ClassName {
		return false
	}
	return withinTolerance(d.Bounds.Min.X, other.Bounds.Min.X) &&
		withinTolerance(d.Bounds.Min.Y, other.Bounds.Min.Y) &&
		withinTolerance(d.Bounds.Max.X, other.Bounds.Max.X) &&
		withinTolerance(d.Bounds.Max.Y, other.Bounds.Max.Y)
}

func withinTolerance(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < BoundsTolerance
}

// Detector resolves the UI element under a point in virtual-screen
// coordinates. Implementations are platform specific; DetectAt returns nil
// (and no error) when nothing useful is under the point.
type Detector interface {
	DetectAt(x, y int) (*Descriptor, error)
}

// NewDetector returns the platform implementation.
func NewDetector() Detector {
	return newPlatformDetector()
}
