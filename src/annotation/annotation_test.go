package annotation

import (
	"image"
	"image/color"
	"testing"
)

func TestShapeBounds(t *testing.T) {
	s := Shape{
		Tool:      ToolFreehand,
		Points:    []image.Point{{10, 40}, {30, 5}, {25, 60}},
		LineWidth: 4,
	}
	want := image.Rect(10-3, 5-3, 30+3, 60+3)
	if got := s.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}

	empty := Shape{Tool: ToolRect}
	if got := empty.Bounds(); got != (image.Rectangle{}) {
		t.Errorf("Bounds() of empty shape = %v, want zero rect", got)
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(0)
	red := color.RGBA{255, 0, 0, 255}

	h.Add(Shape{Tool: ToolRect, Points: []image.Point{{0, 0}, {10, 10}}, Color: red})
	h.Add(Shape{Tool: ToolLine, Points: []image.Point{{5, 5}, {20, 20}}, Color: red})
	if len(h.Shapes()) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(h.Shapes()))
	}

	if !h.Undo() {
		t.Fatalf("undo failed")
	}
	if len(h.Shapes()) != 1 || h.Shapes()[0].Tool != ToolRect {
		t.Errorf("unexpected state after undo: %v", h.Shapes())
	}
	if !h.Redo() {
		t.Fatalf("redo failed")
	}
	if len(h.Shapes()) != 2 {
		t.Errorf("expected 2 shapes after redo, got %d", len(h.Shapes()))
	}
	if h.Redo() {
		t.Errorf("redo on empty stack should fail")
	}
}

func TestHistoryAddInvalidatesRedo(t *testing.T) {
	h := NewHistory(0)
	h.Add(Shape{Tool: ToolRect, Points: []image.Point{{0, 0}, {1, 1}}})
	h.Undo()
	h.Add(Shape{Tool: ToolEllipse, Points: []image.Point{{2, 2}, {3, 3}}})

	if h.CanRedo() {
		t.Errorf("redo stack should be cleared by a new shape")
	}
}

func TestHistorySnapshotIsolation(t *testing.T) {
	h := NewHistory(0)
	pts := []image.Point{{0, 0}, {10, 10}}
	h.Add(Shape{Tool: ToolFreehand, Points: pts})
	h.Add(Shape{Tool: ToolRect, Points: []image.Point{{1, 1}, {2, 2}}})
	h.Undo()

	// Mutating the live shape must not corrupt the redo snapshot, which was
	// deep-copied when Undo ran.
	h.Shapes()[0].Points[0] = image.Point{99, 99}
	h.Redo()
	if got := h.Shapes()[0].Points[0]; got != (image.Point{0, 0}) {
		t.Errorf("redo snapshot was corrupted by a live mutation: %v", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(0)
	h.Add(Shape{Tool: ToolRect, Points: []image.Point{{0, 0}, {1, 1}}})
	h.Clear()
	if len(h.Shapes()) != 0 || h.CanUndo() || h.CanRedo() {
		t.Errorf("clear left residual state")
	}
}
