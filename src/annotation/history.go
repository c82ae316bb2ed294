package annotation

import "image"

// History manages the annotation list with snapshot-based undo/redo.
type History struct {
	shapes     []Shape
	undoStack  [][]Shape
	redoStack  [][]Shape
	maxHistory int
}

// NewHistory creates a history manager keeping at most maxHistory undo
// snapshots (50 when maxHistory <= 0).
func NewHistory(maxHistory int) *History {
	if maxHistory <= 0 {
		maxHistory = 50
	}
	return &History{maxHistory: maxHistory}
}

// snapshot deep-copies the current shape list, including point paths.
func (h *History) snapshot() []Shape {
	s := make([]Shape, len(h.shapes))
	for i, a := range h.shapes {
		s[i] = a
		s[i].Points = make([]image.Point, len(a.Points))
		copy(s[i].Points, a.Points)
	}
	return s
}

// Add appends a shape, records an undo point, and invalidates redo.
func (h *History) Add(s Shape) {
	h.undoStack = append(h.undoStack, h.snapshot())
	if len(h.undoStack) > h.maxHistory {
		h.undoStack = h.undoStack[1:]
	}
	h.redoStack = h.redoStack[:0]
	h.shapes = append(h.shapes, s)
}

// Undo restores the previous state; returns false when there is nothing to
// undo.
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	h.redoStack = append(h.redoStack, h.snapshot())
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.shapes = last
	return true
}

// Redo re-applies the last undone state; returns false when there is nothing
// to redo.
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	h.undoStack = append(h.undoStack, h.snapshot())
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.shapes = last
	return true
}

// Shapes returns the current annotation list.
func (h *History) Shapes() []Shape { return h.shapes }

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Clear drops all shapes and history.
func (h *History) Clear() {
	h.shapes = h.shapes[:0]
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}
