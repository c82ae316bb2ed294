package annotation

import (
	"image"
	"image/color"
)

// Tool enumerates the annotation shape kinds.
type Tool int

const (
	ToolRect Tool = iota
	ToolEllipse
	ToolArrow
	ToolLine
	ToolFreehand
	ToolText
)

var toolNames = map[Tool]string{
	ToolRect:     "rectangle",
	ToolEllipse:  "ellipse",
	ToolArrow:    "arrow",
	ToolLine:     "line",
	ToolFreehand: "freehand",
	ToolText:     "text",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "unknown"
}

// Shape is one annotation placed on a captured image. Points are in image
// coordinates: two points for rect/ellipse/arrow/line, the full path for
// freehand, one anchor point for text.
type Shape struct {
	Tool      Tool
	Points    []image.Point
	Color     color.RGBA
	LineWidth int
	Text      string
	FontSize  int
	Filled    bool
}

// Bounds returns the shape's bounding rectangle, padded by line width so
// strokes are fully contained.
func (s *Shape) Bounds() image.Rectangle {
	if len(s.Points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := s.Points[0].X, s.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range s.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	pad := s.LineWidth/2 + 1
	return image.Rect(minX-pad, minY-pad, maxX+pad, maxY+pad)
}

// DefaultColors is the preset palette offered by the editor.
var DefaultColors = []color.RGBA{
	{255, 0, 0, 255},
	{0, 180, 0, 255},
	{0, 120, 255, 255},
	{255, 200, 0, 255},
	{255, 128, 0, 255},
	{180, 0, 255, 255},
	{255, 255, 255, 255},
	{0, 0, 0, 255},
}

// DefaultLineWidths are the preset stroke widths.
var DefaultLineWidths = []int{2, 3, 5, 8}
