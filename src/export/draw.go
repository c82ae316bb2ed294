package export

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"screen-snip/src/annotation"
)

func drawShape(img *image.RGBA, s *annotation.Shape) {
	switch s.Tool {
	case annotation.ToolRect:
		if len(s.Points) >= 2 {
			drawRect(img, rectBetween(s.Points[0], s.Points[1]), s.Color, s.LineWidth, s.Filled)
		}
	case annotation.ToolEllipse:
		if len(s.Points) >= 2 {
			drawEllipse(img, rectBetween(s.Points[0], s.Points[1]), s.Color, s.LineWidth)
		}
	case annotation.ToolLine:
		if len(s.Points) >= 2 {
			drawLine(img, s.Points[0], s.Points[1], s.Color, s.LineWidth)
		}
	case annotation.ToolArrow:
		if len(s.Points) >= 2 {
			drawLine(img, s.Points[0], s.Points[1], s.Color, s.LineWidth)
			drawArrowHead(img, s.Points[0], s.Points[1], s.Color, s.LineWidth)
		}
	case annotation.ToolFreehand:
		for i := 1; i < len(s.Points); i++ {
			drawLine(img, s.Points[i-1], s.Points[i], s.Color, s.LineWidth)
		}
	case annotation.ToolText:
		if len(s.Points) >= 1 && s.Text != "" {
			drawText(img, s.Points[0], s.Text, s.Color)
		}
	}
}

func rectBetween(a, b image.Point) image.Rectangle {
	return image.Rect(a.X, a.Y, b.X, b.Y).Canon()
}

func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, width int, filled bool) {
	if filled {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				setPixel(img, x, y, c)
			}
		}
		return
	}
	for w := 0; w < max(width, 1); w++ {
		edge := r.Inset(-w)
		for x := edge.Min.X; x <= edge.Max.X; x++ {
			setPixel(img, x, edge.Min.Y, c)
			setPixel(img, x, edge.Max.Y, c)
		}
		for y := edge.Min.Y; y <= edge.Max.Y; y++ {
			setPixel(img, edge.Min.X, y, c)
			setPixel(img, edge.Max.X, y, c)
		}
	}
}

// drawLine rasterizes with the classic Bresenham walk, thickened by stamping
// a small square at each step.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA, width int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	x, y := a.X, a.Y
	for {
		stamp(img, x, y, c, width)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawEllipse(img *image.RGBA, r image.Rectangle, c color.RGBA, width int) {
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	rx := float64(r.Dx()) / 2
	ry := float64(r.Dy()) / 2
	if rx < 1 || ry < 1 {
		return
	}
	// Parametric walk with enough steps that adjacent samples touch.
	steps := 4 * (r.Dx() + r.Dy())
	if steps < 16 {
		steps = 16
	}
	for i := 0; i <= steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := int(cx + rx*math.Cos(theta))
		y := int(cy + ry*math.Sin(theta))
		stamp(img, x, y, c, width)
	}
}

func drawArrowHead(img *image.RGBA, from, to image.Point, c color.RGBA, width int) {
	length := 6.0 + 2.0*float64(width)
	angle := math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X))
	for _, offset := range []float64{math.Pi / 7, -math.Pi / 7} {
		tip := image.Point{
			X: to.X - int(length*math.Cos(angle+offset)),
			Y: to.Y - int(length*math.Sin(angle+offset)),
		}
		drawLine(img, to, tip, c, width)
	}
}

func drawText(img *image.RGBA, at image.Point, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(text)
}

func stamp(img *image.RGBA, x, y int, c color.RGBA, width int) {
	half := max(width, 1) / 2
	for oy := -half; oy <= half; oy++ {
		for ox := -half; ox <= half; ox++ {
			setPixel(img, x+ox, y+oy, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
