package screenshot

import (
	"image"
	"image/color"
)

// maskPolygon whites out every pixel outside the freehand outline. The
// polygon arrives in virtual-screen coordinates and is shifted into the
// captured image's local space first.
func maskPolygon(img *image.RGBA, region Region) {
	local := make([]image.Point, len(region.Polygon))
	for i, p := range region.Polygon {
		local[i] = image.Point{X: p.X - region.X, Y: p.Y - region.Y}
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// Sample at pixel centers so edge pixels land consistently.
			if !insidePolygon(float64(x)+0.5, float64(y)+0.5, local) {
				img.SetRGBA(x, y, white)
			}
		}
	}
}

// insidePolygon is the even-odd ray casting test.
func insidePolygon(px, py float64, poly []image.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		xi, yi := float64(poly[i].X), float64(poly[i].Y)
		xj, yj := float64(poly[j].X), float64(poly[j].Y)
		if (yi > py) != (yj > py) && px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
