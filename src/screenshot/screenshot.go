package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"
)

// Region is a rectangular screen area in virtual-screen coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
	// Polygon, when it has at least 3 vertices, masks the capture to a
	// freehand outline. Vertices are in absolute virtual-screen coordinates.
	Polygon []image.Point
}

// FromRect converts an image.Rectangle in virtual-screen coordinates.
func FromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Displays returns the bounds of every active display, in virtual-screen
// coordinates, ordered by display index. The capture session opens one
// overlay window per entry.
func Displays() ([]image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	bounds := make([]image.Rectangle, n)
	for i := 0; i < n; i++ {
		bounds[i] = screenshot.GetDisplayBounds(i)
	}
	return bounds, nil
}

// VirtualBounds returns the union rectangle covering all active displays.
func VirtualBounds() (image.Rectangle, error) {
	displays, err := Displays()
	if err != nil {
		return image.Rectangle{}, err
	}
	union := displays[0]
	for _, b := range displays[1:] {
		union = union.Union(b)
	}
	return union, nil
}

// CaptureRegion captures the pixels of one screen region.
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %v", err)
	}
	if len(region.Polygon) >= 3 {
		maskPolygon(img, region)
	}
	return img, nil
}

// CaptureRegionPNG captures a region and encodes it as PNG bytes.
func CaptureRegionPNG(region Region) ([]byte, error) {
	img, err := CaptureRegion(region)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %v", err)
	}
	return buf.Bytes(), nil
}
