package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screen-snip/src/annotation"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(context.Background(), Job{Image: testImage(32, 24), Dir: dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Path == "" {
		t.Fatal("expected a file path")
	}
	if filepath.Dir(res.Path) != dir {
		t.Errorf("file landed in %s, want %s", filepath.Dir(res.Path), dir)
	}
	base := filepath.Base(res.Path)
	if !strings.HasPrefix(base, "snip_") || !strings.HasSuffix(base, ".png") {
		t.Errorf("unexpected file name %q", base)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("decoded size %v, want 32x24", img.Bounds())
	}
}

func TestRunNilImage(t *testing.T) {
	if _, err := Run(context.Background(), Job{}); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Job{Image: testImage(8, 8), Dir: t.TempDir()}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestFlattenDrawsShapes(t *testing.T) {
	src := testImage(40, 40)
	red := color.RGBA{R: 255, A: 255}
	out := flatten(src, []annotation.Shape{{
		Tool:      annotation.ToolRect,
		Points:    []image.Point{{X: 5, Y: 5}, {X: 30, Y: 30}},
		Color:     red,
		LineWidth: 1,
	}})

	if out == src {
		t.Fatal("flatten must not mutate the source image")
	}
	if got := src.RGBAAt(5, 5); got == red {
		t.Error("source image was mutated")
	}
	if got := out.RGBAAt(5, 5); got != red {
		t.Errorf("rect corner not drawn: got %v", got)
	}
	if got := out.RGBAAt(15, 15); got == red {
		t.Error("rect interior should stay untouched for unfilled shape")
	}
}

func TestFlattenFilledRect(t *testing.T) {
	out := flatten(testImage(20, 20), []annotation.Shape{{
		Tool:   annotation.ToolRect,
		Points: []image.Point{{X: 2, Y: 2}, {X: 10, Y: 10}},
		Color:  color.RGBA{G: 255, A: 255},
		Filled: true,
	}})
	if got := out.RGBAAt(6, 6); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("filled rect interior not painted: got %v", got)
	}
}

func TestDrawShapeClipsOutOfBounds(t *testing.T) {
	img := testImage(10, 10)
	drawShape(img, &annotation.Shape{
		Tool:      annotation.ToolLine,
		Points:    []image.Point{{X: -20, Y: -20}, {X: 40, Y: 40}},
		Color:     color.RGBA{B: 255, A: 255},
		LineWidth: 3,
	})
	// Reaching here without a panic is the assertion; spot-check one pixel.
	if got := img.RGBAAt(5, 5); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("diagonal not drawn through center: got %v", got)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 3, 9, 14, 5, 2, 0, time.UTC)
	if got := fileName(at); got != "snip_20250309_140502.png" {
		t.Errorf("fileName = %q", got)
	}
}

func TestPoolBackpressure(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	release := make(chan struct{})
	cb := func(Result, error) { <-release }

	dir := t.TempDir()
	job := Job{Image: testImage(4, 4), Dir: dir}
	if !p.Submit(context.Background(), job, cb) {
		t.Fatal("first submit should be accepted")
	}

	// One job running plus one queued slot; keep submitting until the queue
	// is full, then the next must be dropped.
	deadline := time.After(2 * time.Second)
	accepted := 1
	for accepted < 2 {
		select {
		case <-deadline:
			t.Fatal("queue never filled")
		default:
		}
		if p.Submit(context.Background(), job, cb) {
			accepted++
		}
	}
	// With the worker blocked in cb and the slot occupied, submits drop.
	for i := 0; i < 5; i++ {
		if p.Submit(context.Background(), job, cb) {
			accepted++
		}
	}
	if accepted > 3 {
		t.Errorf("accepted %d jobs with a 1-slot queue", accepted)
	}
	close(release)
}

func TestPoolRunsCallback(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	got := make(chan Result, 1)
	ok := p.Submit(context.Background(), Job{Image: testImage(4, 4), Dir: t.TempDir()}, func(r Result, err error) {
		if err != nil {
			t.Errorf("job failed: %v", err)
		}
		got <- r
	})
	if !ok {
		t.Fatal("submit rejected")
	}
	select {
	case r := <-got:
		if r.Path == "" {
			t.Error("expected a file path in the result")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
}
