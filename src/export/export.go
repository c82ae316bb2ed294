// Package export turns a finished capture into its destinations: clipboard
// image data and, optionally, a timestamped PNG file. Encoding runs on a
// small worker pool so the event loop never blocks on I/O.
package export

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"time"

	"screen-snip/src/annotation"
	"screen-snip/src/clipboard"
	"screen-snip/src/screenshot"
)

// Job is one capture ready for delivery.
type Job struct {
	Image *image.RGBA
	// Shapes are flattened onto the image before encoding.
	Shapes []annotation.Shape
	// Dir is the target directory for the file copy; empty exports to the
	// clipboard only.
	Dir string
}

// Result reports where the capture ended up. Path is empty for
// clipboard-only exports.
type Result struct {
	Path string
}

// Run delivers one job synchronously: flatten annotations, encode PNG, write
// clipboard, then optionally the file.
func Run(ctx context.Context, job Job) (Result, error) {
	if job.Image == nil {
		return Result{}, fmt.Errorf("export: nil image")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	img := job.Image
	if len(job.Shapes) > 0 {
		img = flatten(job.Image, job.Shapes)
	}

	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return Result{}, err
	}
	// Clipboard failure only sinks the job when there is no file copy to
	// fall back on.
	clipErr := clipboard.WriteImage(data)
	if job.Dir == "" {
		if clipErr != nil {
			return Result{}, fmt.Errorf("clipboard write: %w", clipErr)
		}
		return Result{}, nil
	}

	path := filepath.Join(job.Dir, fileName(time.Now()))
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	if clipErr != nil {
		log.Printf("Export: clipboard unavailable, file copy only: %v", clipErr)
	}
	return Result{Path: path}, nil
}

func fileName(now time.Time) string {
	return "snip_" + now.Format("20060102_150405") + ".png"
}

// flatten draws the annotation shapes over a copy of the capture. Stroke
// rendering is deliberately simple; the overlay editor previews with the
// same primitives.
func flatten(src *image.RGBA, shapes []annotation.Shape) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	for i := range shapes {
		drawShape(out, &shapes[i])
	}
	return out
}
