//go:build windows

package element

import "testing"

func TestDetectAtOffscreenPoint(t *testing.T) {
	d := newPlatformDetector()
	// Far outside the virtual screen no window exists under the point; the
	// detector reports nothing rather than an error.
	desc, err := d.DetectAt(-32000, -32000)
	if err != nil {
		t.Fatalf("DetectAt: %v", err)
	}
	if desc != nil {
		t.Errorf("descriptor for off-screen point: %+v", desc)
	}
}
