package element

import (
	"image"
	"testing"
)

func TestEquivalentTo(t *testing.T) {
	base := &Descriptor{Handle: 0x42, ClassName: "Button", Bounds: image.Rect(100, 100, 300, 140)}

	cases := []struct {
		name  string
		other *Descriptor
		want  bool
	}{
		{"identical", &Descriptor{Handle: 0x42, ClassName: "Button", Bounds: image.Rect(100, 100, 300, 140)}, true},
		{"jitter 3px each edge", &Descriptor{Handle: 0x42, ClassName: "Button", Bounds: image.Rect(103, 97, 303, 137)}, true},
		{"jitter 4px", &Descriptor{Handle: 0x42, ClassName: "Button", Bounds: image.Rect(104, 104, 304, 144)}, true},
		{"shift 5px hits threshold", &Descriptor{Handle: 0x42, ClassName: "Button", Bounds: image.Rect(105, 100, 300, 140)}, false},
		{"shift 6px", &Descriptor{Handle: 0x42, ClassName: "Button", Bounds: image.Rect(106, 106, 306, 146)}, false},
		{"different handle", &Descriptor{Handle: 0x43, ClassName: "Button", Bounds: image.Rect(100, 100, 300, 140)}, false},
		{"different class", &Descriptor{Handle: 0x42, ClassName: "Edit", Bounds: image.Rect(100, 100, 300, 140)}, false},
	}

	for _, tc := range cases {
		if got := base.EquivalentTo(tc.other); got != tc.want {
			t.Errorf("%s: EquivalentTo = %v, want %v", tc.name, got, tc.want)
		}
		if got := tc.other.EquivalentTo(base); got != tc.want {
			t.Errorf("%s (reversed): EquivalentTo = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEquivalentToNil(t *testing.T) {
	d := &Descriptor{Handle: 1, ClassName: "Pane"}
	if d.EquivalentTo(nil) {
		t.Errorf("descriptor equivalent to nil")
	}
	var a, b *Descriptor
	if !a.EquivalentTo(b) {
		t.Errorf("two nil descriptors should be equivalent")
	}
}
