//go:build !windows

package element

type stubDetector struct{}

func newPlatformDetector() Detector { return stubDetector{} }

// DetectAt is a stub for non-Windows platforms: element detection is
// unavailable, every point resolves to no element.
func (stubDetector) DetectAt(x, y int) (*Descriptor, error) {
	return nil, nil
}
