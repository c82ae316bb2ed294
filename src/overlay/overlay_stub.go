//go:build !windows

package overlay

import "fmt"

func newPlatformWindow(cfg Config) (Window, error) {
	return nil, fmt.Errorf("overlay: capture windows are only supported on windows")
}
