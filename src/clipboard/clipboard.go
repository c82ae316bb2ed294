package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned when no system clipboard is usable, either
// because Init was never called or because it failed (e.g. headless CI).
var ErrUnavailable = errors.New("clipboard: not initialized")

var (
	writeMu sync.Mutex
	ready   bool
)

// Init must be called once before any write. It fails when no system
// clipboard is available.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// WriteText performs a mutex-guarded text write to prevent corruption under
// parallel writes.
func WriteText(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteImage places PNG-encoded image bytes on the clipboard.
func WriteImage(pngData []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(clipboard.FmtImage, pngData)
	return nil
}
