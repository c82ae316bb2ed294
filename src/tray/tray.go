package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Options wires tray menu actions to the application.
type Options struct {
	Tooltip   string
	OnCapture func()
	OnQuit    func()
}

var (
	mu      sync.Mutex
	tooltip string
	ready   bool
)

// Run starts the systray loop. It blocks until Quit is selected, so callers
// run it on the main goroutine and do the real work elsewhere.
func Run(opts Options) {
	systray.Run(func() { onReady(opts) }, func() { onExit(opts) })
}

// Quit asks the systray loop to exit.
func Quit() {
	systray.Quit()
}

// UpdateTooltip replaces the tray tooltip, e.g. "processing..." while an
// export runs.
func UpdateTooltip(text string) {
	mu.Lock()
	tooltip = text
	ok := ready
	mu.Unlock()
	if ok {
		systray.SetTooltip(text)
	}
}

func onReady(opts Options) {
	systray.SetTitle("Screen Snip")
	mu.Lock()
	tooltip = opts.Tooltip
	ready = true
	mu.Unlock()
	systray.SetTooltip(opts.Tooltip)

	mCapture := systray.AddMenuItem("Capture Region", "Capture a region of the screen")
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if opts.OnCapture != nil {
					opts.OnCapture()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	log.Printf("tray: ready")
}

func onExit(opts Options) {
	if opts.OnQuit != nil {
		opts.OnQuit()
	}
}
