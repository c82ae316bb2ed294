package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"screen-snip/src/clipboard"
	"screen-snip/src/config"
	"screen-snip/src/eventloop"
	"screen-snip/src/logutil"
	"screen-snip/src/singleinstance"
	"screen-snip/src/tray"
)

// normalizeFlagDashes maps GNU-style --snip/--file to Go's single-dash form.
func normalizeFlagDashes() {
	for i := 1; i < len(os.Args); i++ {
		for _, name := range []string{"snip", "file"} {
			long := "--" + name
			switch {
			case os.Args[i] == long:
				os.Args[i] = "-" + name
			case strings.HasPrefix(os.Args[i], long+"="):
				os.Args[i] = os.Args[i][1:]
			}
		}
	}
}

func main() {
	// DPI awareness must be set before any window or metrics call.
	enableDPIAwareness()

	// The tray loop and overlay windows get their own threads; keep main on
	// a stable one.
	runtime.LockOSThread()

	snipOnce := flag.Bool("snip", false, "Capture once (delegating to a running instance if present) and exit")
	toFile := flag.Bool("file", false, "With -snip: also save the capture to the export directory")
	normalizeFlagDashes()
	flag.Parse()

	if *snipOnce {
		runSnipOnce(*toFile)
		return
	}

	// Load .env early so SCREEN_SNIP_PORT_* apply to the pre-flight check.
	_, _ = config.Load()

	// Pre-flight: if the resident port is taken, another instance runs.
	startPort, _ := singleinstance.DetectResidentPort(context.Background())
	if startPort != 0 {
		fmt.Printf("screen-snip already running on port %d\n", startPort)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)

	if err := clipboard.Init(); err != nil {
		// File export still works without a clipboard.
		log.Printf("Clipboard unavailable: %v", err)
	}

	log.Printf("Screen Snip starting, hotkey=%s, element detection=%v", cfg.Hotkey, cfg.ElementDetection)

	loop := eventloop.New(cfg)
	tooltip := fmt.Sprintf("Screen Snip - press %s to capture", cfg.Hotkey)
	loop.SetDefaultTooltip(tooltip)
	loop.StartHotkey(cfg.Hotkey)
	loop.WatchModifier(cfg.ModeModifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
		tray.Quit()
	}()

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("event loop stopped: %v", err)
		}
		tray.Quit()
	}()

	// Blocks until Quit; must run on the main goroutine.
	tray.Run(tray.Options{
		Tooltip:   tooltip,
		OnCapture: loop.RequestCapture,
		OnQuit:    cancel,
	})
}

// runSnipOnce delegates the capture to a resident instance when one exists,
// otherwise runs a standalone one-shot capture.
func runSnipOnce(toFile bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logutil.Setup(cfg.EnableFileLogging)

	ctx := context.Background()
	delegated, path, err := singleinstance.NewClient().TryDelegate(ctx, singleinstance.Request{SaveToFile: toFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
		os.Exit(1)
	}
	if delegated {
		if path != "" {
			fmt.Println(path)
		}
		return
	}

	log.Printf("No resident detected, capturing standalone")
	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
	}
	res, err := eventloop.New(cfg).CaptureOnce(ctx, toFile || cfg.SaveToFile)
	if err == eventloop.ErrCaptureCancelled {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
		os.Exit(1)
	}
	if res.Path != "" {
		fmt.Println(res.Path)
	}
}
