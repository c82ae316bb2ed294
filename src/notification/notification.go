package notification

import "log"

// ExportResult tells the user where the capture ended up: a file path, or an
// empty path for a clipboard-only export.
func ExportResult(path string) {
	body := "Screenshot copied to clipboard"
	if path != "" {
		body = "Screenshot saved to " + path
	}
	show("Capture complete", body)
}

// ExportError surfaces a failed export. Capture failures are never fatal to
// the process; the user just retries.
func ExportError(err error) {
	if err == nil {
		return
	}
	show("Capture failed", err.Error())
}

func show(title, body string) {
	go func() {
		if err := showPlatform(title, body); err != nil {
			log.Printf("notification: %v", err)
		}
	}()
}
