//go:build !windows

package notification

import "log"

func showPlatform(title, body string) error {
	log.Printf("notification: %s: %s", title, body)
	return nil
}
