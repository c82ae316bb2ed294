//go:build windows

package notification

import "github.com/go-toast/toast"

func showPlatform(title, body string) error {
	n := toast.Notification{
		AppID:   "Screen Snip",
		Title:   title,
		Message: body,
	}
	return n.Push()
}
