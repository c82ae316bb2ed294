//go:build !windows

package main

// enableDPIAwareness sets per-monitor DPI awareness on Windows so overlay
// windows and screen metrics agree on coordinates. No-op elsewhere.
func enableDPIAwareness() {}
