package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550
)

// portRange returns the inclusive TCP scan range, overridable through
// SCREEN_SNIP_PORT_START / SCREEN_SNIP_PORT_END and clamped to [1024, 65535].
func portRange() (int, int) {
	start := envPort("SCREEN_SNIP_PORT_START", defaultPortStart)
	end := envPort("SCREEN_SNIP_PORT_END", defaultPortEnd)
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
