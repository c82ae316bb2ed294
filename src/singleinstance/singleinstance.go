// Package singleinstance keeps one resident capture process per machine.
// The resident binds a loopback TCP port; later invocations detect it and
// delegate their capture request instead of starting a second tray icon.
package singleinstance

import "context"

// Request is one delegated capture invocation.
type Request struct {
	// SaveToFile asks the resident to also write the capture to disk.
	SaveToFile bool
}

// Conn is one delegating client connection.
type Conn interface {
	Request() Request
	// RespondSuccess acknowledges the capture; path is the saved file, empty
	// for clipboard-only captures.
	RespondSuccess(path string) error
	RespondError(msg string) error
	Close() error
}

// Server owns the loopback endpoint and hands accepted requests to the
// event loop.
type Server interface {
	// Start binds the first port of the configured range; it fails when
	// another resident already holds it.
	Start(ctx context.Context) error
	Port() int
	// Next blocks for the next delegated request, or ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Client delegates an invocation to an already-running resident.
type Client interface {
	// TryDelegate scans the port range for a resident and forwards the
	// request. delegated=false with nil err means no resident was found.
	TryDelegate(ctx context.Context, req Request) (delegated bool, path string, err error)
}

func NewServer() Server { return &server{incoming: make(chan *serverConn, 8)} }

func NewClient() Client { return &client{} }
