package singleinstance

import (
	"context"
	"testing"
	"time"
)

func startTestServer(t *testing.T, ctx context.Context) Server {
	t.Helper()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestDelegateRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startTestServer(t, ctx)

	type result struct {
		delegated bool
		path      string
		err       error
	}
	got := make(chan result, 1)
	go func() {
		delegated, path, err := NewClient().TryDelegate(ctx, Request{SaveToFile: true})
		got <- result{delegated, path, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !conn.Request().SaveToFile {
		t.Error("expected a save-to-file request")
	}
	if err := conn.RespondSuccess("/tmp/snip_test.png"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	r := <-got
	if r.err != nil {
		t.Fatalf("client: %v", r.err)
	}
	if !r.delegated {
		t.Fatal("expected delegation to the resident")
	}
	if r.path != "/tmp/snip_test.png" {
		t.Errorf("path = %q", r.path)
	}
}

func TestDelegateErrorPropagates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startTestServer(t, ctx)

	errCh := make(chan error, 1)
	go func() {
		_, _, err := NewClient().TryDelegate(ctx, Request{})
		errCh <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().SaveToFile {
		t.Error("expected a clipboard-only request")
	}
	if err := conn.RespondError("capture already in progress"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	if err := <-errCh; err == nil || err.Error() != "capture already in progress" {
		t.Errorf("client error = %v", err)
	}
}

func TestNextAfterCloseReturnsError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startTestServer(t, ctx)

	got := make(chan error, 1)
	go func() {
		conn, err := srv.Next(ctx)
		if conn != nil {
			conn.Close()
		}
		got <- err
	}()

	// Give Next a moment to block on the queue before closing underneath it.
	time.Sleep(50 * time.Millisecond)
	if err := srv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	select {
	case err := <-got:
		if err != ErrServerClosed {
			t.Errorf("Next after close = %v, want ErrServerClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after close")
	}
}

func TestDetectResidentPort(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startTestServer(t, ctx)

	port, found := DetectResidentPort(ctx)
	if !found {
		t.Fatal("resident not detected")
	}
	if port != srv.Port() {
		t.Errorf("detected port %d, server on %d", port, srv.Port())
	}
}

func TestNoResident(t *testing.T) {
	// Narrow the scan range to ports nothing binds in tests.
	t.Setenv("SCREEN_SNIP_PORT_START", "49541")
	t.Setenv("SCREEN_SNIP_PORT_END", "49543")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	delegated, _, err := NewClient().TryDelegate(ctx, Request{})
	if err != nil {
		t.Fatalf("TryDelegate: %v", err)
	}
	if delegated {
		t.Error("delegated with no resident running")
	}
}

func TestPortRangeClamping(t *testing.T) {
	t.Setenv("SCREEN_SNIP_PORT_START", "80")
	t.Setenv("SCREEN_SNIP_PORT_END", "70000")
	start, end := portRange()
	if start != 1024 || end != 65535 {
		t.Errorf("portRange = %d..%d, want 1024..65535", start, end)
	}

	t.Setenv("SCREEN_SNIP_PORT_START", "50000")
	t.Setenv("SCREEN_SNIP_PORT_END", "49000")
	start, end = portRange()
	if start != 49000 || end != 50000 {
		t.Errorf("portRange = %d..%d, want swapped 49000..50000", start, end)
	}
}
