// Package eventloop is the single-goroutine coordinator. Hotkey presses,
// delegated capture requests, capture-session events and export results all
// arrive as channel messages, so state never needs a lock.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-snip/src/annotation"
	"screen-snip/src/config"
	"screen-snip/src/element"
	"screen-snip/src/export"
	"screen-snip/src/hotkey"
	"screen-snip/src/notification"
	"screen-snip/src/overlay"
	"screen-snip/src/screenshot"
	"screen-snip/src/session"
	"screen-snip/src/singleinstance"
	"screen-snip/src/tray"
)

const exportDeadline = 30 * time.Second

// teardownGrace is how long to wait after closing overlay windows before
// sampling screen pixels, so the capture never includes the overlay itself.
const teardownGrace = 200 * time.Millisecond

// Loop drives capture sessions, one at a time.
type Loop struct {
	cfg      *config.Config
	factory  overlay.Factory
	detector element.Detector
	displays func() ([]image.Rectangle, error)
	pool     *export.Pool
	srv      singleinstance.Server

	hotkeyCh  chan struct{}
	sessionCh chan sessionEvent
	results   chan exportOutcome

	current        *capture
	defaultTooltip string
}

type sessionEvent struct {
	region   session.RegionEvent
	mode     *session.Mode
	modifier *bool
	closed   bool
}

type exportOutcome struct {
	res    export.Result
	err    error
	target resultTarget
	cancel context.CancelFunc
}

// resultTarget is where a finished capture reports: tray notifications for
// hotkey captures, the delegating client's connection for run-once requests.
type resultTarget interface {
	OnSuccess(res export.Result)
	OnError(err error)
	OnCancelled()
	Close()
}

type notifyTarget struct{}

func (notifyTarget) OnSuccess(res export.Result) { notification.ExportResult(res.Path) }
func (notifyTarget) OnError(err error)           { notification.ExportError(err) }
func (notifyTarget) OnCancelled()                {}
func (notifyTarget) Close()                      {}

type delegatedTarget struct {
	conn singleinstance.Conn
}

func (t delegatedTarget) OnSuccess(res export.Result) {
	if err := t.conn.RespondSuccess(res.Path); err != nil {
		log.Printf("eventloop: delegated response failed: %v", err)
	}
}

func (t delegatedTarget) OnError(err error) {
	_ = t.conn.RespondError(err.Error())
}

func (t delegatedTarget) OnCancelled() {
	_ = t.conn.RespondError("selection cancelled")
}

func (t delegatedTarget) Close() { _ = t.conn.Close() }

// capture is the state of the in-flight session.
type capture struct {
	sess       *session.Session
	windows    map[session.WindowID]overlay.Window
	bounds     map[session.WindowID]image.Rectangle
	target     resultTarget
	saveToFile bool
	finalizing bool
	unsubs     []func()
}

// New wires a loop over the real platform collaborators.
func New(cfg *config.Config) *Loop {
	return &Loop{
		cfg:            cfg,
		factory:        overlay.NewFactory(),
		detector:       element.NewDetector(),
		displays:       screenshot.Displays,
		pool:           export.NewPool(1),
		hotkeyCh:       make(chan struct{}, 4),
		sessionCh:      make(chan sessionEvent, 16),
		results:        make(chan exportOutcome, 1),
		defaultTooltip: "Screen Snip",
	}
}

// SetDefaultTooltip sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// StartHotkey registers the global capture hotkey and posts presses into the
// loop. Presses while a capture is active are dropped by the 1-slot queue
// semantics of startCapture.
func (l *Loop) StartHotkey(combo string) {
	if combo == "" {
		return
	}
	hotkey.Listen(combo, l.RequestCapture)
}

// RequestCapture posts a capture request into the loop (hotkey or tray menu).
func (l *Loop) RequestCapture() {
	select {
	case l.hotkeyCh <- struct{}{}:
	default:
	}
}

// WatchModifier registers the global mode-modifier key and posts its edges
// into the loop.
func (l *Loop) WatchModifier(name string) {
	hotkey.WatchModifier(name, func(down bool) {
		d := down
		select {
		case l.sessionCh <- sessionEvent{modifier: &d}:
		default:
		}
	})
}

// Run starts the singleinstance resident endpoint and processes events until
// ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = singleinstance.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("eventloop: resident on 127.0.0.1:%d", p)
	}
	defer l.srv.Close()
	defer l.pool.Close()

	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			l.abandonCurrent()
			return ctx.Err()
		case <-l.hotkeyCh:
			l.startCapture(ctx, notifyTarget{}, l.cfg.SaveToFile)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			target := delegatedTarget{conn: conn}
			if l.current != nil {
				target.OnError(fmt.Errorf("capture already in progress"))
				target.Close()
				continue
			}
			l.startCapture(ctx, target, conn.Request().SaveToFile)
		case ev := <-l.sessionCh:
			l.handleSessionEvent(ctx, ev)
		case out := <-l.results:
			l.handleOutcome(out)
		}
	}
}

// onceResult carries a CaptureOnce outcome.
type onceResult struct {
	res       export.Result
	err       error
	cancelled bool
}

type onceTarget struct {
	ch chan onceResult
}

func (t onceTarget) OnSuccess(res export.Result) { t.ch <- onceResult{res: res} }
func (t onceTarget) OnError(err error)           { t.ch <- onceResult{err: err} }
func (t onceTarget) OnCancelled()                { t.ch <- onceResult{cancelled: true} }
func (t onceTarget) Close()                      {}

// ErrCaptureCancelled reports that the user dismissed the capture overlay.
var ErrCaptureCancelled = errors.New("capture cancelled")

// CaptureOnce runs a single capture to completion without starting the
// resident endpoint. Used by run-once invocations when no resident exists.
func (l *Loop) CaptureOnce(ctx context.Context, saveToFile bool) (export.Result, error) {
	defer l.pool.Close()

	done := make(chan onceResult, 1)
	l.startCapture(ctx, onceTarget{ch: done}, saveToFile)

	for {
		select {
		case <-ctx.Done():
			l.abandonCurrent()
			return export.Result{}, ctx.Err()
		case ev := <-l.sessionCh:
			l.handleSessionEvent(ctx, ev)
		case out := <-l.results:
			l.handleOutcome(out)
		case r := <-done:
			if r.cancelled {
				return export.Result{}, ErrCaptureCancelled
			}
			return r.res, r.err
		}
	}
}

func (l *Loop) startCapture(ctx context.Context, target resultTarget, saveToFile bool) {
	if l.current != nil {
		log.Printf("eventloop: capture already in progress, ignoring")
		return
	}

	displays, err := l.displays()
	if err != nil {
		log.Printf("eventloop: no displays: %v", err)
		target.OnError(err)
		target.Close()
		return
	}

	sess := session.New(session.Options{
		Windows:     l.factory,
		Detector:    l.detector,
		DefaultMode: defaultMode(l.cfg),
	})
	cur := &capture{
		sess:       sess,
		windows:    make(map[session.WindowID]overlay.Window, len(displays)),
		bounds:     make(map[session.WindowID]image.Rectangle, len(displays)),
		target:     target,
		saveToFile: saveToFile,
	}

	cur.unsubs = append(cur.unsubs,
		sess.OnRegionSelected(func(ev session.RegionEvent) {
			l.sessionCh <- sessionEvent{region: ev}
		}),
		sess.OnClosed(func() {
			l.sessionCh <- sessionEvent{closed: true}
		}),
		sess.OnModeChanged(func(m session.Mode) {
			// SetMode can be invoked from the loop goroutine itself (modifier
			// edge handling), so this send must never block; a dropped tooltip
			// refresh is harmless.
			mode := m
			select {
			case l.sessionCh <- sessionEvent{mode: &mode}:
			default:
			}
		}),
	)

	for _, d := range displays {
		b := sess.NewWindowBuilder().WithBounds(d).WithScreens(displays)
		if l.cfg.ElementDetection {
			b = b.EnableElementDetection()
		}
		w, id, err := b.Build()
		if err != nil {
			log.Printf("eventloop: window build failed for %v: %v", d, err)
			sess.Dispose()
			for _, u := range cur.unsubs {
				u()
			}
			target.OnError(err)
			target.Close()
			return
		}
		cur.windows[id] = w
		cur.bounds[id] = d
	}

	l.current = cur
	l.setTooltip("Screen Snip: select a region")
	for _, w := range cur.windows {
		w.Show()
	}
	log.Printf("eventloop: capture session started with %d windows", len(cur.windows))
}

func (l *Loop) handleSessionEvent(ctx context.Context, ev sessionEvent) {
	cur := l.current
	if cur == nil {
		return
	}

	switch {
	case ev.modifier != nil:
		// Global modifier edge while a session is active flips the mode;
		// SetMode dedupes against the overlay windows' own edge reports.
		if *ev.modifier {
			_ = cur.sess.SetMode(session.ModeElement)
		} else {
			_ = cur.sess.SetMode(session.ModeFree)
		}

	case ev.mode != nil:
		if *ev.mode == session.ModeElement {
			l.setTooltip("Screen Snip: element pick")
		} else {
			l.setTooltip("Screen Snip: select a region")
		}

	case ev.closed:
		if cur.finalizing {
			return
		}
		// Closed without a finalized region means the user cancelled.
		log.Printf("eventloop: capture cancelled")
		l.releaseCurrent()

	case ev.region.Editable:
		l.setTooltip("Screen Snip: editing selection")

	default:
		l.finalizeCapture(ctx, cur, ev.region)
	}
}

func (l *Loop) finalizeCapture(ctx context.Context, cur *capture, ev session.RegionEvent) {
	cur.finalizing = true

	shapes := collectShapes(cur, ev)
	cur.sess.Dispose()
	for _, u := range cur.unsubs {
		u()
	}
	cur.unsubs = nil

	time.Sleep(teardownGrace)

	img, err := screenshot.CaptureRegion(screenshot.FromRect(ev.Bounds))
	if err != nil {
		log.Printf("eventloop: region capture failed: %v", err)
		cur.target.OnError(err)
		cur.target.Close()
		l.current = nil
		l.setTooltip(l.defaultTooltip)
		return
	}

	dir := ""
	if cur.saveToFile {
		dir = l.cfg.ExportDir
	}
	jobCtx, cancel := context.WithTimeout(ctx, exportDeadline)
	l.setTooltip("Screen Snip: exporting...")
	submitted := l.pool.Submit(jobCtx, export.Job{Image: img, Shapes: shapes, Dir: dir}, func(res export.Result, err error) {
		l.results <- exportOutcome{res: res, err: err, target: cur.target, cancel: cancel}
	})
	if !submitted {
		cancel()
		cur.target.OnError(fmt.Errorf("export queue full"))
		cur.target.Close()
		l.current = nil
		l.setTooltip(l.defaultTooltip)
	}
}

// collectShapes pulls annotation shapes from the reporting window and shifts
// them from window-local into region-local coordinates.
func collectShapes(cur *capture, ev session.RegionEvent) []annotation.Shape {
	w := cur.windows[ev.Window]
	a, ok := w.(overlay.Annotator)
	if !ok {
		return nil
	}
	winBounds, ok := cur.bounds[ev.Window]
	if !ok {
		return nil
	}
	offset := winBounds.Min.Sub(ev.Bounds.Min)
	shapes := a.Shapes()
	out := make([]annotation.Shape, 0, len(shapes))
	for _, s := range shapes {
		moved := s
		moved.Points = make([]image.Point, len(s.Points))
		for i, p := range s.Points {
			moved.Points[i] = p.Add(offset)
		}
		out = append(out, moved)
	}
	return out
}

func (l *Loop) handleOutcome(out exportOutcome) {
	if out.cancel != nil {
		defer out.cancel()
	}
	defer out.target.Close()
	l.current = nil
	l.setTooltip(l.defaultTooltip)

	if out.err != nil {
		log.Printf("eventloop: export failed: %v", out.err)
		out.target.OnError(out.err)
		return
	}
	log.Printf("eventloop: export done, path=%q", out.res.Path)
	out.target.OnSuccess(out.res)
}

func (l *Loop) releaseCurrent() {
	cur := l.current
	if cur == nil {
		return
	}
	for _, u := range cur.unsubs {
		u()
	}
	cur.sess.Dispose()
	cur.target.OnCancelled()
	cur.target.Close()
	l.current = nil
	l.setTooltip(l.defaultTooltip)
}

func (l *Loop) abandonCurrent() {
	l.releaseCurrent()
}

func (l *Loop) setTooltip(text string) {
	tray.UpdateTooltip(text)
}

func defaultMode(cfg *config.Config) session.Mode {
	if cfg != nil && cfg.DefaultMode == "element" {
		return session.ModeElement
	}
	return session.ModeFree
}
