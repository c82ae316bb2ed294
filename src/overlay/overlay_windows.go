//go:build windows

package overlay

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"

	"screen-snip/src/annotation"
	"screen-snip/src/screenshot"
)

const (
	minSelectionSpan  = 5
	keyPollTimerID    = 1
	keyPollIntervalMs = 25
)

var (
	user32DLL                    = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState         = user32DLL.NewProc("GetAsyncKeyState")

	gdi32DLL      = syscall.NewLazyDLL("gdi32.dll")
	procCreatePen = gdi32DLL.NewProc("CreatePen")
	procRectangle = gdi32DLL.NewProc("Rectangle")
	procPolyline  = gdi32DLL.NewProc("Polyline")
)

// WndProc callbacks are global, so live windows are looked up by handle.
var (
	registryMu sync.Mutex
	registry   = map[win.HWND]*platformWindow{}
)

type platformWindow struct {
	cfg    Config
	hwnd   win.HWND
	locked atomic.Bool
	closed atomic.Bool
	shown  atomic.Bool

	// Everything below is touched only on the window's message-loop thread.
	background   *image.RGBA
	selecting    bool
	editing      bool
	drawing      bool
	start, end   image.Point
	region       image.Rectangle
	elementRect  image.Rectangle
	hasElement   bool
	modifierDown bool
	escWasDown   bool
	enterWasDown bool
	undoWasDown  bool
	stroke       []image.Point
	shapes       *annotation.History
}

func newPlatformWindow(cfg Config) (Window, error) {
	if cfg.Bounds.Empty() {
		return nil, fmt.Errorf("overlay: empty window bounds")
	}
	w := &platformWindow{cfg: cfg, shapes: annotation.NewHistory(0)}
	return w, nil
}

// Show starts the window's message loop on its own locked OS thread. Window
// handles are thread-affine on Windows, so creation and the loop share it.
func (w *platformWindow) Show() {
	if !w.shown.CompareAndSwap(false, true) {
		return
	}
	go w.runLoop()
}

func (w *platformWindow) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	registryMu.Lock()
	hwnd := w.hwnd
	registryMu.Unlock()
	if hwnd != 0 {
		win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
	}
	return nil
}

func (w *platformWindow) SetSelectionLocked(locked bool) {
	w.locked.Store(locked)
	registryMu.Lock()
	hwnd := w.hwnd
	registryMu.Unlock()
	if hwnd != 0 {
		win.InvalidateRect(hwnd, nil, false)
	}
}

// Shapes returns the annotation shapes drawn during the edit state.
func (w *platformWindow) Shapes() []annotation.Shape {
	return w.shapes.Shapes()
}

func (w *platformWindow) runLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	bg, err := screenshot.CaptureRegion(screenshot.FromRect(w.cfg.Bounds))
	if err != nil {
		log.Printf("OVERLAY: background capture failed: %v", err)
	}
	w.background = bg

	className := syscall.StringToUTF16Ptr(fmt.Sprintf("SnipOverlay_%d", time.Now().UnixNano()))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW | win.CS_DBLCLKS,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS)),
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		log.Printf("OVERLAY: window class registration failed")
		return
	}
	defer win.UnregisterClass(className)

	b := w.cfg.Bounds
	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("Snip - drag to select, ESC cancels"),
		win.WS_POPUP|win.WS_VISIBLE,
		int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		log.Printf("OVERLAY: window creation failed for display %v", b)
		return
	}

	registryMu.Lock()
	registry[hwnd] = w
	w.hwnd = hwnd
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		delete(registry, hwnd)
		w.hwnd = 0
		registryMu.Unlock()
	}()

	win.ShowWindow(hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	win.UpdateWindow(hwnd)

	if win.SetTimer(hwnd, keyPollTimerID, keyPollIntervalMs, 0) == 0 {
		log.Printf("OVERLAY: key poll timer failed")
	}

	log.Printf("OVERLAY: window %v up on display %v", hwnd, b)

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
		if w.closed.Load() {
			break
		}
	}
	win.DestroyWindow(hwnd)
	log.Printf("OVERLAY: window %v closed", hwnd)
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	registryMu.Lock()
	w := registry[hwnd]
	registryMu.Unlock()
	if w == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	return w.handleMessage(hwnd, msg, wParam, lParam)
}

func (w *platformWindow) handleMessage(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_LBUTTONDOWN:
		w.onButtonDown(hwnd, clientPoint(lParam))
		return 0

	case win.WM_MOUSEMOVE:
		w.onMouseMove(hwnd, clientPoint(lParam))
		return 0

	case win.WM_LBUTTONUP:
		w.onButtonUp(hwnd, clientPoint(lParam))
		return 0

	case win.WM_LBUTTONDBLCLK:
		if w.editing {
			w.confirm()
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		w.paint(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_TIMER:
		if wParam == keyPollTimerID {
			w.pollKeys(hwnd)
		}
		return 0

	case win.WM_KEYDOWN:
		switch wParam {
		case win.VK_ESCAPE:
			w.cancel()
		case win.VK_RETURN:
			if w.editing {
				w.confirm()
			}
		}
		return 0

	case win.WM_NCHITTEST:
		// Everything is client area so mouse events always land here.
		return uintptr(win.HTCLIENT)

	case win.WM_CLOSE:
		win.KillTimer(hwnd, keyPollTimerID)
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_DESTROY:
		// No PostQuitMessage: each window owns its loop and the loop exits
		// on the closed flag, so a stray WM_QUIT must never linger in the
		// thread queue.
		w.closed.Store(true)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func (w *platformWindow) onButtonDown(hwnd win.HWND, at image.Point) {
	if w.locked.Load() {
		log.Printf("OVERLAY: selection locked, ignoring button down")
		return
	}

	// Element mode: a click takes the highlighted element as the region.
	if w.modifierDown && w.hasElement {
		if !w.cfg.Host.CanStartSelection(w.cfg.Owner) {
			log.Printf("OVERLAY: element pick advised against, proceeding is not useful")
			return
		}
		if err := w.cfg.Host.SetSelection(w.cfg.Owner); err != nil {
			log.Printf("OVERLAY: element selection rejected: %v", err)
			return
		}
		rect := w.elementRect.Add(w.cfg.Bounds.Min)
		if w.cfg.OnRegionSelected != nil {
			w.cfg.OnRegionSelected(rect, false)
		}
		return
	}

	if w.editing {
		if at.In(w.region) {
			// Drag inside the finalized region draws a freehand annotation.
			w.drawing = true
			w.stroke = []image.Point{at}
		} else {
			// Drag outside restarts the region.
			w.editing = false
			w.selecting = true
			w.start, w.end = at, at
		}
		win.SetCapture(hwnd)
		win.InvalidateRect(hwnd, nil, false)
		return
	}

	if !w.cfg.Host.CanStartSelection(w.cfg.Owner) {
		log.Printf("OVERLAY: another window holds the selection; starting anyway is last-writer-wins, declining")
		return
	}
	w.selecting = true
	w.start, w.end = at, at
	win.SetCapture(hwnd)
	win.InvalidateRect(hwnd, nil, false)
}

func (w *platformWindow) onMouseMove(hwnd win.HWND, at image.Point) {
	switch {
	case w.drawing:
		last := w.stroke[len(w.stroke)-1]
		dx, dy := at.X-last.X, at.Y-last.Y
		if dx*dx+dy*dy >= 4 {
			w.stroke = append(w.stroke, at)
			win.InvalidateRect(hwnd, nil, false)
		}
	case w.selecting:
		w.end = at
		win.InvalidateRect(hwnd, nil, false)
		win.UpdateWindow(hwnd)
	case w.modifierDown && w.cfg.DetectElements && w.cfg.Detector != nil:
		w.detectElement(hwnd, at)
	}
}

func (w *platformWindow) onButtonUp(hwnd win.HWND, at image.Point) {
	if w.drawing {
		win.ReleaseCapture()
		w.drawing = false
		if len(w.stroke) > 1 {
			w.shapes.Add(annotation.Shape{
				Tool:      annotation.ToolFreehand,
				Points:    w.stroke,
				Color:     color.RGBA{R: 255, A: 255},
				LineWidth: 3,
			})
		}
		w.stroke = nil
		win.InvalidateRect(hwnd, nil, false)
		return
	}
	if !w.selecting {
		return
	}
	win.ReleaseCapture()
	w.selecting = false
	w.end = at

	rect := image.Rect(w.start.X, w.start.Y, w.end.X, w.end.Y).Canon()
	if rect.Dx() <= minSelectionSpan || rect.Dy() <= minSelectionSpan {
		log.Printf("OVERLAY: selection %v too small, ignoring", rect)
		win.InvalidateRect(hwnd, nil, false)
		return
	}

	if err := w.cfg.Host.SetSelection(w.cfg.Owner); err != nil {
		log.Printf("OVERLAY: selection rejected: %v", err)
		return
	}
	w.region = rect
	w.editing = true
	virtual := rect.Add(w.cfg.Bounds.Min)
	log.Printf("OVERLAY: editable region %v", virtual)
	if w.cfg.OnRegionSelected != nil {
		w.cfg.OnRegionSelected(virtual, true)
	}
	win.InvalidateRect(hwnd, nil, false)
}

func (w *platformWindow) confirm() {
	virtual := w.region.Add(w.cfg.Bounds.Min)
	log.Printf("OVERLAY: region confirmed %v", virtual)
	w.editing = false
	if w.cfg.OnRegionSelected != nil {
		w.cfg.OnRegionSelected(virtual, false)
	}
}

func (w *platformWindow) cancel() {
	log.Printf("OVERLAY: cancelled")
	if w.cfg.OnCancelled != nil {
		w.cfg.OnCancelled()
	}
}

func (w *platformWindow) detectElement(hwnd win.HWND, at image.Point) {
	virtual := at.Add(w.cfg.Bounds.Min)
	desc, err := w.cfg.Detector.DetectAt(virtual.X, virtual.Y)
	if err != nil {
		log.Printf("OVERLAY: element detection failed: %v", err)
		return
	}
	granted, err := w.cfg.Host.SetHighlightedElement(desc, w.cfg.Owner)
	if err != nil {
		return
	}
	had := w.hasElement
	if granted && desc != nil {
		w.elementRect = desc.Bounds.Sub(w.cfg.Bounds.Min)
		w.hasElement = true
	} else {
		w.hasElement = false
	}
	if w.hasElement || had {
		win.InvalidateRect(hwnd, nil, false)
	}
}

func (w *platformWindow) pollKeys(hwnd win.HWND) {
	escDown := asyncKeyDown(win.VK_ESCAPE)
	if escDown && !w.escWasDown {
		w.cancel()
	}
	w.escWasDown = escDown

	enterDown := asyncKeyDown(win.VK_RETURN)
	if enterDown && !w.enterWasDown && w.editing {
		w.confirm()
	}
	w.enterWasDown = enterDown

	undoDown := asyncKeyDown(win.VK_CONTROL) && asyncKeyDown('Z')
	if undoDown && !w.undoWasDown && w.editing {
		w.shapes.Undo()
		win.InvalidateRect(hwnd, nil, false)
	}
	w.undoWasDown = undoDown

	modDown := asyncKeyDown(win.VK_MENU)
	if modDown != w.modifierDown {
		w.modifierDown = modDown
		if !modDown && w.hasElement {
			w.hasElement = false
			w.cfg.Host.ClearHighlightOwner(w.cfg.Owner)
			win.InvalidateRect(hwnd, nil, false)
		}
		if w.cfg.OnModifierEdge != nil {
			w.cfg.OnModifierEdge(modDown)
		}
	}
}

func (w *platformWindow) paint(hdc win.HDC) {
	if w.background != nil {
		blitBackground(hdc, w.background)
	}
	drawHints(hdc, w.hintLines())

	if w.hasElement {
		strokeRect(hdc, w.elementRect, 0x00D7FF, 2) // amber highlight, BGR
	}
	if w.selecting {
		strokeRect(hdc, image.Rect(w.start.X, w.start.Y, w.end.X, w.end.Y).Canon(), 0x0000FF, 3)
	}
	if w.editing {
		strokeRect(hdc, w.region, 0x00FF00, 3)
	}
	for _, s := range w.shapes.Shapes() {
		if s.Tool == annotation.ToolFreehand {
			strokePolyline(hdc, s.Points, 0x0000FF, s.LineWidth)
		}
	}
	if w.drawing && len(w.stroke) > 1 {
		strokePolyline(hdc, w.stroke, 0x0000FF, 3)
	}
}

func (w *platformWindow) hintLines() []string {
	if w.locked.Load() {
		return []string{"Selection active on another display"}
	}
	if w.editing {
		return []string{"ENTER confirm   ESC cancel", "Drag inside to annotate, outside to reselect"}
	}
	lines := []string{"ESC cancel   drag to select"}
	if w.cfg.DetectElements {
		lines = append(lines, "Hold ALT to pick a window element")
	}
	return lines
}

func clientPoint(lParam uintptr) image.Point {
	return image.Point{
		X: int(int16(win.LOWORD(uint32(lParam)))),
		Y: int(int16(win.HIWORD(uint32(lParam)))),
	}
}

func asyncKeyDown(vk int32) bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(state)&0x8000 != 0
}

func strokeRect(hdc win.HDC, r image.Rectangle, colorRef uintptr, width int) {
	pen, _, _ := procCreatePen.Call(0, uintptr(width), colorRef)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
	procRectangle.Call(uintptr(hdc), uintptr(r.Min.X), uintptr(r.Min.Y), uintptr(r.Max.X), uintptr(r.Max.Y))
	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(pen))
}

func strokePolyline(hdc win.HDC, points []image.Point, colorRef uintptr, width int) {
	if len(points) < 2 {
		return
	}
	pen, _, _ := procCreatePen.Call(0, uintptr(width), colorRef)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	winPoints := make([]win.POINT, len(points))
	for i, p := range points {
		winPoints[i] = win.POINT{X: int32(p.X), Y: int32(p.Y)}
	}
	procPolyline.Call(uintptr(hdc), uintptr(unsafe.Pointer(&winPoints[0])), uintptr(len(winPoints)))
	win.SelectObject(hdc, oldPen)
	win.DeleteObject(win.HGDIOBJ(pen))
}

func drawHints(hdc win.HDC, lines []string) {
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0x00FFFF))
	y := int32(16)
	for _, line := range lines {
		win.TextOut(hdc, 16, y, syscall.StringToUTF16Ptr(line), int32(len(line)))
		y += 22
	}
}

// blitBackground paints the captured display pixels behind the selection UI.
func blitBackground(hdc win.HDC, img *image.RGBA) {
	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height), // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// RGBA to BGRA, honoring the DWORD-aligned row stride.
	stride := ((width*32 + 31) &^ 31) / 8
	dst := unsafe.Slice((*byte)(pBits), stride*height)
	for y := 0; y < height; y++ {
		srcRow := img.Pix[y*img.Stride : y*img.Stride+width*4]
		dstRow := dst[y*stride : y*stride+width*4]
		for x := 0; x < width; x++ {
			dstRow[x*4+0] = srcRow[x*4+2]
			dstRow[x*4+1] = srcRow[x*4+1]
			dstRow[x*4+2] = srcRow[x*4+0]
			dstRow[x*4+3] = srcRow[x*4+3]
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}
