//go:build windows

package element

import (
	"image"
	"log"
	"syscall"

	"github.com/lxn/win"
)

var (
	user32DLL              = syscall.NewLazyDLL("user32.dll")
	procWindowFromPoint    = user32DLL.NewProc("WindowFromPoint")
	procGetAncestor        = user32DLL.NewProc("GetAncestor")
	procRealChildWindowFromPoint = user32DLL.NewProc("RealChildWindowFromPoint")
)

const gaRoot = 2

type windowsDetector struct{}

func newPlatformDetector() Detector { return &windowsDetector{} }

// DetectAt resolves the deepest real child window under the point and reports
// its class name and screen rectangle.
func (d *windowsDetector) DetectAt(x, y int) (*Descriptor, error) {
	hwnd := windowFromPoint(int32(x), int32(y))
	if hwnd == 0 {
		return nil, nil
	}

	// Descend from the top-level window to the child actually under the point,
	// so buttons and panes are picked rather than whole application windows.
	root, _, _ := procGetAncestor.Call(uintptr(hwnd), gaRoot)
	if root != 0 {
		var pt win.POINT
		pt.X = int32(x)
		pt.Y = int32(y)
		win.ScreenToClient(win.HWND(root), &pt)
		child, _, _ := procRealChildWindowFromPoint.Call(root, packPoint(pt.X, pt.Y))
		if child != 0 {
			hwnd = win.HWND(child)
		}
	}

	var rect win.RECT
	if !win.GetWindowRect(hwnd, &rect) {
		log.Printf("element: GetWindowRect failed for hwnd=%v", hwnd)
		return nil, nil
	}

	return &Descriptor{
		Handle:    uintptr(hwnd),
		ClassName: className(hwnd),
		Bounds:    image.Rect(int(rect.Left), int(rect.Top), int(rect.Right), int(rect.Bottom)),
	}, nil
}

func windowFromPoint(x, y int32) win.HWND {
	ret, _, _ := procWindowFromPoint.Call(packPoint(x, y))
	return win.HWND(ret)
}

// packPoint builds the by-value POINT argument used by the point-lookup APIs.
func packPoint(x, y int32) uintptr {
	return uintptr(uint32(x)) | uintptr(uint32(y))<<32
}

func className(hwnd win.HWND) string {
	var buf [256]uint16
	n, err := win.GetClassName(hwnd, &buf[0], len(buf))
	if err != nil || n <= 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}
