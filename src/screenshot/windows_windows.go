//go:build windows

package screenshot

import (
	"fmt"
	"image"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32              = syscall.NewLazyDLL("user32.dll")
	procEnumWindows     = user32.NewProc("EnumWindows")
	procIsWindowVisible = user32.NewProc("IsWindowVisible")
	procIsIconic        = user32.NewProc("IsIconic")
	procGetWindowTextW  = user32.NewProc("GetWindowTextW")
)

func enumerateWindows(monitor image.Rectangle) ([]Window, error) {
	var found []Window
	cb := windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if w, ok := describeWindow(win.HWND(hwnd), monitor); ok {
			found = append(found, w)
		}
		return 1
	})
	r, _, err := procEnumWindows.Call(cb, 0)
	if r == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %v", err)
	}
	return found, nil
}

func describeWindow(hwnd win.HWND, monitor image.Rectangle) (Window, bool) {
	if v, _, _ := procIsWindowVisible.Call(uintptr(hwnd)); v == 0 {
		return Window{}, false
	}
	if m, _, _ := procIsIconic.Call(uintptr(hwnd)); m != 0 {
		return Window{}, false
	}

	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return Window{}, false
	}
	name := windows.UTF16ToString(buf[:n])

	var rc win.RECT
	if !win.GetWindowRect(hwnd, &rc) {
		return Window{}, false
	}
	abs := image.Rect(int(rc.Left), int(rc.Top), int(rc.Right), int(rc.Bottom))
	if abs.Dx() <= 0 || abs.Dy() <= 0 {
		return Window{}, false
	}
	// Only the monitor the window's centre sits on owns it.
	centre := image.Pt((abs.Min.X+abs.Max.X)/2, (abs.Min.Y+abs.Max.Y)/2)
	if !centre.In(monitor) {
		return Window{}, false
	}
	return Window{Name: name, Bounds: abs.Sub(monitor.Min), Handle: uintptr(hwnd)}, true
}

func systemScaleFactor() (float64, error) {
	hdc := win.GetDC(0)
	if hdc == 0 {
		return 0, fmt.Errorf("GetDC failed")
	}
	defer win.ReleaseDC(0, hdc)
	dpi := win.GetDeviceCaps(hdc, win.LOGPIXELSX)
	if dpi <= 0 {
		return 0, fmt.Errorf("GetDeviceCaps returned %d", dpi)
	}
	return float64(dpi) / 96, nil
}

// CursorPosition returns the pointer in virtual-screen coordinates.
func CursorPosition() (image.Point, bool) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, false
	}
	return image.Pt(int(pt.X), int(pt.Y)), true
}
