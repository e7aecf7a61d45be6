//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"screen-annotate/src/geometry"
	"screen-annotate/src/messages"
	"screen-annotate/src/preview"
	"screen-annotate/src/session"

	"github.com/lxn/win"
)

const (
	keyPollTimerID    = 1
	keyPollIntervalMs = 25
	hintLineHeight    = 22
	hintMargin        = 16
)

var (
	user32DLL                    = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState         = user32DLL.NewProc("GetAsyncKeyState")
	procStretchDIBits            = syscall.NewLazyDLL("gdi32.dll").NewProc("StretchDIBits")
)

// The window procedure is a plain callback, so the running surface lives in
// a package variable. Only one surface runs at a time.
var active *windowsSurface

var wndProcCallback = syscall.NewCallback(surfaceWndProc)

type windowsSurface struct {
	opts Options

	ctx         context.Context
	sess        *session.Session
	hwnd        win.HWND
	crossCursor win.HCURSOR
	escape      escapeFilter
	closed      bool
	err         error
}

func newSurface(opts Options) Surface {
	return &windowsSurface{opts: opts}
}

func (w *windowsSurface) Run(ctx context.Context, s *session.Session) error {
	if active != nil {
		return fmt.Errorf("overlay already running")
	}
	// Window messages are delivered to the creating thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.ctx = ctx
	w.sess = s
	w.closed = false
	w.err = nil
	w.escape = escapeFilter{}
	active = w
	defer func() { active = nil }()

	b := w.opts.Bounds
	if b.Empty() {
		b = image.Rect(0, 0, s.Base().Bounds().Dx(), s.Base().Bounds().Dy())
	}
	log.Printf("Overlay: session %s on %v (scale %.2f)", s.ID, b, s.ScaleFactor())

	w.crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))

	className := syscall.StringToUTF16Ptr(fmt.Sprintf("ScreenAnnotate_%d", time.Now().UnixNano()))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   wndProcCallback,
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       w.crossCursor,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return fmt.Errorf("failed to register window class")
	}
	defer win.UnregisterClass(className)

	w.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("Screen annotate"),
		win.WS_POPUP|win.WS_VISIBLE,
		int32(b.Min.X), int32(b.Min.Y), int32(b.Dx()), int32(b.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if w.hwnd == 0 {
		return fmt.Errorf("failed to create overlay window")
	}

	win.ShowWindow(w.hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(w.hwnd)
	win.BringWindowToTop(w.hwnd)
	win.SetFocus(w.hwnd)
	win.UpdateWindow(w.hwnd)

	if win.SetTimer(w.hwnd, keyPollTimerID, keyPollIntervalMs, 0) == 0 {
		log.Printf("Overlay: failed to start keyboard poll timer")
	}

	var msg win.MSG
	for !w.closed {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 {
			log.Printf("Overlay: WM_QUIT received")
			break
		}
		if ret == -1 {
			w.err = fmt.Errorf("GetMessage failed")
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}

	win.DestroyWindow(w.hwnd)
	w.hwnd = 0
	if w.err != nil {
		return w.err
	}
	if !w.closed {
		return fmt.Errorf("message loop ended before session %s closed", s.ID)
	}
	log.Printf("Overlay: session %s closed (%s)", s.ID, s.Description())
	return nil
}

// dispatch feeds one message to the session and reacts to its request.
func (w *windowsSurface) dispatch(msg messages.Message) {
	if msg == nil {
		return
	}
	switch w.sess.Apply(msg) {
	case session.RequestClose:
		w.closed = true
	case session.RequestFocusText:
		win.SetFocus(w.hwnd)
	}
	win.InvalidateRect(w.hwnd, nil, false)
}

func (w *windowsSurface) keyState() KeyState {
	ctrl, _ := getAsyncKeyState(win.VK_CONTROL)
	ks := StateOf(w.sess, ctrl)
	ks.DefaultTool = w.opts.DefaultTool
	return ks
}

func surfaceWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	w := active
	if w == nil || w.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_MOUSEMOVE:
		w.dispatch(messages.PointerMoved{Position: w.pointerAt(lParam)})
		return 0

	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		w.dispatch(messages.PointerMoved{Position: w.pointerAt(lParam)})
		w.dispatch(messages.PointerPressed{})
		return 0

	case win.WM_LBUTTONUP:
		win.ReleaseCapture()
		w.dispatch(messages.PointerMoved{Position: w.pointerAt(lParam)})
		w.dispatch(messages.PointerReleased{})
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE && !w.escape.keyDown(isRepeat(lParam)) {
			return 0
		}
		w.dispatch(TranslateKey(uint32(wParam), w.keyState()))
		return 0

	case win.WM_CHAR:
		w.dispatch(TranslateChar(rune(wParam), w.keyState()))
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		w.paint(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_SETCURSOR:
		if w.crossCursor != 0 {
			win.SetCursor(w.crossCursor)
		}
		return 1

	case win.WM_TIMER:
		if wParam == keyPollTimerID {
			if w.ctx.Err() != nil {
				log.Printf("Overlay: context done, abandoning session %s", w.sess.ID)
				w.err = w.ctx.Err()
				w.closed = true
				return 0
			}
			w.pollEscape()
		}
		return 0

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		win.KillTimer(hwnd, keyPollTimerID)
		// No PostQuitMessage: a stale WM_QUIT would end the next run immediately.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// pointerAt reads the signed client coordinates packed into lParam.
func (w *windowsSurface) pointerAt(lParam uintptr) geometry.Point {
	x := int32(int16(win.LOWORD(uint32(lParam))))
	y := int32(int16(win.HIWORD(uint32(lParam))))
	return Logical(x, y, w.sess.ScaleFactor())
}

func getAsyncKeyState(vk int32) (bool, bool) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	s := uint16(state)
	return s&0x8000 != 0, s&0x0001 != 0
}

// pollEscape catches Escape when the overlay did not get keyboard focus.
func (w *windowsSurface) pollEscape() {
	down, pressed := getAsyncKeyState(win.VK_ESCAPE)
	if w.escape.poll(down, pressed, win.GetForegroundWindow() == w.hwnd) {
		log.Printf("Overlay: escape detected via async polling")
		w.dispatch(messages.Cancel{})
	}
}

func (w *windowsSurface) paint(hdc win.HDC) {
	frame := preview.Draw(w.sess)
	var rc win.RECT
	win.GetClientRect(w.hwnd, &rc)
	blitStretched(hdc, frame, rc.Right-rc.Left, rc.Bottom-rc.Top)
	w.paintHints(hdc, rc.Bottom-rc.Top)
}

func (w *windowsSurface) paintHints(hdc win.HDC, clientHeight int32) {
	lines := Hints(w.sess)
	y := int32(hintMargin)
	if !w.sess.ToolbarAtTop() {
		y = clientHeight - hintMargin - int32(len(lines))*hintLineHeight
	}
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, win.COLORREF(0x00FFFF))
	for _, line := range lines {
		utf16, _ := syscall.UTF16FromString(line)
		win.TextOut(hdc, hintMargin, y, &utf16[0], int32(len(utf16)-1))
		y += hintLineHeight
	}
}

// blitStretched copies a logical-size RGBA frame onto the physical client area.
func blitStretched(hdc win.HDC, img *image.RGBA, dstW, dstH int32) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return
	}

	bgra := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		out := bgra[y*width*4 : (y+1)*width*4]
		for x := 0; x < width*4; x += 4 {
			out[x] = row[x+2]
			out[x+1] = row[x+1]
			out[x+2] = row[x]
			out[x+3] = row[x+3]
		}
	}

	info := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(width),
			BiHeight:      -int32(height),
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	procStretchDIBits.Call(
		uintptr(hdc),
		0, 0, uintptr(dstW), uintptr(dstH),
		0, 0, uintptr(width), uintptr(height),
		uintptr(unsafe.Pointer(&bgra[0])),
		uintptr(unsafe.Pointer(&info)),
		uintptr(win.DIB_RGB_COLORS),
		uintptr(win.SRCCOPY),
	)
}
