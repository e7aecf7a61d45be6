//go:build windows

package notification

import (
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

var (
	user32                = syscall.NewLazyDLL("user32.dll")
	procMessageBox        = user32.NewProc("MessageBoxW")
	procMessageBoxTimeout = user32.NewProc("MessageBoxTimeoutW")
	popupQueue            chan string
	popupOnce             sync.Once
)

const (
	mbOK            = 0x00000000
	mbIconError     = 0x00000010
	mbIconInfo      = 0x00000040
	mbSystemModal   = 0x00001000
	mbSetForeground = 0x00010000
	popupTimeoutMs  = 3000
)

// ShowBlockingError displays a modal, blocking error dialog and returns after user dismisses it.
func ShowBlockingError(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	msgPtr, _ := syscall.UTF16PtrFromString(message)
	procMessageBox.Call(0, uintptr(unsafe.Pointer(msgPtr)), uintptr(unsafe.Pointer(titlePtr)), mbOK|mbIconError|mbSystemModal)
}

// initPopupThread starts the single thread that owns every popup.
func initPopupThread() {
	popupOnce.Do(func() {
		popupQueue = make(chan string, 10)
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Notification: popup thread panic: %v", r)
				}
			}()
			for text := range popupQueue {
				showTimedBox(text)
			}
		}()
	})
}

func showPopup(text string) error {
	initPopupThread()
	select {
	case popupQueue <- text:
	default:
		log.Printf("Notification: queue full, dropping popup")
	}
	return nil
}

// showTimedBox closes itself after popupTimeoutMs. MessageBoxTimeoutW is not
// in every user32 build, so a plain box is the fallback.
func showTimedBox(text string) {
	titlePtr, _ := syscall.UTF16PtrFromString("Screen annotate")
	msgPtr, _ := syscall.UTF16PtrFromString(text)
	flags := uintptr(mbOK | mbIconInfo | mbSetForeground)
	if procMessageBoxTimeout.Find() == nil {
		procMessageBoxTimeout.Call(0, uintptr(unsafe.Pointer(msgPtr)), uintptr(unsafe.Pointer(titlePtr)), flags, 0, popupTimeoutMs)
		return
	}
	procMessageBox.Call(0, uintptr(unsafe.Pointer(msgPtr)), uintptr(unsafe.Pointer(titlePtr)), flags)
}
