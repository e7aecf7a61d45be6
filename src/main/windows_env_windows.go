//go:build windows

package main

import (
	"log"
	"syscall"
)

// dpiAwarenessContextPerMonitorV2 is DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2.
const dpiAwarenessContextPerMonitorV2 = ^uintptr(3) // (HANDLE)-4

// enableDPIAwareness makes the process per-monitor DPI aware so that window
// and capture coordinates are physical pixels. Newest API first.
func enableDPIAwareness() {
	user32 := syscall.NewLazyDLL("user32.dll")
	if proc := user32.NewProc("SetProcessDpiAwarenessContext"); proc.Find() == nil {
		if ret, _, _ := proc.Call(dpiAwarenessContextPerMonitorV2); ret != 0 {
			log.Printf("DPI: per-monitor v2 awareness enabled")
			return
		}
	}

	shcore := syscall.NewLazyDLL("Shcore.dll")
	if proc := shcore.NewProc("SetProcessDpiAwareness"); proc.Find() == nil {
		const processPerMonitorDPIAware = 2
		ret, _, _ := proc.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness enabled")
			return
		}
		log.Printf("DPI: SetProcessDpiAwareness failed, error code: %d", ret)
	}

	if proc := user32.NewProc("SetProcessDPIAware"); proc.Find() == nil {
		if ret, _, _ := proc.Call(); ret != 0 {
			log.Printf("DPI: system awareness enabled (fallback)")
			return
		}
	}
	log.Printf("DPI: no DPI awareness set")
}
