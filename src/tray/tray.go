// Package tray shows the notification-area icon with the capture menu.
package tray

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/getlantern/systray"
)

type Config struct {
	Title     string
	Tooltip   string
	OnCapture func()
	OnExit    func()
}

var (
	ready    atomic.Bool
	quitOnce sync.Once
)

// Run blocks until Quit is called or the user picks Quit from the menu.
func Run(cfg Config) {
	systray.Run(func() { onReady(cfg) }, func() {
		ready.Store(false)
		if cfg.OnExit != nil {
			cfg.OnExit()
		}
	})
}

func onReady(cfg Config) {
	if icon, err := Icon(); err != nil {
		log.Printf("Tray: %v", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(cfg.Title)
	systray.SetTooltip(cfg.Tooltip)

	mCapture := systray.AddMenuItem("Capture", "Capture and annotate the screen")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")
	ready.Store(true)

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if cfg.OnCapture != nil {
					cfg.OnCapture()
				}
			case <-mQuit.ClickedCh:
				Quit()
				return
			}
		}
	}()
}

// UpdateTooltip is a no-op until the tray is ready.
func UpdateTooltip(text string) {
	if ready.Load() {
		systray.SetTooltip(text)
	}
}

func Quit() {
	quitOnce.Do(systray.Quit)
}
