package hotkey

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen starts a global keyboard hook and calls callback each time the
// combination in hotkeyConfig (e.g. "Ctrl+Shift+S") is held down. It returns
// once the hook is running; the hook stops when ctx is done.
func Listen(ctx context.Context, hotkeyConfig string, callback func()) error {
	c, err := newCombo(hotkeyConfig)
	if err != nil {
		return err
	}
	log.Printf("Hotkey: listening for %s", hotkeyConfig)

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("keyboard hook could not be started")
	}

	go func() {
		<-ctx.Done()
		gohook.End()
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if c.press(ev.Rawcode) {
					log.Printf("Hotkey: %s activated", hotkeyConfig)
					if callback != nil {
						callback()
					}
				}
			case gohook.KeyUp:
				c.release(ev.Rawcode)
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()
	return nil
}

// combo tracks which keys of a combination are currently held.
type combo struct {
	mu   sync.Mutex
	keys []comboKey
}

type comboKey struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

func newCombo(hotkeyConfig string) (*combo, error) {
	c := &combo{}
	for _, name := range parseHotkey(hotkeyConfig) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("unknown key %q in hotkey %q", name, hotkeyConfig)
		}
		c.keys = append(c.keys, comboKey{name: name, rawcodes: codes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("no keys in hotkey %q", hotkeyConfig)
	}
	return c, nil
}

// press records a key-down and reports whether the whole combination is now
// held. A completed combination resets so that it fires once per press.
func (c *combo) press(rawcode uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(rawcode, true)
	for _, k := range c.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *combo) release(rawcode uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(rawcode, false)
}

func (c *combo) set(rawcode uint16, pressed bool) {
	for i := range c.keys {
		for _, rc := range c.keys[i].rawcodes {
			if rc == rawcode {
				c.keys[i].pressed = pressed
				break
			}
		}
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Shift+s" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var namedKeys = map[string][]uint16{
	// Modifiers match both the left and right variant.
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},

	"printscreen": {44}, // VK_SNAPSHOT
	"prtsc":       {44},
	"print":       {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	if keyName == "win" || keyName == "super" {
		return namedKeys["cmd"]
	}

	// Letters map to 0x41-0x5A, digits to 0x30-0x39.
	if len(keyName) == 1 {
		ch := keyName[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return []uint16{uint16(ch-'a') + 65}
		case ch >= '0' && ch <= '9':
			return []uint16{uint16(ch-'0') + 48}
		}
	}

	// F1-F24 start at VK_F1 (112).
	var n int
	if _, err := fmt.Sscanf(keyName, "f%d", &n); err == nil && n >= 1 && n <= 24 && keyName == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)}
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
