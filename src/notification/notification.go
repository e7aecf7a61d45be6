// Package notification reports finished captures to the user.
package notification

import (
	"fmt"
	"log"
)

const maxLength = 200

// Saved announces the file a capture was written to.
func Saved(path string) {
	Show(fmt.Sprintf("Screenshot saved to %s", path))
}

// Failed announces a capture that could not be completed.
func Failed(err error) {
	Show(fmt.Sprintf("Screenshot failed: %v", err))
}

// Show displays text in a short-lived popup. It does not block.
func Show(text string) {
	text = truncate(text, maxLength)
	log.Printf("Notification: %s", text)
	if err := showPopup(text); err != nil {
		log.Printf("Notification: failed to show popup: %v", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
