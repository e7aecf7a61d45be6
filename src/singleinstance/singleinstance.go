// Package singleinstance lets a second invocation hand its capture request to
// the resident process over loopback TCP.
package singleinstance

import (
	"context"
	"errors"
)

// ErrBusy is returned to a client whose request arrived while the resident
// was still saving a previous capture.
var ErrBusy = errors.New("resident is busy, please retry")

// Server owns the TCP endpoint and answers capture requests.
type Server interface {
	// Start listens on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted request, or the ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one delegated request. Exactly one Respond* call is expected.
type Conn interface {
	Request() Request
	RespondSaved(path string) error
	RespondCancelled() error
	RespondBusy() error
	RespondError(msg string) error
	Close() error
}

// Request asks the resident to run one interactive capture.
type Request struct {
	// Monitor selects the monitor to capture; -1 means the one under the cursor.
	Monitor int
}

// Result is what a delegating client learns about its request.
type Result struct {
	// Delegated is false when no resident answered; the caller should run
	// the capture itself.
	Delegated bool
	Path      string
	Cancelled bool
}

// Client attempts to delegate a capture to a resident server.
type Client interface {
	Delegate(ctx context.Context, req Request) (Result, error)
}

func NewServer() Server { return newTcpServer() }

func NewClient() Client { return newTcpClient() }
