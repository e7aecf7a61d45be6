//go:build !windows

package overlay

import (
	"context"

	"screen-annotate/src/session"
)

type stubSurface struct{}

func newSurface(Options) Surface { return stubSurface{} }

func (stubSurface) Run(context.Context, *session.Session) error {
	return ErrUnsupported
}
