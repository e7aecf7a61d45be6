package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"screen-annotate/src/compositor"
	"screen-annotate/src/config"
	"screen-annotate/src/hotkey"
	"screen-annotate/src/notification"
	"screen-annotate/src/overlay"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
	"screen-annotate/src/singleinstance"
	"screen-annotate/src/sink"
	"screen-annotate/src/tray"
	"screen-annotate/src/worker"
)

// ErrBusy is reported when a capture is requested while the previous one is
// still being saved.
var ErrBusy = errors.New("busy, please retry")

// Provider is the capture side the loop needs on top of what a session uses.
type Provider interface {
	session.Provider
	MonitorBounds(i int) (image.Rectangle, error)
	MonitorAt(pt image.Point) int
}

// Loop is the single-threaded coordinator: triggers from the hotkey, the tray
// and delegated clients each run one capture at a time.
type Loop struct {
	provider   Provider
	newSurface func(overlay.Options) overlay.Surface
	cursor     func() (image.Point, bool)
	newSink    func(*config.Config) compositor.Sink

	mu  sync.Mutex
	cfg *config.Config

	pool           *worker.Pool
	srv            singleinstance.Server
	busy           bool
	results        chan result
	triggers       chan struct{}
	defaultTooltip string
	deadline       time.Duration
}

type result struct {
	path   string
	err    error
	target resultTarget
	cancel context.CancelFunc
}

type resultTarget interface {
	OnSuccess(path string)
	OnCancelled()
	OnBusy()
	OnError(err error)
	Close()
}

// localTarget reports captures started on this machine's desktop.
type localTarget struct{ notify bool }

func (t localTarget) OnSuccess(path string) {
	log.Printf("Loop: saved %s", path)
	if t.notify {
		notification.Saved(path)
	}
}

func (localTarget) OnCancelled() { log.Printf("Loop: capture cancelled") }

func (localTarget) OnBusy() { notification.Show("Busy, please retry") }

func (t localTarget) OnError(err error) {
	log.Printf("Loop: capture failed: %v", err)
	if t.notify {
		notification.Failed(err)
	}
}

func (localTarget) Close() {}

// delegatedTarget answers a client of the single-instance server.
type delegatedTarget struct{ conn singleinstance.Conn }

func (t delegatedTarget) OnSuccess(path string) { t.reply(t.conn.RespondSaved(path)) }

func (t delegatedTarget) OnCancelled() { t.reply(t.conn.RespondCancelled()) }

func (t delegatedTarget) OnBusy() { t.reply(t.conn.RespondBusy()) }

func (t delegatedTarget) OnError(err error) { t.reply(t.conn.RespondError(err.Error())) }

func (t delegatedTarget) Close() { _ = t.conn.Close() }

func (t delegatedTarget) reply(err error) {
	if err != nil {
		log.Printf("Loop: failed to answer delegated request: %v", err)
	}
}

// New creates a loop for the local desktop with defaults based on cfg.
func New(cfg *config.Config) *Loop {
	p := screenshot.NewProvider()
	p.ScaleOverride = cfg.ScaleFactor
	return newLoop(cfg, p, overlay.New, screenshot.CursorPosition)
}

func newLoop(cfg *config.Config, p Provider, surface func(overlay.Options) overlay.Surface, cursor func() (image.Point, bool)) *Loop {
	l := &Loop{
		provider:       p,
		newSurface:     surface,
		cursor:         cursor,
		newSink:        defaultSink,
		cfg:            cfg,
		results:        make(chan result, 1),
		triggers:       make(chan struct{}, 4),
		defaultTooltip: "Screen annotate",
		deadline:       20 * time.Second,
	}
	l.pool = worker.New(1, sinkFunc(l.save))
	return l
}

func defaultSink(cfg *config.Config) compositor.Sink {
	return sink.New(sink.Options{Dir: cfg.TargetDir, CopyToClipboard: cfg.CopyToClipboard})
}

// sinkFunc adapts a function to compositor.Sink.
type sinkFunc func(*image.RGBA) (string, error)

func (f sinkFunc) Save(img *image.RGBA) (string, error) { return f(img) }

// save builds the sink from the configuration current at save time.
func (l *Loop) save(img *image.RGBA) (string, error) {
	return l.newSink(l.Config()).Save(img)
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// SetConfig replaces the configuration used by the next capture. A capture
// already on screen keeps the values it started with.
func (l *Loop) SetConfig(cfg *config.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
	log.Printf("Loop: configuration updated")
}

func (l *Loop) Config() *config.Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("Screen annotate: saving...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// Trigger asks the loop to start a capture. It never blocks; triggers that
// arrive while several are pending are dropped.
func (l *Loop) Trigger() {
	select {
	case l.triggers <- struct{}{}:
	default:
	}
}

// StartHotkey registers the global hotkey in the background.
func (l *Loop) StartHotkey(ctx context.Context, combo string) {
	if combo == "" {
		return
	}
	go func() {
		if err := hotkey.Listen(ctx, combo, l.Trigger); err != nil {
			log.Printf("Loop: hotkey %q unavailable: %v", combo, err)
		}
	}()
}

// Run starts the single-instance server and processes triggers and client
// requests. It blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = singleinstance.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	log.Printf("Resident listening on 127.0.0.1:%d", l.srv.Port())
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.triggers:
			l.startRequest(ctx, localTarget{notify: l.Config().Notifications}, -1)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.startRequest(ctx, delegatedTarget{conn: conn}, conn.Request().Monitor)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleResult(res result) {
	defer func() {
		l.setBusy(false)
		if res.cancel != nil {
			res.cancel()
		}
	}()
	defer res.target.Close()

	switch {
	case compositor.IsCancellation(res.err):
		res.target.OnCancelled()
	case res.err != nil:
		res.target.OnError(res.err)
	default:
		res.target.OnSuccess(res.path)
	}
}

// startRequest runs the interactive part on the loop goroutine and hands the
// finished session to the worker pool.
func (l *Loop) startRequest(ctx context.Context, target resultTarget, monitor int) {
	if l.busy {
		target.OnBusy()
		target.Close()
		return
	}

	sess, err := l.open(ctx, monitor)
	if err != nil {
		target.OnError(err)
		target.Close()
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx, sess, func(path string, err error) {
		l.results <- result{path: path, err: err, target: target, cancel: cancel}
	})
	if !submitted {
		cancel()
		l.setBusy(false)
		target.OnBusy()
		target.Close()
	}
}

// CaptureOnce runs one capture synchronously, for use without a resident.
func (l *Loop) CaptureOnce(ctx context.Context, monitor int) (string, error) {
	sess, err := l.open(ctx, monitor)
	if err != nil {
		return "", err
	}
	return compositor.Complete(sess, sinkFunc(l.save))
}

// open creates a session on the requested monitor (-1: the one under the
// cursor) and runs it on the capture surface until the user closes it.
func (l *Loop) open(ctx context.Context, monitor int) (*session.Session, error) {
	cfg := l.Config()

	cursor, haveCursor := l.cursor()
	if monitor < 0 {
		monitor = 0
		if haveCursor {
			monitor = l.provider.MonitorAt(cursor)
		}
	}
	bounds, err := l.provider.MonitorBounds(monitor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrNoMonitor, err)
	}

	opts := session.Options{
		Monitor:     monitor,
		ScaleFactor: cfg.ScaleFactor,
		Color:       cfg.Color(),
		Size:        cfg.DefaultSize,
	}
	if haveCursor && cursor.In(bounds) {
		scale := cfg.ScaleFactor
		if scale <= 0 {
			if s, err := l.provider.ScaleFactor(monitor); err == nil && s > 0 {
				scale = s
			} else {
				scale = 1
			}
		}
		opts.Cursor = overlay.Logical(int32(cursor.X-bounds.Min.X), int32(cursor.Y-bounds.Min.Y), scale)
	}

	sess, err := session.New(l.provider, opts)
	if err != nil {
		return nil, err
	}

	surface := l.newSurface(overlay.Options{Bounds: bounds, DefaultTool: cfg.Tool()})
	if err := surface.Run(ctx, sess); err != nil {
		return nil, fmt.Errorf("capture surface: %w", err)
	}
	return sess, nil
}

// Deadline returns the save deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }
