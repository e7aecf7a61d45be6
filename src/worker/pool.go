package worker

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"

	"screen-annotate/src/compositor"
	"screen-annotate/src/session"
)

// ResultCallback is invoked on completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(path string, err error)

// Pool composites finished sessions and hands them to the sink. It has a
// 1-slot input queue (strict back-pressure).
type Pool struct {
	sink      compositor.Sink
	jobs      chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type job struct {
	ctx  context.Context
	sess *session.Session
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0.
func New(size int, sink compositor.Sink) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{sink: sink, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				path, err := completeWithContext(j.ctx, j.sess, p.sink)
				log.Printf("Worker: session %s finished, path=%q err=%v", j.sess.ID, path, err)
				j.cb(path, err)
			}
		}()
	}
}

// Submit enqueues a finished session if the single-slot queue is free.
// Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, sess *session.Session, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, sess: sess, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Later calls are no-ops.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// guardedSink refuses to save once ctx is done, so a capture already reported
// as failed never reaches the disk or the clipboard. A save that has started
// runs to completion.
type guardedSink struct {
	ctx  context.Context
	sink compositor.Sink
}

func (g guardedSink) Save(img *image.RGBA) (string, error) {
	if err := g.ctx.Err(); err != nil {
		return "", fmt.Errorf("save skipped: %w", err)
	}
	return g.sink.Save(img)
}

// completeWithContext returns early with ctx.Err() when the deadline passes.
// The compositing goroutine keeps running but no longer saves.
func completeWithContext(ctx context.Context, sess *session.Session, sink compositor.Sink) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, ok := ctx.Deadline(); !ok {
		return compositor.Complete(sess, sink)
	}
	sink = guardedSink{ctx: ctx, sink: sink}
	type outcome struct {
		path string
		err  error
	}
	resCh := make(chan outcome, 1)
	go func() {
		path, err := compositor.Complete(sess, sink)
		resCh <- outcome{path, err}
	}()
	select {
	case r := <-resCh:
		return r.path, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
