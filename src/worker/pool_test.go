package worker

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"screen-annotate/src/compositor"
	"screen-annotate/src/messages"
	"screen-annotate/src/screenshot"
	"screen-annotate/src/session"
)

type memorySink struct {
	mu    sync.Mutex
	saved []*image.RGBA
	block chan struct{}
}

func (s *memorySink) Save(img *image.RGBA) (string, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, img)
	return "mem.png", nil
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	s, err := session.New(screenshot.NewStaticProvider(img, 1), session.Options{})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

type outcome struct {
	path string
	err  error
}

func TestPoolCompletesSession(t *testing.T) {
	sink := &memorySink{}
	p := New(1, sink)
	defer p.Close()

	done := make(chan outcome, 1)
	if !p.Submit(context.Background(), newSession(t), func(path string, err error) { done <- outcome{path, err} }) {
		t.Fatal("submit rejected on an idle pool")
	}
	select {
	case o := <-done:
		if o.err != nil || o.path != "mem.png" {
			t.Fatalf("result = %+v", o)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for worker")
	}
	if len(sink.saved) != 1 || sink.saved[0].Bounds() != image.Rect(0, 0, 40, 30) {
		t.Errorf("sink got %d images", len(sink.saved))
	}
}

func TestPoolReportsCancellation(t *testing.T) {
	p := New(1, &memorySink{})
	defer p.Close()

	s := newSession(t)
	s.Apply(messages.Cancel{})
	done := make(chan outcome, 1)
	p.Submit(context.Background(), s, func(path string, err error) { done <- outcome{path, err} })
	o := <-done
	if !compositor.IsCancellation(o.err) {
		t.Errorf("err = %v, want cancellation", o.err)
	}
}

func TestPoolBackPressure(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	p := New(1, sink)
	done := make(chan outcome, 3)
	cb := func(path string, err error) { done <- outcome{path, err} }

	if !p.Submit(context.Background(), newSession(t), cb) {
		t.Fatal("first submit rejected")
	}
	// The worker picks up the first job and blocks in the sink; the slot
	// then takes one more before rejecting.
	deadline := time.Now().Add(5 * time.Second)
	for !p.Submit(context.Background(), newSession(t), cb) {
		if time.Now().After(deadline) {
			t.Fatal("queue slot never freed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if p.Submit(context.Background(), newSession(t), cb) {
		t.Error("third submit should be dropped while the worker is busy")
	}
	close(sink.block)
	p.Close()
	if len(done) != 2 {
		t.Errorf("completed %d jobs, want 2", len(done))
	}
}

func TestCompleteWithExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := completeWithContext(ctx, newSession(t), &memorySink{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGuardedSinkSkipsSaveAfterDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	inner := &memorySink{}
	_, err := guardedSink{ctx: ctx, sink: inner}.Save(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if len(inner.saved) != 0 {
		t.Errorf("saved %d images after the deadline", len(inner.saved))
	}
}

func TestGuardedSinkSavesWithinDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	inner := &memorySink{}
	path, err := guardedSink{ctx: ctx, sink: inner}.Save(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil || path != "mem.png" || len(inner.saved) != 1 {
		t.Errorf("path=%q err=%v saved=%d", path, err, len(inner.saved))
	}
}
