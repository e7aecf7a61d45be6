// Package logutil points the standard logger at a size-rotated debug file, a
// stream, or nowhere.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	logFileName  = "screen_annotate_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

const logFlags = log.LstdFlags | log.Lshortfile

// Setup enables file logging in the working directory. When disabled, logs
// are discarded so the console stays clean.
func Setup(enableFileLogging bool) {
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		log.SetFlags(logFlags)
		return
	}
	r, err := openRotator(logFileName, maxSizeBytes, maxArchives)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(r)
	log.SetFlags(logFlags)
}

// SetupWriter routes the standard logger to w, for command-line tools that
// log to stderr instead of a file.
func SetupWriter(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(logFlags)
}

// rotator appends to path and shifts it to path.1 .. path.N once it would
// grow past maxSize. The oldest archive is discarded.
type rotator struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	archives int
	f        *os.File
}

func openRotator(path string, maxSize int64, archives int) (*rotator, error) {
	r := &rotator{path: path, maxSize: maxSize, archives: archives}
	r.rotateIfNeeded(0)
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotator) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	r.f = f
	return nil
}

func (r *rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, err := r.f.Stat(); err == nil && st.Size()+int64(len(p)) > r.maxSize {
		_ = r.f.Close()
		r.rotateIfNeeded(len(p))
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	return r.f.Write(p)
}

// rotateIfNeeded shifts the archives when the current file plus pending
// bytes exceeds maxSize.
func (r *rotator) rotateIfNeeded(pending int) {
	st, err := os.Stat(r.path)
	if err != nil || st.Size()+int64(pending) <= r.maxSize {
		return
	}
	_ = os.Remove(r.archive(r.archives))
	for i := r.archives - 1; i >= 1; i-- {
		_ = os.Rename(r.archive(i), r.archive(i+1))
	}
	_ = os.Rename(r.path, r.archive(1))
}

func (r *rotator) archive(n int) string {
	return filepath.Join(filepath.Dir(r.path), fmt.Sprintf("%s.%d", filepath.Base(r.path), n))
}

func (r *rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
