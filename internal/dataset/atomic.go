// Package dataset reads and writes the pipeline's file formats: newline JSON
// claim files, prediction files and tab-separated sentence records.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// AtomicFile buffers writes into a temporary file next to the target and
// only moves it into place on Commit. Abort (or a missing Commit) leaves the
// target untouched.
type AtomicFile struct {
	path string
	tmp  *os.File
	w    *bufio.Writer
	done bool
}

// CreateAtomic opens a temporary file in the directory of path
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicFile{path: path, tmp: tmp, w: bufio.NewWriterSize(tmp, 1<<20)}, nil
}

// Write implements io.Writer
func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.w.Write(p)
}

// Commit flushes, syncs and renames the temporary file onto the target
func (a *AtomicFile) Commit() error {
	if a.done {
		return fmt.Errorf("%s: already finalized", a.path)
	}
	a.done = true

	if err := a.w.Flush(); err != nil {
		a.cleanup()
		return fmt.Errorf("flush %s: %w", a.path, err)
	}
	if err := a.tmp.Sync(); err != nil {
		a.cleanup()
		return fmt.Errorf("sync %s: %w", a.path, err)
	}
	if err := a.tmp.Close(); err != nil {
		_ = os.Remove(a.tmp.Name())
		return fmt.Errorf("close %s: %w", a.path, err)
	}
	if err := os.Rename(a.tmp.Name(), a.path); err != nil {
		_ = os.Remove(a.tmp.Name())
		return fmt.Errorf("rename into %s: %w", a.path, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit, so it can
// be deferred unconditionally.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.cleanup()
}

func (a *AtomicFile) cleanup() {
	_ = a.tmp.Close()
	_ = os.Remove(a.tmp.Name())
}
