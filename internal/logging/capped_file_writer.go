package logging

import (
	"os"
	"sync"
)

// cappedFileWriter appends to a log file and rotates it aside once it
// would exceed the configured size: the full file becomes path+".old"
// (replacing any previous one) and writing continues into a fresh
// file. Disk usage is bounded by roughly twice the cap and the most
// recent history survives a rotation.
type cappedFileWriter struct {
	path     string
	maxBytes int64
	mu       sync.Mutex
	file     *os.File
	size     int64
}

func newCappedFileWriter(path string, maxMB int) (*cappedFileWriter, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	w := &cappedFileWriter{
		path:     path,
		maxBytes: int64(maxMB) * 1024 * 1024,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *cappedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *cappedFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// open appends to the current file, picking up its existing size so a
// restart keeps honoring the cap.
func (w *cappedFileWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file = f
	w.size = info.Size()
	return nil
}

func (w *cappedFileWriter) rotate() error {
	_ = w.file.Close()
	w.file = nil
	if err := os.Rename(w.path, w.path+".old"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return w.open()
}
