package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const defaultBufSize = 64 * 1024 // 64KB

// FileOption configures a FileSink.
type FileOption func(*FileSink)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) FileOption {
	return func(s *FileSink) { s.maxSize = bytes }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) FileOption {
	return func(s *FileSink) { s.bufSize = bytes }
}

// FileSink appends notices as NDJSON with buffered I/O and optional
// size-based rotation. One line per analyzed build.
type FileSink struct {
	w       *bufio.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	maxSize int64 // 0 = no rotation
	written int64
	bufSize int
}

// NewFileSink creates a sink that appends NDJSON notices to the given path.
func NewFileSink(path string, opts ...FileOption) (*FileSink, error) {
	s := &FileSink{
		path:    path,
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.openFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Publish JSON-encodes the notice and appends it as a line to the file.
func (s *FileSink) Publish(_ context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("file sink: marshal: %w", err)
	}
	data = append(data, '\n')

	if s.maxSize > 0 && s.written+int64(len(data)) > s.maxSize {
		if err := s.rotate(); err != nil {
			return fmt.Errorf("file sink: rotate: %w", err)
		}
	}

	written, err := s.w.Write(data)
	s.written += int64(written)
	if err != nil {
		return fmt.Errorf("file sink: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("file sink: flush: %w", err)
	}
	return s.f.Close()
}

// openFile opens (or creates) the output file and wraps it in a bufio.Writer.
func (s *FileSink) openFile() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("file sink: open %s: %w", s.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file sink: stat %s: %w", s.path, err)
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, s.bufSize)
	s.written = info.Size()
	return nil
}

// rotate flushes, closes the current file, renames it to {path}.1
// (shifting existing rotated files), and opens a new file.
func (s *FileSink) rotate() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if err := s.f.Close(); err != nil {
		return err
	}

	// Shift existing rotated files: .2 to .3, .1 to .2, current to .1
	for i := 9; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", s.path, i)
		to := fmt.Sprintf("%s.%d", s.path, i+1)
		os.Rename(from, to) // file may not exist
	}
	if err := os.Rename(s.path, s.path+".1"); err != nil {
		return err
	}

	s.written = 0
	return s.openFile()
}
