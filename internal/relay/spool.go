package relay

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

const (
	// SpoolPattern names spill files so stale ones can be found after a crash.
	SpoolPattern = "ghrelay-spool-*"

	DefaultSpoolMemoryLimit = int64(32 * 1024 * 1024)
)

// Spool accumulates the downloaded payload between the download and upload phases.
// It stays in memory up to limit bytes and then moves everything to a temp file in dir.
type Spool struct {
	dir   string
	limit int64
	mem   bytes.Buffer
	file  *os.File
	size  int64
}

func NewSpool(dir string, limit int64) *Spool {
	return &Spool{dir: dir, limit: limit}
}

func (s *Spool) Write(p []byte) (int, error) {
	if s.file == nil && int64(s.mem.Len()+len(p)) > s.limit {
		if err := s.spill(); err != nil {
			return 0, err
		}
	}

	if s.file != nil {
		n, err := s.file.Write(p)
		s.size += int64(n)
		return n, err
	}

	n, _ := s.mem.Write(p)
	s.size += int64(n)
	return n, nil
}

func (s *Spool) Size() int64 {
	return s.size
}

// OnDisk reports whether the payload spilled to a temp file.
func (s *Spool) OnDisk() bool {
	return s.file != nil
}

// Reader rewinds the spool and returns a reader over everything written so far.
func (s *Spool) Reader() (io.Reader, error) {
	if s.file == nil {
		return bytes.NewReader(s.mem.Bytes()), nil
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("spool rewind: %w", err)
	}
	return io.LimitReader(s.file, s.size), nil
}

// Close releases the buffer and removes the spill file, if any.
func (s *Spool) Close() error {
	s.mem = bytes.Buffer{}
	if s.file == nil {
		return nil
	}

	name := s.file.Name()
	closeErr := s.file.Close()
	s.file = nil
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return closeErr
}

func (s *Spool) spill() error {
	f, err := os.CreateTemp(s.dir, SpoolPattern)
	if err != nil {
		return fmt.Errorf("spool create: %w", err)
	}

	if _, err := f.Write(s.mem.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("spool spill: %w", err)
	}

	s.mem = bytes.Buffer{}
	s.file = f
	return nil
}
