package relay

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// bytesSource streams data in chunkSize pieces, declaring total up front when announce is set.
type bytesSource struct {
	origin    string
	data      []byte
	chunkSize int
	announce  bool
	total     int64
	err       error
	onChunk   func(i int)
}

func (s *bytesSource) Origin() string { return s.origin }

func (s *bytesSource) Stream(ctx context.Context, w ChunkWriter) error {
	if s.announce {
		if err := w.SetTotal(s.total); err != nil {
			return err
		}
	}
	for i := 0; i*s.chunkSize < len(s.data); i++ {
		end := min((i+1)*s.chunkSize, len(s.data))
		if s.onChunk != nil {
			s.onChunk(i)
		}
		if err := w.WriteChunk(s.data[i*s.chunkSize : end]); err != nil {
			return err
		}
	}
	return s.err
}

type fakeUploader struct {
	mu     sync.Mutex
	name   string
	ctype  string
	size   int64
	body   []byte
	calls  int
	url    string
	err    error
	before func()
}

func (u *fakeUploader) UploadAsset(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if u.before != nil {
		u.before()
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.name = name
	u.ctype = contentType
	u.size = size
	u.body = buf.Bytes()
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type fakeStatus struct {
	mu    sync.Mutex
	edits []string
	err   error
}

func (s *fakeStatus) Edit(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, text)
	return s.err
}

func (s *fakeStatus) Edits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.edits...)
}

func (s *fakeStatus) Last() string {
	edits := s.Edits()
	if len(edits) == 0 {
		return ""
	}
	return edits[len(edits)-1]
}

type fakeResponder struct {
	mu        sync.Mutex
	replies   []string
	statuses  []string
	status    *fakeStatus
	statusErr error
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{status: &fakeStatus{}}
}

func (r *fakeResponder) Reply(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

func (r *fakeResponder) ReplyStatus(ctx context.Context, text string) (StatusMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.statusErr != nil {
		return nil, r.statusErr
	}
	r.statuses = append(r.statuses, text)
	return r.status, nil
}

func (r *fakeResponder) Replies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replies...)
}

// fakeClock advances by step on every read.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
