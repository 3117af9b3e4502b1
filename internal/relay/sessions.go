package relay

import (
	"sync"
	"time"
)

const (
	StatusStartingDownload = "Starting download..."
	StatusDownloading      = "Downloading..."
	StatusStartingUpload   = "Starting upload..."
	StatusUploading        = "Uploading..."
)

// SessionInfo is a snapshot of a requester's in-flight transfer.
type SessionInfo struct {
	RequesterID int64
	Filename    string
	Status      string
	StartedAt   time.Time
}

// Sessions is the per-requester busy lock: at most one transfer per requester at a time.
type Sessions struct {
	mu     sync.Mutex
	active map[int64]*SessionInfo
}

func NewSessions() *Sessions {
	return &Sessions{
		active: make(map[int64]*SessionInfo),
	}
}

// TryAcquire registers a transfer for requesterID unless one is already active.
// The check and the insert happen under one lock, so concurrent callers for the same
// requester never both succeed.
func (s *Sessions) TryAcquire(requesterID int64, filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[requesterID]; exists {
		return false
	}

	s.active[requesterID] = &SessionInfo{
		RequesterID: requesterID,
		Filename:    filename,
		Status:      StatusStartingDownload,
		StartedAt:   time.Now(),
	}
	return true
}

// Release drops the requester's session. Releasing an absent session is a no-op.
func (s *Sessions) Release(requesterID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, requesterID)
}

func (s *Sessions) Get(requesterID int64) (SessionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.active[requesterID]
	if !exists {
		return SessionInfo{}, false
	}
	return *info, true
}

func (s *Sessions) SetStatus(requesterID int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, exists := s.active[requesterID]; exists {
		info.Status = status
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.active)
}
