// Package workspace owns the relay's data directory: session, spool and logs.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ghrelay/ghrelay/internal/relay"
	"github.com/ghrelay/ghrelay/internal/utils"
	"github.com/gofrs/flock"
)

const (
	logsDir     = "logs"
	spoolDir    = "spool"
	sessionFile = "session.json"
	logFile     = "ghrelay.log"
	lockFile    = ".ghrelay.lock"
)

var (
	ErrWorkspaceLocked = errors.New("workspace locked by another process")
)

type Workspace struct {
	Root        string
	LogsDir     string
	SpoolDir    string
	SessionPath string
	LogPath     string

	flock *flock.Flock
}

func NewWorkspace(rootDir string) (*Workspace, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}

	return &Workspace{
		Root:        root,
		LogsDir:     filepath.Join(root, logsDir),
		SpoolDir:    filepath.Join(root, spoolDir),
		SessionPath: filepath.Join(root, sessionFile),
		LogPath:     filepath.Join(root, logsDir, logFile),
		flock:       flock.New(filepath.Join(root, lockFile)),
	}, nil
}

// Lock takes the workspace so a second process cannot share the Telegram session.
func (w *Workspace) Lock() error {
	if err := utils.EnsureDir(w.Root); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.Root, err)
	}

	locked, err := w.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !locked {
		return ErrWorkspaceLocked
	}

	return nil
}

func (w *Workspace) Unlock() error {
	// if this process hasn't locked the workspace, then don't delete the lock file
	if !w.flock.Locked() {
		return nil
	}

	if err := w.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock workspace: %w", err)
	}

	return os.Remove(w.flock.Path())
}

// Setup locks the workspace, creates its directories and clears spool files left by a crash.
// The lock is released again when any later step fails.
func (w *Workspace) Setup() (err error) {
	if err := w.Lock(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, w.Unlock())
		}
	}()

	for _, dir := range []string{w.LogsDir, w.SpoolDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	removed, err := w.CleanSpool()
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Warn("removed stale spool files", "count", removed, "dir", w.SpoolDir)
	}

	return nil
}

// CleanSpool deletes leftover spool files and returns how many were removed.
// Only call it while holding the lock: live transfers keep their spool there.
func (w *Workspace) CleanSpool() (int, error) {
	matches, err := filepath.Glob(filepath.Join(w.SpoolDir, relay.SpoolPattern))
	if err != nil {
		return 0, fmt.Errorf("failed to list spool: %w", err)
	}

	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// OpenLog opens the log file for appending.
func (w *Workspace) OpenLog() (*os.File, error) {
	if err := utils.EnsureParent(w.LogPath); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", w.LogsDir, err)
	}
	return os.OpenFile(w.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
