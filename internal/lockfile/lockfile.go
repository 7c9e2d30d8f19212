// Package lockfile guards a state directory so only one service process uses it at a time.
//
// The lock is an flock(2) on a file inside the directory, so the kernel drops it when
// the holding process exits, however it exits.
package lockfile

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// FileName is the lock file created inside the guarded directory.
const FileName = "nurseproject.lock"

// ErrHeld is returned (wrapped in *HeldError) when another process holds the lock.
var ErrHeld = errors.New("state directory is locked by another process")

// Owner describes the process recorded in a lock file.
type Owner struct {
	PID     int
	Started time.Time
}

// Alive reports whether the owning process still exists.
func (o Owner) Alive() bool {
	if o.PID <= 0 {
		return false
	}
	proc, err := os.FindProcess(o.PID)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func (o Owner) String() string {
	if o.PID <= 0 {
		return "unknown process"
	}
	state := "running"
	if !o.Alive() {
		state = "not running"
	}
	if o.Started.IsZero() {
		return fmt.Sprintf("PID %d (%s)", o.PID, state)
	}
	return fmt.Sprintf("PID %d (%s, started %s)", o.PID, state, o.Started.Format(time.RFC3339))
}

// HeldError reports a lock already held by another process.
type HeldError struct {
	Path  string
	Owner Owner
	Cause error
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("%v: %s is held by %s; stop that instance or point -state-dir elsewhere",
		ErrHeld, e.Path, e.Owner)
}

// Is lets errors.Is match ErrHeld.
func (e *HeldError) Is(target error) bool {
	return target == ErrHeld
}

func (e *HeldError) Unwrap() error {
	return e.Cause
}

// Lock is an acquired directory lock.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the lock on dir, creating the directory if needed. It never blocks.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, FileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory %s: %w", dir, err)
	}

	// O_TRUNC would wipe the owner line of a live holder, so truncate only after locking.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		owner, _ := ReadOwner(path)
		file.Close()
		slog.Error("lockfile.Acquire: lock held", "path", path, "owner", owner.String())
		return nil, &HeldError{Path: path, Owner: owner, Cause: err}
	}

	if err := writeOwner(file, Owner{PID: os.Getpid(), Started: time.Now().UTC()}); err != nil {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
		return nil, fmt.Errorf("write lock file %s: %w", path, err)
	}

	slog.Info("lockfile.Acquire: lock acquired", "path", path, "pid", os.Getpid())
	return &Lock{file: file, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock and removes the file. Calling it more than once is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	// Remove while still holding the lock so a waiting process never sees our owner line.
	removeErr := os.Remove(l.path)
	unlockErr := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if err := errors.Join(unlockErr, closeErr); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		slog.Warn("lockfile.Release: failed to remove lock file", "path", l.path, "error", removeErr)
	}
	slog.Debug("lockfile.Release: lock released", "path", l.path)
	return nil
}

func writeOwner(file *os.File, owner Owner) error {
	if err := file.Truncate(0); err != nil {
		return err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return err
	}
	line := fmt.Sprintf("pid=%d\nstarted=%s\n", owner.PID, owner.Started.Format(time.RFC3339))
	if _, err := file.WriteString(line); err != nil {
		return err
	}
	return file.Sync()
}

// ReadOwner parses the owner recorded in the lock file at path.
// Unknown keys are ignored; a file without a pid yields a zero Owner.
func ReadOwner(path string) (Owner, error) {
	f, err := os.Open(path)
	if err != nil {
		return Owner{}, err
	}
	defer f.Close()
	return parseOwner(bufio.NewScanner(f)), nil
}

func parseOwner(sc *bufio.Scanner) Owner {
	var owner Owner
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			if pid, err := strconv.Atoi(value); err == nil {
				owner.PID = pid
			}
		case "started":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				owner.Started = t
			}
		}
	}
	return owner
}
