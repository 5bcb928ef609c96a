// Package session enforces the single-live-picker invariant: a pid marker
// at a well-known runtime path plus a terminate-then-write takeover
// protocol.
package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/1broseidon/displayctl/internal/runtimepath"
)

// Store persists the pid of the currently running picker. At most one valid
// marker exists at a time; writes are not atomic against concurrent external
// processes, the single-writer discipline comes from the caller owning the
// whole apply cycle.
type Store interface {
	// CurrentHolder returns the recorded pid; ok is false when no marker
	// exists. A malformed marker reads as absent.
	CurrentHolder() (pid int, ok bool, err error)
	// Claim records pid as the live picker.
	Claim(pid int) error
	// Release removes the marker. Releasing an absent marker is not an
	// error.
	Release() error
}

// FileStore keeps the marker in a pid file under the runtime directory.
type FileStore struct {
	path string
}

// NewFileStore returns the store at the default marker path.
func NewFileStore() (*FileStore, error) {
	path, err := runtimepath.MarkerPath()
	if err != nil {
		return nil, err
	}
	return NewFileStoreAt(path), nil
}

// NewFileStoreAt returns a store over an explicit marker path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) CurrentHolder() (int, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading session marker: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false, nil
	}
	return pid, true, nil
}

func (s *FileStore) Claim(pid int) error {
	if err := os.WriteFile(s.path, []byte(strconv.Itoa(pid)), 0600); err != nil {
		return fmt.Errorf("writing session marker: %w", err)
	}
	return nil
}

func (s *FileStore) Release() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session marker: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for deterministic tests.
type MemStore struct {
	mu   sync.Mutex
	pid  int
	held bool
}

func (s *MemStore) CurrentHolder() (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid, s.held, nil
}

func (s *MemStore) Claim(pid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = pid
	s.held = true
	return nil
}

func (s *MemStore) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = 0
	s.held = false
	return nil
}

// procCommand reports the command name pid is running, read from
// /proc/<pid>/cmdline. The second return is false when the process no
// longer exists.
func procCommand(pid int) (string, bool) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil || len(data) == 0 {
		return "", false
	}
	argv0, _, _ := bytes.Cut(data, []byte{0})
	return filepath.Base(string(argv0)), true
}
