// Package session runs interactive terminal sessions against three kinds
// of target: a local shell on a pty, a remote shell over SSH, and an exec
// shell inside a running container. All three deliver output through the
// same handler callbacks so the frontend treats them uniformly.
package session

import (
	"io"
	"sync"
)

// Session kinds
const (
	KindLocal     = "local"
	KindSSH       = "ssh"
	KindContainer = "container"
)

// backend is what a concrete session type must provide: an interactive
// byte stream plus TTY resizing.
type backend interface {
	io.ReadWriteCloser
	Resize(rows, cols uint16) error
}

// Session is one live terminal session
type Session struct {
	ID     string
	Name   string
	Kind   string
	HostID string
	Target string

	backend backend
	// wait blocks until the underlying process ends; may be nil when the
	// backend has no separate process handle
	wait func() error

	running  bool
	mu       sync.Mutex
	onOutput func(id string, data []byte)
	onExit   func(id string)

	// Flow control; readOutput blocks on the cond while paused
	pauseCond *sync.Cond
	isPaused  bool
}

// Pause stops output delivery until Resume
func (s *Session) Pause() {
	s.mu.Lock()
	s.isPaused = true
	s.mu.Unlock()
}

// Resume restarts output delivery
func (s *Session) Resume() {
	s.mu.Lock()
	s.isPaused = false
	s.pauseCond.Signal()
	s.mu.Unlock()
}

// IsPaused reports whether output delivery is suspended
func (s *Session) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPaused
}

func (s *Session) readOutput() {
	buf := make([]byte, 4096)
	for {
		s.mu.Lock()
		for s.isPaused {
			s.pauseCond.Wait()
		}
		s.mu.Unlock()

		n, err := s.backend.Read(buf)
		if n > 0 && s.onOutput != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.onOutput(s.ID, data)
		}
		if err != nil {
			break
		}
	}

	if s.wait != nil {
		s.wait()
	}

	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning && s.onExit != nil {
		s.onExit(s.ID)
	}
}

// Write sends keystrokes to the session
func (s *Session) Write(data []byte) error {
	_, err := s.backend.Write(data)
	return err
}

// Resize resizes the session's terminal
func (s *Session) Resize(rows, cols uint16) error {
	return s.backend.Resize(rows, cols)
}

// Close tears down the session
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	return s.backend.Close()
}

// IsRunning reports whether the session is still alive
func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Info is the session summary sent to the frontend
type Info struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	HostID  string `json:"hostId,omitempty"`
	Target  string `json:"target,omitempty"`
	Running bool   `json:"running"`
}

// Info returns the session summary
func (s *Session) Info() Info {
	return Info{
		ID:      s.ID,
		Name:    s.Name,
		Kind:    s.Kind,
		HostID:  s.HostID,
		Target:  s.Target,
		Running: s.IsRunning(),
	}
}
