package session

import (
	"context"
	"fmt"
	"sync"

	"hostdeck/internal/docker"
	"hostdeck/internal/logging"
	"hostdeck/internal/sshx"

	"github.com/google/uuid"
)

// Manager is the registry of live sessions of all kinds
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	onOutput func(id string, data []byte)
	onExit   func(id string)
}

// NewManager creates an empty session registry
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// SetOutputHandler sets the callback for session output
func (m *Manager) SetOutputHandler(handler func(id string, data []byte)) {
	m.onOutput = handler
}

// SetExitHandler sets the callback for session exit
func (m *Manager) SetExitHandler(handler func(id string)) {
	m.onExit = handler
}

func (m *Manager) register(sess *Session) *Session {
	sess.pauseCond = sync.NewCond(&sess.mu)
	sess.running = true
	sess.onOutput = m.onOutput
	sess.onExit = m.onExit

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	go sess.readOutput()
	return sess
}

// CreateLocal starts a login shell on a pty
func (m *Manager) CreateLocal(name, workDir string) (*Session, error) {
	b, err := newPtyBackend(workDir)
	if err != nil {
		logging.Error("Failed to start local shell", "workDir", logging.MaskPath(workDir), "error", err)
		return nil, err
	}

	sess := &Session{
		ID:      uuid.New().String(),
		Name:    name,
		Kind:    KindLocal,
		Target:  workDir,
		backend: b,
		wait:    b.cmd.Wait,
	}
	m.register(sess)

	logging.Info("Local session created", "id", sess.ID, "name", name)
	return sess, nil
}

// CreateSSH dials the host and opens a remote shell with a requested pty.
// Host key failures surface unchanged so the caller can run the trust
// prompt flow and retry.
func (m *Manager) CreateSSH(ctx context.Context, name, hostID string, cfg sshx.Config) (*Session, error) {
	client, err := sshx.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	b, err := newSSHBackend(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("opening shell on %s: %w", cfg.Addr(), err)
	}

	sess := &Session{
		ID:      uuid.New().String(),
		Name:    name,
		Kind:    KindSSH,
		HostID:  hostID,
		Target:  cfg.Addr(),
		backend: b,
		wait:    b.sess.Wait,
	}
	m.register(sess)

	logging.Info("SSH session created", "id", sess.ID, "name", name, "target", cfg.Addr())
	return sess, nil
}

// CreateContainer opens an exec shell inside a running container
func (m *Manager) CreateContainer(ctx context.Context, name, containerID string, dockerMgr *docker.Manager) (*Session, error) {
	shell, err := dockerMgr.OpenShell(ctx, containerID)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:      uuid.New().String(),
		Name:    name,
		Kind:    KindContainer,
		Target:  containerID,
		backend: shell,
	}
	m.register(sess)

	logging.Info("Container session created", "id", sess.ID, "name", name, "container", containerID)
	return sess, nil
}

// Get returns a session by ID
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// List returns all sessions
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list
}

// Close tears down one session and forgets it
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	sess, exists := m.sessions[id]
	if !exists {
		m.mu.Unlock()
		return nil
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	logging.Info("Session closed", "id", id)
	return sess.Close()
}

// CloseAll tears down every session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// Write sends data to a session
func (m *Manager) Write(id string, data []byte) error {
	sess := m.Get(id)
	if sess == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	return sess.Write(data)
}

// Resize resizes a session's terminal
func (m *Manager) Resize(id string, rows, cols uint16) error {
	sess := m.Get(id)
	if sess == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	return sess.Resize(rows, cols)
}

// Pause pauses output delivery for a session
func (m *Manager) Pause(id string) {
	if sess := m.Get(id); sess != nil {
		sess.Pause()
	}
}

// Resume resumes output delivery for a session
func (m *Manager) Resume(id string) {
	if sess := m.Get(id); sess != nil {
		sess.Resume()
	}
}
