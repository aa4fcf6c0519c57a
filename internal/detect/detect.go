// Package detect watches streaming session output for connection trouble:
// password prompts, rejected credentials, host key warnings and dropped
// connections. The error diagnostics screen subscribes to its status
// changes instead of parsing raw terminal bytes itself.
package detect

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Status is the detected condition of a session
type Status string

const (
	StatusNone           Status = "none"
	StatusPasswordPrompt Status = "password_prompt"
	StatusAuthFailed     Status = "auth_failed"
	StatusHostKeyWarning Status = "host_key_warning"
	StatusDisconnected   Status = "disconnected"
)

// sessionState tracks the detected condition for one session
type sessionState struct {
	Status       Status
	LastActivity time.Time
}

// Analyzer classifies session output chunks per session
type Analyzer struct {
	states map[string]*sessionState
	mu     sync.RWMutex

	passwordPatterns []*regexp.Regexp
	authFailPatterns []*regexp.Regexp
	hostKeyPatterns  []*regexp.Regexp
	dropPatterns     []*regexp.Regexp
}

// NewAnalyzer compiles the detection patterns
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		states: make(map[string]*sessionState),

		passwordPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)password\s*:`),
			regexp.MustCompile(`(?i)passphrase for key`),
			regexp.MustCompile(`(?i)verification code\s*:`),
			regexp.MustCompile(`(?i)\(current\) unix password`),
			regexp.MustCompile(`\[sudo\] password for`),
		},
		authFailPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)permission denied \(`),
			regexp.MustCompile(`(?i)authentication fail`),
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)too many authentication failures`),
			regexp.MustCompile(`(?i)incorrect password`),
		},
		hostKeyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`REMOTE HOST IDENTIFICATION HAS CHANGED`),
			regexp.MustCompile(`(?i)host key verification failed`),
			regexp.MustCompile(`(?i)authenticity of host .* can't be established`),
		},
		dropPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)connection closed by`),
			regexp.MustCompile(`(?i)connection reset by peer`),
			regexp.MustCompile(`(?i)connection refused`),
			regexp.MustCompile(`(?i)connection timed out`),
			regexp.MustCompile(`(?i)broken pipe`),
			regexp.MustCompile(`(?i)network is unreachable`),
		},
	}
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Analyze classifies one output chunk and returns the session's status and
// whether it changed. Checks run most-severe first: a chunk that carries
// both a host key warning and a password prompt is a host key warning.
func (a *Analyzer) Analyze(sessionID string, data []byte) (Status, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, exists := a.states[sessionID]
	if !exists {
		state = &sessionState{Status: StatusNone}
		a.states[sessionID] = state
	}

	oldStatus := state.Status
	state.LastActivity = time.Now()

	text := ansiRegex.ReplaceAllString(string(data), "")

	switch {
	case matchesAny(text, a.hostKeyPatterns):
		state.Status = StatusHostKeyWarning
	case matchesAny(text, a.authFailPatterns):
		state.Status = StatusAuthFailed
	case matchesAny(text, a.dropPatterns):
		state.Status = StatusDisconnected
	case matchesAny(text, a.passwordPatterns):
		state.Status = StatusPasswordPrompt
	case state.Status == StatusPasswordPrompt && looksLikeShellPrompt(text):
		// Password was accepted and a shell arrived
		state.Status = StatusNone
	}

	return state.Status, state.Status != oldStatus
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// looksLikeShellPrompt spots a line ending in a common interactive prompt
// character, which clears a pending password-prompt status.
func looksLikeShellPrompt(text string) bool {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "" {
			continue
		}
		switch trimmed[len(trimmed)-1] {
		case '$', '#', '%', '>':
			return true
		}
	}
	return false
}

// Status returns the current status for a session
func (a *Analyzer) Status(sessionID string) Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if state, exists := a.states[sessionID]; exists {
		return state.Status
	}
	return StatusNone
}

// Remove drops tracking for a session
func (a *Analyzer) Remove(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, sessionID)
}

// Reset clears a session's status back to none
func (a *Analyzer) Reset(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if state, exists := a.states[sessionID]; exists {
		state.Status = StatusNone
	}
}
