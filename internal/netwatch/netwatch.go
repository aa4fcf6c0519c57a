// Package netwatch tracks host reachability by probing each host's
// service port on an interval. Status changes are reported through a
// callback; unchanged hosts stay quiet so the frontend only repaints
// what moved.
package netwatch

import (
	"net"
	"strconv"
	"sync"
	"time"
)

// Reachability states
const (
	StatusUnknown = "unknown"
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// DefaultProbeTimeout bounds one TCP probe
const DefaultProbeTimeout = 3 * time.Second

// Target is one host to probe
type Target struct {
	ID       string
	Hostname string
	Port     int
}

// HostStatus is the tracked reachability of one host
type HostStatus struct {
	HostID    string    `json:"hostId"`
	Status    string    `json:"status"`
	LatencyMs int64     `json:"latencyMs"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Probe makes one TCP connection attempt and reports status and latency
func Probe(target Target, timeout time.Duration) HostStatus {
	status := HostStatus{
		HostID:    target.ID,
		Status:    StatusOffline,
		CheckedAt: time.Now(),
	}

	addr := net.JoinHostPort(target.Hostname, strconv.Itoa(target.Port))
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err == nil {
		conn.Close()
		status.Status = StatusOnline
		status.LatencyMs = time.Since(start).Milliseconds()
	}
	return status
}

// Watcher polls a set of targets and remembers the last status per host
type Watcher struct {
	targets  func() []Target
	timeout  time.Duration
	statuses map[string]HostStatus
	mu       sync.RWMutex
	onChange func(HostStatus)
}

// NewWatcher creates a watcher; targets is called before every sweep so
// host edits take effect without restarting the poller.
func NewWatcher(targets func() []Target) *Watcher {
	return &Watcher{
		targets:  targets,
		timeout:  DefaultProbeTimeout,
		statuses: make(map[string]HostStatus),
	}
}

// SetChangeCallback sets the callback invoked when a host's status flips
func (w *Watcher) SetChangeCallback(fn func(HostStatus)) {
	w.onChange = fn
}

// StartPolling sweeps until stopChan closes. Blocks; run in a goroutine.
func (w *Watcher) StartPolling(interval time.Duration, stopChan chan struct{}) {
	w.sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-stopChan:
			return
		}
	}
}

func (w *Watcher) sweep() {
	targets := w.targets()

	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t.Hostname == "" || t.Port == 0 {
			continue
		}
		seen[t.ID] = true

		status := Probe(t, w.timeout)

		w.mu.Lock()
		prev, known := w.statuses[t.ID]
		w.statuses[t.ID] = status
		w.mu.Unlock()

		if (!known || prev.Status != status.Status) && w.onChange != nil {
			w.onChange(status)
		}
	}

	// Forget hosts that were deleted
	w.mu.Lock()
	for id := range w.statuses {
		if !seen[id] {
			delete(w.statuses, id)
		}
	}
	w.mu.Unlock()
}

// Statuses returns the last known status for every tracked host
func (w *Watcher) Statuses() map[string]HostStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make(map[string]HostStatus, len(w.statuses))
	for id, s := range w.statuses {
		result[id] = s
	}
	return result
}

// Status returns one host's last known status
func (w *Watcher) Status(hostID string) HostStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if s, ok := w.statuses[hostID]; ok {
		return s
	}
	return HostStatus{HostID: hostID, Status: StatusUnknown}
}
