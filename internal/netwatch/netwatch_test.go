package netwatch

import (
	"net"
	"strconv"
	"testing"
	"time"
)

func listen(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return ln, port
}

func TestProbeOnline(t *testing.T) {
	_, port := listen(t)

	status := Probe(Target{ID: "h1", Hostname: "127.0.0.1", Port: port}, time.Second)
	if status.Status != StatusOnline {
		t.Errorf("status = %q, want %q", status.Status, StatusOnline)
	}
	if status.CheckedAt.IsZero() {
		t.Error("CheckedAt not set")
	}
}

func TestProbeOffline(t *testing.T) {
	ln, port := listen(t)
	ln.Close()

	status := Probe(Target{ID: "h1", Hostname: "127.0.0.1", Port: port}, time.Second)
	if status.Status != StatusOffline {
		t.Errorf("status = %q, want %q", status.Status, StatusOffline)
	}
}

func TestWatcherReportsOnlyChanges(t *testing.T) {
	_, port := listen(t)

	targets := []Target{{ID: "h1", Hostname: "127.0.0.1", Port: port}}
	w := NewWatcher(func() []Target { return targets })
	w.timeout = time.Second

	var changes []HostStatus
	w.SetChangeCallback(func(s HostStatus) {
		changes = append(changes, s)
	})

	w.sweep()
	w.sweep()

	if len(changes) != 1 {
		t.Fatalf("got %d change events after two identical sweeps, want 1", len(changes))
	}
	if changes[0].Status != StatusOnline {
		t.Errorf("status = %q, want %q", changes[0].Status, StatusOnline)
	}

	if got := w.Status("h1").Status; got != StatusOnline {
		t.Errorf("Status(h1) = %q, want %q", got, StatusOnline)
	}
}

func TestWatcherForgetsDeletedHosts(t *testing.T) {
	_, port := listen(t)

	targets := []Target{{ID: "h1", Hostname: "127.0.0.1", Port: port}}
	w := NewWatcher(func() []Target { return targets })
	w.timeout = time.Second

	w.sweep()
	if len(w.Statuses()) != 1 {
		t.Fatal("expected one tracked host")
	}

	targets = nil
	w.sweep()
	if len(w.Statuses()) != 0 {
		t.Error("deleted host still tracked")
	}

	if got := w.Status("h1").Status; got != StatusUnknown {
		t.Errorf("Status for forgotten host = %q, want %q", got, StatusUnknown)
	}
}

func TestWatcherSkipsIncompleteTargets(t *testing.T) {
	w := NewWatcher(func() []Target {
		return []Target{{ID: "h1"}, {ID: "h2", Hostname: "127.0.0.1"}}
	})
	w.sweep()
	if len(w.Statuses()) != 0 {
		t.Error("targets without hostname/port should not be probed")
	}
}
