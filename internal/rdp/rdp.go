// Package rdp launches and tracks an external RDP client for rdp hosts.
// HostDeck does not speak the RDP protocol itself; it locates an installed
// client, builds its argument list and owns the process lifecycle.
package rdp

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"hostdeck/internal/diag"
	"hostdeck/internal/logging"

	"github.com/google/shlex"
	"github.com/google/uuid"
)

// Known client flavors; each builds its arguments differently
const (
	clientFreeRDP = "freerdp"
	clientMstsc   = "mstsc"
	clientMacOpen = "open"
)

// candidate binaries probed in order per platform
var candidates = map[string][]struct {
	binary string
	flavor string
}{
	"linux": {
		{"xfreerdp", clientFreeRDP},
		{"wlfreerdp", clientFreeRDP},
		{"xfreerdp3", clientFreeRDP},
	},
	"windows": {
		{"mstsc.exe", clientMstsc},
	},
	"darwin": {
		{"open", clientMacOpen},
	},
}

// Options describes one RDP launch
type Options struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Fullscreen bool
	Width      int
	Height     int
	// ExtraArgs is a user-supplied string split shell-style and appended
	ExtraArgs string
	// Client overrides autodetection with an explicit binary
	Client string
}

func (o Options) addr() string {
	port := o.Port
	if port == 0 {
		port = 3389
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(port))
}

// FindClient locates an installed RDP client binary. An explicit override
// is trusted as FreeRDP-compatible unless it is a known flavor.
func FindClient(override string) (path, flavor string, err error) {
	if override != "" {
		p, err := exec.LookPath(override)
		if err != nil {
			return "", "", fmt.Errorf("configured RDP client %q not found: %w", override, err)
		}
		return p, flavorOf(override), nil
	}

	for _, c := range candidates[runtime.GOOS] {
		if p, err := exec.LookPath(c.binary); err == nil {
			return p, c.flavor, nil
		}
	}
	return "", "", fmt.Errorf("no RDP client found for %s", runtime.GOOS)
}

func flavorOf(binary string) string {
	switch binary {
	case "mstsc", "mstsc.exe":
		return clientMstsc
	case "open":
		return clientMacOpen
	default:
		return clientFreeRDP
	}
}

// BuildArgs turns launch options into the client's argument list
func BuildArgs(flavor string, opts Options) ([]string, error) {
	var args []string

	switch flavor {
	case clientFreeRDP:
		args = append(args, "/v:"+opts.addr())
		if opts.Username != "" {
			args = append(args, "/u:"+opts.Username)
		}
		if opts.Password != "" {
			args = append(args, "/p:"+opts.Password)
		}
		if opts.Fullscreen {
			args = append(args, "/f")
		} else if opts.Width > 0 && opts.Height > 0 {
			args = append(args, fmt.Sprintf("/w:%d", opts.Width), fmt.Sprintf("/h:%d", opts.Height))
		}

	case clientMstsc:
		args = append(args, "/v:"+opts.addr())
		if opts.Fullscreen {
			args = append(args, "/f")
		} else if opts.Width > 0 && opts.Height > 0 {
			args = append(args, fmt.Sprintf("/w:%d", opts.Width), fmt.Sprintf("/h:%d", opts.Height))
		}

	case clientMacOpen:
		// Hands off to whatever app claims the rdp:// scheme
		url := "rdp://"
		if opts.Username != "" {
			url += opts.Username + "@"
		}
		url += opts.addr()
		args = append(args, url)

	default:
		return nil, fmt.Errorf("unknown RDP client flavor %q", flavor)
	}

	if opts.ExtraArgs != "" {
		extra, err := shlex.Split(opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("bad extra arguments: %w", err)
		}
		args = append(args, extra...)
	}

	return args, nil
}

// SessionInfo is a tracked RDP client process shown in the session panel
type SessionInfo struct {
	ID        string    `json:"id"`
	HostID    string    `json:"hostId"`
	HostName  string    `json:"hostName"`
	Target    string    `json:"target"`
	Client    string    `json:"client"`
	StartedAt time.Time `json:"startedAt"`
}

type launched struct {
	info SessionInfo
	cmd  *exec.Cmd
}

// Launcher starts RDP client processes and tracks them until exit
type Launcher struct {
	sessions map[string]*launched
	mu       sync.RWMutex
	onExit   func(id string)
}

// NewLauncher creates an empty launcher
func NewLauncher() *Launcher {
	return &Launcher{sessions: make(map[string]*launched)}
}

// SetExitHandler sets the callback invoked when a client process ends
func (l *Launcher) SetExitHandler(handler func(id string)) {
	l.onExit = handler
}

// Launch starts the RDP client for a host and tracks the process
func (l *Launcher) Launch(hostID, hostName string, opts Options) (*SessionInfo, error) {
	path, flavor, err := FindClient(opts.Client)
	if err != nil {
		return nil, err
	}

	args, err := BuildArgs(flavor, opts)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}

	entry := &launched{
		info: SessionInfo{
			ID:        uuid.New().String(),
			HostID:    hostID,
			HostName:  hostName,
			Target:    opts.addr(),
			Client:    flavor,
			StartedAt: time.Now(),
		},
		cmd: cmd,
	}

	l.mu.Lock()
	l.sessions[entry.info.ID] = entry
	l.mu.Unlock()

	go l.waitForExit(entry)

	logging.Info("RDP client launched", "id", entry.info.ID, "host", hostName, "client", flavor)
	return &entry.info, nil
}

func (l *Launcher) waitForExit(entry *launched) {
	entry.cmd.Wait()

	l.mu.Lock()
	_, tracked := l.sessions[entry.info.ID]
	delete(l.sessions, entry.info.ID)
	l.mu.Unlock()

	if tracked && l.onExit != nil {
		l.onExit(entry.info.ID)
	}
}

// Sessions lists the RDP client processes still running
func (l *Launcher) Sessions() []SessionInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := make([]SessionInfo, 0, len(l.sessions))
	for _, s := range l.sessions {
		list = append(list, s.info)
	}
	return list
}

// Close kills a tracked RDP client process
func (l *Launcher) Close(id string) error {
	l.mu.Lock()
	entry, exists := l.sessions[id]
	delete(l.sessions, id)
	l.mu.Unlock()

	if !exists {
		return nil
	}
	if entry.cmd.Process != nil {
		return entry.cmd.Process.Kill()
	}
	return nil
}

// CloseAll kills every tracked client process
func (l *Launcher) CloseAll() {
	l.mu.Lock()
	all := make([]*launched, 0, len(l.sessions))
	for _, s := range l.sessions {
		all = append(all, s)
	}
	l.sessions = make(map[string]*launched)
	l.mu.Unlock()

	for _, s := range all {
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
	}
}

// Diagnose checks whether an RDP target is reachable: DNS, then a timed
// TCP dial to the RDP port. Credential problems only show up inside the
// external client, so a note is added when no username is configured.
func Diagnose(ctx context.Context, opts Options, timeout time.Duration) *diag.Report {
	report := diag.NewReport(opts.addr())

	if addrs := diag.ResolveHost(ctx, report, opts.Host); addrs == nil {
		report.Skip("tcp", "dns failed")
		return report
	}

	conn := diag.ProbeTCP(ctx, report, opts.addr(), timeout)
	if conn != nil {
		conn.Close()
	}

	if opts.Username == "" {
		report.Add("credentials", diag.StatusWarn, "no username configured; the client will prompt", 0)
	}

	return report
}
