package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"hostdeck/internal/detect"
	"hostdeck/internal/diag"
	"hostdeck/internal/docker"
	"hostdeck/internal/logging"
	"hostdeck/internal/metrics"
	"hostdeck/internal/netwatch"
	"hostdeck/internal/rdp"
	"hostdeck/internal/remote"
	"hostdeck/internal/script"
	"hostdeck/internal/session"
	"hostdeck/internal/sshx"
	"hostdeck/internal/state"
	"hostdeck/internal/totp"
	"hostdeck/internal/wol"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct
type App struct {
	ctx              context.Context
	stateManager     *state.Manager
	sessionManager   *session.Manager
	dockerManager    *docker.Manager
	rdpLauncher      *rdp.Launcher
	analyzer         *detect.Analyzer
	scriptImporter   *script.Importer
	remoteServer     *remote.Server
	ngrokTunnel      *remote.NgrokTunnel
	metricsPoller    *metrics.Poller
	netWatcher       *netwatch.Watcher
	metricsStopChan  chan struct{}
	netwatchStopChan chan struct{}
	sshConfigStop    func() error

	// Host keys waiting for the user's trust decision, keyed by host ID
	pendingHostKeys map[string]*sshx.ErrUnknownHostKey
	keysMu          sync.Mutex

	mu sync.RWMutex
}

// NewApp creates a new App
func NewApp() *App {
	return &App{
		pendingHostKeys: make(map[string]*sshx.ErrUnknownHostKey),
	}
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	// Initialize logger first
	if err := logging.InitDefault(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
	} else {
		logging.Info("Application starting", "version", "1.0.0")
	}

	// Initialize state manager first
	stateMgr, err := state.NewManager()
	if err != nil {
		logging.Error("Failed to initialize state manager", "error", err)
	} else {
		a.stateManager = stateMgr
		a.stateManager.SetContext(ctx)
	}

	// Initialize session manager
	a.sessionManager = session.NewManager()
	a.sessionManager.SetOutputHandler(a.onSessionOutput)
	a.sessionManager.SetExitHandler(a.onSessionExit)

	// Initialize docker manager
	dockerMgr, err := docker.NewManager()
	if err != nil {
		logging.Warn("Docker not available", "error", err)
	} else {
		a.dockerManager = dockerMgr
		logging.Info("Docker manager initialized")
	}

	// Initialize RDP launcher
	a.rdpLauncher = rdp.NewLauncher()
	a.rdpLauncher.SetExitHandler(func(id string) {
		runtime.EventsEmit(a.ctx, "rdp:exited", map[string]string{"sessionId": id})
	})

	// Session output analyzer (password prompts, auth failures, drops)
	a.analyzer = detect.NewAnalyzer()

	// Script folder importer
	a.scriptImporter = script.NewImporter()

	settings := a.getSettings()

	// Host system metrics polling
	a.metricsPoller = metrics.NewPoller(func(snap metrics.Snapshot) {
		runtime.EventsEmit(a.ctx, "metrics:update", snap)
	})
	a.metricsStopChan = make(chan struct{})
	go a.metricsPoller.StartPolling(
		time.Duration(settings.MetricsIntervalSeconds)*time.Second, a.metricsStopChan)

	// Background reachability sweeps over all configured hosts
	a.netWatcher = netwatch.NewWatcher(a.watchTargets)
	a.netWatcher.SetChangeCallback(func(status netwatch.HostStatus) {
		runtime.EventsEmit(a.ctx, "host:status", status)
		if a.remoteServer != nil && a.remoteServer.IsRunning() {
			a.remoteServer.BroadcastHostStatus(status)
		}
	})
	a.netwatchStopChan = make(chan struct{})
	go a.netWatcher.StartPolling(
		time.Duration(settings.ReachabilityIntervalSeconds)*time.Second, a.netwatchStopChan)

	// Watch ~/.ssh/config so the import panel can offer newly added hosts
	if configPath, err := sshx.DefaultConfigPath(); err == nil {
		stop, err := sshx.WatchConfig(ctx, configPath, func() {
			runtime.EventsEmit(a.ctx, "sshconfig:changed", configPath)
		})
		if err != nil {
			logging.Debug("SSH config watch unavailable", "error", err)
		} else {
			a.sshConfigStop = stop
		}
	}

	// Stream captured log entries to the in-app log viewer
	if capture := logging.Capture(); capture != nil {
		capture.SetForward(func(entry logging.CapturedEntry) {
			runtime.EventsEmit(a.ctx, "log:entry", entry)
		})
	}

	// Restore window state after a short delay (needs window to be ready)
	const windowReadyDelay = 150 * time.Millisecond
	go func() {
		time.Sleep(windowReadyDelay)
		a.restoreWindowState()
	}()
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	// Save window state before closing
	a.saveWindowState()

	// Stop forwarding logs; the frontend is going away
	if capture := logging.Capture(); capture != nil {
		capture.SetForward(nil)
	}

	if a.metricsStopChan != nil {
		close(a.metricsStopChan)
	}
	if a.netwatchStopChan != nil {
		close(a.netwatchStopChan)
	}
	if a.sshConfigStop != nil {
		a.sshConfigStop()
	}
	if a.ngrokTunnel != nil {
		a.ngrokTunnel.Stop()
	}
	if a.remoteServer != nil {
		a.remoteServer.Stop()
	}
	if a.sessionManager != nil {
		a.sessionManager.CloseAll()
	}
	if a.rdpLauncher != nil {
		a.rdpLauncher.CloseAll()
	}
	if a.dockerManager != nil {
		a.dockerManager.Close()
	}
	if a.stateManager != nil {
		a.stateManager.SaveSync()
	}
}

// getSettings returns current settings or defaults when state is unavailable
func (a *App) getSettings() *state.Settings {
	if a.stateManager != nil {
		return a.stateManager.GetSettings()
	}
	return state.DefaultSettings()
}

// Window position bounds for validation (supports multi-monitor setups)
const (
	minWindowX      = -5000 // Allow negative for left-side monitors
	maxWindowX      = 10000
	minWindowY      = -5000
	maxWindowY      = 10000
	minWindowWidth  = 400
	minWindowHeight = 300
)

// restoreWindowState restores the window position and size from saved state
func (a *App) restoreWindowState() {
	if a.stateManager == nil {
		return
	}

	ws := a.stateManager.GetWindowState()
	if ws == nil {
		logging.Debug("No window state to restore")
		return
	}

	// Restore maximized state first if set
	if ws.Maximized {
		runtime.WindowMaximise(a.ctx)
		logging.Info("Window state restored (maximized)")
		return
	}

	// Validate position is within reasonable bounds (supports multi-monitor)
	positionValid := ws.X >= minWindowX && ws.X <= maxWindowX &&
		ws.Y >= minWindowY && ws.Y <= maxWindowY

	// Validate size is reasonable
	sizeValid := ws.Width >= minWindowWidth && ws.Height >= minWindowHeight

	if positionValid {
		runtime.WindowSetPosition(a.ctx, ws.X, ws.Y)
	} else {
		logging.Warn("Skipping window position restore - out of bounds", "x", ws.X, "y", ws.Y)
	}

	if sizeValid {
		runtime.WindowSetSize(a.ctx, ws.Width, ws.Height)
	} else {
		logging.Warn("Skipping window size restore - invalid", "width", ws.Width, "height", ws.Height)
	}

	logging.Info("Window state restored", "x", ws.X, "y", ws.Y, "width", ws.Width, "height", ws.Height)
}

// saveWindowState saves the current window position and size
func (a *App) saveWindowState() {
	if a.stateManager == nil {
		return
	}

	maximized := runtime.WindowIsMaximised(a.ctx)

	var x, y, width, height int

	if maximized {
		// When maximized, try to preserve the previous non-maximized state
		existing := a.stateManager.GetWindowState()
		if existing != nil && !existing.Maximized {
			x, y = existing.X, existing.Y
			width, height = existing.Width, existing.Height
		} else {
			// Use current values as fallback
			x, y = runtime.WindowGetPosition(a.ctx)
			width, height = runtime.WindowGetSize(a.ctx)
		}
	} else {
		x, y = runtime.WindowGetPosition(a.ctx)
		width, height = runtime.WindowGetSize(a.ctx)
	}

	ws := &state.WindowState{
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		Maximized: maximized,
	}

	a.stateManager.SetWindowState(ws)
	logging.Info("Window state saved", "x", x, "y", y, "width", width, "height", height, "maximized", maximized)
}

// Session output/exit handlers - emit events to frontend and remote clients
func (a *App) onSessionOutput(id string, data []byte) {
	// Analyze for password prompts, auth failures, dropped connections
	if a.analyzer != nil {
		status, changed := a.analyzer.Analyze(id, data)
		if changed {
			runtime.EventsEmit(a.ctx, "session:status", map[string]string{
				"sessionId": id,
				"status":    string(status),
			})
		}
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	runtime.EventsEmit(a.ctx, "session:output", map[string]string{
		"sessionId": id,
		"data":      encoded,
	})

	// Broadcast to remote clients
	if a.remoteServer != nil && a.remoteServer.IsRunning() {
		a.remoteServer.BroadcastOutput(id, encoded)
	}
}

func (a *App) onSessionExit(id string) {
	if a.analyzer != nil {
		a.analyzer.Remove(id)
	}
	runtime.EventsEmit(a.ctx, "session:exited", map[string]string{"sessionId": id})

	if a.remoteServer != nil && a.remoteServer.IsRunning() {
		a.remoteServer.BroadcastSessionsList()
	}
}

// watchTargets builds reachability probe targets from the host registry
func (a *App) watchTargets() []netwatch.Target {
	if a.stateManager == nil {
		return nil
	}
	hosts := a.stateManager.GetHosts()
	targets := make([]netwatch.Target, 0, len(hosts))
	for _, h := range hosts {
		targets = append(targets, netwatch.Target{
			ID:       h.ID,
			Hostname: h.Hostname,
			Port:     h.Port,
		})
	}
	return targets
}

// ============================================
// State Methods
// ============================================

// GetState returns the full application state
func (a *App) GetState() *state.AppState {
	if a.stateManager == nil {
		return nil
	}
	return a.stateManager.GetState()
}

// GetSettings returns the current settings
func (a *App) GetSettings() *state.Settings {
	return a.getSettings()
}

// UpdateSettings saves new settings
func (a *App) UpdateSettings(settings state.Settings) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	a.stateManager.UpdateSettings(&settings)
	return nil
}

// GetTerminalTheme returns the current terminal color theme
func (a *App) GetTerminalTheme() string {
	if a.stateManager == nil {
		return "dracula"
	}
	return a.stateManager.GetTerminalTheme()
}

// SetTerminalTheme sets the terminal color theme
func (a *App) SetTerminalTheme(themeName string) {
	if a.stateManager != nil {
		a.stateManager.SetTerminalTheme(themeName)
	}
}

// GetDefaultColors returns the host accent color palette
func (a *App) GetDefaultColors() []string {
	return []string{"#e06c75", "#d19a66", "#e5c07b", "#98c379", "#56b6c2", "#61afef", "#c678dd", "#abb2bf"}
}

// GetDefaultIcons returns the host icon choices
func (a *App) GetDefaultIcons() []string {
	return []string{"server", "desktop", "laptop", "router", "database", "cloud", "raspberry", "nas", "camera", "printer"}
}

// ============================================
// Host Methods
// ============================================

// GetHosts returns all configured hosts
func (a *App) GetHosts() []*state.Host {
	if a.stateManager == nil {
		return []*state.Host{}
	}
	return a.stateManager.GetHosts()
}

// GetHost returns a host by ID
func (a *App) GetHost(id string) *state.Host {
	if a.stateManager == nil {
		return nil
	}
	return a.stateManager.GetHost(id)
}

// CreateHost adds a new host
func (a *App) CreateHost(name, hostname string, port int, protocol string) (*state.Host, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.CreateHost(name, hostname, port, protocol)
}

// UpdateHost updates an existing host
func (a *App) UpdateHost(host state.Host) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.UpdateHost(&host)
}

// DeleteHost removes a host and closes any of its open sessions
func (a *App) DeleteHost(id string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}

	if a.sessionManager != nil {
		for _, sess := range a.sessionManager.List() {
			if sess.HostID == id {
				a.sessionManager.Close(sess.ID)
			}
		}
	}

	return a.stateManager.DeleteHost(id)
}

// SetActiveHost sets the host highlighted in the UI
func (a *App) SetActiveHost(id string) {
	if a.stateManager != nil {
		a.stateManager.SetActiveHost(id)
	}
}

// GetActiveHost returns the active host ID
func (a *App) GetActiveHost() string {
	if a.stateManager == nil {
		return ""
	}
	return a.stateManager.GetActiveHostID()
}

// ============================================
// SSH Config Import
// ============================================

// GetSSHConfigHosts parses ~/.ssh/config and returns its Host blocks
func (a *App) GetSSHConfigHosts() ([]sshx.ConfigHost, error) {
	path, err := sshx.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return sshx.LoadConfig(path)
}

// ImportSSHConfigHosts imports the given config entries as hosts. Entries
// whose alias matches an existing host name update that host instead of
// creating a duplicate. Returns how many hosts were newly created.
func (a *App) ImportSSHConfigHosts(entries []sshx.ConfigHost) (int, error) {
	if a.stateManager == nil {
		return 0, fmt.Errorf("state manager not initialized")
	}

	hosts := make([]*state.Host, 0, len(entries))
	for _, e := range entries {
		port := e.Port
		if port == 0 {
			port = 22
		}
		hosts = append(hosts, &state.Host{
			Name:     e.Alias,
			Hostname: e.Hostname,
			Port:     port,
			Protocol: state.ProtocolSSH,
			Username: e.User,
			KeyPath:  e.IdentityFile,
		})
	}

	created := a.stateManager.UpsertHosts(hosts)
	logging.Info("SSH config import finished", "entries", len(entries), "created", created)
	return created, nil
}

// ============================================
// Inventory Import/Export
// ============================================

// ExportInventory writes all hosts to a YAML file
func (a *App) ExportInventory(path string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.ExportInventory(path)
}

// ImportInventory loads hosts from a YAML inventory file
func (a *App) ImportInventory(path string) (int, error) {
	if a.stateManager == nil {
		return 0, fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.ImportInventory(path)
}

// ============================================
// Dialog Methods
// ============================================

// SelectDirectory opens a native directory picker
func (a *App) SelectDirectory() (string, error) {
	return runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Select Directory",
	})
}

// SelectFile opens a native file picker
func (a *App) SelectFile(title string) (string, error) {
	return runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: title,
	})
}

// SelectSaveFile opens a native save-as picker
func (a *App) SelectSaveFile(title, defaultName string) (string, error) {
	return runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           title,
		DefaultFilename: defaultName,
	})
}

// ============================================
// Session Methods
// ============================================

// CreateLocalSession starts a local shell session
func (a *App) CreateLocalSession(name, workDir string) (*session.Info, error) {
	if a.sessionManager == nil {
		return nil, fmt.Errorf("session manager not initialized")
	}

	sess, err := a.sessionManager.CreateLocal(name, workDir)
	if err != nil {
		return nil, err
	}

	info := sess.Info()
	logging.Info("Local session created", "sessionId", info.ID, "name", name)
	return &info, nil
}

// sshConfigForHost builds dial parameters from a stored host
func (a *App) sshConfigForHost(host *state.Host) sshx.Config {
	timeout := time.Duration(a.getSettings().ConnectTimeoutSeconds) * time.Second
	return sshx.Config{
		Host:          host.Hostname,
		Port:          host.Port,
		User:          host.Username,
		Password:      host.Password,
		KeyPath:       host.KeyPath,
		KeyPassphrase: host.KeyPassphrase,
		Timeout:       timeout,
	}
}

// ConnectSSH opens an interactive SSH session to a stored host. When the
// server presents a host key not yet in known_hosts the error carries the
// key fingerprint; the frontend shows it and may call TrustHostKey, then
// retry.
func (a *App) ConnectSSH(hostID, name string) (*session.Info, error) {
	if a.sessionManager == nil || a.stateManager == nil {
		return nil, fmt.Errorf("not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return nil, fmt.Errorf("host not found: %s", hostID)
	}
	if host.Protocol != state.ProtocolSSH {
		return nil, fmt.Errorf("host %s is not an SSH host", host.Name)
	}

	if name == "" {
		name = host.Name
	}

	sess, err := a.sessionManager.CreateSSH(a.ctx, name, hostID, a.sshConfigForHost(host))
	if err != nil {
		if unknownKey, ok := sshx.AsUnknownHostKey(err); ok {
			a.keysMu.Lock()
			a.pendingHostKeys[hostID] = unknownKey
			a.keysMu.Unlock()
			runtime.EventsEmit(a.ctx, "ssh:hostkey:unknown", map[string]string{
				"hostId":      hostID,
				"fingerprint": unknownKey.Fingerprint,
			})
		}
		return nil, err
	}

	a.stateManager.TouchHostConnected(hostID)

	info := sess.Info()
	logging.Info("SSH session created", "sessionId", info.ID, "host", logging.MaskPath(host.Hostname))
	return &info, nil
}

// GetPendingHostKey returns the fingerprint awaiting a trust decision for
// a host, or empty when there is none
func (a *App) GetPendingHostKey(hostID string) string {
	a.keysMu.Lock()
	defer a.keysMu.Unlock()
	if pending, ok := a.pendingHostKeys[hostID]; ok {
		return pending.Fingerprint
	}
	return ""
}

// TrustHostKey records the pending host key in known_hosts
func (a *App) TrustHostKey(hostID string) error {
	a.keysMu.Lock()
	pending, ok := a.pendingHostKeys[hostID]
	if ok {
		delete(a.pendingHostKeys, hostID)
	}
	a.keysMu.Unlock()

	if !ok {
		return fmt.Errorf("no pending host key for host %s", hostID)
	}

	if err := sshx.TrustHostKey("", pending.HostPort, pending.Key); err != nil {
		return fmt.Errorf("failed to record host key: %w", err)
	}

	logging.Info("Host key trusted", "fingerprint", pending.Fingerprint)
	return nil
}

// RejectHostKey discards the pending host key for a host
func (a *App) RejectHostKey(hostID string) {
	a.keysMu.Lock()
	delete(a.pendingHostKeys, hostID)
	a.keysMu.Unlock()
}

// ConnectContainer opens an exec shell session inside a running container
func (a *App) ConnectContainer(name, containerID string) (*session.Info, error) {
	if a.sessionManager == nil {
		return nil, fmt.Errorf("session manager not initialized")
	}
	if a.dockerManager == nil {
		return nil, fmt.Errorf("docker not available")
	}

	sess, err := a.sessionManager.CreateContainer(a.ctx, name, containerID, a.dockerManager)
	if err != nil {
		return nil, err
	}

	info := sess.Info()
	logging.Info("Container session created", "sessionId", info.ID, "containerId", containerID)
	return &info, nil
}

// GetSessions returns all live sessions
func (a *App) GetSessions() []session.Info {
	if a.sessionManager == nil {
		return []session.Info{}
	}
	all := a.sessionManager.List()
	infos := make([]session.Info, len(all))
	for i, sess := range all {
		infos[i] = sess.Info()
	}
	return infos
}

// WriteSession writes input to a session (data is base64 encoded)
func (a *App) WriteSession(id string, data string) error {
	if a.sessionManager == nil {
		return fmt.Errorf("session manager not initialized")
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("invalid input encoding: %w", err)
	}
	return a.sessionManager.Write(id, decoded)
}

// ResizeSession resizes a session's terminal
func (a *App) ResizeSession(id string, rows, cols int) error {
	if a.sessionManager == nil {
		return fmt.Errorf("session manager not initialized")
	}
	return a.sessionManager.Resize(id, uint16(rows), uint16(cols))
}

// CloseSession closes a session
func (a *App) CloseSession(id string) error {
	if a.sessionManager == nil {
		return fmt.Errorf("session manager not initialized")
	}
	return a.sessionManager.Close(id)
}

// PauseSession pauses output delivery for a hidden session
func (a *App) PauseSession(id string) {
	if a.sessionManager != nil {
		a.sessionManager.Pause(id)
	}
}

// ResumeSession resumes output delivery
func (a *App) ResumeSession(id string) {
	if a.sessionManager != nil {
		a.sessionManager.Resume(id)
	}
}

// GetSessionStatus returns the analyzer's current status for a session
func (a *App) GetSessionStatus(id string) string {
	if a.analyzer == nil {
		return string(detect.StatusNone)
	}
	return string(a.analyzer.Status(id))
}

// ============================================
// Bulk Command Methods
// ============================================

// RunCommandOnHosts runs a command over SSH on the given hosts with
// bounded concurrency. Per-host results are streamed to the frontend as
// they arrive, then the full slice is returned.
func (a *App) RunCommandOnHosts(hostIDs []string, command string) ([]sshx.BulkResult, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}
	if command == "" {
		return nil, fmt.Errorf("command is empty")
	}

	targets := make([]sshx.Target, 0, len(hostIDs))
	for _, id := range hostIDs {
		host := a.stateManager.GetHost(id)
		if host == nil || host.Protocol != state.ProtocolSSH {
			continue
		}
		targets = append(targets, sshx.Target{
			ID:     host.ID,
			Name:   host.Name,
			Config: a.sshConfigForHost(host),
		})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no SSH hosts selected")
	}

	opts := sshx.BulkOptions{
		Concurrency: a.getSettings().BulkConcurrency,
		OnResult: func(result sshx.BulkResult) {
			runtime.EventsEmit(a.ctx, "bulk:result", result)
		},
	}

	logging.Info("Bulk command started", "hosts", len(targets))
	results := sshx.RunBulk(a.ctx, targets, command, opts)
	return results, nil
}

// RunScriptOnHosts runs a saved script from the library on the given hosts
func (a *App) RunScriptOnHosts(scriptID string, hostIDs []string) ([]sshx.BulkResult, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}

	saved, ok := a.stateManager.GetScript(scriptID)
	if !ok {
		return nil, fmt.Errorf("script not found: %s", scriptID)
	}

	results, err := a.RunCommandOnHosts(hostIDs, saved.Content)
	if err != nil {
		return nil, err
	}

	a.stateManager.IncrementScriptUsage(scriptID)
	return results, nil
}

// ============================================
// Script Library Methods
// ============================================

// GetScripts returns all saved scripts
func (a *App) GetScripts() []state.Script {
	if a.stateManager == nil {
		return []state.Script{}
	}
	return a.stateManager.GetScripts()
}

// GetScript returns a saved script by ID
func (a *App) GetScript(id string) *state.Script {
	if a.stateManager == nil {
		return nil
	}
	saved, ok := a.stateManager.GetScript(id)
	if !ok {
		return nil
	}
	return &saved
}

// CreateScript saves a new script; language is detected when not set
func (a *App) CreateScript(s state.Script) (*state.Script, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}
	if s.Language == "" {
		s.Language = string(script.ResolveFile(s.Name, s.Content))
	}
	return a.stateManager.CreateScript(s)
}

// UpdateScript updates a saved script
func (a *App) UpdateScript(id string, s state.Script) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	if s.Language == "" {
		s.Language = string(script.ResolveFile(s.Name, s.Content))
	}
	return a.stateManager.UpdateScript(id, s)
}

// DeleteScript removes a saved script
func (a *App) DeleteScript(id string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.DeleteScript(id)
}

// ToggleScriptPinned toggles the pinned flag on a script
func (a *App) ToggleScriptPinned(id string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.ToggleScriptPinned(id)
}

// DetectScriptLanguage classifies script text, preferring the filename
// extension when one is given
func (a *App) DetectScriptLanguage(name, content string) string {
	return string(script.ResolveFile(name, content))
}

// TokenizeScript splits script text into classified tokens
func (a *App) TokenizeScript(content, language string) []script.Token {
	return script.Tokenize(content, script.Language(language))
}

// HighlightScript renders script text as HTML with style class spans
func (a *App) HighlightScript(content, language string) string {
	return script.Highlight(content, script.Language(language))
}

// GetHighlightClasses returns the token kind to CSS class mapping
func (a *App) GetHighlightClasses() map[script.TokenKind]string {
	return script.StyleClasses()
}

// ScanScriptFolder scans a directory for importable script files
func (a *App) ScanScriptFolder(dir string) ([]script.ImportedScript, error) {
	if a.scriptImporter == nil {
		return nil, fmt.Errorf("importer not initialized")
	}
	return a.scriptImporter.ScanDirectory(dir)
}

// ImportScripts adds scanned scripts to the library, returning how many
// were created
func (a *App) ImportScripts(scripts []script.ImportedScript) (int, error) {
	if a.stateManager == nil {
		return 0, fmt.Errorf("state manager not initialized")
	}

	created := 0
	for _, imp := range scripts {
		_, err := a.stateManager.CreateScript(state.Script{
			Name:     imp.Name,
			Language: string(imp.Language),
			Content:  imp.Content,
		})
		if err != nil {
			logging.Warn("Failed to import script", "name", imp.Name, "error", err)
			continue
		}
		created++
	}

	logging.Info("Scripts imported", "created", created)
	return created, nil
}

// ============================================
// TOTP Methods
// ============================================

// GetTotpEntries returns all stored code generators
func (a *App) GetTotpEntries() []state.TotpEntry {
	if a.stateManager == nil {
		return []state.TotpEntry{}
	}
	return a.stateManager.GetTotpEntries()
}

// CreateTotpEntry validates the secret and stores a new generator
func (a *App) CreateTotpEntry(entry state.TotpEntry) (*state.TotpEntry, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}
	if err := totp.Validate(entry.Secret); err != nil {
		return nil, fmt.Errorf("invalid secret: %w", err)
	}
	return a.stateManager.CreateTotpEntry(entry)
}

// DeleteTotpEntry removes a stored generator
func (a *App) DeleteTotpEntry(id string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}
	return a.stateManager.DeleteTotpEntry(id)
}

// TotpCode is a generated one-time code with its remaining validity
type TotpCode struct {
	Code             string `json:"code"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

// GetTotpCode generates the current code for a stored entry
func (a *App) GetTotpCode(id string) (*TotpCode, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}

	entry, ok := a.stateManager.GetTotpEntry(id)
	if !ok {
		return nil, fmt.Errorf("totp entry not found: %s", id)
	}

	code, remaining, err := totp.Now(entry.Secret, entry.Digits, entry.Period)
	if err != nil {
		return nil, err
	}
	return &TotpCode{Code: code, SecondsRemaining: remaining}, nil
}

// ============================================
// Wake-on-LAN Methods
// ============================================

// WakeHost sends a Wake-on-LAN magic packet to a host's MAC address
func (a *App) WakeHost(hostID string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return fmt.Errorf("host not found: %s", hostID)
	}
	if host.MACAddress == "" {
		return fmt.Errorf("host %s has no MAC address configured", host.Name)
	}

	if err := wol.WakeAddr(host.MACAddress, host.WOLBroadcast); err != nil {
		return fmt.Errorf("wake failed: %w", err)
	}

	logging.Info("Wake-on-LAN packet sent", "host", host.Name)
	return nil
}

// ============================================
// RDP Methods
// ============================================

// rdpOptionsForHost merges per-host RDP settings with global defaults
func (a *App) rdpOptionsForHost(host *state.Host) rdp.Options {
	settings := a.getSettings()
	opts := rdp.Options{
		Host:      host.Hostname,
		Port:      host.Port,
		Username:  host.Username,
		Password:  host.Password,
		Client:    settings.RDPClient,
		ExtraArgs: settings.RDPExtraArgs,
	}
	if host.RDP != nil {
		opts.Fullscreen = host.RDP.Fullscreen
		opts.Width = host.RDP.Width
		opts.Height = host.RDP.Height
		if host.RDP.ExtraArgs != "" {
			opts.ExtraArgs = host.RDP.ExtraArgs
		}
	}
	return opts
}

// ConnectRDP launches the external RDP client against a stored host
func (a *App) ConnectRDP(hostID string) (*rdp.SessionInfo, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return nil, fmt.Errorf("host not found: %s", hostID)
	}
	if host.Protocol != state.ProtocolRDP {
		return nil, fmt.Errorf("host %s is not an RDP host", host.Name)
	}

	info, err := a.rdpLauncher.Launch(hostID, host.Name, a.rdpOptionsForHost(host))
	if err != nil {
		return nil, err
	}

	a.stateManager.TouchHostConnected(hostID)
	return info, nil
}

// GetRDPSessions lists RDP client processes launched by the app
func (a *App) GetRDPSessions() []rdp.SessionInfo {
	if a.rdpLauncher == nil {
		return []rdp.SessionInfo{}
	}
	return a.rdpLauncher.Sessions()
}

// CloseRDPSession terminates a launched RDP client
func (a *App) CloseRDPSession(id string) error {
	if a.rdpLauncher == nil {
		return fmt.Errorf("rdp launcher not initialized")
	}
	return a.rdpLauncher.Close(id)
}

// ============================================
// Diagnostics Methods
// ============================================

// DiagnoseHost runs stepwise connection diagnostics appropriate for the
// host's protocol
func (a *App) DiagnoseHost(hostID string) (*diag.Report, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return nil, fmt.Errorf("host not found: %s", hostID)
	}

	timeout := time.Duration(a.getSettings().ConnectTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(a.ctx, 4*timeout)
	defer cancel()

	switch host.Protocol {
	case state.ProtocolSSH:
		return sshx.Diagnose(ctx, a.sshConfigForHost(host)), nil
	case state.ProtocolRDP:
		return rdp.Diagnose(ctx, a.rdpOptionsForHost(host), timeout), nil
	default:
		report := diag.NewReport(host.Hostname)
		if addrs := diag.ResolveHost(ctx, report, host.Hostname); addrs != nil {
			if conn := diag.ProbeTCP(ctx, report, fmt.Sprintf("%s:%d", host.Hostname, host.Port), timeout); conn != nil {
				conn.Close()
			}
		}
		return report, nil
	}
}

// ============================================
// HTTP Host Methods
// ============================================

// OpenHostURL opens an HTTP host's URL in the system browser
func (a *App) OpenHostURL(hostID string) error {
	if a.stateManager == nil {
		return fmt.Errorf("state manager not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return fmt.Errorf("host not found: %s", hostID)
	}

	url := host.URL
	if url == "" {
		if host.Protocol != state.ProtocolHTTP {
			return fmt.Errorf("host %s has no URL configured", host.Name)
		}
		scheme := "https"
		if host.Port == 80 {
			scheme = "http"
		}
		url = fmt.Sprintf("%s://%s:%d", scheme, host.Hostname, host.Port)
	}

	runtime.BrowserOpenURL(a.ctx, url)
	a.stateManager.TouchHostConnected(hostID)
	return nil
}

// CheckHostHTTP issues a HEAD request against an HTTP host and returns the
// status code
func (a *App) CheckHostHTTP(hostID string) (int, error) {
	if a.stateManager == nil {
		return 0, fmt.Errorf("state manager not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return 0, fmt.Errorf("host not found: %s", hostID)
	}

	url := host.URL
	if url == "" {
		url = fmt.Sprintf("https://%s:%d", host.Hostname, host.Port)
	}

	timeout := time.Duration(a.getSettings().ConnectTimeoutSeconds) * time.Second
	client := &http.Client{Timeout: timeout}
	resp, err := client.Head(url)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// ============================================
// Metrics Methods
// ============================================

// GetMetricsSnapshot returns the most recent local system metrics sample
func (a *App) GetMetricsSnapshot() *metrics.Snapshot {
	if a.metricsPoller == nil {
		return nil
	}
	return a.metricsPoller.Last()
}

// ============================================
// Reachability Methods
// ============================================

// GetHostStatuses returns the latest reachability sweep results
func (a *App) GetHostStatuses() map[string]netwatch.HostStatus {
	if a.netWatcher == nil {
		return map[string]netwatch.HostStatus{}
	}
	return a.netWatcher.Statuses()
}

// GetHostStatus returns reachability for one host
func (a *App) GetHostStatus(hostID string) netwatch.HostStatus {
	if a.netWatcher == nil {
		return netwatch.HostStatus{HostID: hostID, Status: netwatch.StatusUnknown}
	}
	return a.netWatcher.Status(hostID)
}

// ProbeHost runs an immediate reachability probe against a host
func (a *App) ProbeHost(hostID string) (netwatch.HostStatus, error) {
	if a.stateManager == nil {
		return netwatch.HostStatus{}, fmt.Errorf("state manager not initialized")
	}

	host := a.stateManager.GetHost(hostID)
	if host == nil {
		return netwatch.HostStatus{}, fmt.Errorf("host not found: %s", hostID)
	}

	target := netwatch.Target{ID: host.ID, Hostname: host.Hostname, Port: host.Port}
	return netwatch.Probe(target, netwatch.DefaultProbeTimeout), nil
}

// ============================================
// Docker Methods
// ============================================

// IsDockerAvailable reports whether the Docker daemon is reachable
func (a *App) IsDockerAvailable() bool {
	if a.dockerManager == nil {
		return false
	}
	return a.dockerManager.IsAvailable()
}

// GetContainers lists containers (running only unless all is set)
func (a *App) GetContainers(all bool) ([]docker.Container, error) {
	if a.dockerManager == nil {
		return nil, fmt.Errorf("docker not available")
	}
	return a.dockerManager.ListContainers(all)
}

// FindContainers lists containers whose name matches the filter
func (a *App) FindContainers(name string) ([]docker.Container, error) {
	if a.dockerManager == nil {
		return nil, fmt.Errorf("docker not available")
	}
	return a.dockerManager.FindContainers(name)
}

// StartContainer starts a stopped container
func (a *App) StartContainer(id string) error {
	if a.dockerManager == nil {
		return fmt.Errorf("docker not available")
	}
	return a.dockerManager.StartContainer(id)
}

// StopContainer stops a running container
func (a *App) StopContainer(id string) error {
	if a.dockerManager == nil {
		return fmt.Errorf("docker not available")
	}
	return a.dockerManager.StopContainer(id)
}

// RestartContainer restarts a container
func (a *App) RestartContainer(id string) error {
	if a.dockerManager == nil {
		return fmt.Errorf("docker not available")
	}
	return a.dockerManager.RestartContainer(id)
}

// GetContainerLogs returns the last lines of a container's logs
func (a *App) GetContainerLogs(id string, tail int) (string, error) {
	if a.dockerManager == nil {
		return "", fmt.Errorf("docker not available")
	}
	return a.dockerManager.ContainerLogs(id, tail)
}

// ============================================
// Logging Methods
// ============================================

// Log receives log messages from the frontend and routes them through the centralized logger
func (a *App) Log(level, module, message string, data map[string]interface{}) {
	logging.LogFromFrontend(logging.LogEntry{
		Level:   level,
		Module:  module,
		Message: message,
		Data:    data,
	})
}

// IsDevMode returns whether the application is running in development mode
func (a *App) IsDevMode() bool {
	return logging.IsDevMode()
}

// GetRecentLogs returns the newest captured log entries for the in-app viewer
func (a *App) GetRecentLogs(n int) []logging.CapturedEntry {
	capture := logging.Capture()
	if capture == nil {
		return []logging.CapturedEntry{}
	}
	return capture.Recent(n)
}

// ClearLogs empties the captured log buffer
func (a *App) ClearLogs() {
	if capture := logging.Capture(); capture != nil {
		capture.Clear()
	}
}

// ============================================
// Remote Access Methods
// ============================================

// RemoteAccessStatus represents the status of remote access
type RemoteAccessStatus struct {
	Enabled          bool                `json:"enabled"`
	SavedDevicesOnly bool                `json:"savedDevicesOnly"`
	Running          bool                `json:"running"`
	Port             int                 `json:"port"`
	LocalURL         string              `json:"localUrl"`
	PublicURL        string              `json:"publicUrl"`
	Token            string              `json:"token"`
	ClientCount      int                 `json:"clientCount"`
	Clients          []remote.ClientInfo `json:"clients"`
}

// StartRemoteAccess starts the remote access server with optional ngrok tunnel
func (a *App) StartRemoteAccess(config remote.Config) (*RemoteAccessStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Validate config (logs warnings if defaults applied)
	if validationErr := config.Validate(); validationErr != nil {
		logging.Warn("Remote config validation warnings", "warnings", validationErr.Error())
	}

	// Initialize remote server if needed
	if a.remoteServer == nil {
		a.remoteServer = remote.NewServer(a.sessionManager)
		a.remoteServer.SetHandler(&remoteHandler{app: a})
		a.setupApprovedClientsCallback()
		a.loadApprovedClients()
	}

	var token string
	var localURL string
	var publicURL string

	// Generate token only if not using saved devices only mode
	if config.SavedDevicesOnly {
		approvedClients := a.GetApprovedClients()
		if len(approvedClients) == 0 {
			return nil, fmt.Errorf("no saved devices configured - add a device first")
		}
		token = ""
		localURL = fmt.Sprintf("http://localhost:%d/", config.Port)
	} else {
		tokenDuration := time.Duration(config.TokenExpiry) * time.Hour
		var err error
		token, err = a.remoteServer.GenerateToken(tokenDuration)
		if err != nil {
			return nil, fmt.Errorf("failed to generate access token: %w", err)
		}
		localURL = fmt.Sprintf("http://localhost:%d/?token=%s", config.Port, token)
	}

	// Start server in goroutine
	go func() {
		if err := a.remoteServer.Start(config.Port); err != nil {
			logging.Error("Remote server error", "error", err)
		}
	}()

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)

	// Start ngrok tunnel if requested
	if config.Enabled {
		if a.ngrokTunnel == nil {
			a.ngrokTunnel = remote.NewNgrokTunnel()
		}

		ngrokURL, err := a.ngrokTunnel.Start(config)
		if err != nil {
			logging.Warn("Failed to start ngrok tunnel", "error", err)
		} else {
			if config.SavedDevicesOnly {
				publicURL = ngrokURL + "/"
			} else {
				publicURL = ngrokURL + "/?token=" + token
			}
		}
	}

	logging.Info("Remote access started",
		"port", config.Port,
		"savedDevicesOnly", config.SavedDevicesOnly,
		"localUrl", localURL,
		"publicUrl", publicURL,
	)

	return &RemoteAccessStatus{
		Enabled:          config.Enabled,
		SavedDevicesOnly: config.SavedDevicesOnly,
		Running:          true,
		Port:             config.Port,
		LocalURL:         localURL,
		PublicURL:        publicURL,
		Token:            token,
		ClientCount:      0,
		Clients:          []remote.ClientInfo{},
	}, nil
}

// StopRemoteAccess stops the remote access server and ngrok tunnel
func (a *App) StopRemoteAccess() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var lastErr error

	if a.ngrokTunnel != nil {
		if err := a.ngrokTunnel.Stop(); err != nil {
			logging.Error("Failed to stop ngrok", "error", err)
			lastErr = err
		}
	}

	if a.remoteServer != nil {
		if err := a.remoteServer.Stop(); err != nil {
			logging.Error("Failed to stop remote server", "error", err)
			lastErr = err
		}
	}

	logging.Info("Remote access stopped")
	return lastErr
}

// GetRemoteAccessStatus returns the current remote access status
func (a *App) GetRemoteAccessStatus() *RemoteAccessStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()

	status := &RemoteAccessStatus{
		Port:    9090,
		Clients: []remote.ClientInfo{},
	}

	if a.remoteServer != nil && a.remoteServer.IsRunning() {
		status.Running = true
		status.Port = a.remoteServer.GetPort()
		status.Token = a.remoteServer.GetToken()
		status.LocalURL = fmt.Sprintf("http://localhost:%d/?token=%s", status.Port, status.Token)
		status.Clients = a.remoteServer.GetClients()
		status.ClientCount = len(status.Clients)

		if a.ngrokTunnel != nil && a.ngrokTunnel.IsRunning() {
			status.Enabled = true
			status.PublicURL = a.ngrokTunnel.GetPublicURL() + "/?token=" + status.Token
		}
	}

	return status
}

// GetRemoteAccessClients returns list of connected remote clients
func (a *App) GetRemoteAccessClients() []remote.ClientInfo {
	if a.remoteServer == nil {
		return []remote.ClientInfo{}
	}
	return a.remoteServer.GetClients()
}

// RefreshNgrokURL refreshes the ngrok public URL
func (a *App) RefreshNgrokURL() (string, error) {
	if a.ngrokTunnel == nil || !a.ngrokTunnel.IsRunning() {
		return "", fmt.Errorf("ngrok tunnel not running")
	}
	return a.ngrokTunnel.RefreshURL()
}

// ============================================
// Approved Clients (Permanent Tokens)
// ============================================

// AddApprovedClient creates a new permanent token for an approved device
func (a *App) AddApprovedClient(name string) (*remote.ApprovedClient, error) {
	if a.stateManager == nil {
		return nil, fmt.Errorf("state manager not initialized")
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	client := &remote.ApprovedClient{
		Token:     hex.EncodeToString(tokenBytes),
		Name:      name,
		CreatedAt: now,
		LastUsed:  now,
	}

	stateClients := a.stateManager.GetApprovedClients()
	stateClients = append(stateClients, &state.ApprovedRemoteClient{
		Token:     client.Token,
		Name:      client.Name,
		CreatedAt: client.CreatedAt,
		LastUsed:  client.LastUsed,
	})
	a.stateManager.SetApprovedClients(stateClients)

	// Also push to the server when it is running
	if a.remoteServer != nil {
		a.remoteServer.SetApprovedClients(a.getRemoteApprovedClients())
	}

	logging.Info("Approved device added", "name", name)
	return client, nil
}

// RemoveApprovedClient removes an approved device by token
func (a *App) RemoveApprovedClient(token string) {
	if a.stateManager == nil {
		return
	}

	stateClients := a.stateManager.GetApprovedClients()
	filtered := make([]*state.ApprovedRemoteClient, 0, len(stateClients))
	for _, c := range stateClients {
		if c.Token != token {
			filtered = append(filtered, c)
		}
	}
	a.stateManager.SetApprovedClients(filtered)

	if a.remoteServer != nil {
		a.remoteServer.SetApprovedClients(a.getRemoteApprovedClients())
	}

	logging.Info("Approved device removed")
}

// GetApprovedClients returns all approved devices from persistent state
func (a *App) GetApprovedClients() []*remote.ApprovedClient {
	if a.stateManager == nil {
		return []*remote.ApprovedClient{}
	}
	return a.getRemoteApprovedClients()
}

// getRemoteApprovedClients converts state clients to remote clients
func (a *App) getRemoteApprovedClients() []*remote.ApprovedClient {
	stateClients := a.stateManager.GetApprovedClients()
	result := make([]*remote.ApprovedClient, len(stateClients))
	for i, c := range stateClients {
		result[i] = &remote.ApprovedClient{
			Token:     c.Token,
			Name:      c.Name,
			CreatedAt: c.CreatedAt,
			LastUsed:  c.LastUsed,
		}
	}
	return result
}

// setupApprovedClientsCallback syncs server-side changes (new tokens,
// lastUsed updates) back into persistent state
func (a *App) setupApprovedClientsCallback() {
	if a.remoteServer == nil {
		return
	}
	a.remoteServer.SetApprovedChangeCallback(func() {
		remoteClients := a.remoteServer.GetApprovedClients()
		stateClients := make([]*state.ApprovedRemoteClient, len(remoteClients))
		for i, c := range remoteClients {
			stateClients[i] = &state.ApprovedRemoteClient{
				Token:     c.Token,
				Name:      c.Name,
				CreatedAt: c.CreatedAt,
				LastUsed:  c.LastUsed,
			}
		}
		a.stateManager.SetApprovedClients(stateClients)
	})
}

// loadApprovedClients loads approved devices from state into the server
func (a *App) loadApprovedClients() {
	if a.remoteServer == nil {
		return
	}
	a.remoteServer.SetApprovedClients(a.getRemoteApprovedClients())
}

// ============================================
// Handler Implementation for Remote Access
// ============================================

// RemoteHosts implements remote.Handler
func (a *App) RemoteHosts() []remote.HostInfo {
	if a.stateManager == nil {
		return []remote.HostInfo{}
	}

	hosts := a.stateManager.GetHosts()
	result := make([]remote.HostInfo, 0, len(hosts))
	for _, h := range hosts {
		status := netwatch.StatusUnknown
		if a.netWatcher != nil {
			status = a.netWatcher.Status(h.ID).Status
		}
		result = append(result, remote.HostInfo{
			ID:       h.ID,
			Name:     h.Name,
			Protocol: h.Protocol,
			Hostname: h.Hostname,
			Port:     h.Port,
			Group:    h.Group,
			Color:    h.Color,
			Icon:     h.Icon,
			Status:   status,
		})
	}
	return result
}

// RemoteCreateSession implements remote.Handler; remote clients may only
// open SSH sessions to stored hosts
func (a *App) RemoteCreateSession(hostID, name string) (*session.Info, error) {
	return a.ConnectSSH(hostID, name)
}

// RemoteCloseSession implements remote.Handler
func (a *App) RemoteCloseSession(sessionID string) error {
	return a.CloseSession(sessionID)
}

// remoteHandler wraps App to implement remote.Handler
type remoteHandler struct {
	app *App
}

func (h *remoteHandler) RemoteHosts() []remote.HostInfo {
	return h.app.RemoteHosts()
}

func (h *remoteHandler) RemoteCreateSession(hostID, name string) (*session.Info, error) {
	return h.app.RemoteCreateSession(hostID, name)
}

func (h *remoteHandler) RemoteCloseSession(sessionID string) error {
	return h.app.RemoteCloseSession(sessionID)
}
