package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Default colors and icons for hosts
var DefaultColors = []string{
	"#6366f1", "#8b5cf6", "#ec4899", "#ef4444",
	"#f97316", "#eab308", "#22c55e", "#14b8a6",
	"#06b6d4", "#3b82f6",
}

var DefaultIcons = []string{
	"🖥️", "🗄️", "☁️", "🐧", "🪟",
	"📡", "🔐", "🌐", "⚙️", "🧰",
}

// Manager manages the centralized application state
type Manager struct {
	ctx       context.Context
	state     *AppState
	statePath string
	mu        sync.RWMutex

	// Debounced save
	saveTimer *time.Timer
	saveMu    sync.Mutex
}

// NewManager creates a new state manager
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(homeDir, ".hostdeck")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}

	m := &Manager{
		state:     NewAppState(),
		statePath: filepath.Join(configDir, "state.json"),
	}

	// Load existing state or migrate from old format
	if err := m.load(); err != nil {
		return nil, err
	}

	return m, nil
}

// SetContext sets the Wails context for event emission
func (m *Manager) SetContext(ctx context.Context) {
	m.ctx = ctx
}

func (m *Manager) load() error {
	// Try to load current state format
	data, err := os.ReadFile(m.statePath)
	if err == nil {
		var state AppState
		if err := json.Unmarshal(data, &state); err == nil {
			m.state = &state
			// Ensure maps and slices are initialized
			if m.state.Hosts == nil {
				m.state.Hosts = make(map[string]*Host)
			}
			if m.state.Scripts == nil {
				m.state.Scripts = []Script{}
			}
			if m.state.TotpEntries == nil {
				m.state.TotpEntries = []TotpEntry{}
			}
			if m.state.Settings == nil {
				m.state.Settings = DefaultSettings()
			}
			m.state.Settings.normalize()
			for _, h := range m.state.Hosts {
				if h.Tags == nil {
					h.Tags = []string{}
				}
				if h.Protocol == "" {
					h.Protocol = ProtocolSSH
				}
			}
			return nil
		}
	}

	// Try to migrate from the old hosts.json format
	homeDir, _ := os.UserHomeDir()
	oldPath := filepath.Join(homeDir, ".hostdeck", "hosts.json")
	if err := m.migrateFromOldFormat(oldPath); err == nil {
		return m.saveImmediate()
	}

	return nil
}

func (m *Manager) migrateFromOldFormat(oldPath string) error {
	data, err := os.ReadFile(oldPath)
	if err != nil {
		return err
	}

	// Old format: flat array of hosts
	type OldHost struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Hostname   string    `json:"hostname"`
		Port       int       `json:"port"`
		Username   string    `json:"username"`
		Group      string    `json:"group"`
		MACAddress string    `json:"macAddress"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	var oldHosts []OldHost
	if err := json.Unmarshal(data, &oldHosts); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = NewAppState()
	for i, oh := range oldHosts {
		id := oh.ID
		if id == "" {
			id = uuid.New().String()
		}
		host := NewHost(id, oh.Name, oh.Hostname, oh.Port, ProtocolSSH,
			DefaultColors[i%len(DefaultColors)], DefaultIcons[i%len(DefaultIcons)])
		host.Username = oh.Username
		host.Group = oh.Group
		host.MACAddress = oh.MACAddress
		if !oh.CreatedAt.IsZero() {
			host.CreatedAt = oh.CreatedAt
		}
		m.state.Hosts[id] = host
	}

	return nil
}

func (m *Manager) saveImmediate() error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.state, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		return err
	}

	return os.WriteFile(m.statePath, data, 0600)
}

// Save triggers a debounced save
func (m *Manager) Save() {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(500*time.Millisecond, func() {
		m.saveImmediate()
	})
}

// SaveSync immediately saves state (for shutdown)
func (m *Manager) SaveSync() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	m.saveMu.Unlock()

	return m.saveImmediate()
}

// GetState returns the full app state
func (m *Manager) GetState() *AppState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ============================================
// Host operations
// ============================================

// GetActiveHostID returns the active host ID
func (m *Manager) GetActiveHostID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ActiveHost
}

// SetActiveHost changes the active host
func (m *Manager) SetActiveHost(hostID string) {
	m.mu.Lock()
	m.state.ActiveHost = hostID
	m.mu.Unlock()

	m.Save()

	if m.ctx != nil {
		m.mu.RLock()
		host := m.state.Hosts[hostID]
		m.mu.RUnlock()

		runtime.EventsEmit(m.ctx, "state:activeHost:changed", map[string]interface{}{
			"hostId": hostID,
			"host":   host,
		})
	}
}

// GetHosts returns all hosts sorted by group, then name
func (m *Manager) GetHosts() []*Host {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hosts := make([]*Host, 0, len(m.state.Hosts))
	for _, h := range m.state.Hosts {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool {
		if hosts[i].Group != hosts[j].Group {
			return hosts[i].Group < hosts[j].Group
		}
		return strings.ToLower(hosts[i].Name) < strings.ToLower(hosts[j].Name)
	})
	return hosts
}

// GetHost returns a host by ID
func (m *Manager) GetHost(id string) *Host {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Hosts[id]
}

// FindHostByName returns the host with the given name, or nil
func (m *Manager) FindHostByName(name string) *Host {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.state.Hosts {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// CreateHost creates a new host entry
func (m *Manager) CreateHost(name, hostname string, port int, protocol string) (*Host, error) {
	if name == "" {
		name = hostname
	}
	if name == "" {
		return nil, fmt.Errorf("host needs a name or hostname")
	}

	id := uuid.New().String()

	m.mu.Lock()
	colorIdx := len(m.state.Hosts) % len(DefaultColors)
	iconIdx := len(m.state.Hosts) % len(DefaultIcons)
	host := NewHost(id, name, hostname, port, protocol, DefaultColors[colorIdx], DefaultIcons[iconIdx])
	m.state.Hosts[id] = host
	m.mu.Unlock()

	m.Save()

	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, "state:host:created", host)
	}

	return host, nil
}

// UpdateHost updates a host's stored fields
func (m *Manager) UpdateHost(host *Host) error {
	m.mu.Lock()
	existing, ok := m.state.Hosts[host.ID]
	if !ok {
		m.mu.Unlock()
		return os.ErrNotExist
	}

	// Update allowed fields, keep identity and creation time
	existing.Name = host.Name
	existing.Hostname = host.Hostname
	existing.Port = host.Port
	existing.Protocol = host.Protocol
	existing.Username = host.Username
	existing.Password = host.Password
	existing.KeyPath = host.KeyPath
	existing.KeyPassphrase = host.KeyPassphrase
	existing.URL = host.URL
	existing.MACAddress = host.MACAddress
	existing.RDP = host.RDP
	existing.TotpID = host.TotpID
	existing.Group = host.Group
	existing.Color = host.Color
	existing.Icon = host.Icon
	existing.Tags = host.Tags
	existing.Notes = host.Notes
	if existing.Tags == nil {
		existing.Tags = []string{}
	}
	m.mu.Unlock()

	m.Save()

	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, "state:host:updated", host)
	}

	return nil
}

// DeleteHost deletes a host
func (m *Manager) DeleteHost(id string) error {
	m.mu.Lock()
	delete(m.state.Hosts, id)
	if m.state.ActiveHost == id {
		m.state.ActiveHost = ""
	}
	m.mu.Unlock()

	m.Save()

	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, "state:host:deleted", map[string]string{"hostId": id})
	}

	return nil
}

// TouchHostConnected records a successful connection to a host
func (m *Manager) TouchHostConnected(id string) {
	m.mu.Lock()
	if h, ok := m.state.Hosts[id]; ok {
		h.LastConnected = time.Now()
	}
	m.mu.Unlock()

	m.Save()
}

// UpsertHosts adds hosts in bulk, matching existing entries by name.
// Returns how many entries were newly created. Used by the ssh_config and
// inventory importers.
func (m *Manager) UpsertHosts(hosts []*Host) int {
	created := 0

	m.mu.Lock()
	byName := make(map[string]*Host, len(m.state.Hosts))
	for _, h := range m.state.Hosts {
		byName[h.Name] = h
	}

	for _, incoming := range hosts {
		if incoming.Name == "" {
			continue
		}
		if existing, ok := byName[incoming.Name]; ok {
			// Imports refresh connection details but never clobber
			// credentials the user typed in by hand.
			existing.Hostname = incoming.Hostname
			if incoming.Port != 0 {
				existing.Port = incoming.Port
			}
			if incoming.Username != "" {
				existing.Username = incoming.Username
			}
			if incoming.KeyPath != "" {
				existing.KeyPath = incoming.KeyPath
			}
			if incoming.Group != "" {
				existing.Group = incoming.Group
			}
			continue
		}

		id := incoming.ID
		if id == "" {
			id = uuid.New().String()
		}
		incoming.ID = id
		if incoming.Color == "" {
			incoming.Color = DefaultColors[len(m.state.Hosts)%len(DefaultColors)]
		}
		if incoming.Icon == "" {
			incoming.Icon = DefaultIcons[len(m.state.Hosts)%len(DefaultIcons)]
		}
		if incoming.Tags == nil {
			incoming.Tags = []string{}
		}
		if incoming.CreatedAt.IsZero() {
			incoming.CreatedAt = time.Now()
		}
		m.state.Hosts[id] = incoming
		byName[incoming.Name] = incoming
		created++
	}
	m.mu.Unlock()

	m.Save()

	if m.ctx != nil && created > 0 {
		runtime.EventsEmit(m.ctx, "state:hosts:imported", map[string]int{"created": created})
	}

	return created
}

// ============================================
// Script operations
// ============================================

// GetScripts returns all scripts in the library
func (m *Manager) GetScripts() []Script {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state.Scripts == nil {
		return []Script{}
	}

	return m.state.Scripts
}

// GetScript returns a script by ID
func (m *Manager) GetScript(id string) (Script, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.state.Scripts {
		if s.ID == id {
			return s, true
		}
	}
	return Script{}, false
}

// CreateScript adds a script to the library
func (m *Manager) CreateScript(script Script) (*Script, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Scripts == nil {
		m.state.Scripts = []Script{}
	}

	script.ID = uuid.New().String()
	now := time.Now()
	script.CreatedAt = now
	script.UpdatedAt = now
	if script.Tags == nil {
		script.Tags = []string{}
	}

	m.state.Scripts = append(m.state.Scripts, script)

	go m.Save()

	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, "state:script:created", script)
	}

	return &script, nil
}

// UpdateScript updates an existing script
func (m *Manager) UpdateScript(scriptID string, script Script) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.state.Scripts {
		if s.ID == scriptID {
			script.ID = scriptID
			script.CreatedAt = s.CreatedAt
			script.UsageCount = s.UsageCount
			script.UpdatedAt = time.Now()
			if script.Tags == nil {
				script.Tags = s.Tags
			}
			m.state.Scripts[i] = script
			go m.Save()

			if m.ctx != nil {
				runtime.EventsEmit(m.ctx, "state:script:updated", script)
			}
			return nil
		}
	}

	return os.ErrNotExist
}

// DeleteScript deletes a script from the library
func (m *Manager) DeleteScript(scriptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.state.Scripts {
		if s.ID == scriptID {
			m.state.Scripts = append(m.state.Scripts[:i], m.state.Scripts[i+1:]...)
			go m.Save()

			if m.ctx != nil {
				runtime.EventsEmit(m.ctx, "state:script:deleted", map[string]string{"scriptId": scriptID})
			}
			return nil
		}
	}

	return os.ErrNotExist
}

// IncrementScriptUsage increments the usage count for a script
func (m *Manager) IncrementScriptUsage(scriptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.state.Scripts {
		if s.ID == scriptID {
			m.state.Scripts[i].UsageCount++
			go m.Save()
			return nil
		}
	}

	return os.ErrNotExist
}

// ToggleScriptPinned toggles the pinned status of a script
func (m *Manager) ToggleScriptPinned(scriptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.state.Scripts {
		if s.ID == scriptID {
			m.state.Scripts[i].Pinned = !m.state.Scripts[i].Pinned
			m.state.Scripts[i].UpdatedAt = time.Now()
			go m.Save()
			return nil
		}
	}

	return os.ErrNotExist
}

// ============================================
// TOTP operations
// ============================================

// GetTotpEntries returns all stored TOTP entries
func (m *Manager) GetTotpEntries() []TotpEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state.TotpEntries == nil {
		return []TotpEntry{}
	}

	return m.state.TotpEntries
}

// GetTotpEntry returns a TOTP entry by ID
func (m *Manager) GetTotpEntry(id string) (TotpEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.state.TotpEntries {
		if e.ID == id {
			return e, true
		}
	}
	return TotpEntry{}, false
}

// CreateTotpEntry stores a new TOTP entry
func (m *Manager) CreateTotpEntry(entry TotpEntry) (*TotpEntry, error) {
	if entry.Secret == "" {
		return nil, fmt.Errorf("totp entry needs a secret")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.TotpEntries == nil {
		m.state.TotpEntries = []TotpEntry{}
	}

	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now()
	if entry.Digits == 0 {
		entry.Digits = 6
	}
	if entry.Period == 0 {
		entry.Period = 30
	}

	m.state.TotpEntries = append(m.state.TotpEntries, entry)

	go m.Save()

	if m.ctx != nil {
		// Never put the secret on the event bus
		runtime.EventsEmit(m.ctx, "state:totp:created", map[string]string{
			"id":   entry.ID,
			"name": entry.Name,
		})
	}

	return &entry, nil
}

// DeleteTotpEntry removes a stored TOTP entry
func (m *Manager) DeleteTotpEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.state.TotpEntries {
		if e.ID == id {
			m.state.TotpEntries = append(m.state.TotpEntries[:i], m.state.TotpEntries[i+1:]...)
			go m.Save()

			if m.ctx != nil {
				runtime.EventsEmit(m.ctx, "state:totp:deleted", map[string]string{"id": id})
			}
			return nil
		}
	}

	return os.ErrNotExist
}

// ============================================
// Approved Remote Clients
// ============================================

// GetApprovedClients returns all approved remote clients
func (m *Manager) GetApprovedClients() []*ApprovedRemoteClient {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state.ApprovedRemoteClients == nil {
		return []*ApprovedRemoteClient{}
	}

	// Return pointers to copies
	result := make([]*ApprovedRemoteClient, len(m.state.ApprovedRemoteClients))
	for i := range m.state.ApprovedRemoteClients {
		c := m.state.ApprovedRemoteClients[i]
		result[i] = &c
	}
	return result
}

// SetApprovedClients saves approved remote clients
func (m *Manager) SetApprovedClients(clients []*ApprovedRemoteClient) {
	m.mu.Lock()
	m.state.ApprovedRemoteClients = make([]ApprovedRemoteClient, len(clients))
	for i, client := range clients {
		m.state.ApprovedRemoteClients[i] = *client
	}
	m.mu.Unlock()
	m.Save()
}

// ============================================
// Settings
// ============================================

// GetSettings returns the current settings
func (m *Manager) GetSettings() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state.Settings == nil {
		return DefaultSettings()
	}
	return m.state.Settings
}

// UpdateSettings replaces the stored settings
func (m *Manager) UpdateSettings(settings *Settings) {
	if settings == nil {
		return
	}
	settings.normalize()

	m.mu.Lock()
	m.state.Settings = settings
	m.mu.Unlock()
	m.Save()

	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, "state:settings:updated", settings)
	}
}

// GetTerminalTheme returns the current terminal theme name
func (m *Manager) GetTerminalTheme() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state.Settings == nil || m.state.Settings.TerminalTheme == "" {
		return "dracula" // default theme
	}
	return m.state.Settings.TerminalTheme
}

// SetTerminalTheme sets the terminal theme for all terminals
func (m *Manager) SetTerminalTheme(themeName string) {
	m.mu.Lock()
	if m.state.Settings == nil {
		m.state.Settings = DefaultSettings()
	}
	m.state.Settings.TerminalTheme = themeName
	m.mu.Unlock()
	m.Save()

	// Emit event to notify frontend
	if m.ctx != nil {
		runtime.EventsEmit(m.ctx, "state:terminal:theme", themeName)
	}
}

// ============================================
// Window state
// ============================================

// GetWindowState returns the saved window state
func (m *Manager) GetWindowState() *WindowState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Window
}

// SetWindowState saves the window state
func (m *Manager) SetWindowState(state *WindowState) {
	m.mu.Lock()
	m.state.Window = state
	m.mu.Unlock()
	m.Save()
}
