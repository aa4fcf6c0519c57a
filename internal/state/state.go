package state

import "time"

// Host protocols
const (
	ProtocolSSH  = "ssh"
	ProtocolRDP  = "rdp"
	ProtocolHTTP = "http"
)

// AppState represents the entire application state
type AppState struct {
	Version    int              `json:"version"`
	ActiveHost string           `json:"activeHostId"`
	Hosts      map[string]*Host `json:"hosts"`
	// Script library shared across all hosts
	Scripts []Script `json:"scripts"`
	// Stored TOTP generators
	TotpEntries []TotpEntry `json:"totpEntries"`
	// Approved remote clients (permanent tokens)
	ApprovedRemoteClients []ApprovedRemoteClient `json:"approvedRemoteClients"`
	// Application settings
	Settings *Settings `json:"settings"`
	// Saved window geometry
	Window *WindowState `json:"window,omitempty"`
}

// Host represents a single managed remote machine
type Host struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`

	// SSH credentials
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	KeyPath       string `json:"keyPath,omitempty"`
	KeyPassphrase string `json:"keyPassphrase,omitempty"`

	// HTTP targets open this URL instead of a terminal
	URL string `json:"url,omitempty"`

	// Wake-on-LAN; broadcast defaults to the limited broadcast address
	MACAddress   string `json:"macAddress,omitempty"`
	WOLBroadcast string `json:"wolBroadcast,omitempty"`

	// RDP launch options
	RDP *RDPOptions `json:"rdp,omitempty"`

	// Linked TOTP entry offered when connecting
	TotpID string `json:"totpId,omitempty"`

	// UI customization
	Group string   `json:"group,omitempty"`
	Color string   `json:"color"`
	Icon  string   `json:"icon"`
	Tags  []string `json:"tags"`
	Notes string   `json:"notes,omitempty"`

	// Metadata
	LastConnected time.Time `json:"lastConnected"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RDPOptions holds per-host flags for the external RDP client
type RDPOptions struct {
	Fullscreen bool   `json:"fullscreen"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	ExtraArgs  string `json:"extraArgs,omitempty"`
}

// Script is a saved script in the library
type Script struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Language    string    `json:"language"`
	Content     string    `json:"content"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	UsageCount  int       `json:"usageCount"`
	Pinned      bool      `json:"pinned"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TotpEntry is a stored one-time-code generator
type TotpEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	// Base32 shared secret
	Secret    string    `json:"secret"`
	Digits    int       `json:"digits"`
	Period    int       `json:"period"`
	CreatedAt time.Time `json:"createdAt"`
}

// ApprovedRemoteClient represents a permanently approved remote client
type ApprovedRemoteClient struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

// Settings holds user-tunable application settings
type Settings struct {
	Theme            string `json:"theme"`
	TerminalTheme    string `json:"terminalTheme"`
	TerminalFontSize int    `json:"terminalFontSize"`
	DefaultShell     string `json:"defaultShell,omitempty"`
	// External RDP client binary; empty means autodetect
	RDPClient    string `json:"rdpClient,omitempty"`
	RDPExtraArgs string `json:"rdpExtraArgs,omitempty"`
	// Connection behavior
	ConnectTimeoutSeconds int `json:"connectTimeoutSeconds"`
	BulkConcurrency       int `json:"bulkConcurrency"`
	// Background polling intervals
	MetricsIntervalSeconds      int `json:"metricsIntervalSeconds"`
	ReachabilityIntervalSeconds int `json:"reachabilityIntervalSeconds"`
}

// WindowState holds saved window geometry
type WindowState struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Maximized bool `json:"maximized"`
}

// DefaultSettings returns settings for a fresh install
func DefaultSettings() *Settings {
	return &Settings{
		Theme:                       "dark",
		TerminalTheme:               "dracula",
		TerminalFontSize:            14,
		ConnectTimeoutSeconds:       10,
		BulkConcurrency:             8,
		MetricsIntervalSeconds:      5,
		ReachabilityIntervalSeconds: 30,
	}
}

// normalize replaces missing or non-positive numeric settings with their
// defaults. Older state files and partial frontend payloads leave these at
// zero, which would feed zero intervals to the background pollers.
func (s *Settings) normalize() {
	defaults := DefaultSettings()
	if s.Theme == "" {
		s.Theme = defaults.Theme
	}
	if s.TerminalTheme == "" {
		s.TerminalTheme = defaults.TerminalTheme
	}
	if s.TerminalFontSize <= 0 {
		s.TerminalFontSize = defaults.TerminalFontSize
	}
	if s.ConnectTimeoutSeconds <= 0 {
		s.ConnectTimeoutSeconds = defaults.ConnectTimeoutSeconds
	}
	if s.BulkConcurrency <= 0 {
		s.BulkConcurrency = defaults.BulkConcurrency
	}
	if s.MetricsIntervalSeconds <= 0 {
		s.MetricsIntervalSeconds = defaults.MetricsIntervalSeconds
	}
	if s.ReachabilityIntervalSeconds <= 0 {
		s.ReachabilityIntervalSeconds = defaults.ReachabilityIntervalSeconds
	}
}

// NewAppState creates a new empty app state
func NewAppState() *AppState {
	return &AppState{
		Version:  1,
		Hosts:    make(map[string]*Host),
		Settings: DefaultSettings(),
	}
}

// NewHost creates a host with defaults filled in
func NewHost(id, name, hostname string, port int, protocol, color, icon string) *Host {
	if protocol == "" {
		protocol = ProtocolSSH
	}
	if port == 0 {
		switch protocol {
		case ProtocolRDP:
			port = 3389
		case ProtocolHTTP:
			port = 443
		default:
			port = 22
		}
	}
	return &Host{
		ID:        id,
		Name:      name,
		Hostname:  hostname,
		Port:      port,
		Protocol:  protocol,
		Color:     color,
		Icon:      icon,
		Tags:      []string{},
		CreatedAt: time.Now(),
	}
}
