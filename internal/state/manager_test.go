package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{
		state:     NewAppState(),
		statePath: filepath.Join(t.TempDir(), "state.json"),
	}
}

func TestCreateHostDefaults(t *testing.T) {
	m := newTestManager(t)

	host, err := m.CreateHost("web01", "web01.example.com", 0, "")
	if err != nil {
		t.Fatalf("CreateHost: %v", err)
	}

	if host.ID == "" {
		t.Error("CreateHost did not assign an ID")
	}
	if host.Protocol != ProtocolSSH {
		t.Errorf("protocol = %q, want %q", host.Protocol, ProtocolSSH)
	}
	if host.Port != 22 {
		t.Errorf("port = %d, want 22", host.Port)
	}
	if host.Color == "" || host.Icon == "" {
		t.Error("CreateHost did not assign color/icon")
	}
	if got := m.GetHost(host.ID); got != host {
		t.Error("GetHost did not return the created host")
	}
}

func TestCreateHostRDPPort(t *testing.T) {
	m := newTestManager(t)

	host, err := m.CreateHost("win01", "win01.example.com", 0, ProtocolRDP)
	if err != nil {
		t.Fatalf("CreateHost: %v", err)
	}
	if host.Port != 3389 {
		t.Errorf("port = %d, want 3389", host.Port)
	}
}

func TestCreateHostRequiresName(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateHost("", "", 0, ""); err == nil {
		t.Error("CreateHost with no name or hostname returned nil error")
	}

	// Hostname alone is enough, it becomes the name
	host, err := m.CreateHost("", "db01.example.com", 0, "")
	if err != nil {
		t.Fatalf("CreateHost: %v", err)
	}
	if host.Name != "db01.example.com" {
		t.Errorf("name = %q, want hostname fallback", host.Name)
	}
}

func TestUpdateHostPreservesIdentity(t *testing.T) {
	m := newTestManager(t)

	host, _ := m.CreateHost("web01", "web01.example.com", 22, ProtocolSSH)
	created := host.CreatedAt

	updated := *host
	updated.Name = "web01-renamed"
	updated.Username = "deploy"
	updated.CreatedAt = time.Time{}

	if err := m.UpdateHost(&updated); err != nil {
		t.Fatalf("UpdateHost: %v", err)
	}

	got := m.GetHost(host.ID)
	if got.Name != "web01-renamed" {
		t.Errorf("name = %q, want web01-renamed", got.Name)
	}
	if got.Username != "deploy" {
		t.Errorf("username = %q, want deploy", got.Username)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("UpdateHost changed CreatedAt")
	}
}

func TestUpdateHostMissing(t *testing.T) {
	m := newTestManager(t)

	if err := m.UpdateHost(&Host{ID: "nope"}); err == nil {
		t.Error("UpdateHost on missing host returned nil error")
	}
}

func TestDeleteHostClearsActive(t *testing.T) {
	m := newTestManager(t)

	host, _ := m.CreateHost("web01", "web01.example.com", 22, ProtocolSSH)
	m.SetActiveHost(host.ID)

	if err := m.DeleteHost(host.ID); err != nil {
		t.Fatalf("DeleteHost: %v", err)
	}
	if m.GetHost(host.ID) != nil {
		t.Error("host still present after delete")
	}
	if m.GetActiveHostID() != "" {
		t.Error("active host not cleared after delete")
	}
}

func TestGetHostsSorted(t *testing.T) {
	m := newTestManager(t)

	m.CreateHost("zeta", "z.example.com", 22, ProtocolSSH)
	m.CreateHost("alpha", "a.example.com", 22, ProtocolSSH)
	b, _ := m.CreateHost("beta", "b.example.com", 22, ProtocolSSH)
	b.Group = "prod"

	hosts := m.GetHosts()
	if len(hosts) != 3 {
		t.Fatalf("GetHosts returned %d hosts, want 3", len(hosts))
	}
	// Ungrouped first (empty group sorts before "prod"), then by name
	if hosts[0].Name != "alpha" || hosts[1].Name != "zeta" || hosts[2].Name != "beta" {
		t.Errorf("order = [%s %s %s], want [alpha zeta beta]", hosts[0].Name, hosts[1].Name, hosts[2].Name)
	}
}

func TestUpsertHosts(t *testing.T) {
	m := newTestManager(t)

	existing, _ := m.CreateHost("web01", "old.example.com", 22, ProtocolSSH)
	existing.Password = "keepme"

	incoming := []*Host{
		NewHost("", "web01", "new.example.com", 2222, ProtocolSSH, "", ""),
		NewHost("", "db01", "db01.example.com", 22, ProtocolSSH, "", ""),
		NewHost("", "", "nameless.example.com", 22, ProtocolSSH, "", ""),
	}
	incoming[0].Username = "deploy"

	created := m.UpsertHosts(incoming)
	if created != 1 {
		t.Errorf("UpsertHosts created = %d, want 1", created)
	}

	got := m.GetHost(existing.ID)
	if got.Hostname != "new.example.com" || got.Port != 2222 || got.Username != "deploy" {
		t.Errorf("existing host not refreshed: %+v", got)
	}
	if got.Password != "keepme" {
		t.Error("UpsertHosts clobbered stored password")
	}
	if m.FindHostByName("db01") == nil {
		t.Error("new host db01 not created")
	}
	if m.FindHostByName("") != nil {
		t.Error("nameless host was created")
	}
}

func TestScriptLifecycle(t *testing.T) {
	m := newTestManager(t)

	created, err := m.CreateScript(Script{Name: "restart nginx", Language: "bash", Content: "sudo systemctl restart nginx"})
	if err != nil {
		t.Fatalf("CreateScript: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Error("CreateScript did not fill metadata")
	}

	if err := m.IncrementScriptUsage(created.ID); err != nil {
		t.Fatalf("IncrementScriptUsage: %v", err)
	}

	update := *created
	update.Content = "sudo systemctl restart nginx && sudo systemctl status nginx"
	if err := m.UpdateScript(created.ID, update); err != nil {
		t.Fatalf("UpdateScript: %v", err)
	}

	got, ok := m.GetScript(created.ID)
	if !ok {
		t.Fatal("script missing after update")
	}
	if got.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1 (update must not reset it)", got.UsageCount)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Error("UpdateScript changed CreatedAt")
	}

	if err := m.ToggleScriptPinned(created.ID); err != nil {
		t.Fatalf("ToggleScriptPinned: %v", err)
	}
	got, _ = m.GetScript(created.ID)
	if !got.Pinned {
		t.Error("script not pinned after toggle")
	}

	if err := m.DeleteScript(created.ID); err != nil {
		t.Fatalf("DeleteScript: %v", err)
	}
	if _, ok := m.GetScript(created.ID); ok {
		t.Error("script still present after delete")
	}
	if err := m.DeleteScript(created.ID); err == nil {
		t.Error("deleting a missing script returned nil error")
	}
}

func TestTotpEntryDefaults(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateTotpEntry(TotpEntry{Name: "no secret"}); err == nil {
		t.Error("CreateTotpEntry without secret returned nil error")
	}

	entry, err := m.CreateTotpEntry(TotpEntry{Name: "vpn", Secret: "JBSWY3DPEHPK3PXP"})
	if err != nil {
		t.Fatalf("CreateTotpEntry: %v", err)
	}
	if entry.Digits != 6 || entry.Period != 30 {
		t.Errorf("defaults = %d digits / %ds, want 6 / 30s", entry.Digits, entry.Period)
	}

	if err := m.DeleteTotpEntry(entry.ID); err != nil {
		t.Fatalf("DeleteTotpEntry: %v", err)
	}
	if entries := m.GetTotpEntries(); len(entries) != 0 {
		t.Errorf("entries after delete = %d, want 0", len(entries))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)

	host, _ := m.CreateHost("web01", "web01.example.com", 22, ProtocolSSH)
	m.CreateScript(Script{Name: "uptime", Language: "sh", Content: "uptime"})
	m.SetTerminalTheme("solarized")

	if err := m.SaveSync(); err != nil {
		t.Fatalf("SaveSync: %v", err)
	}

	reloaded := &Manager{state: NewAppState(), statePath: m.statePath}
	if err := reloaded.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := reloaded.GetHost(host.ID); got == nil || got.Name != "web01" {
		t.Errorf("reloaded host = %+v, want web01", got)
	}
	if scripts := reloaded.GetScripts(); len(scripts) != 1 || scripts[0].Name != "uptime" {
		t.Errorf("reloaded scripts = %v, want one uptime script", scripts)
	}
	if theme := reloaded.GetTerminalTheme(); theme != "solarized" {
		t.Errorf("reloaded theme = %q, want solarized", theme)
	}
}

// A state file written by an older version may lack the newer settings
// fields; loading must fill them with defaults so the pollers never get a
// zero interval.
func TestLoadFillsMissingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	partial := `{"version":1,"settings":{"theme":"dark"}}`
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("write state: %v", err)
	}

	m := &Manager{state: NewAppState(), statePath: path}
	if err := m.load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	defaults := DefaultSettings()
	got := m.GetSettings()
	if got.MetricsIntervalSeconds != defaults.MetricsIntervalSeconds {
		t.Errorf("metrics interval = %d, want %d", got.MetricsIntervalSeconds, defaults.MetricsIntervalSeconds)
	}
	if got.ReachabilityIntervalSeconds != defaults.ReachabilityIntervalSeconds {
		t.Errorf("reachability interval = %d, want %d", got.ReachabilityIntervalSeconds, defaults.ReachabilityIntervalSeconds)
	}
	if got.ConnectTimeoutSeconds != defaults.ConnectTimeoutSeconds {
		t.Errorf("connect timeout = %d, want %d", got.ConnectTimeoutSeconds, defaults.ConnectTimeoutSeconds)
	}
	if got.BulkConcurrency != defaults.BulkConcurrency {
		t.Errorf("bulk concurrency = %d, want %d", got.BulkConcurrency, defaults.BulkConcurrency)
	}
	if got.TerminalFontSize != defaults.TerminalFontSize {
		t.Errorf("terminal font size = %d, want %d", got.TerminalFontSize, defaults.TerminalFontSize)
	}
	if got.Theme != "dark" {
		t.Errorf("theme = %q, want the stored value", got.Theme)
	}
}

// UpdateSettings gets whatever the frontend sends; non-positive numbers are
// normalized rather than stored.
func TestUpdateSettingsClampsNonPositive(t *testing.T) {
	m := newTestManager(t)

	m.UpdateSettings(&Settings{Theme: "light", MetricsIntervalSeconds: 0, BulkConcurrency: -1})

	defaults := DefaultSettings()
	got := m.GetSettings()
	if got.Theme != "light" {
		t.Errorf("theme = %q, want light", got.Theme)
	}
	if got.MetricsIntervalSeconds != defaults.MetricsIntervalSeconds {
		t.Errorf("metrics interval = %d, want %d", got.MetricsIntervalSeconds, defaults.MetricsIntervalSeconds)
	}
	if got.BulkConcurrency != defaults.BulkConcurrency {
		t.Errorf("bulk concurrency = %d, want %d", got.BulkConcurrency, defaults.BulkConcurrency)
	}
}

func TestMigrateFromOldFormat(t *testing.T) {
	dir := t.TempDir()

	old := []map[string]interface{}{
		{"id": "h1", "name": "legacy01", "hostname": "legacy01.lan", "port": 22, "username": "root", "group": "lab"},
		{"name": "legacy02", "hostname": "legacy02.lan"},
	}
	data, _ := json.Marshal(old)
	oldPath := filepath.Join(dir, "hosts.json")
	if err := os.WriteFile(oldPath, data, 0600); err != nil {
		t.Fatalf("write old format: %v", err)
	}

	m := &Manager{state: NewAppState(), statePath: filepath.Join(dir, "state.json")}
	if err := m.migrateFromOldFormat(oldPath); err != nil {
		t.Fatalf("migrateFromOldFormat: %v", err)
	}

	hosts := m.GetHosts()
	if len(hosts) != 2 {
		t.Fatalf("migrated %d hosts, want 2", len(hosts))
	}

	h1 := m.GetHost("h1")
	if h1 == nil || h1.Username != "root" || h1.Group != "lab" {
		t.Errorf("migrated host h1 = %+v", h1)
	}
	if h2 := m.FindHostByName("legacy02"); h2 == nil || h2.ID == "" {
		t.Error("host without ID did not get one assigned during migration")
	}
}
