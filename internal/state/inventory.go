package state

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Inventory is the on-disk YAML format for exchanging host lists with other
// tools and installs.
type Inventory struct {
	Hosts []InventoryHost `yaml:"hosts"`
}

// InventoryHost is one host entry in an inventory file. Credentials other
// than a key path are deliberately not part of the format.
type InventoryHost struct {
	Name     string   `yaml:"name"`
	Hostname string   `yaml:"hostname"`
	Port     int      `yaml:"port,omitempty"`
	Protocol string   `yaml:"protocol,omitempty"`
	Username string   `yaml:"username,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
	URL      string   `yaml:"url,omitempty"`
	MAC      string   `yaml:"mac,omitempty"`
	Group    string   `yaml:"group,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
	Notes    string   `yaml:"notes,omitempty"`
}

// ExportInventory writes all hosts to a YAML inventory file
func (m *Manager) ExportInventory(path string) error {
	hosts := m.GetHosts()

	inv := Inventory{Hosts: make([]InventoryHost, 0, len(hosts))}
	for _, h := range hosts {
		inv.Hosts = append(inv.Hosts, InventoryHost{
			Name:     h.Name,
			Hostname: h.Hostname,
			Port:     h.Port,
			Protocol: h.Protocol,
			Username: h.Username,
			KeyPath:  h.KeyPath,
			URL:      h.URL,
			MAC:      h.MACAddress,
			Group:    h.Group,
			Tags:     h.Tags,
			Notes:    h.Notes,
		})
	}

	data, err := yaml.Marshal(&inv)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ImportInventory reads a YAML inventory file and merges its hosts into the
// state, matching existing hosts by name. Returns how many hosts were newly
// created.
func (m *Manager) ImportInventory(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return 0, fmt.Errorf("parsing inventory: %w", err)
	}

	hosts := make([]*Host, 0, len(inv.Hosts))
	for _, ih := range inv.Hosts {
		name := ih.Name
		if name == "" {
			name = ih.Hostname
		}
		if name == "" {
			continue
		}

		host := NewHost("", name, ih.Hostname, ih.Port, ih.Protocol, "", "")
		host.Username = ih.Username
		host.KeyPath = ih.KeyPath
		host.URL = ih.URL
		host.MACAddress = ih.MAC
		host.Group = ih.Group
		if len(ih.Tags) > 0 {
			host.Tags = ih.Tags
		}
		host.Notes = ih.Notes
		hosts = append(hosts, host)
	}

	return m.UpsertHosts(hosts), nil
}
