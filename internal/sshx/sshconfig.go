package sshx

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kevinburke/ssh_config"
)

// ConfigHost is one concrete Host block imported from an OpenSSH client
// config file.
type ConfigHost struct {
	Alias        string `json:"alias"`
	Hostname     string `json:"hostname"`
	User         string `json:"user,omitempty"`
	Port         int    `json:"port,omitempty"`
	IdentityFile string `json:"identityFile,omitempty"`
}

// DefaultConfigPath returns ~/.ssh/config
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".ssh", "config"), nil
}

// ParseConfig reads an OpenSSH client config and returns its concrete host
// aliases. Wildcard and negated patterns are skipped since they name rules,
// not machines.
func ParseConfig(r io.Reader) ([]ConfigHost, error) {
	cfg, err := ssh_config.Decode(r)
	if err != nil {
		return nil, err
	}

	var hosts []ConfigHost
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if alias == "" || seen[alias] {
				continue
			}
			if strings.ContainsAny(alias, "*?!") {
				continue
			}
			seen[alias] = true

			ch := ConfigHost{Alias: alias}

			if v, err := cfg.Get(alias, "HostName"); err == nil && v != "" {
				ch.Hostname = v
			} else {
				ch.Hostname = alias
			}
			if v, err := cfg.Get(alias, "User"); err == nil {
				ch.User = v
			}
			if v, err := cfg.Get(alias, "Port"); err == nil && v != "" {
				if port, err := strconv.Atoi(v); err == nil {
					ch.Port = port
				}
			}
			if v, err := cfg.Get(alias, "IdentityFile"); err == nil && v != "" {
				ch.IdentityFile = expandHome(v)
			}

			hosts = append(hosts, ch)
		}
	}

	return hosts, nil
}

// LoadConfig parses the config file at path, or ~/.ssh/config when path is
// empty. A missing file is not an error; there is just nothing to import.
func LoadConfig(path string) ([]ConfigHost, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return ParseConfig(f)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

// WatchConfig watches an OpenSSH config file and invokes onChange when it
// is modified. The parent directory is watched so editors that replace the
// file on save are still seen. The returned stop function closes the
// watcher and waits for the loop to drain.
func WatchConfig(ctx context.Context, path string, onChange func()) (func() error, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		// Editors fire several events per save; collapse them
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, onChange)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	stop := func() error {
		err := watcher.Close()
		<-done
		return err
	}
	return stop, nil
}
