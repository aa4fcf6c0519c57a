// Package sshx dials SSH hosts with known_hosts verification and runs
// commands on them, one host at a time or fanned out in bulk.
package sshx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultTimeout bounds connection attempts when the caller gives none
const DefaultTimeout = 10 * time.Second

// Config holds everything needed to reach one SSH host
type Config struct {
	Host          string
	Port          int
	User          string
	Password      string
	KeyPath       string
	KeyPassphrase string
	Timeout       time.Duration

	// KnownHostsPath overrides ~/.ssh/known_hosts
	KnownHostsPath string
}

// Addr returns the host:port dial address
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// ErrUnknownHostKey is returned when the server presented a key that is not
// in known_hosts yet. The UI shows the fingerprint and may call
// TrustHostKey to accept it.
type ErrUnknownHostKey struct {
	HostPort    string
	Fingerprint string
	Key         ssh.PublicKey
}

func (e *ErrUnknownHostKey) Error() string {
	return fmt.Sprintf("unknown host key for %s (%s)", e.HostPort, e.Fingerprint)
}

// ErrHostKeyMismatch is returned when the server's key contradicts a key
// already recorded in known_hosts. Unlike an unknown key this is never
// accepted silently.
type ErrHostKeyMismatch struct {
	HostPort    string
	Fingerprint string
}

func (e *ErrHostKeyMismatch) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server now presents %s", e.HostPort, e.Fingerprint)
}

// AsUnknownHostKey unwraps err into an ErrUnknownHostKey if that is what
// aborted the handshake.
func AsUnknownHostKey(err error) (*ErrUnknownHostKey, bool) {
	var unk *ErrUnknownHostKey
	if errors.As(err, &unk) {
		return unk, true
	}
	return nil, false
}

func defaultKnownHostsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".ssh", "known_hosts"), nil
}

// ensureKnownHosts makes sure the known_hosts file exists so the
// knownhosts parser has something to open on first run.
func ensureKnownHosts(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	return f.Close()
}

// HostKeyCallback returns a callback that verifies against known_hosts and
// translates failures into ErrUnknownHostKey / ErrHostKeyMismatch.
func HostKeyCallback(path string) (ssh.HostKeyCallback, error) {
	if path == "" {
		var err error
		path, err = defaultKnownHostsPath()
		if err != nil {
			return nil, err
		}
	}

	if err := ensureKnownHosts(path); err != nil {
		return nil, err
	}

	verify, err := knownhosts.New(path)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := verify(hostname, remote, key)
		if err == nil {
			return nil
		}

		var keyErr *knownhosts.KeyError
		if errors.As(err, &keyErr) {
			if len(keyErr.Want) == 0 {
				return &ErrUnknownHostKey{
					HostPort:    hostname,
					Fingerprint: ssh.FingerprintSHA256(key),
					Key:         key,
				}
			}
			return &ErrHostKeyMismatch{
				HostPort:    hostname,
				Fingerprint: ssh.FingerprintSHA256(key),
			}
		}
		return err
	}, nil
}

// TrustHostKey appends a host key to known_hosts. Called after the user
// confirms an ErrUnknownHostKey fingerprint.
func TrustHostKey(path, hostPort string, key ssh.PublicKey) error {
	if path == "" {
		var err error
		path, err = defaultKnownHostsPath()
		if err != nil {
			return err
		}
	}

	if err := ensureKnownHosts(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(knownhosts.Line([]string{hostPort}, key) + "\n")
	return err
}

// authMethods builds the auth chain: key first when configured, then
// password.
func authMethods(cfg Config) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		keyData, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading key %s: %w", cfg.KeyPath, err)
		}

		var signer ssh.Signer
		if cfg.KeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(cfg.KeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyData)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing key %s: %w", cfg.KeyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no authentication configured for %s", cfg.Addr())
	}

	return methods, nil
}

// Dial opens an authenticated SSH connection. The context covers the TCP
// dial and the handshake; the returned client is not tied to it.
func Dial(ctx context.Context, cfg Config) (*ssh.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	auths, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := HostKeyCallback(cfg.KnownHostsPath)
	if err != nil {
		return nil, err
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Addr(), err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, cfg.Addr(), clientCfg)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// RunCommand runs a single command over a fresh session on an established
// client and returns its combined output. Exit status errors come back as
// *ssh.ExitError.
func RunCommand(ctx context.Context, client *ssh.Client, command string) ([]byte, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		// Closing the session tears down the remote command
		session.Close()
		return nil, ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}
