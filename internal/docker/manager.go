// Package docker exposes local containers as connection targets: listing
// and lifecycle for the container picker, and exec shells the session
// registry attaches to.
package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// Container is the summary shown in the connection picker
type Container struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Image   string   `json:"image"`
	State   string   `json:"state"`
	Status  string   `json:"status"`
	Ports   []string `json:"ports"`
	Created int64    `json:"created"`
}

// Manager wraps the Docker API client
type Manager struct {
	client *client.Client
}

// NewManager connects to the local Docker daemon
func NewManager() (*Manager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	return &Manager{client: cli}, nil
}

// IsAvailable checks whether the daemon answers
func (m *Manager) IsAvailable() bool {
	if m.client == nil {
		return false
	}
	_, err := m.client.Ping(context.Background())
	return err == nil
}

// ListContainers lists containers; all includes stopped ones
func (m *Manager) ListContainers(all bool) ([]Container, error) {
	containers, err := m.client.ContainerList(context.Background(), container.ListOptions{
		All: all,
	})
	if err != nil {
		return nil, err
	}

	result := make([]Container, len(containers))
	for i, c := range containers {
		result[i] = summarize(c)
	}
	return result, nil
}

// FindContainers lists containers whose name matches the given fragment
func (m *Manager) FindContainers(name string) ([]Container, error) {
	args := filters.NewArgs()
	args.Add("name", name)

	containers, err := m.client.ContainerList(context.Background(), container.ListOptions{
		All:     true,
		Filters: args,
	})
	if err != nil {
		return nil, err
	}

	result := make([]Container, len(containers))
	for i, c := range containers {
		result[i] = summarize(c)
	}
	return result, nil
}

func summarize(c types.Container) Container {
	ports := make([]string, len(c.Ports))
	for i, p := range c.Ports {
		ports[i] = formatPort(p)
	}

	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return Container{
		ID:      c.ID[:12],
		Name:    name,
		Image:   c.Image,
		State:   c.State,
		Status:  c.Status,
		Ports:   ports,
		Created: c.Created,
	}
}

func formatPort(p types.Port) string {
	proto := strings.ToLower(string(p.Type))
	if p.PublicPort > 0 {
		return fmt.Sprintf("%s:%d->%d", proto, p.PublicPort, p.PrivatePort)
	}
	return fmt.Sprintf("%s:%d", proto, p.PrivatePort)
}

// StartContainer starts a container
func (m *Manager) StartContainer(id string) error {
	return m.client.ContainerStart(context.Background(), id, container.StartOptions{})
}

// StopContainer stops a container
func (m *Manager) StopContainer(id string) error {
	timeout := 10
	return m.client.ContainerStop(context.Background(), id, container.StopOptions{Timeout: &timeout})
}

// RestartContainer restarts a container
func (m *Manager) RestartContainer(id string) error {
	timeout := 10
	return m.client.ContainerRestart(context.Background(), id, container.StopOptions{Timeout: &timeout})
}

// ContainerLogs returns the last tail lines of a container's output
func (m *Manager) ContainerLogs(id string, tail int) (string, error) {
	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       "100",
		Timestamps: true,
	}
	if tail > 0 {
		options.Tail = strconv.Itoa(tail)
	}

	reader, err := m.client.ContainerLogs(context.Background(), id, options)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	buf := make([]byte, 32*1024)
	var logs strings.Builder
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			// Strip the 8-byte stream multiplexing header
			data := buf[:n]
			if len(data) > 8 {
				logs.Write(data[8:])
			} else {
				logs.Write(data)
			}
		}
		if err != nil {
			if err != io.EOF {
				return logs.String(), err
			}
			break
		}
	}

	return logs.String(), nil
}

// ExecShell holds an interactive exec attached to a running container
type ExecShell struct {
	ExecID string

	hijack types.HijackedResponse
	docker *client.Client
}

// defaultShells is tried in order; busybox images lack bash
var defaultShells = []string{"/bin/bash", "/bin/sh"}

// OpenShell creates an interactive exec in the container and attaches to
// it with a TTY. The caller reads output from the shell and writes
// keystrokes to it like any other session backend.
func (m *Manager) OpenShell(ctx context.Context, containerID string) (*ExecShell, error) {
	var lastErr error
	for _, shell := range defaultShells {
		created, err := m.client.ContainerExecCreate(ctx, containerID, container.ExecOptions{
			AttachStdin:  true,
			AttachStdout: true,
			AttachStderr: true,
			Tty:          true,
			Cmd:          []string{shell},
			Env:          []string{"TERM=xterm-256color"},
		})
		if err != nil {
			lastErr = err
			continue
		}

		hijack, err := m.client.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{
			Tty: true,
		})
		if err != nil {
			lastErr = err
			continue
		}

		return &ExecShell{
			ExecID: created.ID,
			hijack: hijack,
			docker: m.client,
		}, nil
	}

	return nil, fmt.Errorf("opening shell in %s: %w", containerID, lastErr)
}

// Read reads shell output from the attached connection
func (s *ExecShell) Read(p []byte) (int, error) {
	return s.hijack.Reader.Read(p)
}

// Write sends keystrokes to the shell
func (s *ExecShell) Write(p []byte) (int, error) {
	return s.hijack.Conn.Write(p)
}

// Resize resizes the exec's TTY
func (s *ExecShell) Resize(rows, cols uint16) error {
	return s.docker.ContainerExecResize(context.Background(), s.ExecID, container.ResizeOptions{
		Height: uint(rows),
		Width:  uint(cols),
	})
}

// Close tears down the attached connection; the exec process exits when
// its TTY goes away.
func (s *ExecShell) Close() error {
	s.hijack.Close()
	return nil
}

// Close closes the Docker client
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
