package session

import (
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/crypto/ssh"
)

// ptyBackend runs a local shell on a pseudo-terminal
type ptyBackend struct {
	ptmx *os.File
	cmd  *exec.Cmd
}

func newPtyBackend(workDir string) (*ptyBackend, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/zsh"
	}

	cmd := exec.Command(shell, "-l")
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}

	pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80})

	return &ptyBackend{ptmx: ptmx, cmd: cmd}, nil
}

func (b *ptyBackend) Read(p []byte) (int, error)  { return b.ptmx.Read(p) }
func (b *ptyBackend) Write(p []byte) (int, error) { return b.ptmx.Write(p) }

func (b *ptyBackend) Resize(rows, cols uint16) error {
	return pty.Setsize(b.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

func (b *ptyBackend) Close() error {
	if b.cmd != nil && b.cmd.Process != nil {
		b.cmd.Process.Kill()
	}
	return b.ptmx.Close()
}

// sshBackend runs a remote shell over an established SSH client. The
// client is owned by the backend and closed with it.
type sshBackend struct {
	client *ssh.Client
	sess   *ssh.Session
	stdin  io.WriteCloser
	stdout io.Reader
}

func newSSHBackend(client *ssh.Client) (*sshBackend, error) {
	sess, err := client.NewSession()
	if err != nil {
		return nil, err
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("xterm-256color", 24, 80, modes); err != nil {
		sess.Close()
		return nil, err
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return nil, err
	}
	// With a requested pty the server merges stderr into stdout
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, err
	}

	if err := sess.Shell(); err != nil {
		sess.Close()
		return nil, err
	}

	return &sshBackend{
		client: client,
		sess:   sess,
		stdin:  stdin,
		stdout: stdout,
	}, nil
}

func (b *sshBackend) Read(p []byte) (int, error)  { return b.stdout.Read(p) }
func (b *sshBackend) Write(p []byte) (int, error) { return b.stdin.Write(p) }

func (b *sshBackend) Resize(rows, cols uint16) error {
	return b.sess.WindowChange(int(rows), int(cols))
}

func (b *sshBackend) Close() error {
	b.sess.Close()
	return b.client.Close()
}
