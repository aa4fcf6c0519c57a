package sshx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"hostdeck/internal/diag"
)

// Diagnose walks a connection attempt step by step: DNS, TCP dial, SSH
// identification banner, then a full handshake with the configured
// credentials. Later steps are skipped once an earlier one fails so the
// report points at the first broken link.
func Diagnose(ctx context.Context, cfg Config) *diag.Report {
	report := diag.NewReport(cfg.Addr())

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if addrs := diag.ResolveHost(ctx, report, cfg.Host); addrs == nil {
		report.Skip("tcp", "dns failed")
		report.Skip("banner", "dns failed")
		report.Skip("auth", "dns failed")
		return report
	}

	conn := diag.ProbeTCP(ctx, report, cfg.Addr(), timeout)
	if conn == nil {
		report.Skip("banner", "tcp failed")
		report.Skip("auth", "tcp failed")
		return report
	}
	checkBanner(report, conn, timeout)
	conn.Close()

	checkAuth(ctx, report, cfg)
	return report
}

// checkBanner reads the server's identification string. SSH servers speak
// first, so a silent or non-SSH peer shows up here rather than as a
// confusing handshake error.
func checkBanner(report *diag.Report, conn net.Conn, timeout time.Duration) {
	start := time.Now()

	conn.SetReadDeadline(time.Now().Add(timeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	elapsed := time.Since(start)

	banner := strings.TrimRight(line, "\r\n")
	switch {
	case err != nil && banner == "":
		report.Add("banner", diag.StatusFail, fmt.Sprintf("no server banner: %v", err), elapsed)
	case !strings.HasPrefix(banner, "SSH-"):
		report.Add("banner", diag.StatusFail, fmt.Sprintf("not an SSH server: %q", banner), elapsed)
	default:
		report.Add("banner", diag.StatusOK, banner, elapsed)
	}
}

func checkAuth(ctx context.Context, report *diag.Report, cfg Config) {
	start := time.Now()

	client, err := Dial(ctx, cfg)
	elapsed := time.Since(start)
	if err == nil {
		client.Close()
		report.Add("auth", diag.StatusOK, fmt.Sprintf("authenticated as %s", cfg.User), elapsed)
		return
	}

	var unknown *ErrUnknownHostKey
	var mismatch *ErrHostKeyMismatch
	switch {
	case errors.As(err, &unknown):
		report.Add("auth", diag.StatusWarn,
			fmt.Sprintf("host key not trusted yet, fingerprint %s", unknown.Fingerprint), elapsed)
	case errors.As(err, &mismatch):
		report.Add("auth", diag.StatusFail, mismatch.Error(), elapsed)
	case strings.Contains(err.Error(), "unable to authenticate"):
		report.Add("auth", diag.StatusFail,
			fmt.Sprintf("credentials rejected for %s: %v", cfg.User, err), elapsed)
	default:
		report.Add("auth", diag.StatusFail, err.Error(), elapsed)
	}
}
