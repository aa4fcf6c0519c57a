// Package diag runs stepwise connection diagnostics. Each step records a
// named check result so the frontend can show exactly where a connection
// attempt breaks down: name resolution, TCP reachability, protocol
// handshake, authentication.
package diag

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// Check statuses
const (
	StatusOK      = "ok"
	StatusWarn    = "warn"
	StatusFail    = "fail"
	StatusSkipped = "skipped"
)

// CheckResult is the outcome of a single diagnostic step
type CheckResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Report collects the checks run against one target
type Report struct {
	Target string        `json:"target"`
	OK     bool          `json:"ok"`
	Checks []CheckResult `json:"checks"`
}

// Add appends a check result and downgrades the report on failure
func (r *Report) Add(name, status, detail string, elapsed time.Duration) {
	r.Checks = append(r.Checks, CheckResult{
		Name:       name,
		Status:     status,
		Detail:     detail,
		DurationMs: elapsed.Milliseconds(),
	})
	if status == StatusFail {
		r.OK = false
	}
}

// Skip records a step that was not attempted because an earlier one failed
func (r *Report) Skip(name, reason string) {
	r.Checks = append(r.Checks, CheckResult{
		Name:   name,
		Status: StatusSkipped,
		Detail: reason,
	})
}

// NewReport starts an optimistic report; failed checks flip OK to false.
func NewReport(target string) *Report {
	return &Report{Target: target, OK: true}
}

// ResolveHost runs the DNS step. Literal IP addresses resolve to
// themselves without a lookup.
func ResolveHost(ctx context.Context, r *Report, host string) []string {
	start := time.Now()

	if ip := net.ParseIP(host); ip != nil {
		r.Add("dns", StatusOK, fmt.Sprintf("%s is a literal address", host), time.Since(start))
		return []string{host}
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		r.Add("dns", StatusFail, fmt.Sprintf("cannot resolve %s: %v", host, err), time.Since(start))
		return nil
	}

	r.Add("dns", StatusOK, fmt.Sprintf("%s resolves to %s", host, strings.Join(addrs, ", ")), time.Since(start))
	return addrs
}

// ProbeTCP runs the reachability step against addr (host:port) and
// returns the open connection on success so a protocol check can reuse it.
func ProbeTCP(ctx context.Context, r *Report, addr string, timeout time.Duration) net.Conn {
	start := time.Now()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	elapsed := time.Since(start)
	if err != nil {
		r.Add("tcp", StatusFail, fmt.Sprintf("cannot connect to %s: %v", addr, err), elapsed)
		return nil
	}

	r.Add("tcp", StatusOK, fmt.Sprintf("connected to %s in %dms", addr, elapsed.Milliseconds()), elapsed)
	return conn
}
