package sshx

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBulkConcurrency bounds parallel connections during a fan-out
	DefaultBulkConcurrency = 8

	// DefaultBulkTimeout bounds each host's dial + command
	DefaultBulkTimeout = 60 * time.Second

	// maxBulkOutput caps captured output per host so one chatty command
	// cannot balloon memory across a large fleet
	maxBulkOutput = 256 * 1024
)

// Target names one host taking part in a bulk run
type Target struct {
	ID     string
	Name   string
	Config Config
}

// BulkResult is the outcome of running the command on one target
type BulkResult struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
	OK       bool   `json:"ok"`
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"durationMs"`
}

// BulkOptions tunes a fan-out run. Zero values get defaults.
type BulkOptions struct {
	Concurrency    int
	PerHostTimeout time.Duration

	// OnResult is invoked from worker goroutines as each host finishes;
	// it must be safe for concurrent use.
	OnResult func(BulkResult)
}

// RunBulk runs command on every target with bounded concurrency and
// returns results in target order. Individual host failures are reported
// in their result, never by aborting the whole run; cancelling ctx stops
// hosts that have not finished.
func RunBulk(ctx context.Context, targets []Target, command string, opts BulkOptions) []BulkResult {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}
	perHostTimeout := opts.PerHostTimeout
	if perHostTimeout <= 0 {
		perHostTimeout = DefaultBulkTimeout
	}

	results := make([]BulkResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			hostCtx, cancel := context.WithTimeout(ctx, perHostTimeout)
			defer cancel()

			result := runOne(hostCtx, target, command)
			results[i] = result

			if opts.OnResult != nil {
				opts.OnResult(result)
			}
			return nil
		})
	}

	g.Wait()
	return results
}

func runOne(ctx context.Context, target Target, command string) BulkResult {
	start := time.Now()
	result := BulkResult{
		HostID:   target.ID,
		HostName: target.Name,
		ExitCode: -1,
	}

	finish := func() BulkResult {
		result.Duration = time.Since(start).Milliseconds()
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Error = "cancelled"
		return finish()
	}

	client, err := Dial(ctx, target.Config)
	if err != nil {
		result.Error = err.Error()
		return finish()
	}
	defer client.Close()

	output, err := RunCommand(ctx, client, command)
	result.Output = clipOutput(string(output))

	if err == nil {
		result.OK = true
		result.ExitCode = 0
		return finish()
	}

	var exitErr *ssh.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitStatus()
		result.Error = err.Error()
	case ctx.Err() != nil:
		result.Error = "timed out"
	default:
		result.Error = err.Error()
	}
	return finish()
}

func clipOutput(s string) string {
	if len(s) <= maxBulkOutput {
		return s
	}
	return s[:maxBulkOutput] + "\n...[output truncated]"
}
