package diag

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestReportAddAndSkip(t *testing.T) {
	r := NewReport("example")
	if !r.OK {
		t.Fatal("new report should start OK")
	}

	r.Add("dns", StatusOK, "resolved", time.Millisecond)
	if !r.OK {
		t.Error("OK check should not flip the report")
	}

	r.Add("tcp", StatusWarn, "slow", time.Second)
	if !r.OK {
		t.Error("warning should not flip the report")
	}

	r.Add("auth", StatusFail, "denied", time.Millisecond)
	if r.OK {
		t.Error("failed check should flip the report")
	}

	r.Skip("banner", "auth failed")
	if got := len(r.Checks); got != 4 {
		t.Fatalf("got %d checks, want 4", got)
	}
	last := r.Checks[3]
	if last.Status != StatusSkipped || last.Detail != "auth failed" {
		t.Errorf("skip recorded as %+v", last)
	}
}

func TestResolveHostLiteralIP(t *testing.T) {
	r := NewReport("127.0.0.1")
	addrs := ResolveHost(context.Background(), r, "127.0.0.1")
	if len(addrs) != 1 || addrs[0] != "127.0.0.1" {
		t.Errorf("got %v, want the literal address back", addrs)
	}
	if len(r.Checks) != 1 || r.Checks[0].Status != StatusOK {
		t.Errorf("literal IP should record an OK dns check, got %+v", r.Checks)
	}
}

func TestProbeTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	r := NewReport(ln.Addr().String())
	conn := ProbeTCP(context.Background(), r, ln.Addr().String(), time.Second)
	if conn == nil {
		t.Fatal("expected an open connection to the local listener")
	}
	conn.Close()
	if !r.OK {
		t.Error("successful probe should leave the report OK")
	}
}

func TestProbeTCPRefused(t *testing.T) {
	// Grab a free port, then close the listener so the dial is refused
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	r := NewReport(addr)
	conn := ProbeTCP(context.Background(), r, addr, time.Second)
	if conn != nil {
		conn.Close()
		t.Fatal("expected probe against closed port to fail")
	}
	if r.OK {
		t.Error("failed probe should flip the report")
	}
}
