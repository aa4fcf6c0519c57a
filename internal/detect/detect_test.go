package detect

import "testing"

func TestAnalyzeConditions(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Status
	}{
		{"ssh password prompt", "user@server's password: ", StatusPasswordPrompt},
		{"key passphrase prompt", "Enter passphrase for key '/home/u/.ssh/id_ed25519': ", StatusPasswordPrompt},
		{"sudo prompt", "[sudo] password for deploy: ", StatusPasswordPrompt},
		{"permission denied", "Permission denied (publickey,password).\r\n", StatusAuthFailed},
		{"too many failures", "Received disconnect: Too many authentication failures\r\n", StatusAuthFailed},
		{"host key changed", "@@@@ WARNING: REMOTE HOST IDENTIFICATION HAS CHANGED! @@@@", StatusHostKeyWarning},
		{"verification failed", "Host key verification failed.\r\n", StatusHostKeyWarning},
		{"connection closed", "Connection closed by 10.0.0.5 port 22\r\n", StatusDisconnected},
		{"connection refused", "connect to host 10.0.0.5 port 22: Connection refused\r\n", StatusDisconnected},
		{"plain output", "total 12\ndrwxr-xr-x 3 root root 4096 .\n", StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer()
			got, _ := a.Analyze("s1", []byte(tt.output))
			if got != tt.want {
				t.Errorf("Analyze(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestAnalyzeSeverityOrder(t *testing.T) {
	a := NewAnalyzer()
	chunk := "@@@@ WARNING: REMOTE HOST IDENTIFICATION HAS CHANGED! @@@@\nuser@server's password: "
	got, _ := a.Analyze("s1", []byte(chunk))
	if got != StatusHostKeyWarning {
		t.Errorf("combined chunk = %q, want %q", got, StatusHostKeyWarning)
	}
}

func TestAnalyzeChangedFlag(t *testing.T) {
	a := NewAnalyzer()

	if _, changed := a.Analyze("s1", []byte("password: ")); !changed {
		t.Error("first detection should report a change")
	}
	if _, changed := a.Analyze("s1", []byte("password: ")); changed {
		t.Error("repeated detection should not report a change")
	}
}

func TestPasswordPromptClearsOnShell(t *testing.T) {
	a := NewAnalyzer()

	a.Analyze("s1", []byte("user@server's password: "))
	got, changed := a.Analyze("s1", []byte("Last login: Fri Aug 29\r\nuser@server:~$ "))
	if got != StatusNone || !changed {
		t.Errorf("after shell prompt: status = %q changed = %v, want %q true", got, changed, StatusNone)
	}
}

func TestAnalyzeStripsANSI(t *testing.T) {
	a := NewAnalyzer()
	got, _ := a.Analyze("s1", []byte("\x1b[31mPermission denied (password).\x1b[0m"))
	if got != StatusAuthFailed {
		t.Errorf("colored output = %q, want %q", got, StatusAuthFailed)
	}
}

func TestRemoveAndReset(t *testing.T) {
	a := NewAnalyzer()
	a.Analyze("s1", []byte("password: "))

	a.Reset("s1")
	if got := a.Status("s1"); got != StatusNone {
		t.Errorf("after Reset: %q, want %q", got, StatusNone)
	}

	a.Analyze("s1", []byte("password: "))
	a.Remove("s1")
	if got := a.Status("s1"); got != StatusNone {
		t.Errorf("after Remove: %q, want %q", got, StatusNone)
	}
}
