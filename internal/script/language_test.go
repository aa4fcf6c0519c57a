package script

import "testing"

func TestDetectShebang(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"bash shebang", "#!/bin/bash\necho hi", LangBash},
		{"sh shebang", "#!/bin/sh\necho hi", LangSh},
		{"env bash", "#!/usr/bin/env bash\nls", LangBash},
		{"env sh", "#!/usr/bin/env sh\nls", LangSh},
		{"uppercase shebang", "#!/BIN/BASH\nls", LangBash},
		{"leading whitespace", "\n  #!/bin/sh\nls", LangSh},
		{"shebang beats powershell body", "#!/bin/sh\n$x = Get-Process | Where-Object {$_.Name -eq \"a\"}", LangSh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectScoring(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{
			"powershell pipeline",
			`$x = Get-Process | Where-Object {$_.Name -eq "a"}`,
			LangPowerShell,
		},
		{
			"batch script",
			"@echo off\nset X=1\necho %X%",
			LangBatch,
		},
		{
			"bash pipeline",
			"ps aux | grep nginx | awk '{print $2}' | xargs kill",
			LangBash,
		},
		{
			"bash substitution",
			"for f in $(ls); do echo ${f%.txt}; done",
			LangBash,
		},
		{
			"plain text falls back to bash",
			"just plain text with no markers",
			LangBash,
		},
		{
			"empty falls back to bash",
			"",
			LangBash,
		},
		{
			"tie falls back to bash",
			"set PATH=%PATH%\n$x = 1",
			LangBash,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// Plain sh is a subset of bash, so nothing short of a shebang should ever
// classify as sh.
func TestDetectNeverGuessesSh(t *testing.T) {
	texts := []string{
		"echo hello",
		"if [ -f /tmp/x ]; then ls; fi",
		"ls | grep foo > /dev/null",
	}
	for _, text := range texts {
		if got := Detect(text); got == LangSh {
			t.Errorf("Detect(%q) = sh, want detection only via shebang", text)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		language string
		text     string
		want     Language
	}{
		{"stored name wins", "powershell", "#!/bin/bash\nls", LangPowerShell},
		{"case insensitive", "PowerShell", "", LangPowerShell},
		{"padded", "  bash  ", "", LangBash},
		{"sh", "sh", "", LangSh},
		{"batch", "batch", "", LangBatch},
		{"empty falls back to detection", "", "@echo off\necho %X%", LangBatch},
		{"unknown falls back to detection", "ruby", "#!/bin/sh\nls", LangSh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.language, tt.text); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.language, tt.text, got, tt.want)
			}
		})
	}
}

func TestResolveFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		text     string
		want     Language
	}{
		{"ps1 extension", "cleanup.ps1", "", LangPowerShell},
		{"bat extension", "deploy.bat", "", LangBatch},
		{"sh extension plain", "run.sh", "echo hi", LangSh},
		{"sh extension with bash shebang", "run.sh", "#!/bin/bash\necho hi", LangBash},
		{"no extension detects content", "setup", "@echo off\necho %X%", LangBatch},
		{"name is not a language", "batch", "#!/bin/bash\necho hi", LangBash},
		{"name is not a language either", "powershell", "ls | grep foo > /dev/null", LangBash},
		{"unknown extension detects content", "notes.txt", `$x = Get-Process | Where-Object {$_.Name -eq "a"}`, LangPowerShell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveFile(tt.filename, tt.text); got != tt.want {
				t.Errorf("ResolveFile(%q, %q) = %q, want %q", tt.filename, tt.text, got, tt.want)
			}
		})
	}
}

func TestLanguageForExtension(t *testing.T) {
	tests := []struct {
		ext    string
		want   Language
		wantOK bool
	}{
		{".sh", LangSh, true},
		{"sh", LangSh, true},
		{".bash", LangBash, true},
		{".ps1", LangPowerShell, true},
		{".PSM1", LangPowerShell, true},
		{".bat", LangBatch, true},
		{".cmd", LangBatch, true},
		{".txt", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := LanguageForExtension(tt.ext)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LanguageForExtension(%q) = (%q, %v), want (%q, %v)", tt.ext, got, ok, tt.want, tt.wantOK)
		}
	}
}
