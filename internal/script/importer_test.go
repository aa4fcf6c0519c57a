package script

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "deploy.sh", "#!/bin/bash\necho deploy")
	writeTestFile(t, dir, "plain.sh", "echo plain")
	writeTestFile(t, dir, "report.ps1", "Get-Process | Sort-Object CPU")
	writeTestFile(t, dir, "nested/cleanup.bat", "@echo off\ndel /q temp")
	writeTestFile(t, dir, "notes.txt", "not a script")
	writeTestFile(t, dir, "node_modules/skip.sh", "echo skipped")
	writeTestFile(t, dir, ".hidden.sh", "echo hidden")

	imp := NewImporter()
	scripts, err := imp.ScanDirectory(dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}

	byName := make(map[string]ImportedScript, len(scripts))
	for _, s := range scripts {
		byName[s.Name] = s
	}

	if len(scripts) != 4 {
		t.Fatalf("ScanDirectory found %d scripts, want 4: %v", len(scripts), byName)
	}

	tests := []struct {
		name string
		lang Language
	}{
		{"deploy", LangBash}, // shebang overrides the .sh extension
		{"plain", LangSh},
		{"report", LangPowerShell},
		{"cleanup", LangBatch},
	}
	for _, tt := range tests {
		s, ok := byName[tt.name]
		if !ok {
			t.Errorf("script %q not found", tt.name)
			continue
		}
		if s.Language != tt.lang {
			t.Errorf("script %q language = %q, want %q", tt.name, s.Language, tt.lang)
		}
		if s.Content == "" {
			t.Errorf("script %q has empty content", tt.name)
		}
	}

	if _, ok := byName["skip"]; ok {
		t.Error("file under node_modules was imported")
	}
	if _, ok := byName[".hidden"]; ok {
		t.Error("hidden file was imported")
	}
	if _, ok := byName["notes"]; ok {
		t.Error("non-script file was imported")
	}
}

func TestScanDirectoryMissing(t *testing.T) {
	imp := NewImporter()
	if _, err := imp.ScanDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("ScanDirectory on a missing path returned nil error")
	}
}

func TestScanDirectoryOnFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "single.sh", "echo one")

	imp := NewImporter()
	if _, err := imp.ScanDirectory(filepath.Join(dir, "single.sh")); err == nil {
		t.Error("ScanDirectory on a plain file returned nil error")
	}
}
