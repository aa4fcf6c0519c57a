package script

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxImportSize caps how much of a script file the importer will read.
const maxImportSize = 1 << 20

// ImportedScript is one script file discovered on disk, ready to be added
// to the library.
type ImportedScript struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Language Language `json:"language"`
	Content  string   `json:"content"`
}

// Importer scans directories for script files
type Importer struct {
	// Directories to ignore
	ignoredDirs map[string]bool
}

// NewImporter creates a new Importer instance
func NewImporter() *Importer {
	return &Importer{
		ignoredDirs: map[string]bool{
			"node_modules": true,
			".git":         true,
			"dist":         true,
			"build":        true,
			"coverage":     true,
			".cache":       true,
			"vendor":       true,
			".vscode":      true,
			".idea":        true,
		},
	}
}

// ScanDirectory walks dir recursively and returns every script file found,
// sorted by path. Unreadable entries and files over the size cap are
// skipped rather than failing the whole import.
func (imp *Importer) ScanDirectory(dir string) ([]ImportedScript, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}

	var scripts []ImportedScript
	imp.scanDir(dir, &scripts)

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].Path < scripts[j].Path
	})
	return scripts, nil
}

// scanDir recursively collects script files under dirPath
func (imp *Importer) scanDir(dirPath string, out *[]ImportedScript) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()

		// Skip hidden files/dirs
		if strings.HasPrefix(name, ".") {
			continue
		}

		if entry.IsDir() {
			if imp.ignoredDirs[name] {
				continue
			}
			imp.scanDir(filepath.Join(dirPath, name), out)
			continue
		}

		ext := filepath.Ext(name)
		extLang, ok := LanguageForExtension(ext)
		if !ok {
			continue
		}

		path := filepath.Join(dirPath, name)
		if fi, err := entry.Info(); err != nil || fi.Size() > maxImportSize {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		content := string(data)
		*out = append(*out, ImportedScript{
			Name:     strings.TrimSuffix(name, ext),
			Path:     path,
			Language: importLanguage(extLang, content),
			Content:  content,
		})
	}
}

// importLanguage picks the language for an imported file. The extension
// decides, except that a shebang inside a shell file is authoritative so a
// .sh file starting with #!/bin/bash is labeled bash.
func importLanguage(extLang Language, content string) Language {
	if extLang == LangSh || extLang == LangBash {
		if strings.HasPrefix(strings.TrimSpace(content), "#!") {
			return Detect(content)
		}
	}
	return extLang
}
