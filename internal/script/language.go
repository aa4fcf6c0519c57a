// Package script provides heuristic language detection, tokenization and
// highlighting for shell-style scripts (bash, sh, PowerShell, batch).
package script

import (
	"path/filepath"
	"strings"
)

// Language identifies a supported script dialect.
type Language string

const (
	LangBash       Language = "bash"
	LangSh         Language = "sh"
	LangPowerShell Language = "powershell"
	LangBatch      Language = "batch"
)

// shebangs maps known interpreter lines to the language they select.
// Matched as a prefix of the trimmed, lowercased source, so trailing
// arguments and the rest of the script never interfere.
var shebangs = []struct {
	prefix string
	lang   Language
}{
	{"#!/bin/bash", LangBash},
	{"#!/usr/bin/env bash", LangBash},
	{"#!/bin/sh", LangSh},
	{"#!/usr/bin/env sh", LangSh},
}

// Detect guesses the language of a script body.
//
// A recognized shebang decides immediately. Otherwise each language's
// indicator patterns are scored against the text and the strictly highest
// score wins; ties and all-zero scores fall back to bash. Note that sh is
// only ever detected via its shebang, since its syntax is a subset of bash.
func Detect(text string) Language {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	for _, s := range shebangs {
		if strings.HasPrefix(trimmed, s.prefix) {
			return s.lang
		}
	}

	scores := map[Language]int{
		LangBash:       countMatches(text, bashIndicators),
		LangPowerShell: countMatches(text, powershellIndicators),
		LangBatch:      countMatches(text, batchIndicators),
	}

	best := LangBash
	bestScore := 0
	tied := false
	for _, lang := range []Language{LangBash, LangPowerShell, LangBatch} {
		switch {
		case scores[lang] > bestScore:
			best = lang
			bestScore = scores[lang]
			tied = false
		case scores[lang] == bestScore && lang != best:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return LangBash
	}
	return best
}

// Resolve normalizes a stored language name, falling back to detection when
// the value is empty or unknown.
func Resolve(name, text string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(name))) {
	case LangBash:
		return LangBash
	case LangSh:
		return LangSh
	case LangPowerShell:
		return LangPowerShell
	case LangBatch:
		return LangBatch
	}
	return Detect(text)
}

// ResolveFile picks a language for a named script file. A recognized
// extension decides (with the same shebang override imports use, so a .sh
// file starting with #!/bin/bash is bash); names without a script extension
// are ignored and the content is detected. The name itself is never treated
// as a language, so a script called "batch" does not become batch.
func ResolveFile(name, text string) Language {
	if lang, ok := LanguageForExtension(filepath.Ext(name)); ok {
		return importLanguage(lang, text)
	}
	return Detect(text)
}

// LanguageForExtension maps a file extension (with or without the leading
// dot) to a language, reporting false for extensions that are not script
// files.
func LanguageForExtension(ext string) (Language, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "sh":
		return LangSh, true
	case "bash":
		return LangBash, true
	case "ps1", "psm1", "psd1":
		return LangPowerShell, true
	case "bat", "cmd":
		return LangBatch, true
	}
	return "", false
}
