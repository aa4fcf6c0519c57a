package script

import "regexp"

// Indicator patterns for language scoring. Each pattern that matches
// anywhere in the text contributes one point to its language.
var (
	bashIndicators = []*regexp.Regexp{
		regexp.MustCompile(`\$\([^)]*\)`),                              // command substitution
		regexp.MustCompile(`\$\{\w[^}]*\}`),                            // parameter expansion
		regexp.MustCompile(`\[\[`),                                     // extended test
		regexp.MustCompile(`(?m)^\s*(?:function\s+\w+|\w+\s*\(\)\s*\{)`), // function definition
		regexp.MustCompile(`\|\s*(?:grep|awk|sed|sort|uniq|head|tail|wc|xargs|tee)\b`),
		regexp.MustCompile(`\bsudo\s`),
		regexp.MustCompile(`\bch(?:mod|own)\b`),
		regexp.MustCompile(`/dev/null`),
	}

	powershellIndicators = []*regexp.Regexp{
		regexp.MustCompile(`\$\w+\s*=`),                   // variable assignment
		regexp.MustCompile(`\b[A-Z][A-Za-z]*-[A-Z]\w*\b`), // Verb-Noun cmdlet
		regexp.MustCompile(`\|\s*(?:Where-Object|Select-Object|ForEach-Object|Sort-Object|Out-\w+|Format-\w+)`),
		regexp.MustCompile(`\[\w+(?:\.\w+)*\]::\w+`), // static member access
		regexp.MustCompile(`(?i)\bparam\s*\(`),
		regexp.MustCompile(`\s-(?:eq|ne|gt|lt|ge|le|like|notlike|match|notmatch|contains|in)\b`),
	}

	batchIndicators = []*regexp.Regexp{
		regexp.MustCompile(`(?i)@echo\s+(?:off|on)\b`),
		regexp.MustCompile(`%\w+%`),
		regexp.MustCompile(`(?i)\bgoto\s+:?\w+`),
		regexp.MustCompile(`(?i)\bif\s+(?:not\s+)?exist\b`),
		regexp.MustCompile(`(?im)^\s*(?:::|rem\b)`),
	}
)

func countMatches(text string, patterns []*regexp.Regexp) int {
	score := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			score++
		}
	}
	return score
}

// Reserved words per language. PowerShell and batch lookups are done on the
// lowercased word since both languages are case-insensitive.
var (
	bashKeywords = stringSet(
		"if", "then", "elif", "else", "fi", "for", "while", "until", "do",
		"done", "case", "esac", "in", "function", "select", "time", "coproc",
		"return", "break", "continue", "local", "export", "readonly",
		"declare", "unset", "shift", "exit", "trap", "eval", "exec", "set",
		"source", "alias", "wait",
	)

	powershellKeywords = stringSet(
		"param", "begin", "process", "end", "function", "filter", "workflow",
		"if", "elseif", "else", "switch", "foreach", "for", "while", "do",
		"until", "break", "continue", "return", "exit", "throw", "try",
		"catch", "finally", "trap", "class", "enum", "using", "in",
		"-eq", "-ne", "-gt", "-lt", "-ge", "-le", "-like", "-notlike",
		"-match", "-notmatch", "-contains", "-notcontains", "-in", "-notin",
		"-and", "-or", "-not", "-replace", "-is", "-as",
	)

	batchKeywords = stringSet(
		"echo", "off", "on", "set", "if", "else", "exist", "not", "defined",
		"errorlevel", "goto", "call", "for", "in", "do", "exit", "rem",
		"pause", "setlocal", "endlocal", "enabledelayedexpansion", "shift",
		"pushd", "popd", "start", "choice", "cls", "title", "color",
		"prompt",
	)
)

// Well-known command names rendered as function tokens. Bash and sh share
// the POSIX utility list; batch has its own built-in and system commands.
// PowerShell commands are recognized by Verb-Noun shape instead of a list.
var (
	unixCommands = stringSet(
		"ls", "cd", "pwd", "cp", "mv", "rm", "mkdir", "rmdir", "touch",
		"cat", "less", "more", "head", "tail", "grep", "egrep", "fgrep",
		"sed", "awk", "cut", "tr", "sort", "uniq", "wc", "find", "xargs",
		"tar", "gzip", "gunzip", "zip", "unzip", "curl", "wget", "ssh",
		"scp", "rsync", "ping", "chmod", "chown", "chgrp", "ln", "df", "du",
		"ps", "kill", "killall", "top", "htop", "echo", "printf", "read",
		"test", "date", "sleep", "which", "whoami", "uname", "hostname",
		"mount", "umount", "systemctl", "service", "journalctl", "crontab",
		"sudo", "su", "apt", "apt-get", "yum", "dnf", "pacman", "brew",
		"docker", "git", "make", "python", "python3", "node", "npm", "tee",
		"nc", "netstat", "ss", "ip", "ifconfig", "dig", "nslookup",
		"traceroute", "dd", "env", "basename", "dirname", "stat",
	)

	batchCommands = stringSet(
		"xcopy", "copy", "del", "move", "ren", "md", "rd", "dir", "type",
		"find", "findstr", "tasklist", "taskkill", "ipconfig", "netstat",
		"ping", "net", "sc", "reg", "schtasks", "wmic", "powershell", "cmd",
		"attrib", "icacls", "robocopy", "fc", "sort", "more", "timeout",
		"ver", "vol", "shutdown", "systeminfo",
	)

	// verbNounPattern matches the canonical PowerShell command shape,
	// e.g. Get-Process, ForEach-Object, Invoke-WebRequest.
	verbNounPattern = regexp.MustCompile(`^[A-Z][A-Za-z]*(?:-[A-Z][A-Za-z0-9]*)+$`)
)

func stringSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
