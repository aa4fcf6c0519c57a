package script

import (
	"strings"
	"testing"
)

func TestHighlight(t *testing.T) {
	out := Highlight("ls # list", LangBash)

	wants := []string{
		`<span class="tok-function">ls</span>`,
		`<span class="tok-comment"># list</span>`,
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("Highlight output %q missing %q", out, want)
		}
	}
}

func TestHighlightEscapesMarkup(t *testing.T) {
	out := Highlight(`echo "<b>&</b>"`, LangBash)
	if strings.Contains(out, "<b>") {
		t.Errorf("Highlight output %q contains unescaped markup", out)
	}
	if !strings.Contains(out, "&lt;b&gt;") {
		t.Errorf("Highlight output %q missing escaped string content", out)
	}
}

func TestHighlightPlainTextUnwrapped(t *testing.T) {
	out := Highlight("plainword anotherword", LangBash)
	if strings.Contains(out, "<span") {
		t.Errorf("Highlight(%q) = %q, want no spans for plain text", "plainword anotherword", out)
	}
	if out != "plainword anotherword" {
		t.Errorf("Highlight plain text = %q, want input unchanged", out)
	}
}

func TestHighlightKindsStyled(t *testing.T) {
	out := Highlight(`if [ "$x" = 1 ]; then echo ok; fi # done`, LangBash)

	classes := []string{
		"tok-keyword", "tok-string", "tok-operator",
		"tok-number", "tok-function", "tok-comment",
	}
	for _, class := range classes {
		if !strings.Contains(out, class) {
			t.Errorf("Highlight output missing %s span: %q", class, out)
		}
	}
}
