package script

import (
	"html"
	"strings"
)

// styleClasses maps token kinds to the CSS class the frontend styles them
// with. Plain text is emitted unwrapped.
var styleClasses = map[TokenKind]string{
	KindKeyword:  "tok-keyword",
	KindString:   "tok-string",
	KindComment:  "tok-comment",
	KindVariable: "tok-variable",
	KindOperator: "tok-operator",
	KindNumber:   "tok-number",
	KindFunction: "tok-function",
}

// StyleClasses returns the token kind to CSS class mapping so the
// frontend can build a matching stylesheet.
func StyleClasses() map[TokenKind]string {
	classes := make(map[TokenKind]string, len(styleClasses))
	for k, v := range styleClasses {
		classes[k] = v
	}
	return classes
}

// Highlight tokenizes text and renders it as HTML, wrapping every
// non-text token in a span carrying its kind's style class. Token values
// are escaped, so the output is safe to inject into the viewer as markup.
func Highlight(text string, lang Language) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/2)
	for _, tok := range Tokenize(text, lang) {
		escaped := html.EscapeString(tok.Value)
		class, ok := styleClasses[tok.Kind]
		if !ok {
			b.WriteString(escaped)
			continue
		}
		b.WriteString(`<span class="`)
		b.WriteString(class)
		b.WriteString(`">`)
		b.WriteString(escaped)
		b.WriteString(`</span>`)
	}
	return b.String()
}
