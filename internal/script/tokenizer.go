package script

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// kindWord marks a rule whose matches still need keyword/function/text
// classification. It never appears in tokenizer output.
const kindWord TokenKind = "word"

// rule is one tokenizer production: an anchored pattern tried against the
// remaining input. Rules are tried in slice order and the first match wins.
type rule struct {
	kind TokenKind
	re   *regexp.Regexp
}

var (
	hashCommentPattern   = regexp.MustCompile(`^#[^\n]*`)
	batchCommentPattern  = regexp.MustCompile(`^(?:::|[Rr][Ee][Mm]\b)[^\n]*`)
	doubleQuotedPattern  = regexp.MustCompile(`^"(?:\\.|[^"\\])*"`)
	singleQuotedPattern  = regexp.MustCompile(`^'[^']*'`)
	bashVariablePattern  = regexp.MustCompile(`^(?:\$\{[^}]*\}|\$\w+)`)
	psVariablePattern    = regexp.MustCompile(`^\$\w+`)
	batchVariablePattern = regexp.MustCompile(`^(?:%\w+%|%%\w)`)
	numberPattern        = regexp.MustCompile(`^\d+(?:\.\d+)?`)
	unixWordPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*`)
	psWordPattern        = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*`)
	operatorPattern      = regexp.MustCompile(`^[|&;<>=!+\-*/%\\(){}\[\]@^]+`)
)

var (
	bashRules = []rule{
		{KindComment, hashCommentPattern},
		{KindString, doubleQuotedPattern},
		{KindString, singleQuotedPattern},
		{KindVariable, bashVariablePattern},
		{KindNumber, numberPattern},
		{kindWord, unixWordPattern},
		{KindOperator, operatorPattern},
	}

	powershellRules = []rule{
		{KindComment, hashCommentPattern},
		{KindString, doubleQuotedPattern},
		{KindString, singleQuotedPattern},
		{KindVariable, psVariablePattern},
		{KindNumber, numberPattern},
		{kindWord, psWordPattern},
		{KindOperator, operatorPattern},
	}

	batchRules = []rule{
		{KindComment, batchCommentPattern},
		{KindString, doubleQuotedPattern},
		{KindString, singleQuotedPattern},
		{KindVariable, batchVariablePattern},
		{KindNumber, numberPattern},
		{kindWord, unixWordPattern},
		{KindOperator, operatorPattern},
	}
)

func rulesFor(lang Language) []rule {
	switch lang {
	case LangPowerShell:
		return powershellRules
	case LangBatch:
		return batchRules
	default:
		return bashRules
	}
}

// Tokenize splits text into classified tokens for the given language. A
// language that is not a concrete dialect ("auto", empty, unknown) is
// resolved by content detection first, so PowerShell source tokenized as
// "auto" still gets PowerShell rules.
//
// At each position the rules are tried in priority order (comment, strings,
// variable, number, word, operator run) and the first match is consumed.
// When nothing matches, exactly one character is consumed as plain text, so
// the scan always terminates and concatenating the token values reproduces
// the input byte for byte.
func Tokenize(text string, lang Language) []Token {
	lang = Resolve(string(lang), text)
	rules := rulesFor(lang)
	var tokens []Token
	pos := 0
	for pos < len(text) {
		rest := text[pos:]
		match := ""
		kind := KindText
		for _, r := range rules {
			if m := r.re.FindString(rest); m != "" {
				match = m
				kind = r.kind
				break
			}
		}
		if match == "" {
			_, size := utf8.DecodeRuneInString(rest)
			match = rest[:size]
			kind = KindText
		}
		if kind == kindWord {
			kind = classifyWord(match, lang)
		}
		tokens = appendToken(tokens, kind, match)
		pos += len(match)
	}
	return tokens
}

// appendToken adds a token, folding consecutive plain-text spans together so
// runs of whitespace and punctuation fallback characters stay one token.
func appendToken(tokens []Token, kind TokenKind, value string) []Token {
	if kind == KindText && len(tokens) > 0 && tokens[len(tokens)-1].Kind == KindText {
		tokens[len(tokens)-1].Value += value
		return tokens
	}
	return append(tokens, Token{Kind: kind, Value: value})
}

// classifyWord decides whether a scanned word is a reserved word, a
// well-known command, or plain text. PowerShell commands are recognized by
// their Verb-Noun shape rather than a fixed list.
func classifyWord(word string, lang Language) TokenKind {
	switch lang {
	case LangPowerShell:
		if powershellKeywords[strings.ToLower(word)] {
			return KindKeyword
		}
		if verbNounPattern.MatchString(word) {
			return KindFunction
		}
	case LangBatch:
		lower := strings.ToLower(word)
		if batchKeywords[lower] {
			return KindKeyword
		}
		if batchCommands[lower] {
			return KindFunction
		}
	default:
		if bashKeywords[word] {
			return KindKeyword
		}
		if unixCommands[word] {
			return KindFunction
		}
	}
	return KindText
}
