package script

// TokenKind classifies a span of script source for display purposes.
type TokenKind string

const (
	KindKeyword  TokenKind = "keyword"
	KindString   TokenKind = "string"
	KindComment  TokenKind = "comment"
	KindVariable TokenKind = "variable"
	KindOperator TokenKind = "operator"
	KindNumber   TokenKind = "number"
	KindFunction TokenKind = "function"
	KindText     TokenKind = "text"
)

// Token is a classified contiguous span of source text. Tokens are produced
// in source order and concatenating their values reproduces the input exactly.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Value string    `json:"value"`
}
