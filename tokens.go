package codebook

import "strings"

// TokenClass is the colouring category of a token.
type TokenClass uint8

const (
	ClassPlain TokenClass = iota
	ClassKeyword
	ClassString
	ClassComment
	ClassNumber
	ClassFunction
	ClassType
	ClassOperator

	classCount
)

var classNames = [classCount]string{
	ClassPlain:    "plain",
	ClassKeyword:  "keyword",
	ClassString:   "string",
	ClassComment:  "comment",
	ClassNumber:   "number",
	ClassFunction: "function",
	ClassType:     "type",
	ClassOperator: "operator",
}

func (c TokenClass) String() string {
	if c < classCount {
		return classNames[c]
	}
	return classNames[ClassPlain]
}

// ParseTokenClass maps a class name back to its TokenClass.
func ParseTokenClass(name string) (TokenClass, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range classNames {
		if n == name {
			return TokenClass(i), true
		}
	}
	return ClassPlain, false
}

// Classes returns every token class in taxonomy order.
func Classes() []TokenClass {
	out := make([]TokenClass, 0, classCount)
	for c := TokenClass(0); c < classCount; c++ {
		out = append(out, c)
	}
	return out
}

// Token is a classified, contiguous span of a file's text. Colour is
// resolved against a Theme when rendering.
type Token struct {
	Text  string
	Class TokenClass
}

// JoinTokens concatenates the token spans in order.
func JoinTokens(tokens []Token) string {
	n := 0
	for _, tok := range tokens {
		n += len(tok.Text)
	}
	var b strings.Builder
	b.Grow(n)
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}
