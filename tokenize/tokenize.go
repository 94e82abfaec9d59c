// Package tokenize splits file text into classified, gap-free token spans.
//
// The concatenation of the returned tokens always equals the input text. A
// token may span several lines (block comments, raw strings); callers treat
// each token as one colouring unit.
package tokenize

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"pkt.systems/codebook"
)

// Tokenizer classifies text for a language hint.
type Tokenizer interface {
	// Tokenize returns tokens whose concatenation equals text. An unknown
	// or empty language yields a single plain token.
	Tokenize(text, language string) []codebook.Token
}

// Plain never highlights.
type Plain struct{}

// Tokenize returns text as one plain token.
func (Plain) Tokenize(text, _ string) []codebook.Token {
	return plainTokens(text)
}

// Chroma tokenizes with chroma lexers. The zero value is ready to use and
// safe for concurrent callers.
type Chroma struct{}

// New returns the default tokenizer.
func New() Chroma {
	return Chroma{}
}

// Tokenize implements Tokenizer.
func (Chroma) Tokenize(text, language string) (out []codebook.Token) {
	if text == "" {
		return nil
	}
	lexer := lexerFor(language)
	if lexer == nil || !utf8.ValidString(text) {
		return plainTokens(text)
	}
	defer func() {
		if recover() != nil {
			out = plainTokens(text)
		}
	}()
	it, err := lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return plainTokens(text)
	}
	tokens, ok := realign(text, it.Tokens())
	if !ok {
		return plainTokens(text)
	}
	return tokens
}

// Supported reports whether language resolves to a lexer.
func Supported(language string) bool {
	return lexerFor(language) != nil
}

func lexerFor(language string) chroma.Lexer {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" || language == "text" || language == "plaintext" {
		return nil
	}
	return lexers.Get(language)
}

func plainTokens(text string) []codebook.Token {
	if text == "" {
		return nil
	}
	return []codebook.Token{{Text: text, Class: codebook.ClassPlain}}
}

// realign maps lexer output back onto the exact source bytes. Tokens are
// sliced from text itself so the partition is exact. A synthetic trailing
// newline added by the lexer is dropped; any other divergence fails.
func realign(text string, lexed []chroma.Token) ([]codebook.Token, bool) {
	out := make([]codebook.Token, 0, len(lexed))
	pos, start := 0, 0
	push := func(end int, class codebook.TokenClass) {
		if n := len(out); n > 0 && out[n-1].Class == class {
			out[n-1].Text = text[start:end]
		} else {
			start = pos
			out = append(out, codebook.Token{Text: text[pos:end], Class: class})
		}
		pos = end
	}
	for _, lt := range lexed {
		if lt.Type == chroma.EOFType || lt.Value == "" {
			continue
		}
		rest := text[pos:]
		v := lt.Value
		switch {
		case strings.HasPrefix(rest, v):
		case strings.HasPrefix(v, rest) && strings.Trim(v[len(rest):], "\n") == "":
			v = rest
		default:
			return nil, false
		}
		if v == "" {
			continue
		}
		push(pos+len(v), classOf(lt.Type))
	}
	if pos < len(text) {
		push(len(text), codebook.ClassPlain)
	}
	return out, true
}
