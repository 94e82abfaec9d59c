package tokenize

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"

	"pkt.systems/codebook"
)

var partitionSamples = []struct {
	name string
	lang string
	text string
}{
	{"go", "go", "package main\n\nimport \"fmt\"\n\n/* block\n   comment */\nfunc main() {\n\tfmt.Println(42)\n}\n"},
	{"go-no-trailing-newline", "go", "package main\nvar x = 1"},
	{"go-crlf", "go", "package main\r\n\r\nfunc f() int {\r\n\treturn 1\r\n}\r\n"},
	{"python", "python", "def f(x):\n    \"\"\"doc\n    string\"\"\"\n    return x + 1  # inc\n"},
	{"rust", "rust", "fn main() {\n    let s = r#\"raw\nstring\"#;\n}\n"},
	{"unknown", "no-such-language", "just some text\nwith lines\n"},
	{"empty-hint", "", "plain text"},
	{"invalid-utf8", "go", "package main\n// \xff\xfe\n"},
	{"only-newlines", "go", "\n\n\n"},
}

func TestTokenizePartition(t *testing.T) {
	tk := New()
	for _, tc := range partitionSamples {
		t.Run(tc.name, func(t *testing.T) {
			tokens := tk.Tokenize(tc.text, tc.lang)
			if got := codebook.JoinTokens(tokens); got != tc.text {
				t.Fatalf("tokens do not reconstruct input:\n got %q\nwant %q", got, tc.text)
			}
			for i, tok := range tokens {
				if tok.Text == "" {
					t.Fatalf("token %d is empty", i)
				}
				if i > 0 && tokens[i-1].Class == tok.Class {
					t.Fatalf("tokens %d and %d share class %s and were not merged", i-1, i, tok.Class)
				}
			}
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := New().Tokenize("", "go"); len(got) != 0 {
		t.Fatalf("expected no tokens for empty text, got %v", got)
	}
}

func TestTokenizeUnknownLanguageIsSinglePlainToken(t *testing.T) {
	text := "alpha\nbeta\n"
	for _, lang := range []string{"", "text", "definitely-not-a-language"} {
		tokens := New().Tokenize(text, lang)
		if len(tokens) != 1 || tokens[0].Class != codebook.ClassPlain || tokens[0].Text != text {
			t.Fatalf("lang %q: expected one plain token, got %+v", lang, tokens)
		}
	}
}

func TestTokenizeKeepsMultilineCommentWhole(t *testing.T) {
	text := "package p\n\n/* first\nsecond\nthird */\nvar x int\n"
	tokens := New().Tokenize(text, "go")
	var found bool
	for _, tok := range tokens {
		if tok.Class == codebook.ClassComment && strings.Contains(tok.Text, "first\nsecond\nthird") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected block comment as one token, got %+v", tokens)
	}
}

func TestTokenizeClassifiesGo(t *testing.T) {
	tokens := New().Tokenize("package main\nvar n int = 42\nvar s = \"hi\"\n", "go")
	want := map[string]codebook.TokenClass{
		"package": codebook.ClassKeyword,
		"int":     codebook.ClassType,
		"42":      codebook.ClassNumber,
		`"hi"`:    codebook.ClassString,
	}
	for text, class := range want {
		var ok bool
		for _, tok := range tokens {
			if strings.Contains(tok.Text, text) && tok.Class == class {
				ok = true
				break
			}
		}
		if !ok {
			t.Fatalf("expected %q classified as %s in %+v", text, class, tokens)
		}
	}
}

func TestPlainTokenizer(t *testing.T) {
	tokens := Plain{}.Tokenize("func main() {}\n", "go")
	if len(tokens) != 1 || tokens[0].Class != codebook.ClassPlain {
		t.Fatalf("expected a single plain token, got %+v", tokens)
	}
}

func TestRealign(t *testing.T) {
	lexed := []chroma.Token{
		{Type: chroma.Keyword, Value: "var"},
		{Type: chroma.Text, Value: " "},
		{Type: chroma.Name, Value: "x"},
		{Type: chroma.Text, Value: "\n"},
		{Type: chroma.EOFType, Value: ""},
	}
	tokens, ok := realign("var x", lexed)
	if !ok {
		t.Fatalf("expected synthetic trailing newline to be tolerated")
	}
	if got := codebook.JoinTokens(tokens); got != "var x" {
		t.Fatalf("unexpected reconstruction %q", got)
	}
	if len(tokens) != 2 || tokens[0].Class != codebook.ClassKeyword || tokens[1].Text != " x" {
		t.Fatalf("expected keyword then merged plain run, got %+v", tokens)
	}

	if _, ok := realign("var y", lexed); ok {
		t.Fatalf("expected mismatch to fail")
	}

	short := []chroma.Token{{Type: chroma.Keyword, Value: "var"}}
	tokens, ok = realign("var rest", short)
	if !ok || codebook.JoinTokens(tokens) != "var rest" {
		t.Fatalf("expected unlexed tail appended as plain, got %+v", tokens)
	}
}

func TestClassOf(t *testing.T) {
	cases := map[chroma.TokenType]codebook.TokenClass{
		chroma.KeywordDeclaration:   codebook.ClassKeyword,
		chroma.KeywordType:          codebook.ClassType,
		chroma.NameClass:            codebook.ClassType,
		chroma.LiteralStringDouble:  codebook.ClassString,
		chroma.LiteralNumberFloat:   codebook.ClassNumber,
		chroma.CommentMultiline:     codebook.ClassComment,
		chroma.NameFunction:         codebook.ClassFunction,
		chroma.Operator:             codebook.ClassOperator,
		chroma.OperatorWord:         codebook.ClassOperator,
		chroma.Punctuation:          codebook.ClassPlain,
		chroma.NameVariable:         codebook.ClassPlain,
		chroma.GenericHeading:       codebook.ClassPlain,
		chroma.LiteralStringHeredoc: codebook.ClassString,
	}
	for tt, want := range cases {
		if got := classOf(tt); got != want {
			t.Fatalf("classOf(%s): got %s want %s", tt, got, want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"src/main.rs":           "rust",
		"app/models.py":         "python",
		"cmd/tool/main.go":      "go",
		"web/index.HTML":        "html",
		"config/.env.local":     "bash",
		".env":                  "bash",
		"deploy/Dockerfile.dev": "docker",
		"Makefile":              "make",
		"contracts/Token.sol":   "solidity",
		"include/thing.hpp":     "cpp",
		"notes/unknown.zzzzzz":  "",
		`windows\style\path.ts`: "typescript",
	}
	for in, want := range cases {
		if got := DetectLanguage(in); got != want {
			t.Fatalf("DetectLanguage(%q): got %q want %q", in, got, want)
		}
	}
}

func TestSupported(t *testing.T) {
	for _, lang := range []string{"go", "Python", " rust "} {
		if !Supported(lang) {
			t.Fatalf("expected a lexer for %q", lang)
		}
	}
	for _, lang := range []string{"", "text", "plaintext", "no-such-language"} {
		if Supported(lang) {
			t.Fatalf("expected no lexer for %q", lang)
		}
	}
}
