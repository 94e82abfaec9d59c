package markup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

func sampleModel(opts codebook.Options) *document.Model {
	b := document.NewBuilder(document.Meta{
		Title:     "demo",
		Author:    "Jo Doe",
		Generated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}, opts)
	src := "package main\n\nfunc main() { println(\"<script>alert(1)</script>\") }\n"
	b.Add(codebook.FileRecord{RelPath: "cmd/demo/main.go", Size: int64(len(src)), Language: "go", Text: src}, []codebook.Token{
		{Text: "package", Class: codebook.ClassKeyword},
		{Text: " main\n\n"},
		{Text: "func", Class: codebook.ClassKeyword},
		{Text: " main() { println("},
		{Text: "\"<script>alert(1)</script>\"", Class: codebook.ClassString},
		{Text: ") }\n"},
	})
	b.Add(codebook.FileRecord{RelPath: "assets/logo.png", Size: 2048, Binary: true}, nil)
	return b.Build()
}

func render(t *testing.T, doc *document.Model, theme codebook.Theme) *html.Node {
	t.Helper()
	var out bytes.Buffer
	if _, err := New(Config{}).Render(context.Background(), doc, theme, &out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out.String(), "<!DOCTYPE html>") {
		t.Fatalf("missing doctype: %.40q", out.String())
	}
	root, err := html.Parse(&out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func elements(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

func TestTOCLinksResolveToSections(t *testing.T) {
	root := render(t, sampleModel(codebook.DefaultOptions()), nil)
	ids := map[string]bool{}
	walk(root, func(n *html.Node) {
		if id := attr(n, "id"); id != "" {
			ids[id] = true
		}
	})
	for _, want := range []string{"title", "table-of-contents", "file-tree", "cmd-demo-main-go", "assets-logo-png"} {
		if !ids[want] {
			t.Fatalf("missing section id %q in %v", want, ids)
		}
	}
	links := elements(root, "a")
	if len(links) != 2 {
		t.Fatalf("expected 2 toc links, got %d", len(links))
	}
	for _, a := range links {
		href := attr(a, "href")
		if !strings.HasPrefix(href, "#") || !ids[href[1:]] {
			t.Fatalf("dangling link %q", href)
		}
	}
	if textOf(links[0]) != "cmd/demo/main.go" {
		t.Fatalf("unexpected link text %q", textOf(links[0]))
	}
}

func TestTokensCarryThemeColours(t *testing.T) {
	theme, _ := codebook.ThemeByName("dark")
	root := render(t, sampleModel(codebook.DefaultOptions()), theme)
	pal := theme.Palette()
	var keywords, strs int
	for _, span := range elements(root, "span") {
		switch attr(span, "class") {
		case "keyword":
			keywords++
			if attr(span, "style") != "color:"+pal.Color(codebook.ClassKeyword).Hex() {
				t.Fatalf("unexpected keyword style %q", attr(span, "style"))
			}
		case "string":
			strs++
			if textOf(span) != `"<script>alert(1)</script>"` {
				t.Fatalf("string token not preserved: %q", textOf(span))
			}
		}
	}
	if keywords != 2 || strs != 1 {
		t.Fatalf("expected 2 keyword and 1 string spans, got %d and %d", keywords, strs)
	}
	if len(elements(root, "script")) != 0 {
		t.Fatalf("file content leaked into markup")
	}
	body := elements(root, "body")[0]
	if !strings.Contains(attr(body, "style"), "background-color:#2d2d2d") {
		t.Fatalf("unexpected body style %q", attr(body, "style"))
	}
}

func TestCustomTheme(t *testing.T) {
	pal := codebook.Palette{Background: codebook.White, Foreground: codebook.RGB{R: 10, G: 20, B: 30}}.
		WithClass(codebook.ClassKeyword, codebook.RGB{R: 0xab, G: 0xcd, B: 0xef})
	root := render(t, sampleModel(codebook.DefaultOptions()), codebook.NewTheme("house", pal))
	var keywords int
	for _, span := range elements(root, "span") {
		if attr(span, "class") == "keyword" {
			keywords++
			if attr(span, "style") != "color:#abcdef" {
				t.Fatalf("unexpected keyword style %q", attr(span, "style"))
			}
		}
	}
	if keywords == 0 {
		t.Fatalf("no keyword spans rendered")
	}
	if body := elements(root, "body")[0]; attr(body, "style") != "background-color:#ffffff;color:#0a141e" {
		t.Fatalf("unexpected body style %q", attr(body, "style"))
	}
}

func TestLineNumberColumn(t *testing.T) {
	root := render(t, sampleModel(codebook.DefaultOptions()), nil)
	var numbers []string
	for _, td := range elements(root, "td") {
		if attr(td, "class") == "ln" {
			numbers = append(numbers, textOf(td))
		}
	}
	if strings.Join(numbers, ",") != "1,2,3" {
		t.Fatalf("unexpected line numbers %v", numbers)
	}

	opts := codebook.DefaultOptions()
	opts.LineNumbers = false
	opts.Highlight = false
	root = render(t, sampleModel(opts), nil)
	for _, td := range elements(root, "td") {
		if attr(td, "class") == "ln" {
			t.Fatalf("line numbers drawn when disabled")
		}
	}
	if n := len(elements(root, "span")); n != 0 {
		t.Fatalf("expected no highlight spans, got %d", n)
	}
}

func TestContentPreserved(t *testing.T) {
	doc := sampleModel(codebook.DefaultOptions())
	root := render(t, doc, nil)
	var code []string
	for _, td := range elements(root, "td") {
		if attr(td, "class") == "src" {
			code = append(code, textOf(td))
		}
	}
	want := strings.TrimSuffix(doc.Files()[0].Text, "\n")
	if got := strings.Join(code, "\n"); got != want {
		t.Fatalf("content changed:\n got %q\nwant %q", got, want)
	}
	if !strings.Contains(textOf(root), "[binary file: logo.png (2.0 KiB)]") {
		t.Fatalf("binary placeholder missing")
	}
	if !strings.Contains(textOf(root), "`-- logo.png") {
		t.Fatalf("file tree missing")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderErrors(t *testing.T) {
	doc := sampleModel(codebook.DefaultOptions())
	if _, err := New(Config{}).Render(context.Background(), doc, nil, failingWriter{}); !errors.Is(err, codebook.ErrFatalIO) {
		t.Fatalf("expected fatal i/o, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if _, err := New(Config{}).Render(ctx, doc, nil, &out); !errors.Is(err, codebook.ErrCancelled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("cancelled render wrote %d bytes", out.Len())
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	theme, _ := codebook.ThemeByName("gruvbox")
	var first, second bytes.Buffer
	for _, out := range []*bytes.Buffer{&first, &second} {
		if _, err := New(Config{}).Render(context.Background(), sampleModel(codebook.DefaultOptions()), theme, out); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("two renders of the same model differ")
	}
}

func TestRenderReportsSectionProgress(t *testing.T) {
	doc := sampleModel(codebook.DefaultOptions())
	var done []int
	r := New(Config{Progress: func(d, total int) {
		if total != len(doc.Sections) {
			t.Fatalf("unexpected total %d", total)
		}
		done = append(done, d)
	}})
	var out bytes.Buffer
	if _, err := r.Render(context.Background(), doc, nil, &out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(done) != len(doc.Sections) || done[0] != 1 || done[len(done)-1] != len(doc.Sections) {
		t.Fatalf("unexpected progress %v", done)
	}
}
