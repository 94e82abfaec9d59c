// Package xhtml builds the section markup shared by the HTML and EPUB
// renderers. Every node carries inline styles so a section renders the same
// with or without a stylesheet.
package xhtml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"pkt.systems/codebook"
	"pkt.systems/codebook/document"
)

// Element returns an element node. attrs are key, value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text returns a text node. Invalid UTF-8 and control characters other than
// tab and newline are not representable in XHTML and are dropped.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: Clean(s)}
}

// TextElement returns an element holding a single text node.
func TextElement(tag, text string, attrs ...string) *html.Node {
	n := Element(tag, attrs...)
	n.AppendChild(Text(text))
	return n
}

// Append adds children to parent and returns parent.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

// Clean makes s safe for XML text.
func Clean(s string) string {
	s = strings.ToValidUTF8(s, "�")
	if strings.IndexFunc(s, dropped) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if dropped(r) {
			return -1
		}
		return r
	}, s)
}

func dropped(r rune) bool {
	return r != '\t' && r != '\n' && unicode.IsControl(r)
}

// Builder turns model sections into nodes.
type Builder struct {
	Palette  codebook.Palette
	Options  codebook.Options
	TabWidth int
	// Link returns the href of a section anchor. Nil means "#anchor".
	Link func(anchor string) string
}

// Color is a CSS colour declaration.
func Color(c codebook.RGB) string {
	return "color:" + c.Hex()
}

// PageStyle is the inline style of the element wrapping all sections.
func (b Builder) PageStyle() string {
	return fmt.Sprintf("background-color:%s;color:%s", b.Palette.Background.Hex(), b.Palette.Foreground.Hex())
}

func (b Builder) href(anchor string) string {
	if b.Link != nil {
		return b.Link(anchor)
	}
	return "#" + anchor
}

func (b Builder) heading(tag, text string) *html.Node {
	return TextElement(tag, text, "style", Color(b.Palette.Header))
}

func (b Builder) muted(tag, text string) *html.Node {
	return TextElement(tag, text, "class", "meta", "style", Color(b.Palette.LineNumber))
}

// Section returns the node for section i of doc.
func (b Builder) Section(doc *document.Model, i int) *html.Node {
	s := doc.Sections[i]
	switch s.Kind {
	case document.TitleSection:
		n := Element("section", "id", s.Anchor, "class", "title", "style", "text-align:center")
		Append(n,
			b.heading("h1", s.Title),
			b.muted("p", "Generated "+doc.GeneratedLabel()),
			b.muted("p", doc.Summary()),
		)
		if doc.Author != "" {
			Append(n, b.muted("p", "Author: "+doc.Author))
		}
		return n
	case document.TOCSection:
		n := Element("nav", "id", s.Anchor, "class", "toc")
		list := Element("ol")
		for _, e := range s.Entries {
			item := Element("li")
			Append(item, TextElement("a", e.Title, "href", b.href(e.Anchor), "style", Color(b.Palette.Foreground)))
			Append(list, item)
		}
		return Append(n, b.heading("h2", s.Title), list)
	case document.TreeSection:
		n := Element("section", "id", s.Anchor, "class", "tree")
		var lines []string
		if s.Tree != nil {
			lines = s.Tree.Lines()
		}
		return Append(n, b.heading("h2", s.Title), TextElement("pre", strings.Join(lines, "\n"), "style", "margin:0"))
	default:
		return b.file(s)
	}
}

func (b Builder) file(s document.Section) *html.Node {
	f := s.File
	n := Element("section", "id", s.Anchor, "class", "file")
	Append(n, b.heading("h2", f.RelPath), b.muted("p", f.Summary()))
	if note := f.Placeholder(); note != "" {
		return Append(n, b.muted("p", note))
	}
	tab := b.TabWidth
	if tab <= 0 {
		tab = 4
	}
	table := Element("table", "class", "code",
		"style", "border-collapse:collapse;font-family:monospace;tab-size:"+strconv.Itoa(tab))
	body := Element("tbody")
	for i, tokens := range f.SourceLines() {
		row := Element("tr")
		if b.Options.LineNumbers {
			Append(row, TextElement("td", strconv.Itoa(i+1), "class", "ln",
				"style", "text-align:right;padding-right:1em;user-select:none;vertical-align:top;"+Color(b.Palette.LineNumber)))
		}
		src := Element("td", "class", "src", "style", "white-space:pre-wrap;word-break:break-all")
		for _, tok := range tokens {
			Append(src, b.token(tok))
		}
		Append(body, Append(row, src))
	}
	return Append(n, Append(table, body))
}

func (b Builder) token(tok codebook.Token) *html.Node {
	class := tok.Class
	if !b.Options.Highlight {
		class = codebook.ClassPlain
	}
	if class == codebook.ClassPlain {
		return Text(tok.Text)
	}
	return TextElement("span", tok.Text, "class", class.String(), "style", Color(b.Palette.Color(class)))
}
