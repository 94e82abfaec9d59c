package pdfinspect

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
)

func buildPDF(t *testing.T, contents []string, compress bool) []byte {
	t.Helper()
	var b bytes.Buffer
	b.WriteString("%PDF-1.3\n")
	kids := ""
	for i := range contents {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	fmt.Fprintf(&b, "1 0 obj\n<</Type /Pages /Kids [%s] /Count %d>>\nendobj\n", kids, len(contents))
	for i, c := range contents {
		page := 3 + 2*i
		fmt.Fprintf(&b, "%d 0 obj\n<</Type /Page /Parent 1 0 R /Contents %d 0 R>>\nendobj\n", page, page+1)
		data := []byte(c)
		filter := ""
		if compress {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			if _, err := zw.Write(data); err != nil {
				t.Fatalf("compress: %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("compress: %v", err)
			}
			data = z.Bytes()
			filter = "/Filter /FlateDecode "
		}
		fmt.Fprintf(&b, "%d 0 obj\n<<%s/Length %d>>\nstream\n", page+1, filter, len(data))
		b.Write(data)
		b.WriteString("\nendstream\nendobj\n")
	}
	b.WriteString("trailer\n<< /Root 2 0 R >>\n%%EOF\n")
	return b.Bytes()
}

func TestPagesInOrder(t *testing.T) {
	for _, compress := range []bool{false, true} {
		data := buildPDF(t, []string{"0 0 m S", "1 g 0 0 10 10 re f"}, compress)
		pages, err := Pages(data)
		if err != nil {
			t.Fatalf("pages (compress=%v): %v", compress, err)
		}
		if len(pages) != 2 || string(pages[0]) != "0 0 m S" || string(pages[1]) != "1 g 0 0 10 10 re f" {
			t.Fatalf("unexpected pages (compress=%v): %q", compress, pages)
		}
	}
}

func TestPagesRejectsGarbage(t *testing.T) {
	if _, err := Pages([]byte("not a pdf")); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}

func TestParseOperators(t *testing.T) {
	content := "0 J 0 j 0.57 w\nBT /F1 10.00 Tf ET\n0.176 g\n0.00 841.89 595.28 -841.89 re f\n" +
		"0.400 0.702 1.000 rg\nBT 36.00 805.89 Td (a\\(b\\) \\\\ \\101) Tj ET\n[(x) 120 (y)] TJ\n"
	ops := Parse([]byte(content))
	var names []string
	for _, op := range ops {
		names = append(names, op.Operator)
	}
	want := "J j w BT Tf ET g re f rg BT Td Tj ET TJ"
	if got := fmt.Sprint(names); got != "["+want+"]" {
		t.Fatalf("unexpected operators %s", got)
	}
	if f := ops[6].Floats(); len(f) != 1 || f[0] != 0.176 {
		t.Fatalf("unexpected gray operands %v", f)
	}
	if r := ops[7].Floats(); len(r) != 4 || r[3] != -841.89 {
		t.Fatalf("unexpected rect operands %v", r)
	}
	if got := ops[12].Text(); got != `a(b) \ A` {
		t.Fatalf("unexpected text %q", got)
	}
	if !ops[8].Paints() || !ops[12].Paints() || ops[9].Paints() {
		t.Fatalf("unexpected paint classification")
	}
	if ops[4].Operands[0] != "/F1" {
		t.Fatalf("expected font name operand, got %v", ops[4].Operands)
	}
}
