package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRepo(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "demo")
	files := map[string]string{
		"main.go":        "package main\n\nfunc main() {}\n",
		"lib/util.go":    "package lib\n",
		"vendor/x/x.go":  "package x\n",
		"notes/todo.log": "skip me\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestRunWritesMarkdown(t *testing.T) {
	root := writeRepo(t)
	out := filepath.Join(t.TempDir(), "book.md")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--format", "md", "--ignore-ext", "log", "-o", out, "-q", root}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "# demo") || !strings.Contains(doc, "## lib/util.go") || !strings.Contains(doc, "## main.go") {
		t.Fatalf("unexpected document:\n%s", doc)
	}
	if strings.Contains(doc, "vendor/x/x.go") || strings.Contains(doc, "todo.log") {
		t.Fatalf("excluded files rendered:\n%s", doc)
	}
}

func TestRunToStdout(t *testing.T) {
	root := writeRepo(t)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-f", "html", "-o", "-", "--title", "Custom", root}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "<!DOCTYPE html>") || !strings.Contains(stdout.String(), "<title>Custom</title>") {
		t.Fatalf("unexpected stdout %.80q", stdout.String())
	}
}

func TestRunEnvironmentDefaults(t *testing.T) {
	root := writeRepo(t)
	t.Setenv("CODEBOOK_FORMAT", "markdown")
	t.Setenv("CODEBOOK_TOC", "false")
	out := filepath.Join(t.TempDir(), "env.md")
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-o", out, root}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	data, _ := os.ReadFile(out)
	if strings.Contains(string(data), "Table of Contents") {
		t.Fatalf("table of contents rendered despite CODEBOOK_TOC=false")
	}
	if !strings.Contains(stderr.String(), "wrote "+out) {
		t.Fatalf("missing summary line in %q", stderr.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	cases := [][]string{
		{"--format", "docx"},
		{"--theme", "nope"},
		{"--memory-limit", "lots"},
		{"a", "b"},
		{"--no-such-flag"},
	}
	for _, args := range cases {
		var stdout, stderr bytes.Buffer
		if code := run(context.Background(), args, &stdout, &stderr); code != 2 {
			t.Fatalf("%v: exit %d, want 2 (%s)", args, code, stderr.String())
		}
	}
}

func TestRunListsThemes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--list-themes"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout.String(), "dark\n") || !strings.Contains(stdout.String(), "light\n") {
		t.Fatalf("unexpected theme list %q", stdout.String())
	}
}

func TestRunCancelled(t *testing.T) {
	root := writeRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	if code := run(ctx, []string{"-o", filepath.Join(t.TempDir(), "x.pdf"), root}, &stdout, &stderr); code != 130 {
		t.Fatalf("exit %d, want 130 (%s)", code, stderr.String())
	}
}

func TestParseSize(t *testing.T) {
	cases := map[string]int64{"": 0, "0": 0, "1024": 1024, "2KiB": 2048, "1 MiB": 1 << 20, "10MB": 10_000_000}
	for in, want := range cases {
		got, err := parseSize(in)
		if err != nil || got != want {
			t.Fatalf("parseSize(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parseSize("many"); err == nil {
		t.Fatalf("expected error for invalid size")
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("a/b:c"); got != "a-b-c" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := sanitizeName(" "); got != "codebook" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
