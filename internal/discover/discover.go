// Package discover walks a directory and produces pipeline descriptors.
//
// Version control, dependency, build and cache directories are always
// skipped, as are lock files and media, archive, executable and font
// extensions. Every other regular file is described in path order with its
// size, a binary flag from sniffing its leading bytes, and a language tag.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"pkt.systems/codebook"
	"pkt.systems/codebook/pipeline"
	"pkt.systems/codebook/tokenize"
)

var excludedDirs = set(
	".git", ".svn", ".hg",
	".vscode", ".idea", ".vs",
	"target", "dist", "build", "out",
	"node_modules", "vendor", ".cargo",
	".cache", "__pycache__", ".pytest_cache",
)

var excludedFiles = set(
	".gitignore", ".gitmodules", ".gitattributes",
	"package-lock.json", "yarn.lock", "Cargo.lock", "composer.lock", "Gemfile.lock",
	".editorconfig",
	".DS_Store", "Thumbs.db", "desktop.ini",
)

var excludedExtensions = set(
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".svg", ".ico", ".webp",
	".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv",
	".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma",
	".zip", ".tar", ".gz", ".bz2", ".rar", ".7z", ".xz",
	".exe", ".dll", ".so", ".dylib", ".bin", ".app",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".ps",
	".ttf", ".otf", ".woff", ".woff2", ".eot",
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Options narrow a walk beyond the universal excludes.
type Options struct {
	// IgnoreDirs are slash-separated directory paths relative to the root.
	IgnoreDirs []string
	// IgnoreExtensions are extensions such as ".log", with or without dot.
	IgnoreExtensions []string
	// Logger receives unreadable entries at warn level.
	Logger *slog.Logger
}

// Excluded reports whether relPath is dropped by the universal excludes.
func Excluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	parts := strings.Split(relPath, "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := excludedDirs[dir]; ok {
			return true
		}
	}
	name := parts[len(parts)-1]
	if _, ok := excludedFiles[name]; ok {
		return true
	}
	_, ok := excludedExtensions[strings.ToLower(path.Ext(name))]
	return ok
}

// Walk returns descriptors for the files below root, sorted by relative
// path.
func Walk(ctx context.Context, root string, opts Options) ([]pipeline.Descriptor, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: %s is not a directory", root)
	}
	ignoredDirs := make([]string, 0, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if d != "" {
			ignoredDirs = append(ignoredDirs, d)
		}
	}
	ignoredExts := map[string]struct{}{}
	for _, e := range opts.IgnoreExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		ignoredExts[e] = struct{}{}
	}

	var out []pipeline.Descriptor
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err := codebook.CheckContext(ctx); err != nil {
			return err
		}
		if err != nil {
			log.Warn("skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if _, ok := excludedDirs[d.Name()]; ok || underAny(rel, ignoredDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || Excluded(rel) {
			return nil
		}
		if _, ok := ignoredExts[strings.ToLower(path.Ext(rel))]; ok {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			log.Warn("skipping unreadable file", "path", rel, "error", err)
			return nil
		}
		binary, err := sniff(p)
		if err != nil {
			log.Warn("skipping unreadable file", "path", rel, "error", err)
			return nil
		}
		out = append(out, pipeline.Descriptor{
			Path:     p,
			RelPath:  rel,
			Size:     fi.Size(),
			Binary:   binary,
			Language: tokenize.DetectLanguage(rel),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, codebook.ErrCancelled) {
			return nil, err
		}
		return nil, fmt.Errorf("discover: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func underAny(rel string, dirs []string) bool {
	for _, d := range dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	return false
}

func sniff(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()
	buf := make([]byte, codebook.SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return codebook.LooksBinary(buf[:n]), nil
}
