package tokenize

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

var extLanguages = map[string]string{
	"rs":       "rust",
	"py":       "python",
	"js":       "javascript",
	"ts":       "typescript",
	"jsx":      "jsx",
	"tsx":      "tsx",
	"html":     "html",
	"htm":      "html",
	"css":      "css",
	"scss":     "scss",
	"sass":     "scss",
	"json":     "json",
	"xml":      "xml",
	"yml":      "yaml",
	"yaml":     "yaml",
	"toml":     "toml",
	"md":       "markdown",
	"markdown": "markdown",
	"sh":       "bash",
	"bash":     "bash",
	"zsh":      "zsh",
	"fish":     "fish",
	"c":        "c",
	"h":        "c",
	"cpp":      "cpp",
	"cc":       "cpp",
	"cxx":      "cpp",
	"c++":      "cpp",
	"hpp":      "cpp",
	"go":       "go",
	"java":     "java",
	"kt":       "kotlin",
	"kts":      "kotlin",
	"swift":    "swift",
	"php":      "php",
	"rb":       "ruby",
	"pl":       "perl",
	"lua":      "lua",
	"r":        "r",
	"sql":      "sql",
	"sol":      "solidity",
	"vy":       "python",
	"move":     "rust",
}

// DetectLanguage returns a language tag for a relative path, or "" when
// nothing matches.
func DetectLanguage(relPath string) string {
	name := path.Base(strings.ReplaceAll(relPath, "\\", "/"))
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, ".env"):
		return "bash"
	case strings.HasPrefix(lower, "dockerfile"):
		return "docker"
	case lower == "makefile" || lower == "gnumakefile":
		return "make"
	}
	if ext := strings.TrimPrefix(path.Ext(lower), "."); ext != "" {
		if lang, ok := extLanguages[ext]; ok {
			return lang
		}
	}
	if lexer := lexers.Match(name); lexer != nil {
		if cfg := lexer.Config(); cfg != nil {
			if len(cfg.Aliases) > 0 {
				return cfg.Aliases[0]
			}
			return strings.ToLower(cfg.Name)
		}
	}
	return ""
}
