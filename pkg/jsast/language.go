// Package jsast wraps tree-sitter JavaScript/TypeScript/TSX parsing (C3)
// behind a small adapter exposing source-located AST nodes, a global
// scope, and its list of unresolved references — the external parser
// contract described in spec.md §6.
package jsast

import (
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

// languageFuncs maps the three supported grammars to their tree-sitter
// GetLanguage constructors. Only JS/TS/TSX are wired; depfix targets one
// C-family scripting language family, unlike the generic multi-language
// UAST parser this package replaces.
var languageFuncs = map[string]func() unsafe.Pointer{}

var languageCache sync.Map

func init() {
	languageFuncs["javascript"] = javascript.GetLanguage
	languageFuncs["typescript"] = typescript.GetLanguage
	languageFuncs["tsx"] = tsx.GetLanguage
}

// getLanguage returns the cached tree-sitter Language for name, or nil.
func getLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// LanguageForFilename maps a filename's extension to a supported grammar
// name, or "" if unsupported.
func LanguageForFilename(filename string) string {
	ext := strings.ToLower(extOf(filename))

	switch ext {
	case ".js", ".mjs", ".cjs", ".jsx":
		return "javascript"
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	default:
		return ""
	}
}

// IsSupported reports whether filename's extension maps to a known grammar.
func IsSupported(filename string) bool {
	return LanguageForFilename(filename) != ""
}

func extOf(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return ""
	}

	return filename[idx:]
}
