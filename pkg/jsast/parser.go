package jsast

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	ErrUnsupportedLanguage = errors.New("jsast: unsupported language for filename")
	ErrParse               = errors.New("jsast: parse failed")
)

// Parser wraps tree-sitter parsing for the supported JS/TS/TSX grammars.
// A single Parser is safe for reuse but not for concurrent Parse calls on
// the same instance (it owns one underlying sitter.Parser); callers that
// parse concurrently should construct one Parser per goroutine.
type Parser struct {
	sp sitter.Parser
}

// NewParser constructs a Parser ready to accept SetLanguage/Parse calls.
func NewParser() *Parser {
	return &Parser{sp: *sitter.NewParser()}
}

// Parse parses content as the language implied by filename's extension
// and returns the resulting Tree. Per spec.md §7, a parse error aborts
// the whole invocation.
func (p *Parser) Parse(ctx context.Context, filename string, content []byte) (*Tree, error) {
	langName := LanguageForFilename(filename)
	if langName == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}

	lang := getLanguage(langName)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, langName)
	}

	p.sp.SetLanguage(lang)

	tree, err := p.sp.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	root := tree.RootNode()

	return &Tree{
		Root:   buildNode(root, nil, content),
		Source: content,
	}, nil
}
