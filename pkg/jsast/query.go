package jsast

import (
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// QueryMatcher compiles and caches S-expression tree-sitter queries per
// language, adapted from the teacher's pattern_matcher.go. The import
// extractor (C4) and export analyzer (C5) do not use it: both walk the
// Node tree directly.
type QueryMatcher struct {
	mu    sync.RWMutex
	cache map[string]*sitter.Query
	lang  *sitter.Language
}

// NewQueryMatcher builds a QueryMatcher for the given grammar name
// ("javascript", "typescript", or "tsx").
func NewQueryMatcher(langName string) (*QueryMatcher, error) {
	lang := getLanguage(langName)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, langName)
	}

	return &QueryMatcher{cache: make(map[string]*sitter.Query), lang: lang}, nil
}

// Compile compiles pattern (a tree-sitter S-expression query) once and
// caches the result for subsequent calls with the same pattern.
func (qm *QueryMatcher) Compile(pattern string) (*sitter.Query, error) {
	qm.mu.RLock()
	if q, ok := qm.cache[pattern]; ok {
		qm.mu.RUnlock()

		return q, nil
	}
	qm.mu.RUnlock()

	q, err := sitter.NewQuery(qm.lang, []byte(pattern))
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	qm.mu.Lock()
	qm.cache[pattern] = q
	qm.mu.Unlock()

	return q, nil
}

// Capture is a single named capture from a query match.
type Capture struct {
	Name string
	Node *Node
}

// Match groups together the captures of one query match.
type Match struct {
	Captures []Capture
}

// FindAll runs pattern against root's subtree and returns every match.
// Nodes returned in captures are rebuilt with root's Parent chain so
// callers can still walk .Parent from a capture.
func (qm *QueryMatcher) FindAll(pattern string, root *Node, source []byte) ([]Match, error) {
	query, err := qm.Compile(pattern)
	if err != nil {
		return nil, err
	}

	cursor := sitter.NewQueryCursor()
	matches := cursor.Matches(query, root.raw, source)

	var out []Match

	for {
		m := matches.Next()
		if m == nil {
			break
		}

		var captures []Capture

		for _, cap := range m.Captures {
			if cap.Node.IsNull() {
				continue
			}

			name := query.CaptureNameForID(cap.Index)
			node := findByByteRange(root, cap.Node.StartByte(), cap.Node.EndByte())

			if node == nil {
				node = buildNode(cap.Node, nil, source)
			}

			captures = append(captures, Capture{Name: name, Node: node})
		}

		out = append(out, Match{Captures: captures})
	}

	return out, nil
}

// findByByteRange locates the already-built Node covering [start, end) so
// captures share the same Parent-pointer graph as the rest of the tree.
func findByByteRange(root *Node, start, end uint32) *Node {
	var found *Node

	root.Walk(func(n *Node) bool {
		if n.StartByte == start && n.EndByte == end {
			found = n

			return false
		}

		return n.StartByte <= start && end <= n.EndByte
	})

	return found
}
