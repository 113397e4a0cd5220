// Package lsp provides a Language Server Protocol server exposing
// depfix's import fixer as a "Fix Imports" code action.
package lsp

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/depfix/depfix/pkg/fixer"
)

// fixImportsCommand is the command name carried by the "Fix Imports"
// code action and dispatched from executeCommand.
const fixImportsCommand = "depfix.fixImports"

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string // URI -> content.
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Server implements the import-fixer LSP server.
type Server struct {
	store   *DocumentStore
	fixer   *fixer.Fixer
	handler protocol.Handler
}

// NewServer creates a new import-fixer LSP server with default handlers.
func NewServer(f *fixer.Fixer) *Server {
	srv := &Server{store: NewDocumentStore(), fixer: f}

	srv.handler = protocol.Handler{
		Initialize:              srv.initialize,
		Initialized:             srv.initialized,
		Shutdown:                srv.shutdown,
		SetTrace:                srv.setTrace,
		TextDocumentDidOpen:     srv.didOpen,
		TextDocumentDidChange:   srv.didChange,
		TextDocumentDidSave:     srv.didSave,
		TextDocumentDidClose:    srv.didClose,
		TextDocumentCodeAction:  srv.codeAction,
		WorkspaceExecuteCommand: srv.executeCommand,
	}

	return srv
}

// Run starts the LSP server on stdio.
func (srv *Server) Run() {
	lspServer := server.NewServer(&srv.handler, "depfix", false)

	err := lspServer.RunStdio()
	if err != nil {
		log.Printf("LSP server error: %v", err)
	}
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	version := "0.1.0"

	trueVal := true
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{Commands: []string{fixImportsCommand}}
	capabilities.CodeActionProvider = trueVal

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "depfix",
			Version: &version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.store.Set(params.TextDocument.URI, params.TextDocument.Text)

	return nil
}

func (srv *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	if len(params.ContentChanges) > 0 {
		if change, changeOK := params.ContentChanges[0].(map[string]any); changeOK {
			if text, textOK := change["text"].(string); textOK {
				srv.store.Set(uri, text)
			}
		}
	}

	return nil
}

func (srv *Server) didSave(_ *glsp.Context, _ *protocol.DidSaveTextDocumentParams) error {
	return nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	return nil
}

// codeAction offers a single "Fix Imports" action for the document.
func (srv *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	title := "Fix Imports"
	kind := protocol.CodeActionKindSourceOrganizeImports

	uri := params.TextDocument.URI

	return []protocol.CodeAction{
		{
			Title: title,
			Kind:  &kind,
			Command: &protocol.Command{
				Title:     title,
				Command:   fixImportsCommand,
				Arguments: []any{uri},
			},
		},
	}, nil
}

// executeCommand runs the fixer for the requested document and pushes
// the result back as a workspace edit.
func (srv *Server) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != fixImportsCommand || len(params.Arguments) == 0 {
		return nil, nil
	}

	uri, ok := params.Arguments[0].(string)
	if !ok {
		return nil, nil
	}

	code, ok := srv.store.Get(uri)
	if !ok {
		return nil, nil
	}

	dir, filename := dirAndPathFromURI(uri)

	fixed, err := srv.fixer.Run(context.Background(), dir, filename, code, nil)
	if err != nil {
		return nil, err
	}

	if fixed == code {
		return nil, nil
	}

	edit := fullDocumentEdit(code, fixed)

	ctx.Notify("workspace/applyEdit", &protocol.ApplyWorkspaceEditParams{
		Edit: protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{uri: {edit}},
		},
	})

	srv.store.Set(uri, fixed)

	return nil, nil
}

// fullDocumentEdit builds a single TextEdit replacing the whole
// document, covering every line of original.
func fullDocumentEdit(original, replacement string) protocol.TextEdit {
	lineCount := uint32(strings.Count(original, "\n") + 1)

	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: lineCount, Character: 0},
		},
		NewText: replacement,
	}
}

// dirAndPathFromURI converts a file:// URI into a filesystem path and
// its containing directory.
func dirAndPathFromURI(uri string) (dir, path string) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", uri
	}

	path = parsed.Path

	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		dir = path[:idx]
	}

	return dir, path
}
