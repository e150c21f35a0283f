/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package lsp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"gren-lsp.dev/server/internal/cache"
	"gren-lsp.dev/server/internal/compiler"
	"gren-lsp.dev/server/internal/indexer"
	"gren-lsp.dev/server/internal/platform"
	"gren-lsp.dev/server/internal/rename"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/lsp/document"
	"gren-lsp.dev/server/lsp/helpers"
	serverMethods "gren-lsp.dev/server/lsp/methods/server"
	"gren-lsp.dev/server/lsp/methods/textDocument"
	"gren-lsp.dev/server/lsp/methods/textDocument/codeAction"
	"gren-lsp.dev/server/lsp/methods/textDocument/completion"
	"gren-lsp.dev/server/lsp/methods/textDocument/definition"
	"gren-lsp.dev/server/lsp/methods/textDocument/documentSymbol"
	"gren-lsp.dev/server/lsp/methods/textDocument/hover"
	renameMethod "gren-lsp.dev/server/lsp/methods/textDocument/rename"
	"gren-lsp.dev/server/lsp/methods/textDocument/references"
	"gren-lsp.dev/server/lsp/methods/workspace/fileOperations"
	"gren-lsp.dev/server/lsp/methods/workspace/symbol"
)

// TransportKind represents the different LSP transports the server can run
// under, per §6's external interface.
type TransportKind string

const (
	TransportStdio     TransportKind = "stdio"
	TransportTCP       TransportKind = "tcp"
	TransportWebSocket TransportKind = "websocket"
	TransportNodeJS    TransportKind = "nodejs"
)

// CompilerOptions configures the Compiler Driver at server construction
// time, sourced from cmd/root.go's cobra/viper-bound flags (§10's AMBIENT
// STACK configuration section).
type CompilerOptions struct {
	BinaryPath  string
	Concurrency int
	Timeout     time.Duration
}

// Server is the Gren LSP server: it owns the Document Store, Symbol Index,
// Scope Resolver, Rename Planner and Compiler Driver, and wires them to
// glsp's JSON-RPC dispatch. A thin struct of component handles plus a
// *server.Server transport.
type Server struct {
	workspace *workspace.Context

	documents      *document.Manager
	index          *symbolindex.Store
	resolver       *scope.Resolver
	renamer        *rename.Planner
	compilerDriver *compiler.Driver

	wsVersion *cache.WorkspaceVersion
	refCache  *cache.LRU[[]symbolindex.Location]
	treeCache *cache.LRU[any]

	fs      platform.FileSystem
	indexer *indexer.Indexer
	watcher platform.FileWatcher

	ctx    context.Context
	cancel context.CancelFunc

	hoverFormat atomic.Value // protocol.MarkupKind

	server    *server.Server
	transport TransportKind
}

// NewServer creates a Gren LSP server rooted at ws, opening (or creating)
// its persistent symbol index at <root>/.gren-lsp/symbols.db per SPEC_FULL
// §13.3.
func NewServer(ws *workspace.Context, transport TransportKind, compilerOpts CompilerOptions) (*Server, error) {
	// Redirect pterm output to stderr so it never contaminates the LSP
	// stdio JSON-RPC stream.
	pterm.SetDefaultOutput(os.Stderr)

	indexDir := filepath.Join(ws.Root(), ".gren-lsp")
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err := symbolindex.Open(filepath.Join(indexDir, "symbols.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol index: %w", err)
	}

	resolver := scope.New(index)
	ctx, cancel := context.WithCancel(context.Background())
	fs := platform.NewOSFileSystem()

	s := &Server{
		workspace:      ws,
		documents:      document.NewManager(),
		index:          index,
		resolver:       resolver,
		renamer:        rename.New(index, resolver),
		compilerDriver: compiler.New(compilerOpts.BinaryPath, compilerOpts.Concurrency, compilerOpts.Timeout),
		wsVersion:      &cache.WorkspaceVersion{},
		refCache:       cache.NewLRU[[]symbolindex.Location](512, 0),
		treeCache:      cache.NewLRU[any](256, 0),
		fs:             fs,
		indexer:        indexer.New(fs),
		ctx:            ctx,
		cancel:         cancel,
		transport:      transport,
	}
	s.startWatcher()

	handler := protocol.Handler{
		Initialize:                 method(s, "initialize", serverMethods.Initialize),
		Initialized:                notify(s, "initialized", serverMethods.Initialized),
		Shutdown:                   noParam(s, "shutdown", serverMethods.Shutdown),
		SetTrace:                   notify(s, "setTrace", serverMethods.SetTrace),
		TextDocumentHover:          method(s, "textDocument/hover", hover.Hover),
		TextDocumentCompletion:     method(s, "textDocument/completion", completion.Completion),
		TextDocumentDefinition:     method(s, "textDocument/definition", definition.Definition),
		TextDocumentReferences:     method(s, "textDocument/references", references.References),
		TextDocumentCodeAction:     method(s, "textDocument/codeAction", codeAction.CodeAction),
		TextDocumentDocumentSymbol: method(s, "textDocument/documentSymbol", documentSymbol.DocumentSymbol),
		TextDocumentRename:         method(s, "textDocument/rename", renameMethod.Rename),
		TextDocumentDidOpen:        notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:      notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:       notify(s, "textDocument/didClose", textDocument.DidClose),
		WorkspaceSymbol:            method(s, "workspace/symbol", symbol.Symbol),
		WorkspaceWillRenameFiles:   method(s, "workspace/willRenameFiles", fileOperations.WillRenameFiles),
		WorkspaceDidRenameFiles:    notify(s, "workspace/didRenameFiles", fileOperations.DidRenameFiles),
	}

	// Enable glsp's own debug mode only over stdio: stdout is the transport
	// there, so glsp's internal tracing must stay off the wire except when
	// explicitly wanted for local troubleshooting.
	debugMode := transport == TransportStdio
	s.server = server.NewServer(&handler, "gren-lsp", debugMode)

	return s, nil
}

// Run starts the LSP server using the configured transport.
func (s *Server) Run() error {
	helpers.SafeDebugLog("LSP: running with transport: %s", s.transport)

	switch s.transport {
	case TransportStdio:
		return s.server.RunStdio()
	case TransportTCP:
		return s.server.RunTCP("localhost:8080")
	case TransportWebSocket:
		return s.server.RunWebSocket("localhost:8081")
	case TransportNodeJS:
		return s.server.RunNodeJs()
	default:
		return fmt.Errorf("unsupported transport kind: %s", s.transport)
	}
}

// Close cleans up server resources: the request context is cancelled so any
// in-flight compiler invocations observe it, and the symbol index's
// database handle is closed.
func (s *Server) Close() error {
	s.cancel()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			helpers.SafeDebugLog("Warning: error closing file watcher: %v", err)
		}
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			helpers.SafeDebugLog("Warning: error closing symbol index: %v", err)
		}
	}
	return s.workspace.Cleanup()
}

// InitializeForTesting initializes the server without running a transport
// loop, for use in method-level tests that drive handlers directly.
func (s *Server) InitializeForTesting() error {
	return nil
}
