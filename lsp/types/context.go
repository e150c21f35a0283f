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
package types

import (
	"context"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/cache"
	"gren-lsp.dev/server/internal/compiler"
	"gren-lsp.dev/server/internal/rename"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
	"gren-lsp.dev/server/lsp/document"
)

// Workspace describes the single workspace handle's filesystem identity,
// per Design Notes §9 ("single workspace handle, not singletons").
type Workspace interface {
	Root() string
	Cleanup() error
}

// ServerContext provides every dependency an LSP method handler needs. A
// single implementation (the server's own *Server) satisfies this so
// handler functions never reach into global state, following the
// teacher's "unified context eliminates method-specific context
// interfaces" design.
type ServerContext interface {
	// Document Store (§4.2)
	Documents() *document.Manager

	// Symbol Index (§4.4)
	Index() *symbolindex.Store

	// Scope & Resolution (§4.5)
	Resolver() *scope.Resolver

	// Rename Planner (§4.7)
	RenamePlanner() *rename.Planner

	// Compiler Driver (§4.8)
	Compiler() *compiler.Driver

	// Performance Layer (§4.10)
	WorkspaceVersion() *cache.WorkspaceVersion
	ReferenceCache() *cache.LRU[[]symbolindex.Location]
	TreeCache() *cache.LRU[any]

	// Workspace operations
	Workspace() Workspace
	WorkspaceRoot() string

	// RequestContext is the ambient context for the lifetime of the
	// current request, honoring client cancellation per §5.
	RequestContext() context.Context

	// Logging
	DebugLog(format string, args ...any)

	// HoverMarkupKind reports the markup kind hover content should be
	// formatted as, negotiated at initialize time per §4.6.3.
	HoverMarkupKind() protocol.MarkupKind
	// SetHoverMarkupKind records the client's preferred hover markup kind.
	SetHoverMarkupKind(kind protocol.MarkupKind)
}
