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

	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/cache"
	"gren-lsp.dev/server/internal/compiler"
	"gren-lsp.dev/server/internal/rename"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
	"gren-lsp.dev/server/lsp/document"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Verify Server implements ServerContext, the single context interface every
// method handler depends on (Design Notes §9: "unified context eliminates
// method-specific context interfaces").
var _ types.ServerContext = (*Server)(nil)

func (s *Server) Documents() *document.Manager {
	return s.documents
}

func (s *Server) Index() *symbolindex.Store {
	return s.index
}

func (s *Server) Resolver() *scope.Resolver {
	return s.resolver
}

func (s *Server) RenamePlanner() *rename.Planner {
	return s.renamer
}

func (s *Server) Compiler() *compiler.Driver {
	return s.compilerDriver
}

func (s *Server) WorkspaceVersion() *cache.WorkspaceVersion {
	return s.wsVersion
}

func (s *Server) ReferenceCache() *cache.LRU[[]symbolindex.Location] {
	return s.refCache
}

func (s *Server) TreeCache() *cache.LRU[any] {
	return s.treeCache
}

func (s *Server) Workspace() types.Workspace {
	return s.workspace
}

func (s *Server) WorkspaceRoot() string {
	if s.workspace == nil {
		return ""
	}
	return s.workspace.Root()
}

func (s *Server) RequestContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

func (s *Server) DebugLog(format string, args ...any) {
	helpers.SafeDebugLog(format, args...)
}

func (s *Server) HoverMarkupKind() protocol.MarkupKind {
	if kind, ok := s.hoverFormat.Load().(protocol.MarkupKind); ok {
		return kind
	}
	return protocol.MarkupKindPlainText
}

func (s *Server) SetHoverMarkupKind(kind protocol.MarkupKind) {
	s.hoverFormat.Store(kind)
}
