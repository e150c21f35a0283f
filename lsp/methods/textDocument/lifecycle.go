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
package textDocument

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/lsp/document"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/methods/textDocument/publishDiagnostics"
	"gren-lsp.dev/server/lsp/types"
)

// DidOpen handles textDocument/didOpen notifications: it opens the document
// (triggering its first parse, §4.2), reindexes it into the Symbol Index,
// advances the workspace version, and publishes diagnostics.
func DidOpen(ctx types.ServerContext, context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[LIFECYCLE] didOpen %s version=%d len=%d", uri, params.TextDocument.Version, len(params.TextDocument.Text))

	doc := ctx.Documents().Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	reindex(ctx, doc)
	ctx.WorkspaceVersion().Advance()
	ctx.ReferenceCache().InvalidateAll()

	if err := publishDiagnostics.PublishDiagnostics(ctx, context, uri); err != nil {
		helpers.SafeDebugLog("[LIFECYCLE] failed to publish diagnostics for %s: %v", uri, err)
	}
	return nil
}

// DidChange handles textDocument/didChange notifications, applying every
// content-change event (full or incremental, per §4.2) through the Document
// Store's UTF-16-correct rope, then reindexing and republishing.
func DidChange(ctx types.ServerContext, context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[LIFECYCLE] didChange %s version=%d changes=%d", uri, params.TextDocument.Version, len(params.ContentChanges))

	changes := make([]document.RangeChange, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		event, ok := c.(protocol.TextDocumentContentChangeEvent)
		if !ok {
			continue
		}
		if event.Range == nil {
			changes = append(changes, document.RangeChange{NewText: event.Text})
			continue
		}
		r := document.ToRopeRange(*event.Range)
		changes = append(changes, document.RangeChange{Range: &r, NewText: event.Text})
	}

	doc, err := ctx.Documents().ApplyChanges(uri, params.TextDocument.Version, changes)
	if err != nil {
		helpers.SafeDebugLog("[LIFECYCLE] failed to apply changes to %s: %v", uri, err)
		return nil
	}

	reindex(ctx, doc)
	ctx.WorkspaceVersion().Advance()
	ctx.ReferenceCache().InvalidateAll()

	if err := publishDiagnostics.PublishDiagnostics(ctx, context, uri); err != nil {
		helpers.SafeDebugLog("[LIFECYCLE] failed to publish diagnostics for %s: %v", uri, err)
	}
	return nil
}

// DidClose handles textDocument/didClose notifications. The Symbol Index
// keeps the file's rows (closing is not deletion, §4.2); only the open-set
// working copy moves to the closed LRU cache.
func DidClose(ctx types.ServerContext, context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ctx.Documents().Close(params.TextDocument.URI)
	return nil
}

// reindex re-extracts doc's symbols/imports/references into the Symbol
// Index, per §4.4's "re-run on every didOpen/didChange" contract.
func reindex(ctx types.ServerContext, doc *document.Document) {
	if doc == nil {
		return
	}
	symbols, imports, refs := doc.Extracted()
	if err := ctx.Index().ReplaceFile(ctx.RequestContext(), doc.URI(), symbols, imports, refs); err != nil {
		helpers.SafeDebugLog("[LIFECYCLE] failed to reindex %s: %v", doc.URI(), err)
	}
}
