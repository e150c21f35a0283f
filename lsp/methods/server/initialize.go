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
package server

import (
	"fmt"
	"os"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/version"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Initialize handles the LSP initialize request: it announces the
// capabilities this server supports (§6) and wires the centralized logger
// to the client's window/logMessage channel at init time.
func Initialize(ctx types.ServerContext, context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	fmt.Fprintf(os.Stderr, "gren-lsp server initializing...\n")

	helpers.SetGlobalLoggerContext(context)

	// Disable debug logging to prevent LSP protocol contamination
	helpers.SetDebugLoggingEnabled(false)

	if params.RootURI != nil {
		helpers.SafeDebugLog("[INITIALIZE] LSP client provided root URI: %s", *params.RootURI)
	}
	for i, folder := range params.WorkspaceFolders {
		helpers.SafeDebugLog("[INITIALIZE] LSP client workspace folder %d: %s (%s)", i, folder.URI, folder.Name)
	}

	ctx.SetHoverMarkupKind(negotiateHoverFormat(params.Capabilities))

	openClose := true
	changeKind := protocol.TextDocumentSyncKindIncremental
	serverVersion := version.GetVersion()

	capabilities := protocol.ServerCapabilities{
		HoverProvider: &protocol.HoverOptions{},
		CompletionProvider: &protocol.CompletionOptions{
			// Gren qualified access (Module.name) is the only syntactic form
			// that narrows completion candidates; everything else is
			// identifier-prefix filtering the client already does locally.
			TriggerCharacters: []string{"."},
		},
		DefinitionProvider:      &protocol.DefinitionOptions{},
		ReferencesProvider:      &protocol.ReferenceOptions{},
		DocumentSymbolProvider:  &protocol.DocumentSymbolOptions{},
		WorkspaceSymbolProvider: &protocol.WorkspaceSymbolOptions{},
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: boolPtr(true),
		},
		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{
				protocol.CodeActionKindQuickFix,
			},
		},
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &openClose,
			Change:    &changeKind,
		},
		Workspace: &protocol.ServerCapabilitiesWorkspace{
			FileOperations: &protocol.ServerCapabilitiesWorkspaceFileOperations{
				WillRename: &protocol.FileOperationRegistrationOptions{
					Filters: []protocol.FileOperationFilter{
						{Pattern: protocol.FileOperationPattern{Glob: "**/*.gren"}},
					},
				},
				DidRename: &protocol.FileOperationRegistrationOptions{
					Filters: []protocol.FileOperationFilter{
						{Pattern: protocol.FileOperationPattern{Glob: "**/*.gren"}},
					},
				},
			},
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "gren-lsp",
			Version: &serverVersion,
		},
	}, nil
}

func boolPtr(b bool) *bool { return &b }

// negotiateHoverFormat implements §4.6.3's markup-kind negotiation:
// markdown when the client's hover.contentFormat capability advertises it,
// plaintext otherwise (including when no capabilities were passed).
func negotiateHoverFormat(caps protocol.ClientCapabilities) protocol.MarkupKind {
	if caps.TextDocument == nil || caps.TextDocument.Hover == nil {
		return protocol.MarkupKindPlainText
	}
	for _, format := range caps.TextDocument.Hover.ContentFormat {
		if format == protocol.MarkupKindMarkdown {
			return protocol.MarkupKindMarkdown
		}
	}
	return protocol.MarkupKindPlainText
}
