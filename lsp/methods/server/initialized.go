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
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/indexer"
	"gren-lsp.dev/server/internal/logging"
	"gren-lsp.dev/server/internal/platform"
	"gren-lsp.dev/server/lsp/types"
)

// Initialized handles the LSP initialized notification: it walks the
// workspace for .gren sources and populates the Symbol Index (§4.4) so
// workspace/symbol and cross-file resolution work before any file is
// opened, matching the Rust prototype's startup indexing pass (SPEC_FULL
// §13.3).
func Initialized(ctx types.ServerContext, context *glsp.Context, params *protocol.InitializedParams) error {
	root := ctx.WorkspaceRoot()
	index := ctx.Index()
	if root == "" || index == nil {
		logging.Info("gren-lsp initialized with no workspace root; symbol index starts empty")
		return nil
	}

	ix := indexer.New(platform.NewOSFileSystem())
	indexed, failed := ix.Walk(ctx.RequestContext(), root, index)
	logging.Info("gren-lsp indexed %d Gren source files (%d failed to parse)", indexed, failed)
	logging.Info("gren-lsp is early software. Report issues to the project's issue tracker.")

	return nil
}
