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
package fileOperations

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/internal/workspaceops"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// WillRenameFiles handles workspace/willRenameFiles requests: it plans (but
// does not apply) the WorkspaceEdit needed to keep renamed modules' own
// declarations and their importers consistent, per §4.11.
func WillRenameFiles(ctx types.ServerContext, context *glsp.Context, params *protocol.RenameFilesParams) (*protocol.WorkspaceEdit, error) {
	renames := toRenameFiles(params)
	helpers.SafeDebugLog("[FILE_OPERATIONS] willRenameFiles for %d file(s)", len(renames))

	edit, err := workspaceops.PlanFileRename(ctx.RequestContext(), ctx.Index(), ctx.RenamePlanner(), renames, relPathFn(ctx))
	if err != nil {
		helpers.SafeDebugLog("[FILE_OPERATIONS] failed to plan rename: %v", err)
		return nil, err
	}
	return edit, nil
}

// DidRenameFiles handles workspace/didRenameFiles notifications: it
// re-indexes each renamed file under its new URI, since clients that
// reject the willRenameFiles edit (or apply it out of band) may leave the
// Symbol Index pointing at a URI that no longer exists on disk.
func DidRenameFiles(ctx types.ServerContext, context *glsp.Context, params *protocol.RenameFilesParams) error {
	for _, f := range params.Files {
		if err := ctx.Index().Purge(ctx.RequestContext(), f.OldURI); err != nil {
			helpers.SafeDebugLog("[FILE_OPERATIONS] failed to purge old index entry for %s: %v", f.OldURI, err)
		}
		if doc := ctx.Documents().Get(f.NewURI); doc != nil {
			symbols, imports, refs := doc.Extracted()
			if err := ctx.Index().ReplaceFile(ctx.RequestContext(), f.NewURI, symbols, imports, refs); err != nil {
				helpers.SafeDebugLog("[FILE_OPERATIONS] failed to reindex %s: %v", f.NewURI, err)
			}
		}
	}
	return nil
}

func toRenameFiles(params *protocol.RenameFilesParams) []workspaceops.RenameFile {
	out := make([]workspaceops.RenameFile, 0, len(params.Files))
	for _, f := range params.Files {
		out = append(out, workspaceops.RenameFile{OldURI: f.OldURI, NewURI: f.NewURI})
	}
	return out
}

// relPathFn builds the uri->workspace-relative-path function PlanFileRename
// needs, rejecting any URI outside the workspace root.
func relPathFn(ctx types.ServerContext) func(uri string) (string, error) {
	root := ctx.WorkspaceRoot()
	return func(uri string) (string, error) {
		path := workspace.URIToPath(uri)
		rootPath := workspace.URIToPath(workspace.PathToURI(root))
		rel := strings.TrimPrefix(path, rootPath)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" || rel == path {
			return "", fmt.Errorf("%s is outside workspace root %s", uri, root)
		}
		return rel, nil
	}
}
