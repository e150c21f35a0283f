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
// Package workspaceops implements the Workspace Protocol file operations of
// §4.11: converting between a file path and its Gren module name, and
// planning the WorkspaceEdit that willRenameFiles/didRenameFiles must
// produce when a file move implies a module rename (or vice versa).
package workspaceops

import (
	"context"
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/rename"
	"gren-lsp.dev/server/internal/symbolindex"
)

// sourceRoot is the conventional Gren source directory; module names are
// derived relative to it, per gren.json's "source-directories".
const sourceRoot = "src/"

// PathToModuleName converts a workspace-relative file path to the Gren
// module name it would declare, per §4.11: strip the "src/" prefix, drop
// the ".gren" suffix, and join path segments with ".".
func PathToModuleName(relPath string) string {
	p := strings.TrimPrefix(relPath, sourceRoot)
	p = strings.TrimSuffix(p, ".gren")
	p = strings.ReplaceAll(p, "/", ".")
	return p
}

// ModuleNameToPath is the inverse of PathToModuleName.
func ModuleNameToPath(moduleName string) string {
	return sourceRoot + strings.ReplaceAll(moduleName, ".", "/") + ".gren"
}

// RenameFile represents one element of an LSP FileRename notification.
type RenameFile struct {
	OldURI string
	NewURI string
}

// PlanFileRename builds the WorkspaceEdit needed to keep a renamed file's
// module declaration, and every importer's reference to it, consistent with
// its new path. It does not touch the filesystem; the caller applies the
// returned edit via the client (willRenameFiles) or directly (didRenameFiles
// recovery pass).
func PlanFileRename(ctx context.Context, index *symbolindex.Store, planner *rename.Planner, renames []RenameFile, relPath func(uri string) (string, error)) (*protocol.WorkspaceEdit, error) {
	changes := map[string][]protocol.TextEdit{}

	for _, rn := range renames {
		oldRel, err := relPath(rn.OldURI)
		if err != nil {
			return nil, fmt.Errorf("resolving relative path for %s: %w", rn.OldURI, err)
		}
		newRel, err := relPath(rn.NewURI)
		if err != nil {
			return nil, fmt.Errorf("resolving relative path for %s: %w", rn.NewURI, err)
		}
		oldModule := PathToModuleName(oldRel)
		newModule := PathToModuleName(newRel)
		if oldModule == newModule {
			continue
		}

		mods, err := index.FindExact(ctx, oldModule)
		if err != nil {
			return nil, err
		}
		for _, m := range mods {
			if m.Kind != extractor.KindModule || m.URI != rn.OldURI {
				continue
			}
			changes[rn.OldURI] = append(changes[rn.OldURI], protocol.TextEdit{
				Range: protocol.Range{
					Start: protocol.Position{Line: m.Range.Start.Line, Character: m.Range.Start.Character},
					End:   protocol.Position{Line: m.Range.End.Line, Character: m.Range.End.Character},
				},
				NewText: newModule,
			})

			locs, err := index.FindReferencesTo(ctx, m, false)
			if err != nil {
				return nil, err
			}
			for _, loc := range locs {
				changes[loc.URI] = append(changes[loc.URI], protocol.TextEdit{
					Range: protocol.Range{
						Start: protocol.Position{Line: loc.Range.Start.Line, Character: loc.Range.Start.Character},
						End:   protocol.Position{Line: loc.Range.End.Line, Character: loc.Range.End.Character},
					},
					NewText: newModule,
				})
			}
		}
	}

	for uri, edits := range changes {
		sort.Slice(edits, func(i, j int) bool {
			if edits[i].Range.Start.Line != edits[j].Range.Start.Line {
				return edits[i].Range.Start.Line < edits[j].Range.Start.Line
			}
			return edits[i].Range.Start.Character < edits[j].Range.Start.Character
		})
		changes[uri] = edits
	}

	if len(changes) == 0 {
		return nil, nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}
