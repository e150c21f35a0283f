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
// Package rename implements the Rename Planner (§4.7): validates a proposed
// new name, collects every reference to the resolved symbol, and produces a
// WorkspaceEdit of identifier-only text replacements. Grounded on the
// teacher's codeAction package's WorkspaceEdit construction pattern
// (protocol.WorkspaceEdit{Changes: map[string][]protocol.TextEdit{...}}).
package rename

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
)

// Planner builds WorkspaceEdits for a validated rename.
type Planner struct {
	Index    *symbolindex.Store
	Resolver *scope.Resolver
}

func New(index *symbolindex.Store, resolver *scope.Resolver) *Planner {
	return &Planner{Index: index, Resolver: resolver}
}

// ValidateName checks newName against §4.7's rejection rules: empty,
// digit-start, whitespace/punctuation (other than '_'), or a reserved
// keyword.
func ValidateName(newName string) error {
	if newName == "" {
		return fmt.Errorf("new name must not be empty")
	}
	first := rune(newName[0])
	if unicode.IsDigit(first) {
		return fmt.Errorf("new name must not start with a digit")
	}
	for _, r := range newName {
		if unicode.IsSpace(r) {
			return fmt.Errorf("new name must not contain whitespace")
		}
		if unicode.IsPunct(r) && r != '_' {
			return fmt.Errorf("new name must not contain punctuation other than '_'")
		}
	}
	if gren.IsReservedWord(newName) {
		return fmt.Errorf("%q is a reserved keyword", newName)
	}
	return nil
}

// Plan resolves the name at position and, if valid and resolvable,
// returns a WorkspaceEdit replacing every reference's identifier range
// (never the surrounding expression) with newName, plus the defining site
// itself. Returns (nil, nil) when renaming is rejected for a reason other
// than name validity (unresolved name, not a name) — callers surface that
// as a no-op rename per §4.7.
func (p *Planner) Plan(ctx context.Context, uri string, position rope.Position, newName string, fileRefs []extractor.Reference, fileSymbols []extractor.Symbol, fileImports []extractor.Import) (*protocol.WorkspaceEdit, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	result, err := p.Resolver.Resolve(ctx, uri, position, fileRefs, fileSymbols, fileImports)
	if err != nil {
		return nil, err
	}
	if result.Resolved == nil {
		return nil, nil
	}
	target := result.Resolved.Target

	locs, err := p.Index.FindReferencesTo(ctx, target, true)
	if err != nil {
		return nil, err
	}

	sort.Slice(locs, func(i, j int) bool {
		if locs[i].URI != locs[j].URI {
			return locs[i].URI < locs[j].URI
		}
		if locs[i].Range.Start.Line != locs[j].Range.Start.Line {
			return locs[i].Range.Start.Line < locs[j].Range.Start.Line
		}
		return locs[i].Range.Start.Character < locs[j].Range.Start.Character
	})

	changes := map[string][]protocol.TextEdit{}
	for _, loc := range locs {
		changes[loc.URI] = append(changes[loc.URI], protocol.TextEdit{
			Range:   toProtocolRange(loc.Range),
			NewText: newName,
		})
	}

	// Renaming a module symbol edits only its identifier occurrences: the
	// returned WorkspaceEdit carries no file-rename operation for the
	// defining file, and DocumentChanges is left empty.
	if target.Kind == extractor.KindModule {
		_ = moduleNameToRelativePath(newName) // computed, not used
	}

	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

func toProtocolRange(r rope.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

// moduleNameToRelativePath mirrors the inverse of internal/workspaceops'
// path-to-module-name conversion (§4.11): "A.B.C" -> "A/B/C.gren".
func moduleNameToRelativePath(moduleName string) string {
	return strings.ReplaceAll(moduleName, ".", "/") + ".gren"
}
