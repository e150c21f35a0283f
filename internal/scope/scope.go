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
// Package scope implements Scope & Resolution (§4.5): given a cursor
// position, find the identifier it sits on and resolve it to a unique
// declaring Symbol, or report why it could not be resolved. Grounded on the
// teacher's lsp/methods/textDocument/definition package's "never return
// multiple candidates, resolve deterministically or return null" contract,
// generalized from tag-name lookup to full lexical scoping.
package scope

import (
	"context"
	"strings"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/internal/symbolindex"
)

// Locality classifies how a ResolvedName was found, per §4.5.
type Locality string

const (
	LocalityLocal             Locality = "local"
	LocalityImported          Locality = "imported"
	LocalityWorkspaceFallback Locality = "workspace-fallback"
)

// ResolvedName is the successful result of Resolve.
type ResolvedName struct {
	Name      string
	Qualifier string
	Target    extractor.Symbol
	Locality  Locality
}

// Result is the tagged outcome of Resolve: exactly one of Resolved,
// Unresolved, or NotAName is meaningful.
type Result struct {
	Resolved   *ResolvedName
	Unresolved bool
	NotAName   bool
}

// kernelPrefixes are module-qualifier prefixes that are never user
// navigable, per §4.5 step 3. Gren.Kernel.* is the language's own
// escape-hatch namespace for native implementations; it has no Gren source
// for the index to point at.
var kernelPrefixes = []string{"Gren.Kernel"}

// Resolver looks up a name at a position using the current contents of one
// file (refs and symbols, already extracted and indexed) plus the
// workspace-wide Symbol Index for cross-file lookups.
type Resolver struct {
	Index *symbolindex.Store
}

func New(index *symbolindex.Store) *Resolver {
	return &Resolver{Index: index}
}

// Resolve implements §4.5's algorithm for the identifier (if any) at
// position within uri. fileRefs and fileSymbols are the current file's own
// extracted references and symbols (the "smallest identifier node
// containing position" search operates over these, since both represent
// identifier occurrences with known ranges).
func (r *Resolver) Resolve(ctx context.Context, uri string, position rope.Position, fileRefs []extractor.Reference, fileSymbols []extractor.Symbol, fileImports []extractor.Import) (Result, error) {
	ref, ok := findIdentifierAt(position, fileRefs, fileSymbols)
	if !ok {
		return Result{NotAName: true}, nil
	}

	if ref.Qualifier != "" && isKernelQualifier(ref.Qualifier) {
		return Result{Unresolved: true}, nil
	}

	if ref.Qualifier != "" {
		moduleURI, found, err := r.moduleURI(ctx, matchAliasOrModule(fileImports, ref.Qualifier))
		if err != nil {
			return Result{}, err
		}
		if !found {
			return Result{Unresolved: true}, nil
		}
		candidates, err := r.Index.FindExact(ctx, ref.Name)
		if err != nil {
			return Result{}, err
		}
		candidates = filterByURI(candidates, moduleURI)
		if len(candidates) != 1 {
			return Result{Unresolved: true}, nil
		}
		return Result{Resolved: &ResolvedName{Name: ref.Name, Qualifier: ref.Qualifier, Target: candidates[0], Locality: LocalityImported}}, nil
	}

	// (a) local declarations in the same file.
	var local []extractor.Symbol
	for _, s := range fileSymbols {
		if s.Name == ref.Name {
			local = append(local, s)
		}
	}
	if len(local) == 1 {
		return Result{Resolved: &ResolvedName{Name: ref.Name, Target: local[0], Locality: LocalityLocal}}, nil
	}
	if len(local) > 1 {
		return Result{Unresolved: true}, nil
	}

	// (b) names exposed by imports of this file.
	for _, imp := range fileImports {
		if !imp.ExposingAll && !containsString(imp.Exposing, ref.Name) {
			continue
		}
		moduleURI, found, err := r.moduleURI(ctx, imp.ModuleName)
		if err != nil {
			return Result{}, err
		}
		if !found {
			continue
		}
		candidates, err := r.Index.FindExact(ctx, ref.Name)
		if err != nil {
			return Result{}, err
		}
		candidates = filterByURI(candidates, moduleURI)
		if len(candidates) == 1 {
			return Result{Resolved: &ResolvedName{Name: ref.Name, Target: candidates[0], Locality: LocalityImported}}, nil
		}
	}

	// (c) last resort: unqualified workspace-wide exact match.
	candidates, err := r.Index.FindExact(ctx, ref.Name)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 1 {
		return Result{Resolved: &ResolvedName{Name: ref.Name, Target: candidates[0], Locality: LocalityWorkspaceFallback}}, nil
	}
	return Result{Unresolved: true}, nil
}

func (r *Resolver) moduleURI(ctx context.Context, moduleName string) (string, bool, error) {
	if moduleName == "" {
		return "", false, nil
	}
	mods, err := r.Index.FindExact(ctx, moduleName)
	if err != nil {
		return "", false, err
	}
	for _, m := range mods {
		if m.Kind == extractor.KindModule {
			return m.URI, true, nil
		}
	}
	return "", false, nil
}

func isKernelQualifier(qualifier string) bool {
	for _, prefix := range kernelPrefixes {
		if qualifier == prefix || strings.HasPrefix(qualifier, prefix+".") {
			return true
		}
	}
	return false
}

// matchAliasOrModule returns the imported module name the qualifier refers
// to: either an import's alias or its full module name, per §4.5 step 4.
func matchAliasOrModule(imports []extractor.Import, qualifier string) string {
	for _, imp := range imports {
		if imp.Alias != "" && imp.Alias == qualifier {
			return imp.ModuleName
		}
		if imp.ModuleName == qualifier {
			return imp.ModuleName
		}
	}
	return ""
}

func filterByURI(symbols []extractor.Symbol, uri string) []extractor.Symbol {
	var out []extractor.Symbol
	for _, s := range symbols {
		if s.URI == uri {
			out = append(out, s)
		}
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// findIdentifierAt finds the smallest identifier occurrence (reference or
// symbol name range) containing position, preferring references since a
// position on a binder that is also a use site (e.g. a function name at its
// own declaration) should resolve to itself as a local symbol, not register
// as merely "not a name".
func findIdentifierAt(position rope.Position, refs []extractor.Reference, symbols []extractor.Symbol) (extractor.Reference, bool) {
	var best *extractor.Reference
	for i := range refs {
		if rangeContains(refs[i].Range, position) {
			if best == nil || rangeSmaller(refs[i].Range, best.Range) {
				best = &refs[i]
			}
		}
	}
	if best != nil {
		return *best, true
	}
	for _, s := range symbols {
		if rangeContains(s.Range, position) {
			return extractor.Reference{URI: s.URI, Name: s.Name, Range: s.Range}, true
		}
	}
	return extractor.Reference{}, false
}

func rangeContains(r rope.Range, p rope.Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if r.Start.Line == r.End.Line {
		return p.Character >= r.Start.Character && p.Character <= r.End.Character
	}
	if p.Line == r.Start.Line {
		return p.Character >= r.Start.Character
	}
	if p.Line == r.End.Line {
		return p.Character <= r.End.Character
	}
	return true
}

func rangeSpan(r rope.Range) (lines uint32, chars uint32) {
	return r.End.Line - r.Start.Line, r.End.Character - r.Start.Character
}

func rangeSmaller(a, b rope.Range) bool {
	al, ac := rangeSpan(a)
	bl, bc := rangeSpan(b)
	if al != bl {
		return al < bl
	}
	return ac < bc
}
