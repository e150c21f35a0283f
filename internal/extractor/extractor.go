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
// Package extractor derives Symbols, Imports and References from a parsed
// Gren file by walking the parse tree and emitting one entity per
// declaration match, deduplicating by identity key.
package extractor

import (
	"strconv"

	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/rope"
)

// SymbolKind tags the declaration kind of a Symbol, per spec §3's entity
// list: module | type | type-alias | constructor | function | field |
// variable | port.
type SymbolKind string

const (
	KindModule      SymbolKind = "module"
	KindType        SymbolKind = "type"
	KindTypeAlias   SymbolKind = "type-alias"
	KindConstructor SymbolKind = "constructor"
	KindFunction    SymbolKind = "function"
	KindField       SymbolKind = "field"
	KindVariable    SymbolKind = "variable"
	KindPort        SymbolKind = "port"
)

// Symbol is one declaration found in a file.
type Symbol struct {
	Name        string
	Kind        SymbolKind
	URI         string
	Range       rope.Range // identifier token only
	FullRange   rope.Range // the whole declaration
	Container   string     // parent type name for a constructor; "" otherwise
	Signature   string
	DocComment  string
	Exported    bool
}

// Import is one `import` clause.
type Import struct {
	URI         string
	ModuleName  string
	Alias       string
	Exposing    []string
	ExposingAll bool
	Range       rope.Range
}

// Reference is one identifier use site (not a definition).
type Reference struct {
	URI       string
	Range     rope.Range
	Name      string
	Qualifier string
	// ResolvedSymbolKey, when non-empty, is the (uri, kind, name, range)
	// identity of the Symbol this reference was resolved to. Populated by
	// internal/scope during resolution, not by the extractor itself.
	ResolvedSymbolKey string
}

// Extract derives the Symbols, Imports and References for one parsed file,
// per §4.3's contract. uri identifies the file within the workspace.
func Extract(f *gren.File, uri string) ([]Symbol, []Import, []Reference) {
	var symbols []Symbol
	var imports []Import
	var refs []Reference

	seen := map[string]bool{}
	addSymbol := func(s Symbol) {
		key := dedupKey(uri, string(s.Kind), s.Name, s.Range)
		if seen[key] {
			return
		}
		seen[key] = true
		symbols = append(symbols, s)
	}

	if f.ModuleName != "" {
		addSymbol(Symbol{
			Name:      f.ModuleName,
			Kind:      KindModule,
			URI:       uri,
			Range:     f.ModuleNameRange,
			FullRange: f.ModuleNameRange,
			Exported:  true,
		})
	}

	for _, imp := range f.Imports {
		imports = append(imports, Import{
			URI:         uri,
			ModuleName:  imp.ModuleName,
			Alias:       imp.Alias,
			Exposing:    imp.Exposing,
			ExposingAll: imp.ExposingAll,
			Range:       imp.Range,
		})
		for _, name := range imp.Exposing {
			refs = append(refs, Reference{URI: uri, Name: name, Range: imp.ModuleNameRange})
		}
	}

	for _, d := range f.Decls {
		switch d.Kind {
		case gren.DeclFunction:
			addSymbol(Symbol{
				Name:       d.Name,
				Kind:       KindFunction,
				URI:        uri,
				Range:      d.NameRange,
				FullRange:  d.Range,
				Signature:  d.Signature,
				DocComment: d.DocComment,
				Exported:   exported(f, d.Name),
			})
		case gren.DeclPort:
			addSymbol(Symbol{
				Name:       d.Name,
				Kind:       KindPort,
				URI:        uri,
				Range:      d.NameRange,
				FullRange:  d.Range,
				Signature:  d.Signature,
				DocComment: d.DocComment,
				Exported:   exported(f, d.Name),
			})
		case gren.DeclTypeAlias:
			addSymbol(Symbol{
				Name:       d.Name,
				Kind:       KindTypeAlias,
				URI:        uri,
				Range:      d.NameRange,
				FullRange:  d.Range,
				DocComment: d.DocComment,
				Exported:   exported(f, d.Name),
			})
		case gren.DeclUnionType:
			addSymbol(Symbol{
				Name:       d.Name,
				Kind:       KindType,
				URI:        uri,
				Range:      d.NameRange,
				FullRange:  d.Range,
				DocComment: d.DocComment,
				Exported:   exported(f, d.Name),
			})
			for _, c := range d.Constructors {
				addSymbol(Symbol{
					Name:      c.Name,
					Kind:      KindConstructor,
					URI:       uri,
					Range:     c.NameRange,
					FullRange: c.NameRange,
					Container: d.Name,
					Exported:  exported(f, d.Name),
				})
			}
		}

		for _, p := range d.Params {
			refs = append(refs, bindingRef(uri, p))
		}
		for _, l := range d.Locals {
			refs = append(refs, bindingRef(uri, l))
		}
		for _, r := range d.Refs {
			refs = append(refs, Reference{URI: uri, Name: r.Name, Qualifier: r.Qualifier, Range: r.Range})
		}
	}

	return symbols, imports, refs
}

// bindingRef records a Binding (a parameter, let-binding, lambda parameter,
// or case-pattern binder) as a Reference at its own binding site so that
// find-references and rename can treat the binder itself as a use site of
// the local name it introduces.
func bindingRef(uri string, b gren.Binding) Reference {
	return Reference{URI: uri, Name: b.Name, Range: b.NameRange}
}

func exported(f *gren.File, name string) bool {
	if f.ExposingAll {
		return true
	}
	for _, n := range f.Exposing {
		if n == name {
			return true
		}
	}
	return false
}

func dedupKey(uri, kind, name string, r rope.Range) string {
	return uri + "\x00" + kind + "\x00" + name + "\x00" +
		posKey(r.Start) + "\x00" + posKey(r.End)
}

func posKey(p rope.Position) string {
	return strconv.Itoa(int(p.Line)) + ":" + strconv.Itoa(int(p.Character))
}
