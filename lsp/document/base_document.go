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
package document

import (
	"fmt"
	"sync"
	"time"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/lsp/helpers"
)

// Document is one open (or recently-closed) Gren file, per spec §3's
// Document entity: URI, monotone version, rope-backed text, an optional
// current parse tree, and its parse errors. Uses a per-document RWMutex and
// nil-guarded accessors, without any tree-sitter/multi-language machinery,
// since a Gren document has exactly one language.
type Document struct {
	uri     string
	text    *rope.Text
	version int32

	tree       *gren.File
	symbols    []extractor.Symbol
	imports    []extractor.Import
	references []extractor.Reference
	treeStale  bool
	lastParse  time.Time

	mu sync.RWMutex
}

// NewDocument creates a document and performs its first parse, per §4.2's
// open contract ("triggers an immediate parse").
func NewDocument(uri, content string, version int32) *Document {
	d := &Document{
		uri:     uri,
		text:    rope.New(content),
		version: version,
	}
	d.reparseLocked()
	return d
}

func (d *Document) URI() string {
	if d == nil {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.uri
}

func (d *Document) Version() int32 {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text.String()
}

// Tree returns the current parse tree, reparsing first if the text has
// changed since the last parse, per §4.2's "reparse on demand if the tree
// is marked stale" contract.
func (d *Document) Tree() *gren.File {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.treeStale {
		d.reparseLocked()
	}
	return d.tree
}

// ParseErrors returns the current tree's parse errors, reparsing first if
// stale.
func (d *Document) ParseErrors() []gren.ParseError {
	tree := d.Tree()
	if tree == nil {
		return nil
	}
	return tree.Errors
}

// Extracted returns the symbols, imports and references most recently
// derived from this document's tree, reparsing first if stale.
func (d *Document) Extracted() ([]extractor.Symbol, []extractor.Import, []extractor.Reference) {
	if d == nil {
		return nil, nil, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.treeStale {
		d.reparseLocked()
	}
	return d.symbols, d.imports, d.references
}

func (d *Document) reparseLocked() {
	defer func() {
		if r := recover(); r != nil {
			helpers.SafeDebugLog("[DOCUMENT] PANIC during parse of %s: %v", d.uri, r)
		}
	}()
	content := d.text.String()
	d.tree = gren.Parse(content, d.tree)
	d.symbols, d.imports, d.references = extractor.Extract(d.tree, d.uri)
	d.lastParse = time.Now()
	d.treeStale = false
}

// ApplyFullChange replaces the entire document content, per §4.2's
// full-document replacement change shape.
func (d *Document) ApplyFullChange(version int32, newText string) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if version <= d.version {
		return fmt.Errorf("rejecting non-increasing version %d (current %d) for %s", version, d.version, d.uri)
	}
	d.text.Replace(newText)
	d.version = version
	d.treeStale = true
	return nil
}

// ApplyRangeChange applies one incremental range replacement, per §4.2's
// range-replacement change shape. Positions are UTF-16 per the LSP wire
// format; internal/rope performs the UTF-16-correct conversion to byte
// offsets.
func (d *Document) ApplyRangeChange(version int32, r rope.Range, newText string) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if version <= d.version {
		return fmt.Errorf("rejecting non-increasing version %d (current %d) for %s", version, d.version, d.uri)
	}
	d.text.ApplyRange(r, newText)
	d.version = version
	d.treeStale = true
	return nil
}

