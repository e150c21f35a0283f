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

// Package indexer walks a workspace tree through a platform.FileSystem and
// populates the Symbol Index, the logic shared by the startup bootstrap pass
// and the background file watcher's incremental reindex.
package indexer

import (
	"context"
	"path/filepath"
	"strings"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/platform"
	"gren-lsp.dev/server/internal/symbolindex"
	"gren-lsp.dev/server/internal/workspace"
)

// skipDirs names directories a workspace walk never descends into.
var skipDirs = map[string]bool{
	"gren_packages": true,
	".gren-lsp":     true,
	".git":          true,
}

// Indexer indexes Gren sources through a platform.FileSystem rather than the
// os package directly, so the same walk can run against a MapFileSystem in
// tests.
type Indexer struct {
	fs platform.FileSystem
}

// New creates an Indexer reading through fs.
func New(fs platform.FileSystem) *Indexer {
	return &Indexer{fs: fs}
}

// Walk indexes every *.gren file under root, excluding the package
// dependency cache and the server's own index directory.
func (ix *Indexer) Walk(ctx context.Context, root string, index *symbolindex.Store) (indexed, failed int) {
	ix.walkDir(ctx, root, index, &indexed, &failed)
	return indexed, failed
}

func (ix *Indexer) walkDir(ctx context.Context, dir string, index *symbolindex.Store, indexed, failed *int) {
	entries, err := ix.fs.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if skipDirs[entry.Name()] {
				continue
			}
			ix.walkDir(ctx, path, index, indexed, failed)
			continue
		}
		if !strings.HasSuffix(path, ".gren") {
			continue
		}
		if ix.IndexFile(ctx, path, index) {
			*indexed++
		} else {
			*failed++
		}
	}
}

// IndexFile parses path and replaces its rows in index. Used both by Walk
// and by the workspace file watcher's change handler.
func (ix *Indexer) IndexFile(ctx context.Context, path string, index *symbolindex.Store) bool {
	content, err := ix.fs.ReadFile(path)
	if err != nil {
		return false
	}
	uri := workspace.PathToURI(path)
	file := gren.Parse(string(content), nil)
	symbols, imports, refs := extractor.Extract(file, uri)
	return index.ReplaceFile(ctx, uri, symbols, imports, refs) == nil
}

// RemoveFile purges a deleted file's rows from index.
func (ix *Indexer) RemoveFile(ctx context.Context, path string, index *symbolindex.Store) error {
	return index.Purge(ctx, workspace.PathToURI(path))
}
