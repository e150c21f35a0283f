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
// Package workspace locates and represents the Gren project root that the
// LSP server operates over.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// manifestFile is the file that marks a Gren project root, analogous to
// package.json for npm projects.
const manifestFile = "gren.json"

// Context is the minimal per-session view of the workspace root passed down
// from cmd/ into the LSP server. It intentionally carries nothing about
// manifests, registries, or generated artifacts — those belonged to the
// custom-elements domain this server no longer serves.
type Context struct {
	root string
}

// NewContext wraps an already-resolved absolute directory.
func NewContext(root string) *Context {
	return &Context{root: root}
}

// Root returns the absolute workspace root directory.
func (c *Context) Root() string {
	return c.root
}

// Cleanup releases any resources held by the workspace context. Currently a
// no-op — kept so the server's shutdown path has a stable interface to call,
// matching the lifecycle shape every other workspace-owning component in
// this server follows.
func (c *Context) Cleanup() error {
	return nil
}

// FindRoot searches upward from startPath for the nearest ancestor directory
// (inclusive) containing a gren.json manifest. If none is found, startPath
// itself is returned unchanged so the server can still operate in a
// single-file, manifest-less session.
func FindRoot(startPath string) (string, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, manifestFile)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return abs, nil
}

// URIToPath converts a file:// URI to a local filesystem path. Non-file URIs
// are returned unchanged (the caller decides whether that's an error).
func URIToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// PathToURI converts a local filesystem path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + filepath.ToSlash(path)
}
