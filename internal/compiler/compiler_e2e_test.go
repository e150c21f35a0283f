//go:build e2e

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

package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/compiler"
)

// requires a real `gren` binary on PATH and network access for package
// installation; run with `go test -tags e2e ./internal/compiler/...`.
func TestCompileAgainstRealToolchain(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "gren.json"), []byte(`{
		"type": "application",
		"source-directories": ["src"],
		"gren-version": "0.5.0",
		"dependencies": {"direct": {}, "indirect": {}}
	}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Main.gren"), []byte("module Main exposing (main)\n\nmain = \"hello\"\n"), 0o644))

	d := compiler.New("", 1, 30*time.Second)
	result, err := d.Compile(context.Background(), root, "Main", nil)
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestCompileReportsDiagnosticsForBrokenSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "gren.json"), []byte(`{
		"type": "application",
		"source-directories": ["src"],
		"gren-version": "0.5.0",
		"dependencies": {"direct": {}, "indirect": {}}
	}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Main.gren"), []byte("module Main exposing (main)\n\nmain = undefinedName\n"), 0o644))

	d := compiler.New("", 1, 30*time.Second)
	result, err := d.Compile(context.Background(), root, "Main", nil)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.NotEmpty(t, result.Diagnostics)
}
