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
package gren_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/gren"
)

func TestParseModuleHeaderAndExposing(t *testing.T) {
	src := "module Main exposing (greeting, Shape(..))\n\ngreeting = \"hi\"\n"
	f := gren.Parse(src, nil)

	require.Equal(t, "Main", f.ModuleName)
	require.False(t, f.ExposingAll)
	require.Contains(t, f.Exposing, "greeting")
	require.Empty(t, f.Errors)
}

func TestParseExposingAll(t *testing.T) {
	f := gren.Parse("module Main exposing (..)\n\nx = 1\n", nil)
	require.True(t, f.ExposingAll)
}

func TestParseFunctionDeclarationWithSignature(t *testing.T) {
	src := `module Main exposing (add)

add : Int -> Int -> Int
add a b =
    a + b
`
	f := gren.Parse(src, nil)
	require.Len(t, f.Decls, 1)
	decl := f.Decls[0]
	require.Equal(t, "add", decl.Name)
	require.Equal(t, gren.DeclFunction, decl.Kind)
	require.Contains(t, decl.Signature, "Int")
	require.True(t, decl.Exported)
}

func TestParseZeroArgValueWithSignatureFoldsToOneDecl(t *testing.T) {
	src := `module Main exposing (greeting)

greeting : String
greeting = "hi"
`
	f := gren.Parse(src, nil)
	require.Len(t, f.Decls, 1)
	decl := f.Decls[0]
	require.Equal(t, "greeting", decl.Name)
	require.Equal(t, gren.DeclFunction, decl.Kind)
	require.Contains(t, decl.Signature, "String")
	require.True(t, decl.Exported)
	require.Empty(t, decl.Params)
}

func TestParseUnionTypeConstructors(t *testing.T) {
	src := `module Main exposing (Shape(..))

type Shape
    = Circle Float
    | Square Float
`
	f := gren.Parse(src, nil)
	require.Len(t, f.Decls, 1)
	decl := f.Decls[0]
	require.Equal(t, gren.DeclUnionType, decl.Kind)
	require.Equal(t, "Shape", decl.Name)
	require.Len(t, decl.Constructors, 2)
	require.Equal(t, "Circle", decl.Constructors[0].Name)
	require.Equal(t, "Square", decl.Constructors[1].Name)
}

func TestParseImports(t *testing.T) {
	src := `module Main exposing (..)

import Dict
import List as L exposing (map, filter)
`
	f := gren.Parse(src, nil)
	require.Len(t, f.Imports, 2)
	require.Equal(t, "Dict", f.Imports[0].ModuleName)
	require.Equal(t, "List", f.Imports[1].ModuleName)
	require.Equal(t, "L", f.Imports[1].Alias)
	require.Contains(t, f.Imports[1].Exposing, "map")
}

func TestParseNeverFailsOnMalformedInput(t *testing.T) {
	src := "module Main exposing (..)\n\nbroken = ( ( (\n"
	f := gren.Parse(src, nil)
	require.NotNil(t, f)
	require.NotEmpty(t, f.Errors, "malformed input should surface a recoverable parse error, not a panic")
}

func TestIsReservedWord(t *testing.T) {
	require.True(t, gren.IsReservedWord("module"))
	require.True(t, gren.IsReservedWord("case"))
	require.False(t, gren.IsReservedWord("greeting"))
}
