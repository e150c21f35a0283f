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
package gren

import "gren-lsp.dev/server/internal/rope"

// Kind classifies a lexical token. Gren's grammar does not need a large
// fixed operator table for our purposes (symbol extraction and reference
// tracking, not evaluation), so operators are lexed generically as Symbol
// and matched by their literal text where it matters (e.g. "->", "=", "|").
type Kind int

const (
	EOF Kind = iota
	IdentLower
	IdentUpper
	Keyword
	Symbol
	String
	Char
	Number
)

// reservedWords is the list of names the rename planner must reject as new
// identifiers, and also the set the lexer classifies as Keyword tokens
// rather than IdentLower.
var reservedWords = map[string]bool{
	"module": true, "import": true, "exposing": true, "as": true,
	"type": true, "alias": true, "port": true,
	"if": true, "then": true, "else": true,
	"let": true, "in": true,
	"when": true, "is": true, "where": true, "case": true,
	"True": true, "False": true,
}

// IsReservedWord reports whether name is one of the glossary's reserved
// keywords or literals, which the Rename Planner (§4.7) must reject as a
// new name.
func IsReservedWord(name string) bool {
	return reservedWords[name]
}

// Token is one lexical unit together with its source range.
type Token struct {
	Kind  Kind
	Text  string
	Range rope.Range
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
}

// Comment is a standalone comment, kept separately from the token stream so
// the parser can associate doc comments with the declaration that follows.
type Comment struct {
	Text  string
	Range rope.Range
	Doc   bool // true for {-| ... -} style doc comments
}
