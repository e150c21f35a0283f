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
// Package rope holds document text and converts between byte offsets and
// LSP's UTF-16 line/character Positions. A naive conversion that iterates
// runes and increments the character counter by one per rune is wrong for
// any character outside the Basic Multilingual Plane — a surrogate pair is
// two UTF-16 code units but one rune. This package is the one place that
// conversion is done, correctly, for the whole server.
package rope

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a zero-based (line, UTF-16 code-unit) pair, matching the LSP
// wire format exactly so callers can convert protocol.Position <-> Position
// with a field copy.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) pair of Positions.
type Range struct {
	Start Position
	End   Position
}

// Text is a mutable text buffer backed by a plain Go string. The name
// "rope" names the role this type plays (O(log n) positional edits would
// use an actual rope structure); the current implementation favors
// correctness and simplicity and is noted as a deliberate stdlib choice in
// DESIGN.md — a real rope library never appeared anywhere in the retrieval
// pack.
type Text struct {
	content string
}

// New creates a Text buffer from the given initial content.
func New(content string) *Text {
	return &Text{content: content}
}

// String returns the current content.
func (t *Text) String() string {
	return t.content
}

// Len returns the byte length of the current content.
func (t *Text) Len() int {
	return len(t.content)
}

// Replace overwrites the entire buffer, used for full-document didChange
// events (no range supplied).
func (t *Text) Replace(content string) {
	t.content = content
}

// ApplyRange replaces the text in [start, end) with newText. Positions outside the document clamp to the nearest valid offset rather
// than panicking — a client describing an edit past EOF is a protocol
// violation we tolerate defensively (§7: only transport corruption is
// fatal).
func (t *Text) ApplyRange(r Range, newText string) {
	startByte := t.PositionToByteOffset(r.Start)
	endByte := t.PositionToByteOffset(r.End)
	if endByte < startByte {
		startByte, endByte = endByte, startByte
	}
	var b strings.Builder
	b.Grow(len(t.content) - (endByte - startByte) + len(newText))
	b.WriteString(t.content[:startByte])
	b.WriteString(newText)
	b.WriteString(t.content[endByte:])
	t.content = b.String()
}

// PositionToByteOffset converts a UTF-16 Position into a byte offset into
// the current content. Lines beyond EOF clamp to the end of the text;
// characters beyond the end of a line clamp to the line's length.
func (t *Text) PositionToByteOffset(pos Position) int {
	return PositionToByteOffset(t.content, pos)
}

// ByteOffsetToPosition converts a byte offset into the current content into
// a UTF-16 Position.
func (t *Text) ByteOffsetToPosition(offset int) Position {
	return ByteOffsetToPosition(t.content, offset)
}

// PositionToByteOffset is the free-function form, usable against any
// snapshot of text without constructing a Text value (e.g. the extractor
// converts AST byte ranges taken from a parsed snapshot).
func PositionToByteOffset(content string, pos Position) int {
	line := uint32(0)
	lineStart := 0
	for i := 0; i < len(content); {
		if line == pos.Line {
			break
		}
		r, size := utf8.DecodeRuneInString(content[i:])
		if r == '\n' {
			line++
			lineStart = i + size
		}
		i += size
	}
	if line < pos.Line {
		// requested line past EOF
		return len(content)
	}

	units := uint32(0)
	i := lineStart
	for i < len(content) {
		if units >= pos.Character {
			return i
		}
		r, size := utf8.DecodeRuneInString(content[i:])
		if r == '\n' {
			return i
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return i
}

// ByteOffsetToPosition is the free-function form of (*Text).ByteOffsetToPosition.
func ByteOffsetToPosition(content string, offset int) Position {
	if offset > len(content) {
		offset = len(content)
	}
	if offset < 0 {
		offset = 0
	}
	line := uint32(0)
	units := uint32(0)
	i := 0
	for i < offset {
		r, size := utf8.DecodeRuneInString(content[i:])
		if r == '\n' {
			line++
			units = 0
		} else if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return Position{Line: line, Character: units}
}

// Utf16Len returns the number of UTF-16 code units a string encodes to,
// used by callers that need to validate a Position's Character against a
// known line's width without a full buffer.
func Utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
