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
// Package diagnostics merges syntax and semantic diagnostics for
// publication, per §4.9: syntax diagnostics always win; a semantic
// diagnostic is dropped only when it overlaps an error-severity syntax
// diagnostic.
package diagnostics

import protocol "github.com/tliron/glsp/protocol_3_16"

// Diagnostic is one reported problem: range, severity, source tag and
// message. It carries no URI; callers publish diagnostics per document.
type Diagnostic struct {
	Range    protocol.Range
	Severity protocol.DiagnosticSeverity
	Source   string // "syntax" | "gren"
	Message  string
}

// Merge combines syntax diagnostics (always included) with semantic
// diagnostics (included unless they overlap an error-severity syntax
// diagnostic), per §4.9.
func Merge(syntax, semantic []Diagnostic) []Diagnostic {
	merged := make([]Diagnostic, len(syntax))
	copy(merged, syntax)

	for _, sem := range semantic {
		if overlapsErrorSyntax(sem, syntax) {
			continue
		}
		merged = append(merged, sem)
	}
	return merged
}

func overlapsErrorSyntax(d Diagnostic, syntax []Diagnostic) bool {
	for _, s := range syntax {
		if s.Severity != protocol.DiagnosticSeverityError {
			continue
		}
		if RangesOverlap(d.Range, s.Range) {
			return true
		}
	}
	return false
}

// RangesOverlap implements §4.9's inclusive-endpoint interval overlap test:
// for intervals [a,b] and [c,d] (as (line,char) tuples), they overlap iff
// a <= d && c <= b. Exported for reuse by textDocument/codeAction, which
// matches diagnostics against a requested range the same way.
func RangesOverlap(x, y protocol.Range) bool {
	return lessOrEqual(x.Start, y.End) && lessOrEqual(y.Start, x.End)
}

func lessOrEqual(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character <= b.Character
}

// ToProtocol converts a Diagnostic into the protocol shape, attaching the
// source tag glsp expects for client-side grouping.
func ToProtocol(d Diagnostic) protocol.Diagnostic {
	severity := d.Severity
	source := d.Source
	return protocol.Diagnostic{
		Range:    d.Range,
		Severity: &severity,
		Source:   &source,
		Message:  d.Message,
	}
}
