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

// scanBody walks the token range [start, end) of a function implementation's
// body and collects every local Binding introduced (let-bindings, lambda
// parameters, case-pattern binders) and every identifier Ref used, per the
// enumerated reference/binding-producing forms recorded in SPEC_FULL.md
// §13.2. It does not build a full expression tree: for this server's
// purposes (go-to-definition, find-references, rename) only the binder
// names, use-site names, and qualifiers matter, not expression structure.
func (p *parser) scanBody(start, end int) ([]Binding, []Ref) {
	var locals []Binding
	var refs []Ref

	i := start
	for i < end {
		t := p.tokens[i]
		switch {
		case t.Kind == Symbol && t.Text == "\\":
			i++
			for i < end && !(p.tokens[i].Kind == Symbol && p.tokens[i].Text == "->") {
				if p.tokens[i].Kind == IdentLower {
					locals = append(locals, Binding{Name: p.tokens[i].Text, NameRange: p.tokens[i].Range, Kind: "lambda-param"})
				}
				i++
			}
			if i < end {
				i++ // "->"
			}

		case t.Kind == Keyword && t.Text == "let":
			i++
			depth := 1
			for i < end && depth > 0 {
				if p.tokens[i].Kind == Keyword && p.tokens[i].Text == "let" {
					depth++
				}
				if p.tokens[i].Kind == Keyword && p.tokens[i].Text == "in" {
					depth--
					if depth == 0 {
						i++
						break
					}
				}
				// A let-binding name starts a new source line at this
				// nesting level and is followed eventually by "=".
				if p.isLineStart(i) && p.tokens[i].Kind == IdentLower {
					locals = append(locals, Binding{Name: p.tokens[i].Text, NameRange: p.tokens[i].Range, Kind: "let"})
					i++
					continue
				}
				r, adv := p.refAt(i, end)
				if r != nil {
					refs = append(refs, *r)
				}
				i += adv
			}

		case t.Kind == Keyword && t.Text == "when":
			i++
			// Scrutinee expression up to "is".
			for i < end && !(p.tokens[i].Kind == Keyword && p.tokens[i].Text == "is") {
				r, adv := p.refAt(i, end)
				if r != nil {
					refs = append(refs, *r)
				}
				i += adv
			}
			if i < end {
				i++ // "is"
			}
			i, refs, locals = p.scanCaseBranches(i, end, refs, locals)

		case t.Kind == Keyword && t.Text == "if" || t.Kind == Keyword && t.Text == "then" || t.Kind == Keyword && t.Text == "else":
			i++

		default:
			r, adv := p.refAt(i, end)
			if r != nil {
				refs = append(refs, *r)
			}
			i += adv
		}
	}
	return locals, refs
}

// scanCaseBranches consumes zero or more "pattern -> body" branches of a
// when/is expression. A branch ends, and the next pattern begins, at the
// next token that starts a new source line at bracket depth 0 — an
// approximation of Gren's indentation-sensitive layout rule, since this
// parser does not maintain a full column/indent stack.
func (p *parser) scanCaseBranches(i, end int, refs []Ref, locals []Binding) (int, []Ref, []Binding) {
	for i < end {
		branchStart := i

		// Pattern tokens until "->".
		sawArrow := false
		for i < end {
			t := p.tokens[i]
			if t.Kind == Symbol && t.Text == "->" {
				i++
				sawArrow = true
				break
			}
			if i > branchStart && p.isLineStart(i) {
				// Pattern spilled past one line without an arrow; bail to
				// avoid consuming the next top-level decl.
				return i, refs, locals
			}
			switch {
			case t.Kind == IdentUpper:
				name, consumed := p.dottedNameEndingAt(i)
				lastTok := p.tokens[i+consumed-1]
				refs = append(refs, Ref{Name: name, Range: lastTok.Range})
				i += consumed
			case t.Kind == IdentLower:
				locals = append(locals, Binding{Name: t.Text, NameRange: t.Range, Kind: "case-pattern"})
				i++
			default:
				i++
			}
		}
		if !sawArrow {
			return i, refs, locals
		}

		// Branch body: scan expression tokens until the next line-start
		// token at this nesting level (next pattern) or EOF/end.
		depth := 0
		for i < end {
			t := p.tokens[i]
			if depth == 0 && p.isLineStart(i) {
				break
			}
			switch {
			case t.Kind == Symbol && (t.Text == "(" || t.Text == "[" || t.Text == "{"):
				depth++
			case t.Kind == Symbol && (t.Text == ")" || t.Text == "]" || t.Text == "}"):
				if depth > 0 {
					depth--
				}
			case t.Kind == Keyword && t.Text == "when":
				// A nested when/is inside a branch body: scan the scrutinee
				// expression up to "is", then recurse into branch scanning.
				j := i + 1
				for j < end && !(p.tokens[j].Kind == Keyword && p.tokens[j].Text == "is") {
					r, adv := p.refAt(j, end)
					if r != nil {
						refs = append(refs, *r)
					}
					j += adv
				}
				if j < end {
					j++ // "is"
				}
				next, nestedRefs, nestedLocals := p.scanCaseBranches(j, end, nil, nil)
				refs = append(refs, nestedRefs...)
				locals = append(locals, nestedLocals...)
				i = next
				continue
			}
			r, adv := p.refAt(i, end)
			if r != nil {
				refs = append(refs, *r)
			}
			i += adv
		}

		if i >= end || !p.isLineStart(i) {
			break
		}
	}
	return i, refs, locals
}

// refAt inspects the token at index i and, if it starts an identifier
// reference (qualified or not, including a record field-access receiver),
// returns the Ref and how many tokens to advance past it. Otherwise it
// returns (nil, 1) to skip a single token.
func (p *parser) refAt(i, end int) (*Ref, int) {
	if i >= end {
		return nil, 1
	}
	t := p.tokens[i]

	if t.Kind == IdentUpper {
		_, consumed := p.dottedNameEndingAt(i)
		lastIdx := i + consumed - 1
		last := p.tokens[lastIdx]
		qualifier := ""
		if consumed > 1 {
			qualifier = p.joinDotted(i, lastIdx-2)
		}
		return &Ref{Name: last.Text, Qualifier: qualifier, Range: last.Range}, consumed
	}

	if t.Kind == IdentLower {
		// Record field-access chain: only the receiver identifier is a
		// Ref; trailing ".field" segments are skipped, per SPEC_FULL §12's
		// resolution that field access beyond the receiver is never
		// guessed at statically.
		consumed := 1
		j := i + 1
		for j+1 < end && p.tokens[j].Kind == Symbol && p.tokens[j].Text == "." && p.tokens[j+1].Kind == IdentLower {
			consumed += 2
			j += 2
		}
		return &Ref{Name: t.Text, Range: t.Range}, consumed
	}

	return nil, 1
}

// dottedNameEndingAt consumes a "Upper(.Upper)*(.lower)?" chain starting at
// index i and returns the display name and how many tokens were consumed.
// A qualified value reference like "List.map" ends in a lowerIdent; a bare
// module-qualified constructor like "Color.Red" ends in an upperIdent.
func (p *parser) dottedNameEndingAt(i int) (string, int) {
	consumed := 1
	j := i + 1
	for j+1 < len(p.tokens) && p.tokens[j].Kind == Symbol && p.tokens[j].Text == "." &&
		(p.tokens[j+1].Kind == IdentUpper || p.tokens[j+1].Kind == IdentLower) {
		consumed += 2
		j += 2
		if p.tokens[j-1].Kind == IdentLower {
			break
		}
	}
	return p.tokens[i+consumed-1].Text, consumed
}

func (p *parser) joinDotted(start, end int) string {
	s := ""
	for k := start; k <= end; k++ {
		s += p.tokens[k].Text
	}
	return s
}

// scanRefsUpperAware scans a token range for identifier references without
// tracking let/lambda/case bindings, used for type signatures and type
// alias/union type bodies where only type- and constructor-name references
// matter (no value-level bindings are introduced there).
func (p *parser) scanRefsUpperAware(start, end int) []Ref {
	var refs []Ref
	i := start
	for i < end {
		r, adv := p.refAt(i, end)
		if r != nil {
			refs = append(refs, *r)
		}
		i += adv
	}
	return refs
}
