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

import (
	"strings"

	"gren-lsp.dev/server/internal/rope"
)

type parser struct {
	src      string
	tokens   []Token
	comments []Comment
	pos      int
	errors   []ParseError
}

func (p *parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool { return p.cur().Kind == EOF }

func (p *parser) isKeyword(text string) bool {
	t := p.cur()
	return t.Kind == Keyword && t.Text == text
}

func (p *parser) isSymbol(text string) bool {
	t := p.cur()
	return t.Kind == Symbol && t.Text == text
}

// isLineStart reports whether the token at the given index begins a new
// source line (only horizontal whitespace/comments precede it since the
// previous newline). Used to approximate Gren's layout rule for detecting
// where one let-binding or case-branch ends and the next begins, since
// this parser does not track a full indentation stack.
func (p *parser) isLineStart(idx int) bool {
	if idx >= len(p.tokens) {
		return false
	}
	start := p.tokens[idx].Start
	if start == 0 {
		return true
	}
	i := start - 1
	for i >= 0 {
		c := p.src[i]
		if c == '\n' {
			return true
		}
		if c == ' ' || c == '\t' || c == '\r' {
			i--
			continue
		}
		return false
	}
	return true
}

func (p *parser) columnOf(idx int) bool {
	return idx < len(p.tokens) && p.tokens[idx].Range.Start.Character == 0
}

func (p *parser) errf(msg string, r rope.Range) {
	p.errors = append(p.errors, ParseError{Message: msg, Range: r})
}

// parseFile is the entry point: module header, then imports, then
// top-level declarations in source order.
func (p *parser) parseFile() *File {
	f := &File{}

	if p.isKeyword("module") {
		p.parseModuleHeader(f)
	}

	for p.isKeyword("import") {
		f.Imports = append(f.Imports, p.parseImport())
	}

	for !p.atEOF() {
		if !p.columnOf(p.pos) {
			// Not at a recognizable top-level boundary; skip forward to
			// resynchronize rather than looping forever on malformed input.
			p.advance()
			continue
		}
		switch {
		case p.isKeyword("type"):
			f.Decls = append(f.Decls, p.parseTypeDecl())
		case p.isKeyword("port"):
			f.Decls = append(f.Decls, p.parsePortDecl())
		case p.cur().Kind == IdentLower:
			f.Decls = append(f.Decls, p.parseValueDecl())
		default:
			start := p.cur().Range
			p.errf("unexpected token at top level: "+p.cur().Text, start)
			p.advance()
		}
	}

	mergeSignatures(f)
	return f
}

// parseExposingList consumes a balanced "( ... )" exposing clause and
// returns whether it was "(..)" plus the flat list of named items
// otherwise. Constructors' own "(..)" (e.g. "Color(..)") are flattened
// into the parent name for simplicity; this server does not need to
// distinguish "exposing the type but not its constructors" for any
// operation in scope.
func (p *parser) parseExposingList() (all bool, names []string) {
	if !p.isSymbol("(") {
		return false, nil
	}
	p.advance()
	depth := 1
	for !p.atEOF() && depth > 0 {
		t := p.cur()
		switch {
		case t.Kind == Symbol && t.Text == "(":
			depth++
			p.advance()
		case t.Kind == Symbol && t.Text == ")":
			depth--
			p.advance()
		case t.Kind == Symbol && t.Text == "..":
			if depth == 1 {
				all = true
			}
			p.advance()
		case t.Kind == IdentLower || t.Kind == IdentUpper:
			if depth == 1 {
				names = append(names, t.Text)
			}
			p.advance()
		default:
			p.advance()
		}
	}
	return all, names
}

func (p *parser) parseDottedUpperName() (string, rope.Range) {
	start := p.cur()
	parts := []string{}
	first := start.Range.Start
	last := start.Range.End
	for {
		if p.cur().Kind != IdentUpper {
			break
		}
		parts = append(parts, p.cur().Text)
		last = p.cur().Range.End
		p.advance()
		if p.isSymbol(".") && p.peekAt(1).Kind == IdentUpper {
			p.advance()
			continue
		}
		break
	}
	return strings.Join(parts, "."), rope.Range{Start: first, End: last}
}

func (p *parser) parseModuleHeader(f *File) {
	p.advance() // "module"
	name, r := p.parseDottedUpperName()
	f.ModuleName = name
	f.ModuleNameRange = r
	if p.isKeyword("exposing") {
		p.advance()
		all, names := p.parseExposingList()
		f.ExposingAll = all
		f.Exposing = names
	}
}

func (p *parser) parseImport() Import {
	p.advance() // "import"
	name, r := p.parseDottedUpperName()
	imp := Import{ModuleName: name, ModuleNameRange: r, Range: r}
	if p.isKeyword("as") {
		p.advance()
		if p.cur().Kind == IdentUpper {
			imp.Alias = p.cur().Text
			p.advance()
		}
	}
	if p.isKeyword("exposing") {
		p.advance()
		all, names := p.parseExposingList()
		imp.ExposingAll = all
		imp.Exposing = names
	}
	imp.Range.End = p.prevEnd()
	return imp
}

func (p *parser) prevEnd() rope.Position {
	if p.pos == 0 {
		return rope.Position{}
	}
	return p.tokens[p.pos-1].Range.End
}

// consumeUntilNextTopLevel advances p.pos to the next top-level boundary
// (a token at column 0 other than the one at declStart, or EOF) and
// returns that index, the exclusive end of the declaration's tokens.
func (p *parser) consumeUntilNextTopLevel(declStart int) int {
	for !p.atEOF() {
		if p.columnOf(p.pos) && p.pos != declStart {
			break
		}
		p.advance()
	}
	return p.pos
}

func (p *parser) parseTypeDecl() Decl {
	startTok := p.cur()
	startIdx := p.pos
	doc := p.docCommentBefore(startTok)
	p.advance() // "type"

	if p.isKeyword("alias") {
		p.advance()
		name, nameRange := p.parseDottedUpperName()
		d := Decl{Kind: DeclTypeAlias, Name: name, NameRange: nameRange, DocComment: doc, Exported: isExported(name)}
		end := p.consumeUntilNextTopLevel(startIdx)
		d.Range = rope.Range{Start: startTok.Range.Start, End: p.tokens[end-1].Range.End}
		d.Refs = p.scanRefsUpperAware(startIdx+1, end)
		return d
	}

	name, nameRange := p.parseDottedUpperName()
	d := Decl{Kind: DeclUnionType, Name: name, NameRange: nameRange, DocComment: doc, Exported: isExported(name)}

	bodyStart := p.pos
	end := p.consumeUntilNextTopLevel(startIdx)
	d.Range = rope.Range{Start: startTok.Range.Start, End: p.tokens[end-1].Range.End}

	// Constructors follow "=" separated by "|"; each is an IdentUpper at
	// the start of its alternative (ignoring any field-type tokens after
	// it, which we don't need to track for navigation purposes).
	afterEquals := false
	for i := bodyStart; i < end; i++ {
		t := p.tokens[i]
		if !afterEquals {
			if t.Kind == Symbol && t.Text == "=" {
				afterEquals = true
			}
			continue
		}
		if t.Kind == Symbol && t.Text == "|" {
			continue
		}
		if t.Kind == IdentUpper {
			// only constructor heads: a bare "|"-or-"="-preceded Upper ident
			prev := p.tokens[i-1]
			if (prev.Kind == Symbol && (prev.Text == "=" || prev.Text == "|")) {
				d.Constructors = append(d.Constructors, Constructor{Name: t.Text, NameRange: t.Range})
			}
		}
	}
	return d
}

func (p *parser) parsePortDecl() Decl {
	startTok := p.cur()
	startIdx := p.pos
	doc := p.docCommentBefore(startTok)
	p.advance() // "port"
	var name string
	var nameRange rope.Range
	if p.cur().Kind == IdentLower {
		name = p.cur().Text
		nameRange = p.cur().Range
		p.advance()
	}
	end := p.consumeUntilNextTopLevel(startIdx)
	d := Decl{
		Kind:       DeclPort,
		Name:       name,
		NameRange:  nameRange,
		Range:      rope.Range{Start: startTok.Range.Start, End: p.tokens[end-1].Range.End},
		DocComment: doc,
		Exported:   isExported(name),
	}
	d.Signature = cleanSignature(p.src, p.tokens[startIdx:end])
	return d
}

// parseValueDecl handles both a bare type annotation ("name : Type") and a
// function implementation ("name pat1 pat2 = body"). Both are returned as
// Decl values tagged DeclFunction; mergeSignatures pairs them by name
// afterward, per §4.3's "pair by textual name within the same file" rule.
func (p *parser) parseValueDecl() Decl {
	startTok := p.cur()
	startIdx := p.pos
	doc := p.docCommentBefore(startTok)
	name := p.cur().Text
	nameRange := p.cur().Range
	p.advance()

	if p.isSymbol(":") {
		p.advance()
		end := p.consumeUntilNextTopLevel(startIdx)
		sig := cleanSignature(p.src, p.tokens[p.sigStart(startIdx):end])
		return Decl{
			Kind:       DeclFunction,
			Name:       name,
			NameRange:  nameRange,
			Range:      rope.Range{Start: startTok.Range.Start, End: p.tokens[end-1].Range.End},
			DocComment: doc,
			Signature:  sig,
			Exported:   isExported(name),
			Refs:       p.scanRefsUpperAware(startIdx+2, end),
		}
	}

	// Parameter patterns until "=".
	var params []Binding
	for !p.atEOF() && !p.isSymbol("=") {
		if p.columnOf(p.pos) && p.pos != startIdx+1 {
			// Reached the next top-level declaration without finding "=":
			// malformed input (e.g. a signature-only line misclassified).
			break
		}
		params = append(params, p.collectPatternIdents("parameter")...)
	}
	if p.isSymbol("=") {
		p.advance()
	}
	bodyStart := p.pos
	end := p.consumeUntilNextTopLevel(startIdx)

	depth := 0
	for _, t := range p.tokens[bodyStart:end] {
		switch {
		case t.Kind == Symbol && (t.Text == "(" || t.Text == "[" || t.Text == "{"):
			depth++
		case t.Kind == Symbol && (t.Text == ")" || t.Text == "]" || t.Text == "}"):
			depth--
		}
	}
	if depth > 0 {
		p.errf("unclosed bracket", rope.Range{Start: p.tokens[bodyStart].Range.Start, End: p.tokens[end-1].Range.End})
	}

	locals, refs := p.scanBody(bodyStart, end)

	return Decl{
		Kind:       DeclFunction,
		Name:       name,
		NameRange:  nameRange,
		Range:      rope.Range{Start: startTok.Range.Start, End: p.tokens[end-1].Range.End},
		DocComment: doc,
		Params:     params,
		Locals:     locals,
		Refs:       refs,
		Exported:   isExported(name),
	}
}

func (p *parser) sigStart(declStart int) int { return declStart + 2 }

// collectPatternIdents consumes one parameter pattern (a bare identifier,
// "_", or a balanced "{ ... }" / "( ... )" destructuring pattern) and
// returns the bound names within it.
func (p *parser) collectPatternIdents(kind string) []Binding {
	var out []Binding
	t := p.cur()
	switch {
	case t.Kind == IdentLower:
		out = append(out, Binding{Name: t.Text, NameRange: t.Range, Kind: kind})
		p.advance()
	case t.Kind == Symbol && (t.Text == "{" || t.Text == "("):
		closer := "}"
		if t.Text == "(" {
			closer = ")"
		}
		p.advance()
		depth := 1
		for !p.atEOF() && depth > 0 {
			c := p.cur()
			switch {
			case c.Kind == Symbol && (c.Text == "{" || c.Text == "("):
				depth++
				p.advance()
			case c.Kind == Symbol && c.Text == closer:
				depth--
				p.advance()
			case c.Kind == IdentLower:
				out = append(out, Binding{Name: c.Text, NameRange: c.Range, Kind: kind})
				p.advance()
			default:
				p.advance()
			}
		}
	default:
		p.advance()
	}
	return out
}

// docCommentBefore returns the text of a {-| ... -} comment immediately
// preceding (within three lines of) decl, per §4.3's documentation
// association rule.
func (p *parser) docCommentBefore(decl Token) string {
	var best *Comment
	for i := range p.comments {
		c := &p.comments[i]
		if !c.Doc {
			continue
		}
		if c.Range.End.Line > decl.Range.Start.Line {
			continue
		}
		if decl.Range.Start.Line-c.Range.End.Line > 3 {
			continue
		}
		if best == nil || c.Range.Start.Line > best.Range.Start.Line {
			best = c
		}
	}
	if best == nil {
		return ""
	}
	return cleanDocComment(best.Text)
}

func cleanDocComment(raw string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "{-"), "-}")
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "|")
	lines := strings.Split(body, "\n")
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

// cleanSignature joins a multi-line type annotation to one line, collapsing
// internal whitespace runs to single spaces, per §4.3.
func cleanSignature(src string, toks []Token) string {
	var parts []string
	for _, t := range toks {
		parts = append(parts, t.Text)
	}
	joined := strings.Join(parts, " ")
	return strings.Join(strings.Fields(joined), " ")
}

// isExported reports whether name is a plausible exported identifier by
// shape alone; whether it is actually reachable from outside the module
// additionally depends on the file's exposing clause (checked by callers in
// internal/extractor against File.ExposingAll/File.Exposing).
func isExported(name string) bool {
	return name != ""
}

// mergeSignatures pairs a bare type-annotation Decl with the function
// implementation Decl of the same name, attaching the signature text and
// dropping the now-redundant annotation-only Decl, per §4.3's pairing rule.
func mergeSignatures(f *File) {
	sigs := map[string]string{}
	for _, d := range f.Decls {
		if d.Kind == DeclFunction && d.Signature != "" && len(d.Params) == 0 && d.Locals == nil {
			sigs[d.Name] = d.Signature
		}
	}
	var merged []Decl
	for _, d := range f.Decls {
		if d.Kind == DeclFunction && d.Signature != "" && len(d.Params) == 0 && d.Locals == nil {
			if _, hasImpl := findImpl(f.Decls, d.Name); hasImpl {
				continue // drop the annotation-only entry; it's folded into the impl below
			}
		}
		if d.Kind == DeclFunction && d.Signature == "" {
			if sig, ok := sigs[d.Name]; ok {
				d.Signature = sig
			}
		}
		merged = append(merged, d)
	}
	f.Decls = merged
}

// findImpl locates the implementation Decl for name, as opposed to its
// bare type-annotation Decl. An annotation-only Decl always carries a
// non-empty Signature (set in parseValueDecl's ":" branch); the
// implementation Decl never does, even when it has zero params and an
// empty body (a top-level value with no locals). Signature presence, not
// Params/Locals, is what distinguishes the two.
func findImpl(decls []Decl, name string) (Decl, bool) {
	for _, d := range decls {
		if d.Kind == DeclFunction && d.Name == name && d.Signature == "" {
			return d, true
		}
	}
	return Decl{}, false
}
