// Package php reconstructs the declarations of a PHP file (namespaces,
// imports, classes, functions, variables, constants, comments) in a single
// pass over its tokens. It tolerates incomplete code: anything it cannot
// recognize is skipped, never reported as a failure.
package php

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

type Option func(*Parser)

// WithDataTypes replaces the built-in type name set.
func WithDataTypes(types scan.WordSet) Option {
	return func(p *Parser) {
		p.dataTypes = types
	}
}

type frameKind int

const (
	frameNamespace frameKind = iota
	frameClass
	frameFunction
)

// frame is a construct whose body is open. depth is the scope value inside
// the body; index is -1 for anonymous classes and functions.
type frame struct {
	kind        frameKind
	index       int
	depth       int
	prevNS      string
	prevNSIndex int
}

type modifiers struct {
	visibility lang.Visibility
	static     bool
	abstract   bool
}

// Parser is reusable but not safe for concurrent use.
type Parser struct {
	dataTypes scan.WordSet
	stripper  *scan.Stripper

	res      Result
	text     string
	clean    string
	lines    *scan.LineIndex
	comments scan.Comments
	balance  lang.Balance

	// Namespace and aliases persist across <?php ?> regions of one file.
	ns      string
	nsIndex int
	aliases map[ImportKind]map[string]string

	namespaceIndexes map[string]int
	classIndexes     map[string]int
	functionIndexes  map[string]int
	variableIndexes  map[string]int
	constantIndexes  map[string]int
	returnFixed      map[int]bool

	scope        int
	frames       []frame
	pending      *frame
	decl         decl
	expr         *expr
	mods         modifiers
	win          scan.Window
	stmtStart    int
	lastProperty int
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		stripper: newStripper(),
		aliases: map[ImportKind]map[string]string{
			ImportClass:    {},
			ImportFunction: {},
			ImportConstant: {},
		},
		namespaceIndexes: make(map[string]int),
		classIndexes:     make(map[string]int),
		functionIndexes:  make(map[string]int),
		variableIndexes:  make(map[string]int),
		constantIndexes:  make(map[string]int),
		returnFixed:      make(map[int]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.dataTypes == nil {
		p.dataTypes = DataTypes()
	}
	return p
}

// Parse parses text with a fresh Parser.
func Parse(text string) Result {
	return NewParser().Parse(text)
}

func (p *Parser) Parse(text string) Result {
	p.reset(text)
	p.clean, p.comments = p.stripper.Strip(text)
	for _, r := range regions(p.clean) {
		p.parseCode(r[0], r[1])
	}
	p.res.Comments = lang.CommentsFromMap(p.comments)
	p.res.Errors = p.balance.Errors(p.lines)
	res := p.res
	p.res = Result{}
	return res
}

func (p *Parser) reset(text string) {
	p.res = Result{}
	p.text = text
	p.lines = scan.NewLineIndex(text)
	p.balance.Reset()
	p.ns = ""
	p.nsIndex = -1
	for _, m := range p.aliases {
		clear(m)
	}
	clear(p.namespaceIndexes)
	clear(p.classIndexes)
	clear(p.functionIndexes)
	clear(p.variableIndexes)
	clear(p.constantIndexes)
	clear(p.returnFixed)
}

// regions returns the code spans between open and close tags of the
// cleaned text. A region left open runs to the end of the file.
func regions(clean string) [][2]int {
	var out [][2]int
	pos := 0
	for pos < len(clean) {
		_, codeStart := openTag.Match(clean, pos)
		if codeStart < 0 {
			break
		}
		closeStart, closeEnd := closeTag.Match(clean, codeStart)
		if closeStart < 0 {
			out = append(out, [2]int{codeStart, len(clean)})
			break
		}
		out = append(out, [2]int{codeStart, closeStart})
		pos = closeEnd
	}
	return out
}

func (p *Parser) parseCode(start, end int) {
	p.scope = 0
	p.frames = p.frames[:0]
	p.pending = nil
	p.decl = nil
	p.expr = nil
	p.mods = modifiers{}
	p.win.Reset()
	p.stmtStart = -1
	p.lastProperty = -1

	sc := scan.NewScanner(tokenPattern, p.clean[start:end], start)
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		p.handle(tok)
	}
	// A closing tag ends the statement it follows.
	p.handle(scan.Token{Text: ";", Offset: end})
}

func (p *Parser) handle(tok scan.Token) {
	if isCommentResidue(tok.Text) {
		return
	}
	p.balance.Feed(tok)
	p.win.Push(tok)
	if p.isStatementStart(1) {
		p.stmtStart = tok.Offset
	}
	lower := strings.ToLower(tok.Text)

	if p.decl != nil {
		switch p.decl.feed(p, tok, lower) {
		case stepConsume:
			return
		case stepDone:
			p.decl = nil
			return
		case stepPass:
			p.decl = nil
		}
	}

	consumed := false
	if p.expr != nil {
		consumed = p.expr.feed(p, tok)
	}
	switch tok.Text {
	case "{":
		p.openBrace()
	case "}":
		p.closeBrace()
	case ";":
		p.mods = modifiers{}
		p.pending = nil
	}
	if consumed {
		return
	}
	p.dispatch(tok, lower)
}

// isCommentResidue matches the comment delimiters left in the cleaned text.
func isCommentResidue(t string) bool {
	return t == "/*" || t == "*/" || t == "//"
}

func (p *Parser) isStatementStart(i int) bool {
	switch p.win.Text(i) {
	case "", ";", "{", "}", ":":
		return true
	}
	return false
}

func (p *Parser) openBrace() {
	p.scope++
	if p.pending != nil {
		f := *p.pending
		f.depth = p.scope
		p.frames = append(p.frames, f)
		p.pending = nil
	}
	p.mods = modifiers{}
}

func (p *Parser) closeBrace() {
	if p.scope > 0 {
		p.scope--
	}
	for len(p.frames) > 0 {
		f := p.frames[len(p.frames)-1]
		if f.depth <= p.scope {
			break
		}
		p.frames = p.frames[:len(p.frames)-1]
		if f.kind == frameNamespace {
			p.ns, p.nsIndex = f.prevNS, f.prevNSIndex
		}
	}
	p.mods = modifiers{}
	p.pending = nil
}

func (p *Parser) dispatch(tok scan.Token, lower string) {
	prev := p.win.Text(1)
	member := prev == "->" || prev == "::" || prev == "?->"
	switch lower {
	case "namespace":
		if p.stmtStart == tok.Offset {
			p.decl = &namespaceDecl{state: expectNamespace}
		}
	case "use":
		p.startUse(tok)
	case "public", "protected", "private":
		if !member {
			p.mods.visibility, _ = lang.ParseVisibility(lower)
		}
	case "var":
		p.mods.visibility = lang.VisibilityPublic
	case "static":
		if !member && prev != "new" {
			p.mods.static = true
		}
	case "abstract":
		p.mods.abstract = true
	case "class":
		switch {
		case member:
		case strings.EqualFold(prev, "new"):
			p.decl = &classDecl{anonymous: true, index: -1}
		default:
			p.decl = &classDecl{state: expectClass, index: -1, abstract: p.mods.abstract}
		}
	case "interface":
		if !member {
			p.decl = &classDecl{state: expectInterface, index: -1}
		}
	case "trait":
		if !member {
			p.decl = &classDecl{state: expectTrait, index: -1}
		}
	case "enum":
		if p.stmtStart == tok.Offset {
			p.decl = &classDecl{state: expectClass, index: -1, enum: true}
		}
	case "function":
		if !member {
			p.decl = &functionDecl{state: expectFunction, index: -1, argsAt: -1, mods: p.mods, start: p.stmtStart}
		}
	case "const":
		if !member {
			cls, ok := p.classBody()
			if !ok {
				cls = -1
			}
			p.decl = &constDecl{state: expectConst, class: cls}
		}
	case "case":
		if cls, ok := p.classBody(); ok && cls >= 0 && p.res.Classes[cls].IsEnum {
			p.decl = &constDecl{state: expectConst, class: cls, enumCase: true}
		}
	case "global":
		p.decl = &varListDecl{}
	case "return":
		if fn := p.currentFunction(); fn >= 0 {
			p.expr = &expr{target: targetReturn, index: fn, from: tok.End()}
		}
	case "=":
		p.startAssignment()
	default:
		if variableNamePattern.MatchString(tok.Text) {
			p.variableToken(tok)
		}
	}
}

func (p *Parser) startUse(tok scan.Token) {
	if p.win.Text(1) == ")" {
		return
	}
	if cls, ok := p.classBody(); ok {
		if cls >= 0 {
			p.decl = &traitUseDecl{class: cls}
		}
		return
	}
	if p.stmtStart == tok.Offset && !p.inFunction() {
		p.decl = &useDecl{state: expectUse, item: expectUse}
	}
}

func (p *Parser) variableToken(tok scan.Token) {
	name := tok.Text
	if name == "$this" {
		return
	}
	if cls, ok := p.classBody(); ok {
		if cls < 0 {
			return
		}
		p.lastProperty = p.addVariable(Variable{
			Name:       name,
			ClsName:    p.res.Classes[cls].Name,
			IsStatic:   p.mods.static,
			Visibility: p.mods.visibility,
			Type:       p.typeBefore(1),
			Line:       p.lines.Line(tok.Offset),
		}, cls, -1)
		return
	}

	typ := ""
	t1, t2, t3 := p.win.At(1), p.win.At(2), p.win.At(3)
	switch {
	case t1.Text == "as", t1.Text == "&" && t2.Text == "as":
	case t1.Text == "=>" && variableNamePattern.MatchString(t2.Text) && t3.Text == "as":
	case strings.EqualFold(t1.Text, "static") && p.stmtStart == t1.Offset && p.inFunction():
	case strings.EqualFold(t3.Text, "catch") && t2.Text == "(" && classNamePattern.MatchString(t1.Text):
		typ = p.toAbs(t1.Text, ImportClass)
	default:
		return
	}
	p.addLocalVariable(name, typ, tok.Offset)
}

func (p *Parser) startAssignment() {
	t1 := p.win.At(1)
	switch {
	case variableNamePattern.MatchString(t1.Text) && t1.Text != "$this":
		if _, ok := p.classBody(); ok {
			if p.lastProperty >= 0 && p.res.Variables[p.lastProperty].Name == t1.Text {
				p.expr = &expr{target: targetVariable, index: p.lastProperty, property: true, from: p.win.At(0).End()}
			}
			return
		}
		if !p.isStatementStart(2) {
			return
		}
		if idx := p.addLocalVariable(t1.Text, "", t1.Offset); idx >= 0 {
			p.expr = &expr{target: targetVariable, index: idx, from: p.win.At(0).End()}
		}
	case identPattern.MatchString(t1.Text) && p.win.Text(2) == "->" && p.win.Text(3) == "$this" && p.isStatementStart(4):
		cls := p.currentClass()
		if cls < 0 {
			return
		}
		key := variableKey(p.res.Classes[cls].Name, "", "$"+t1.Text)
		if idx, ok := p.variableIndexes[key]; ok {
			p.expr = &expr{target: targetVariable, index: idx, from: p.win.At(0).End()}
		}
	}
}

// typeBefore collects the type declaration written before the token i steps
// back, skipping nothing else: "?Foo", "int|string", or "" when absent.
func (p *Parser) typeBefore(i int) string {
	var parts []string
	for ; i < scan.WindowSize; i++ {
		t := p.win.Text(i)
		if t == "?" || t == "|" || t == "&" || t == "(" || t == ")" {
			parts = append(parts, t)
			continue
		}
		if !classNamePattern.MatchString(t) || isModifier(strings.ToLower(t)) {
			break
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return ""
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return p.resolveTypeExpr(strings.Join(parts, ""))
}

func isModifier(word string) bool {
	switch word {
	case "public", "protected", "private", "static", "var", "readonly", "final", "abstract", "const":
		return true
	}
	return false
}

// classBody reports whether the scanner sits directly inside a class body,
// and which class (-1 for an anonymous one).
func (p *Parser) classBody() (int, bool) {
	if len(p.frames) == 0 {
		return -1, false
	}
	f := p.frames[len(p.frames)-1]
	if f.kind != frameClass || f.depth != p.scope {
		return -1, false
	}
	return f.index, true
}

// currentClass returns the innermost enclosing class, or -1.
func (p *Parser) currentClass() int {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].kind == frameClass {
			return p.frames[i].index
		}
	}
	return -1
}

func (p *Parser) currentClassName() string {
	if cls := p.currentClass(); cls >= 0 {
		return p.res.Classes[cls].Name
	}
	return ""
}

// currentFunction returns the innermost named function whose body encloses
// the scanner, or -1 (also inside closures and class bodies).
func (p *Parser) currentFunction() int {
	if len(p.frames) == 0 {
		return -1
	}
	f := p.frames[len(p.frames)-1]
	if f.kind != frameFunction {
		return -1
	}
	return f.index
}

func (p *Parser) inFunction() bool {
	for _, f := range p.frames {
		if f.kind == frameFunction {
			return true
		}
	}
	return false
}
