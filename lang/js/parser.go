// Package js reconstructs the classes, functions, variables and constants
// of a JavaScript file. Both constructor functions with prototype members
// and ES6 classes produce the same Class and Function records.
package js

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

type frameKind int

const (
	frameFunction frameKind = iota
	frameClass
	// frameProto is the object literal assigned to Name.prototype.
	frameProto
)

type frame struct {
	kind  frameKind
	index int
	depth int
}

// Parser is reusable but not safe for concurrent use.
type Parser struct {
	stripper *scan.Stripper

	res      Result
	text     string
	clean    string
	lines    *scan.LineIndex
	comments scan.Comments
	balance  lang.Balance

	classIndexes    map[string]int
	functionIndexes map[string]int
	variableIndexes map[string]int
	constantIndexes map[string]int
	returnFixed     map[int]bool

	scope     int
	frames    []frame
	pending   *frame
	decl      decl
	win       scan.Window
	stmtStart int
	// asiAt is the offset of a token that starts a statement after an
	// inserted semicolon.
	asiAt int
}

func NewParser() *Parser {
	return &Parser{
		stripper:        newStripper(),
		classIndexes:    make(map[string]int),
		functionIndexes: make(map[string]int),
		variableIndexes: make(map[string]int),
		constantIndexes: make(map[string]int),
		returnFixed:     make(map[int]bool),
	}
}

// Parse parses text with a fresh Parser.
func Parse(text string) Result {
	return NewParser().Parse(text)
}

func (p *Parser) Parse(text string) Result {
	p.res = Result{}
	p.text = text
	p.lines = scan.NewLineIndex(text)
	p.balance.Reset()
	clear(p.classIndexes)
	clear(p.functionIndexes)
	clear(p.variableIndexes)
	clear(p.constantIndexes)
	clear(p.returnFixed)
	p.scope = 0
	p.frames = p.frames[:0]
	p.pending = nil
	p.decl = nil
	p.win.Reset()
	p.stmtStart = -1
	p.asiAt = -1

	p.clean, p.comments = p.stripper.Strip(text)
	sc := scan.NewScanner(tokenPattern, p.clean, 0)
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		p.handle(tok)
	}
	p.handle(scan.Token{Text: ";", Offset: len(text)})

	p.res.Comments = lang.CommentsFromMap(p.comments)
	p.res.Errors = p.balance.Errors(p.lines)
	res := p.res
	p.res = Result{}
	return res
}

func isCommentResidue(t string) bool {
	return t == "/*" || t == "*/" || t == "//"
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

	if p.decl != nil {
		switch p.decl.feed(p, tok) {
		case stepConsume:
			return
		case stepDone:
			p.decl = nil
			return
		case stepPass:
			p.decl = nil
		}
	}

	switch tok.Text {
	case "{":
		p.openBrace()
	case "}":
		p.closeBrace()
	case ";":
		p.pending = nil
	}
	p.dispatch(tok)
}

func (p *Parser) isStatementStart(i int) bool {
	if i > 0 && p.asiAt >= 0 && p.win.At(i-1).Offset == p.asiAt {
		return true
	}
	switch p.win.Text(i) {
	case "", ";", "{", "}":
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
}

func (p *Parser) closeBrace() {
	if p.scope > 0 {
		p.scope--
	}
	for len(p.frames) > 0 && p.frames[len(p.frames)-1].depth > p.scope {
		p.frames = p.frames[:len(p.frames)-1]
	}
	p.pending = nil
}

func (p *Parser) dispatch(tok scan.Token) {
	prev := p.win.Text(1)
	if prev == "." || prev == "?." {
		return
	}
	switch tok.Text {
	case "function":
		d := &functionDecl{state: expectFunction, class: -1, index: -1, start: p.stmtStart}
		if cls, ok := p.body(frameProto); ok && prev == ":" && identPattern.MatchString(p.win.Text(2)) {
			name := p.win.At(2)
			d.name, d.named, d.nameAt = name.Text, true, name.Offset
			d.class, d.start = cls, name.Offset
		}
		p.decl = d
	case "class":
		p.decl = &classDecl{state: expectClass, index: -1, start: p.stmtStart}
	case "var", "let", "const":
		p.decl = &varDecl{constant: tok.Text == "const"}
	case "return":
		if fn := p.currentFunction(); fn >= 0 {
			p.decl = p.returnValue(fn, tok.End())
		}
	case "=":
		p.startAssignment()
	case "(":
		p.startMethod()
	case ";":
		p.classField()
	}
}

// startMethod recognizes "name(" at member position of a class body or a
// prototype object literal.
func (p *Parser) startMethod() {
	cls, ok := p.body(frameClass)
	if !ok {
		if cls, ok = p.body(frameProto); !ok {
			return
		}
	}
	if cls < 0 {
		return
	}
	name := p.win.At(1)
	if !memberPattern.MatchString(name.Text) || name.Text == "function" {
		return
	}
	mods := p.memberModifiers(2)
	if p.frames[len(p.frames)-1].kind == frameProto && !isMemberStart(p.win.Text(mods.next)) {
		return
	}
	d := &functionDecl{
		state:  expectFunctionArgs,
		name:   name.Text,
		nameAt: name.Offset,
		class:  cls,
		static: mods.static,
		index:  -1,
		start:  name.Offset,
		argsAt: p.win.At(0).End(),
		depth:  1,
	}
	d.index = p.declareFunction(d)
	p.decl = d
}

// classField registers "name;" or "static name;" inside a class body.
func (p *Parser) classField() {
	cls, ok := p.body(frameClass)
	if !ok || cls < 0 {
		return
	}
	name := p.win.At(1)
	if !memberPattern.MatchString(name.Text) || keywords[name.Text] {
		return
	}
	mods := p.memberModifiers(2)
	if !isMemberStart(p.win.Text(mods.next)) {
		return
	}
	p.addProperty(cls, name, mods.static)
}

type memberMods struct {
	static bool
	next   int
}

// memberModifiers skips static, async, get, set and * walking back from i.
func (p *Parser) memberModifiers(i int) memberMods {
	var m memberMods
	for ; i < scan.WindowSize; i++ {
		switch p.win.Text(i) {
		case "static":
			m.static = true
		case "async", "get", "set", "*":
		default:
			m.next = i
			return m
		}
	}
	m.next = i
	return m
}

func isMemberStart(t string) bool {
	switch t {
	case "", ";", "{", "}", ",":
		return true
	}
	return false
}

func (p *Parser) startAssignment() {
	t1, t2, t3, t4, t5 := p.win.At(1), p.win.At(2), p.win.At(3), p.win.At(4), p.win.At(5)
	start := p.stmtStart

	// Class field: "name = value" or "static #name = value".
	if cls, ok := p.body(frameClass); ok {
		if cls < 0 || !memberPattern.MatchString(t1.Text) {
			return
		}
		mods := p.memberModifiers(2)
		if !isMemberStart(p.win.Text(mods.next)) {
			return
		}
		vis := visibilityOf(t1.Text)
		p.decl = &valueDecl{
			from: p.win.At(0).End(), start: t1.Offset,
			fnName: t1.Text, fnAt: t1.Offset, fnClass: cls, fnStatic: mods.static, fnVisibility: vis,
			onValue: func(p *Parser, typ, _ string) {
				idx := p.addProperty(cls, t1, mods.static)
				p.setVariableType(idx, typ)
			},
		}
		return
	}

	switch {
	// Name.prototype.method = ...
	case identPattern.MatchString(t1.Text) && t2.Text == "." && t3.Text == "prototype" && t4.Text == "." &&
		identPattern.MatchString(t5.Text) && p.isStatementStart(6):
		cls := p.ensureClass(t5.Text, t5.Offset, start)
		p.decl = &valueDecl{
			from: p.win.At(0).End(), start: start,
			fnName: t1.Text, fnAt: t1.Offset, fnClass: cls,
			onValue: func(p *Parser, typ, _ string) {
				idx := p.addProperty(cls, t1, false)
				p.setVariableType(idx, typ)
			},
		}

	// Name.prototype = { ... } or = new Parent()
	case t1.Text == "prototype" && t2.Text == "." && identPattern.MatchString(t3.Text) && p.isStatementStart(4):
		cls := p.ensureClass(t3.Text, t3.Offset, start)
		p.decl = &valueDecl{
			from: p.win.At(0).End(), start: start, fnClass: -1, isProto: true, proto: cls,
			onValue: func(p *Parser, typ, _ string) {
				if typ != "" && !isLiteralType(typ) && p.res.Classes[cls].Parent == "" {
					p.res.Classes[cls].Parent = typ
				}
			},
		}

	// this.name = ...
	case identPattern.MatchString(t1.Text) && t2.Text == "." && t3.Text == "this" && p.isStatementStart(4):
		cls := p.thisClass()
		if cls < 0 {
			return
		}
		p.decl = &valueDecl{
			from: p.win.At(0).End(), start: start, fnClass: -1,
			onValue: func(p *Parser, typ, _ string) {
				idx := p.addProperty(cls, t1, false)
				p.setVariableType(idx, typ)
			},
		}

	// Name.method = ... on a known class or constructor.
	case identPattern.MatchString(t1.Text) && t2.Text == "." && identPattern.MatchString(t3.Text) && p.isStatementStart(4):
		if !p.isConstructor(t3.Text) {
			return
		}
		cls := p.ensureClass(t3.Text, t3.Offset, start)
		p.decl = &valueDecl{
			from: p.win.At(0).End(), start: start,
			fnName: t1.Text, fnAt: t1.Offset, fnClass: cls, fnStatic: true,
			onValue: func(p *Parser, typ, _ string) {
				idx := p.addProperty(cls, t1, true)
				p.setVariableType(idx, typ)
			},
		}

	// name = ... without a declaration keyword.
	case identPattern.MatchString(t1.Text) && !keywords[t1.Text] && p.isStatementStart(2):
		p.decl = &valueDecl{
			from: p.win.At(0).End(), start: start,
			fnName: t1.Text, fnAt: t1.Offset, fnClass: -1,
			onValue: func(p *Parser, typ, _ string) {
				idx := p.lookupVariable(t1.Text)
				if idx < 0 {
					idx = p.addVariable(Variable{Name: t1.Text, Line: p.lines.Line(t1.Offset)}, -1, -1)
				}
				p.setVariableType(idx, typ)
			},
		}
	}
}

func (p *Parser) returnValue(fn, from int) *valueDecl {
	return &valueDecl{
		from: from, start: from, fnClass: -1,
		onValue: func(p *Parser, typ, _ string) {
			if typ == "" || p.returnFixed[fn] {
				return
			}
			p.res.Functions[fn].ReturnType = typ
			p.returnFixed[fn] = true
		},
	}
}

func visibilityOf(name string) lang.Visibility {
	if strings.HasPrefix(name, "#") {
		return lang.VisibilityPrivate
	}
	return lang.VisibilityNone
}

// body reports whether the scanner sits directly inside a frame of kind,
// and the class it belongs to.
func (p *Parser) body(kind frameKind) (int, bool) {
	if len(p.frames) == 0 {
		return -1, false
	}
	f := p.frames[len(p.frames)-1]
	if f.kind != kind || f.depth != p.scope {
		return -1, false
	}
	return f.index, true
}

// currentFunction returns the innermost function frame's index; -1 inside
// anonymous functions and outside functions.
func (p *Parser) currentFunction() int {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if p.frames[i].kind == frameFunction {
			return p.frames[i].index
		}
	}
	return -1
}

// scopeFunction returns the innermost named function, skipping anonymous
// ones, or -1 at file level.
func (p *Parser) scopeFunction() int {
	for i := len(p.frames) - 1; i >= 0; i-- {
		f := p.frames[i]
		if f.kind == frameFunction && f.index >= 0 {
			return f.index
		}
	}
	return -1
}

// thisClass resolves "this" inside a method or a constructor function.
func (p *Parser) thisClass() int {
	fn := p.currentFunction()
	if fn < 0 {
		return -1
	}
	f := p.res.Functions[fn]
	if f.ClsName != "" {
		return p.classIndexes[f.ClsName]
	}
	if isConstructorName(f.Name) {
		return p.ensureClass(f.Name, -1, -1)
	}
	return -1
}

func (p *Parser) currentClassName() string {
	for i := len(p.frames) - 1; i >= 0; i-- {
		f := p.frames[i]
		switch {
		case f.kind != frameFunction && f.index >= 0:
			return p.res.Classes[f.index].Name
		case f.kind == frameFunction && f.index >= 0:
			fn := p.res.Functions[f.index]
			if fn.ClsName != "" {
				return fn.ClsName
			}
			if _, ok := p.classIndexes[fn.Name]; ok {
				return fn.Name
			}
		}
	}
	return ""
}

// canDeclare reports whether a named function found here is recorded:
// functions nested inside other named functions are not.
func (p *Parser) canDeclare() bool {
	return p.scopeFunction() < 0
}

func isConstructorName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) isConstructor(name string) bool {
	if _, ok := p.classIndexes[name]; ok {
		return true
	}
	_, ok := p.functionIndexes[functionKey("", name)]
	return ok
}
