package js

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

type expect int

const (
	expectNone expect = iota
	expectClass
	expectClassExtended
	expectFunction
	expectFunctionArgs
	expectFunctionBody
)

type step int

const (
	stepConsume step = iota
	stepDone
	stepPass
)

// decl is a declaration in progress; see the php package for the protocol.
// A decl may hand over to another by replacing p.decl and consuming.
type decl interface {
	feed(p *Parser, tok scan.Token) step
}

type functionDecl struct {
	state      expect
	name       string
	named      bool
	nameAt     int
	class      int
	static     bool
	visibility lang.Visibility
	index      int
	start      int
	argsAt     int
	depth      int
}

func (d *functionDecl) feed(p *Parser, tok scan.Token) step {
	switch d.state {
	case expectFunction:
		switch {
		case tok.Text == "*":
			return stepConsume
		case tok.Text == "(":
			d.state = expectFunctionArgs
			d.argsAt = tok.End()
			d.depth = 1
			d.index = p.declareFunction(d)
			return stepConsume
		case !d.named && d.name == "" && identPattern.MatchString(tok.Text):
			d.name = tok.Text
			d.nameAt = tok.Offset
			d.named = true
			return stepConsume
		case d.named && identPattern.MatchString(tok.Text):
			// Named function expression; the assigned name wins.
			return stepConsume
		}
		return stepPass
	case expectFunctionArgs:
		switch tok.Text {
		case "(":
			d.depth++
		case ")":
			d.depth--
			if d.depth == 0 {
				d.state = expectFunctionBody
				p.applyParams(d.index, d.argsAt, tok.Offset)
			}
		}
		return stepConsume
	}
	if tok.Text == "{" {
		p.pending = &frame{kind: frameFunction, index: d.index}
	}
	return stepPass
}

type classDecl struct {
	state  expect
	name   string
	nameAt int
	index  int
	start  int
	parent strings.Builder
	depth  int
}

func (d *classDecl) feed(p *Parser, tok scan.Token) step {
	switch {
	case tok.Text == "{" && d.depth == 0:
		if d.index < 0 && d.name != "" {
			d.index = p.ensureClass(d.name, d.nameAt, d.start)
		}
		if d.index >= 0 && d.parent.Len() > 0 && p.res.Classes[d.index].Parent == "" {
			p.res.Classes[d.index].Parent = d.parent.String()
		}
		p.pending = &frame{kind: frameClass, index: d.index}
		return stepPass
	case tok.Text == ";":
		return stepPass
	}

	switch d.state {
	case expectClass:
		switch {
		case tok.Text == "extends":
			d.state = expectClassExtended
		case identPattern.MatchString(tok.Text) && d.index < 0:
			// An explicit class name wins over the assigned one.
			d.index = p.ensureClass(tok.Text, tok.Offset, d.start)
		default:
			return stepPass
		}
	case expectClassExtended:
		switch tok.Text {
		case "(", "[":
			d.depth++
		case ")", "]":
			d.depth--
		default:
			if d.depth == 0 && (tok.Text == "." || identPattern.MatchString(tok.Text)) {
				d.parent.WriteString(tok.Text)
			}
		}
	}
	return stepConsume
}

// varDecl reads var, let and const declarator lists.
type varDecl struct {
	constant bool
	name     scan.Token
	pattern  int
}

func (d *varDecl) reset() {
	d.name = scan.Token{}
	d.pattern = 0
}

func (d *varDecl) feed(p *Parser, tok scan.Token) step {
	if d.pattern > 0 {
		switch tok.Text {
		case "{", "[":
			d.pattern++
		case "}", "]":
			d.pattern--
		}
		return stepConsume
	}
	switch {
	case d.name.IsZero() && (tok.Text == "{" || tok.Text == "["):
		// Destructuring patterns declare nothing we track.
		d.pattern = 1
		return stepConsume
	case d.name.IsZero() && identPattern.MatchString(tok.Text) && !keywords[tok.Text]:
		d.name = tok
		return stepConsume
	case tok.Text == "=":
		p.decl = d.value(p, tok)
		return stepConsume
	case tok.Text == ",":
		d.commit(p, "", "")
		d.reset()
		return stepConsume
	}
	d.commit(p, "", "")
	return stepPass
}

func (d *varDecl) value(p *Parser, eq scan.Token) *valueDecl {
	name := d.name
	v := &valueDecl{from: eq.End(), start: p.stmtStart, fnClass: -1, next: d}
	if name.IsZero() {
		return v
	}
	v.fnName, v.fnAt = name.Text, name.Offset
	v.onValue = func(p *Parser, typ, value string) {
		d.name = name
		d.commit(p, typ, value)
	}
	return v
}

func (d *varDecl) commit(p *Parser, typ, value string) {
	if d.name.IsZero() {
		return
	}
	if d.constant {
		p.addConstant(d.name, value)
	} else {
		p.setVariableType(p.addLocal(d.name), typ)
	}
	d.name = scan.Token{}
}

// valueDecl reads the right-hand side of an assignment or a return. A
// function, class or arrow function on the right becomes a declaration
// named fnName; anything else is typed and handed to onValue.
type valueDecl struct {
	from  int
	start int

	fnName       string
	fnAt         int
	fnClass      int
	fnStatic     bool
	fnVisibility lang.Visibility

	isProto bool
	proto   int

	onValue func(p *Parser, typ, value string)
	next    *varDecl

	toks     []string
	depth    int
	overflow bool
	first    scan.Token
	paramsAt int
	paramsTo int
}

const maxValueTokens = 8

func (d *valueDecl) push(t string) {
	if len(d.toks) >= maxValueTokens {
		d.overflow = true
		return
	}
	d.toks = append(d.toks, t)
}

func (d *valueDecl) feed(p *Parser, tok scan.Token) step {
	if d.depth == 0 && d.endsAtNewline(p, tok) {
		d.finish(p, tok.Offset)
		p.asiAt, p.stmtStart = tok.Offset, tok.Offset
		return stepPass
	}

	if len(d.toks) == 0 && d.depth == 0 {
		switch tok.Text {
		case "async":
			return stepConsume
		case "function":
			p.decl = d.function(p, expectFunction)
			return stepConsume
		case "class":
			c := &classDecl{state: expectClass, index: -1, start: d.start}
			if d.fnClass < 0 && d.fnName != "" && p.canDeclare() {
				c.name, c.nameAt = d.fnName, d.fnAt
			}
			p.decl = c
			return stepConsume
		case "{":
			if d.isProto {
				p.pending = &frame{kind: frameProto, index: d.proto}
				return stepPass
			}
		}
		d.first = tok
		if tok.Text == "(" {
			d.paramsAt = tok.End()
		}
	}

	switch tok.Text {
	case "(", "[", "{":
		if d.depth == 0 {
			d.push(tok.Text)
		}
		d.depth++
	case ")", "]", "}":
		if d.depth == 0 {
			d.finish(p, tok.Offset)
			return stepPass
		}
		d.depth--
		if d.depth == 0 {
			d.push(tok.Text)
			if tok.Text == ")" && len(d.toks) == 2 && d.paramsAt > 0 {
				d.paramsTo = tok.Offset
			}
		}
	case "=>":
		if d.depth == 0 && d.isArrowHead() {
			return d.arrow(p)
		}
		if d.depth == 0 {
			d.push(tok.Text)
		}
	case ";":
		if d.depth == 0 {
			d.finish(p, tok.Offset)
			return stepPass
		}
	case ",":
		if d.depth == 0 {
			d.finish(p, tok.Offset)
			if d.next != nil {
				d.next.reset()
				p.decl = d.next
				return stepConsume
			}
			return stepPass
		}
	default:
		if d.depth == 0 {
			d.push(tok.Text)
		}
	}
	return stepConsume
}

// endsAtNewline applies automatic semicolon insertion: a value followed by
// a line break and an identifier ends the statement.
func (d *valueDecl) endsAtNewline(p *Parser, tok scan.Token) bool {
	if !identPattern.MatchString(tok.Text) || tok.Text == "instanceof" || tok.Text == "in" || tok.Text == "of" {
		return false
	}
	prev := p.win.At(1)
	if prev.IsZero() || prev.End() > tok.Offset {
		return false
	}
	gap := p.clean[prev.End():tok.Offset]
	if !strings.Contains(gap, "\n") {
		return false
	}
	if strings.TrimSpace(gap) == "" && strings.TrimSpace(p.text[prev.End():tok.Offset]) != "" {
		// A literal ends right before the line break.
		return true
	}
	if len(d.toks) == 0 {
		return false
	}
	switch t := prev.Text; {
	case t == ")" || t == "]" || t == "}":
		return true
	case numberPattern.MatchString(t):
		return true
	case identPattern.MatchString(t):
		return !keywords[t] || t == "this"
	}
	return false
}

func (d *valueDecl) isArrowHead() bool {
	switch len(d.toks) {
	case 1:
		return identPattern.MatchString(d.toks[0]) && !keywords[d.toks[0]]
	case 2:
		return d.toks[0] == "(" && d.toks[1] == ")"
	}
	return false
}

func (d *valueDecl) declarable(p *Parser) bool {
	return d.fnName != "" && (d.fnClass >= 0 || p.canDeclare())
}

func (d *valueDecl) function(p *Parser, state expect) *functionDecl {
	f := &functionDecl{state: state, class: -1, index: -1, start: d.start}
	if d.declarable(p) {
		f.name, f.named, f.nameAt = d.fnName, true, d.fnAt
		f.class, f.static, f.visibility = d.fnClass, d.fnStatic, d.fnVisibility
	} else {
		f.named = true
		if d.onValue != nil {
			d.onValue(p, "Function", "")
		}
	}
	return f
}

func (d *valueDecl) arrow(p *Parser) step {
	f := d.function(p, expectFunctionBody)
	if f.name != "" {
		f.index = p.declareFunction(f)
		if d.paramsAt > 0 {
			p.applyParams(f.index, d.paramsAt, d.paramsTo)
		} else {
			p.applyParams(f.index, d.first.Offset, d.first.End())
		}
	}
	p.decl = &arrowBody{index: f.index}
	return stepConsume
}

func (d *valueDecl) finish(p *Parser, end int) {
	if d.onValue == nil {
		return
	}
	if end < d.from {
		end = d.from
	}
	value := scan.CollapseSpace(p.text[d.from:end])
	typ := ""
	switch {
	case d.overflow:
	case len(d.toks) == 0:
		typ = literalText(value)
	default:
		typ = p.exprType(d.toks)
	}
	d.onValue(p, typ, value)
}

// arrowBody follows "=>": a block opens the function frame, an expression
// body is read as the function's return value.
type arrowBody struct {
	index int
}

func (d *arrowBody) feed(p *Parser, tok scan.Token) step {
	if tok.Text == "{" {
		p.pending = &frame{kind: frameFunction, index: d.index}
		return stepPass
	}
	var body *valueDecl
	if d.index >= 0 {
		body = p.returnValue(d.index, tok.Offset)
	} else {
		body = &valueDecl{from: tok.Offset, fnClass: -1}
	}
	p.decl = body
	return body.feed(p, tok)
}
