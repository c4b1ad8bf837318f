package php

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang/scan"
)

// expect names the part of a declaration the parser is waiting for.
type expect int

const (
	expectNone expect = iota
	expectNamespace
	expectUse
	expectUseFunction
	expectUseConstant
	expectClass
	expectClassExtended
	expectClassExtendedImplemented
	expectClassImplemented
	expectInterface
	expectInterfaceExtended
	expectTrait
	expectFunction
	expectFunctionArgs
	expectFunctionReturnType
	expectConst
	expectConstValue
)

// step is a declaration's verdict on one token.
type step int

const (
	// stepConsume keeps the declaration open and hides the token from
	// the rest of the parser.
	stepConsume step = iota
	// stepDone closes the declaration and hides the token.
	stepDone
	// stepPass closes the declaration and lets the parser see the token.
	stepPass
)

// decl is a declaration in progress. It owns the token stream until it
// returns stepDone or stepPass.
type decl interface {
	feed(p *Parser, tok scan.Token, lower string) step
}

type namespaceDecl struct {
	state  expect
	name   string
	offset int
}

func (d *namespaceDecl) feed(p *Parser, tok scan.Token, lower string) step {
	switch {
	case tok.Text == ";":
		if d.name != "" {
			p.enterNamespace(d.name, d.offset)
		}
		return stepPass
	case tok.Text == "{":
		p.pending = &frame{kind: frameNamespace, index: -1, prevNS: p.ns, prevNSIndex: p.nsIndex}
		p.enterNamespace(d.name, d.offset)
		return stepPass
	case d.name == "" && classNamePattern.MatchString(tok.Text):
		d.name = strings.Trim(tok.Text, `\`)
		d.offset = tok.Offset
		return stepConsume
	}
	return stepPass
}

// useDecl reads "use A\B as C, D;", "use function ..." and group forms
// such as "use A\{B, C as D}".
type useDecl struct {
	state  expect
	item   expect
	prefix string
	path   string
	offset int
	alias  string
	as     bool
	group  bool
}

func (d *useDecl) feed(p *Parser, tok scan.Token, lower string) step {
	switch {
	case d.path == "" && lower == "function":
		if !d.group {
			d.state = expectUseFunction
		}
		d.item = expectUseFunction
		return stepConsume
	case d.path == "" && lower == "const":
		if !d.group {
			d.state = expectUseConstant
		}
		d.item = expectUseConstant
		return stepConsume
	case tok.Text == "{" && !d.group && strings.HasSuffix(d.path, `\`):
		d.prefix, d.path, d.group = d.path, "", true
		return stepConsume
	case lower == "as":
		d.as = true
		return stepConsume
	case tok.Text == ",":
		d.commit(p)
		return stepConsume
	case tok.Text == "}" && d.group:
		d.commit(p)
		d.group, d.prefix = false, ""
		return stepConsume
	case tok.Text == ";":
		d.commit(p)
		return stepPass
	case d.as && identPattern.MatchString(tok.Text):
		d.alias = tok.Text
		return stepConsume
	case !d.as && d.path == "" && classNamePattern.MatchString(strings.TrimSuffix(tok.Text, `\`)):
		d.path = d.prefix + tok.Text
		d.offset = tok.Offset
		return stepConsume
	}
	return stepPass
}

func (d *useDecl) commit(p *Parser) {
	if path := strings.Trim(d.path, `\`); path != "" {
		kind := ImportClass
		switch d.item {
		case expectUseFunction:
			kind = ImportFunction
		case expectUseConstant:
			kind = ImportConstant
		}
		name := d.alias
		if name == "" {
			name = lastSegment(path)
		}
		p.addImport(name, `\`+path, kind, d.offset)
	}
	d.path, d.alias, d.as = "", "", false
	d.item = d.state
}

// traitUseDecl reads "use A, B;" inside a class body.
type traitUseDecl struct {
	class int
}

func (d *traitUseDecl) feed(p *Parser, tok scan.Token, lower string) step {
	switch {
	case tok.Text == ",":
		return stepConsume
	case classNamePattern.MatchString(tok.Text):
		cls := &p.res.Classes[d.class]
		cls.Traits = append(cls.Traits, p.toAbs(tok.Text, ImportClass))
		return stepConsume
	}
	return stepPass
}

type classDecl struct {
	state     expect
	index     int
	anonymous bool
	enum      bool
	abstract  bool
	depth     int
	backed    bool
}

func (d *classDecl) feed(p *Parser, tok scan.Token, lower string) step {
	if d.anonymous {
		switch tok.Text {
		case "(":
			d.depth++
		case ")":
			d.depth--
		case "{":
			if d.depth <= 0 {
				p.pending = &frame{kind: frameClass, index: -1}
				return stepPass
			}
		case ";":
			return stepPass
		}
		return stepConsume
	}

	switch tok.Text {
	case "{":
		p.pending = &frame{kind: frameClass, index: d.index}
		return stepPass
	case ";":
		return stepPass
	case ",":
		if d.state == expectClassImplemented || d.state == expectInterfaceExtended {
			return stepConsume
		}
		return stepPass
	}

	if d.index < 0 {
		if !identPattern.MatchString(tok.Text) {
			return stepPass
		}
		d.index = p.addClass(tok, d)
		return stepConsume
	}

	switch d.state {
	case expectClass, expectInterface, expectTrait, expectClassExtendedImplemented:
		switch {
		case lower == "extends" && d.state == expectInterface:
			d.state = expectInterfaceExtended
		case lower == "extends" && d.state == expectClass:
			d.state = expectClassExtended
		case lower == "implements":
			d.state = expectClassImplemented
		case tok.Text == ":" && d.enum:
			d.backed = true
		case d.backed && identPattern.MatchString(tok.Text):
			d.backed = false
		default:
			return stepPass
		}
		return stepConsume
	case expectClassExtended:
		if !classNamePattern.MatchString(tok.Text) {
			return stepPass
		}
		p.res.Classes[d.index].Parent = p.toAbs(tok.Text, ImportClass)
		d.state = expectClassExtendedImplemented
		return stepConsume
	case expectClassImplemented, expectInterfaceExtended:
		if !classNamePattern.MatchString(tok.Text) {
			return stepPass
		}
		cls := &p.res.Classes[d.index]
		cls.Interfaces = append(cls.Interfaces, p.toAbs(tok.Text, ImportClass))
		return stepConsume
	}
	return stepPass
}

type functionDecl struct {
	state    expect
	index    int
	named    bool
	argsAt   int
	depth    int
	useDepth int
	inUse    bool
	retType  []string
	mods     modifiers
	start    int
}

func (d *functionDecl) feed(p *Parser, tok scan.Token, lower string) step {
	switch d.state {
	case expectFunction:
		switch {
		case tok.Text == "&":
			return stepConsume
		case tok.Text == "(":
			d.state = expectFunctionArgs
			d.argsAt = tok.End()
			d.depth = 1
			return stepConsume
		case !d.named && identPattern.MatchString(tok.Text):
			d.named = true
			d.index = p.addFunction(tok, d)
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
				d.state = expectNone
				p.applyParams(d.index, d.argsAt, tok.Offset)
			}
		}
		return stepConsume
	}

	if d.inUse {
		switch tok.Text {
		case "(":
			d.useDepth++
		case ")":
			d.useDepth--
			if d.useDepth <= 0 {
				d.inUse = false
			}
		}
		return stepConsume
	}

	switch {
	case tok.Text == "{":
		d.finish(p)
		p.pending = &frame{kind: frameFunction, index: d.index}
		return stepPass
	case tok.Text == ";":
		d.finish(p)
		return stepPass
	case tok.Text == ":" && d.state == expectNone:
		d.state = expectFunctionReturnType
		return stepConsume
	case lower == "use" && !d.named && d.state == expectNone:
		d.inUse = true
		return stepConsume
	case tok.Text == "=>":
		// Arrow function bodies are expressions, not blocks.
		return stepPass
	case d.state == expectFunctionReturnType:
		d.retType = append(d.retType, tok.Text)
		return stepConsume
	}
	return stepPass
}

func (d *functionDecl) finish(p *Parser) {
	if d.index < 0 || len(d.retType) == 0 {
		return
	}
	p.res.Functions[d.index].ReturnType = p.resolveTypeExpr(strings.Join(d.retType, ""))
	p.returnFixed[d.index] = true
}

// constDecl reads "const A = 1, B = 2;" and enum "case A = 'a';". Values
// are copied from the original text so string literals survive.
type constDecl struct {
	state    expect
	class    int
	enumCase bool
	name     string
	offset   int
	valueAt  int
	depth    int
}

func (d *constDecl) feed(p *Parser, tok scan.Token, lower string) step {
	if d.state == expectConst {
		switch {
		case tok.Text == "=" && d.name != "":
			d.state = expectConstValue
			d.valueAt = tok.End()
			return stepConsume
		case tok.Text == ";" && d.enumCase && d.name != "":
			d.commit(p, "")
			return stepPass
		case identPattern.MatchString(tok.Text):
			// The last identifier before "=" wins over a type.
			d.name = tok.Text
			d.offset = tok.Offset
			return stepConsume
		case tok.Text == "?" || tok.Text == "|":
			return stepConsume
		}
		return stepPass
	}

	switch tok.Text {
	case "(", "[", "{":
		d.depth++
	case ")", "]", "}":
		if d.depth == 0 {
			d.commit(p, p.text[d.valueAt:tok.Offset])
			return stepPass
		}
		d.depth--
	case ",":
		if d.depth == 0 {
			d.commit(p, p.text[d.valueAt:tok.Offset])
			d.state, d.name = expectConst, ""
		}
	case ";":
		if d.depth == 0 {
			d.commit(p, p.text[d.valueAt:tok.Offset])
			return stepPass
		}
	}
	return stepConsume
}

func (d *constDecl) commit(p *Parser, value string) {
	p.addConstant(d.name, d.class, scan.CollapseSpace(value), d.offset)
}

// varListDecl reads the variables of a "global $a, $b;" statement.
type varListDecl struct {
	depth int
}

func (d *varListDecl) feed(p *Parser, tok scan.Token, lower string) step {
	switch tok.Text {
	case "(", "[":
		d.depth++
		return stepConsume
	case ")", "]":
		d.depth--
		return stepConsume
	case ";", "{", "}":
		return stepPass
	}
	if d.depth == 0 && variableNamePattern.MatchString(tok.Text) {
		p.addLocalVariable(tok.Text, "", tok.Offset)
	}
	return stepConsume
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}
