package php

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang/scan"
)

type exprTarget int

const (
	targetReturn exprTarget = iota
	targetVariable
)

// maxExprTokens bounds how much of an expression is kept; inference only
// recognizes short fixed shapes.
const maxExprTokens = 8

// expr collects the top-level tokens of a return value or assigned value
// until the statement ends, then tries to name its type.
type expr struct {
	target   exprTarget
	index    int
	property bool
	from     int
	depth    int
	toks     []string
	overflow bool
}

func (e *expr) push(t string) {
	if len(e.toks) >= maxExprTokens {
		e.overflow = true
		return
	}
	e.toks = append(e.toks, t)
}

// feed reports whether the token belongs to the expression. Braces are
// still seen by the scope tracking in either case.
func (e *expr) feed(p *Parser, tok scan.Token) bool {
	switch tok.Text {
	case "{":
		if e.depth == 0 {
			p.expr = nil
			e.openBlock(p)
			return false
		}
		e.depth++
	case "(", "[":
		if e.depth == 0 {
			e.push(tok.Text)
		}
		e.depth++
	case ")", "]", "}":
		if e.depth == 0 {
			p.expr = nil
			return false
		}
		e.depth--
		if e.depth == 0 {
			e.push(tok.Text)
		}
	case ";":
		if e.depth == 0 {
			p.expr = nil
			e.finish(p, tok.Offset)
		}
	case ",":
		if e.depth == 0 && e.property {
			p.expr = nil
			e.finish(p, tok.Offset)
		}
	default:
		if e.depth == 0 {
			e.push(tok.Text)
		}
	}
	return true
}

// openBlock handles a body opening inside the expression: closures and
// anonymous classes get their own frame.
func (e *expr) openBlock(p *Parser) {
	if len(e.toks) == 0 {
		return
	}
	first := strings.ToLower(e.toks[0])
	if first == "static" && len(e.toks) > 1 {
		first = strings.ToLower(e.toks[1])
	}
	switch {
	case first == "function" || first == "fn":
		p.pending = &frame{kind: frameFunction, index: -1}
		e.apply(p, `\Closure`)
	case first == "new" && len(e.toks) > 1 && strings.EqualFold(e.toks[1], "class"):
		p.pending = &frame{kind: frameClass, index: -1}
	}
}

func (e *expr) finish(p *Parser, end int) {
	if e.overflow {
		return
	}
	var typ string
	if len(e.toks) == 0 {
		typ = literalText(p.text[e.from:end])
	} else {
		typ = p.exprType(e.toks)
	}
	if !isUntyped(typ) {
		e.apply(p, typ)
	}
}

func (e *expr) apply(p *Parser, typ string) {
	switch e.target {
	case targetReturn:
		if e.index < 0 || p.returnFixed[e.index] {
			return
		}
		p.res.Functions[e.index].ReturnType = typ
		p.returnFixed[e.index] = true
	case targetVariable:
		if v := &p.res.Variables[e.index]; isUntyped(v.Type) {
			v.Type = typ
		}
	}
}

// literalText types an expression whose tokens were all blanked, which
// happens for string literals.
func literalText(orig string) string {
	s := strings.TrimSpace(orig)
	if s == "" {
		return ""
	}
	switch s[0] {
	case '\'', '"':
		return "string"
	}
	if strings.HasPrefix(s, "<<<") {
		return "string"
	}
	return ""
}

// exprType names the type of a short expression, or returns "".
func (p *Parser) exprType(toks []string) string {
	n := len(toks)
	t0, l0 := toks[0], strings.ToLower(toks[0])
	call := n >= 3 && toks[n-2] == "(" && toks[n-1] == ")"
	switch {
	case n == 1 && t0 == "$this":
		return p.currentClassName()
	case n == 1 && variableNamePattern.MatchString(t0):
		return p.lookupVariable(t0)
	case n == 1:
		return literalType(l0)
	case l0 == "new" && (n == 2 || n == 4 && call):
		if strings.EqualFold(toks[1], "class") || !classNamePattern.MatchString(toks[1]) {
			return ""
		}
		return p.toAbs(toks[1], ImportClass)
	case l0 == "clone":
		return p.exprType(toks[1:])
	case n == 2 && t0 == "[" && toks[1] == "]":
		return "array"
	case n == 3 && call && l0 == "array":
		return "array"
	case n == 2 && t0 == "-":
		return literalType(toks[1])
	case n == 3 && call && classNamePattern.MatchString(t0):
		return p.functionReturn("", p.toAbs(t0, ImportFunction))
	case n == 3 && toks[1] == "::" && classNamePattern.MatchString(t0) && variableNamePattern.MatchString(toks[2]):
		return p.propertyType(p.toAbs(t0, ImportClass), toks[2])
	case n == 3 && t0 == "$this" && isArrow(toks[1]) && identPattern.MatchString(toks[2]):
		return p.propertyType(p.currentClassName(), "$"+toks[2])
	case n == 5 && call && identPattern.MatchString(toks[2]):
		var cls string
		switch {
		case toks[1] == "::" && classNamePattern.MatchString(t0):
			cls = p.toAbs(t0, ImportClass)
		case isArrow(toks[1]) && t0 == "$this":
			cls = p.currentClassName()
		case isArrow(toks[1]) && variableNamePattern.MatchString(t0):
			cls = strings.TrimPrefix(p.lookupVariable(t0), "?")
		}
		if cls == "" {
			return ""
		}
		return p.functionReturn(cls, toks[2])
	}
	return ""
}

func isArrow(t string) bool {
	return t == "->" || t == "?->"
}

func literalType(word string) string {
	switch {
	case word == "true" || word == "false":
		return "bool"
	case numberPattern.MatchString(word):
		if strings.ContainsAny(word, ".eE") && !strings.HasPrefix(word, "0x") {
			return "float"
		}
		return "int"
	}
	return ""
}

// lookupVariable returns the known type of a variable in the current scope.
func (p *Parser) lookupVariable(name string) string {
	var cls, fn string
	if len(p.frames) > 0 {
		f := p.frames[len(p.frames)-1]
		switch {
		case f.kind == frameFunction && f.index >= 0:
			cls, fn = p.res.Functions[f.index].ClsName, p.res.Functions[f.index].Name
		case f.kind != frameNamespace:
			return ""
		}
	}
	if i, ok := p.variableIndexes[variableKey(cls, fn, name)]; ok {
		return p.res.Variables[i].Type
	}
	return ""
}

func (p *Parser) propertyType(cls, name string) string {
	if cls == "" {
		return ""
	}
	if i, ok := p.variableIndexes[variableKey(cls, "", name)]; ok {
		return p.res.Variables[i].Type
	}
	return ""
}

func (p *Parser) functionReturn(cls, name string) string {
	if i, ok := p.functionIndexes[functionKey(cls, name)]; ok {
		return p.res.Functions[i].ReturnType
	}
	return ""
}
