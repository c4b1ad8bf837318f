package js

import (
	"strings"
)

// Types inferred from literals.
const (
	TypeString   = "string"
	TypeNumber   = "number"
	TypeBoolean  = "boolean"
	TypeArray    = "Array"
	TypeObject   = "Object"
	TypeRegExp   = "RegExp"
	TypeFunction = "Function"
)

func isLiteralType(t string) bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeRegExp, TypeFunction:
		return true
	}
	return false
}

// literalText types a value whose tokens were all blanked: strings,
// template literals and regular expressions.
func literalText(value string) string {
	if value == "" {
		return ""
	}
	switch value[0] {
	case '"', '\'', '`':
		return TypeString
	case '/':
		return TypeRegExp
	}
	return ""
}

// exprType names the type of a short expression, or returns "".
func (p *Parser) exprType(toks []string) string {
	n := len(toks)
	t0 := toks[0]
	call := n >= 3 && toks[n-2] == "(" && toks[n-1] == ")"
	switch {
	case n == 1 && t0 == "this":
		return p.currentClassName()
	case n == 1 && (t0 == "true" || t0 == "false"):
		return TypeBoolean
	case n == 1 && numberPattern.MatchString(t0):
		return TypeNumber
	case n == 1 && identPattern.MatchString(t0):
		if i := p.lookupVariable(t0); i >= 0 {
			return p.res.Variables[i].Type
		}
		return ""
	case t0 == "new":
		return dottedName(toks[1:])
	case n == 2 && t0 == "[":
		return TypeArray
	case n == 2 && t0 == "{":
		return TypeObject
	case n == 2 && t0 == "!":
		return TypeBoolean
	case n == 2 && t0 == "-" && numberPattern.MatchString(toks[1]):
		return TypeNumber
	case n == 3 && call && identPattern.MatchString(t0):
		return p.functionReturn("", t0)
	case n == 3 && t0 == "this" && toks[1] == ".":
		cls := p.currentClassName()
		if i, ok := p.variableIndexes[variableKey(cls, "", toks[2])]; ok && cls != "" {
			return p.res.Variables[i].Type
		}
		return ""
	case n == 5 && call && toks[1] == ".":
		var cls string
		switch {
		case t0 == "this":
			cls = p.currentClassName()
		case p.isConstructor(t0):
			cls = t0
		default:
			if i := p.lookupVariable(t0); i >= 0 {
				cls = p.res.Variables[i].Type
			}
		}
		if cls == "" {
			return ""
		}
		return p.functionReturn(cls, toks[2])
	}
	return ""
}

// dottedName reads "a.b.C" optionally followed by "()".
func dottedName(toks []string) string {
	var b strings.Builder
	i := 0
	for ; i < len(toks); i++ {
		t := toks[i]
		if i%2 == 0 {
			if !identPattern.MatchString(t) {
				return ""
			}
		} else if t != "." {
			break
		}
		b.WriteString(t)
	}
	rest := toks[i:]
	if i%2 == 0 || len(rest) != 0 && (len(rest) != 2 || rest[0] != "(" || rest[1] != ")") {
		return ""
	}
	return b.String()
}

func (p *Parser) functionReturn(cls, name string) string {
	if i, ok := p.functionIndexes[functionKey(cls, name)]; ok {
		return p.res.Functions[i].ReturnType
	}
	return ""
}
