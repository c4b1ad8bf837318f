package php

import (
	"regexp"
	"strings"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

func variableKey(cls, fn, name string) string {
	return cls + "::" + fn + "::" + name
}

func functionKey(cls, name string) string {
	return cls + "::" + name
}

// declName qualifies a name declared in the current namespace.
func (p *Parser) declName(name string) string {
	if p.ns == "" {
		return `\` + name
	}
	return `\` + p.ns + `\` + name
}

func (p *Parser) enterNamespace(name string, offset int) {
	if name == "" {
		p.ns, p.nsIndex = "", -1
		return
	}
	p.ns = name
	if i, ok := p.namespaceIndexes[name]; ok {
		p.nsIndex = i
		return
	}
	p.nsIndex = len(p.res.Namespaces)
	p.namespaceIndexes[name] = p.nsIndex
	p.res.Namespaces = append(p.res.Namespaces, Namespace{
		Name: name,
		Line: p.lines.Line(offset),
	})
}

func (p *Parser) addImport(name, path string, kind ImportKind, offset int) {
	if !identPattern.MatchString(name) || !classNamePattern.MatchString(path) {
		return
	}
	key := name
	if kind != ImportConstant {
		key = strings.ToLower(name)
	}
	p.aliases[kind][key] = path
	idx := len(p.res.Imports)
	p.res.Imports = append(p.res.Imports, Import{
		Name: name,
		Path: path,
		Kind: kind,
		Line: p.lines.Line(offset),
	})
	if p.nsIndex >= 0 {
		ns := &p.res.Namespaces[p.nsIndex]
		ns.ImportIndexes = append(ns.ImportIndexes, idx)
	}
}

func (p *Parser) addClass(tok scan.Token, d *classDecl) int {
	name := p.declName(tok.Text)
	if i, ok := p.classIndexes[name]; ok {
		return i
	}
	idx := len(p.res.Classes)
	p.classIndexes[name] = idx
	p.res.Classes = append(p.res.Classes, Class{
		Name:        name,
		IsAbstract:  d.abstract,
		IsInterface: d.state == expectInterface,
		IsTrait:     d.state == expectTrait,
		IsEnum:      d.enum,
		Comment:     lang.CommentAbove(p.text, p.comments, p.stmtStart),
		Line:        p.lines.Line(tok.Offset),
	})
	return idx
}

func (p *Parser) addFunction(tok scan.Token, d *functionDecl) int {
	fn := Function{
		Name:       tok.Text,
		IsStatic:   d.mods.static,
		IsAbstract: d.mods.abstract,
		Visibility: d.mods.visibility,
		Comment:    lang.CommentAbove(p.text, p.comments, d.start),
		Line:       p.lines.Line(tok.Offset),
	}
	cls, inClass := p.classBody()
	switch {
	case inClass && cls < 0:
		return -1
	case inClass:
		fn.ClsName = p.res.Classes[cls].Name
		fn.IsAbstract = fn.IsAbstract || p.res.Classes[cls].IsInterface
	default:
		fn.Name = p.declName(tok.Text)
	}
	key := functionKey(fn.ClsName, fn.Name)
	if i, ok := p.functionIndexes[key]; ok {
		return i
	}
	idx := len(p.res.Functions)
	p.functionIndexes[key] = idx
	p.res.Functions = append(p.res.Functions, fn)
	if inClass {
		c := &p.res.Classes[cls]
		c.FunctionIndexes = append(c.FunctionIndexes, idx)
	}
	return idx
}

// applyParams records the parameter list between from and to for the
// function at index, registering each parameter as a function variable.
// Promoted constructor parameters also become properties.
func (p *Parser) applyParams(index, from, to int) {
	if index < 0 {
		return
	}
	sig := parseParams(p.clean[from:to], p.text[from:to])
	fn := &p.res.Functions[index]
	fn.Args = sig.Args
	fn.MinArgs = sig.MinArgs
	fn.MaxArgs = sig.MaxArgs
	clsName, funcName := fn.ClsName, fn.Name
	cls := -1
	if clsName != "" {
		cls = p.classIndexes[clsName]
	}
	promote := cls >= 0 && strings.EqualFold(funcName, "__construct")
	for _, prm := range sig.Params {
		typ := "mixed"
		if prm.Type != "" {
			typ = p.resolveTypeExpr(prm.Type)
		}
		line := p.lines.Line(from + prm.Offset)
		p.addVariable(Variable{
			Name:     prm.Name,
			ClsName:  clsName,
			FuncName: funcName,
			Type:     typ,
			Line:     line,
		}, cls, index)
		if promote && prm.Visibility != lang.VisibilityNone {
			p.addVariable(Variable{
				Name:       prm.Name,
				ClsName:    clsName,
				Visibility: prm.Visibility,
				Type:       typ,
				Line:       line,
			}, cls, -1)
		}
	}
}

// addVariable stores v once per scope and name; a later sighting may only
// fill in a missing type.
func (p *Parser) addVariable(v Variable, cls, fn int) int {
	if !variableNamePattern.MatchString(v.Name) {
		return -1
	}
	key := variableKey(v.ClsName, v.FuncName, v.Name)
	if i, ok := p.variableIndexes[key]; ok {
		if isUntyped(p.res.Variables[i].Type) && v.Type != "" {
			p.res.Variables[i].Type = v.Type
		}
		return i
	}
	idx := len(p.res.Variables)
	p.variableIndexes[key] = idx
	p.res.Variables = append(p.res.Variables, v)
	switch {
	case fn >= 0:
		f := &p.res.Functions[fn]
		f.VariableIndexes = append(f.VariableIndexes, idx)
	case cls >= 0:
		c := &p.res.Classes[cls]
		c.VariableIndexes = append(c.VariableIndexes, idx)
	}
	return idx
}

// addLocalVariable registers name in the innermost named function, or as a
// global outside any function. Variables of closures are not tracked.
func (p *Parser) addLocalVariable(name, typ string, offset int) int {
	v := Variable{Name: name, Type: typ, Line: p.lines.Line(offset)}
	cls, fn := -1, -1
	if len(p.frames) > 0 {
		f := p.frames[len(p.frames)-1]
		switch f.kind {
		case frameClass:
			return -1
		case frameFunction:
			if f.index < 0 {
				return -1
			}
			fn = f.index
			v.ClsName = p.res.Functions[fn].ClsName
			v.FuncName = p.res.Functions[fn].Name
			if v.ClsName != "" {
				cls = p.classIndexes[v.ClsName]
			}
		}
	}
	return p.addVariable(v, cls, fn)
}

func (p *Parser) addConstant(name string, cls int, value string, offset int) {
	if !identPattern.MatchString(name) {
		return
	}
	c := Constant{Name: name, Value: value, Line: p.lines.Line(offset)}
	if cls >= 0 {
		c.ClsName = p.res.Classes[cls].Name
	} else {
		c.Name = p.declName(name)
	}
	key := functionKey(c.ClsName, c.Name)
	if _, ok := p.constantIndexes[key]; ok {
		return
	}
	idx := len(p.res.Constants)
	p.constantIndexes[key] = idx
	p.res.Constants = append(p.res.Constants, c)
	if cls >= 0 {
		k := &p.res.Classes[cls]
		k.ConstantIndexes = append(k.ConstantIndexes, idx)
	}
}

func isUntyped(typ string) bool {
	return typ == "" || typ == "mixed"
}

// toAbs resolves a class, function or constant name against the current
// namespace and the aliases imported so far.
func (p *Parser) toAbs(name string, kind ImportKind) string {
	lower := strings.ToLower(name)
	if kind == ImportClass {
		switch lower {
		case "self", "static":
			if cls := p.currentClassName(); cls != "" {
				return cls
			}
			return lower
		case "parent":
			if cls := p.currentClass(); cls >= 0 && p.res.Classes[cls].Parent != "" {
				return p.res.Classes[cls].Parent
			}
			return lower
		}
		if p.dataTypes.Has(lower) {
			return lower
		}
	}
	switch {
	case strings.HasPrefix(name, `\`):
		return name
	case strings.HasPrefix(lower, `namespace\`):
		return p.declName(name[len(`namespace\`):])
	case !strings.Contains(name, `\`):
		key := name
		if kind != ImportConstant {
			key = lower
		}
		if path, ok := p.aliases[kind][key]; ok {
			return path
		}
		return p.declName(name)
	}
	// Qualified names are kept as written.
	return name
}

var typeWordPattern = regexp.MustCompile(`[^\s?|&()]+`)

// resolveTypeExpr resolves every name in a type declaration such as
// "?Foo", "int|Bar" or "(A&B)|null", keeping its punctuation.
func (p *Parser) resolveTypeExpr(typ string) string {
	typ = strings.Join(strings.Fields(typ), "")
	return typeWordPattern.ReplaceAllStringFunc(typ, func(word string) string {
		return p.toAbs(word, ImportClass)
	})
}
