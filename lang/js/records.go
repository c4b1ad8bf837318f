package js

import (
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

// ensureClass returns the class called name, creating it on first sight. A
// constructor function of the same name lends the class its line and
// comment.
func (p *Parser) ensureClass(name string, offset, start int) int {
	if i, ok := p.classIndexes[name]; ok {
		return i
	}
	if !identPattern.MatchString(name) {
		return -1
	}
	c := Class{Name: name}
	if fi, ok := p.functionIndexes[functionKey("", name)]; ok {
		c.Line = p.res.Functions[fi].Line
		c.Comment = p.res.Functions[fi].Comment
	} else {
		c.Line = p.lines.Line(offset)
		if start >= 0 {
			c.Comment = lang.CommentAbove(p.text, p.comments, start)
		}
	}
	idx := len(p.res.Classes)
	p.classIndexes[name] = idx
	p.res.Classes = append(p.res.Classes, c)
	return idx
}

func (p *Parser) declareFunction(d *functionDecl) int {
	if d.name == "" {
		return -1
	}
	fn := Function{
		Name:       d.name,
		IsStatic:   d.static,
		Visibility: d.visibility,
		Comment:    lang.CommentAbove(p.text, p.comments, d.start),
		Line:       p.lines.Line(d.nameAt),
	}
	if d.class >= 0 {
		if !memberPattern.MatchString(d.name) {
			return -1
		}
		fn.ClsName = p.res.Classes[d.class].Name
		if fn.Visibility == lang.VisibilityNone {
			fn.Visibility = visibilityOf(d.name)
		}
	} else if !identPattern.MatchString(d.name) || !p.canDeclare() {
		return -1
	}
	key := functionKey(fn.ClsName, fn.Name)
	if i, ok := p.functionIndexes[key]; ok {
		return i
	}
	idx := len(p.res.Functions)
	p.functionIndexes[key] = idx
	p.res.Functions = append(p.res.Functions, fn)
	if d.class >= 0 {
		c := &p.res.Classes[d.class]
		c.FunctionIndexes = append(c.FunctionIndexes, idx)
	}
	return idx
}

// applyParams records the parameter list between from and to and registers
// each plain parameter name as a function variable.
func (p *Parser) applyParams(index, from, to int) {
	if index < 0 || from > to {
		return
	}
	sig := parseParams(p.clean[from:to], p.text[from:to])
	fn := &p.res.Functions[index]
	fn.Args, fn.MinArgs, fn.MaxArgs = sig.Args, sig.MinArgs, sig.MaxArgs
	clsName, funcName := fn.ClsName, fn.Name
	for _, prm := range sig.Params {
		p.addVariable(Variable{
			Name:     prm.Name,
			ClsName:  clsName,
			FuncName: funcName,
			Line:     p.lines.Line(from + prm.Offset),
		}, -1, index)
	}
}

func (p *Parser) addVariable(v Variable, cls, fn int) int {
	if !memberPattern.MatchString(v.Name) || keywords[v.Name] {
		return -1
	}
	key := variableKey(v.ClsName, v.FuncName, v.Name)
	if i, ok := p.variableIndexes[key]; ok {
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

func (p *Parser) addProperty(cls int, name scan.Token, static bool) int {
	if cls < 0 {
		return -1
	}
	return p.addVariable(Variable{
		Name:       name.Text,
		ClsName:    p.res.Classes[cls].Name,
		IsStatic:   static,
		Visibility: visibilityOf(name.Text),
		Line:       p.lines.Line(name.Offset),
	}, cls, -1)
}

// addLocal registers a var or let binding in the innermost named function,
// or at file level.
func (p *Parser) addLocal(name scan.Token) int {
	v := Variable{Name: name.Text, Line: p.lines.Line(name.Offset)}
	fn := p.scopeFunction()
	if fn >= 0 {
		v.ClsName, v.FuncName = p.res.Functions[fn].ClsName, p.res.Functions[fn].Name
	}
	return p.addVariable(v, -1, fn)
}

func (p *Parser) setVariableType(idx int, typ string) {
	if idx < 0 || typ == "" {
		return
	}
	if v := &p.res.Variables[idx]; v.Type == "" {
		v.Type = typ
	}
}

// lookupVariable finds name in the current function scope, then at file
// level.
func (p *Parser) lookupVariable(name string) int {
	if fn := p.scopeFunction(); fn >= 0 {
		f := p.res.Functions[fn]
		if i, ok := p.variableIndexes[variableKey(f.ClsName, f.Name, name)]; ok {
			return i
		}
	}
	if i, ok := p.variableIndexes[variableKey("", "", name)]; ok {
		return i
	}
	return -1
}

func (p *Parser) addConstant(name scan.Token, value string) {
	if !identPattern.MatchString(name.Text) {
		return
	}
	c := Constant{Name: name.Text, Value: value, Line: p.lines.Line(name.Offset)}
	fn := p.scopeFunction()
	if fn >= 0 {
		c.ClsName, c.FuncName = p.res.Functions[fn].ClsName, p.res.Functions[fn].Name
	}
	key := variableKey(c.ClsName, c.FuncName, c.Name)
	if _, ok := p.constantIndexes[key]; ok {
		return
	}
	idx := len(p.res.Constants)
	p.constantIndexes[key] = idx
	p.res.Constants = append(p.res.Constants, c)
	if fn >= 0 {
		f := &p.res.Functions[fn]
		f.ConstantIndexes = append(f.ConstantIndexes, idx)
	}
}

type param struct {
	Name   string
	Offset int
}

type signature struct {
	Args    string
	MinArgs int
	MaxArgs int
	Params  []param
}

// parseParams reads a parameter list; clean has literals blanked and orig
// is the same span of the original text.
func parseParams(clean, orig string) signature {
	var sig signature
	var rendered []string
	for _, span := range scan.SplitTopLevel(clean) {
		part := clean[span[0]:span[1]]
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		lead := span[0] + strings.Index(part, trimmed)
		rest := strings.HasPrefix(trimmed, "...")
		if rest {
			trimmed = strings.TrimSpace(trimmed[3:])
			lead = span[0] + strings.Index(part, trimmed)
		}
		sig.MaxArgs++
		if !rest && scan.TopLevelIndex(trimmed, '=') < 0 {
			sig.MinArgs++
		}
		name := trimmed
		if i := strings.IndexAny(name, " \t\n=:"); i >= 0 {
			name = name[:i]
		}
		if identPattern.MatchString(name) {
			sig.Params = append(sig.Params, param{Name: name, Offset: lead})
		}
		rendered = append(rendered, scan.CollapseSpace(orig[span[0]:span[1]]))
	}
	sig.Args = strings.Join(rendered, ", ")
	return sig
}
