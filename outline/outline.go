// Package outline turns parse results into the navigator tree an editor
// shows beside a file. Every index read from a result is bounds-checked.
package outline

import (
	"sort"

	"github.com/ziracms/editor-sub001/lang/css"
	"github.com/ziracms/editor-sub001/lang/js"
	"github.com/ziracms/editor-sub001/lang/php"
)

type Kind string

const (
	KindNamespace Kind = "namespace"
	KindImport    Kind = "import"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
	KindEnum      Kind = "enum"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindProperty  Kind = "property"
	KindVariable  Kind = "variable"
	KindConstant  Kind = "constant"
	KindSelector  Kind = "selector"
	KindMedia     Kind = "media"
	KindKeyframes Kind = "keyframes"
	KindFont      Kind = "font"
)

// Symbol is one navigator node. Line is 1-based and points into the
// original text.
type Symbol struct {
	Name     string   `json:"name"`
	Detail   string   `json:"detail,omitempty"`
	Kind     Kind     `json:"kind"`
	Line     int      `json:"line"`
	Children []Symbol `json:"children,omitempty"`
}

// Walk calls fn for every symbol in depth-first order.
func Walk(symbols []Symbol, fn func(s Symbol, depth int)) {
	var walk func([]Symbol, int)
	walk = func(list []Symbol, depth int) {
		for _, s := range list {
			fn(s, depth)
			walk(s.Children, depth+1)
		}
	}
	walk(symbols, 0)
}

func sortByLine(symbols []Symbol) {
	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Line < symbols[j].Line
	})
}

func FromPHP(res php.Result) []Symbol {
	var out []Symbol
	for _, ns := range res.Namespaces {
		sym := Symbol{Name: ns.Name, Kind: KindNamespace, Line: ns.Line}
		for _, i := range ns.ImportIndexes {
			if imp, ok := res.ImportAt(i); ok {
				sym.Children = append(sym.Children, Symbol{
					Name:   imp.Name,
					Detail: imp.Path,
					Kind:   KindImport,
					Line:   imp.Line,
				})
			}
		}
		out = append(out, sym)
	}

	for _, cls := range res.Classes {
		sym := Symbol{Name: cls.Name, Detail: cls.Parent, Kind: phpClassKind(cls), Line: cls.Line}
		for _, i := range cls.ConstantIndexes {
			if c, ok := res.ConstantAt(i); ok {
				sym.Children = append(sym.Children, Symbol{Name: c.Name, Detail: c.Value, Kind: KindConstant, Line: c.Line})
			}
		}
		for _, i := range cls.VariableIndexes {
			if v, ok := res.VariableAt(i); ok {
				sym.Children = append(sym.Children, Symbol{Name: v.Name, Detail: v.Type, Kind: KindProperty, Line: v.Line})
			}
		}
		for _, i := range cls.FunctionIndexes {
			if fn, ok := res.FunctionAt(i); ok {
				sym.Children = append(sym.Children, phpFunction(res, fn, KindMethod))
			}
		}
		sortByLine(sym.Children)
		out = append(out, sym)
	}

	for _, fn := range res.Functions {
		if fn.ClsName == "" {
			out = append(out, phpFunction(res, fn, KindFunction))
		}
	}
	for _, c := range res.Constants {
		if c.ClsName == "" {
			out = append(out, Symbol{Name: c.Name, Detail: c.Value, Kind: KindConstant, Line: c.Line})
		}
	}
	for _, v := range res.Variables {
		if v.ClsName == "" && v.FuncName == "" {
			out = append(out, Symbol{Name: v.Name, Detail: v.Type, Kind: KindVariable, Line: v.Line})
		}
	}
	sortByLine(out)
	return out
}

func phpClassKind(cls php.Class) Kind {
	switch {
	case cls.IsInterface:
		return KindInterface
	case cls.IsTrait:
		return KindTrait
	case cls.IsEnum:
		return KindEnum
	}
	return KindClass
}

func phpFunction(res php.Result, fn php.Function, kind Kind) Symbol {
	sym := Symbol{Name: fn.Name, Detail: signature(fn.Args, fn.ReturnType), Kind: kind, Line: fn.Line}
	for _, i := range fn.VariableIndexes {
		if v, ok := res.VariableAt(i); ok {
			sym.Children = append(sym.Children, Symbol{Name: v.Name, Detail: v.Type, Kind: KindVariable, Line: v.Line})
		}
	}
	return sym
}

func signature(args, ret string) string {
	s := "(" + args + ")"
	if ret != "" {
		s += ": " + ret
	}
	return s
}

func FromJS(res js.Result) []Symbol {
	var out []Symbol
	for _, cls := range res.Classes {
		sym := Symbol{Name: cls.Name, Detail: cls.Parent, Kind: KindClass, Line: cls.Line}
		for _, i := range cls.VariableIndexes {
			if v, ok := res.VariableAt(i); ok {
				sym.Children = append(sym.Children, Symbol{Name: v.Name, Detail: v.Type, Kind: KindProperty, Line: v.Line})
			}
		}
		for _, i := range cls.FunctionIndexes {
			if fn, ok := res.FunctionAt(i); ok {
				sym.Children = append(sym.Children, jsFunction(res, fn, KindMethod))
			}
		}
		sortByLine(sym.Children)
		out = append(out, sym)
	}
	for _, fn := range res.Functions {
		if fn.ClsName == "" {
			out = append(out, jsFunction(res, fn, KindFunction))
		}
	}
	for _, c := range res.Constants {
		if c.ClsName == "" && c.FuncName == "" {
			out = append(out, Symbol{Name: c.Name, Detail: c.Value, Kind: KindConstant, Line: c.Line})
		}
	}
	for _, v := range res.Variables {
		if v.ClsName == "" && v.FuncName == "" {
			out = append(out, Symbol{Name: v.Name, Detail: v.Type, Kind: KindVariable, Line: v.Line})
		}
	}
	sortByLine(out)
	return out
}

func jsFunction(res js.Result, fn js.Function, kind Kind) Symbol {
	sym := Symbol{Name: fn.Name, Detail: signature(fn.Args, fn.ReturnType), Kind: kind, Line: fn.Line}
	for _, i := range fn.ConstantIndexes {
		if c, ok := res.ConstantAt(i); ok {
			sym.Children = append(sym.Children, Symbol{Name: c.Name, Detail: c.Value, Kind: KindConstant, Line: c.Line})
		}
	}
	for _, i := range fn.VariableIndexes {
		if v, ok := res.VariableAt(i); ok {
			sym.Children = append(sym.Children, Symbol{Name: v.Name, Detail: v.Type, Kind: KindVariable, Line: v.Line})
		}
	}
	sortByLine(sym.Children)
	return sym
}

// FromCSS lists media blocks with their selectors, then the remaining
// selectors, keyframes, fonts and variables.
func FromCSS(res css.Result) []Symbol {
	var out []Symbol
	inMedia := make(map[int]bool)
	for _, m := range res.Medias {
		sym := Symbol{Name: m.Name, Kind: KindMedia, Line: m.Line}
		for _, i := range m.SelectorIndexes {
			if s, ok := res.SelectorAt(i); ok {
				inMedia[i] = true
				sym.Children = append(sym.Children, Symbol{Name: s.Name, Kind: KindSelector, Line: s.Line})
			}
		}
		out = append(out, sym)
	}
	for i, s := range res.Selectors {
		if !inMedia[i] {
			out = append(out, Symbol{Name: s.Name, Kind: KindSelector, Line: s.Line})
		}
	}
	for _, k := range res.Keyframes {
		out = append(out, Symbol{Name: k.Name, Kind: KindKeyframes, Line: k.Line})
	}
	for _, f := range res.Fonts {
		out = append(out, Symbol{Name: f.Name, Kind: KindFont, Line: f.Line})
	}
	for _, v := range res.Variables {
		out = append(out, Symbol{Name: v.Name, Detail: v.Value, Kind: KindVariable, Line: v.Line})
	}
	sortByLine(out)
	return out
}
