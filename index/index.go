// Package index flattens parse results into declarations for project-wide
// search and go-to-declaration, and stores them as line-based text files.
package index

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ziracms/editor-sub001/lang/css"
	"github.com/ziracms/editor-sub001/lang/js"
	"github.com/ziracms/editor-sub001/lang/php"
	"github.com/ziracms/editor-sub001/outline"
)

// Declaration is one searchable symbol. Members of a class are named
// "Class::member".
type Declaration struct {
	Name     string       `json:"name"`
	Kind     outline.Kind `json:"kind"`
	Synopsis string       `json:"synopsis,omitempty"`
	Path     string       `json:"path"`
	Line     int          `json:"line"`
}

// Pointer returns the declaration pointer "<path>:<line>".
func (d Declaration) Pointer() string {
	return d.Path + ":" + strconv.Itoa(d.Line)
}

// ParsePointer splits a declaration pointer at its last colon.
func ParsePointer(s string) (path string, line int, err error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return "", 0, fmt.Errorf("invalid pointer %q", s)
	}
	line, err = strconv.Atoi(s[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid pointer %q: %w", s, err)
	}
	return s[:i], line, nil
}

func member(cls, name string) string {
	if cls == "" {
		return name
	}
	return cls + "::" + name
}

func FromPHP(path string, res php.Result) []Declaration {
	var out []Declaration
	for _, cls := range res.Classes {
		kind := outline.KindClass
		word := "class"
		switch {
		case cls.IsInterface:
			kind, word = outline.KindInterface, "interface"
		case cls.IsTrait:
			kind, word = outline.KindTrait, "trait"
		case cls.IsEnum:
			kind, word = outline.KindEnum, "enum"
		case cls.IsAbstract:
			word = "abstract class"
		}
		synopsis := word + " " + cls.Name
		if cls.Parent != "" {
			synopsis += " extends " + cls.Parent
		}
		if len(cls.Interfaces) > 0 {
			synopsis += " implements " + strings.Join(cls.Interfaces, ", ")
		}
		out = append(out, Declaration{Name: cls.Name, Kind: kind, Synopsis: synopsis, Path: path, Line: cls.Line})
	}
	for _, fn := range res.Functions {
		kind := outline.KindFunction
		if fn.ClsName != "" {
			kind = outline.KindMethod
		}
		var mods []string
		if fn.Visibility != "" {
			mods = append(mods, string(fn.Visibility))
		}
		if fn.IsAbstract {
			mods = append(mods, "abstract")
		}
		if fn.IsStatic {
			mods = append(mods, "static")
		}
		synopsis := strings.Join(append(mods, "function "+lastName(fn.Name)+"("+fn.Args+")"), " ")
		if fn.ReturnType != "" {
			synopsis += ": " + fn.ReturnType
		}
		out = append(out, Declaration{Name: member(fn.ClsName, fn.Name), Kind: kind, Synopsis: synopsis, Path: path, Line: fn.Line})
	}
	for _, c := range res.Constants {
		out = append(out, Declaration{
			Name:     member(c.ClsName, c.Name),
			Kind:     outline.KindConstant,
			Synopsis: "const " + lastName(c.Name) + " = " + c.Value,
			Path:     path,
			Line:     c.Line,
		})
	}
	for _, v := range res.Variables {
		if v.ClsName == "" || v.FuncName != "" {
			continue
		}
		out = append(out, Declaration{
			Name:     member(v.ClsName, v.Name),
			Kind:     outline.KindProperty,
			Synopsis: strings.Join(strings.Fields(string(v.Visibility)+" "+v.Type+" "+v.Name), " "),
			Path:     path,
			Line:     v.Line,
		})
	}
	return out
}

// lastName drops the namespace of an absolute PHP name.
func lastName(name string) string {
	return name[strings.LastIndexByte(name, '\\')+1:]
}

func FromJS(path string, res js.Result) []Declaration {
	var out []Declaration
	for _, cls := range res.Classes {
		synopsis := "class " + cls.Name
		if cls.Parent != "" {
			synopsis += " extends " + cls.Parent
		}
		out = append(out, Declaration{Name: cls.Name, Kind: outline.KindClass, Synopsis: synopsis, Path: path, Line: cls.Line})
	}
	for _, fn := range res.Functions {
		kind := outline.KindFunction
		if fn.ClsName != "" {
			kind = outline.KindMethod
		}
		synopsis := fn.Name + "(" + fn.Args + ")"
		if fn.IsStatic {
			synopsis = "static " + synopsis
		}
		if fn.ReturnType != "" {
			synopsis += ": " + fn.ReturnType
		}
		out = append(out, Declaration{Name: member(fn.ClsName, fn.Name), Kind: kind, Synopsis: synopsis, Path: path, Line: fn.Line})
	}
	for _, c := range res.Constants {
		if c.FuncName != "" {
			continue
		}
		out = append(out, Declaration{Name: c.Name, Kind: outline.KindConstant, Synopsis: "const " + c.Name + " = " + c.Value, Path: path, Line: c.Line})
	}
	for _, v := range res.Variables {
		if v.FuncName != "" {
			continue
		}
		kind := outline.KindVariable
		if v.ClsName != "" {
			kind = outline.KindProperty
		}
		out = append(out, Declaration{Name: member(v.ClsName, v.Name), Kind: kind, Synopsis: strings.TrimSpace(v.Name + " " + v.Type), Path: path, Line: v.Line})
	}
	return out
}

func FromCSS(path string, res css.Result) []Declaration {
	var out []Declaration
	for _, n := range res.Names {
		if n.Kind == css.NameTag {
			continue
		}
		out = append(out, Declaration{Name: n.Name, Kind: outline.KindSelector, Path: path, Line: n.Line})
	}
	for _, k := range res.Keyframes {
		out = append(out, Declaration{Name: k.Name, Kind: outline.KindKeyframes, Synopsis: "@keyframes " + k.Name, Path: path, Line: k.Line})
	}
	for _, f := range res.Fonts {
		out = append(out, Declaration{Name: f.Name, Kind: outline.KindFont, Synopsis: "@font-face " + f.Name, Path: path, Line: f.Line})
	}
	for _, v := range res.Variables {
		out = append(out, Declaration{Name: v.Name, Kind: outline.KindVariable, Synopsis: v.Name + ": " + v.Value, Path: path, Line: v.Line})
	}
	return out
}

// Sort orders declarations by name, then pointer.
func Sort(decls []Declaration) {
	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].Name != decls[j].Name {
			return decls[i].Name < decls[j].Name
		}
		if decls[i].Path != decls[j].Path {
			return decls[i].Path < decls[j].Path
		}
		return decls[i].Line < decls[j].Line
	})
}

// WritePointers writes one "name<TAB>path:line" line per declaration.
func WritePointers(w io.Writer, decls []Declaration) error {
	bw := bufio.NewWriter(w)
	for _, d := range decls {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", d.Name, d.Pointer()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSynopses writes one "name<TAB>synopsis" line per declaration that
// has a synopsis.
func WriteSynopses(w io.Writer, decls []Declaration) error {
	bw := bufio.NewWriter(w)
	for _, d := range decls {
		if d.Synopsis == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", d.Name, d.Synopsis); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadPairs reads the "key<TAB>value" lines written by WritePointers and
// WriteSynopses. A key may appear on several lines.
func ReadPairs(r io.Reader) (map[string][]string, error) {
	out := make(map[string][]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: missing tab", n)
		}
		out[key] = append(out[key], value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	return out, nil
}
