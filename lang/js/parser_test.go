package js

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

func findFunction(t *testing.T, res Result, cls, name string) Function {
	t.Helper()
	for _, fn := range res.Functions {
		if fn.ClsName == cls && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("Function %s::%s not found in %+v", cls, name, res.Functions)
	return Function{}
}

func findVariable(t *testing.T, res Result, cls, fn, name string) Variable {
	t.Helper()
	for _, v := range res.Variables {
		if v.ClsName == cls && v.FuncName == fn && v.Name == name {
			return v
		}
	}
	t.Fatalf("Variable %s::%s::%s not found in %+v", cls, fn, name, res.Variables)
	return Variable{}
}

func TestPrototypeAndClassEquivalence(t *testing.T) {
	es6 := Parse("class A {\n  foo(a, b) {\n    return 1;\n  }\n}\n")
	proto := Parse("function A() {}\nA.prototype.foo = function(a, b) {\n  return 1;\n};\n")

	for name, res := range map[string]Result{"es6": es6, "prototype": proto} {
		t.Run(name, func(t *testing.T) {
			ci := res.FindClass("A")
			if ci < 0 {
				t.Fatalf("Expected class A, got %+v", res.Classes)
			}
			cls := res.Classes[ci]
			if len(cls.FunctionIndexes) != 1 {
				t.Fatalf("Expected 1 method, got %v", cls.FunctionIndexes)
			}
			fn, _ := res.FunctionAt(cls.FunctionIndexes[0])
			if fn.Name != "foo" || fn.ClsName != "A" {
				t.Errorf("Unexpected method %+v", fn)
			}
			if fn.Args != "a, b" || fn.MinArgs != 2 || fn.MaxArgs != 2 {
				t.Errorf("Unexpected signature %q %d..%d", fn.Args, fn.MinArgs, fn.MaxArgs)
			}
			if fn.ReturnType != TypeNumber {
				t.Errorf("Expected return type %q, got %q", TypeNumber, fn.ReturnType)
			}
			if fn.Line != 2 {
				t.Errorf("Expected method on line 2, got %d", fn.Line)
			}
			if len(res.Errors) != 0 {
				t.Errorf("Expected no errors, got %v", res.Errors)
			}
		})
	}
}

const prototypeSource = `function Animal(name) {
  this.name = name;
}
Animal.prototype = {
  speak: function() {
    return "hi";
  },
  legs() { return 4; }
};
Animal.create = function() {
  return new Animal();
};
function Dog() {}
Dog.prototype = new Animal();
`

func TestPrototypeMembers(t *testing.T) {
	res := Parse(prototypeSource)

	ai := res.FindClass("Animal")
	if ai < 0 {
		t.Fatalf("Expected class Animal, got %+v", res.Classes)
	}
	animal := res.Classes[ai]
	if animal.Line != 1 {
		t.Errorf("Expected Animal on line 1, got %d", animal.Line)
	}

	t.Run("object literal", func(t *testing.T) {
		if got := findFunction(t, res, "Animal", "speak").ReturnType; got != TypeString {
			t.Errorf("Expected speak to return %q, got %q", TypeString, got)
		}
		if got := findFunction(t, res, "Animal", "legs").ReturnType; got != TypeNumber {
			t.Errorf("Expected legs to return %q, got %q", TypeNumber, got)
		}
	})

	t.Run("static", func(t *testing.T) {
		fn := findFunction(t, res, "Animal", "create")
		if !fn.IsStatic {
			t.Error("Expected create to be static")
		}
		if fn.ReturnType != "Animal" {
			t.Errorf("Expected create to return Animal, got %q", fn.ReturnType)
		}
	})

	t.Run("this property", func(t *testing.T) {
		v := findVariable(t, res, "Animal", "", "name")
		if v.Line != 2 {
			t.Errorf("Expected property on line 2, got %d", v.Line)
		}
	})

	t.Run("parent", func(t *testing.T) {
		di := res.FindClass("Dog")
		if di < 0 {
			t.Fatalf("Expected class Dog, got %+v", res.Classes)
		}
		if res.Classes[di].Parent != "Animal" {
			t.Errorf("Expected parent Animal, got %q", res.Classes[di].Parent)
		}
	})

	if len(res.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", res.Errors)
	}
}

const classSource = `/** Base shape */
class Shape extends geo.Base {
  #id = 0;
  static count = 0;
  name = "shape";
  constructor(width, height = 1) {
    super();
    this.width = width;
    this.area = width * height;
  }
  static create() {
    return new Shape(1);
  }
  load() {
    return [];
  }
  handle = (e) => {
    return !e;
  };
}
`

func TestES6Class(t *testing.T) {
	res := Parse(classSource)

	if len(res.Classes) != 1 {
		t.Fatalf("Expected 1 class, got %+v", res.Classes)
	}
	cls := res.Classes[0]
	if cls.Name != "Shape" || cls.Parent != "geo.Base" {
		t.Errorf("Unexpected class %q extends %q", cls.Name, cls.Parent)
	}
	if cls.Comment != "Base shape" {
		t.Errorf("Expected comment %q, got %q", "Base shape", cls.Comment)
	}
	if cls.Line != 2 {
		t.Errorf("Expected class on line 2, got %d", cls.Line)
	}

	t.Run("fields", func(t *testing.T) {
		id := findVariable(t, res, "Shape", "", "#id")
		if id.Visibility != lang.VisibilityPrivate || id.Type != TypeNumber {
			t.Errorf("Unexpected private field %+v", id)
		}
		count := findVariable(t, res, "Shape", "", "count")
		if !count.IsStatic || count.Type != TypeNumber {
			t.Errorf("Unexpected static field %+v", count)
		}
		if got := findVariable(t, res, "Shape", "", "name").Type; got != TypeString {
			t.Errorf("Expected name to be %q, got %q", TypeString, got)
		}
		findVariable(t, res, "Shape", "", "width")
		findVariable(t, res, "Shape", "", "area")
	})

	t.Run("constructor", func(t *testing.T) {
		fn := findFunction(t, res, "Shape", "constructor")
		if fn.MinArgs != 1 || fn.MaxArgs != 2 {
			t.Errorf("Expected args 1..2, got %d..%d", fn.MinArgs, fn.MaxArgs)
		}
		if fn.Args != "width, height = 1" {
			t.Errorf("Unexpected args %q", fn.Args)
		}
		findVariable(t, res, "Shape", "constructor", "height")
	})

	t.Run("methods", func(t *testing.T) {
		create := findFunction(t, res, "Shape", "create")
		if !create.IsStatic || create.ReturnType != "Shape" {
			t.Errorf("Unexpected static method %+v", create)
		}
		if got := findFunction(t, res, "Shape", "load").ReturnType; got != TypeArray {
			t.Errorf("Expected load to return %q, got %q", TypeArray, got)
		}
		handle := findFunction(t, res, "Shape", "handle")
		if handle.ReturnType != TypeBoolean || handle.Args != "e" {
			t.Errorf("Unexpected arrow method %+v", handle)
		}
		if len(cls.FunctionIndexes) != 4 {
			t.Errorf("Expected 4 methods, got %v", cls.FunctionIndexes)
		}
	})

	if len(res.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", res.Errors)
	}
}

const variablesSource = `var count = 0, label = "x";
let items = [];
const LIMIT = 10;
const double = (n) => n * 2;
function run(a) {
  const inner = 5;
  var d = new Date();
  var re = /ab+c/i;
  return d;
}
total = count;
`

func TestVariablesAndConstants(t *testing.T) {
	res := Parse(variablesSource)

	globals := map[string]string{
		"count": TypeNumber,
		"label": TypeString,
		"items": TypeArray,
		"total": TypeNumber,
	}
	for name, typ := range globals {
		if got := findVariable(t, res, "", "", name).Type; got != typ {
			t.Errorf("Expected %s to be %q, got %q", name, typ, got)
		}
	}

	t.Run("constants", func(t *testing.T) {
		var limit Constant
		for _, c := range res.Constants {
			if c.Name == "LIMIT" {
				limit = c
			}
		}
		if limit.Value != "10" || limit.FuncName != "" {
			t.Errorf("Unexpected constant %+v", limit)
		}
	})

	t.Run("arrow function", func(t *testing.T) {
		fn := findFunction(t, res, "", "double")
		if fn.Args != "n" || fn.MaxArgs != 1 {
			t.Errorf("Unexpected arrow function %+v", fn)
		}
	})

	t.Run("function scope", func(t *testing.T) {
		fn := findFunction(t, res, "", "run")
		if fn.ReturnType != "Date" {
			t.Errorf("Expected run to return Date, got %q", fn.ReturnType)
		}
		if len(fn.ConstantIndexes) != 1 {
			t.Fatalf("Expected 1 function constant, got %v", fn.ConstantIndexes)
		}
		c, _ := res.ConstantAt(fn.ConstantIndexes[0])
		if c.Name != "inner" || c.Value != "5" || c.FuncName != "run" {
			t.Errorf("Unexpected function constant %+v", c)
		}
		if got := findVariable(t, res, "", "run", "d").Type; got != "Date" {
			t.Errorf("Expected d to be Date, got %q", got)
		}
		if got := findVariable(t, res, "", "run", "re").Type; got != TypeRegExp {
			t.Errorf("Expected re to be %q, got %q", TypeRegExp, got)
		}
		findVariable(t, res, "", "run", "a")
	})
}

func TestRegexAndDivision(t *testing.T) {
	source := `var half = 10 / 2 / 5;
var re = /[{(]/g;
var q = (half + 1) / 2;
var path = "a/b";
`
	res := Parse(source)
	if len(res.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", res.Errors)
	}
	if got := findVariable(t, res, "", "", "re").Type; got != TypeRegExp {
		t.Errorf("Expected re to be %q, got %q", TypeRegExp, got)
	}
	if got := findVariable(t, res, "", "", "path").Type; got != TypeString {
		t.Errorf("Expected path to be %q, got %q", TypeString, got)
	}
	findVariable(t, res, "", "", "q")
}

func TestAutomaticSemicolons(t *testing.T) {
	res := Parse("var a = 1\nvar b = \"s\"\nc = a\nd()\n")

	want := []struct{ name, typ string }{
		{"a", TypeNumber},
		{"b", TypeString},
		{"c", TypeNumber},
	}
	if len(res.Variables) != len(want) {
		t.Fatalf("Expected %d variables, got %+v", len(want), res.Variables)
	}
	for i, w := range want {
		v := res.Variables[i]
		if v.Name != w.name || v.Type != w.typ || v.Line != i+1 {
			t.Errorf("Expected %s %q on line %d, got %+v", w.name, w.typ, i+1, v)
		}
	}
}

func TestCommentAssociation(t *testing.T) {
	res := Parse("// Adds numbers\nfunction add(a, b) { return a + b; }\n\nfunction sub(a, b) {}\n")
	if got := findFunction(t, res, "", "add").Comment; got != "Adds numbers" {
		t.Errorf("Expected comment %q, got %q", "Adds numbers", got)
	}
	if got := findFunction(t, res, "", "sub").Comment; got != "" {
		t.Errorf("Expected no comment, got %q", got)
	}
	if len(res.Comments) != 1 || res.Comments[0].Line != 1 {
		t.Errorf("Unexpected comments %+v", res.Comments)
	}
}

func TestNestedFunctionsNotRecorded(t *testing.T) {
	res := Parse("function outer() {\n  function inner() {}\n  var x = 1;\n}\n")
	if len(res.Functions) != 1 || res.Functions[0].Name != "outer" {
		t.Errorf("Expected only outer, got %+v", res.Functions)
	}
	findVariable(t, res, "", "outer", "x")
}

func TestBalanceErrors(t *testing.T) {
	cases := []struct {
		open, close string
		what        string
	}{
		{"{", "}", "brace"},
		{"(", ")", "parenthesis"},
		{"[", "]", "bracket"},
	}
	for _, c := range cases {
		for n := 1; n <= 4; n++ {
			t.Run(c.what, func(t *testing.T) {
				unclosed := Parse("\n" + strings.Repeat(c.open, n))
				assertSingleError(t, unclosed.Errors, "Unclosed "+c.what)

				excess := Parse("\n" + strings.Repeat(c.close, n))
				assertSingleError(t, excess.Errors, "Excess "+c.what)

				balanced := Parse("\n" + strings.Repeat(c.open, n) + strings.Repeat(c.close, n))
				if len(balanced.Errors) != 0 {
					t.Errorf("Expected no errors, got %v", balanced.Errors)
				}
			})
		}
	}
}

func assertSingleError(t *testing.T, errs []lang.Error, text string) {
	t.Helper()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %v", errs)
	}
	if errs[0].Text != text {
		t.Errorf("Expected %q, got %q", text, errs[0].Text)
	}
	if errs[0].Line != 2 {
		t.Errorf("Expected error on line 2, got %d", errs[0].Line)
	}
}

func TestParseIdempotent(t *testing.T) {
	p := NewParser()
	first := p.Parse(classSource)
	second := p.Parse(classSource)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestTruncatedInput(t *testing.T) {
	source := classSource + prototypeSource + variablesSource
	p := NewParser()
	for i := 0; i <= len(source); i++ {
		p.Parse(source[:i])
	}

	// Cutting just before a top-level function keeps every function above it.
	full := Parse(source)
	lines := scan.NewLineIndex(source)
	for _, cut := range full.Functions {
		if cut.ClsName != "" {
			continue
		}
		res := p.Parse(source[:lines.Offset(cut.Line, 0)])
		got := map[string]bool{}
		for _, fn := range res.Functions {
			got[fn.ClsName+"::"+fn.Name] = true
		}
		for _, fn := range full.Functions {
			if fn.Line < cut.Line && !got[fn.ClsName+"::"+fn.Name] {
				t.Errorf("Cut before line %d: missing function %s::%s", cut.Line, fn.ClsName, fn.Name)
			}
		}
	}
}
