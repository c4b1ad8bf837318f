package css

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

func TestMediaAndKeyframes(t *testing.T) {
	res := Parse("@media (min-width: 600px) { .a { color: red; } } @keyframes spin { from {} to {} }")

	if len(res.Medias) != 1 {
		t.Fatalf("Expected 1 media, got %+v", res.Medias)
	}
	if res.Medias[0].Name != "min-width: 600px" {
		t.Errorf("Expected media %q, got %q", "min-width: 600px", res.Medias[0].Name)
	}
	if !reflect.DeepEqual(res.Medias[0].SelectorIndexes, []int{0}) {
		t.Errorf("Expected selector indexes [0], got %v", res.Medias[0].SelectorIndexes)
	}
	if len(res.Keyframes) != 1 || res.Keyframes[0].Name != "spin" {
		t.Errorf("Expected keyframes spin, got %+v", res.Keyframes)
	}
	if i := res.FindName(".a"); i < 0 || res.Names[i].Kind != NameClass {
		t.Errorf("Expected class name .a, got %+v", res.Names)
	}
	if len(res.Selectors) != 1 || res.Selectors[0].Name != ".a" {
		t.Errorf("Expected one selector .a, got %+v", res.Selectors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", res.Errors)
	}
}

func TestMediaWithoutParens(t *testing.T) {
	res := Parse("@media print {\n  .x {}\n}\n@media screen and (max-width: 40em) and (orientation: landscape) {}\n")
	if len(res.Medias) != 2 {
		t.Fatalf("Expected 2 medias, got %+v", res.Medias)
	}
	if res.Medias[0].Name != "print" {
		t.Errorf("Expected media print, got %q", res.Medias[0].Name)
	}
	if res.Medias[1].Name != "max-width: 40em" || res.Medias[1].Line != 4 {
		t.Errorf("Unexpected media %+v", res.Medias[1])
	}
}

const selectorSource = `/* Layout */
#main, div > .item:hover, ul li a[href] {
  color: #fff;
}
#abc {}
#header-1 .nav {}
`

func TestSelectorNames(t *testing.T) {
	res := Parse(selectorSource)

	want := []Name{
		{Name: "#main", Kind: NameID, Line: 2},
		{Name: "div", Kind: NameTag, Line: 2},
		{Name: ".item", Kind: NameClass, Line: 2},
		{Name: "ul", Kind: NameTag, Line: 2},
		{Name: "li", Kind: NameTag, Line: 2},
		{Name: "a", Kind: NameTag, Line: 2},
		{Name: "#header-1", Kind: NameID, Line: 6},
		{Name: ".nav", Kind: NameClass, Line: 6},
	}
	if !reflect.DeepEqual(res.Names, want) {
		t.Errorf("Unexpected names\nwant %+v\ngot  %+v", want, res.Names)
	}
	if len(res.Selectors) != 3 {
		t.Fatalf("Expected 3 selectors, got %+v", res.Selectors)
	}
	if res.Selectors[0].Name != "#main, div > .item:hover, ul li a[href]" {
		t.Errorf("Unexpected selector %q", res.Selectors[0].Name)
	}
	if len(res.Comments) != 1 || res.Comments[0].Text != "Layout" {
		t.Errorf("Unexpected comments %+v", res.Comments)
	}
}

func TestHexColorsAreNotNames(t *testing.T) {
	for _, color := range []string{"#abc", "#aabbcc", "#aabbccdd"} {
		res := Parse(color + " {}")
		if len(res.Names) != 0 {
			t.Errorf("Expected %s to be skipped, got %+v", color, res.Names)
		}
	}
	res := Parse("#abcd {}")
	if res.FindName("#abcd") < 0 {
		t.Errorf("Expected #abcd to be an id, got %+v", res.Names)
	}
}

func TestVariables(t *testing.T) {
	source := `:root {
  --main-color: #06c;
}
$base: 10px !default;
.btn { width: $base; }
`
	res := Parse(source)
	want := []Variable{
		{Name: "--main-color", Value: "#06c", Line: 2},
		{Name: "$base", Value: "10px !default", Line: 4},
	}
	if !reflect.DeepEqual(res.Variables, want) {
		t.Errorf("Unexpected variables\nwant %+v\ngot  %+v", want, res.Variables)
	}
	if res.FindName("root") >= 0 {
		t.Errorf("Pseudo-class recorded as a name: %+v", res.Names)
	}
}

func TestFontFace(t *testing.T) {
	source := `@font-face {
  font-family: "Open  Sans";
  src: url(open-sans.woff2);
}
@font-face { src: url(x.woff); }
`
	res := Parse(source)
	if len(res.Fonts) != 1 {
		t.Fatalf("Expected 1 font, got %+v", res.Fonts)
	}
	if res.Fonts[0].Name != "Open Sans" || res.Fonts[0].Line != 1 {
		t.Errorf("Unexpected font %+v", res.Fonts[0])
	}
}

func TestVendorKeyframes(t *testing.T) {
	res := Parse("@-webkit-keyframes pulse {\n  0% { opacity: 0; }\n  100% { opacity: 1; }\n}\n")
	if len(res.Keyframes) != 1 || res.Keyframes[0].Name != "pulse" {
		t.Errorf("Expected keyframes pulse, got %+v", res.Keyframes)
	}
	if len(res.Selectors) != 0 {
		t.Errorf("Keyframe steps recorded as selectors: %+v", res.Selectors)
	}
}

func TestScssLineComments(t *testing.T) {
	source := `// Buttons
.icon { background: url(http://example.org/a.png); }
.icon-#{$name} { color: red; }
`
	res := Parse(source)
	if len(res.Comments) != 1 || res.Comments[0].Text != "Buttons" || res.Comments[0].Line != 1 {
		t.Errorf("Unexpected comments %+v", res.Comments)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", res.Errors)
	}
	if len(res.Selectors) != 2 || res.Selectors[1].Name != ".icon-#{$name}" {
		t.Errorf("Unexpected selectors %+v", res.Selectors)
	}
	if res.FindName(".icon-") >= 0 {
		t.Errorf("Interpolated name recorded: %+v", res.Names)
	}
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

func TestOffsetFidelity(t *testing.T) {
	res := Parse(selectorSource)
	lines := strings.Split(selectorSource, "\n")
	for _, n := range res.Names {
		if !strings.Contains(strings.ToLower(lines[n.Line-1]), n.Name) {
			t.Errorf("Name %q not on line %d: %q", n.Name, n.Line, lines[n.Line-1])
		}
	}
}

func TestTagsOption(t *testing.T) {
	res := NewParser(WithTags(scan.ParseWordList("widget"))).Parse("widget, div {}")
	if len(res.Names) != 1 || res.Names[0].Name != "widget" {
		t.Errorf("Expected only widget, got %+v", res.Names)
	}
}

func TestParseIdempotent(t *testing.T) {
	p := NewParser()
	first := p.Parse(selectorSource)
	second := p.Parse(selectorSource)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestTruncatedInput(t *testing.T) {
	source := selectorSource + "@media (min-width: 1px) { .a { --x: 1; } }\n@font-face { font-family: 'A'; }\n"
	p := NewParser()
	for i := 0; i <= len(source); i++ {
		p.Parse(source[:i])
	}

	// Cutting at the start of a rule keeps everything declared above it.
	declared := func(res Result) map[string]int {
		out := map[string]int{}
		for _, n := range res.Names {
			out["name "+n.Name] = n.Line
		}
		for _, s := range res.Selectors {
			out["selector "+s.Name] = s.Line
		}
		for _, m := range res.Medias {
			out["media "+m.Name] = m.Line
		}
		for _, v := range res.Variables {
			out["variable "+v.Name] = v.Line
		}
		for _, f := range res.Fonts {
			out["font "+f.Name] = f.Line
		}
		return out
	}
	full := Parse(source)
	want := declared(full)
	lines := scan.NewLineIndex(source)
	cuts := []int{lines.Line(len(source)) + 1}
	for _, s := range full.Selectors {
		cuts = append(cuts, s.Line)
	}
	for _, f := range full.Fonts {
		cuts = append(cuts, f.Line)
	}
	for _, cut := range cuts {
		got := declared(p.Parse(source[:lines.Offset(cut, 0)]))
		for key, line := range want {
			if _, ok := got[key]; line < cut && !ok {
				t.Errorf("Cut before line %d: missing %s", cut, key)
			}
		}
	}
}
