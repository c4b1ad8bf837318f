package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziracms/editor-sub001/lang/css"
	"github.com/ziracms/editor-sub001/lang/js"
	"github.com/ziracms/editor-sub001/lang/php"
)

func TestFromPHP(t *testing.T) {
	res := php.Parse(`<?php
namespace App;
use Lib\Cache;
class Foo {
    const X = 1;
    public $y;
    public function z($a) { return 1; }
}
function helper() {}
`)
	symbols := FromPHP(res)
	require.Len(t, symbols, 3)

	ns := symbols[0]
	assert.Equal(t, KindNamespace, ns.Kind)
	assert.Equal(t, "App", ns.Name)
	require.Len(t, ns.Children, 1)
	assert.Equal(t, `\Lib\Cache`, ns.Children[0].Detail)
	assert.Equal(t, 3, ns.Children[0].Line)

	cls := symbols[1]
	assert.Equal(t, KindClass, cls.Kind)
	assert.Equal(t, `\App\Foo`, cls.Name)
	require.Len(t, cls.Children, 3)
	assert.Equal(t, []Kind{KindConstant, KindProperty, KindMethod},
		[]Kind{cls.Children[0].Kind, cls.Children[1].Kind, cls.Children[2].Kind})
	assert.Equal(t, 7, cls.Children[2].Line)

	fn := symbols[2]
	assert.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, 9, fn.Line)
}

func TestFromPHPBoundsChecked(t *testing.T) {
	res := php.Result{
		Classes: []php.Class{{Name: `\A`, FunctionIndexes: []int{5}, VariableIndexes: []int{-1}, ConstantIndexes: []int{2}, Line: 1}},
	}
	require.NotPanics(t, func() {
		symbols := FromPHP(res)
		require.Len(t, symbols, 1)
		assert.Empty(t, symbols[0].Children)
	})
}

func TestFromJS(t *testing.T) {
	res := js.Parse("class A {\n  foo() {}\n}\nfunction bar() {}\nconst N = 1;\n")
	symbols := FromJS(res)
	require.Len(t, symbols, 3)

	assert.Equal(t, "A", symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, Symbol{Name: "foo", Detail: "()", Kind: KindMethod, Line: 2}, symbols[0].Children[0])

	assert.Equal(t, "bar", symbols[1].Name)
	assert.Equal(t, KindFunction, symbols[1].Kind)
	assert.Equal(t, Symbol{Name: "N", Detail: "1", Kind: KindConstant, Line: 5}, symbols[2])
}

func TestFromCSS(t *testing.T) {
	res := css.Parse("@media (min-width: 600px) { .a { color: red; } } @keyframes spin { from {} to {} }\n.b {}\n")
	symbols := FromCSS(res)
	require.Len(t, symbols, 3)

	assert.Equal(t, KindMedia, symbols[0].Kind)
	assert.Equal(t, "min-width: 600px", symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, ".a", symbols[0].Children[0].Name)

	assert.Equal(t, Symbol{Name: "spin", Kind: KindKeyframes, Line: 1}, symbols[1])
	assert.Equal(t, Symbol{Name: ".b", Kind: KindSelector, Line: 2}, symbols[2])
}

func TestWalk(t *testing.T) {
	tree := []Symbol{
		{Name: "a", Children: []Symbol{{Name: "b"}, {Name: "c", Children: []Symbol{{Name: "d"}}}}},
		{Name: "e"},
	}
	var names []string
	var depths []int
	Walk(tree, func(s Symbol, depth int) {
		names = append(names, s.Name)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names)
	assert.Equal(t, []int{0, 1, 1, 2, 0}, depths)
}
