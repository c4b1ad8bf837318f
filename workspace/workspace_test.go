package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ziracms/editor-sub001/config"
	"github.com/ziracms/editor-sub001/index"
	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/outline"
)

const phpSource = `<?php
namespace App;

class Foo {
    public function bar($a) { return 1; }
}

function helper() {}
`

const jsSource = `function greet(name) {
  return "hi " + name;
}
`

const cssSource = `.btn { color: red; }
#main .nav {}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestUpdateSkipsUnchangedText(t *testing.T) {
	ws := New(t.TempDir(), nil)

	first, err := ws.Update("a.php", phpSource)
	require.NoError(t, err)
	second, err := ws.Update("a.php", phpSource)
	require.NoError(t, err)
	assert.Same(t, first, second)

	third, err := ws.Update("a.php", phpSource+"\nfunction other() {}\n")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Same(t, third, ws.Get("a.php"))
}

func TestUpdateErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxFileSize = 16
	ws := New(t.TempDir(), cfg)

	_, err := ws.Update("notes.txt", "hello")
	assert.ErrorIs(t, err, ErrUnknownLanguage)

	_, err = ws.Update("big.js", strings.Repeat("x", 17))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Nil(t, ws.Get("big.js"))

	_, err = ws.Update("small.js", "var a = 1;")
	assert.NoError(t, err)
}

func TestDocumentLanguages(t *testing.T) {
	ws := New(t.TempDir(), nil)

	php, err := ws.Update("a.php", phpSource)
	require.NoError(t, err)
	assert.Equal(t, lang.PHP, php.Language)
	assert.NotNil(t, php.PHP)
	assert.Same(t, php.PHP, php.Result())

	js, err := ws.Update("a.js", jsSource)
	require.NoError(t, err)
	assert.Equal(t, lang.JS, js.Language)
	assert.NotNil(t, js.JS)
	require.Len(t, js.Outline(), 1)
	assert.Equal(t, "greet", js.Outline()[0].Name)

	css, err := ws.Update("a.css", cssSource+"}")
	require.NoError(t, err)
	require.Len(t, css.Errors(), 1)
	assert.Equal(t, "Excess brace", css.Errors()[0].Text)

	assert.Len(t, ws.Documents(), 3)
	assert.Equal(t, "a.css", ws.Documents()[0].Path)

	ws.Remove("a.css")
	assert.Nil(t, ws.Get("a.css"))
	assert.Len(t, ws.Documents(), 2)
}

func TestScan(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := writeFiles(t, map[string]string{
		"src/Foo.php":         phpSource,
		"web/app.js":          jsSource,
		"web/site.css":        cssSource,
		"vendor/lib/Skip.php": phpSource,
		"node_modules/x/i.js": jsSource,
		".git/hooks/pre.js":   jsSource,
		"README.md":           "# readme",
	})
	ws := New(dir, nil)

	docs, err := ws.Scan(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, d := range ws.Documents() {
		rel, err := filepath.Rel(dir, d.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
	}
	assert.Len(t, docs, 3)
	assert.Equal(t, []string{"src/Foo.php", "web/app.js", "web/site.css"}, paths)
}

func TestParseFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := writeFiles(t, map[string]string{
		"a.php":     phpSource,
		"b.js":      jsSource,
		"notes.txt": "text",
	})
	cfg := config.Default()
	cfg.Workers.Parse = 2
	ws := New(dir, cfg)

	docs, err := ws.ParseFiles(context.Background(), []string{
		filepath.Join(dir, "a.php"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "b.js"),
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, lang.PHP, docs[0].Language)
	assert.Equal(t, lang.JS, docs[1].Language)

	_, err = ws.ParseFiles(context.Background(), []string{filepath.Join(dir, "missing.php")})
	assert.Error(t, err)
}

func TestParseFilesCanceled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := writeFiles(t, map[string]string{"a.php": phpSource})
	ws := New(dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ws.ParseFiles(ctx, []string{filepath.Join(dir, "a.php")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefresh(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := writeFiles(t, map[string]string{
		"a.php": phpSource,
		"b.js":  jsSource,
	})
	a := filepath.Join(dir, "a.php")
	b := filepath.Join(dir, "b.js")
	ws := New(dir, nil)
	store := index.NewStore()
	ctx := context.Background()

	n, err := ws.Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.Manifest, 2)
	assert.NotEmpty(t, store.Declarations[a])

	n, err = ws.Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(b, []byte(jsSource+"function other() {}\n"), 0o644))
	require.NoError(t, os.Chtimes(b, later, later))
	n, err = ws.Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	var names []string
	for _, d := range store.Declarations[b] {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "other")

	// A new timestamp over the same content is not parsed again.
	touched := later.Add(time.Hour)
	require.NoError(t, os.Chtimes(a, touched, touched))
	n, err = ws.Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, touched.UnixNano(), store.Manifest[a].Modified)

	require.NoError(t, os.Remove(b))
	n, err = ws.Refresh(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NotContains(t, store.Manifest, b)
	assert.NotContains(t, store.Declarations, b)
}

func newPopulated(t *testing.T) *Workspace {
	t.Helper()
	ws := New(t.TempDir(), nil)
	for path, text := range map[string]string{
		"src/Foo.php": phpSource,
		"web/app.js":  jsSource,
		"web/s.css":   cssSource,
	} {
		_, err := ws.Update(path, text)
		require.NoError(t, err)
	}
	return ws
}

func TestDefinition(t *testing.T) {
	ws := newPopulated(t)

	decls := ws.Definition("Foo")
	require.Len(t, decls, 1)
	assert.Equal(t, `\App\Foo`, decls[0].Name)
	assert.Equal(t, "src/Foo.php:4", decls[0].Pointer())

	decls = ws.Definition("bar")
	require.Len(t, decls, 1)
	assert.Equal(t, `\App\Foo::bar`, decls[0].Name)
	assert.Equal(t, outline.KindMethod, decls[0].Kind)

	decls = ws.Definition("helper")
	require.Len(t, decls, 1)
	assert.Equal(t, 8, decls[0].Line)

	decls = ws.Definition("btn")
	require.Len(t, decls, 1)
	assert.Equal(t, ".btn", decls[0].Name)

	assert.Empty(t, ws.Definition(""))
	assert.Empty(t, ws.Definition("nothing"))
}

func TestDefinitionAt(t *testing.T) {
	ws := newPopulated(t)
	_, err := ws.Update("web/main.js", "greet('bob');\n")
	require.NoError(t, err)

	decls := ws.DefinitionAt("web/main.js", 1, 2)
	require.Len(t, decls, 1)
	assert.Equal(t, "web/app.js", decls[0].Path)
	assert.Equal(t, 1, decls[0].Line)

	assert.Empty(t, ws.DefinitionAt("unknown.js", 1, 0))
}

func TestCompletions(t *testing.T) {
	ws := newPopulated(t)

	var labels []string
	for _, c := range ws.Completions("GR") {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"greet"}, labels)

	completions := ws.Completions("he")
	require.Len(t, completions, 1)
	assert.Equal(t, "helper", completions[0].Label)
	assert.Equal(t, outline.KindFunction, completions[0].Kind)
	assert.Equal(t, "function helper()", completions[0].Detail)

	assert.Empty(t, ws.Completions(""))
}

func TestWordAt(t *testing.T) {
	text := `$this->load(\App\Foo::create());`
	assert.Equal(t, "$this", WordAt(text, 2))
	assert.Equal(t, "load", WordAt(text, 8))
	assert.Equal(t, `App\Foo`, WordAt(text, 14))
	assert.Equal(t, "", WordAt(text, -1))
	assert.Equal(t, "", WordAt(text, len(text)))

	assert.Equal(t, "lo", PrefixAt(text, 9))
	assert.Equal(t, "", PrefixAt(text, 0))
}
