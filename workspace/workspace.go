// Package workspace keeps the parsed state of every open or scanned file
// and answers the lookups an editor makes across them.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/ziracms/editor-sub001/config"
	"github.com/ziracms/editor-sub001/index"
	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/css"
	"github.com/ziracms/editor-sub001/lang/js"
	"github.com/ziracms/editor-sub001/lang/php"
	"github.com/ziracms/editor-sub001/lang/scan"
	"github.com/ziracms/editor-sub001/outline"
)

var log = commonlog.GetLogger("navi.workspace")

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrTooLarge        = errors.New("file too large")
)

// Document is one parsed file. Exactly one of PHP, JS and CSS is set.
type Document struct {
	Path     string
	Language lang.Language
	Text     string
	Hash     uint64

	PHP *php.Result
	JS  *js.Result
	CSS *css.Result

	lines *scan.LineIndex
}

// Lines converts between offsets and line/column positions in Text.
func (d *Document) Lines() *scan.LineIndex {
	return d.lines
}

func (d *Document) Errors() []lang.Error {
	switch {
	case d.PHP != nil:
		return d.PHP.Errors
	case d.JS != nil:
		return d.JS.Errors
	case d.CSS != nil:
		return d.CSS.Errors
	}
	return nil
}

func (d *Document) Outline() []outline.Symbol {
	switch {
	case d.PHP != nil:
		return outline.FromPHP(*d.PHP)
	case d.JS != nil:
		return outline.FromJS(*d.JS)
	case d.CSS != nil:
		return outline.FromCSS(*d.CSS)
	}
	return nil
}

func (d *Document) Declarations() []index.Declaration {
	switch {
	case d.PHP != nil:
		return index.FromPHP(d.Path, *d.PHP)
	case d.JS != nil:
		return index.FromJS(d.Path, *d.JS)
	case d.CSS != nil:
		return index.FromCSS(d.Path, *d.CSS)
	}
	return nil
}

// Result returns the language-specific parse result.
func (d *Document) Result() any {
	switch {
	case d.PHP != nil:
		return d.PHP
	case d.JS != nil:
		return d.JS
	case d.CSS != nil:
		return d.CSS
	}
	return nil
}

// parsers hands out one parser per goroutine; a Parser reuses its lookup
// maps between calls but must not be shared.
type parsers struct {
	php sync.Pool
	js  sync.Pool
	css sync.Pool
}

func newParsers() *parsers {
	return &parsers{
		php: sync.Pool{New: func() any { return php.NewParser() }},
		js:  sync.Pool{New: func() any { return js.NewParser() }},
		css: sync.Pool{New: func() any { return css.NewParser() }},
	}
}

func (ps *parsers) parse(doc *Document) {
	switch doc.Language {
	case lang.PHP:
		p := ps.php.Get().(*php.Parser)
		res := p.Parse(doc.Text)
		ps.php.Put(p)
		doc.PHP = &res
	case lang.JS:
		p := ps.js.Get().(*js.Parser)
		res := p.Parse(doc.Text)
		ps.js.Put(p)
		doc.JS = &res
	case lang.CSS:
		p := ps.css.Get().(*css.Parser)
		res := p.Parse(doc.Text)
		ps.css.Put(p)
		doc.CSS = &res
	}
}

type Workspace struct {
	cfg     *config.Config
	rootDir string
	parsers *parsers

	mu   sync.RWMutex
	docs map[string]*Document
}

func New(rootDir string, cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Workspace{
		cfg:     cfg,
		rootDir: rootDir,
		parsers: newParsers(),
		docs:    make(map[string]*Document),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Config() *config.Config {
	return w.cfg
}

// Update parses text as the new content of path. Text identical to the
// stored document's is not parsed again.
func (w *Workspace) Update(path, text string) (*Document, error) {
	language, ok := w.cfg.LanguageOf(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownLanguage)
	}
	if int64(len(text)) > w.cfg.Limits.MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	hash := index.Hash(text)

	w.mu.RLock()
	old := w.docs[path]
	w.mu.RUnlock()
	if old != nil && old.Hash == hash && old.Text == text {
		log.Debugf("unchanged %s", path)
		return old, nil
	}

	doc := &Document{Path: path, Language: language, Text: text, Hash: hash, lines: scan.NewLineIndex(text)}
	start := time.Now()
	w.parsers.parse(doc)
	log.Debugf("parsed %s in %s", path, time.Since(start))

	w.mu.Lock()
	w.docs[path] = doc
	w.mu.Unlock()
	return doc, nil
}

// Open reads path from disk and updates it.
func (w *Workspace) Open(path string) (*Document, error) {
	if _, ok := w.cfg.LanguageOf(path); !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownLanguage)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() > w.cfg.Limits.MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return w.Update(path, string(data))
}

func (w *Workspace) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.docs, path)
}

func (w *Workspace) Get(path string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[path]
}

// Documents returns every document ordered by path.
func (w *Workspace) Documents() []*Document {
	w.mu.RLock()
	docs := make([]*Document, 0, len(w.docs))
	for _, d := range w.docs {
		docs = append(docs, d)
	}
	w.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs
}

func (w *Workspace) workers() int {
	if n := w.cfg.Workers.Parse; n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// ParseFiles opens paths concurrently. Files of unknown language or over
// the size limit are skipped with a warning; any other failure cancels the
// remaining work.
func (w *Workspace) ParseFiles(ctx context.Context, paths []string) ([]*Document, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers())

	docs := make([]*Document, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := w.Open(path)
			switch {
			case errors.Is(err, ErrUnknownLanguage), errors.Is(err, ErrTooLarge):
				log.Warningf("skipping %s", err)
				return nil
			case err != nil:
				return fmt.Errorf("%s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(docs, func(d *Document) bool { return d == nil }), nil
}

// walk calls fn for every file below the root directory that has a known
// language and is not excluded. Hidden directories are skipped.
func (w *Workspace) walk(fn func(path string, info fs.FileInfo)) error {
	return filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(w.rootDir, path)
		if err != nil || w.cfg.Excluded(filepath.ToSlash(rel)) {
			return nil
		}
		if _, ok := w.cfg.LanguageOf(path); !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		fn(path, info)
		return nil
	})
}

// Paths lists every file below the root directory that has a known
// language and is not excluded.
func (w *Workspace) Paths() ([]string, error) {
	var paths []string
	err := w.walk(func(path string, _ fs.FileInfo) {
		paths = append(paths, path)
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.rootDir, err)
	}
	return paths, nil
}

// Scan parses every file returned by Paths.
func (w *Workspace) Scan(ctx context.Context) ([]*Document, error) {
	paths, err := w.Paths()
	if err != nil {
		return nil, err
	}
	log.Infof("scanning %d files in %s", len(paths), w.rootDir)
	return w.ParseFiles(ctx, paths)
}

// Refresh brings store up to date with the files below the root directory.
// A file is parsed only when its modification time and content hash both
// differ from the stored entry; files that are gone are dropped. It returns
// the number of files parsed.
func (w *Workspace) Refresh(ctx context.Context, store *index.Store) (int, error) {
	paths, err := w.Paths()
	if err != nil {
		return 0, err
	}

	present := make(map[string]bool, len(paths))
	modified := make(map[string]int64, len(paths))
	var stale []string
	for _, path := range paths {
		present[path] = true
		info, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("stat: %w", err)
		}
		mod := info.ModTime().UnixNano()
		modified[path] = mod
		if store.Fresh(path, mod) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read: %w", err)
		}
		if store.Unchanged(path, mod, index.Hash(string(data))) {
			continue
		}
		stale = append(stale, path)
	}
	if dropped := store.Retain(func(path string) bool { return present[path] }); dropped > 0 {
		log.Infof("dropped %d removed files", dropped)
	}

	docs, err := w.ParseFiles(ctx, stale)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		store.Put(doc.Path, modified[doc.Path], doc.Hash, doc.Declarations())
	}
	log.Infof("refreshed %d of %d files in %s", len(docs), len(paths), w.rootDir)
	return len(docs), nil
}

// Declarations collects the declarations of every document, sorted.
func (w *Workspace) Declarations() []index.Declaration {
	var out []index.Declaration
	for _, d := range w.Documents() {
		out = append(out, d.Declarations()...)
	}
	index.Sort(out)
	return out
}

// shortName is the part of a declaration name an identifier in code refers
// to: the member after "::", or the last namespace segment.
func shortName(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return name[strings.LastIndexByte(name, '\\')+1:]
}

func matchesWord(d index.Declaration, word string) bool {
	if d.Name == word || shortName(d.Name) == word {
		return true
	}
	return d.Kind == outline.KindSelector && (d.Name == "."+word || d.Name == "#"+word)
}

// Definition finds the declarations a word can refer to.
func (w *Workspace) Definition(word string) []index.Declaration {
	if word == "" {
		return nil
	}
	var out []index.Declaration
	for _, d := range w.Declarations() {
		if matchesWord(d, word) {
			out = append(out, d)
		}
	}
	return out
}

// DefinitionAt resolves the word under a 1-based line and 0-based column.
func (w *Workspace) DefinitionAt(path string, line, column int) []index.Declaration {
	doc := w.Get(path)
	if doc == nil {
		return nil
	}
	offset := doc.lines.Offset(line, column)
	return w.Definition(WordAt(doc.Text, offset))
}

type Completion struct {
	Label  string
	Kind   outline.Kind
	Detail string
}

const maxCompletions = 100

// Completions lists declarations whose short name starts with prefix,
// ignoring case. Each label appears once.
func (w *Workspace) Completions(prefix string) []Completion {
	if prefix == "" {
		return nil
	}
	lower := strings.ToLower(prefix)
	seen := make(map[string]bool)
	var out []Completion
	for _, d := range w.Declarations() {
		label := shortName(d.Name)
		if seen[label] || !strings.HasPrefix(strings.ToLower(label), lower) {
			continue
		}
		seen[label] = true
		out = append(out, Completion{Label: label, Kind: d.Kind, Detail: d.Synopsis})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	if len(out) > maxCompletions {
		out = out[:maxCompletions]
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '\\' || c == '-' ||
		c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// WordAt returns the identifier around offset, namespace separators and a
// leading '$' included.
func WordAt(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	start, end := offset, offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	return strings.Trim(text[start:end], `\-`)
}

// PrefixAt returns the identifier ending at offset.
func PrefixAt(text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}
	start := offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	return text[start:offset]
}
