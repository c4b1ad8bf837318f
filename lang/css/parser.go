// Package css lists the selectors, id and class names, media queries,
// keyframes, fonts and variables of a CSS or SCSS file.
package css

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

type Option func(*Parser)

// WithTags replaces the built-in element name set.
func WithTags(tags scan.WordSet) Option {
	return func(p *Parser) {
		p.tags = tags
	}
}

type frameKind int

const (
	frameBlock frameKind = iota
	frameRule
	frameMedia
	frameKeyframes
	frameFont
)

// frame is an open block. index points into the record list of its kind,
// or is -1.
type frame struct {
	kind  frameKind
	index int
	line  int
}

// Parser is reusable but not safe for concurrent use.
type Parser struct {
	tags     scan.WordSet
	stripper *scan.Stripper

	res      Result
	text     string
	clean    string
	lines    *scan.LineIndex
	comments scan.Comments
	balance  lang.Balance

	nameIndexes     map[string]int
	variableIndexes map[string]int

	frames []frame
	// stmt holds the tokens since the last block or declaration boundary.
	stmt   []scan.Token
	interp int
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		stripper:        newStripper(),
		nameIndexes:     make(map[string]int),
		variableIndexes: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tags == nil {
		p.tags = Tags()
	}
	return p
}

// Parse parses text with a fresh Parser.
func Parse(text string) Result {
	return NewParser().Parse(text)
}

func (p *Parser) Parse(text string) Result {
	p.res = Result{}
	p.text = text
	p.lines = scan.NewLineIndex(text)
	p.balance.Reset()
	clear(p.nameIndexes)
	clear(p.variableIndexes)
	p.frames = p.frames[:0]
	p.stmt = p.stmt[:0]
	p.interp = 0

	p.clean, p.comments = p.stripper.Strip(text)
	sc := scan.NewScanner(tokenPattern, p.clean, 0)
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		p.handle(tok)
	}
	p.endDeclaration(len(text))

	p.res.Comments = lang.CommentsFromMap(p.comments)
	p.res.Errors = p.balance.Errors(p.lines)
	res := p.res
	p.res = Result{}
	return res
}

func (p *Parser) handle(tok scan.Token) {
	switch tok.Text {
	case "/*", "*/", "//":
		return
	case "#{":
		// SCSS interpolation stays part of the current statement.
		p.balance.Feed(scan.Token{Text: "{", Offset: tok.Offset + 1})
		p.interp++
	case "{":
		p.balance.Feed(tok)
		p.openBlock(tok)
		p.stmt = p.stmt[:0]
		return
	case "}":
		p.balance.Feed(tok)
		if p.interp > 0 {
			p.interp--
			break
		}
		p.endDeclaration(tok.Offset)
		if n := len(p.frames); n > 0 {
			p.frames = p.frames[:n-1]
		}
		return
	case ";":
		if p.interp == 0 {
			p.endDeclaration(tok.Offset)
			return
		}
	default:
		p.balance.Feed(tok)
	}
	p.stmt = append(p.stmt, tok)
}

func (p *Parser) openBlock(brace scan.Token) {
	f := frame{kind: frameBlock, index: -1}
	if len(p.stmt) > 0 {
		f.line = p.lines.Line(p.stmt[0].Offset)
		switch {
		case strings.HasPrefix(p.stmt[0].Text, "@"):
			f.kind, f.index = p.atRule(brace)
		case p.top() == frameKeyframes:
			// from, to and percentages are not selectors.
		default:
			f.kind, f.index = frameRule, p.addSelector(brace)
		}
	}
	p.frames = append(p.frames, f)
}

func (p *Parser) top() frameKind {
	if len(p.frames) == 0 {
		return frameBlock
	}
	return p.frames[len(p.frames)-1].kind
}

func (p *Parser) atRule(brace scan.Token) (frameKind, int) {
	at := p.stmt[0]
	switch name := strings.ToLower(at.Text); {
	case name == "@media":
		return frameMedia, p.addMedia(brace)
	case strings.HasSuffix(name, "keyframes"):
		return frameKeyframes, p.addKeyframe(brace)
	case name == "@font-face":
		return frameFont, -1
	}
	return frameBlock, -1
}

// addMedia names the query after the text inside its first parenthesized
// group, or after the whole prelude when there is none.
func (p *Parser) addMedia(brace scan.Token) int {
	at := p.stmt[0]
	name := ""
	depth, open := 0, -1
	for _, tok := range p.stmt[1:] {
		switch tok.Text {
		case "(":
			if depth == 0 && open < 0 {
				open = tok.End()
			}
			depth++
		case ")":
			depth--
			if depth == 0 && open >= 0 && name == "" {
				name = scan.CollapseSpace(p.text[open:tok.Offset])
			}
		}
	}
	if name == "" {
		name = scan.CollapseSpace(p.text[at.End():brace.Offset])
	}
	idx := len(p.res.Medias)
	p.res.Medias = append(p.res.Medias, Media{Name: name, Line: p.lines.Line(at.Offset)})
	return idx
}

func (p *Parser) addKeyframe(brace scan.Token) int {
	at := p.stmt[0]
	name := unquote(p.text[at.End():brace.Offset])
	if name == "" {
		return -1
	}
	idx := len(p.res.Keyframes)
	p.res.Keyframes = append(p.res.Keyframes, Keyframe{Name: name, Line: p.lines.Line(at.Offset)})
	return idx
}

func (p *Parser) addSelector(brace scan.Token) int {
	first := p.stmt[0]
	idx := len(p.res.Selectors)
	p.res.Selectors = append(p.res.Selectors, Selector{
		Name: scan.CollapseSpace(p.text[first.Offset:brace.Offset]),
		Line: p.lines.Line(first.Offset),
	})
	if m := p.enclosingMedia(); m >= 0 {
		media := &p.res.Medias[m]
		media.SelectorIndexes = append(media.SelectorIndexes, idx)
	}
	p.collectNames()
	return idx
}

func (p *Parser) enclosingMedia() int {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if f := p.frames[i]; f.kind == frameMedia {
			return f.index
		}
	}
	return -1
}

func (p *Parser) collectNames() {
	depth := 0
	for i, tok := range p.stmt {
		t := tok.Text
		switch {
		case t == "(" || t == "[":
			depth++
		case t == ")" || t == "]":
			depth--
		case p.interpolated(i):
		case len(t) > 1 && t[0] == '.':
			p.addName(tok, NameClass)
		case len(t) > 1 && t[0] == '#' && t != "#{":
			if !hexColorPattern.MatchString(t) {
				p.addName(tok, NameID)
			}
		case depth == 0 && p.isTagPosition(i) && p.tags.Has(t):
			p.addName(scan.Token{Text: strings.ToLower(t), Offset: tok.Offset}, NameTag)
		}
	}
}

// interpolated reports whether the token at i runs into an SCSS #{...}.
func (p *Parser) interpolated(i int) bool {
	return i+1 < len(p.stmt) && p.stmt[i+1].Text == "#{" && p.stmt[i+1].Offset == p.stmt[i].End()
}

// isTagPosition reports whether the token at i starts a compound selector.
func (p *Parser) isTagPosition(i int) bool {
	if i == 0 {
		return true
	}
	prev := p.stmt[i-1]
	switch prev.Text {
	case ",", ">", "+", "~":
		return true
	case ":", "(", "#{", "&":
		return false
	}
	return prev.End() < p.stmt[i].Offset
}

func (p *Parser) addName(tok scan.Token, kind NameKind) {
	if _, ok := p.nameIndexes[tok.Text]; ok {
		return
	}
	p.nameIndexes[tok.Text] = len(p.res.Names)
	p.res.Names = append(p.res.Names, Name{Name: tok.Text, Kind: kind, Line: p.lines.Line(tok.Offset)})
}

// endDeclaration looks at the "name: value" statement ending at end for
// variables and font families.
func (p *Parser) endDeclaration(end int) {
	defer func() { p.stmt = p.stmt[:0] }()
	if len(p.stmt) < 2 || p.stmt[1].Text != ":" {
		return
	}
	name, colon := p.stmt[0], p.stmt[1]
	if end < colon.End() {
		return
	}
	value := p.text[colon.End():end]
	switch {
	case strings.HasPrefix(name.Text, "--") || strings.HasPrefix(name.Text, "$"):
		p.addVariable(name, scan.CollapseSpace(value))
	case strings.EqualFold(name.Text, "font-family") && p.top() == frameFont:
		p.setFont(unquote(value))
	}
}

func (p *Parser) addVariable(name scan.Token, value string) {
	if len(name.Text) < 2 {
		return
	}
	if _, ok := p.variableIndexes[name.Text]; ok {
		return
	}
	p.variableIndexes[name.Text] = len(p.res.Variables)
	p.res.Variables = append(p.res.Variables, Variable{
		Name:  name.Text,
		Value: value,
		Line:  p.lines.Line(name.Offset),
	})
}

// setFont names the innermost @font-face after its first font-family.
func (p *Parser) setFont(family string) {
	f := &p.frames[len(p.frames)-1]
	if f.index >= 0 || family == "" {
		return
	}
	f.index = len(p.res.Fonts)
	p.res.Fonts = append(p.res.Fonts, Font{Name: family, Line: f.line})
}
