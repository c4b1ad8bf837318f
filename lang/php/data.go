package php

import (
	_ "embed"
	"regexp"
	"strings"

	"github.com/ziracms/editor-sub001/lang/scan"
)

//go:embed types.txt
var typesData string

// DataTypes is the built-in type name set, parsed on first use.
var DataTypes = scan.LazyWordSet(typesData)

var (
	openTag  = scan.Pattern(`(?i)<\?(?:php|=)?`)
	closeTag = scan.Pattern(`\?>`)

	heredocOpen = regexp.MustCompile(`<<<[ \t]*["']?([A-Za-z_][A-Za-z0-9_]*)["']?\r?\n`)

	tokenPattern = regexp.MustCompile(`/\*|\*/|//|\$?[\p{L}_\\][\p{L}\p{N}_\\]*|\d[\w.]*|\?->|::|->|=>|\.\.\.|[{}()\[\];,=:?&|.<>!+\-*/%@^~]`)

	classNamePattern    = regexp.MustCompile(`^\\?[\p{L}_][\p{L}\p{N}_]*(?:\\[\p{L}_][\p{L}\p{N}_]*)*$`)
	variableNamePattern = regexp.MustCompile(`^\$[\p{L}_][\p{L}\p{N}_]*$`)
	identPattern        = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)
	paramPattern        = regexp.MustCompile(`(&)?\s*(\.\.\.)?\s*(\$[\p{L}_][\p{L}\p{N}_]*)`)
	attributePattern    = regexp.MustCompile(`\[[^\]]*\]`)
	numberPattern       = regexp.MustCompile(`^\d`)
)

func newStripper() *scan.Stripper {
	return &scan.Stripper{
		Rules: []scan.Rule{
			{Kind: scan.RuleString, Match: scan.MatcherFunc(matchHeredoc)},
			{Kind: scan.RuleString, Match: scan.Pattern(`(?s)"(?:[^"\\]|\\.)*"`)},
			{Kind: scan.RuleString, Match: scan.Pattern(`(?s)'(?:[^'\\]|\\.)*'`)},
			{Kind: scan.RuleString, Match: scan.Pattern("(?s)`(?:[^`\\\\]|\\\\.)*`")},
			{Kind: scan.RuleComment, Match: scan.Pattern(`(?s)/\*.*?\*/`), Open: 2, Close: 2},
			{Kind: scan.RuleLineComment, Match: endAtCloseTag(scan.Pattern(`//[^\n]*`)), Open: 2},
			{Kind: scan.RuleLineComment, Match: endAtCloseTag(scan.Pattern(`(?m)#(?:$|[^\[\n].*)`)), Open: 1},
		},
		Open:  openTag,
		Close: closeTag,
	}
}

// endAtCloseTag cuts a single-line comment short of "?>", which leaves PHP
// mode even inside a comment.
func endAtCloseTag(m scan.Matcher) scan.Matcher {
	return scan.MatcherFunc(func(text string, from int) (int, int) {
		start, end := m.Match(text, from)
		if start < 0 {
			return start, end
		}
		if i := strings.Index(text[start:end], "?>"); i >= 0 {
			end = start + i
		}
		return start, end
	})
}

// matchHeredoc finds a heredoc or nowdoc including its closing label.
func matchHeredoc(text string, from int) (int, int) {
	for from < len(text) {
		loc := heredocOpen.FindStringSubmatchIndex(text[from:])
		if loc == nil {
			return -1, -1
		}
		start := from + loc[0]
		label := text[from+loc[2] : from+loc[3]]
		body := from + loc[1]
		closing := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(label) + `\b`)
		if c := closing.FindStringIndex(text[body:]); c != nil {
			return start, body + c[1]
		}
		from = body
	}
	return -1, -1
}
