package js

import (
	"regexp"
	"strings"

	"github.com/ziracms/editor-sub001/lang/scan"
)

var (
	tokenPattern = regexp.MustCompile(`/\*|\*/|//|#?[\p{L}_$][\p{L}\p{N}_$]*|\d[\w.]*|=>|\.\.\.|\?\.|===?|!==?|[{}()\[\];,=:?.<>!+\-*/%&|^~@]`)

	identPattern  = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$]*$`)
	memberPattern = regexp.MustCompile(`^#?[\p{L}_$][\p{L}\p{N}_$]*$`)
	numberPattern = regexp.MustCompile(`^\d`)
)

// regexPrefixWords may precede a regular expression literal even though
// they end in an identifier character.
var regexPrefixWords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true, "of": true,
	"delete": true, "void": true, "throw": true, "new": true,
	"instanceof": true, "yield": true, "await": true, "else": true, "do": true,
}

// keywords never name a variable, function or member.
var keywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "typeof": true, "new": true,
	"delete": true, "void": true, "throw": true, "in": true, "of": true,
	"instanceof": true, "var": true, "let": true, "const": true,
	"class": true, "extends": true, "super": true, "this": true,
	"import": true, "export": true, "default": true, "with": true,
	"do": true, "else": true, "try": true, "finally": true, "case": true,
	"break": true, "continue": true, "yield": true, "await": true,
}

func newStripper() *scan.Stripper {
	return &scan.Stripper{
		Rules: []scan.Rule{
			{Kind: scan.RuleString, Match: scan.Pattern(`(?s)"(?:[^"\\\n]|\\.)*"`)},
			{Kind: scan.RuleString, Match: scan.Pattern(`(?s)'(?:[^'\\\n]|\\.)*'`)},
			{Kind: scan.RuleString, Match: scan.Pattern("(?s)`(?:[^`\\\\]|\\\\.)*`")},
			{Kind: scan.RuleComment, Match: scan.Pattern(`(?s)/\*.*?\*/`), Open: 2, Close: 2},
			{Kind: scan.RuleLineComment, Match: scan.Pattern(`//[^\n]*`), Open: 2},
			{Kind: scan.RuleString, Match: scan.MatcherFunc(matchRegex)},
		},
	}
}

// matchRegex finds the next regular expression literal. A slash after a
// value (identifier, number, closing bracket, string) is a division.
func matchRegex(text string, from int) (int, int) {
	for i := from; i < len(text); i++ {
		if text[i] != '/' {
			continue
		}
		if i+1 < len(text) && (text[i+1] == '/' || text[i+1] == '*') {
			i++
			continue
		}
		if !regexAllowedAfter(text, i) {
			continue
		}
		if end := regexEnd(text, i); end > 0 {
			return i, end
		}
	}
	return -1, -1
}

func regexAllowedAfter(text string, slash int) bool {
	j := slash - 1
	for j >= 0 && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r' || text[j] == '\n') {
		j--
	}
	if j < 0 {
		return true
	}
	c := text[j]
	switch {
	case c == ')' || c == ']' || c == '}' || c == '"' || c == '\'' || c == '`':
		return false
	case isWordByte(c):
		k := j
		for k >= 0 && isWordByte(text[k]) {
			k--
		}
		return regexPrefixWords[text[k+1:j+1]]
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// regexEnd returns the offset after the literal starting at start, flags
// included, or -1 when the line ends first.
func regexEnd(text string, start int) int {
	inClass := false
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if inClass {
				continue
			}
			if i == start+1 {
				return -1
			}
			end := i + 1
			for end < len(text) && strings.IndexByte("dgimsuyv", text[end]) >= 0 {
				end++
			}
			return end
		}
	}
	return -1
}
