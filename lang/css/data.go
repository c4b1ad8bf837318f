package css

import (
	_ "embed"
	"regexp"
	"strings"

	"github.com/ziracms/editor-sub001/lang/scan"
)

//go:embed tags.txt
var tagsData string

// Tags is the HTML element name set, parsed on first use.
var Tags = scan.LazyWordSet(tagsData)

var (
	tokenPattern = regexp.MustCompile(`/\*|\*/|//|#\{|@-?[\p{L}_][\p{L}\p{N}_-]*|--[\p{L}\p{N}_-]*|\$[\p{L}_][\p{L}\p{N}_-]*|[.#]-?[\p{L}_][\p{L}\p{N}_-]*|#[0-9a-fA-F]+|-?[\p{L}_][\p{L}\p{N}_-]*|\d[\p{L}\p{N}_.%]*|[{}()\[\];,:>+~*=&!]`)

	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

	quoteStripper = strings.NewReplacer(`"`, "", `'`, "")
)

func newStripper() *scan.Stripper {
	return &scan.Stripper{
		Rules: []scan.Rule{
			{Kind: scan.RuleString, Match: scan.Pattern(`(?s)"(?:[^"\\\n]|\\.)*"`)},
			{Kind: scan.RuleString, Match: scan.Pattern(`(?s)'(?:[^'\\\n]|\\.)*'`)},
			{Kind: scan.RuleComment, Match: scan.Pattern(`(?s)/\*.*?\*/`), Open: 2, Close: 2},
			{Kind: scan.RuleLineComment, Match: scan.MatcherFunc(matchLineComment), Open: 2},
		},
	}
}

// matchLineComment finds an SCSS "//" comment. The slashes must start the
// line or follow whitespace, which leaves url(http://...) alone.
func matchLineComment(text string, from int) (int, int) {
	for from < len(text) {
		i := strings.Index(text[from:], "//")
		if i < 0 {
			break
		}
		start := from + i
		if start == 0 || isSpace(text[start-1]) {
			end := strings.IndexByte(text[start:], '\n')
			if end < 0 {
				return start, len(text)
			}
			return start, start + end
		}
		from = start + 2
	}
	return -1, -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// unquote removes quotes and collapses whitespace.
func unquote(s string) string {
	return scan.CollapseSpace(quoteStripper.Replace(s))
}
