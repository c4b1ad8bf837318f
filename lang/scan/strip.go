package scan

import (
	"regexp"
	"strings"
)

type RuleKind int

const (
	// RuleString spans are blanked completely, delimiters included.
	RuleString RuleKind = iota
	// RuleComment spans are recorded and blanked between their delimiters.
	RuleComment
	// RuleLineComment behaves like RuleComment; runs of them on adjacent
	// lines, each alone on its line, are recorded as a single comment.
	RuleLineComment
)

// Matcher finds the first literal starting at or after from. It returns
// start -1 when there is none left in text.
type Matcher interface {
	Match(text string, from int) (start, end int)
}

type MatcherFunc func(text string, from int) (start, end int)

func (f MatcherFunc) Match(text string, from int) (int, int) {
	return f(text, from)
}

type patternMatcher struct {
	re *regexp.Regexp
}

// Pattern returns a Matcher for expr. If expr has a capture group, the
// group's span is reported instead of the whole match.
func Pattern(expr string) Matcher {
	return patternMatcher{re: regexp.MustCompile(expr)}
}

func (m patternMatcher) Match(text string, from int) (int, int) {
	loc := m.re.FindStringSubmatchIndex(text[from:])
	if loc == nil {
		return -1, -1
	}
	if len(loc) >= 4 && loc[2] >= 0 {
		return from + loc[2], from + loc[3]
	}
	return from + loc[0], from + loc[1]
}

type Rule struct {
	Kind  RuleKind
	Match Matcher
	// Open and Close are the delimiter lengths a comment keeps.
	Open  int
	Close int
}

// Comments maps the line a comment ends on to its cleaned text.
type Comments map[int]string

// Stripper blanks literals and comments out of source text. The result has
// the same length as the input and keeps every newline, so offsets and line
// numbers computed on it are valid for the original.
type Stripper struct {
	Rules []Rule
	// Open and Close delimit code regions (for example <?php and ?>). Text
	// outside the regions is blanked. When Open is nil the whole text is code.
	Open  Matcher
	Close Matcher
}

type span struct {
	start, end int
}

const unknown = -2

func (s *Stripper) Strip(text string) (string, Comments) {
	buf := []byte(text)
	comments := make(Comments)
	lines := NewLineIndex(text)

	matchers := make([]Matcher, 0, len(s.Rules)+1)
	for _, r := range s.Rules {
		matchers = append(matchers, r.Match)
	}
	closeIdx := -1
	if s.Open != nil && s.Close != nil {
		closeIdx = len(matchers)
		matchers = append(matchers, s.Close)
	}
	cached := make([]span, len(matchers))
	for i := range cached {
		cached[i] = span{unknown, unknown}
	}
	retired := make([]bool, len(matchers))

	var chain struct {
		line int
		ok   bool
	}

	pos := 0
	inside := s.Open == nil
	for pos < len(text) {
		if !inside {
			start, end := s.Open.Match(text, pos)
			if start < 0 {
				Blank(buf, pos, len(text))
				break
			}
			Blank(buf, pos, start)
			pos = advance(start, end)
			inside = true
			continue
		}

		best := -1
		bestStart := len(text)
		for i, m := range matchers {
			if retired[i] {
				continue
			}
			if cached[i].start < pos {
				start, end := m.Match(text, pos)
				if start < 0 {
					retired[i] = true
					continue
				}
				cached[i] = span{start, end}
			}
			if cached[i].start < bestStart {
				best = i
				bestStart = cached[i].start
			}
		}
		if best < 0 {
			break
		}

		m := cached[best]
		if best == closeIdx {
			inside = false
			pos = advance(m.start, m.end)
			continue
		}

		rule := s.Rules[best]
		switch rule.Kind {
		case RuleString:
			Blank(buf, m.start, m.end)
			chain.ok = false
		case RuleComment, RuleLineComment:
			if m.end-m.start >= rule.Open+rule.Close {
				Blank(buf, m.start+rule.Open, m.end-rule.Close)
			}
			body := CleanComment(text[m.start:m.end])
			line := lines.Line(max(m.start, m.end-1))
			if rule.Kind == RuleLineComment && ownLine(text, m.start) {
				if chain.ok && chain.line == lines.Line(m.start)-1 {
					body = joinNonEmpty(comments[chain.line], body)
					delete(comments, chain.line)
				}
				chain.line, chain.ok = line, true
			} else {
				chain.ok = false
			}
			if body != "" {
				comments[line] = joinNonEmpty(comments[line], body)
			}
		}
		pos = advance(m.start, m.end)
	}
	return string(buf), comments
}

func advance(start, end int) int {
	if end <= start {
		return start + 1
	}
	return end
}

// Blank replaces buf[from:to] with spaces, keeping newlines.
func Blank(buf []byte, from, to int) {
	from = clamp(from, len(buf))
	to = clamp(to, len(buf))
	for i := from; i < to; i++ {
		if buf[i] != '\n' {
			buf[i] = ' '
		}
	}
}

func ownLine(text string, offset int) bool {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	return strings.TrimSpace(text[start:offset]) == ""
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}

// CleanComment strips comment delimiters and leading stars and returns the
// remaining body with blank leading and trailing lines removed.
func CleanComment(raw string) string {
	s := raw
	switch {
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimSuffix(s[2:], "*/")
	case strings.HasPrefix(s, "//"):
		s = s[2:]
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "*")
		line = strings.TrimSpace(line)
		if line == "" && len(out) == 0 {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// FirstLine returns the first non-empty line of s, used as a comment label.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
