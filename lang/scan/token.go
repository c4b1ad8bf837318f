package scan

import "regexp"

// Token is one master-pattern match in a cleaned buffer. Offset is absolute
// in the buffer the Scanner was created for, including its base.
type Token struct {
	Text   string
	Offset int
}

func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// IsZero reports whether t is the empty token returned past the ends of a
// Window or Scanner.
func (t Token) IsZero() bool {
	return t.Text == ""
}

// Scanner walks a cleaned buffer once, yielding the matches of a single
// master regular expression. Text between matches is skipped.
type Scanner struct {
	re   *regexp.Regexp
	text string
	base int
	pos  int
}

// NewScanner scans text, which starts at offset base of the full buffer.
func NewScanner(re *regexp.Regexp, text string, base int) *Scanner {
	return &Scanner{re: re, text: text, base: base}
}

func (s *Scanner) Next() (Token, bool) {
	if s.pos >= len(s.text) {
		return Token{}, false
	}
	loc := s.re.FindStringIndex(s.text[s.pos:])
	if loc == nil {
		s.pos = len(s.text)
		return Token{}, false
	}
	start, end := s.pos+loc[0], s.pos+loc[1]
	if end == start {
		// An empty match cannot make progress; step over one byte.
		s.pos = start + 1
		return s.Next()
	}
	s.pos = end
	return Token{Text: s.text[start:end], Offset: s.base + start}, true
}

// WindowSize is how many trailing tokens a Window remembers.
const WindowSize = 10

// Window is a fixed-capacity lookback over the most recent tokens. At(0) is
// the newest token, At(1) the one before it, and so on.
type Window struct {
	buf  [WindowSize]Token
	head int
	n    int
}

func (w *Window) Push(t Token) {
	w.head = (w.head + 1) % WindowSize
	w.buf[w.head] = t
	if w.n < WindowSize {
		w.n++
	}
}

// At returns the token i steps back, or the zero Token when i is out of range.
func (w *Window) At(i int) Token {
	if i < 0 || i >= w.n {
		return Token{}
	}
	return w.buf[(w.head-i+WindowSize)%WindowSize]
}

// Text is At(i).Text.
func (w *Window) Text(i int) string {
	return w.At(i).Text
}

func (w *Window) Reset() {
	*w = Window{}
}
