package lang

import "github.com/ziracms/editor-sub001/lang/scan"

// Balance records brace, parenthesis and bracket events for one parse call.
type Balance struct {
	Braces   scan.Markers
	Parens   scan.Markers
	Brackets scan.Markers
}

// Feed records tok if it is a bracket character and reports whether it was.
func (b *Balance) Feed(tok scan.Token) bool {
	switch tok.Text {
	case "{":
		b.Braces.Open(tok.Offset)
	case "}":
		b.Braces.Close(tok.Offset)
	case "(":
		b.Parens.Open(tok.Offset)
	case ")":
		b.Parens.Close(tok.Offset)
	case "[":
		b.Brackets.Open(tok.Offset)
	case "]":
		b.Brackets.Close(tok.Offset)
	default:
		return false
	}
	return true
}

func (b *Balance) Reset() {
	b.Braces = b.Braces[:0]
	b.Parens = b.Parens[:0]
	b.Brackets = b.Brackets[:0]
}

// Errors reports at most one diagnostic per bracket kind: the innermost
// unclosed opener when openers outnumber closers, or the first excess closer
// when closers outnumber openers.
func (b *Balance) Errors(lines *scan.LineIndex) []Error {
	var errs []Error
	errs = appendImbalance(errs, b.Braces, "brace", lines)
	errs = appendImbalance(errs, b.Parens, "parenthesis", lines)
	errs = appendImbalance(errs, b.Brackets, "bracket", lines)
	return errs
}

func appendImbalance(errs []Error, markers scan.Markers, what string, lines *scan.LineIndex) []Error {
	var pos int
	var text string
	switch net := markers.Net(); {
	case net > 0:
		pos, text = scan.FindOpenScope(markers), "Unclosed "+what
	case net < 0:
		pos, text = scan.FindCloseScope(markers), "Excess "+what
	}
	if pos == 0 {
		return errs
	}
	offset := pos - 1
	return append(errs, Error{Text: text, Line: lines.Line(offset), Symbol: offset})
}
