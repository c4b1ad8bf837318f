package scan

import "strings"

// StripScopedText blanks the contents of every nested (), [] and {} group in
// text while keeping the group delimiters, so that only top-level separators
// remain visible. Unbalanced closers are left alone.
func StripScopedText(text string) string {
	buf := []byte(text)
	depth := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '(', '[', '{':
			if depth > 0 {
				buf[i] = ' '
			}
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			if depth > 0 {
				buf[i] = ' '
			}
		default:
			if depth > 0 && buf[i] != '\n' {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}

// SplitTopLevel returns the [start, end) spans of text separated by commas
// that are not nested inside any bracket group. Empty input yields nil.
func SplitTopLevel(text string) [][2]int {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	flat := StripScopedText(text)
	var parts [][2]int
	start := 0
	depth := 0
	for i := 0; i < len(flat); i++ {
		switch flat[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, [2]int{start, i})
				start = i + 1
			}
		}
	}
	return append(parts, [2]int{start, len(flat)})
}

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TopLevelIndex returns the index of the first b in text that is outside
// any bracket group, or -1.
func TopLevelIndex(text string, b byte) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == b && depth == 0:
			return i
		}
	}
	return -1
}
