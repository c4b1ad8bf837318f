package scan

import (
	"sort"
	"strings"
)

// GetLine returns the 1-based line number of offset in text.
func GetLine(text string, offset int) int {
	offset = clamp(offset, len(text))
	return 1 + strings.Count(text[:offset], "\n")
}

// GetLineText returns the line containing offset, without its newline.
func GetLineText(text string, offset int) string {
	offset = clamp(offset, len(text))
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : offset+end]
}

// GetFirstNotEmptyLineTo walks backwards from the line above offset and
// returns the number of the first line holding something other than
// whitespace, or 0 when every line above is blank.
func GetFirstNotEmptyLineTo(text string, offset int) int {
	offset = clamp(offset, len(text))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	if lineStart == 0 {
		return 0
	}
	line := 1 + strings.Count(text[:lineStart], "\n")
	end := lineStart - 1 // the newline terminating the previous line
	for end >= 0 {
		line--
		start := strings.LastIndexByte(text[:end], '\n') + 1
		if strings.TrimSpace(text[start:end]) != "" {
			return line
		}
		end = start - 1
	}
	return 0
}

func clamp(offset, n int) int {
	if offset < 0 {
		return 0
	}
	if offset > n {
		return n
	}
	return offset
}

// LineIndex answers GetLine queries in logarithmic time. Parsers build one
// per call instead of recounting newlines for every declaration.
type LineIndex struct {
	newlines []int
	size     int
}

func NewLineIndex(text string) *LineIndex {
	idx := &LineIndex{size: len(text)}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx.newlines = append(idx.newlines, i)
		}
	}
	return idx
}

// Line is equivalent to GetLine on the indexed text.
func (idx *LineIndex) Line(offset int) int {
	offset = clamp(offset, idx.size)
	return 1 + sort.SearchInts(idx.newlines, offset)
}

// Column returns the 0-based byte column of offset within its line.
func (idx *LineIndex) Column(offset int) int {
	offset = clamp(offset, idx.size)
	n := sort.SearchInts(idx.newlines, offset)
	if n == 0 {
		return offset
	}
	return offset - idx.newlines[n-1] - 1
}

// Offset converts a 1-based line and 0-based column back into an offset.
func (idx *LineIndex) Offset(line, column int) int {
	if line <= 1 {
		return clamp(column, idx.size)
	}
	if line-2 >= len(idx.newlines) {
		return idx.size
	}
	return clamp(idx.newlines[line-2]+1+column, idx.size)
}
