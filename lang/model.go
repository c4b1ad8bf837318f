// Package lang holds the pieces shared by the PHP, JavaScript and CSS
// parsers: comment and diagnostic records and bracket balance checking.
package lang

import (
	"sort"

	"github.com/ziracms/editor-sub001/lang/scan"
)

type Language string

const (
	PHP Language = "php"
	JS  Language = "js"
	CSS Language = "css"
)

type Visibility string

const (
	VisibilityNone      Visibility = ""
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// ParseVisibility maps a modifier keyword to a Visibility.
func ParseVisibility(word string) (Visibility, bool) {
	switch word {
	case "public":
		return VisibilityPublic, true
	case "protected":
		return VisibilityProtected, true
	case "private":
		return VisibilityPrivate, true
	}
	return VisibilityNone, false
}

// Comment is a comment body keyed by the line its closing token is on.
type Comment struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Line int    `json:"line"`
}

// Error is a structural diagnostic. Symbol is the byte offset of the
// offending character in the original text.
type Error struct {
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Symbol int    `json:"symbol"`
}

// CommentsFromMap converts stripped comments into records ordered by line.
func CommentsFromMap(comments scan.Comments) []Comment {
	lines := make([]int, 0, len(comments))
	for line := range comments {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	out := make([]Comment, 0, len(lines))
	for _, line := range lines {
		text := comments[line]
		out = append(out, Comment{
			Name: scan.FirstLine(text),
			Text: text,
			Line: line,
		})
	}
	return out
}

// CommentAbove returns the comment ending on the nearest non-blank line
// above offset, or "" when that line is not the end of a comment.
func CommentAbove(text string, comments scan.Comments, offset int) string {
	line := scan.GetFirstNotEmptyLineTo(text, offset)
	if line == 0 {
		return ""
	}
	return comments[line]
}
