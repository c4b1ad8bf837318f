package lang

import (
	"reflect"
	"testing"

	"github.com/ziracms/editor-sub001/lang/scan"
)

func feed(b *Balance, text string) {
	for i := 0; i < len(text); i++ {
		b.Feed(scan.Token{Text: text[i : i+1], Offset: i})
	}
}

func TestBalanceErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Error
	}{
		{"balanced", "a{(b[c])}\n", nil},
		{"unclosed", "a{\nb{}\n", []Error{{Text: "Unclosed brace", Line: 1, Symbol: 1}}},
		{"excess", "x\n)", []Error{{Text: "Excess parenthesis", Line: 2, Symbol: 2}}},
		{"both kinds", "[\n}}", []Error{
			{Text: "Excess brace", Line: 2, Symbol: 2},
			{Text: "Unclosed bracket", Line: 1, Symbol: 0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Balance
			feed(&b, tt.text)
			got := b.Errors(scan.NewLineIndex(tt.text))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Errors() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBalanceReset(t *testing.T) {
	var b Balance
	feed(&b, "{{")
	b.Reset()
	if errs := b.Errors(scan.NewLineIndex("")); len(errs) != 0 {
		t.Errorf("Expected no errors after reset, got %v", errs)
	}
}

func TestCommentsFromMap(t *testing.T) {
	got := CommentsFromMap(scan.Comments{7: "Second", 2: "\nFirst line\nmore"})
	want := []Comment{
		{Name: "First line", Text: "\nFirst line\nmore", Line: 2},
		{Name: "Second", Text: "Second", Line: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CommentsFromMap() = %+v, want %+v", got, want)
	}
}

func TestCommentAbove(t *testing.T) {
	text := "/* Doc */\n\nfunction a() {}\nb();\nfunction c() {}\n"
	comments := scan.Comments{1: "Doc"}

	if got := CommentAbove(text, comments, 11); got != "Doc" {
		t.Errorf("Expected comment Doc, got %q", got)
	}
	if got := CommentAbove(text, comments, 32); got != "" {
		t.Errorf("Expected no comment, got %q", got)
	}
	if got := CommentAbove(text, comments, 0); got != "" {
		t.Errorf("Expected no comment on the first line, got %q", got)
	}
}

func TestParseVisibility(t *testing.T) {
	for _, word := range []string{"public", "protected", "private"} {
		if v, ok := ParseVisibility(word); !ok || string(v) != word {
			t.Errorf("ParseVisibility(%q) = %q, %v", word, v, ok)
		}
	}
	if _, ok := ParseVisibility("static"); ok {
		t.Error("static is not a visibility")
	}
}
