package scan

import "testing"

func TestGetLine(t *testing.T) {
	text := "a\nb\nc"
	cases := []struct {
		offset, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {4, 3}, {-5, 1}, {100, 3},
	}
	for _, c := range cases {
		if got := GetLine(text, c.offset); got != c.want {
			t.Errorf("GetLine(%d) = %d, want %d", c.offset, got, c.want)
		}
	}
}

func TestGetLineText(t *testing.T) {
	text := "ab\ncd\n"
	if got := GetLineText(text, 4); got != "cd" {
		t.Errorf("Expected cd, got %q", got)
	}
	if got := GetLineText(text, 0); got != "ab" {
		t.Errorf("Expected ab, got %q", got)
	}
	if got := GetLineText(text, len(text)); got != "" {
		t.Errorf("Expected empty last line, got %q", got)
	}
}

func TestGetFirstNotEmptyLineTo(t *testing.T) {
	text := "x\n\n  \nfoo"
	if got := GetFirstNotEmptyLineTo(text, 6); got != 1 {
		t.Errorf("Expected line 1, got %d", got)
	}
	if got := GetFirstNotEmptyLineTo(text, 0); got != 0 {
		t.Errorf("Expected 0 on the first line, got %d", got)
	}
	if got := GetFirstNotEmptyLineTo("\n\nfoo", 2); got != 0 {
		t.Errorf("Expected 0 above blank lines, got %d", got)
	}
}

func TestLineIndex(t *testing.T) {
	text := "one\ntwo\n\nfour\n"
	idx := NewLineIndex(text)
	for i := 0; i <= len(text); i++ {
		if got, want := idx.Line(i), GetLine(text, i); got != want {
			t.Errorf("Line(%d) = %d, want %d", i, got, want)
		}
		line, col := idx.Line(i), idx.Column(i)
		if back := idx.Offset(line, col); back != i {
			t.Errorf("Offset(%d, %d) = %d, want %d", line, col, back, i)
		}
	}
	if got := idx.Column(5); got != 1 {
		t.Errorf("Expected column 1, got %d", got)
	}
}
