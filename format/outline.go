package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/ziracms/editor-sub001/outline"
)

// OutlineEncoder writes a navigator tree, one symbol per line, indented
// two spaces per level:
//
//	class \App\Foo  (line 3)
//	  method z  ($a): int  (line 6)
type OutlineEncoder struct {
	w       io.Writer
	symbols []outline.Symbol
}

func NewOutlineEncoder(w io.Writer) *OutlineEncoder {
	return &OutlineEncoder{w: w}
}

func (e *OutlineEncoder) Encode(symbols []outline.Symbol) error {
	e.symbols = symbols
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *OutlineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	outline.Walk(e.symbols, func(s outline.Symbol, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&sb, "%s %s", s.Kind, s.Name)
		if s.Detail != "" {
			fmt.Fprintf(&sb, "  %s", s.Detail)
		}
		fmt.Fprintf(&sb, "  (line %d)\n", s.Line)
	})
	return []byte(sb.String()), nil
}
