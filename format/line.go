package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/ziracms/editor-sub001/index"
)

// LineEncoder writes declarations as tab-separated lines:
// kind, name, pointer, synopsis.
type LineEncoder struct {
	w     io.Writer
	decls []index.Declaration
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(decls []index.Declaration) error {
	e.decls = decls
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, d := range e.decls {
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n", d.Kind, d.Name, d.Pointer(), d.Synopsis)
	}
	return []byte(sb.String()), nil
}
