// Package format renders parse results, outlines and declarations for the
// command line.
package format

import "encoding"

// Encoder writes one value per Encode call.
type Encoder[T any] interface {
	encoding.TextMarshaler
	Encode(v T) error
}
