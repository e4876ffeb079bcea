// Package format holds the source expression tree, its line renderer,
// and encoders that describe class descriptors for inspection.
package format

import (
	"encoding"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/dmssargent/StubJars/java"
)

// Encoder writes a description of one class.
type Encoder interface {
	encoding.TextMarshaler
	Encode(class *java.ClassDescriptor) error
}

// NewEncoder returns the descriptor encoder registered under name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	}
	return nil, errors.WithHint(errors.Newf("unknown format %q", name), "use json, yaml or line")
}
