// Package stub compiles class descriptors into compilable Java source
// that mirrors their API with placeholder bodies.
package stub

import (
	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("stubjars.stub")

var (
	ErrUnsupportedType        = errors.New("unsupported type")
	ErrUnsafeName             = errors.New("class has no source name")
	ErrNoInferableConstructor = errors.New("no inferable superclass constructor")
	ErrNoEnumConstants        = errors.New("enum has no constants")
)
