package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmssargent/StubJars/java"
)

// LineEncoder writes one tab-separated record per class member, for
// grepping and diffing.
type LineEncoder struct {
	w     io.Writer
	class *java.ClassDescriptor
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *java.ClassDescriptor) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class

	mods := append([]string{string(c.Visibility)}, classModifiers(c)...)
	fmt.Fprintf(&sb, "%s\t%s\t%s\n", c.Kind, c.Name, strings.Join(mods, ","))

	for _, ec := range c.EnumConstants {
		fmt.Fprintf(&sb, "constant\t%s\t%s\n", ec.Name, orDash(ec.Body))
	}

	for i := range c.Fields {
		f := &c.Fields[i]
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
			f.Name,
			f.Type.String(),
			f.Visibility,
			joinOrDash(fieldModifiers(f)),
		)
	}

	for i := range c.Constructors {
		m := &c.Constructors[i]
		fmt.Fprintf(&sb, "constructor\t%s\t%s\t%s\n",
			parametersStr(m.Parameters),
			m.Visibility,
			joinOrDash(methodModifiers(m)),
		)
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\n",
			m.Name,
			m.ReturnType.String(),
			parametersStr(m.Parameters),
			m.Visibility,
			joinOrDash(methodModifiers(m)),
		)
	}

	for _, rc := range c.RecordComponents {
		fmt.Fprintf(&sb, "component\t%s\t%s\n", rc.Name, rc.Type.String())
	}

	for _, n := range c.NestedClasses {
		fmt.Fprintf(&sb, "nested\t%s\n", n)
	}

	return []byte(sb.String()), nil
}

func parametersStr(params []java.Parameter) string {
	if len(params) == 0 {
		return "-"
	}
	var parts []string
	for _, p := range params {
		parts = append(parts, p.Type.String())
	}
	return strings.Join(parts, ",")
}

func joinOrDash(mods []string) string {
	if len(mods) == 0 {
		return "-"
	}
	return strings.Join(mods, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
