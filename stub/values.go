package stub

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/dmssargent/StubJars/format"
	"github.com/dmssargent/StubJars/java"
)

var primitiveDefaults = map[string]string{
	"int":     "0",
	"long":    "0L",
	"double":  "0.0",
	"float":   "0.0f",
	"byte":    "(byte) 0",
	"short":   "(short) 0",
	"char":    `'\0'`,
	"boolean": "false",
}

var boxedPrimitives = map[string]string{
	"java.lang.Integer":   "int",
	"java.lang.Long":      "long",
	"java.lang.Double":    "double",
	"java.lang.Float":     "float",
	"java.lang.Byte":      "byte",
	"java.lang.Short":     "short",
	"java.lang.Character": "char",
	"java.lang.Boolean":   "boolean",
}

// DefaultValues synthesizes placeholder values for types. Constant
// mode produces forms usable where a compile-time constant or array
// initializer is expected.
type DefaultValues struct {
	types *TypeResolver
}

func NewDefaultValues(types *TypeResolver) *DefaultValues {
	return &DefaultValues{types: types}
}

func (d *DefaultValues) DefaultValue(t java.TypeRef, constant bool) (format.Expression, error) {
	switch t := t.(type) {
	case *java.NamedType:
		if t.Name == "void" {
			return format.Empty, nil
		}
		if lit, ok := primitiveDefaults[t.Name]; ok {
			return format.Literal(lit), nil
		}
		if t.IsParameterized() {
			return d.DefaultValue(t.Raw(), constant)
		}
		if prim, ok := boxedPrimitives[t.Name]; ok {
			if constant {
				return format.Literal(primitiveDefaults[prim]), nil
			}
			name, err := d.types.Name(t.Name)
			if err != nil {
				return format.Empty, err
			}
			return format.Literal(name + ".valueOf(" + primitiveDefaults[prim] + ")"), nil
		}
		if t.Name == java.StringName {
			return format.Literal(`""`), nil
		}
		return d.enumDefault(t, constant)

	case *java.ArrayType:
		if constant {
			return format.Literal("{}"), nil
		}
		if hasTypeVariable(t.Component) {
			// Generic array creation does not compile.
			return format.Literal("null"), nil
		}
		comp, err := d.types.render(java.Erasure(t.Component), true, nil)
		if err != nil {
			return format.Empty, err
		}
		return format.Literal("new " + comp + "[] {}"), nil

	case *java.TypeVariable, *java.WildcardType:
		return format.Literal("null"), nil
	}
	return format.Empty, errors.Wrapf(ErrUnsupportedType, "%T", t)
}

func hasTypeVariable(t java.TypeRef) bool {
	switch t := t.(type) {
	case *java.TypeVariable:
		return true
	case *java.ArrayType:
		return hasTypeVariable(t.Component)
	case *java.WildcardType:
		return t.Bound != nil && hasTypeVariable(t.Bound)
	case *java.NamedType:
		for _, a := range t.Args {
			if hasTypeVariable(a) {
				return true
			}
		}
		return t.Owner != nil && hasTypeVariable(t.Owner)
	}
	return false
}

func (d *DefaultValues) enumDefault(t *java.NamedType, constant bool) (format.Expression, error) {
	desc, ok := d.types.catalog.Get(t.Name)
	if !ok || !desc.IsEnum() {
		return format.Literal("null"), nil
	}
	if len(desc.EnumConstants) == 0 {
		if constant {
			return format.Empty, errors.Wrapf(ErrNoEnumConstants, "%s", t.Name)
		}
		return format.Literal("null"), nil
	}
	name, err := d.types.Name(t.Name)
	if err != nil {
		return format.Empty, err
	}
	return format.Literal(name + "." + desc.EnumConstants[0].Name), nil
}

// ConstantLiteral renders a ConstantValue attribute value for a field
// of type t.
func ConstantLiteral(v any, t java.TypeRef) (string, error) {
	typeName := ""
	if n, ok := t.(*java.NamedType); ok {
		typeName = n.Name
		if prim, ok := boxedPrimitives[typeName]; ok {
			typeName = prim
		}
	}
	switch v := v.(type) {
	case int32:
		switch typeName {
		case "boolean":
			return strconv.FormatBool(v != 0), nil
		case "char":
			return charLiteral(rune(uint16(v))), nil
		case "byte":
			return "(byte) " + strconv.Itoa(int(int8(v))), nil
		case "short":
			return "(short) " + strconv.Itoa(int(int16(v))), nil
		}
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10) + "L", nil
	case float32:
		return floatLiteral(float64(v), 32, "f"), nil
	case float64:
		return floatLiteral(v, 64, ""), nil
	case string:
		return StringLiteral(v), nil
	}
	return "", errors.Wrapf(ErrUnsupportedType, "constant %T", v)
}

func floatLiteral(v float64, bits int, suffix string) string {
	switch {
	case math.IsNaN(v):
		return "0.0" + suffix + " / 0.0" + suffix
	case math.IsInf(v, 1):
		return "1.0" + suffix + " / 0.0" + suffix
	case math.IsInf(v, -1):
		return "-1.0" + suffix + " / 0.0" + suffix
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s + suffix
}

// StringLiteral quotes s as a Java string literal. Non-ASCII text is
// written as \u escapes so the output does not depend on the source
// encoding javac assumes.
func StringLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			if u, ok := encodedSurrogate(s[i:]); ok {
				fmt.Fprintf(&sb, `\u%04x`, u)
				i += 3
				continue
			}
		}
		i += size
		if r == '\'' {
			sb.WriteRune(r)
			continue
		}
		writeEscaped(&sb, r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// encodedSurrogate decodes an unpaired surrogate kept in its
// three-byte form by the class file reader.
func encodedSurrogate(s string) (rune, bool) {
	if len(s) < 3 || s[0] != 0xED || s[1]&0xE0 != 0xA0 || s[2]&0xC0 != 0x80 {
		return 0, false
	}
	return 0xD000 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F), true
}

func charLiteral(r rune) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	if r == '"' {
		sb.WriteRune(r)
	} else {
		writeEscaped(&sb, r)
	}
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, r rune) {
	switch r {
	case '"':
		sb.WriteString(`\"`)
	case '\'':
		sb.WriteString(`\'`)
	case '\\':
		sb.WriteString(`\\`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\t':
		sb.WriteString(`\t`)
	case '\b':
		sb.WriteString(`\b`)
	case '\f':
		sb.WriteString(`\f`)
	default:
		switch {
		case r >= 0x20 && r < 0x7f:
			sb.WriteRune(r)
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(sb, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(sb, `\u%04x`, r)
		}
	}
}

var elementTypes = map[byte]string{
	'B': "byte", 'C': "char", 'I': "int", 'S': "short",
	'Z': "boolean", 'J': "long", 'F': "float", 'D': "double",
}

// ElementValueLiteral renders an annotation element default. Nested
// annotation values have no placeholder form and fail with
// ErrUnsupportedType.
func (d *DefaultValues) ElementValueLiteral(v *java.AnnotationValue) (string, error) {
	switch v.Kind {
	case 'B', 'C', 'I', 'S', 'Z', 'J', 'F', 'D':
		return ConstantLiteral(v.Const, java.Named(elementTypes[v.Kind]))
	case 's':
		s, _ := v.Const.(string)
		return StringLiteral(s), nil
	case 'e':
		n, ok := v.EnumType.(*java.NamedType)
		if !ok {
			return "", errors.Wrap(ErrUnsupportedType, "enum element without type")
		}
		name, err := d.types.Name(n.Name)
		if err != nil {
			return "", err
		}
		return name + "." + v.EnumConst, nil
	case 'c':
		s, err := d.types.render(java.Erasure(v.Class), true, nil)
		if err != nil {
			return "", err
		}
		return s + ".class", nil
	case '[':
		items := make([]string, len(v.Values))
		for i := range v.Values {
			s, err := d.ElementValueLiteral(&v.Values[i])
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return "{" + strings.Join(items, ", ") + "}", nil
	}
	return "", errors.Wrapf(ErrUnsupportedType, "element value %q", v.Kind)
}
