package format

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmssargent/StubJars/java"
)

type JSONEncoder struct {
	w     io.Writer
	class *java.ClassDescriptor
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *java.ClassDescriptor) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	text, err := json.MarshalIndent(describeClass(e.class), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}

// YAMLEncoder writes the same document as JSONEncoder in YAML.
type YAMLEncoder struct {
	w     io.Writer
	class *java.ClassDescriptor
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(class *java.ClassDescriptor) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	return yaml.Marshal(describeClass(e.class))
}

type classDoc struct {
	Name           string         `json:"name" yaml:"name"`
	SimpleName     string         `json:"simpleName" yaml:"simpleName"`
	Package        string         `json:"package" yaml:"package"`
	Kind           string         `json:"kind" yaml:"kind"`
	Visibility     string         `json:"visibility" yaml:"visibility"`
	Modifiers      []string       `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	TypeParameters []string       `json:"typeParameters,omitempty" yaml:"typeParameters,omitempty"`
	SuperClass     string         `json:"superClass,omitempty" yaml:"superClass,omitempty"`
	Interfaces     []string       `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	EnumConstants  []string       `json:"enumConstants,omitempty" yaml:"enumConstants,omitempty"`
	Fields         []fieldDoc     `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constructors   []methodDoc    `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Methods        []methodDoc    `json:"methods,omitempty" yaml:"methods,omitempty"`
	NestedClasses  []string       `json:"nestedClasses,omitempty" yaml:"nestedClasses,omitempty"`
	Components     []parameterDoc `json:"recordComponents,omitempty" yaml:"recordComponents,omitempty"`
}

type fieldDoc struct {
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type" yaml:"type"`
	Visibility string   `json:"visibility" yaml:"visibility"`
	Modifiers  []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Constant   any      `json:"constant,omitempty" yaml:"constant,omitempty"`
}

type methodDoc struct {
	Name       string         `json:"name" yaml:"name"`
	ReturnType string         `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	Parameters []parameterDoc `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Throws     []string       `json:"throws,omitempty" yaml:"throws,omitempty"`
	Visibility string         `json:"visibility" yaml:"visibility"`
	Modifiers  []string       `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

type parameterDoc struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

func describeClass(c *java.ClassDescriptor) classDoc {
	doc := classDoc{
		Name:          c.Name,
		SimpleName:    c.SimpleName,
		Package:       c.Package,
		Kind:          string(c.Kind),
		Visibility:    string(c.Visibility),
		Modifiers:     classModifiers(c),
		Interfaces:    typeStrings(c.Interfaces),
		NestedClasses: c.NestedClasses,
		Components:    describeParameters(c.RecordComponents),
	}
	if c.SuperClass != nil {
		doc.SuperClass = c.SuperClass.String()
	}
	for _, tp := range c.TypeParameters {
		doc.TypeParameters = append(doc.TypeParameters, tp.Name)
	}
	for _, ec := range c.EnumConstants {
		doc.EnumConstants = append(doc.EnumConstants, ec.Name)
	}
	for _, f := range c.Fields {
		doc.Fields = append(doc.Fields, fieldDoc{
			Name:       f.Name,
			Type:       f.Type.String(),
			Visibility: string(f.Visibility),
			Modifiers:  fieldModifiers(&f),
			Constant:   f.Constant,
		})
	}
	for i := range c.Constructors {
		doc.Constructors = append(doc.Constructors, describeMethod(&c.Constructors[i]))
	}
	for i := range c.Methods {
		doc.Methods = append(doc.Methods, describeMethod(&c.Methods[i]))
	}
	return doc
}

func describeMethod(m *java.Method) methodDoc {
	doc := methodDoc{
		Name:       m.Name,
		Parameters: describeParameters(m.Parameters),
		Throws:     typeStrings(m.Throws),
		Visibility: string(m.Visibility),
		Modifiers:  methodModifiers(m),
	}
	if m.ReturnType != nil && !m.IsConstructor() {
		doc.ReturnType = m.ReturnType.String()
	}
	return doc
}

func describeParameters(params []java.Parameter) []parameterDoc {
	var out []parameterDoc
	for _, p := range params {
		out = append(out, parameterDoc{Name: p.Name, Type: p.Type.String()})
	}
	return out
}

func typeStrings(types []java.TypeRef) []string {
	var out []string
	for _, t := range types {
		out = append(out, t.String())
	}
	return out
}

func classModifiers(c *java.ClassDescriptor) []string {
	var mods []string
	if c.IsStatic {
		mods = append(mods, "static")
	}
	if c.IsFinal {
		mods = append(mods, "final")
	}
	if c.IsAbstract {
		mods = append(mods, "abstract")
	}
	if c.IsSynthetic {
		mods = append(mods, "synthetic")
	}
	if c.IsDeprecated {
		mods = append(mods, "deprecated")
	}
	return mods
}

func fieldModifiers(f *java.Field) []string {
	var mods []string
	if f.IsStatic {
		mods = append(mods, "static")
	}
	if f.IsFinal {
		mods = append(mods, "final")
	}
	if f.IsVolatile {
		mods = append(mods, "volatile")
	}
	if f.IsTransient {
		mods = append(mods, "transient")
	}
	if f.IsSynthetic {
		mods = append(mods, "synthetic")
	}
	if f.IsEnumConstant {
		mods = append(mods, "enum")
	}
	return mods
}

func methodModifiers(m *java.Method) []string {
	var mods []string
	if m.IsStatic {
		mods = append(mods, "static")
	}
	if m.IsFinal {
		mods = append(mods, "final")
	}
	if m.IsAbstract {
		mods = append(mods, "abstract")
	}
	if m.IsNative {
		mods = append(mods, "native")
	}
	if m.IsBridge {
		mods = append(mods, "bridge")
	}
	if m.IsVarargs {
		mods = append(mods, "varargs")
	}
	if m.IsSynthetic {
		mods = append(mods, "synthetic")
	}
	return mods
}
