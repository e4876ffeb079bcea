package java

import (
	"github.com/dmssargent/StubJars/classfile"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

// Keyword is the source modifier, empty for package-private.
func (v Visibility) Keyword() string {
	if v == VisibilityPackage {
		return ""
	}
	return string(v)
}

type ClassKind string

const (
	ClassKindClass      ClassKind = "class"
	ClassKindInterface  ClassKind = "interface"
	ClassKindEnum       ClassKind = "enum"
	ClassKindAnnotation ClassKind = "annotation"
	ClassKindRecord     ClassKind = "record"
)

// ClassDescriptor is the shape of one binary class. Names are binary
// names with '.' between packages and '$' between nesting levels.
type ClassDescriptor struct {
	Name       string
	Package    string
	SimpleName string
	Kind       ClassKind
	Visibility Visibility

	IsStatic     bool
	IsFinal      bool
	IsAbstract   bool
	IsSynthetic  bool
	IsDeprecated bool
	IsAnonymous  bool
	IsLocal      bool

	// DeclaringClass is set for member classes only.
	DeclaringClass string

	SuperClass     TypeRef
	Interfaces     []TypeRef
	TypeParameters []TypeParameter

	Fields       []Field
	Methods      []Method
	Constructors []Method

	// NestedClasses lists declared member classes by binary name.
	NestedClasses []string
	EnumConstants []EnumConstant

	// Retention is the RetentionPolicy constant of an annotation type.
	Retention        string
	RecordComponents []Parameter

	// Reference classes are resolvable but never emitted.
	Reference bool
}

func (c *ClassDescriptor) IsInterface() bool {
	return c.Kind == ClassKindInterface || c.Kind == ClassKindAnnotation
}

func (c *ClassDescriptor) IsEnum() bool {
	return c.Kind == ClassKindEnum
}

// IsInner reports whether the class is nested in another class in any
// form: member, local or anonymous.
func (c *ClassDescriptor) IsInner() bool {
	return c.DeclaringClass != "" || c.IsAnonymous || c.IsLocal
}

func (c *ClassDescriptor) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// SuperClassName returns the binary name of the superclass, or "".
func (c *ClassDescriptor) SuperClassName() string {
	if n, ok := c.SuperClass.(*NamedType); ok {
		return n.Name
	}
	return ""
}

type EnumConstant struct {
	Name string
	// Body is the binary name of the constant's anonymous subclass,
	// empty when the constant has no class body.
	Body string
}

type TypeParameter struct {
	Name   string
	Bounds []TypeRef
}

type Parameter struct {
	Name string
	Type TypeRef
}

type Field struct {
	Name       string
	Type       TypeRef
	Descriptor string
	Visibility Visibility

	IsStatic       bool
	IsFinal        bool
	IsVolatile     bool
	IsTransient    bool
	IsSynthetic    bool
	IsEnumConstant bool
	IsDeprecated   bool

	// Constant holds a ConstantValue: int32, int64, float32, float64
	// or string. Booleans and chars are stored as int32.
	Constant any
}

type Method struct {
	Name       string
	Descriptor string
	Visibility Visibility

	IsStatic     bool
	IsFinal      bool
	IsAbstract   bool
	IsSynthetic  bool
	IsBridge     bool
	IsVarargs    bool
	IsNative     bool
	IsDeprecated bool

	TypeParameters []TypeParameter
	Parameters     []Parameter
	ReturnType     TypeRef
	Throws         []TypeRef

	// Default is the annotation element default, nil when absent.
	Default *AnnotationValue
}

func (m *Method) IsConstructor() bool {
	return m.Name == "<init>"
}

func (m *Method) HasDefault() bool {
	return m.Default != nil
}

// ErasedSignature identifies a method by name and erased parameter types.
func (m *Method) ErasedSignature() string {
	return m.Name + classfile.ParameterDescriptor(m.Descriptor)
}

// AnnotationValue is an annotation element value. Kind is the JVM
// element tag ('I', 's', 'e', 'c', '[', '@', ...).
type AnnotationValue struct {
	Kind      byte
	Const     any
	EnumType  TypeRef
	EnumConst string
	Class     TypeRef
	Values    []AnnotationValue
}
