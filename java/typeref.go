package java

import (
	"strings"
)

const (
	ObjectName     = "java.lang.Object"
	EnumName       = "java.lang.Enum"
	RecordName     = "java.lang.Record"
	StringName     = "java.lang.String"
	VoidName       = "java.lang.Void"
	AnnotationName = "java.lang.annotation.Annotation"
)

// TypeRef is a type as it appears in a signature. The variants are
// *NamedType, *TypeVariable, *ArrayType and *WildcardType.
type TypeRef interface {
	isTypeRef()
	String() string
}

// NamedType is a class, interface or primitive type. Owner is set when
// an enclosing type carries type arguments (Outer<T>.Inner).
type NamedType struct {
	Name  string
	Args  []TypeRef
	Owner *NamedType
}

// TypeVariable refers to a declared type parameter. Bound is the first
// declared bound, nil when unknown or java.lang.Object.
type TypeVariable struct {
	Name  string
	Bound TypeRef
}

type ArrayType struct {
	Component TypeRef
}

type WildcardKind int

const (
	WildcardUnbounded WildcardKind = iota
	WildcardExtends
	WildcardSuper
)

type WildcardType struct {
	Kind  WildcardKind
	Bound TypeRef
}

func (*NamedType) isTypeRef()    {}
func (*TypeVariable) isTypeRef() {}
func (*ArrayType) isTypeRef()    {}
func (*WildcardType) isTypeRef() {}

func Named(name string, args ...TypeRef) *NamedType {
	return &NamedType{Name: name, Args: args}
}

func (n *NamedType) String() string {
	var sb strings.Builder
	if n.Owner != nil {
		sb.WriteString(n.Owner.String())
		sb.WriteString(".")
		sb.WriteString(strings.TrimPrefix(n.Name, n.Owner.Name+"$"))
	} else {
		sb.WriteString(n.Name)
	}
	if len(n.Args) > 0 {
		sb.WriteString("<")
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteString(">")
	}
	return sb.String()
}

func (v *TypeVariable) String() string { return v.Name }

func (a *ArrayType) String() string { return a.Component.String() + "[]" }

func (w *WildcardType) String() string {
	switch w.Kind {
	case WildcardExtends:
		return "? extends " + w.Bound.String()
	case WildcardSuper:
		return "? super " + w.Bound.String()
	}
	return "?"
}

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

func IsPrimitiveName(name string) bool {
	return primitives[name]
}

func (n *NamedType) IsPrimitive() bool {
	return primitives[n.Name]
}

func (n *NamedType) IsParameterized() bool {
	if len(n.Args) > 0 {
		return true
	}
	return n.Owner != nil && n.Owner.IsParameterized()
}

// Raw returns the type with all type arguments removed.
func (n *NamedType) Raw() *NamedType {
	return &NamedType{Name: n.Name}
}

// IsType reports whether t is the named class, ignoring type arguments.
func IsType(t TypeRef, name string) bool {
	n, ok := t.(*NamedType)
	return ok && n.Name == name
}

// Erasure maps a TypeRef to its runtime type: type variables become
// their bound's erasure (or Object), wildcards their bound.
func Erasure(t TypeRef) TypeRef {
	switch t := t.(type) {
	case *NamedType:
		if t.IsParameterized() {
			return t.Raw()
		}
		return t
	case *TypeVariable:
		if t.Bound != nil {
			return Erasure(t.Bound)
		}
		return Named(ObjectName)
	case *ArrayType:
		return &ArrayType{Component: Erasure(t.Component)}
	case *WildcardType:
		if t.Kind == WildcardExtends && t.Bound != nil {
			return Erasure(t.Bound)
		}
		return Named(ObjectName)
	}
	return t
}

// EqualTypes compares two TypeRefs structurally. Type variables are
// equal when their names match.
func EqualTypes(a, b TypeRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case *NamedType:
		b, ok := b.(*NamedType)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		if (a.Owner == nil) != (b.Owner == nil) {
			return false
		}
		if a.Owner != nil && !EqualTypes(a.Owner, b.Owner) {
			return false
		}
		for i := range a.Args {
			if !EqualTypes(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *TypeVariable:
		b, ok := b.(*TypeVariable)
		return ok && a.Name == b.Name
	case *ArrayType:
		b, ok := b.(*ArrayType)
		return ok && EqualTypes(a.Component, b.Component)
	case *WildcardType:
		b, ok := b.(*WildcardType)
		return ok && a.Kind == b.Kind && EqualTypes(a.Bound, b.Bound)
	}
	return false
}

// Mentions reports whether t refers to the type variable name anywhere.
func Mentions(t TypeRef, name string) bool {
	switch t := t.(type) {
	case *NamedType:
		for _, a := range t.Args {
			if Mentions(a, name) {
				return true
			}
		}
		return t.Owner != nil && Mentions(t.Owner, name)
	case *TypeVariable:
		return t.Name == name
	case *ArrayType:
		return Mentions(t.Component, name)
	case *WildcardType:
		return t.Bound != nil && Mentions(t.Bound, name)
	}
	return false
}

// SplitName splits a binary name into package and the remainder.
func SplitName(name string) (pkg, rest string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// JoinName is the inverse of SplitName.
func JoinName(pkg, rest string) string {
	if pkg == "" {
		return rest
	}
	return pkg + "." + rest
}
