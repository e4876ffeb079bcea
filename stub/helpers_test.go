package stub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmssargent/StubJars/java"
)

func newCatalog(t *testing.T, classes ...*java.ClassDescriptor) *java.Catalog {
	t.Helper()
	cat := java.NewCatalog()
	for _, c := range classes {
		require.NoError(t, cat.Add(c))
	}
	cat.AddBuiltins()
	return cat
}

func newClass(name string, kind java.ClassKind) *java.ClassDescriptor {
	pkg, simple := java.SplitName(name)
	return &java.ClassDescriptor{
		Name:       name,
		Package:    pkg,
		SimpleName: simple,
		Kind:       kind,
		Visibility: java.VisibilityPublic,
		SuperClass: java.Named(java.ObjectName),
	}
}

func ctor(vis java.Visibility, params ...java.Parameter) java.Method {
	return java.Method{
		Name:       "<init>",
		Descriptor: descriptorFor(params, "V"),
		Visibility: vis,
		Parameters: params,
		ReturnType: java.Named("void"),
	}
}

func method(name string, ret java.TypeRef, params ...java.Parameter) java.Method {
	return java.Method{
		Name:       name,
		Descriptor: descriptorFor(params, "V"),
		Visibility: java.VisibilityPublic,
		Parameters: params,
		ReturnType: ret,
	}
}

func param(name string, t java.TypeRef) java.Parameter {
	return java.Parameter{Name: name, Type: t}
}

// descriptorFor builds an erased method descriptor good enough for
// signature comparisons in tests.
func descriptorFor(params []java.Parameter, ret string) string {
	d := "("
	for _, p := range params {
		d += erasedDescriptor(java.Erasure(p.Type))
	}
	return d + ")" + ret
}

func erasedDescriptor(t java.TypeRef) string {
	switch t := t.(type) {
	case *java.ArrayType:
		return "[" + erasedDescriptor(t.Component)
	case *java.NamedType:
		switch t.Name {
		case "int":
			return "I"
		case "long":
			return "J"
		case "boolean":
			return "Z"
		case "double":
			return "D"
		}
		return "L" + t.Name + ";"
	}
	return "Ljava/lang/Object;"
}
