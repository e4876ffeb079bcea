package java

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func class(name, super string, ifaces ...string) *ClassDescriptor {
	pkg, simple := SplitName(name)
	d := &ClassDescriptor{Name: name, Package: pkg, SimpleName: simple, Kind: ClassKindClass}
	if super != "" {
		d.SuperClass = Named(super)
	}
	for _, i := range ifaces {
		d.Interfaces = append(d.Interfaces, Named(i))
	}
	return d
}

func TestCatalog(t *testing.T) {
	cat := NewCatalog()
	require.NoError(t, cat.Add(class("a.B", ObjectName)))
	require.NoError(t, cat.Add(class("a.A", "a.B")))

	err := cat.Add(class("a.A", ObjectName))
	assert.True(t, errors.Is(err, ErrDuplicateClass))
	assert.Equal(t, 2, cat.Len())

	got, err := cat.Lookup("a.A")
	require.NoError(t, err)
	assert.Equal(t, "a.B", got.SuperClassName())

	_, err = cat.Lookup("a.Missing")
	assert.True(t, errors.Is(err, ErrClassNotFound))
	_, ok := cat.Get("a.Missing")
	assert.False(t, ok)
}

func TestCatalogTargets(t *testing.T) {
	cat := NewCatalog()
	cat.AddBuiltins()
	require.NoError(t, cat.Add(class("z.Last", ObjectName)))
	require.NoError(t, cat.Add(class("a.First", ObjectName)))

	var names []string
	for _, d := range cat.Targets() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"z.Last", "a.First"}, names)
}

func TestCatalogAncestors(t *testing.T) {
	cat := NewCatalog()
	cat.AddBuiltins()
	shape := class("a.Shape", "")
	shape.Kind = ClassKindInterface
	require.NoError(t, cat.Add(shape))
	require.NoError(t, cat.Add(class("a.Base", ObjectName, "a.Shape")))
	require.NoError(t, cat.Add(class("a.Square", "a.Base", "a.Shape", "x.Unknown")))

	square, err := cat.Lookup("a.Square")
	require.NoError(t, err)

	var names []string
	for _, d := range cat.Ancestors(square) {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"a.Base", "a.Shape", ObjectName}, names)
}

func TestAddBuiltins(t *testing.T) {
	cat := NewCatalog()
	own := class(ObjectName, "")
	require.NoError(t, cat.Add(own))
	cat.AddBuiltins()

	got, ok := cat.Get(ObjectName)
	require.True(t, ok)
	assert.Same(t, own, got, "loaded classes win over builtins")

	enum, ok := cat.Get(EnumName)
	require.True(t, ok)
	assert.True(t, enum.Reference)
	require.Len(t, enum.Constructors, 1)
	assert.Equal(t, VisibilityProtected, enum.Constructors[0].Visibility)

	policy, ok := cat.Get("java.lang.annotation.RetentionPolicy")
	require.True(t, ok)
	assert.Equal(t, "SOURCE", policy.EnumConstants[0].Name)
}
