package stub

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmssargent/StubJars/java"
)

func genericBase(name string, params []java.TypeParameter, ctors ...java.Method) *java.ClassDescriptor {
	c := newClass(name, java.ClassKindClass)
	c.TypeParameters = params
	c.Constructors = ctors
	return c
}

func subclass(name string, super java.TypeRef) *java.ClassDescriptor {
	c := newClass(name, java.ClassKindClass)
	c.SuperClass = super
	c.Constructors = []java.Method{ctor(java.VisibilityPublic)}
	return c
}

func superCall(t *testing.T, sub *java.ClassDescriptor, classes ...*java.ClassDescriptor) (string, error) {
	t.Helper()
	cat := newCatalog(t, append(classes, sub)...)
	s := NewConstructorSynthesizer(cat, NewMemberPolicy(cat))
	body, err := s.SuperCall(sub)
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

func TestSuperCall(t *testing.T) {
	tv := func(name string) *java.TypeVariable { return &java.TypeVariable{Name: name} }
	count := param("count", java.Named("int"))

	t.Run("parameterized superclass", func(t *testing.T) {
		base := genericBase("a.Base", []java.TypeParameter{{Name: "T"}},
			ctor(java.VisibilityPublic, count, param("value", tv("T"))))
		got, err := superCall(t, subclass("a.Sub", java.Named("a.Base", java.Named(java.StringName))), base)
		require.NoError(t, err)
		assert.Equal(t, `{ super((int) 0, (String) ""); }`, got)
	})

	t.Run("object superclass", func(t *testing.T) {
		got, err := superCall(t, subclass("a.Sub", java.Named(java.ObjectName)))
		require.NoError(t, err)
		assert.Equal(t, "{ }", got)
	})

	t.Run("no superclass", func(t *testing.T) {
		got, err := superCall(t, subclass("a.Sub", nil))
		require.NoError(t, err)
		assert.Equal(t, "{ }", got)
	})

	t.Run("accessible no-arg constructor", func(t *testing.T) {
		base := genericBase("a.Base", nil, ctor(java.VisibilityPublic, count), ctor(java.VisibilityProtected))
		got, err := superCall(t, subclass("a.Sub", java.Named("a.Base")), base)
		require.NoError(t, err)
		assert.Equal(t, "{ }", got)
	})

	t.Run("package-private no-arg constructor in the same package", func(t *testing.T) {
		base := genericBase("a.Base", nil, ctor(java.VisibilityPackage), ctor(java.VisibilityPublic, count))
		got, err := superCall(t, subclass("a.Sub", java.Named("a.Base")), base)
		require.NoError(t, err)
		assert.Equal(t, "{ }", got)
	})

	t.Run("package-private no-arg constructor in another package", func(t *testing.T) {
		base := genericBase("b.Base", nil, ctor(java.VisibilityPackage), ctor(java.VisibilityPublic, count))
		got, err := superCall(t, subclass("a.Sub", java.Named("b.Base")), base)
		require.NoError(t, err)
		assert.Equal(t, "{ super((int) 0); }", got)
	})

	t.Run("void argument is omitted", func(t *testing.T) {
		base := genericBase("a.Base", []java.TypeParameter{{Name: "T"}},
			ctor(java.VisibilityPublic, param("value", tv("T")), count))
		got, err := superCall(t, subclass("a.Sub", java.Named("a.Base", java.Named(java.VoidName))), base)
		require.NoError(t, err)
		assert.Equal(t, "{ super((int) 0); }", got)
	})

	t.Run("raw superclass erases to the bound", func(t *testing.T) {
		bounded := &java.TypeVariable{Name: "T", Bound: java.Named("java.lang.Number")}
		base := genericBase("a.Base", []java.TypeParameter{{Name: "T", Bounds: []java.TypeRef{java.Named("java.lang.Number")}}},
			ctor(java.VisibilityPublic, param("value", bounded)))
		got, err := superCall(t, subclass("a.Sub", java.Named("a.Base")), base)
		require.NoError(t, err)
		assert.Equal(t, "{ super((Number) null); }", got)
	})

	t.Run("arrays and primitives", func(t *testing.T) {
		base := genericBase("a.Base", nil, ctor(java.VisibilityProtected,
			param("names", &java.ArrayType{Component: java.Named(java.StringName)}),
			param("flag", java.Named("boolean")),
			param("unit", java.Named("java.util.concurrent.TimeUnit")),
		))
		got, err := superCall(t, subclass("a.Sub", java.Named("a.Base")), base)
		require.NoError(t, err)
		assert.Equal(t, "{ super((String[]) new String[] {}, (boolean) false, (java.util.concurrent.TimeUnit) java.util.concurrent.TimeUnit.NANOSECONDS); }", got)
	})

	t.Run("builtin superclass", func(t *testing.T) {
		got, err := superCall(t, subclass("a.Sub", java.Named("java.lang.RuntimeException")))
		require.NoError(t, err)
		assert.Equal(t, "{ }", got)
	})

	t.Run("missing superclass", func(t *testing.T) {
		_, err := superCall(t, subclass("a.Sub", java.Named("a.Missing")))
		assert.True(t, errors.Is(err, java.ErrClassNotFound))
	})

	t.Run("only private constructors", func(t *testing.T) {
		base := genericBase("a.Base", nil, ctor(java.VisibilityPrivate, count))
		_, err := superCall(t, subclass("a.Sub", java.Named("a.Base")), base)
		assert.True(t, errors.Is(err, ErrNoInferableConstructor))
	})
}

func TestTypeArgumentFor(t *testing.T) {
	base := genericBase("a.Base", []java.TypeParameter{
		{Name: "T"},
		{Name: "U", Bounds: []java.TypeRef{java.Named("java.util.List", &java.TypeVariable{Name: "X"})}},
	})
	sub := subclass("a.Sub", java.Named("a.Base", java.Named(java.StringName), java.Named("java.lang.Integer")))
	raw := subclass("a.Raw", java.Named("a.Base"))
	cat := newCatalog(t, base, sub, raw)
	s := NewConstructorSynthesizer(cat, NewMemberPolicy(cat))

	got, ok := s.TypeArgumentFor("T", sub)
	require.True(t, ok)
	assert.True(t, java.IsType(got, java.StringName))

	got, ok = s.TypeArgumentFor("X", sub)
	require.True(t, ok)
	assert.True(t, java.IsType(got, "java.lang.Integer"))

	_, ok = s.TypeArgumentFor("Z", sub)
	assert.False(t, ok)

	_, ok = s.TypeArgumentFor("T", raw)
	assert.False(t, ok)
}
