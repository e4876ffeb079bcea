package java

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldSignature(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"I", "int"},
		{"[[J", "long[][]"},
		{"Ljava/lang/String;", "java.lang.String"},
		{"Ljava/util/List<Ljava/lang/String;>;", "java.util.List<java.lang.String>"},
		{"Ljava/util/Map<TK;[TV;>;", "java.util.Map<K, V[]>"},
		{"Ljava/util/List<*>;", "java.util.List<?>"},
		{"Ljava/util/List<+Ljava/lang/Number;>;", "java.util.List<? extends java.lang.Number>"},
		{"Ljava/util/List<-TT;>;", "java.util.List<? super T>"},
		{"Ljava/util/Map$Entry;", "java.util.Map$Entry"},
		{"La/Outer<TT;>.Inner<TU;>;", "a.Outer<T>.Inner<U>"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			got, err := ParseFieldSignature(tt.sig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseFieldSignatureOwner(t *testing.T) {
	got, err := ParseFieldSignature("La/Outer<TT;>.Inner;")
	require.NoError(t, err)
	inner, ok := got.(*NamedType)
	require.True(t, ok)
	assert.Equal(t, "a.Outer$Inner", inner.Name)
	require.NotNil(t, inner.Owner)
	assert.Equal(t, "a.Outer", inner.Owner.Name)
	assert.True(t, inner.IsParameterized())
	assert.Equal(t, "a.Outer$Inner", inner.Raw().String())
}

func TestParseClassSignature(t *testing.T) {
	sig := "<K:Ljava/lang/Object;V::Ljava/lang/Comparable<TV;>;>La/Base<TK;>;Ljava/io/Serializable;"
	cs, err := ParseClassSignature(sig)
	require.NoError(t, err)

	require.Len(t, cs.TypeParameters, 2)
	assert.Equal(t, "K", cs.TypeParameters[0].Name)
	assert.Equal(t, "java.lang.Object", cs.TypeParameters[0].Bounds[0].String())
	assert.Equal(t, "V", cs.TypeParameters[1].Name)
	require.Len(t, cs.TypeParameters[1].Bounds, 1)
	assert.Equal(t, "java.lang.Comparable<V>", cs.TypeParameters[1].Bounds[0].String())

	assert.Equal(t, "a.Base<K>", cs.SuperClass.String())
	require.Len(t, cs.Interfaces, 1)
	assert.Equal(t, "java.io.Serializable", cs.Interfaces[0].String())
}

func TestParseMethodSignature(t *testing.T) {
	ms, err := ParseMethodSignature("<T:Ljava/lang/Number;>(TT;[I)Ljava/util/List<TT;>;^Ljava/io/IOException;^TE;")
	require.NoError(t, err)

	require.Len(t, ms.TypeParameters, 1)
	require.Len(t, ms.Parameters, 2)
	assert.Equal(t, "T", ms.Parameters[0].String())
	assert.Equal(t, "int[]", ms.Parameters[1].String())
	assert.Equal(t, "java.util.List<T>", ms.ReturnType.String())
	require.Len(t, ms.Throws, 2)
	assert.Equal(t, "E", ms.Throws[1].String())

	desc, err := ParseMethodSignature("(Ljava/lang/String;J)V")
	require.NoError(t, err)
	assert.Len(t, desc.Parameters, 2)
	assert.Equal(t, "void", desc.ReturnType.String())
}

func TestParseSignatureErrors(t *testing.T) {
	for _, sig := range []string{"", "Ljava/lang/String", "Q", "Ljava/util/List<TT;", "(I"} {
		t.Run(sig, func(t *testing.T) {
			_, err := ParseFieldSignature(sig)
			if sig == "(I" {
				_, err = ParseMethodSignature(sig)
			}
			assert.True(t, errors.Is(err, ErrMalformedSignature), "got %v", err)
		})
	}
}

func TestBindVariables(t *testing.T) {
	params := []TypeParameter{{Name: "T", Bounds: []TypeRef{Named("java.lang.Number")}}, {Name: "U", Bounds: []TypeRef{Named(ObjectName)}}}
	list := Named("java.util.List", &TypeVariable{Name: "T"}, &TypeVariable{Name: "U"})

	bound := bindVariables(list, params).(*NamedType)
	tv := bound.Args[0].(*TypeVariable)
	require.NotNil(t, tv.Bound)
	assert.Equal(t, "java.lang.Number", tv.Bound.String())
	assert.Nil(t, bound.Args[1].(*TypeVariable).Bound)

	assert.Equal(t, "java.lang.Number", Erasure(tv).String())
	assert.Equal(t, "java.util.List", Erasure(bound).String())
	assert.True(t, EqualTypes(list, bound))
	assert.True(t, Mentions(bound, "U"))
	assert.False(t, Mentions(bound, "X"))
}
