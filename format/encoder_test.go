package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmssargent/StubJars/java"
)

func sampleClass() *java.ClassDescriptor {
	return &java.ClassDescriptor{
		Name:       "com.example.Color",
		Package:    "com.example",
		SimpleName: "Color",
		Kind:       java.ClassKindEnum,
		Visibility: java.VisibilityPublic,
		IsFinal:    true,
		SuperClass: java.Named(java.EnumName, java.Named("com.example.Color")),
		EnumConstants: []java.EnumConstant{
			{Name: "RED"},
			{Name: "GREEN", Body: "com.example.Color$1"},
		},
		Fields: []java.Field{{
			Name: "RED", Type: java.Named("com.example.Color"), Visibility: java.VisibilityPublic,
			IsStatic: true, IsFinal: true, IsEnumConstant: true,
		}},
		Methods: []java.Method{{
			Name: "mix", Visibility: java.VisibilityPublic, ReturnType: java.Named("int"),
			Parameters: []java.Parameter{{Name: "other", Type: java.Named("com.example.Color")}},
		}},
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineEncoder(&buf).Encode(sampleClass()))
	assert.Equal(t,
		"enum\tcom.example.Color\tpublic,final\n"+
			"constant\tRED\t-\n"+
			"constant\tGREEN\tcom.example.Color$1\n"+
			"field\tRED\tcom.example.Color\tpublic\tstatic,final,enum\n"+
			"method\tmix\tint\tcom.example.Color\tpublic\t-\n",
		buf.String())
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).Encode(sampleClass()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "enum", doc["kind"])
	assert.Equal(t, "java.lang.Enum<com.example.Color>", doc["superClass"])
	assert.Equal(t, []any{"RED", "GREEN"}, doc["enumConstants"])
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder("yaml", &buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(sampleClass()))

	var doc classDoc
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Color", doc.SimpleName)
	require.Len(t, doc.Methods, 1)
	assert.Equal(t, "other", doc.Methods[0].Parameters[0].Name)
}

func TestNewEncoderUnknown(t *testing.T) {
	_, err := NewEncoder("xml", &bytes.Buffer{})
	assert.Error(t, err)
}
