package java

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ct "github.com/dmssargent/StubJars/internal/classtest"
)

func jarBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func simpleClass(name string) []byte {
	return ct.New(name, ct.AccPublic|ct.AccSuper).
		Method(ct.AccPublic, "<init>", "()V").
		Bytes()
}

func TestLoadJar(t *testing.T) {
	nested := jarBytes(t, map[string][]byte{
		"lib/Inner.class": simpleClass("lib/Inner"),
	})
	jar := jarBytes(t, map[string][]byte{
		"META-INF/MANIFEST.MF":                     []byte("Manifest-Version: 1.0\n"),
		"com/example/A.class":                      simpleClass("com/example/A"),
		"com/example/package-info.class":           []byte("ignored"),
		"META-INF/versions/11/com/example/A.class": simpleClass("com/example/A"),
		"com/example/Broken.class":                 []byte("not a class"),
		"libs/nested.jar":                          nested,
	})
	path := filepath.Join(t.TempDir(), "app.jar")
	require.NoError(t, os.WriteFile(path, jar, 0o644))

	cat := NewCatalog()
	stats, err := LoadPath(cat, path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Classes)
	assert.Equal(t, 1, stats.Failures)

	a, ok := cat.Get("com.example.A")
	require.True(t, ok)
	assert.False(t, a.Reference)
	_, ok = cat.Get("lib.Inner")
	assert.True(t, ok)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "com", "example"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com", "example", "B.class"), simpleClass("com/example/B"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("hello"), 0o644))

	cat := NewCatalog()
	stats, err := LoadPath(cat, dir, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Classes)

	b, ok := cat.Get("com.example.B")
	require.True(t, ok)
	assert.True(t, b.Reference)
	assert.Empty(t, cat.Targets())
}

func TestLoadDuplicateKeepsFirst(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jar")
	second := filepath.Join(dir, "second.jar")
	require.NoError(t, os.WriteFile(first, jarBytes(t, map[string][]byte{"p/C.class": simpleClass("p/C")}), 0o644))
	require.NoError(t, os.WriteFile(second, jarBytes(t, map[string][]byte{"p/C.class": simpleClass("p/C")}), 0o644))

	cat := NewCatalog()
	_, err := LoadPath(cat, first, false)
	require.NoError(t, err)
	stats, err := LoadPath(cat, second, true)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Classes)

	c, ok := cat.Get("p.C")
	require.True(t, ok)
	assert.False(t, c.Reference)
}

func TestLoadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := LoadPath(NewCatalog(), path, false)
	assert.Error(t, err)

	_, err = LoadPath(NewCatalog(), filepath.Join(t.TempDir(), "missing.jar"), false)
	assert.Error(t, err)
}
