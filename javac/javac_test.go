package javac

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	sep := string(os.PathListSeparator)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "manifest only",
			opts: Options{Manifest: "stub_src/sources.list"},
			want: []string{"@stub_src/sources.list"},
		},
		{
			name: "everything",
			opts: Options{
				Manifest:  "m.list",
				Classpath: []string{"a.jar", "b.jar"},
				Release:   "17",
				Output:    "build",
				Flags:     `-Xlint:none -encoding "UTF-8" -Aname='two words'`,
			},
			want: []string{
				"-cp", "a.jar" + sep + "b.jar",
				"--release", "17",
				"-d", "build",
				"-Xlint:none", "-encoding", "UTF-8", "-Aname=two words",
				"@m.list",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Args(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unterminated quote", func(t *testing.T) {
		_, err := Args(Options{Manifest: "m.list", Flags: `-g "oops`})
		require.Error(t, err)
		assert.NotEmpty(t, errors.GetAllHints(err))
	})

	t.Run("no manifest", func(t *testing.T) {
		_, err := Args(Options{})
		assert.Error(t, err)
	})
}

func TestExecutable(t *testing.T) {
	home := t.TempDir()
	bin := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "javac"), nil, 0o755))

	t.Setenv("JAVA_HOME", home)
	assert.Equal(t, filepath.Join(bin, "javac"), Executable(""))
	assert.Equal(t, filepath.Join(bin, "javac"), Executable("javac"))
	assert.Equal(t, "/usr/lib/jvm/bin/javac", Executable("/usr/lib/jvm/bin/javac"))

	t.Setenv("JAVA_HOME", t.TempDir())
	assert.Equal(t, "javac", Executable("javac"))
}

func TestCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build")
	cmd, err := Command(context.Background(), Options{Path: "/opt/javac", Output: out, Manifest: "m.list"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/javac", "-d", out, "@m.list"}, cmd.Args)
	assert.DirExists(t, out)
}
