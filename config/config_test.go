package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "stub_src", cfg.Output)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5000, cfg.QueueSize)
	assert.Equal(t, "javac", cfg.Javac.Path)
	assert.Equal(t, filepath.Join("stub_src", "sources.list"), cfg.ManifestPath())
	assert.Empty(t, cfg.ClasspathEntries())
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "stubjars.toml"), `
output = "gen"
workers = 8
queue_size = 10

[javac]
flags = "-Xlint:none -g"
release = "17"
`)

	t.Run("working directory file", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "gen", cfg.Output)
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, 10, cfg.QueueSize)
		assert.Equal(t, "-Xlint:none -g", cfg.Javac.Flags)
		assert.Equal(t, "17", cfg.Javac.Release)
	})

	t.Run("environment beats file", func(t *testing.T) {
		t.Setenv("STUBJARS_WORKERS", "2")
		t.Setenv("STUBJARS_JAVAC_FLAGS", "-nowarn")
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, "-nowarn", cfg.Javac.Flags)
		assert.Equal(t, "gen", cfg.Output)
	})

	t.Run("changed flags beat environment", func(t *testing.T) {
		t.Setenv("STUBJARS_WORKERS", "2")
		flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
		flags.Int("workers", 4, "")
		flags.String("output", "stub_src", "")
		flags.Int("queue-size", 5000, "")
		require.NoError(t, flags.Parse([]string{"--workers=16"}))

		cfg, err := Load("", flags)
		require.NoError(t, err)
		assert.Equal(t, 16, cfg.Workers)
		assert.Equal(t, "gen", cfg.Output, "unchanged flags keep the file value")
		assert.Equal(t, 10, cfg.QueueSize)
	})
}

func TestLoadExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "output: out\nmanifest: out/all.txt\nclasspath: lib/a.jar\njavac:\n  path: /opt/jdk/bin/javac\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, "out/all.txt", cfg.ManifestPath())
	assert.Equal(t, []string{"lib/a.jar"}, cfg.ClasspathEntries())
	assert.Equal(t, "/opt/jdk/bin/javac", cfg.Javac.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Output: "out", Workers: 1, QueueSize: 1, Javac: JavacConfig{Path: "javac"}}
	}
	require.NoError(t, (&Config{Output: "out", Workers: 1, QueueSize: 1, Javac: JavacConfig{Path: "javac", Release: "21"}}).Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no queue", func(c *Config) { c.QueueSize = -1 }},
		{"no output", func(c *Config) { c.Output = "" }},
		{"no javac", func(c *Config) { c.Javac.Path = "" }},
		{"release", func(c *Config) { c.Javac.Release = "seventeen" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}

	t.Run("from file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		writeFile(t, filepath.Join(dir, "stubjars.toml"), "workers = 0\n")
		_, err := Load("", nil)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})
}

func TestClasspathEntries(t *testing.T) {
	sep := string(os.PathListSeparator)
	cfg := Config{Classpath: "a.jar" + sep + " b.jar" + sep + sep}
	assert.Equal(t, []string{"a.jar", "b.jar"}, cfg.ClasspathEntries())
}
