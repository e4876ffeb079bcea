package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmssargent/StubJars/java"
	"github.com/dmssargent/StubJars/stub"
)

func class(name string) *java.ClassDescriptor {
	pkg, simple := java.SplitName(name)
	return &java.ClassDescriptor{
		Name:       name,
		Package:    pkg,
		SimpleName: simple,
		Kind:       java.ClassKindClass,
		Visibility: java.VisibilityPublic,
		SuperClass: java.Named(java.ObjectName),
	}
}

func classes(names ...string) []*java.ClassDescriptor {
	out := make([]*java.ClassDescriptor, len(names))
	for i, n := range names {
		out[i] = class(n)
	}
	return out
}

// fakeEmitter returns "// <name>\n" or the error registered for a class.
type fakeEmitter struct {
	mu     sync.Mutex
	errs   map[string]error
	called []string
}

func (f *fakeEmitter) EmitFile(c *java.ClassDescriptor) (string, error) {
	f.mu.Lock()
	f.called = append(f.called, c.Name)
	f.mu.Unlock()
	if err, ok := f.errs[c.Name]; ok {
		return "", err
	}
	return "// " + c.Name + "\n", nil
}

func TestPartition(t *testing.T) {
	sizes := func(parts [][]*java.ClassDescriptor) []int {
		var out []int
		for _, p := range parts {
			out = append(out, len(p))
		}
		return out
	}

	tests := []struct {
		name    string
		n       int
		workers int
		want    []int
	}{
		{"even", 8, 4, []int{2, 2, 2, 2}},
		{"remainder goes last", 10, 4, []int{2, 2, 2, 4}},
		{"fewer classes than workers", 3, 4, []int{0, 0, 0, 3}},
		{"no classes", 0, 2, []int{0, 0}},
		{"no workers", 5, 0, []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := make([]*java.ClassDescriptor, tt.n)
			for i := range all {
				all[i] = class("a.C" + string(rune('A'+i)))
			}
			parts := partition(all, tt.workers)
			assert.Equal(t, tt.want, sizes(parts))

			var joined []*java.ClassDescriptor
			for _, p := range parts {
				joined = append(joined, p...)
			}
			assert.Equal(t, len(all), len(joined))
			for i := range joined {
				assert.Same(t, all[i], joined[i], "partitions are contiguous")
			}
		})
	}
}

func TestEligible(t *testing.T) {
	inner := class("a.Outer$Inner")
	inner.DeclaringClass = "a.Outer"
	anon := class("a.Outer$1")
	anon.IsAnonymous = true
	private := class("a.Hidden")
	private.Visibility = java.VisibilityPrivate
	ref := class("a.Ref")
	ref.Reference = true

	assert.True(t, Eligible(class("a.Outer")))
	assert.True(t, Eligible(class("Plain")))
	assert.False(t, Eligible(inner))
	assert.False(t, Eligible(anon))
	assert.False(t, Eligible(private))
	assert.False(t, Eligible(ref))
	assert.False(t, Eligible(class(java.EnumName)))
	assert.False(t, Eligible(&java.ClassDescriptor{}))
}

func TestSourcePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "com", "example", "Widget.java"), SourcePath("out", class("com.example.Widget")))
	assert.Equal(t, filepath.Join("out", "Plain.java"), SourcePath("out", class("Plain")))
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	inner := class("a.One$Inner")
	inner.DeclaringClass = "a.One"
	input := append(classes("a.One", "b.c.Two", "Plain", "a.Missing", "a.Bad"), inner)

	emitter := &fakeEmitter{errs: map[string]error{
		"a.Missing": errors.Wrap(java.ErrClassNotFound, "superclass of a.Missing"),
		"a.Bad":     errors.Wrap(stub.ErrUnsafeName, "a.Bad$1"),
	}}
	var progress []int
	p := New(emitter, Options{
		Workers: 2, QueueSize: 1, Output: root,
		Progress: func(done, total int) {
			assert.Equal(t, 5, total)
			progress = append(progress, done)
		},
	})

	res, err := p.Run(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID.String())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "a.Bad", res.Failures[0].Class)
	assert.Equal(t, StageEmit, res.Failures[0].Stage)
	assert.True(t, errors.Is(res.Failures[0].Err, stub.ErrUnsafeName))
	assert.NotContains(t, emitter.called, "a.One$Inner")

	want := []string{
		filepath.Join(root, "a", "One.java"),
		filepath.Join(root, "b", "c", "Two.java"),
		filepath.Join(root, "Plain.java"),
	}
	assert.ElementsMatch(t, want, res.Generated)
	for _, path := range want {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "// "))
	}

	manifest, err := os.ReadFile(filepath.Join(root, DefaultManifestName))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(res.Generated, "\n")+"\n", string(manifest), "manifest follows completion order")
}

func TestRunManifestPath(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "lists", "stubs.txt")
	p := New(&fakeEmitter{}, Options{Output: filepath.Join(root, "src"), Manifest: manifest})

	res, err := p.Run(context.Background(), classes("a.One"))
	require.NoError(t, err)
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Equal(t, res.Generated[0]+"\n", string(data))
}

func TestRunWriteFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "One.java"), 0o755))

	p := New(&fakeEmitter{}, Options{Workers: 1, Output: root})
	res, err := p.Run(context.Background(), classes("a.One", "a.Two"))
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "a.One", res.Failures[0].Class)
	assert.Equal(t, StageWrite, res.Failures[0].Stage)
	assert.Equal(t, []string{filepath.Join(root, "a", "Two.java")}, res.Generated)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(&fakeEmitter{}, Options{Output: t.TempDir()})
	res, err := p.Run(ctx, classes("a.One", "a.Two"))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

// cancellingEmitter cancels the run after its first class.
type cancellingEmitter struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (c *cancellingEmitter) EmitFile(class *java.ClassDescriptor) (string, error) {
	c.once.Do(c.cancel)
	return "", nil
}

func TestRunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(&cancellingEmitter{cancel: cancel}, Options{Workers: 1, Output: t.TempDir()})
	res, err := p.Run(ctx, classes("a.A", "a.B", "a.C", "a.D"))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunWithClassEmitter(t *testing.T) {
	cat := java.NewCatalog()
	shape := class("geo.Shape")
	shape.Kind = java.ClassKindInterface
	shape.Methods = []java.Method{{
		Name: "area", Descriptor: "()D", Visibility: java.VisibilityPublic,
		ReturnType: java.Named("double"), IsAbstract: true,
	}}
	require.NoError(t, cat.Add(shape))
	cat.AddBuiltins()

	root := t.TempDir()
	emitter := stub.NewClassEmitter(cat, stub.NewMemberPolicy(cat))
	res, err := New(emitter, Options{Output: root}).Run(context.Background(), cat.Targets())
	require.NoError(t, err)
	require.Len(t, res.Generated, 1)

	data, err := os.ReadFile(filepath.Join(root, "geo", "Shape.java"))
	require.NoError(t, err)
	assert.Equal(t, "package geo;\n\npublic interface Shape {\n    double area();\n}\n", string(data))
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	p := New(&fakeEmitter{errs: map[string]error{"a.Bad": stub.ErrNoInferableConstructor}}, Options{Output: t.TempDir()})
	res, err := p.Run(context.Background(), classes("a.Good", "a.Bad"))
	require.NoError(t, err)
	require.NoError(t, res.WriteReport(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		RunID     string   `yaml:"run_id"`
		Generated []string `yaml:"generated"`
		Skipped   int      `yaml:"skipped"`
		Failures  []struct {
			Class string `yaml:"class"`
			Stage string `yaml:"stage"`
			Error string `yaml:"error"`
		} `yaml:"failures"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, res.RunID.String(), doc.RunID)
	assert.Len(t, doc.Generated, 1)
	require.Len(t, doc.Failures, 1)
	assert.Equal(t, "a.Bad", doc.Failures[0].Class)
	assert.Equal(t, StageEmit, doc.Failures[0].Stage)
	assert.Contains(t, doc.Failures[0].Error, "no inferable")
}
