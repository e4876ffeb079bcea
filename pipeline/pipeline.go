// Package pipeline turns a catalog of class descriptors into stub
// source files. Workers emit classes in parallel and hand the text to
// a single writer goroutine that owns the output directory and the
// manifest.
package pipeline

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dmssargent/StubJars/java"
)

var log = commonlog.GetLogger("stubjars.pipeline")

const (
	DefaultWorkers      = 4
	DefaultQueueSize    = 5000
	DefaultManifestName = "sources.list"
)

// Emitter renders the source file of one top-level class.
type Emitter interface {
	EmitFile(class *java.ClassDescriptor) (string, error)
}

type Options struct {
	Workers   int
	QueueSize int
	Output    string
	// Manifest defaults to <Output>/sources.list.
	Manifest string
	// Progress is called from the writer goroutine once per processed
	// class.
	Progress func(done, total int)
}

// Job is one emitted class on its way to the writer. Err is set when
// emission failed; the writer records it instead of writing.
type Job struct {
	Class string
	Path  string
	Text  string
	Err   error
}

type Pipeline struct {
	emitter Emitter
	opts    Options
}

func New(emitter Emitter, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Output == "" {
		opts.Output = "stub_src"
	}
	if opts.Manifest == "" {
		opts.Manifest = filepath.Join(opts.Output, DefaultManifestName)
	}
	return &Pipeline{emitter: emitter, opts: opts}
}

// Eligible reports whether class gets its own source file. Nested,
// private and reference-only classes do not, and java.lang.Enum is
// never regenerated.
func Eligible(class *java.ClassDescriptor) bool {
	switch {
	case class.Name == "", class.Name == java.EnumName:
		return false
	case class.IsInner(), class.IsSynthetic, class.Reference:
		return false
	case class.Visibility == java.VisibilityPrivate:
		return false
	}
	return true
}

// SourcePath is the file a class is written to below root.
func SourcePath(root string, class *java.ClassDescriptor) string {
	dir := filepath.FromSlash(strings.ReplaceAll(class.Package, ".", "/"))
	return filepath.Join(root, dir, class.SimpleName+".java")
}

// PrepareDirectories creates the package directory of every eligible
// class below root.
func PrepareDirectories(root string, classes []*java.ClassDescriptor) error {
	seen := map[string]bool{}
	for _, c := range classes {
		if !Eligible(c) {
			continue
		}
		dir := filepath.Dir(SourcePath(root, c))
		if seen[dir] {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
		seen[dir] = true
	}
	return nil
}

// partition splits classes into n contiguous runs. The last run takes
// the remainder, and all of classes when there are fewer than n.
func partition(classes []*java.ClassDescriptor, n int) [][]*java.ClassDescriptor {
	if n < 1 {
		n = 1
	}
	size := len(classes) / n
	parts := make([][]*java.ClassDescriptor, n)
	for i := range parts {
		start := i * size
		end := start + size
		if i == n-1 {
			end = len(classes)
		}
		parts[i] = classes[start:end]
	}
	return parts
}

// Run emits every eligible class and writes the results. Per-class
// problems end up in the Result; only cancellation and manifest I/O
// fail the run.
func (p *Pipeline) Run(ctx context.Context, classes []*java.ClassDescriptor) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "run")
	}
	if err := PrepareDirectories(p.opts.Output, classes); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p.opts.Manifest), 0o755); err != nil {
		return nil, errors.Wrap(err, "manifest directory")
	}
	manifest, err := os.Create(p.opts.Manifest)
	if err != nil {
		return nil, errors.Wrap(err, "manifest")
	}
	defer manifest.Close()

	total := 0
	for _, c := range classes {
		if Eligible(c) {
			total++
		}
	}
	res := &Result{RunID: uuid.New()}
	log.Infof("run %s: %d classes, %d workers", res.RunID, total, p.opts.Workers)

	jobs := make(chan Job, p.opts.QueueSize)
	g, gctx := errgroup.WithContext(ctx)
	workers, wctx := errgroup.WithContext(gctx)
	for i, part := range partition(classes, p.opts.Workers) {
		workers.Go(func() error {
			log.Debugf("worker %d: %d classes", i, len(part))
			return p.work(wctx, part, jobs)
		})
	}
	g.Go(func() error {
		defer close(jobs)
		return workers.Wait()
	})

	out := bufio.NewWriter(manifest)
	g.Go(func() error {
		return p.write(gctx, jobs, out, res, total)
	})

	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "run %s", res.RunID)
	}
	if err := out.Flush(); err != nil {
		return nil, errors.Wrap(err, "manifest")
	}
	log.Infof("run %s: %d generated, %d skipped, %d failed",
		res.RunID, len(res.Generated), res.Skipped, len(res.Failures))
	return res, nil
}

func (p *Pipeline) work(ctx context.Context, classes []*java.ClassDescriptor, jobs chan<- Job) error {
	for _, c := range classes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !Eligible(c) {
			continue
		}
		job := Job{Class: c.Name, Path: SourcePath(p.opts.Output, c)}
		job.Text, job.Err = p.emitter.EmitFile(c)
		select {
		case jobs <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// write is the only goroutine that touches the output tree, the
// manifest and res.
func (p *Pipeline) write(ctx context.Context, jobs <-chan Job, manifest *bufio.Writer, res *Result, total int) error {
	done := 0
	for {
		var job Job
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j, ok := <-jobs:
			if !ok {
				return nil
			}
			job = j
		}

		done++
		if p.opts.Progress != nil {
			p.opts.Progress(done, total)
		}

		switch {
		case errors.Is(job.Err, java.ErrClassNotFound):
			log.Warningf("skipping %s: %v", job.Class, job.Err)
			res.Skipped++
			continue
		case job.Err != nil:
			log.Errorf("%s: %v", job.Class, job.Err)
			res.Failures = append(res.Failures, Failure{Class: job.Class, Stage: StageEmit, Err: job.Err})
			continue
		}

		if err := os.WriteFile(job.Path, []byte(job.Text), 0o644); err != nil {
			log.Errorf("write %s: %v", job.Path, err)
			res.Failures = append(res.Failures, Failure{Class: job.Class, Stage: StageWrite, Err: err})
			continue
		}
		abs, err := filepath.Abs(job.Path)
		if err != nil {
			abs = job.Path
		}
		if _, err := manifest.WriteString(abs + "\n"); err != nil {
			return errors.Wrap(err, "manifest")
		}
		res.Generated = append(res.Generated, abs)
	}
}
