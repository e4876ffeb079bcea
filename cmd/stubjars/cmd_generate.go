package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dmssargent/StubJars/config"
	"github.com/dmssargent/StubJars/pipeline"
	"github.com/dmssargent/StubJars/stub"
)

const watchDebounce = 500 * time.Millisecond

func newGenerateCmd() *cobra.Command {
	var (
		watch bool
		build bool
	)

	cmd := &cobra.Command{
		Use:   "generate <archive>...",
		Short: "Write stub sources for the classes in jars, directories or class files",
		Long: `Write one compilable .java stub per public top-level class.

Every archive argument is loaded as a target. Classes found on
--classpath are only used to resolve superclasses and enum constants.
The list of written files goes to the manifest, ready for javac @-file
use.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := runGenerate(ctx, cfg, args, build); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchArchives(ctx, args, func() error {
				return runGenerate(ctx, cfg, args, build)
			})
		},
	}

	flags := cmd.Flags()
	flags.String("classpath", "", "reference archives, separated by the path list separator")
	flags.StringP("output", "o", "stub_src", "output directory")
	flags.IntP("workers", "w", pipeline.DefaultWorkers, "number of emitting workers")
	flags.Int("queue-size", pipeline.DefaultQueueSize, "capacity of the write queue")
	flags.String("manifest", "", "manifest file (default <output>/sources.list)")
	flags.String("report", "", "write a YAML run report to this file")
	flags.BoolVar(&watch, "watch", false, "regenerate when an archive changes")
	flags.BoolVar(&build, "build", false, "compile the stubs with javac afterwards")

	return cmd
}

func runGenerate(ctx context.Context, cfg *config.Config, archives []string, build bool) error {
	cat, err := loadCatalog(cfg, archives)
	if err != nil {
		return err
	}

	targets := cat.Targets()
	eligible := 0
	for _, c := range targets {
		if pipeline.Eligible(c) {
			eligible++
		}
	}
	if eligible == 0 {
		pterm.Warning.Println("No public top-level classes found")
		return nil
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(eligible).
		WithTitle("Generating stubs").
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return errors.Wrap(err, "progress bar")
	}

	emitter := stub.NewClassEmitter(cat, stub.NewMemberPolicy(cat))
	p := pipeline.New(emitter, pipeline.Options{
		Workers:   cfg.Workers,
		QueueSize: cfg.QueueSize,
		Output:    cfg.Output,
		Manifest:  cfg.ManifestPath(),
		Progress: func(done, total int) {
			bar.Increment()
		},
	})
	res, err := p.Run(ctx, targets)
	_, _ = bar.Stop()
	if err != nil {
		return err
	}

	pterm.Success.Printf("Generated %d stubs in %s\n", len(res.Generated), cfg.Output)
	if res.Skipped > 0 {
		pterm.Warning.Printf("Skipped %d classes with unresolvable superclasses\n", res.Skipped)
	}
	for _, f := range res.Failures {
		pterm.Error.Printf("%s (%s): %v\n", f.Class, f.Stage, f.Err)
	}
	if cfg.Report != "" {
		if err := res.WriteReport(cfg.Report); err != nil {
			return err
		}
		pterm.Info.Printf("Report written to %s\n", cfg.Report)
	}

	if build {
		return compile(ctx, cfg, nil)
	}
	return nil
}

// watchArchives calls regenerate after changes to any of paths settle,
// until ctx is cancelled.
func watchArchives(ctx context.Context, paths []string, regenerate func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	add := func() {
		for _, p := range paths {
			if err := watcher.Add(p); err != nil {
				log.Warningf("watch %s: %v", p, err)
			}
		}
	}
	add()
	pterm.Info.Println("Watching for changes, press Ctrl+C to stop")

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debugf("%s: %s", event.Name, event.Op)
			settle = time.After(watchDebounce)
		case <-settle:
			settle = nil
			// Replaced archives drop their watch.
			add()
			if err := regenerate(); err != nil {
				printError(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watcher: %v", err)
		}
	}
}
