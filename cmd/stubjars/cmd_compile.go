package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dmssargent/StubJars/config"
	"github.com/dmssargent/StubJars/javac"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile generated stubs with javac",
		Long: `Compile the files listed in the manifest with javac.

The classpath from the configuration is passed with -cp, class files
go to <output>/build unless --classes-out is set, and javac.flags are
appended after shell-style splitting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return compile(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "stub_src", "directory the stubs were generated in")
	flags.String("manifest", "", "manifest file (default <output>/sources.list)")
	flags.String("classpath", "", "reference archives, separated by the path list separator")
	flags.String("javac", "javac", "javac executable")
	flags.String("javac-flags", "", "extra javac arguments")
	flags.String("release", "", "javac --release value")
	flags.String("classes-out", "", "class file directory (default <output>/build)")

	return cmd
}

func compile(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	classesOut := cfg.Javac.Output
	if classesOut == "" {
		classesOut = filepath.Join(cfg.Output, "build")
	}

	spinner, _ := pterm.DefaultSpinner.Start("Compiling stubs...")
	err := javac.Run(ctx, javac.Options{
		Path:      cfg.Javac.Path,
		Flags:     cfg.Javac.Flags,
		Release:   cfg.Javac.Release,
		Output:    classesOut,
		Classpath: cfg.ClasspathEntries(),
		Manifest:  cfg.ManifestPath(),
	}, out)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Compilation failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Success("Compiled stubs into " + classesOut)
	}
	return nil
}
