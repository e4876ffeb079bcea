package main

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/dmssargent/StubJars/config"
	"github.com/dmssargent/StubJars/java"
)

// loadCatalog reads the target archives, then the reference classpath.
// A class present in both keeps its target descriptor.
func loadCatalog(cfg *config.Config, archives []string) (*java.Catalog, error) {
	cat := java.NewCatalog()
	var total java.LoadStats
	for _, path := range archives {
		stats, err := java.LoadPath(cat, path, false)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
		log.Infof("%s: %d classes, %d failures", path, stats.Classes, stats.Failures)
		total.Classes += stats.Classes
		total.Failures += stats.Failures
	}
	for _, path := range cfg.ClasspathEntries() {
		stats, err := java.LoadPath(cat, path, true)
		if err != nil {
			return nil, errors.Wrapf(err, "load classpath entry %s", path)
		}
		log.Infof("%s (reference): %d classes", path, stats.Classes)
	}
	cat.AddBuiltins()

	if total.Failures > 0 {
		pterm.Warning.Printf("%d class files could not be read\n", total.Failures)
	}
	return cat, nil
}

// className accepts binary names as well as internal names and class
// file paths: a/b/C$D.class becomes a.b.C$D.
func className(arg string) string {
	arg = strings.TrimSuffix(arg, ".class")
	return strings.ReplaceAll(arg, "/", ".")
}

func printError(err error) {
	pterm.Error.Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.Println(hint)
	}
}
