package java

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"

	"github.com/dmssargent/StubJars/classfile"
)

// LoadStats counts what one LoadPath call did.
type LoadStats struct {
	Classes  int
	Failures int
}

func (s *LoadStats) add(o LoadStats) {
	s.Classes += o.Classes
	s.Failures += o.Failures
}

// LoadPath adds every class found at path to the catalog. Path may be
// a jar or zip archive (nested jars are read too), a directory tree of
// class files, or a single class file. Classes that fail to parse are
// logged and skipped. Reference classes are resolvable but not emitted.
func LoadPath(cat *Catalog, path string, reference bool) (LoadStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LoadStats{}, errors.Wrapf(err, "stat %s", path)
	}
	l := &loader{catalog: cat, reference: reference}

	if info.IsDir() {
		return l.directory(path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return LoadStats{}, errors.Wrapf(err, "detect type of %s", path)
	}
	switch {
	case isZip(mtype):
		r, err := zip.OpenReader(path)
		if err != nil {
			return LoadStats{}, errors.Wrapf(err, "open archive %s", path)
		}
		defer r.Close()
		return l.archive(path, &r.Reader)
	case filepath.Ext(path) == ".class":
		data, err := os.ReadFile(path)
		if err != nil {
			return LoadStats{}, errors.Wrapf(err, "read %s", path)
		}
		return l.class(path, data), nil
	}
	return LoadStats{}, errors.WithHint(
		errors.Newf("unsupported input %s (%s)", path, mtype.String()),
		"inputs must be jar or zip archives, directories, or .class files")
}

func isZip(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}

type loader struct {
	catalog   *Catalog
	reference bool
}

func (l *loader) directory(root string) (LoadStats, error) {
	var stats LoadStats
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warningf("walk %s: %v", p, err)
			return nil
		}
		if d.IsDir() || !isClassEntry(p) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warningf("read %s: %v", p, err)
			stats.Failures++
			return nil
		}
		stats.add(l.class(p, data))
		return nil
	})
	return stats, errors.Wrapf(err, "walk %s", root)
}

func (l *loader) archive(name string, r *zip.Reader) (LoadStats, error) {
	var stats LoadStats
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch {
		case strings.HasPrefix(f.Name, "META-INF/versions/"):
			// Multi-release overlays repeat classes already loaded.
			continue
		case isClassEntry(f.Name):
			data, err := readZipEntry(f)
			if err != nil {
				log.Warningf("%s!%s: %v", name, f.Name, err)
				stats.Failures++
				continue
			}
			stats.add(l.class(name+"!"+f.Name, data))
		case filepath.Ext(f.Name) == ".jar":
			data, err := readZipEntry(f)
			if err != nil {
				log.Warningf("%s!%s: %v", name, f.Name, err)
				stats.Failures++
				continue
			}
			nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				log.Warningf("%s!%s: %v", name, f.Name, err)
				stats.Failures++
				continue
			}
			s, err := l.archive(name+"!"+f.Name, nested)
			if err != nil {
				return stats, err
			}
			stats.add(s)
		}
	}
	log.Infof("loaded %d classes from %s (%d failures)", stats.Classes, name, stats.Failures)
	return stats, nil
}

func (l *loader) class(origin string, data []byte) LoadStats {
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		log.Warningf("%s: %v", origin, err)
		return LoadStats{Failures: 1}
	}
	if cf.IsModule() {
		return LoadStats{}
	}
	desc, err := DescriptorFromClassFile(cf)
	if err != nil {
		log.Warningf("%s: %v", origin, err)
		return LoadStats{Failures: 1}
	}
	desc.Reference = l.reference
	if err := l.catalog.Add(desc); err != nil {
		log.Debugf("%s: %v, keeping the first definition", origin, err)
		return LoadStats{}
	}
	return LoadStats{Classes: 1}
}

func isClassEntry(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".class") &&
		base != "module-info.class" && base != "package-info.class"
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
