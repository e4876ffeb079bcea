// Package javac compiles generated stubs by handing the manifest to
// javac as an @-file.
package javac

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("stubjars.javac")

type Options struct {
	// Path is the javac executable. A bare "javac" is looked up in
	// $JAVA_HOME/bin first.
	Path string
	// Flags are extra arguments in shell syntax, placed before the
	// manifest.
	Flags     string
	Release   string
	Output    string
	Classpath []string
	Manifest  string
}

// Executable resolves the javac binary to run.
func Executable(path string) string {
	if path == "" {
		path = "javac"
	}
	if path != "javac" {
		return path
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", "javac")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

// Args builds the javac argument list, without the executable.
func Args(opts Options) ([]string, error) {
	if opts.Manifest == "" {
		return nil, errors.New("no manifest to compile")
	}
	var args []string
	if len(opts.Classpath) > 0 {
		args = append(args, "-cp", strings.Join(opts.Classpath, string(os.PathListSeparator)))
	}
	if opts.Release != "" {
		args = append(args, "--release", opts.Release)
	}
	if opts.Output != "" {
		args = append(args, "-d", opts.Output)
	}
	if opts.Flags != "" {
		extra, err := shellquote.Split(opts.Flags)
		if err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "javac flags %q", opts.Flags),
				"quote flags the way a POSIX shell would")
		}
		args = append(args, extra...)
	}
	return append(args, "@"+opts.Manifest), nil
}

// Command prepares the javac process. Output is left unset.
func Command(ctx context.Context, opts Options) (*exec.Cmd, error) {
	args, err := Args(opts)
	if err != nil {
		return nil, err
	}
	if opts.Output != "" {
		if err := os.MkdirAll(opts.Output, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", opts.Output)
		}
	}
	return exec.CommandContext(ctx, Executable(opts.Path), args...), nil
}

// Run compiles the manifest. Compiler diagnostics go to out; on
// failure they are also logged line by line.
func Run(ctx context.Context, opts Options, out io.Writer) error {
	cmd, err := Command(ctx, opts)
	if err != nil {
		return err
	}
	log.Infof("running %s", shellquote.Join(cmd.Args...))
	if out == nil {
		out = io.Discard
	}

	var diagnostics bytes.Buffer
	w := io.MultiWriter(out, &diagnostics)
	cmd.Stdout, cmd.Stderr = w, w
	if err := cmd.Run(); err != nil {
		scanner := bufio.NewScanner(&diagnostics)
		for scanner.Scan() {
			log.Errorf("%s", scanner.Text())
		}
		return errors.Wrapf(err, "javac %s", opts.Manifest)
	}
	return nil
}
