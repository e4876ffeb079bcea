// Package config loads stubjars settings from defaults, an optional
// config file, STUBJARS_ environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("stubjars.config")

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvPrefix   = "STUBJARS"
	DefaultName = "stubjars"
)

var validate = validator.New()

// Config holds the generate and compile settings. Classpath is a path
// list of reference archives.
type Config struct {
	Output    string      `mapstructure:"output" validate:"required"`
	Workers   int         `mapstructure:"workers" validate:"min=1,max=1024"`
	QueueSize int         `mapstructure:"queue_size" validate:"min=1"`
	Manifest  string      `mapstructure:"manifest"`
	Report    string      `mapstructure:"report"`
	Classpath string      `mapstructure:"classpath"`
	Javac     JavacConfig `mapstructure:"javac"`
}

// JavacConfig configures the compile step. Flags are extra javac
// arguments in shell syntax.
type JavacConfig struct {
	Path    string `mapstructure:"path" validate:"required"`
	Flags   string `mapstructure:"flags"`
	Release string `mapstructure:"release" validate:"omitempty,numeric"`
	Output  string `mapstructure:"output"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"output":      "output",
	"workers":     "workers",
	"queue-size":  "queue_size",
	"manifest":    "manifest",
	"report":      "report",
	"classpath":   "classpath",
	"javac":       "javac.path",
	"javac-flags": "javac.flags",
	"release":     "javac.release",
	"classes-out": "javac.output",
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "stub_src")
	v.SetDefault("workers", 4)
	v.SetDefault("queue_size", 5000)
	v.SetDefault("manifest", "")
	v.SetDefault("report", "")
	v.SetDefault("classpath", "")
	v.SetDefault("javac.path", "javac")
	v.SetDefault("javac.flags", "")
	v.SetDefault("javac.release", "")
	v.SetDefault("javac.output", "")
}

// Load builds a Config. When path is empty, stubjars.{toml,yaml,json}
// in the working directory is used if present. Flags that exist in
// flags are bound; unchanged flags do not override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "read config %s", path),
				"config files may be TOML, YAML or JSON")
		}
	} else {
		v.SetConfigName(DefaultName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Infof("using config %s", used)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithHint(
			errors.Mark(errors.Wrap(err, "invalid configuration"), ErrInvalidConfig),
			"check the config file, STUBJARS_* variables and flags")
	}
	return nil
}

// ManifestPath is the configured manifest, or sources.list in the
// output directory.
func (c *Config) ManifestPath() string {
	if c.Manifest != "" {
		return c.Manifest
	}
	return filepath.Join(c.Output, "sources.list")
}

// ClasspathEntries splits Classpath on the platform list separator.
func (c *Config) ClasspathEntries() []string {
	var out []string
	for _, e := range filepath.SplitList(c.Classpath) {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
