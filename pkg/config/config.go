// Package config loads witls settings from .witls.hcl, .witls.yaml or
// .witls.toml.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config is the top level settings file.
type Config struct {
	Validator *ValidatorBlock `json:"validator,omitempty" hcl:"validator,block" yaml:"validator,omitempty" toml:"validator,omitempty"`
	Watch     *WatchBlock     `json:"watch,omitempty" hcl:"watch,block" yaml:"watch,omitempty" toml:"watch,omitempty"`
	Log       *LogBlock       `json:"log,omitempty" hcl:"log,block" yaml:"log,omitempty" toml:"log,omitempty"`
}

// ValidatorBlock names the external command run over a package directory.
// The directory is appended after Args.
type ValidatorBlock struct {
	Command string   `json:"command" hcl:"command,optional" yaml:"command" toml:"command"`
	Args    []string `json:"args,omitempty" hcl:"args,optional" yaml:"args,omitempty" toml:"args,omitempty"`
}

type WatchBlock struct {
	Enabled  bool     `json:"enabled" hcl:"enabled,optional" yaml:"enabled" toml:"enabled"`
	Patterns []string `json:"patterns,omitempty" hcl:"patterns,optional" yaml:"patterns,omitempty" toml:"patterns,omitempty"`
}

type LogBlock struct {
	Level string `json:"level" hcl:"level,optional" yaml:"level" toml:"level"`
}

// FileNames are the names Discover looks for, in order.
var FileNames = []string{".witls.hcl", ".witls.yaml", ".witls.yml", ".witls.toml"}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Validator: &ValidatorBlock{
			Command: "wasm-tools",
			Args:    []string{"component", "wit"},
		},
		Watch: &WatchBlock{
			Enabled:  true,
			Patterns: []string{"**/*.wit"},
		},
		Log: &LogBlock{
			Level: "info",
		},
	}
}

// Load reads a config file. The format is chosen by extension and anything the
// file leaves out keeps its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Errorf("parsing TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("parsing TOML: unknown field %q", undecoded[0].String())
		}
	default:
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}

		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"config_dir": cty.StringVal(filepath.Dir(path)),
			},
		}

		diags = gohcl.DecodeBody(hclFile.Body, ctx, &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	}

	return cfg.withDefaults(), nil
}

// Discover looks for a config file in dir. It returns the defaults and an
// empty path when there is none.
func Discover(dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// Resolve finds the settings for a run from dir: an explicit path wins, then
// a settings file in dir, then the defaults. The result is validated.
func Resolve(path, dir string) (*Config, error) {
	var cfg *Config
	var err error
	if path != "" {
		cfg, err = Load(path)
	} else {
		cfg, path, err = Discover(dir)
	}
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", path, err)
	}
	if path == "" {
		path = "defaults"
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid settings in %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) withDefaults() *Config {
	def := Default()
	if cfg.Validator == nil {
		cfg.Validator = def.Validator
	} else if cfg.Validator.Command == "" && cfg.Validator.Args == nil {
		cfg.Validator.Command = def.Validator.Command
		cfg.Validator.Args = def.Validator.Args
	}
	if cfg.Watch == nil {
		cfg.Watch = def.Watch
	} else if len(cfg.Watch.Patterns) == 0 {
		cfg.Watch.Patterns = def.Watch.Patterns
	}
	if cfg.Log == nil {
		cfg.Log = def.Log
	} else if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	return cfg
}

// Validate reports every problem in the config at once.
func (cfg *Config) Validate() error {
	var err error

	if cfg.Validator == nil || strings.TrimSpace(cfg.Validator.Command) == "" {
		err = multierr.Append(err, errors.New("validator.command must not be empty"))
	}

	if cfg.Watch != nil {
		for _, pattern := range cfg.Watch.Patterns {
			if !doublestar.ValidatePattern(pattern) {
				err = multierr.Append(err, errors.Errorf("watch.patterns: invalid pattern %q", pattern))
			}
		}
	}

	if cfg.Log != nil {
		if _, perr := zerolog.ParseLevel(cfg.Log.Level); perr != nil {
			err = multierr.Append(err, errors.Errorf("log.level: %w", perr))
		}
	}

	return err
}

// Level is the configured log level, falling back to info.
func (cfg *Config) Level() zerolog.Level {
	if cfg.Log == nil {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Matches reports whether name (relative to a watched directory) matches one
// of the watch patterns.
func (cfg *Config) Matches(name string) bool {
	if cfg.Watch == nil {
		return false
	}
	name = filepath.ToSlash(name)
	for _, pattern := range cfg.Watch.Patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
