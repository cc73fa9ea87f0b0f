// Package config loads stackc.toml, the optional project file that sets
// defaults for lowering, tracing and output. Command-line flags override
// anything read here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"stackc/internal/lower"
	"stackc/internal/trace"
)

// FileName is the project file searched for by Find.
const FileName = "stackc.toml"

// Output formats.
const (
	OutputText = "text"
	OutputIR   = "ir"
)

type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path   string       `toml:"-"`
	Lower  LowerConfig  `toml:"lower"`
	Trace  TraceConfig  `toml:"trace"`
	Output OutputConfig `toml:"output"`
}

type LowerConfig struct {
	ParamScope string `toml:"param_scope"`
	Validate   bool   `toml:"validate"`
	Jobs       int    `toml:"jobs"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

// Default returns the configuration used when no stackc.toml exists.
func Default() Config {
	return Config{
		Lower:  LowerConfig{ParamScope: lower.ParamScopeFunction.String(), Validate: true},
		Trace:  TraceConfig{Level: "off", Mode: "stream", Format: "text", Output: "-"},
		Output: OutputConfig{Format: OutputText},
	}
}

// Find walks up from startDir looking for stackc.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest stackc.toml above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path over the defaults. Unknown keys and invalid values are
// errors.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("output", "path") && strings.TrimSpace(cfg.Output.Path) == "" {
		return Config{}, fmt.Errorf("%s: [output].path must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every enumerated value and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := lower.ParseParamScope(c.Lower.ParamScope); err != nil {
		errs = append(errs, fmt.Errorf("[lower].param_scope: %w", err))
	}
	if c.Lower.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[lower].jobs: must not be negative, got %d", c.Lower.Jobs))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, fmt.Errorf("[trace].level: %w", err))
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, fmt.Errorf("[trace].mode: %w", err))
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, fmt.Errorf("[trace].format: %w", err))
	}
	switch c.Output.Format {
	case OutputText, OutputIR:
	default:
		errs = append(errs, fmt.Errorf("[output].format: %q (expected: text|ir)", c.Output.Format))
	}
	return errors.Join(errs...)
}

// LowerOptions converts the [lower] section.
func (c *Config) LowerOptions() (lower.Options, error) {
	scope, err := lower.ParseParamScope(c.Lower.ParamScope)
	if err != nil {
		return lower.Options{}, err
	}
	return lower.Options{ParamScope: scope}, nil
}

// Tracing converts the [trace] section.
func (c *Config) Tracing() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output}, nil
}
