package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackc/internal/config"
	"stackc/internal/driver"
	"stackc/internal/trace"
)

// settings is the merged view of stackc.toml and the command line.
type settings struct {
	cfg            config.Config
	color          bool
	width          int
	timings        bool
	jobs           int
	maxDiagnostics int
}

var (
	current  *settings
	tracer   trace.Tracer = trace.Nop
	cleanups []func()
)

// setup loads the config, applies flag overrides and installs the tracer on
// the command context.
func setup(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	var cfg config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return err
	}
	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
		useColor = false
	case "auto":
		useColor = isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected: auto|on|off)", colorFlag)
	}

	s := &settings{cfg: cfg, color: useColor, width: terminalWidth(os.Stderr)}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return err
	}
	s.jobs = cfg.Lower.Jobs
	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return err
		}
	}

	for flag, dst := range map[string]*string{
		"trace":       &s.cfg.Trace.Output,
		"trace-level": &s.cfg.Trace.Level,
		"trace-mode":  &s.cfg.Trace.Mode,
	} {
		if !flags.Changed(flag) {
			continue
		}
		if *dst, err = flags.GetString(flag); err != nil {
			return err
		}
	}
	// An explicit output file implies at least phase-level tracing.
	if flags.Changed("trace") && !flags.Changed("trace-level") && s.cfg.Trace.Level == "off" {
		s.cfg.Trace.Level = "phase"
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	current = s
	if err := setupProfiling(cmd); err != nil {
		return err
	}
	return setupTracing(cmd, s.cfg)
}

// teardown runs the registered cleanups in reverse order, once.
func teardown() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// driverOptions builds the pipeline options for the current invocation.
func (s *settings) driverOptions() (driver.Options, error) {
	lopts, err := s.cfg.LowerOptions()
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{
		Lower:          lopts,
		Validate:       s.cfg.Lower.Validate,
		Jobs:           s.jobs,
		MaxDiagnostics: s.maxDiagnostics,
	}, nil
}
