package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stackc/internal/diag"
	"stackc/internal/driver"
	"stackc/internal/ir"
	"stackc/internal/irfile"
	"stackc/internal/trace"
	"stackc/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <tree file | .ir container>",
	Short: "Lower a program and execute it on the reference interpreter",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Int("max-steps", 0, "abort after this many instructions (0 = unlimited)")
}

// driverRun runs the pipeline with the command's context.
func driverRun(cmd *cobra.Command, paths []string, opts driver.Options) (*driver.Result, error) {
	res, err := driver.Run(cmd.Context(), paths, opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline interrupted: %w", err)
	}
	return res, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}
	path := args[0]

	type program struct {
		name string
		code []ir.Instr
	}
	var progs []program
	bag := diag.NewBag(current.maxDiagnostics)
	var res *driver.Result

	if filepath.Ext(path) == ".ir" {
		f, err := irfile.Read(path)
		if err != nil {
			return err
		}
		for _, u := range f.Units {
			progs = append(progs, program{name: u.Name, code: u.Code})
		}
	} else {
		opts, err := current.driverOptions()
		if err != nil {
			return err
		}
		opts.Validate = true
		if res, err = driverRun(cmd, args, opts); err != nil {
			return err
		}
		bag.Merge(res.Bag)
		if res.HasErrors() {
			printTimings(cmd.ErrOrStderr(), res.Timer)
			return report(bag, "pretty")
		}
		for _, u := range res.Units {
			progs = append(progs, program{name: u.Path, code: u.Code})
		}
	}

	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopePass, "run", trace.CurrentSpan(cmd.Context()))
	var idx int
	if res != nil {
		idx = res.Timer.Begin("run")
	}
	for _, p := range progs {
		m := vm.New(vm.Options{Stdout: cmd.OutOrStdout(), MaxSteps: maxSteps})
		if err := m.Run(p.code); err != nil {
			bag.Add(driver.Diagnostic(p.name, err))
			break
		}
	}
	span.End("")
	if res != nil {
		res.Timer.End(idx, "")
		printTimings(cmd.ErrOrStderr(), res.Timer)
	}
	return report(bag, "pretty")
}
