package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackc/internal/config"
	"stackc/internal/lower"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <tree files...>",
	Short: "Lower typed tree files to IR",
	Long: `Lower decodes each tree file (.yaml or .msgpack) as an independent unit,
lowers the units in parallel and writes the IR as text or as a binary container`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().StringP("output", "o", "", "output file (default: stdout for text)")
	lowerCmd.Flags().String("format", "", "output format (text|ir)")
	lowerCmd.Flags().String("param-scope", "", "where parameters are bound (function|caller)")
	lowerCmd.Flags().Bool("no-validate", false, "skip structural validation of the lowered code")
	lowerCmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|json)")
}

func runLower(cmd *cobra.Command, args []string) error {
	opts, err := current.driverOptions()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("param-scope") {
		v, _ := cmd.Flags().GetString("param-scope")
		if opts.Lower.ParamScope, err = lower.ParseParamScope(v); err != nil {
			return err
		}
	}
	if noValidate, _ := cmd.Flags().GetBool("no-validate"); noValidate {
		opts.Validate = false
	}
	diagFormat, err := cmd.Flags().GetString("diag-format")
	if err != nil {
		return err
	}

	format := current.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	output := current.cfg.Output.Path
	if cmd.Flags().Changed("output") {
		output, _ = cmd.Flags().GetString("output")
	}
	switch format {
	case config.OutputText:
	case config.OutputIR:
		if output == "" {
			return fmt.Errorf("--format ir needs an output file (-o)")
		}
	default:
		return fmt.Errorf("unsupported format %q (must be text or ir)", format)
	}

	res, err := driverRun(cmd, args, opts)
	if err != nil {
		return err
	}

	switch {
	case format == config.OutputIR:
		if err := res.WriteIR(cmd.Context(), output); err != nil {
			return err
		}
	case output != "":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		w := bufio.NewWriter(f)
		if err := res.Dump(w); err != nil {
			f.Close()
			return err
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	default:
		if err := res.Dump(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	printTimings(cmd.ErrOrStderr(), res.Timer)
	return report(res.Bag, diagFormat)
}
