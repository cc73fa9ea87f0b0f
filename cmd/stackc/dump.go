package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stackc/internal/ir"
	"stackc/internal/irfile"
	"stackc/internal/treefile"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <file>",
	Short: "Print an IR container as text, or re-encode a tree file",
	Long: `Dump prints every unit of an .ir container in the text form used by
"stackc lower". Given a tree file it re-encodes the tree, to stdout as YAML or
to -o in the format chosen by its extension`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringP("output", "o", "", "output file for a re-encoded tree")
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	if filepath.Ext(path) == ".ir" {
		f, err := irfile.Read(path)
		if err != nil {
			return err
		}
		for _, u := range f.Units {
			fmt.Fprintf(out, "; %s (%d instructions)\n", u.Name, u.Count)
			if err := ir.Fprint(out, u.Code); err != nil {
				return err
			}
		}
		return nil
	}

	prog, err := treefile.Load(path, 1)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format := treefile.FormatYAML
	if output != "" {
		if format, err = treefile.FormatFor(output); err != nil {
			return err
		}
	}
	data, err := treefile.Encode(prog, format)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}
