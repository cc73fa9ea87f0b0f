package main

import (
	"fmt"
	"io"
	"os"

	"stackc/internal/diag"
	"stackc/internal/diagfmt"
	"stackc/internal/observ"
)

// report prints bag to stderr in the requested format and returns
// errReported when it holds errors.
func report(bag *diag.Bag, format string) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	var err error
	switch format {
	case "json":
		err = diagfmt.JSON(os.Stderr, bag, diagfmt.JSONOpts{IncludeNotes: true})
	default:
		err = diagfmt.Pretty(os.Stderr, bag, diagfmt.PrettyOpts{
			Color:     current.color,
			Width:     current.width,
			ShowNotes: true,
		})
	}
	if err != nil {
		return err
	}
	if bag.HasErrors() {
		dumpTraceRing()
		return errReported
	}
	return nil
}

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || !current.timings {
		return
	}
	if _, err := fmt.Fprint(out, timer.Summary()); err != nil {
		panic(err)
	}
}
