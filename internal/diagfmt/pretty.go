package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"stackc/internal/diag"
)

// Pretty prints diagnostics in a human-readable form, one per line:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by indented notes when opts.ShowNotes is set. The bag is expected
// to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(d, opts.PathMode)
		head := fmt.Sprintf("%s: %s %s: ", loc, d.Severity, d.Code.ID())
		msg := d.Message
		if opts.Width > 0 {
			msg = fit(msg, opts.Width-runewidth.StringWidth(head))
		}
		line := p.path.Sprint(loc) + ": " + p.severity(d.Severity).Sprint(d.Severity.String()) + " " +
			p.code.Sprint(d.Code.ID()) + ": " + msg
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			note := n.Msg
			if opts.Width > 0 {
				note = fit(note, opts.Width-len("  note: "))
			}
			if _, err := fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), note); err != nil {
				return err
			}
		}
	}
	return nil
}

type palette struct {
	path, code, note *color.Color
	err, warn, info  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path: color.New(color.Bold),
		code: color.New(color.FgMagenta),
		note: color.New(color.FgCyan),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.path, p.code, p.note, p.err, p.warn, p.info} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

func location(d diag.Diagnostic, mode PathMode) string {
	path := formatPath(d.Path, mode)
	if path == "" {
		path = "<input>"
	}
	if d.Primary.Known() {
		return fmt.Sprintf("%s:%d:%d", path, d.Primary.Line, d.Primary.Col)
	}
	return path
}

func formatPath(path string, mode PathMode) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

// fit truncates s to width terminal cells.
func fit(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
