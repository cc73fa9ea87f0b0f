// Package driver runs the pipeline over compilation units: decode tree
// files, lower each unit with a fresh environment, validate the output and
// collect failures as diagnostics.
package driver

import (
	"context"
	"errors"
	"io/fs"

	"fortio.org/safecast"

	"stackc/internal/ast"
	"stackc/internal/diag"
	"stackc/internal/ir"
	"stackc/internal/lower"
	"stackc/internal/source"
	"stackc/internal/trace"
	"stackc/internal/treefile"
)

// Unit is one independently lowered program.
type Unit struct {
	Path  string
	File  source.FileID
	Nodes []*ast.Node
}

// UnitResult holds the outcome of lowering one unit. Code is nil when the
// unit failed; Bag carries the reason.
type UnitResult struct {
	Path string
	Code []ir.Instr
	Bag  *diag.Bag
}

// Failed reports whether the unit produced error diagnostics.
func (r *UnitResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// Options configure LowerUnits and Run.
type Options struct {
	Lower          lower.Options
	Validate       bool
	Jobs           int
	MaxDiagnostics int
	Observer       PhaseObserver
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 64
	}
	return o.MaxDiagnostics
}

// LoadUnits decodes tree files in order. File IDs are assigned from 1 by
// position. Files that cannot be read or decoded are reported in the
// returned bag and skipped.
func LoadUnits(paths []string, maxDiagnostics int) ([]Unit, *diag.Bag) {
	bag := diag.NewBag(maxDiagnostics)
	units := make([]Unit, 0, len(paths))
	for i, path := range paths {
		id, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			bag.Add(diag.Errorf(diag.IOLoadFileError, path, source.Span{}, "too many input files"))
			break
		}
		prog, err := treefile.Load(path, source.FileID(id))
		if err != nil {
			bag.Add(loadDiagnostic(path, err))
			continue
		}
		units = append(units, Unit{Path: path, File: source.FileID(id), Nodes: prog.Nodes})
	}
	return units, bag
}

func loadDiagnostic(path string, err error) diag.Diagnostic {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return diag.Errorf(diag.IOLoadFileError, path, source.Span{}, "failed to load file: %v", err)
	}
	return diag.Errorf(diag.IODecodeError, path, source.Span{}, "%v", err)
}

// LowerUnit lowers u with a fresh environment. The tracer is taken from
// ctx; lowering events are parented to a per-unit span.
func LowerUnit(ctx context.Context, u Unit, opts Options) UnitResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit", trace.CurrentSpan(ctx))
	span.WithExtra("path", u.Path)

	res := UnitResult{Path: u.Path, Bag: diag.NewBag(opts.maxDiagnostics())}

	lopts := opts.Lower
	lopts.Tracer = tracer
	lopts.ParentSpan = span.ID()
	code, err := lower.New(nil, lopts).LowerAll(u.Nodes)
	if err != nil {
		res.Bag.Add(Diagnostic(u.Path, err))
		span.End("failed")
		return res
	}
	res.Code = code
	span.End("")
	return res
}
