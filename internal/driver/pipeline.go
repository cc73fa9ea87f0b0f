package driver

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"stackc/internal/diag"
	"stackc/internal/ir"
	"stackc/internal/irfile"
	"stackc/internal/observ"
	"stackc/internal/source"
	"stackc/internal/trace"
)

// Result is the outcome of Run.
type Result struct {
	Units []UnitResult
	// Bag holds every diagnostic of the run, sorted by path and position.
	Bag   *diag.Bag
	Timer *observ.Timer

	observer PhaseObserver
}

// HasErrors reports whether any unit or input failed.
func (r *Result) HasErrors() bool {
	return r.Bag.HasErrors()
}

// phase ties one pipeline pass to the timer, the tracer and the observer.
type phase struct {
	name    string
	idx     int
	span    *trace.Span
	started time.Time
	timer   *observ.Timer
	obs     PhaseObserver
}

func beginPhase(ctx context.Context, timer *observ.Timer, obs PhaseObserver, name string) *phase {
	obs.start(name)
	return &phase{
		name:    name,
		idx:     timer.Begin(name),
		span:    trace.Begin(trace.FromContext(ctx), trace.ScopePass, name, trace.CurrentSpan(ctx)),
		started: time.Now(),
		timer:   timer,
		obs:     obs,
	}
}

func (p *phase) end(note string) {
	p.span.End(note)
	p.timer.End(p.idx, note)
	p.obs.end(p.name, time.Since(p.started))
}

// Run decodes paths, lowers every unit that decoded and, when
// opts.Validate is set, validates the lowered code. The returned error is
// non-nil only when ctx was cancelled; unit failures are diagnostics.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "run", trace.CurrentSpan(ctx))
	defer root.End("")
	ctx = trace.WithSpan(ctx, root.ID())

	res := &Result{
		Bag:      diag.NewBag(opts.maxDiagnostics()),
		Timer:    observ.NewTimer(),
		observer: opts.Observer,
	}

	p := beginPhase(ctx, res.Timer, opts.Observer, "decode")
	units, loadBag := LoadUnits(paths, opts.maxDiagnostics())
	res.Bag.Merge(loadBag)
	p.end(fmt.Sprintf("%d/%d files", len(units), len(paths)))

	p = beginPhase(ctx, res.Timer, opts.Observer, "lower")
	results, err := LowerUnits(ctx, units, opts)
	res.Units = results
	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
		res.Bag.Merge(results[i].Bag)
	}
	p.end(fmt.Sprintf("%d units, %d failed", len(units), failed))
	if err != nil {
		return res, err
	}

	if opts.Validate {
		p = beginPhase(ctx, res.Timer, opts.Observer, "validate")
		for i := range res.Units {
			u := &res.Units[i]
			if u.Code == nil {
				continue
			}
			if verr := ir.Validate(u.Code); verr != nil {
				d := diag.Errorf(diag.IRInvalid, u.Path, source.Span{}, "lowered code is invalid")
				for _, line := range strings.Split(verr.Error(), "\n") {
					d.Notes = append(d.Notes, diag.Note{Msg: line})
				}
				u.Bag.Add(d)
				res.Bag.Add(d)
			}
		}
		p.end("")
	}

	res.Bag.Sort()
	return res, nil
}

// WriteIR encodes every successfully lowered unit into one IR container at
// path.
func (r *Result) WriteIR(ctx context.Context, path string) error {
	p := beginPhase(ctx, r.Timer, r.observer, "encode")
	units := make([]irfile.Unit, 0, len(r.Units))
	for i := range r.Units {
		u := &r.Units[i]
		if u.Failed() || u.Code == nil {
			continue
		}
		fu, err := irfile.NewUnit(u.Path, u.Code)
		if err != nil {
			p.end("failed")
			return err
		}
		units = append(units, fu)
	}
	if err := irfile.Write(path, units); err != nil {
		p.end("failed")
		return err
	}
	p.end(fmt.Sprintf("%d units", len(units)))
	return nil
}

// Dump writes the text form of every successfully lowered unit, each
// preceded by a "; <path>" header line.
func (r *Result) Dump(w io.Writer) error {
	for i := range r.Units {
		u := &r.Units[i]
		if u.Code == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "; %s\n", u.Path); err != nil {
			return err
		}
		if err := ir.Fprint(w, u.Code); err != nil {
			return err
		}
	}
	return nil
}
