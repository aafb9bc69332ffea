// Package driver lowers tensor group files in parallel and writes the
// resulting artifacts.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"tessel/internal/diag"
	"tessel/internal/emit"
	"tessel/internal/groupfile"
	"tessel/internal/ir"
	"tessel/internal/lower"
	"tessel/internal/observ"
	"tessel/internal/target"
	"tessel/internal/trace"
)

type Options struct {
	Target target.Target
	Emit   emit.Format
	// OutDir receives one artifact per group file. Empty means results are
	// only returned.
	OutDir         string
	Jobs           int
	MaxDiagnostics int
}

// FileResult is the outcome of lowering one group file.
type FileResult struct {
	Path   string
	Group  *groupfile.Group
	Funcs  []*ir.LoweredFunc
	Output string
	Bag    *diag.Bag
	Timing observ.Report
}

// Failed reports whether the file produced error diagnostics.
func (r *FileResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// LowerFiles lowers every file concurrently. Results are returned in input
// order. Per-file problems end up in each result's Bag; the returned error is
// reserved for cancellation.
func LowerFiles(ctx context.Context, files []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "lower_files", trace.CurrentSpan(ctx).SpanID)
	defer span.End(strconv.Itoa(len(files)) + " files")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own slot.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = LowerFile(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// LowerFile loads, lowers and optionally writes one group file.
func LowerFile(ctx context.Context, path string, opts Options) (res FileResult) {
	res = FileResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	timer := observ.NewTimer()
	defer func() { res.Timing = timer.Report() }()

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "file:"+path, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	idx := timer.Begin("load")
	group, err := groupfile.Load(path, rep)
	timer.End(idx, "")
	if err != nil {
		diag.ReportError(rep, diag.IOReadFailed, path, err.Error()).Emit()
	}
	if group == nil {
		span.End("load failed")
		return res
	}
	res.Group = group

	idx = timer.Begin("lower")
	funcs, err := lower.Lower(ctx, lower.Input{
		Name:           group.Name,
		TensorArgs:     group.Args,
		ScalarArgs:     group.Scalars,
		Group:          group.Graph,
		TempTensorArgs: group.Temps,
		Target:         opts.Target,
	})
	timer.End(idx, strconv.Itoa(len(funcs))+" funcs")
	if err != nil {
		var iv *lower.InternalInvariantViolation
		if errors.As(err, &iv) {
			res.Bag.Add(iv.Diagnostic().WithNote(path, "group file"))
		} else {
			diag.ReportError(rep, diag.LowerInfo, path, err.Error()).Emit()
		}
		span.End("lower failed")
		return res
	}
	res.Funcs = funcs

	if opts.OutDir != "" {
		idx = timer.Begin("emit")
		res.Output = OutputPath(opts.OutDir, path, opts.Emit)
		err = emit.WriteFile(res.Output, opts.Emit, path, opts.Target, funcs)
		timer.End(idx, opts.Emit.String())
		if err != nil {
			diag.ReportError(rep, diag.IOWriteFailed, res.Output, fmt.Sprintf("failed to write artifact: %v", err)).
				WithNote(path, "group file").
				Emit()
			res.Output = ""
			span.End("emit failed")
			return res
		}
	}

	span.WithExtra("funcs", strconv.Itoa(len(funcs))).End("")
	return res
}
