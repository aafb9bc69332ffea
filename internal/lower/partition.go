package lower

import (
	"context"
	"strconv"

	"tessel/internal/diag"
	"tessel/internal/ir"
	"tessel/internal/target"
	"tessel/internal/trace"
)

// partitionState folds the statement stream into closed function bodies.
type partitionState struct {
	closed []*ir.Block
	open   []ir.Stmt
}

func (s partitionState) step(stmt ir.Stmt, flush bool) partitionState {
	s.open = append(s.open, stmt)
	if flush {
		s.closed = append(s.closed, ir.NewBlock(s.open...))
		s.open = nil
	}
	return s
}

func (s partitionState) finish() []*ir.Block {
	if len(s.open) > 0 {
		s.closed = append(s.closed, ir.NewBlock(s.open...))
	}
	return s.closed
}

// flushAfter decides whether the body closes after computing t. Targets with
// an accelerator memory hierarchy keep scratch-only producers fused with the
// consumer that finally writes global memory; other targets never split.
func flushAfter(tgt target.Target, arena *ir.Arena, t *ir.Tensor) bool {
	if !tgt.HasLocalMemory() {
		return false
	}
	buf := arena.Get(t.Buffer)
	return buf == nil || !buf.Memory.IsAcceleratorScratch()
}

// Partition splits the group's topological order into function bodies.
// Placeholders and tensors without an expression produce no statements.
func Partition(ctx context.Context, fn string, g Graph, build BuildFunc, tgt target.Target) ([]*ir.Block, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "partition", trace.CurrentSpan(ctx).SpanID)

	ordered, err := g.TopoOrder()
	if err != nil {
		span.End("cyclic")
		v := violation(diag.LowerCyclicGroup, fn, "", "tensor group cannot be ordered")
		v.Err = err
		return nil, v
	}
	if build == nil {
		build = DefaultBuild
	}

	arena := g.Buffers()
	var state partitionState
	for _, t := range ordered {
		if t.IsPlaceholder() || !t.HasExpression() {
			continue
		}
		stmt := build(t, g)
		if stmt == nil {
			continue
		}
		flush := flushAfter(tgt, arena, t)
		if tracer.Enabled() {
			trace.Point(tracer, trace.ScopeNode, "tensor:"+t.Name, span.ID(), "", map[string]string{
				"flush": strconv.FormatBool(flush),
			})
		}
		state = state.step(stmt, flush)
	}

	bodies := state.finish()
	span.WithExtra("bodies", strconv.Itoa(len(bodies))).End(tgt.String())
	return bodies, nil
}
