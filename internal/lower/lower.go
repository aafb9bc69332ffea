// Package lower turns a tensor group into buffer-backed functions ready for
// code generation.
package lower

import (
	"context"
	"errors"
	"strconv"

	"tessel/internal/ir"
	"tessel/internal/target"
	"tessel/internal/trace"
	"tessel/internal/uniq"
)

// Input is one lowering request.
type Input struct {
	// Name is the base name of the generated functions.
	Name string
	// TensorArgs are the declared tensor parameters. Their Buffer fields are
	// patched in place.
	TensorArgs []*ir.Tensor
	ScalarArgs []ir.Var
	Group      Graph
	// TempTensorArgs are tensors whose buffers are internal to the functions.
	TempTensorArgs []*ir.Tensor
	Target         target.Target
	// Build defaults to DefaultBuild.
	Build BuildFunc
}

// Lower runs partitioning, buffer binding and argument inference and returns
// one function per partitioned body, in generation order: Name, Name_1, ...
//
// Lower mutates in.TensorArgs and the group's tensors; callers must not run
// it concurrently with other users of the same group.
func Lower(ctx context.Context, in Input) ([]*ir.LoweredFunc, error) {
	if in.Group == nil {
		return nil, errors.New("lower: nil tensor group")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "lower:"+in.Name, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	bodies, err := Partition(ctx, in.Name, in.Group, in.Build, in.Target)
	if err != nil {
		span.End("failed")
		return nil, err
	}

	arena := in.Group.Buffers()
	result := make([]*ir.LoweredFunc, 0, len(bodies))
	for i, body := range bodies {
		name := in.Name
		if i > 0 {
			name += "_" + strconv.Itoa(i)
		}
		fnSpan := trace.Begin(tracer, trace.ScopeFunc, "func:"+name, span.ID())

		temps, err := bindBuffers(in.Name, in.Group, in.TensorArgs, in.TempTensorArgs, body)
		if err != nil {
			fnSpan.End("failed")
			span.End("failed")
			return nil, err
		}
		args, err := buildArgs(in.Name, arena, in.ScalarArgs, in.TensorArgs, body)
		if err != nil {
			fnSpan.End("failed")
			span.End("failed")
			return nil, err
		}

		fn := &ir.LoweredFunc{
			Name:        name,
			Args:        args,
			Body:        ir.NewBlock(&ir.Schedule{Name: uniq.Name("root"), Body: body}),
			TempBuffers: temps,
		}
		result = append(result, fn)
		fnSpan.
			WithExtra("args", strconv.Itoa(len(args))).
			WithExtra("temps", strconv.Itoa(len(temps))).
			End("")
	}

	span.WithExtra("funcs", strconv.Itoa(len(result))).End(in.Target.String())
	return result, nil
}
