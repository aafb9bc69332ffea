package lower

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tessel/internal/diag"
	"tessel/internal/ir"
	"tessel/internal/target"
	"tessel/internal/tgraph"
)

func TestPartitionFusesScratchChainOnGPU(t *testing.T) {
	g := tgraph.New()
	x := placeholder(g, "X")
	a := compute(g, "A", ir.MemLocal, x)
	b := compute(g, "B", ir.MemLocal, a)
	compute(g, "C", ir.MemHeap, b)

	bodies, err := Partition(context.Background(), "k", g, nil, target.NVGPU())
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Equal(t, []string{"A", "B", "C"}, storedNames(bodies[0]))
}

func TestPartitionFlushesAfterGlobalWrite(t *testing.T) {
	g := tgraph.New()
	x := placeholder(g, "X")
	a := compute(g, "A", ir.MemLocal, x)
	b := compute(g, "B", ir.MemHeap, a)
	compute(g, "C", ir.MemLocal, b)

	bodies, err := Partition(context.Background(), "k", g, nil, target.NVGPU())
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, []string{"A", "B"}, storedNames(bodies[0]))
	assert.Equal(t, []string{"C"}, storedNames(bodies[1]))
}

func TestPartitionFusesLocalAliasChain(t *testing.T) {
	g := tgraph.New()
	x := placeholder(g, "X")
	a := compute(g, "A", ir.MemLocal, x)
	alias := &ir.Tensor{
		Name: "A2", Kind: ir.TensorCompute, DType: ir.TypeFloat32, Shape: []int{4}, Axes: []string{"i"},
		Body:   &ir.Load{Tensor: a, Indices: []ir.Expr{&ir.VarRef{Name: "i"}}},
		Memory: ir.MemLocal, ShareWith: "A",
	}
	g.MustAdd(alias)
	compute(g, "C", ir.MemHeap, alias)

	bodies, err := Partition(context.Background(), "k", g, nil, target.NVGPU())
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Equal(t, []string{"A", "A2", "C"}, storedNames(bodies[0]))
}

func TestPartitionNeverSplitsOnCPU(t *testing.T) {
	for _, tgt := range []target.Target{target.Host(), target.Default(), {Arch: target.ARMArch{}}} {
		g := tgraph.New()
		x := placeholder(g, "X")
		a := compute(g, "A", ir.MemHeap, x)
		b := compute(g, "B", ir.MemHeap, a)
		compute(g, "C", ir.MemLocal, b)

		bodies, err := Partition(context.Background(), "k", g, nil, tgt)
		require.NoError(t, err)
		require.Len(t, bodies, 1, "target %s", tgt)
		assert.Equal(t, []string{"A", "B", "C"}, storedNames(bodies[0]))
	}
}

func TestPartitionHygonTargetsSplitLikeNVGPU(t *testing.T) {
	for _, arch := range []target.Arch{target.HygonHIPArch{}, target.HygonSYCLArch{}} {
		g := tgraph.New()
		x := placeholder(g, "X")
		a := compute(g, "A", ir.MemHeap, x)
		compute(g, "B", ir.MemShared, a)

		bodies, err := Partition(context.Background(), "k", g, nil, target.Target{Arch: arch, Bits: 64})
		require.NoError(t, err)
		require.Len(t, bodies, 2, "arch %s", arch)
	}
}

func TestPartitionOtherMemoryFlushes(t *testing.T) {
	g := tgraph.New()
	x := placeholder(g, "X")
	a := compute(g, "A", ir.MemOther, x)
	compute(g, "B", ir.MemLocal, a)

	bodies, err := Partition(context.Background(), "k", g, nil, target.NVGPU())
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, []string{"A"}, storedNames(bodies[0]))
}

func TestPartitionPlaceholdersOnly(t *testing.T) {
	g := tgraph.New()
	placeholder(g, "X")
	placeholder(g, "Y")

	bodies, err := Partition(context.Background(), "k", g, nil, target.NVGPU())
	require.NoError(t, err)
	assert.Empty(t, bodies)
}

func TestPartitionUsesCustomBuilder(t *testing.T) {
	g := tgraph.New()
	x := placeholder(g, "X")
	a := compute(g, "A", ir.MemHeap, x)

	var built []string
	build := func(t *ir.Tensor, _ Graph) ir.Stmt {
		built = append(built, t.Name)
		return &ir.Store{Tensor: t, Value: &ir.Const{Value: 0}}
	}
	bodies, err := Partition(context.Background(), "k", g, build, target.Host())
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Equal(t, []string{"A"}, built)
	assert.Same(t, a, ir.Stores(bodies[0])[0].Tensor)
}

func TestPartitionRejectsCycles(t *testing.T) {
	g := tgraph.New()
	a := compute(g, "A", ir.MemHeap)
	b := compute(g, "B", ir.MemHeap, a)
	a.Body = &ir.Load{Tensor: b, Indices: []ir.Expr{&ir.VarRef{Name: "i"}}}

	_, err := Partition(context.Background(), "k", g, nil, target.Host())
	var v *InternalInvariantViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, diag.LowerCyclicGroup, v.Code)
	var cyc *tgraph.CycleError
	assert.True(t, errors.As(err, &cyc))
}
