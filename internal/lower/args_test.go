package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tessel/internal/diag"
	"tessel/internal/ir"
)

type argsFixture struct {
	arena     *ir.Arena
	p, q, pp  *ir.Tensor
	unbound   *ir.Tensor
	declOrder []*ir.Tensor
}

// newArgsFixture declares P, Q, P2 (P2 aliases P's buffer) and an unbound U.
func newArgsFixture(t *testing.T) argsFixture {
	arena := ir.NewArena()
	idP, err := arena.New("_P", ir.MemHeap, ir.TypeFloat32, []int{4})
	require.NoError(t, err)
	idQ, err := arena.New("_Q", ir.MemHeap, ir.TypeFloat32, []int{4})
	require.NoError(t, err)
	f := argsFixture{
		arena:   arena,
		p:       &ir.Tensor{Name: "P", Kind: ir.TensorCompute, Buffer: idP},
		q:       &ir.Tensor{Name: "Q", Kind: ir.TensorCompute, Buffer: idQ},
		pp:      &ir.Tensor{Name: "P2", Kind: ir.TensorCompute, Buffer: idP},
		unbound: &ir.Tensor{Name: "U", Kind: ir.TensorCompute},
	}
	f.declOrder = []*ir.Tensor{f.p, f.unbound, f.q, f.pp}
	return f
}

func writes(ts ...*ir.Tensor) *ir.Block {
	b := ir.NewBlock()
	for _, t := range ts {
		b.Stmts = append(b.Stmts, &ir.Store{Tensor: t, Value: &ir.Const{}})
	}
	return b
}

func TestBuildArgsInputAliasIsSuperseded(t *testing.T) {
	f := newArgsFixture(t)
	args, err := buildArgs("k", f.arena, nil, f.declOrder, writes(f.q))
	require.NoError(t, err)
	// P's input entry moves to P2's position; P2 is itself an input.
	assert.Equal(t, []string{"out _Q", "in _P"}, argSummary(args))
}

func TestBuildArgsSupersedingAliasKeepsItsOwnDirection(t *testing.T) {
	f := newArgsFixture(t)
	args, err := buildArgs("k", f.arena, nil, f.declOrder, writes(f.pp))
	require.NoError(t, err)
	assert.Equal(t, []string{"in _Q", "out _P"}, argSummary(args))
}

func TestBuildArgsOutputIsSticky(t *testing.T) {
	f := newArgsFixture(t)
	args, err := buildArgs("k", f.arena, nil, f.declOrder, writes(f.p))
	require.NoError(t, err)
	assert.Equal(t, []string{"out _P", "in _Q"}, argSummary(args))
}

func TestBuildArgsScalarsComeFirst(t *testing.T) {
	f := newArgsFixture(t)
	scalars := []ir.Var{{Name: "n", Type: ir.TypeInt32}, {Name: "alpha", Type: ir.TypeFloat32}}
	args, err := buildArgs("k", f.arena, scalars, []*ir.Tensor{f.q}, writes(f.q))
	require.NoError(t, err)
	assert.Equal(t, []string{"in n", "in alpha", "out _Q"}, argSummary(args))
	assert.Equal(t, ir.ArgScalar, args[0].Kind)
	assert.Equal(t, ir.TypeInt32, args[0].Var.Type)
}

func TestBuildArgsScalarViolations(t *testing.T) {
	f := newArgsFixture(t)
	var v *InternalInvariantViolation

	_, err := buildArgs("k", f.arena, []ir.Var{{Name: "n", Type: ir.TypeInt32}, {Name: "n", Type: ir.TypeInt64}}, nil, writes())
	require.ErrorAs(t, err, &v)
	assert.Equal(t, diag.LowerDuplicateScalar, v.Code)

	_, err = buildArgs("k", f.arena, []ir.Var{{Name: "m"}}, nil, writes())
	require.ErrorAs(t, err, &v)
	assert.Equal(t, diag.LowerInvalidScalarType, v.Code)
	assert.Equal(t, "m", v.Subject)
}

func TestBuildArgsScalarNamedLikeBuffer(t *testing.T) {
	f := newArgsFixture(t)
	_, err := buildArgs("k", f.arena, []ir.Var{{Name: "_Q", Type: ir.TypeInt32}}, []*ir.Tensor{f.q}, writes())
	var v *InternalInvariantViolation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, diag.LowerArgLookupFailed, v.Code)
}

func TestBuildArgsArgumentOwnsBufferCopy(t *testing.T) {
	f := newArgsFixture(t)
	args, err := buildArgs("k", f.arena, nil, []*ir.Tensor{f.q}, writes())
	require.NoError(t, err)
	f.arena.Get(f.q.Buffer).Shape[0] = 100
	assert.Equal(t, []int{4}, args[0].Buffer.Shape)
}
