package tgraph

import (
	"errors"
	"testing"

	"tessel/internal/ir"
)

func placeholder(name string) *ir.Tensor {
	return &ir.Tensor{Name: name, Kind: ir.TensorPlaceholder, DType: ir.TypeFloat32, Shape: []int{8}}
}

func compute(name string, mem ir.MemoryClass, reads ...*ir.Tensor) *ir.Tensor {
	var body ir.Expr = &ir.Const{Value: 1}
	for _, r := range reads {
		body = &ir.Binary{Op: ir.OpAdd, Left: body, Right: &ir.Load{Tensor: r, Indices: []ir.Expr{&ir.VarRef{Name: "i"}}}}
	}
	return &ir.Tensor{
		Name: name, Kind: ir.TensorCompute, DType: ir.TypeFloat32,
		Shape: []int{8}, Axes: []string{"i"}, Body: body, Memory: mem,
	}
}

func names(ts []*ir.Tensor) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func TestTopoOrderProducersFirst(t *testing.T) {
	g := New()
	a := g.MustAdd(placeholder("A"))
	b := compute("B", ir.MemHeap, a)
	c := compute("C", ir.MemHeap, b)
	// C is registered before its producer B.
	g.MustAdd(c)
	g.MustAdd(b)
	g.MustAdd(compute("D", ir.MemHeap, a))

	order, err := g.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}
	got := names(order)
	want := []string{"A", "B", "D", "C"}
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	topo := g.ToposortKahn()
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %v, want 3 waves", topo.Batches)
	}
}

func TestTopoOrderReportsCycles(t *testing.T) {
	g := New()
	x := compute("X", ir.MemHeap)
	y := compute("Y", ir.MemHeap, x)
	x.Body = &ir.Load{Tensor: y, Indices: []ir.Expr{&ir.VarRef{Name: "i"}}}
	g.MustAdd(x)
	g.MustAdd(y)
	g.MustAdd(placeholder("P"))

	_, err := g.TopoOrder()
	var cyc *CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cyc.Names) != 2 || cyc.Names[0] != "X" || cyc.Names[1] != "Y" {
		t.Fatalf("cycle = %v", cyc.Names)
	}
}

func TestAddBindsScratchAndPlaceholderBuffersEagerly(t *testing.T) {
	g := New()
	a := g.MustAdd(placeholder("A"))
	l := g.MustAdd(compute("L", ir.MemLocal, a))
	h := g.MustAdd(compute("H", ir.MemHeap, l))

	if !a.Buffer.IsValid() || !l.Buffer.IsValid() {
		t.Fatalf("placeholder and local tensors must be bound on Add")
	}
	if h.Buffer.IsValid() {
		t.Fatalf("heap tensor bound before allocation")
	}
	if got := g.Buffers().Get(l.Buffer); got.Memory != ir.MemLocal || got.Name != "_L" {
		t.Fatalf("local buffer = %+v", got)
	}
	if _, err := g.Add(placeholder("A")); err == nil {
		t.Fatalf("duplicate tensor accepted")
	}
}

func TestAddBindsScratchAliasToOwnerBuffer(t *testing.T) {
	g := New()
	x := g.MustAdd(placeholder("X"))
	a := g.MustAdd(compute("A", ir.MemLocal, x))
	after := compute("A2", ir.MemLocal, a)
	after.ShareWith = "A"
	g.MustAdd(after)
	if after.Buffer != a.Buffer {
		t.Fatalf("alias added after its owner: buffer %v, want %v", after.Buffer, a.Buffer)
	}

	g = New()
	x = g.MustAdd(placeholder("X"))
	before := compute("S2", ir.MemShared, x)
	before.ShareWith = "S1"
	chained := compute("S3", ir.MemShared, x)
	chained.ShareWith = "S2"
	g.MustAdd(before)
	g.MustAdd(chained)
	if before.Buffer.IsValid() {
		t.Fatalf("alias bound before its owner exists")
	}
	s1 := g.MustAdd(compute("S1", ir.MemShared, x))
	if before.Buffer != s1.Buffer || chained.Buffer != s1.Buffer {
		t.Fatalf("aliases added before owner: %v, %v, want %v", before.Buffer, chained.Buffer, s1.Buffer)
	}
	if got := g.Buffers().Len(); got != 2 {
		t.Fatalf("arena has %d buffers, want 2", got)
	}
}

func TestAddNeverBindsVoidExtern(t *testing.T) {
	g := New()
	x := g.MustAdd(placeholder("X"))
	dump := g.MustAdd(&ir.Tensor{
		Name: "dump", Kind: ir.TensorExtern, Memory: ir.MemShared,
		Body: &ir.Call{Name: "print", Args: []ir.Expr{&ir.Load{Tensor: x, Indices: []ir.Expr{&ir.Const{Value: 0}}}}, Result: ir.TypeVoid},
	})
	if dump.Buffer.IsValid() {
		t.Fatalf("void extern in shared memory got buffer %v", dump.Buffer)
	}
	if _, err := g.AllocateBuffers(); err != nil {
		t.Fatalf("AllocateBuffers: %v", err)
	}
	if dump.Buffer.IsValid() {
		t.Fatalf("void extern bound by allocation")
	}
}

func TestAllocateBuffersSharesAndSkipsVoidExtern(t *testing.T) {
	g := New()
	a := g.MustAdd(placeholder("A"))
	b := g.MustAdd(compute("B", ir.MemHeap, a))
	alias := compute("B2", ir.MemHeap, b)
	alias.ShareWith = "B"
	g.MustAdd(alias)
	dump := g.MustAdd(&ir.Tensor{Name: "dump", Kind: ir.TensorExtern, Body: &ir.Call{Name: "print", Result: ir.TypeVoid}})

	m, err := g.AllocateBuffers()
	if err != nil {
		t.Fatalf("AllocateBuffers: %v", err)
	}
	if len(m) != 4 {
		t.Fatalf("map has %d entries, want 4", len(m))
	}
	if !b.Buffer.IsValid() || alias.Buffer != b.Buffer {
		t.Fatalf("B2 must alias B's buffer: %v vs %v", alias.Buffer, b.Buffer)
	}
	if dump.Buffer.IsValid() {
		t.Fatalf("void extern got a buffer")
	}

	before := g.Buffers().Len()
	if _, err := g.AllocateBuffers(); err != nil {
		t.Fatalf("second AllocateBuffers: %v", err)
	}
	if g.Buffers().Len() != before {
		t.Fatalf("re-allocation created buffers: %d -> %d", before, g.Buffers().Len())
	}
}

func TestAllocateBuffersRejectsUnknownShare(t *testing.T) {
	g := New()
	x := compute("X", ir.MemHeap)
	x.ShareWith = "nope"
	g.MustAdd(x)
	if _, err := g.AllocateBuffers(); err == nil {
		t.Fatalf("expected error for unknown share target")
	}
}
