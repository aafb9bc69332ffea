package lower

import (
	"tessel/internal/ir"
	"tessel/internal/tgraph"
)

func placeholder(g *tgraph.Graph, name string) *ir.Tensor {
	return g.MustAdd(&ir.Tensor{Name: name, Kind: ir.TensorPlaceholder, DType: ir.TypeFloat32, Shape: []int{4}})
}

// compute adds a tensor computing the sum of reads plus one over axis i.
func compute(g *tgraph.Graph, name string, mem ir.MemoryClass, reads ...*ir.Tensor) *ir.Tensor {
	var body ir.Expr = &ir.Const{Value: 1}
	for _, r := range reads {
		body = &ir.Binary{Op: ir.OpAdd, Left: &ir.Load{Tensor: r, Indices: []ir.Expr{&ir.VarRef{Name: "i"}}}, Right: body}
	}
	return g.MustAdd(&ir.Tensor{
		Name: name, Kind: ir.TensorCompute, DType: ir.TypeFloat32,
		Shape: []int{4}, Axes: []string{"i"}, Body: body, Memory: mem,
	})
}

// argCopy returns a caller-side declaration of t: same identity, no buffer
// unless t is a placeholder.
func argCopy(t *ir.Tensor) *ir.Tensor {
	cp := *t
	if !t.IsPlaceholder() {
		cp.Buffer = ir.NoBufferID
	}
	return &cp
}

func storedNames(b *ir.Block) []string {
	var out []string
	for _, s := range ir.Stores(b) {
		out = append(out, s.Tensor.Name)
	}
	return out
}

func argSummary(args []ir.Argument) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.IO.String() + " " + a.Name()
	}
	return out
}
