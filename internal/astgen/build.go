// Package astgen builds the statements computing a single tensor.
package astgen

import (
	"tessel/internal/ir"
)

// Build returns the statement computing t: a loop nest over t's axes storing
// the body element by element. Extern calls become a single store of the
// call result, or a bare Evaluate when the call returns void. Placeholders
// have nothing to compute and yield nil.
func Build(t *ir.Tensor) ir.Stmt {
	if t == nil || t.IsPlaceholder() || !t.HasExpression() {
		return nil
	}
	if t.Kind == ir.TensorExtern {
		if t.IsVoidExtern() {
			return &ir.Evaluate{Value: t.Body}
		}
		return &ir.Store{Tensor: t, Value: t.Body}
	}

	indices := make([]ir.Expr, len(t.Axes))
	for i, axis := range t.Axes {
		indices[i] = &ir.VarRef{Name: axis}
	}
	var stmt ir.Stmt = &ir.Store{Tensor: t, Indices: indices, Value: t.Body}
	for i := len(t.Axes) - 1; i >= 0; i-- {
		extent := 1
		if i < len(t.Shape) {
			extent = t.Shape[i]
		}
		stmt = &ir.For{Var: t.Axes[i], Extent: extent, Body: ir.NewBlock(stmt)}
	}
	return stmt
}
