package groupfile

import (
	"fmt"

	"tessel/internal/diag"
	"tessel/internal/ir"
)

// exprError is a conversion failure with the diagnostic code to report.
type exprError struct {
	code diag.Code
	msg  string
}

func (e *exprError) Error() string { return e.msg }

func badExpr(format string, args ...any) error {
	return &exprError{code: diag.GroupBadExpr, msg: fmt.Sprintf(format, args...)}
}

// scope resolves identifiers while converting the body of one tensor.
type scope struct {
	self    *ir.Tensor
	tensors map[string]*ir.Tensor
	// vars holds loop axes and scalar arguments.
	vars map[string]struct{}
}

func (s *scope) expr(n *exprNode) (ir.Expr, error) {
	left, err := s.term(n.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		right, err := s.term(op.Right)
		if err != nil {
			return nil, err
		}
		bop := ir.OpAdd
		if op.Op == "-" {
			bop = ir.OpSub
		}
		left = &ir.Binary{Op: bop, Left: left, Right: right}
	}
	return left, nil
}

func (s *scope) term(n *termNode) (ir.Expr, error) {
	left, err := s.unary(n.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		right, err := s.unary(op.Right)
		if err != nil {
			return nil, err
		}
		bop := ir.OpMul
		if op.Op == "/" {
			bop = ir.OpDiv
		}
		left = &ir.Binary{Op: bop, Left: left, Right: right}
	}
	return left, nil
}

func (s *scope) unary(n *unaryNode) (ir.Expr, error) {
	e, err := s.primary(n.Value)
	if err != nil {
		return nil, err
	}
	if n.Neg {
		return &ir.Neg{X: e}, nil
	}
	return e, nil
}

func (s *scope) primary(n *primaryNode) (ir.Expr, error) {
	switch {
	case n.Number != nil:
		return &ir.Const{Value: *n.Number}, nil
	case n.Call != nil:
		args, err := s.list(n.Call.Args)
		if err != nil {
			return nil, err
		}
		return &ir.Call{Name: n.Call.Name, Args: args, Result: s.self.DType}, nil
	case n.Access != nil:
		return s.load(n.Access)
	case n.Ident != nil:
		name := *n.Ident
		if _, ok := s.vars[name]; ok {
			return &ir.VarRef{Name: name}, nil
		}
		if _, ok := s.tensors[name]; ok {
			return nil, badExpr("tensor %q read without indices", name)
		}
		return nil, badExpr("unknown variable %q", name)
	case n.Parens != nil:
		return s.expr(n.Parens)
	}
	return nil, badExpr("empty expression")
}

func (s *scope) load(n *accessNode) (ir.Expr, error) {
	t, ok := s.tensors[n.Tensor]
	if !ok {
		return nil, &exprError{code: diag.GroupUnknownTensor, msg: fmt.Sprintf("unknown tensor %q", n.Tensor)}
	}
	if t == s.self {
		return nil, badExpr("tensor %q reads itself", t.Name)
	}
	if len(n.Indices) != len(t.Shape) {
		return nil, badExpr("tensor %q has rank %d, indexed with %d indices", t.Name, len(t.Shape), len(n.Indices))
	}
	indices, err := s.list(n.Indices)
	if err != nil {
		return nil, err
	}
	return &ir.Load{Tensor: t, Indices: indices}, nil
}

func (s *scope) list(nodes []*exprNode) ([]ir.Expr, error) {
	out := make([]ir.Expr, 0, len(nodes))
	for _, n := range nodes {
		e, err := s.expr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
