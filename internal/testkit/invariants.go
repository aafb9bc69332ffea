package testkit

import (
	"fmt"

	"tessel/internal/ir"
)

// CheckFuncInvariants runs the structural invariants every lowered function
// must satisfy:
// 1) the body is exactly one named schedule root
// 2) scalar arguments precede buffer arguments and have unique names
// 3) at most one argument per buffer name
// 4) temporary buffers are listed once
func CheckFuncInvariants(f *ir.LoweredFunc) error {
	if f == nil {
		return fmt.Errorf("nil function")
	}
	if f.Name == "" {
		return fmt.Errorf("function has no name")
	}

	// 1) schedule root
	root := f.Root()
	if root == nil {
		return fmt.Errorf("%s: body is not a single schedule root", f.Name)
	}
	if root.Name == "" {
		return fmt.Errorf("%s: schedule root has no name", f.Name)
	}

	// 2) scalars first; 3) buffer dedup
	scalars := make(map[string]struct{})
	buffers := make(map[string]struct{})
	sawBuffer := false
	for i, a := range f.Args {
		switch a.Kind {
		case ir.ArgScalar:
			if sawBuffer {
				return fmt.Errorf("%s: scalar %q at position %d follows a buffer argument", f.Name, a.Var.Name, i)
			}
			if _, dup := scalars[a.Var.Name]; dup {
				return fmt.Errorf("%s: duplicate scalar %q", f.Name, a.Var.Name)
			}
			if a.IO != ir.IOInput {
				return fmt.Errorf("%s: scalar %q is not an input", f.Name, a.Var.Name)
			}
			scalars[a.Var.Name] = struct{}{}
		case ir.ArgBuffer:
			sawBuffer = true
			if _, dup := buffers[a.Buffer.Name]; dup {
				return fmt.Errorf("%s: buffer %q passed twice", f.Name, a.Buffer.Name)
			}
			buffers[a.Buffer.Name] = struct{}{}
		default:
			return fmt.Errorf("%s: argument %d has unknown kind %d", f.Name, i, a.Kind)
		}
	}

	// 4) temps
	temps := make(map[string]struct{}, len(f.TempBuffers))
	for _, b := range f.TempBuffers {
		if _, dup := temps[b.Name]; dup {
			return fmt.Errorf("%s: temp buffer %q listed twice", f.Name, b.Name)
		}
		temps[b.Name] = struct{}{}
	}
	return nil
}
