package lower

import (
	"slices"

	"tessel/internal/diag"
	"tessel/internal/ir"
)

// buildArgs derives the parameter list of body. Scalars come first as
// inputs. Tensor arguments follow in declared order, one per buffer: a later
// alias of an input buffer replaces it at the alias's position, and a buffer
// already passed as output is never repeated or demoted.
func buildArgs(fn string, arena *ir.Arena, scalars []ir.Var, tensorArgs []*ir.Tensor, body *ir.Block) ([]ir.Argument, error) {
	writes := ir.CollectWriteSet(body)
	args := make([]ir.Argument, 0, len(scalars)+len(tensorArgs))
	argNames := make(map[string]struct{}, cap(args))

	for _, s := range scalars {
		if _, dup := argNames[s.Name]; dup {
			return nil, violation(diag.LowerDuplicateScalar, fn, s.Name, "scalar argument declared twice")
		}
		if !s.Type.Valid() {
			return nil, violation(diag.LowerInvalidScalarType, fn, s.Name, "scalar argument has type %s", s.Type)
		}
		argNames[s.Name] = struct{}{}
		args = append(args, ir.ScalarArgument(s))
	}

	for _, t := range tensorArgs {
		if !t.Buffer.IsValid() {
			continue
		}
		buf, ok := arena.Snapshot(t.Buffer)
		if !ok {
			return nil, violation(diag.LowerArgLookupFailed, fn, t.Name, "tensor argument points at buffer %d outside the group", t.Buffer)
		}
		_, isOutput := writes[t.Name]

		if _, seen := argNames[buf.Name]; seen {
			// Only buffer arguments are searched; a scalar sharing the name is not a match.
			idx := slices.IndexFunc(args, func(a ir.Argument) bool {
				return a.Kind == ir.ArgBuffer && a.Buffer.Name == buf.Name
			})
			if idx < 0 {
				return nil, violation(diag.LowerArgLookupFailed, fn, buf.Name, "buffer name recorded but no buffer argument carries it")
			}
			if args[idx].IsOutput() {
				continue
			}
			args = slices.Delete(args, idx, idx+1)
		}

		argNames[buf.Name] = struct{}{}
		io := ir.IOInput
		if isOutput {
			io = ir.IOOutput
		}
		args = append(args, ir.BufferArgument(buf, io))
	}
	return args, nil
}
