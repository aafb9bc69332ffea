package lower

import (
	"maps"
	"slices"

	"tessel/internal/diag"
	"tessel/internal/ir"
)

// bindBuffers allocates the group's buffers, copies them onto the declared
// tensor arguments in place and returns the temporary buffers of body:
// declared temporaries plus every store target living outside heap memory.
func bindBuffers(fn string, g Graph, tensorArgs, tempArgs []*ir.Tensor, body *ir.Block) ([]ir.Buffer, error) {
	tensorMap, err := g.AllocateBuffers()
	if err != nil {
		v := violation(diag.LowerBufferAllocFailed, fn, "", "buffer allocation failed")
		v.Err = err
		return nil, v
	}

	for _, arg := range tensorArgs {
		if arg.IsPlaceholder() || arg.Buffer.IsValid() || arg.IsVoidExtern() {
			continue
		}
		src, ok := tensorMap[arg.Name]
		if !ok {
			v := violation(diag.LowerMissingArgBuffer, fn, arg.Name, "argument tensor was never produced by the group")
			v.Declared = tensorNames(tensorArgs)
			return nil, v
		}
		arg.Buffer = src.Buffer
	}

	arena := g.Buffers()
	tempNames := make(map[string]struct{}, len(tempArgs))
	for _, t := range tempArgs {
		tempNames[t.Name] = struct{}{}
	}
	for _, store := range ir.Stores(body) {
		if store.Tensor == nil {
			return nil, violation(diag.LowerNilStoreTarget, fn, "", "store statement has no target tensor")
		}
		buf := arena.Get(store.Tensor.Buffer)
		if buf == nil {
			return nil, violation(diag.LowerStoreBufferUnresolved, fn, store.Tensor.Name, "store target has no buffer")
		}
		if buf.Memory != ir.MemHeap {
			tempNames[store.Tensor.Name] = struct{}{}
		}
	}

	var temps []ir.Buffer
	seen := make(map[string]struct{})
	for _, name := range slices.Sorted(maps.Keys(tempNames)) {
		t, ok := tensorMap[name]
		if !ok {
			continue
		}
		buf, ok := arena.Snapshot(t.Buffer)
		if !ok {
			continue
		}
		if _, dup := seen[buf.Name]; dup {
			continue
		}
		seen[buf.Name] = struct{}{}
		temps = append(temps, buf)
	}
	return temps, nil
}

func tensorNames(ts []*ir.Tensor) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}
