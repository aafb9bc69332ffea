// Package tgraph is the tensor group: tensors, their dependency edges, and
// the buffer arena backing them.
package tgraph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"tessel/internal/ir"
)

// TensorID indexes a tensor in its Graph in insertion order.
type TensorID uint32

// Graph owns the tensors of one group. Tensors are kept in insertion order,
// which breaks ties in the topological order.
type Graph struct {
	tensors []*ir.Tensor
	byName  map[string]TensorID
	arena   *ir.Arena
}

// New returns an empty graph with its own buffer arena.
func New() *Graph {
	return &Graph{
		byName: make(map[string]TensorID),
		arena:  ir.NewArena(),
	}
}

// Add registers t. Placeholders and tensors requesting shared/local memory
// get their buffer immediately; heap tensors are bound by AllocateBuffers.
// A tensor with ShareWith takes its owner's buffer as soon as the owner has
// one, in either insertion order. Void extern calls never get a buffer.
func (g *Graph) Add(t *ir.Tensor) (TensorID, error) {
	if t == nil || t.Name == "" {
		return 0, fmt.Errorf("tensor must have a name")
	}
	if _, dup := g.byName[t.Name]; dup {
		return 0, fmt.Errorf("duplicate tensor %q", t.Name)
	}
	id, err := safecast.Conv[TensorID](len(g.tensors))
	if err != nil {
		return 0, fmt.Errorf("tensor id overflow: %w", err)
	}
	if !t.Buffer.IsValid() && !t.IsVoidExtern() {
		switch {
		case t.ShareWith != "":
			if owner, ok := g.Tensor(t.ShareWith); ok && owner.Buffer.IsValid() {
				t.Buffer = owner.Buffer
			}
		case t.IsPlaceholder() || t.Memory.IsAcceleratorScratch():
			if err := g.bindOwnBuffer(t); err != nil {
				return 0, err
			}
		}
	}
	g.tensors = append(g.tensors, t)
	g.byName[t.Name] = id
	if t.Buffer.IsValid() {
		g.bindAliases(t)
	}
	return id, nil
}

// bindAliases hands owner's buffer to the unbound tensors added earlier that
// share it, following alias chains.
func (g *Graph) bindAliases(owner *ir.Tensor) {
	for _, u := range g.tensors {
		if u.ShareWith != owner.Name || u.Buffer.IsValid() || u.IsVoidExtern() {
			continue
		}
		u.Buffer = owner.Buffer
		g.bindAliases(u)
	}
}

// MustAdd is Add for tests and builders with static input.
func (g *Graph) MustAdd(t *ir.Tensor) *ir.Tensor {
	if _, err := g.Add(t); err != nil {
		panic(err)
	}
	return t
}

// Tensor finds a tensor by name.
func (g *Graph) Tensor(name string) (*ir.Tensor, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.tensors[id], true
}

// Tensors returns the tensors in insertion order.
func (g *Graph) Tensors() []*ir.Tensor {
	return slices.Clone(g.tensors)
}

// Buffers is the arena backing the group's tensors.
func (g *Graph) Buffers() *ir.Arena {
	return g.arena
}

// Len reports the number of tensors.
func (g *Graph) Len() int {
	return len(g.tensors)
}

// BufferName is the name of the buffer owned by the tensor called name.
func BufferName(name string) string {
	return "_" + name
}

func (g *Graph) bindOwnBuffer(t *ir.Tensor) error {
	id, err := g.arena.New(BufferName(t.Name), t.Memory, t.DType, t.Shape)
	if err != nil {
		return fmt.Errorf("tensor %q: %w", t.Name, err)
	}
	t.Buffer = id
	return nil
}

// edges returns, for every tensor, the consumers reading it. Reads of tensors
// outside the group are ignored.
func (g *Graph) edges() ([][]TensorID, []int) {
	out := make([][]TensorID, len(g.tensors))
	indeg := make([]int, len(g.tensors))
	for i, t := range g.tensors {
		to := mustID(i)
		seen := make(map[TensorID]struct{})
		for _, dep := range ir.ExprTensors(t.Body) {
			from, ok := g.byName[dep.Name]
			if !ok || from == to {
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			out[from] = append(out[from], to)
			indeg[to]++
		}
	}
	for i := range out {
		slices.Sort(out[i])
	}
	return out, indeg
}
