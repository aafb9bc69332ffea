package tgraph

import (
	"fmt"

	"tessel/internal/ir"
)

// AllocateBuffers binds a buffer to every tensor that owns storage and
// returns all tensors by name. Tensors with ShareWith alias their target's
// buffer. Void extern calls get no buffer. Calling it again is a no-op for
// tensors that are already bound.
func (g *Graph) AllocateBuffers() (map[string]*ir.Tensor, error) {
	out := make(map[string]*ir.Tensor, len(g.tensors))
	for _, t := range g.tensors {
		if err := g.allocate(t, nil); err != nil {
			return nil, err
		}
		out[t.Name] = t
	}
	return out, nil
}

func (g *Graph) allocate(t *ir.Tensor, visiting map[string]bool) error {
	if t.Buffer.IsValid() || t.IsVoidExtern() {
		return nil
	}
	if t.ShareWith == "" {
		return g.bindOwnBuffer(t)
	}

	owner, ok := g.Tensor(t.ShareWith)
	if !ok {
		return fmt.Errorf("tensor %q shares buffer with unknown tensor %q", t.Name, t.ShareWith)
	}
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	if visiting[t.Name] {
		return fmt.Errorf("tensor %q: circular buffer sharing", t.Name)
	}
	visiting[t.Name] = true
	if err := g.allocate(owner, visiting); err != nil {
		return err
	}
	if !owner.Buffer.IsValid() {
		return fmt.Errorf("tensor %q shares buffer with %q, which has no storage", t.Name, owner.Name)
	}
	t.Buffer = owner.Buffer
	return nil
}
