package lower

import (
	"tessel/internal/astgen"
	"tessel/internal/ir"
)

// Graph is the tensor group being lowered.
type Graph interface {
	// TopoOrder returns the tensors producers-first.
	TopoOrder() ([]*ir.Tensor, error)
	// AllocateBuffers binds storage to every computed tensor and returns all
	// tensors of the group by name.
	AllocateBuffers() (map[string]*ir.Tensor, error)
	// Buffers is the arena the tensors' BufferIDs point into.
	Buffers() *ir.Arena
}

// BuildFunc produces the statement computing one tensor of g.
type BuildFunc func(t *ir.Tensor, g Graph) ir.Stmt

// DefaultBuild builds tensor bodies with astgen.
func DefaultBuild(t *ir.Tensor, _ Graph) ir.Stmt {
	return astgen.Build(t)
}
