package tgraph

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"tessel/internal/ir"
)

// Topo is the result of ToposortKahn.
type Topo struct {
	Order   []TensorID   // linear order
	Batches [][]TensorID // waves of mutually independent tensors
	Cyclic  bool
	Cycles  []TensorID // tensors left on a cycle
}

// ToposortKahn orders the graph producers-first. Within a wave tensors keep
// insertion order.
func (g *Graph) ToposortKahn() *Topo {
	edges, indeg := g.edges()
	nodeCount := len(edges)

	topo := &Topo{
		Order:   make([]TensorID, 0, nodeCount),
		Batches: make([][]TensorID, 0),
	}

	current := make([]TensorID, 0, nodeCount)
	for i := range nodeCount {
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]TensorID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != nodeCount {
		topo.Cyclic = true
		for i := range nodeCount {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
	}
	return topo
}

// CycleError reports tensors that can never be scheduled.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return "tensor group has a dependency cycle through: " + strings.Join(e.Names, ", ")
}

// TopoOrder returns the tensors producers-first.
func (g *Graph) TopoOrder() ([]*ir.Tensor, error) {
	topo := g.ToposortKahn()
	if topo.Cyclic {
		names := make([]string, 0, len(topo.Cycles))
		for _, id := range topo.Cycles {
			names = append(names, g.tensors[id].Name)
		}
		return nil, &CycleError{Names: names}
	}
	out := make([]*ir.Tensor, 0, len(topo.Order))
	for _, id := range topo.Order {
		out = append(out, g.tensors[id])
	}
	return out, nil
}

func mustID(i int) TensorID {
	id, err := safecast.Conv[TensorID](i)
	if err != nil {
		panic(fmt.Errorf("tensor id overflow: %w", err))
	}
	return id
}
