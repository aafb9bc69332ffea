package ir

// Visit walks s depth-first, calling pre before and post after each
// statement's children. Either callback may be nil.
func Visit(s Stmt, pre, post func(Stmt)) {
	if s == nil {
		return
	}
	if pre != nil {
		pre(s)
	}
	switch x := s.(type) {
	case *Block:
		if x != nil {
			for _, child := range x.Stmts {
				Visit(child, pre, post)
			}
		}
	case *For:
		if x.Body != nil {
			Visit(x.Body, pre, post)
		}
	case *Schedule:
		if x.Body != nil {
			Visit(x.Body, pre, post)
		}
	}
	if post != nil {
		post(s)
	}
}

// CollectWriteSet returns the names of all tensors stored to inside s.
func CollectWriteSet(s Stmt) map[string]struct{} {
	out := make(map[string]struct{})
	Visit(s, func(st Stmt) {
		store, ok := st.(*Store)
		if !ok || store.Tensor == nil {
			return
		}
		out[store.Tensor.Name] = struct{}{}
	}, nil)
	return out
}

// Stores returns every Store statement in s in visit order.
func Stores(s Stmt) []*Store {
	var out []*Store
	Visit(s, func(st Stmt) {
		if store, ok := st.(*Store); ok {
			out = append(out, store)
		}
	}, nil)
	return out
}
