package ir

type TensorKind uint8

const (
	// TensorPlaceholder is a group input; it has no body and is never lowered.
	TensorPlaceholder TensorKind = iota
	// TensorCompute is computed elementwise from its Body over Axes.
	TensorCompute
	// TensorExtern is produced by an opaque call.
	TensorExtern
)

func (k TensorKind) String() string {
	switch k {
	case TensorPlaceholder:
		return "placeholder"
	case TensorCompute:
		return "compute"
	case TensorExtern:
		return "extern"
	default:
		return "unknown"
	}
}

// Tensor is one node of a tensor group.
type Tensor struct {
	Name  string
	Kind  TensorKind
	DType ScalarType
	Shape []int
	// Axes names the loop variable bound to each dimension of Shape.
	Axes []string
	Body Expr

	// Buffer is the storage bound to the tensor, NoBufferID until allocated.
	Buffer BufferID
	// Memory is the storage tier requested for the tensor's own buffer.
	Memory MemoryClass
	// ShareWith names a tensor whose buffer this tensor aliases.
	ShareWith string
}

func (t *Tensor) IsPlaceholder() bool {
	return t != nil && t.Kind == TensorPlaceholder
}

func (t *Tensor) HasExpression() bool {
	return t != nil && t.Body != nil
}

// IsVoidExtern reports whether t is an extern call whose result is void. Such
// tensors only exist for their side effects and never own storage.
func (t *Tensor) IsVoidExtern() bool {
	if t == nil || t.Kind != TensorExtern {
		return false
	}
	call, ok := t.Body.(*Call)
	return ok && call.Result == TypeVoid
}
