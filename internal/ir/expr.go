package ir

// Expr is a side-effect free value computation.
type Expr interface {
	exprNode()
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Const is a numeric literal.
type Const struct {
	Value float64
}

// VarRef reads a scalar argument or a loop variable.
type VarRef struct {
	Name string
}

// Load reads one element of a tensor.
type Load struct {
	Tensor  *Tensor
	Indices []Expr
}

type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Neg negates its operand.
type Neg struct {
	X Expr
}

// Call invokes an intrinsic or an extern function.
type Call struct {
	Name   string
	Args   []Expr
	Result ScalarType
}

func (*Const) exprNode()  {}
func (*VarRef) exprNode() {}
func (*Load) exprNode()   {}
func (*Binary) exprNode() {}
func (*Neg) exprNode()    {}
func (*Call) exprNode()   {}

// ExprTensors returns every tensor read by e, in first-use order.
func ExprTensors(e Expr) []*Tensor {
	var out []*Tensor
	seen := make(map[*Tensor]struct{})
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case *Load:
			if x.Tensor != nil {
				if _, ok := seen[x.Tensor]; !ok {
					seen[x.Tensor] = struct{}{}
					out = append(out, x.Tensor)
				}
			}
			for _, idx := range x.Indices {
				walk(idx)
			}
		case *Binary:
			walk(x.Left)
			walk(x.Right)
		case *Neg:
			walk(x.X)
		case *Call:
			for _, a := range x.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}
