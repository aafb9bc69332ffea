package ir

// Stmt is an imperative statement of a generated function body.
type Stmt interface {
	stmtNode()
}

// Store writes Value into one element of Tensor's buffer.
type Store struct {
	Tensor  *Tensor
	Indices []Expr
	Value   Expr
}

// For iterates Var over [0, Extent).
type For struct {
	Var    string
	Extent int
	Body   *Block
}

// Evaluate runs an expression for its side effects.
type Evaluate struct {
	Value Expr
}

// Block is an ordered statement list.
type Block struct {
	Stmts []Stmt
}

// Schedule marks the root scope of a lowered function. Name is unique for
// the life of the process.
type Schedule struct {
	Name string
	Body *Block
}

func (*Store) stmtNode()    {}
func (*For) stmtNode()      {}
func (*Evaluate) stmtNode() {}
func (*Block) stmtNode()    {}
func (*Schedule) stmtNode() {}

func NewBlock(stmts ...Stmt) *Block {
	return &Block{Stmts: stmts}
}

// Len reports the number of top-level statements.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Stmts)
}
