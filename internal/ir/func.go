package ir

// IO is the direction of a function argument.
type IO uint8

const (
	IOInput IO = iota
	IOOutput
)

func (io IO) String() string {
	if io == IOOutput {
		return "out"
	}
	return "in"
}

type ArgKind uint8

const (
	ArgScalar ArgKind = iota
	ArgBuffer
)

// Argument is a parameter of a lowered function: either a scalar Var or a
// Buffer. The Buffer is a copy owned by the argument.
type Argument struct {
	Kind   ArgKind
	Var    Var
	Buffer Buffer
	IO     IO
}

func ScalarArgument(v Var) Argument {
	return Argument{Kind: ArgScalar, Var: v, IO: IOInput}
}

func BufferArgument(b Buffer, io IO) Argument {
	return Argument{Kind: ArgBuffer, Buffer: b, IO: io}
}

// Name returns the scalar name or the buffer name.
func (a Argument) Name() string {
	if a.Kind == ArgBuffer {
		return a.Buffer.Name
	}
	return a.Var.Name
}

func (a Argument) IsInput() bool  { return a.IO == IOInput }
func (a Argument) IsOutput() bool { return a.IO == IOOutput }

// LoweredFunc is a self-contained, buffer-backed function ready for codegen.
type LoweredFunc struct {
	Name string
	Args []Argument
	// Body holds a single *Schedule wrapping the generated statements.
	Body        *Block
	TempBuffers []Buffer
}

// Root returns the schedule root wrapping the function body, or nil.
func (f *LoweredFunc) Root() *Schedule {
	if f == nil || f.Body.Len() != 1 {
		return nil
	}
	root, _ := f.Body.Stmts[0].(*Schedule)
	return root
}
