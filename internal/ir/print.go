package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpFuncs writes a human-readable representation of lowered functions.
func DumpFuncs(w io.Writer, funcs []*LoweredFunc) error {
	if w == nil {
		return nil
	}
	for i, f := range funcs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := DumpFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

// DumpFunc writes one lowered function.
func DumpFunc(w io.Writer, f *LoweredFunc) error {
	if w == nil || f == nil {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("fn ")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	for i, a := range f.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatArgument(a))
	}
	sb.WriteString(") {\n")
	if len(f.TempBuffers) > 0 {
		sb.WriteString("  temps:")
		for _, b := range f.TempBuffers {
			fmt.Fprintf(&sb, " %s@%s", b.Name, b.Memory)
		}
		sb.WriteString("\n")
	}
	if f.Body != nil {
		for _, s := range f.Body.Stmts {
			writeStmt(&sb, s, 1)
		}
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatArgument renders "in A: float32[16,16]@heap" or "in n: int32".
func FormatArgument(a Argument) string {
	if a.Kind == ArgScalar {
		return fmt.Sprintf("%s %s: %s", a.IO, a.Var.Name, a.Var.Type)
	}
	return fmt.Sprintf("%s %s: %s%s@%s", a.IO, a.Buffer.Name, a.Buffer.DType, formatShape(a.Buffer.Shape), a.Buffer.Memory)
}

// FormatStmt renders a statement tree without a trailing newline.
func FormatStmt(s Stmt) string {
	var sb strings.Builder
	writeStmt(&sb, s, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeStmt(sb *strings.Builder, s Stmt, depth int) {
	indent := strings.Repeat("  ", depth)
	switch x := s.(type) {
	case *Schedule:
		fmt.Fprintf(sb, "%sschedule %s {\n", indent, x.Name)
		if x.Body != nil {
			for _, child := range x.Body.Stmts {
				writeStmt(sb, child, depth+1)
			}
		}
		sb.WriteString(indent + "}\n")
	case *Block:
		if x == nil {
			return
		}
		fmt.Fprintf(sb, "%s{\n", indent)
		for _, child := range x.Stmts {
			writeStmt(sb, child, depth+1)
		}
		sb.WriteString(indent + "}\n")
	case *For:
		fmt.Fprintf(sb, "%sfor %s in 0..%d {\n", indent, x.Var, x.Extent)
		if x.Body != nil {
			for _, child := range x.Body.Stmts {
				writeStmt(sb, child, depth+1)
			}
		}
		sb.WriteString(indent + "}\n")
	case *Store:
		name := "<nil>"
		if x.Tensor != nil {
			name = x.Tensor.Name
		}
		fmt.Fprintf(sb, "%s%s%s = %s\n", indent, name, formatIndices(x.Indices), FormatExpr(x.Value))
	case *Evaluate:
		fmt.Fprintf(sb, "%s%s\n", indent, FormatExpr(x.Value))
	default:
		fmt.Fprintf(sb, "%s<unknown stmt %T>\n", indent, s)
	}
}

// FormatExpr renders an expression.
func FormatExpr(e Expr) string {
	switch x := e.(type) {
	case nil:
		return "<nil>"
	case *Const:
		return strconv.FormatFloat(x.Value, 'g', -1, 64)
	case *VarRef:
		return x.Name
	case *Load:
		name := "<nil>"
		if x.Tensor != nil {
			name = x.Tensor.Name
		}
		return name + formatIndices(x.Indices)
	case *Binary:
		return "(" + FormatExpr(x.Left) + " " + x.Op.String() + " " + FormatExpr(x.Right) + ")"
	case *Neg:
		return "-" + FormatExpr(x.X)
	case *Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = FormatExpr(a)
		}
		return x.Name + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}

func formatIndices(idx []Expr) string {
	if len(idx) == 0 {
		return ""
	}
	parts := make([]string, len(idx))
	for i, e := range idx {
		parts[i] = FormatExpr(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatShape(shape []int) string {
	if len(shape) == 0 {
		return ""
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
