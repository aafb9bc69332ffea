// Package groupfile loads tensor groups from TOML files.
//
// A group file declares one function and the tensors it is computed from:
//
//	[function]
//	name    = "scale"
//	args    = ["A", "B"]
//	scalars = [{ name = "alpha", type = "float32" }]
//
//	[[tensor]]
//	name  = "A"
//	kind  = "placeholder"
//	dtype = "float32"
//	shape = [16]
//
//	[[tensor]]
//	name  = "B"
//	kind  = "compute"
//	dtype = "float32"
//	shape = [16]
//	axes  = ["i"]
//	expr  = "A[i] * alpha"
package groupfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/participle/v2"

	"tessel/internal/diag"
	"tessel/internal/ir"
	"tessel/internal/tgraph"
)

// Ext is the suffix of group files.
const Ext = ".group.toml"

type fileConfig struct {
	Function functionConfig `toml:"function"`
	Tensors  []tensorConfig `toml:"tensor"`
}

type functionConfig struct {
	Name    string         `toml:"name"`
	Args    []string       `toml:"args"`
	Temps   []string       `toml:"temps"`
	Scalars []scalarConfig `toml:"scalars"`
}

type scalarConfig struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type tensorConfig struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	DType  string   `toml:"dtype"`
	Shape  []int    `toml:"shape"`
	Axes   []string `toml:"axes"`
	Expr   string   `toml:"expr"`
	Memory string   `toml:"memory"`
	Share  string   `toml:"share"`
	Void   bool     `toml:"void"`
}

// Group is a loaded tensor group ready for lowering.
type Group struct {
	Path    string
	Name    string
	Graph   *tgraph.Graph
	Args    []*ir.Tensor
	Temps   []*ir.Tensor
	Scalars []ir.Var
}

// Load reads and decodes the group file at path. Read failures are returned
// as errors; problems with the content are reported to rep and yield a nil
// group.
func Load(path string, rep diag.Reporter) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(path, data, rep), nil
}

// Decode builds a group from file contents. It returns nil when any error
// was reported.
func Decode(path string, data []byte, rep diag.Reporter) *Group {
	l := &loader{path: path, rep: rep}
	var cfg fileConfig
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		l.errorf(diag.GroupSyntax, path, "failed to parse TOML: %v", err)
		return nil
	}
	for _, key := range meta.Undecoded() {
		l.warnf(diag.GroupSyntax, path, "unknown key %q", key.String())
	}
	if !meta.IsDefined("function") || strings.TrimSpace(cfg.Function.Name) == "" {
		l.errorf(diag.GroupMissingFunction, path, "missing [function].name")
		return nil
	}

	g := l.build(cfg)
	if l.failed {
		return nil
	}
	return g
}

type loader struct {
	path   string
	rep    diag.Reporter
	failed bool
}

func (l *loader) errorf(code diag.Code, subject, format string, args ...any) {
	l.failed = true
	if l.rep != nil {
		l.rep.Report(code, diag.SevError, subject, fmt.Sprintf(format, args...), nil)
	}
}

func (l *loader) warnf(code diag.Code, subject, format string, args ...any) {
	if l.rep != nil {
		l.rep.Report(code, diag.SevWarning, subject, fmt.Sprintf(format, args...), nil)
	}
}

func (l *loader) subject(tensor string) string {
	return l.path + ":" + tensor
}

func (l *loader) build(cfg fileConfig) *Group {
	type decl struct {
		t  *ir.Tensor
		tc *tensorConfig
	}
	tensors := make(map[string]*ir.Tensor, len(cfg.Tensors))
	decls := make([]decl, 0, len(cfg.Tensors))
	for i := range cfg.Tensors {
		tc := &cfg.Tensors[i]
		if tc.Name == "" {
			l.errorf(diag.GroupSyntax, l.path, "tensor #%d has no name", i+1)
			continue
		}
		if _, dup := tensors[tc.Name]; dup {
			l.errorf(diag.GroupDuplicateTensor, l.subject(tc.Name), "tensor %q declared twice", tc.Name)
			continue
		}
		t := l.declare(tc)
		if t == nil {
			continue
		}
		tensors[t.Name] = t
		decls = append(decls, decl{t: t, tc: tc})
	}

	vars := make(map[string]struct{}, len(cfg.Function.Scalars))
	scalars := l.scalars(cfg.Function.Scalars)
	for _, s := range scalars {
		vars[s.Name] = struct{}{}
	}

	for _, d := range decls {
		l.define(d.t, d.tc, tensors, vars)
	}
	if l.failed {
		return nil
	}

	graph := tgraph.New()
	for _, d := range decls {
		if _, err := graph.Add(d.t); err != nil {
			l.errorf(diag.GroupSyntax, l.subject(d.t.Name), "%v", err)
		}
	}

	return &Group{
		Path:    l.path,
		Name:    cfg.Function.Name,
		Graph:   graph,
		Args:    l.tensorList("args", cfg.Function.Args, tensors),
		Temps:   l.tensorList("temps", cfg.Function.Temps, tensors),
		Scalars: scalars,
	}
}

// declare creates the tensor without its body so bodies may reference
// tensors declared later in the file.
func (l *loader) declare(tc *tensorConfig) *ir.Tensor {
	subj := l.subject(tc.Name)
	t := &ir.Tensor{
		Name:      tc.Name,
		Shape:     tc.Shape,
		Axes:      tc.Axes,
		ShareWith: tc.Share,
	}
	switch tc.Kind {
	case "placeholder", "input":
		t.Kind = ir.TensorPlaceholder
	case "", "compute":
		t.Kind = ir.TensorCompute
	case "extern":
		t.Kind = ir.TensorExtern
	default:
		l.errorf(diag.GroupBadKind, subj, "unknown tensor kind %q (expected: placeholder|compute|extern)", tc.Kind)
		return nil
	}

	t.DType = ir.ParseScalarType(tc.DType)
	switch {
	case tc.Void && t.Kind != ir.TensorExtern:
		l.errorf(diag.GroupBadKind, subj, "only extern tensors may be void")
		return nil
	case tc.Void:
		t.DType = ir.TypeVoid
	case !t.DType.Valid():
		l.errorf(diag.GroupBadType, subj, "unknown element type %q", tc.DType)
		return nil
	}

	mem, err := ir.ParseMemoryClass(tc.Memory)
	if err != nil {
		l.errorf(diag.GroupBadMemory, subj, "%v", err)
		return nil
	}
	t.Memory = mem
	if tc.Void && tc.Memory != "" {
		l.warnf(diag.GroupBadMemory, subj, "void extern tensors own no storage; memory %q is ignored", tc.Memory)
		t.Memory = ir.MemHeap
	}

	for _, d := range tc.Shape {
		if d <= 0 {
			l.errorf(diag.GroupSyntax, subj, "shape dimensions must be positive, got %v", tc.Shape)
			return nil
		}
	}
	if t.Kind == ir.TensorCompute && len(tc.Axes) != len(tc.Shape) {
		l.errorf(diag.GroupAxesMismatch, subj, "%d axes for a rank %d tensor", len(tc.Axes), len(tc.Shape))
		return nil
	}
	return t
}

// define attaches the parsed body and resolves buffer sharing.
func (l *loader) define(t *ir.Tensor, tc *tensorConfig, tensors map[string]*ir.Tensor, scalars map[string]struct{}) {
	subj := l.subject(t.Name)
	if t.ShareWith != "" {
		if t.ShareWith == t.Name {
			l.errorf(diag.GroupSyntax, subj, "tensor cannot share its own buffer")
		} else if _, ok := tensors[t.ShareWith]; !ok {
			l.errorf(diag.GroupUnknownTensor, subj, "shares buffer with unknown tensor %q", t.ShareWith)
		}
	}

	if t.IsPlaceholder() {
		if tc.Expr != "" {
			l.errorf(diag.GroupBadExpr, subj, "placeholder tensors have no expression")
		}
		return
	}
	if strings.TrimSpace(tc.Expr) == "" {
		l.errorf(diag.GroupBadExpr, subj, "%s tensor needs an expression", t.Kind)
		return
	}

	node, err := parseExpr(subj, tc.Expr)
	if err != nil {
		var pe participle.Error
		if errors.As(err, &pe) {
			l.errorf(diag.GroupBadExpr, subj, "column %d: %s", pe.Position().Column, pe.Message())
		} else {
			l.errorf(diag.GroupBadExpr, subj, "%v", err)
		}
		return
	}

	vars := make(map[string]struct{}, len(scalars)+len(t.Axes))
	for name := range scalars {
		vars[name] = struct{}{}
	}
	for _, axis := range t.Axes {
		vars[axis] = struct{}{}
	}
	s := &scope{self: t, tensors: tensors, vars: vars}
	body, err := s.expr(node)
	if err != nil {
		code := diag.GroupBadExpr
		var ee *exprError
		if errors.As(err, &ee) {
			code = ee.code
		}
		l.errorf(code, subj, "%v", err)
		return
	}

	if t.Kind == ir.TensorExtern {
		call, ok := body.(*ir.Call)
		if !ok {
			l.errorf(diag.GroupBadExpr, subj, "extern tensor expression must be a call")
			return
		}
		call.Result = t.DType
	}
	t.Body = body
}

func (l *loader) scalars(in []scalarConfig) []ir.Var {
	out := make([]ir.Var, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, sc := range in {
		if sc.Name == "" {
			l.errorf(diag.GroupSyntax, l.path, "scalar argument without a name")
			continue
		}
		if _, dup := seen[sc.Name]; dup {
			l.errorf(diag.GroupDuplicateArgument, l.subject(sc.Name), "scalar %q declared twice", sc.Name)
			continue
		}
		seen[sc.Name] = struct{}{}
		typ := ir.ParseScalarType(sc.Type)
		if !typ.Valid() {
			l.errorf(diag.GroupBadType, l.subject(sc.Name), "unknown scalar type %q", sc.Type)
			continue
		}
		out = append(out, ir.Var{Name: sc.Name, Type: typ})
	}
	return out
}

func (l *loader) tensorList(field string, names []string, tensors map[string]*ir.Tensor) []*ir.Tensor {
	out := make([]*ir.Tensor, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			l.errorf(diag.GroupDuplicateArgument, l.subject(name), "%q listed twice in [function].%s", name, field)
			continue
		}
		seen[name] = struct{}{}
		t, ok := tensors[name]
		if !ok {
			l.errorf(diag.GroupUnknownTensor, l.subject(name), "[function].%s names unknown tensor %q", field, name)
			continue
		}
		out = append(out, t)
	}
	return out
}
