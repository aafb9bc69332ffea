// Package emit writes lowered functions as text listings or msgpack
// artifacts.
package emit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"tessel/internal/ir"
	"tessel/internal/target"
)

// Current schema version - increment when the Artifact layout changes
const SchemaVersion uint16 = 1

type Format uint8

const (
	FormatText Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "text"
}

// Ext is the file suffix written for f.
func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".lowered.mp"
	}
	return ".lowered.txt"
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "txt":
		return FormatText, nil
	case "msgpack", "mp", "bin":
		return FormatMsgpack, nil
	default:
		return FormatText, fmt.Errorf("unknown emit format %q (expected: text|msgpack)", s)
	}
}

// Artifact is the serialized result of lowering one tensor group.
type Artifact struct {
	Schema uint16
	Source string
	Target string
	Funcs  []FuncRecord
}

type FuncRecord struct {
	Name  string
	Root  string
	Args  []ArgRecord
	Temps []BufferRecord
	// Body is the text rendering of the schedule root.
	Body string
}

type ArgRecord struct {
	Name   string
	Scalar bool
	Output bool
	Type   string
	Buffer *BufferRecord `msgpack:",omitempty"`
}

type BufferRecord struct {
	Name   string
	Memory string
	DType  string
	Shape  []int
}

// NewArtifact snapshots funcs into their serializable form.
func NewArtifact(source string, tgt target.Target, funcs []*ir.LoweredFunc) *Artifact {
	a := &Artifact{
		Schema: SchemaVersion,
		Source: source,
		Target: tgt.String(),
		Funcs:  make([]FuncRecord, 0, len(funcs)),
	}
	for _, f := range funcs {
		rec := FuncRecord{
			Name:  f.Name,
			Args:  make([]ArgRecord, 0, len(f.Args)),
			Temps: make([]BufferRecord, 0, len(f.TempBuffers)),
		}
		if root := f.Root(); root != nil {
			rec.Root = root.Name
			rec.Body = ir.FormatStmt(root)
		}
		for _, arg := range f.Args {
			ar := ArgRecord{Name: arg.Name(), Output: arg.IsOutput()}
			if arg.Kind == ir.ArgScalar {
				ar.Scalar = true
				ar.Type = arg.Var.Type.String()
			} else {
				br := bufferRecord(arg.Buffer)
				ar.Type = br.DType
				ar.Buffer = &br
			}
			rec.Args = append(rec.Args, ar)
		}
		for _, b := range f.TempBuffers {
			rec.Temps = append(rec.Temps, bufferRecord(b))
		}
		a.Funcs = append(a.Funcs, rec)
	}
	return a
}

func bufferRecord(b ir.Buffer) BufferRecord {
	return BufferRecord{
		Name:   b.Name,
		Memory: b.Memory.String(),
		DType:  b.DType.String(),
		Shape:  b.Shape,
	}
}

// Write renders funcs to w in the given format.
func Write(w io.Writer, format Format, source string, tgt target.Target, funcs []*ir.LoweredFunc) error {
	switch format {
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(NewArtifact(source, tgt, funcs))
	case FormatText:
		if _, err := fmt.Fprintf(w, "// %s (target %s)\n", source, tgt); err != nil {
			return err
		}
		return ir.DumpFuncs(w, funcs)
	default:
		return fmt.Errorf("unsupported emit format %d", format)
	}
}

// ReadArtifact decodes a msgpack artifact and checks its schema.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := msgpack.NewDecoder(r).Decode(&a); err != nil {
		return nil, err
	}
	if a.Schema != SchemaVersion {
		return nil, fmt.Errorf("artifact schema %d, expected %d", a.Schema, SchemaVersion)
	}
	return &a, nil
}

// WriteFile writes funcs to path through a temporary file so readers never
// observe a partial artifact.
func WriteFile(path string, format Format, source string, tgt target.Target, funcs []*ir.LoweredFunc) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(f.Name()))
		}
	}()

	bw := bufio.NewWriter(f)
	if err = Write(bw, format, source, tgt, funcs); err != nil {
		_ = f.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Atomic replace
	return os.Rename(f.Name(), path)
}

// ReadFile reads an artifact written with FormatMsgpack.
func ReadFile(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadArtifact(bufio.NewReader(f))
}
