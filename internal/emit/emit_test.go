package emit

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"tessel/internal/ir"
	"tessel/internal/target"
)

func sampleFuncs() []*ir.LoweredFunc {
	a := ir.Buffer{ID: 1, Name: "_A", Memory: ir.MemHeap, DType: ir.TypeFloat32, Shape: []int{4}}
	b := ir.Buffer{ID: 2, Name: "_B", Memory: ir.MemHeap, DType: ir.TypeFloat32, Shape: []int{4}}
	tmp := ir.Buffer{ID: 3, Name: "_T", Memory: ir.MemLocal, DType: ir.TypeFloat32, Shape: []int{4}}
	bt := &ir.Tensor{Name: "B", Kind: ir.TensorCompute, DType: ir.TypeFloat32, Shape: []int{4}}
	body := ir.NewBlock(&ir.Store{Tensor: bt, Value: &ir.Const{Value: 1}})
	return []*ir.LoweredFunc{{
		Name: "k",
		Args: []ir.Argument{
			ir.ScalarArgument(ir.Var{Name: "n", Type: ir.TypeInt32}),
			ir.BufferArgument(a, ir.IOInput),
			ir.BufferArgument(b, ir.IOOutput),
		},
		Body:        ir.NewBlock(&ir.Schedule{Name: "root_3", Body: body}),
		TempBuffers: []ir.Buffer{tmp},
	}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("msgpack")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, f)
	assert.Equal(t, ".lowered.mp", f.Ext())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, "k.group.toml", target.NVGPU(), sampleFuncs()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "// k.group.toml (target nvgpu)\n"), out)
	assert.Contains(t, out, "fn k(in n: int32, in _A: float32[4]@heap, out _B: float32[4]@heap) {")
	assert.Contains(t, out, "temps: _T@local")
	assert.Contains(t, out, "schedule root_3 {")
}

func TestArtifactFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "k"+FormatMsgpack.Ext())
	require.NoError(t, WriteFile(path, FormatMsgpack, "k.group.toml", target.Host(), sampleFuncs()))

	a, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, a.Schema)
	assert.Equal(t, "k.group.toml", a.Source)
	require.Len(t, a.Funcs, 1)

	fn := a.Funcs[0]
	assert.Equal(t, "k", fn.Name)
	assert.Equal(t, "root_3", fn.Root)
	require.Len(t, fn.Args, 3)
	assert.True(t, fn.Args[0].Scalar)
	assert.Nil(t, fn.Args[0].Buffer)
	assert.Equal(t, "_B", fn.Args[2].Name)
	assert.True(t, fn.Args[2].Output)
	require.NotNil(t, fn.Args[2].Buffer)
	assert.Equal(t, []int{4}, fn.Args[2].Buffer.Shape)
	assert.Equal(t, []BufferRecord{{Name: "_T", Memory: "local", DType: "float32", Shape: []int{4}}}, fn.Temps)
	assert.Contains(t, fn.Body, "schedule root_3")
}

func TestReadArtifactSchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&Artifact{Schema: SchemaVersion + 1}))
	_, err := ReadArtifact(&buf)
	assert.ErrorContains(t, err, "schema")
}
