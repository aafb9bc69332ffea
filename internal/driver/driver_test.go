package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tessel/internal/diag"
	"tessel/internal/emit"
	"tessel/internal/ir"
	"tessel/internal/target"
	"tessel/internal/testkit"
)

var (
	scaleFile  = filepath.Join("testdata", "ok", "scale.group.toml")
	splitFile  = filepath.Join("testdata", "ok", "split.group.toml")
	cycleFile  = filepath.Join("testdata", "bad", "cycle.group.toml")
	syntaxFile = filepath.Join("testdata", "bad", "syntax.group.toml")
)

func argSummary(f *ir.LoweredFunc) []string {
	out := make([]string, len(f.Args))
	for i, a := range f.Args {
		out[i] = a.IO.String() + " " + a.Name()
	}
	return out
}

func diagCodes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestListGroupFiles(t *testing.T) {
	files, err := ListGroupFiles([]string{"testdata", scaleFile})
	require.NoError(t, err)
	assert.Equal(t, []string{cycleFile, syntaxFile, scaleFile, splitFile}, files)

	_, err = ListGroupFiles([]string{filepath.Join("testdata", "absent")})
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "scale.lowered.mp"), OutputPath("out", scaleFile, emit.FormatMsgpack))
	assert.Equal(t, filepath.Join("out", "k.lowered.txt"), OutputPath("out", "k.toml", emit.FormatText))
}

func TestLowerFilesHost(t *testing.T) {
	out := t.TempDir()
	results, err := LowerFiles(context.Background(), []string{scaleFile, splitFile}, Options{
		Target: target.Host(),
		Emit:   emit.FormatText,
		OutDir: out,
		Jobs:   2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	scale := results[0]
	require.False(t, scale.Failed(), "diagnostics: %v", scale.Bag.Items())
	require.Len(t, scale.Funcs, 1)
	f := scale.Funcs[0]
	assert.Equal(t, "scale", f.Name)
	assert.Equal(t, []string{"in alpha", "in _A", "out _C"}, argSummary(f))
	require.Len(t, f.TempBuffers, 1)
	assert.Equal(t, "_B", f.TempBuffers[0].Name)
	require.NoError(t, testkit.CheckFuncInvariants(f))

	data, err := os.ReadFile(scale.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fn scale(in alpha: float32")

	split := results[1]
	require.False(t, split.Failed(), "diagnostics: %v", split.Bag.Items())
	assert.Len(t, split.Funcs, 1, "host targets never split")

	names := make([]string, 0, len(scale.Timing.Phases))
	for _, p := range scale.Timing.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"load", "lower", "emit"}, names)
}

func TestLowerFileAccelerator(t *testing.T) {
	res := LowerFile(context.Background(), splitFile, Options{Target: target.NVGPU()})
	require.False(t, res.Failed(), "diagnostics: %v", res.Bag.Items())
	assert.Empty(t, res.Output)
	require.Len(t, res.Funcs, 2)

	first, second := res.Funcs[0], res.Funcs[1]
	assert.Equal(t, "split", first.Name)
	assert.Equal(t, "split_1", second.Name)
	assert.Equal(t, []string{"in _X", "out _B"}, argSummary(first))
	assert.Equal(t, []string{"in _X", "in _B"}, argSummary(second))
	require.Len(t, first.TempBuffers, 1)
	assert.Equal(t, "_A", first.TempBuffers[0].Name)
	require.Len(t, second.TempBuffers, 1)
	assert.Equal(t, "_C", second.TempBuffers[0].Name)
	assert.NotEqual(t, first.Root().Name, second.Root().Name)
	for _, f := range res.Funcs {
		require.NoError(t, testkit.CheckFuncInvariants(f))
	}
}

func TestLowerFileFailures(t *testing.T) {
	cases := []struct {
		path string
		want diag.Code
	}{
		{cycleFile, diag.LowerCyclicGroup},
		{syntaxFile, diag.GroupBadExpr},
		{filepath.Join("testdata", "absent.group.toml"), diag.IOReadFailed},
	}
	for _, tc := range cases {
		res := LowerFile(context.Background(), tc.path, Options{Target: target.Host(), MaxDiagnostics: 8})
		assert.True(t, res.Failed(), tc.path)
		assert.Empty(t, res.Funcs, tc.path)
		assert.Contains(t, diagCodes(res.Bag), tc.want, tc.path)
	}
}

func TestLowerFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LowerFiles(ctx, []string{scaleFile}, Options{Target: target.Host()})
	assert.ErrorIs(t, err, context.Canceled)
}
