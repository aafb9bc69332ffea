package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStreamTracerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf, Format: FormatText})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	root := Begin(tr, ScopePass, "lower", 0)
	fn := Begin(tr, ScopeFunc, "func:k", root.ID())
	fn.End("")
	Point(tr, ScopeNode, "tensor:A", root.ID(), "", nil)
	root.WithExtra("funcs", "1").End("done")

	out := buf.String()
	if strings.Contains(out, "func:k") || strings.Contains(out, "tensor:A") {
		t.Fatalf("phase level emitted fine-grained events:\n%s", out)
	}
	if !strings.Contains(out, "→ lower") || !strings.Contains(out, "← lower (done) {funcs=1}") {
		t.Fatalf("missing pass span:\n%s", out)
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "tensor:B", 3, "local", map[string]string{"memory": "local"})

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["kind"] != "point" || got["scope"] != "node" || got["name"] != "tensor:B" {
		t.Fatalf("unexpected event: %v", got)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(r, ScopeNode, name, 0, "", nil)
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	for i, want := range []string{"b", "c", "d"} {
		if snap[i].Name != want {
			t.Fatalf("snap[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()).Enabled() {
		t.Fatalf("empty context must yield a disabled tracer")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
	if sp := Begin(Nop, ScopePass, "x", 0); sp.End("") != 0 {
		t.Fatalf("nop span reported a duration")
	}
}
