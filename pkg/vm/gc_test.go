package vm

import (
	"testing"

	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/parser"
)

// TestGCKeepsReachableValues pins nextGC to 0 so a collection runs at the
// first safe point after the first allocation (collect() then raises the
// threshold to initialGCThreshold), and checks a program that allocates many
// throwaway arrays still produces the right answer for values it keeps
// around in locals/globals — i.e. the collector never reclaims anything
// still reachable from a real root.
func TestGCKeepsReachableValues(t *testing.T) {
	src := `
		var kept = [1, 2, 3];
		fun churn(n) {
			var i = 0;
			while (i < n) {
				var throwaway = [i, i, i];
				i = i + 1;
			}
			return kept.length();
		}
		say(churn(50));
	`
	p := parser.New(src)
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn, err := compiler.Compile(program)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	out := &captureOutput{}
	m := New()
	m.SetOutput(out)
	m.nextGC = 0 // collect at the first maybeCollect() check

	if _, err := m.Interpret(fn); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.sb.String() != "3\n" {
		t.Errorf("got %q, want %q", out.sb.String(), "3\n")
	}
}

// TestGCSweepsUnreachable confirms the heap roster actually shrinks once
// throwaway allocations fall out of scope and a collection runs.
func TestGCSweepsUnreachable(t *testing.T) {
	src := `
		fun churn(n) {
			var i = 0;
			while (i < n) {
				var throwaway = [i, i, i];
				i = i + 1;
			}
		}
		churn(100);
	`
	p := parser.New(src)
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn, err := compiler.Compile(program)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := New()
	if _, err := m.Interpret(fn); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	m.collect()
	if len(m.heap) > 5 {
		t.Errorf("expected the heap to be swept down to a handful of surviving objects, got %d", len(m.heap))
	}
}
