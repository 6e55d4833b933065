package vm

import (
	"testing"

	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/parser"
)

func TestTryCatch(t *testing.T) {
	src := `
		try {
			throw "boom";
		} catch (e) {
			say(e);
		}
	`
	if got := runSource(t, src); got != "boom\n" {
		t.Errorf("got %q", got)
	}
}

func TestTryNoThrowSkipsCatch(t *testing.T) {
	src := `
		try {
			say("ok");
		} catch (e) {
			say("caught");
		}
	`
	if got := runSource(t, src); got != "ok\n" {
		t.Errorf("got %q, want %q", got, "ok\n")
	}
}

// TestCatchThenFinallyBothRun verifies that when both a catch and a
// finally clause are present on the same try and an exception is
// thrown, catch runs first and finally still runs afterward — finally
// never bypasses a catch that's actually present (spec §9's "consumed
// rather than rethrown" note is about finally-without-catch only).
func TestCatchThenFinallyBothRun(t *testing.T) {
	src := `
		try {
			throw "boom";
		} catch (e) {
			say("caught:" + e);
		} finally {
			say("finally");
		}
	`
	if got := runSource(t, src); got != "caught:boom\nfinally\n" {
		t.Errorf("got %q, want %q", got, "caught:boom\nfinally\n")
	}
}

func TestFinallyAloneRuns(t *testing.T) {
	src := `
		try {
			say("body");
		} finally {
			say("finally");
		}
	`
	if got := runSource(t, src); got != "body\nfinally\n" {
		t.Errorf("got %q", got)
	}
}

func TestUncaughtThrowIsRuntimeError(t *testing.T) {
	p := parser.New(`throw "unhandled";`)
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn, err := compiler.Compile(program)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := New()
	if _, err := m.Interpret(fn); err == nil {
		t.Fatal("expected an uncaught-exception error, got nil")
	}
}
