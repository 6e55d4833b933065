package vm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/parser"
)

func TestUseBuiltinModule(t *testing.T) {
	src := `
		use math;
		say(math.sqrt(16));
	`
	if got := runSource(t, src); got != "4\n" {
		t.Errorf("got %q, want %q", got, "4\n")
	}
}

func TestUseSourceModule(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greeter.nt"), []byte(`
		fun hello(name) {
			return "hi " + name;
		}
	`), 0644); err != nil {
		t.Fatal(err)
	}

	src := `
		use greeter;
		say(greeter.hello("world"));
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
	m.moduleSearchPaths = []string{dir}

	if _, err := m.Interpret(fn); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out.sb.String() != "hi world\n" {
		t.Errorf("got %q, want %q", out.sb.String(), "hi world\n")
	}
}

func TestUseIsCachedByName(t *testing.T) {
	src := `
		use math;
		use math;
		say(math.sqrt(9));
	`
	if got := runSource(t, src); got != "3\n" {
		t.Errorf("got %q, want %q", got, "3\n")
	}
}

func TestUsingMergesIntoCurrentGlobals(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "helpers.nt"), []byte(`
		var shared = 99;
	`), 0644); err != nil {
		t.Fatal(err)
	}

	src := `
		using "` + filepath.ToSlash(filepath.Join(dir, "helpers.nt")) + `";
		say(shared);
	`
	if got := runSource(t, src); got != "99\n" {
		t.Errorf("got %q, want %q", got, "99\n")
	}
}
