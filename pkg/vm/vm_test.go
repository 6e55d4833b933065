package vm

import (
	"strings"
	"testing"

	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/parser"
)

// captureOutput is a Printer that collects everything say() and the fmt
// built-in module write, so tests can assert on program output instead
// of reaching into VM internals.
type captureOutput struct {
	sb strings.Builder
}

func (c *captureOutput) Print(s string) { c.sb.WriteString(s) }

// runSource compiles and interprets src against a fresh VM, returning
// captured say() output.
func runSource(t *testing.T, src string) string {
	t.Helper()
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
	if _, err := m.Interpret(fn); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return out.sb.String()
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{`say(42);`, "42\n"},
		{`say("hello");`, "hello\n"},
		{`say(true);`, "true\n"},
		{`say(nil);`, "nil\n"},
	}
	for _, tt := range tests {
		if got := runSource(t, tt.src); got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.src, got, tt.expected)
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{`say(1 + 2);`, "3\n"},
		{`say(10 - 4);`, "6\n"},
		{`say(3 * 4);`, "12\n"},
		{`say(10 / 4);`, "2.5\n"},
		{`say(2 + 3 * 4);`, "14\n"},
		{`say((2 + 3) * 4);`, "20\n"},
	}
	for _, tt := range tests {
		if got := runSource(t, tt.src); got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.src, got, tt.expected)
		}
	}
}

func TestGlobalsAndLocals(t *testing.T) {
	src := `
		var x = 10;
		fun addOne(n) {
			var y = n + 1;
			return y;
		}
		say(addOne(x));
	`
	if got := runSource(t, src); got != "11\n" {
		t.Errorf("got %q, want %q", got, "11\n")
	}
}

func TestIfElif(t *testing.T) {
	src := `
		fun classify(n) {
			if (n < 0) {
				return "negative";
			} elif (n == 0) {
				return "zero";
			} else {
				return "positive";
			}
		}
		say(classify(-5));
		say(classify(0));
		say(classify(5));
	`
	if got := runSource(t, src); got != "negative\nzero\npositive\n" {
		t.Errorf("got %q", got)
	}
}

func TestWhileLoop(t *testing.T) {
	src := `
		var i = 0;
		var total = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
		say(total);
	`
	if got := runSource(t, src); got != "10\n" {
		t.Errorf("got %q, want %q", got, "10\n")
	}
}

func TestForLoop(t *testing.T) {
	src := `
		var total = 0;
		for (var i = 0; i < 5; i = i + 1) {
			total = total + i;
		}
		say(total);
	`
	if got := runSource(t, src); got != "10\n" {
		t.Errorf("got %q, want %q", got, "10\n")
	}
}

func TestRecursion(t *testing.T) {
	src := `
		fun fib(n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		say(fib(10));
	`
	if got := runSource(t, src); got != "55\n" {
		t.Errorf("got %q, want %q", got, "55\n")
	}
}

func TestArrayLiteralAndMethods(t *testing.T) {
	src := `
		var a = [1, 2, 3];
		a.push(4);
		say(a.length());
		say(a.pop());
	`
	if got := runSource(t, src); got != "4\n4\n" {
		t.Errorf("got %q, want %q", got, "4\n4\n")
	}
}
