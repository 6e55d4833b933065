// Package diag renders an uncaught *vm.RuntimeError the way spec §7
// describes: the taxonomy kind and message, the innermost stack frame's
// source line with a caret under its first non-blank character (when the
// source file can still be read; stack frames carry a line but no column,
// so the caret does not point at the offending column), a kind-based
// one-line suggestion, and the full
// call-stack trace — colorized when the output is a terminal.
//
// Grounded on pkg/vm/errors.go's RuntimeError.Error() stack-trace
// rendering, extended with the source-excerpt/caret/suggestion layers
// spec §7 adds on top of the bare message the VM package itself produces.
package diag

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/yasakei/neutron/pkg/vm"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31;1m"
	colorYellow = "\x1b[33m"
	colorDim    = "\x1b[2m"
	colorCyan   = "\x1b[36m"
)

// Report writes err to out. A plain error is printed as-is; a
// *vm.RuntimeError gets the full spec §7 treatment.
func Report(out *os.File, err error) {
	if err == nil {
		return
	}
	rerr, ok := err.(*vm.RuntimeError)
	if !ok {
		fmt.Fprintln(out, err)
		return
	}
	color := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	reportRuntimeError(out, rerr, color)
}

func reportRuntimeError(out *os.File, rerr *vm.RuntimeError, color bool) {
	var b strings.Builder

	if color {
		fmt.Fprintf(&b, "%s%s%s: %s\n", colorRed, rerr.Kind, colorReset, rerr.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", rerr.Kind, rerr.Message)
	}

	if len(rerr.StackTrace) > 0 {
		top := rerr.StackTrace[len(rerr.StackTrace)-1]
		if excerpt, ok := sourceExcerpt(top.SourceFile, top.SourceLine); ok {
			b.WriteString("\n")
			if color {
				fmt.Fprintf(&b, "%s--> %s:%d%s\n", colorDim, top.SourceFile, top.SourceLine, colorReset)
			} else {
				fmt.Fprintf(&b, "--> %s:%d\n", top.SourceFile, top.SourceLine)
			}
			b.WriteString(excerpt)
		}

		if s := suggestion(rerr.Kind); s != "" {
			if color {
				fmt.Fprintf(&b, "\n%shint:%s %s\n", colorYellow, colorReset, s)
			} else {
				fmt.Fprintf(&b, "\nhint: %s\n", s)
			}
		}

		b.WriteString("\nStack trace:")
		for i := len(rerr.StackTrace) - 1; i >= 0; i-- {
			frame := rerr.StackTrace[i]
			name := frame.Name
			if frame.Selector != "" {
				name = name + "." + frame.Selector
			}
			if color {
				fmt.Fprintf(&b, "\n  at %s%s%s (%s:%d)", colorCyan, name, colorReset, frame.SourceFile, frame.SourceLine)
			} else {
				fmt.Fprintf(&b, "\n  at %s (%s:%d)", name, frame.SourceFile, frame.SourceLine)
			}
		}
	}

	fmt.Fprintln(out, b.String())
}

// sourceExcerpt reads line `lineNo` (1-indexed) out of path and renders it
// with a caret line underneath. Returns ok=false if the file can't be
// read (e.g. a REPL input with no backing file) — the caller just skips
// the excerpt rather than failing the whole report.
func sourceExcerpt(path string, lineNo int) (string, bool) {
	if path == "" || lineNo <= 0 {
		return "", false
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	current := 0
	for scanner.Scan() {
		current++
		if current == lineNo {
			line := scanner.Text()
			var b strings.Builder
			fmt.Fprintf(&b, "  %d | %s\n", lineNo, line)
			fmt.Fprintf(&b, "  %s | %s^\n", strings.Repeat(" ", digits(lineNo)), strings.Repeat(" ", leadingWhitespace(line)))
			return b.String(), true
		}
	}
	return "", false
}

func digits(n int) int {
	if n == 0 {
		return 1
	}
	count := 0
	for n > 0 {
		count++
		n /= 10
	}
	return count
}

func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

// suggestion returns a one-line heuristic hint for the given error kind,
// or "" if none applies (spec §7 leaves suggestions as an implementation
// nicety, not a required-exhaustive table).
func suggestion(kind vm.ErrorKind) string {
	switch kind {
	case vm.TypeErrorKind:
		return "check that both operands have the type this operation expects"
	case vm.ReferenceErrorKind:
		return "check that the name is declared before this point, and spelled correctly"
	case vm.RangeErrorKind:
		return "check the index against the collection's length before accessing it"
	case vm.ArgumentErrorKind:
		return "check the number of arguments passed against the function's parameter list"
	case vm.DivisionErrorKind:
		return "check the divisor isn't zero before dividing"
	case vm.StackErrorKind:
		return "check for a recursive call that never reaches its base case"
	case vm.ModuleErrorKind:
		return "check the module name and that it's on the module search path"
	case vm.IOErrorKind:
		return "check the file path exists and is readable"
	default:
		return ""
	}
}
