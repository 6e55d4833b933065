// Package vm - error handling with stack traces
package vm

import (
	"fmt"
	"strings"
)

// ErrorKind enumerates Neutron's throwable runtime error taxonomy (spec
// §7). SyntaxError and LexicalError are compile-time only — pkg/parser and
// pkg/compiler report those directly as Go errors before the VM ever runs —
// so they never appear here.
type ErrorKind string

const (
	TypeErrorKind      ErrorKind = "TypeError"
	ReferenceErrorKind ErrorKind = "ReferenceError"
	RangeErrorKind     ErrorKind = "RangeError"
	ArgumentErrorKind  ErrorKind = "ArgumentError"
	DivisionErrorKind  ErrorKind = "DivisionError"
	StackErrorKind     ErrorKind = "StackError"
	ModuleErrorKind    ErrorKind = "ModuleError"
	IOErrorKind        ErrorKind = "IOError"
	RuntimeErrorKind   ErrorKind = "RuntimeError"
)

// StackFrame represents a single frame in the call stack. Selector/IP carry
// over from an earlier Smalltalk-send era design
// but now describe a Neutron CallFrame: Name is the called Function's name
// (or "<script>"/"<native>"), Selector is unused for ordinary calls and
// reserved for native bound-method frames ("push", "map", ...).
type StackFrame struct {
	Name       string
	Selector   string
	IP         int
	SourceFile string
	SourceLine int
}

// RuntimeError is a fatal, uncaught Neutron error: a taxonomy kind, message,
// and the call-stack snapshot taken at the point it was raised (spec §7
// "Reporting" — rendered with file/line/message/stack trace when nothing
// catches it).
type RuntimeError struct {
	Kind       ErrorKind
	Message    string
	StackTrace []StackFrame
}

// Error implements the error interface, formatting the message with a
// stack trace in a top-frame-first rendering.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)

	if len(e.StackTrace) > 0 {
		b.WriteString("\n\nStack trace:")
		for i := len(e.StackTrace) - 1; i >= 0; i-- {
			frame := e.StackTrace[i]
			name := frame.Name
			if frame.Selector != "" {
				name = name + "." + frame.Selector
			}
			fmt.Fprintf(&b, "\n  at %s (%s:%d)", name, frame.SourceFile, frame.SourceLine)
		}
	}

	return b.String()
}

// newRuntimeError creates a new RuntimeError with the given taxonomy kind
// and message.
func newRuntimeError(kind ErrorKind, stack []StackFrame, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: stack,
	}
}
