// Package vm - debugger support
package vm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yasakei/neutron/pkg/bytecode"
)

// Debugger provides interactive breakpoint/step debugging over the new
// CallFrame/Chunk dispatch loop, adapted from an earlier
// []Instruction-indexed debugger to
// Neutron's byte-stream Chunk and multi-frame call stack.
type Debugger struct {
	vm          *VM
	breakpoints map[int]bool
	stepMode    bool
	enabled     bool
}

// NewDebugger creates a debugger attached to vm. Install it with
// vm.SetDebugger before calling Interpret.
func NewDebugger(vm *VM) *Debugger {
	return &Debugger{vm: vm, breakpoints: make(map[int]bool)}
}

// SetDebugger attaches d as the VM's debugger; the dispatch loop consults
// it once per instruction. Pass nil to detach.
func (m *VM) SetDebugger(d *Debugger) { m.debugger = d }

func (d *Debugger) Enable()  { d.enabled = true }
func (d *Debugger) Disable() { d.enabled = false }

func (d *Debugger) SetStepMode(enabled bool) { d.stepMode = enabled }

func (d *Debugger) AddBreakpoint(ip int)    { d.breakpoints[ip] = true }
func (d *Debugger) RemoveBreakpoint(ip int) { delete(d.breakpoints, ip) }
func (d *Debugger) ClearBreakpoints()       { d.breakpoints = make(map[int]bool) }

// ShouldPause reports whether execution should pause before the
// instruction at ip in the current frame's chunk.
func (d *Debugger) ShouldPause(ip int) bool {
	if !d.enabled {
		return false
	}
	return d.stepMode || d.breakpoints[ip]
}

func (d *Debugger) showCurrentInstruction(f *CallFrame, chunk *bytecode.Chunk) {
	fmt.Printf("  in %s:\n", f.Fn.Name)
	bytecode.DisassembleInstruction(chunk, os.Stdout, f.IP)
}

func (d *Debugger) showStack() {
	fmt.Println("Stack (top to bottom):")
	if len(d.vm.stack) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := len(d.vm.stack) - 1; i >= 0; i-- {
		fmt.Printf("  [%d] %s\n", i, d.vm.stack[i].ToString())
	}
}

func (d *Debugger) showLocals(f *CallFrame) {
	fmt.Println("Local variables:")
	if f.SlotOffset >= len(d.vm.stack) {
		fmt.Println("  (none set)")
		return
	}
	for i := f.SlotOffset; i < len(d.vm.stack); i++ {
		fmt.Printf("  [%d] %s\n", i-f.SlotOffset, d.vm.stack[i].ToString())
	}
}

func (d *Debugger) showGlobals() {
	fmt.Println("Global variables:")
	if len(d.vm.globals) == 0 {
		fmt.Println("  (none)")
		return
	}
	for name, val := range d.vm.globals {
		fmt.Printf("  %s = %s\n", name, val.ToString())
	}
}

// showHeap reports the collector's current roster size and threshold in
// human-readable form (spec §4.3's GC is otherwise invisible from source
// level, so this is the debugger's one window into it).
func (d *Debugger) showHeap() {
	fmt.Printf("Heap: %s objects tracked, next collection at %s\n",
		humanize.Comma(int64(len(d.vm.heap))), humanize.Comma(int64(d.vm.nextGC)))
}

func (d *Debugger) showCallStack() {
	fmt.Println("Call stack (top to bottom):")
	if len(d.vm.frames) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := len(d.vm.frames) - 1; i >= 0; i-- {
		frame := d.vm.frames[i]
		fmt.Printf("  %s [IP: %d]\n", frame.Fn.Name, frame.IP)
	}
}

func (d *Debugger) listInstructions(chunk *bytecode.Chunk, currentIP int) {
	fmt.Println("Instructions:")
	offset := 0
	for offset < len(chunk.Code) {
		marker := "  "
		if offset == currentIP {
			marker = "->"
		} else if d.breakpoints[offset] {
			marker = "*"
		}
		fmt.Print(marker)
		offset = bytecode.DisassembleInstruction(chunk, os.Stdout, offset)
	}
}

// InteractivePrompt is called from run()'s dispatch loop when ShouldPause
// reports true. It returns false to abort execution (raised as a
// RuntimeError by the caller), true to resume.
func (d *Debugger) InteractivePrompt(f *CallFrame, chunk *bytecode.Chunk) bool {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("\n=== Debugger Paused ===")
	d.showCurrentInstruction(f, chunk)

	for {
		fmt.Print("debug> ")
		if !scanner.Scan() {
			return false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		command := parts[0]

		switch command {
		case "help", "h", "?":
			d.printHelp()
		case "continue", "c":
			d.SetStepMode(false)
			return true
		case "step", "s", "next", "n":
			d.SetStepMode(true)
			return true
		case "stack", "st":
			d.showStack()
		case "locals", "l":
			d.showLocals(f)
		case "globals", "g":
			d.showGlobals()
		case "callstack", "cs":
			d.showCallStack()
		case "heap", "gc":
			d.showHeap()
		case "instruction", "i":
			d.showCurrentInstruction(f, chunk)
		case "breakpoint", "b":
			if len(parts) < 2 {
				fmt.Println("Usage: breakpoint <offset>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Invalid offset")
				continue
			}
			d.AddBreakpoint(ip)
			fmt.Printf("Breakpoint added at offset %d\n", ip)
		case "delete", "d":
			if len(parts) < 2 {
				fmt.Println("Usage: delete <offset>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Invalid offset")
				continue
			}
			d.RemoveBreakpoint(ip)
			fmt.Printf("Breakpoint removed at offset %d\n", ip)
		case "list", "ls":
			d.listInstructions(chunk, f.IP)
		case "quit", "q":
			return false
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", command)
		}
	}
}

func (d *Debugger) printHelp() {
	fmt.Println("Debugger Commands:")
	fmt.Println("  help, h, ?           Show this help")
	fmt.Println("  continue, c          Continue execution")
	fmt.Println("  step, s, next, n     Execute one instruction and pause again")
	fmt.Println("  stack, st            Show operand stack")
	fmt.Println("  locals, l            Show current frame's locals")
	fmt.Println("  globals, g           Show global variables")
	fmt.Println("  callstack, cs        Show call stack")
	fmt.Println("  heap, gc             Show heap roster size and next GC threshold")
	fmt.Println("  instruction, i       Show current instruction")
	fmt.Println("  breakpoint <n>, b    Add breakpoint at chunk offset n")
	fmt.Println("  delete <n>, d        Remove breakpoint at chunk offset n")
	fmt.Println("  list, ls             List all instructions in the current chunk")
	fmt.Println("  quit, q              Abort execution")
}
