package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/yasakei/neutron/internal/diag"
	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/parser"
	"github.com/yasakei/neutron/pkg/vm"
)

var (
	replConfigPath string
	replResumePath string
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Starts an interactive Neutron session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL()
	},
}

func init() {
	replCmd.Flags().StringVar(&replConfigPath, "config", "", "path to a .neutronrc.toml (default: ./.neutronrc.toml)")
	replCmd.Flags().StringVar(&replResumePath, "resume", "", "restore globals from a checkpoint before starting")
}

// runREPL reads one statement at a time, compiling and interpreting it
// against a single long-lived VM so `var` declarations made on one line
// are visible as globals on the next (pkg/vm's Globals REPL contract).
func runREPL() error {
	m, err := newVM(replConfigPath, replResumePath)
	if err != nil {
		return err
	}

	rl, err := readline.New("neutron> ")
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("neutron %s — :help for commands, :quit to exit\n", version)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if !handleREPLCommand(m, line) {
				return nil
			}
			continue
		}

		evalREPLLine(m, line)
	}
}

// handleREPLCommand runs a `:`-prefixed REPL command. Returns false when
// the REPL should exit.
func handleREPLCommand(m *vm.VM, cmd string) bool {
	switch {
	case cmd == ":quit" || cmd == ":exit":
		return false
	case cmd == ":help":
		fmt.Println("  :quit, :exit          Leave the REPL")
		fmt.Println("  :globals              List currently defined globals")
		fmt.Println("  :save <path>          Write a checkpoint of current globals")
		fmt.Println("  :help                 Show this message")
	case cmd == ":globals":
		for _, name := range varsOfKind(m) {
			fmt.Println(" ", name)
		}
	case strings.HasPrefix(cmd, ":save "):
		path := strings.TrimSpace(strings.TrimPrefix(cmd, ":save "))
		if path == "" {
			fmt.Println("usage: :save <path>")
			break
		}
		if err := saveCheckpoint(m, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	default:
		fmt.Printf("unknown command %q (:help for a list)\n", cmd)
	}
	return true
}

func evalREPLLine(m *vm.VM, line string) {
	if !strings.HasSuffix(line, ";") {
		line += ";"
	}
	p := parser.New(line)
	program, err := p.Parse()
	if err != nil {
		for _, e := range p.Errors() {
			fmt.Println(e)
		}
		return
	}

	fn, err := compiler.Compile(program)
	if err != nil {
		fmt.Println(err)
		return
	}

	if result, err := m.Interpret(fn); err != nil {
		diag.Report(os.Stderr, err)
	} else if !result.IsNil() {
		fmt.Println(result.ToString())
	}
}
