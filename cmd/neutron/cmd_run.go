package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yasakei/neutron/internal/diag"
	"github.com/yasakei/neutron/pkg/bytecode"
	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/parser"
)

var (
	runConfigPath string
	runResumePath string
	runSavePath   string
	runDisasm     bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Runs a Neutron source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(args[0])
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a .neutronrc.toml (default: ./.neutronrc.toml)")
	runCmd.Flags().StringVar(&runResumePath, "resume", "", "restore globals from a checkpoint before running")
	runCmd.Flags().StringVar(&runSavePath, "save", "", "write a checkpoint of globals after running")
	runCmd.Flags().BoolVar(&runDisasm, "disasm", false, "print disassembled bytecode instead of running")
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	p := parser.New(string(src))
	program, err := p.Parse()
	if err != nil {
		for _, e := range p.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fn, err := compiler.Compile(program)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", path, err)
	}

	if runDisasm {
		chunk := fn.Chunk.(*bytecode.Chunk)
		bytecode.Disassemble(chunk, path, os.Stdout)
		return nil
	}

	m, err := newVM(runConfigPath, runResumePath)
	if err != nil {
		return err
	}

	if _, err := m.Interpret(fn); err != nil {
		diag.Report(os.Stderr, err)
		os.Exit(1)
	}

	if runSavePath != "" {
		if err := saveCheckpoint(m, runSavePath); err != nil {
			return fmt.Errorf("saving checkpoint: %w", err)
		}
	}
	return nil
}
