package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:          "neutron",
	Version:      version,
	SilenceUsage: true,
	Short:        "Neutron is a dynamically-typed scripting language",
	Long: `Neutron is a dynamically-typed scripting language with a bytecode
compiler, a stack-based virtual machine, lexical closures, class-based
objects, exception handling, and a process model inspired by Erlang/OTP.`,
}

func init() {
	rootCmd.AddCommand(runCmd, replCmd, versionCmd)
}
