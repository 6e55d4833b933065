package main

import (
	"fmt"
	"os"

	"github.com/yasakei/neutron/internal/config"
	"github.com/yasakei/neutron/pkg/checkpoint"
	"github.com/yasakei/neutron/pkg/vm"
)

// newVM builds a VM wired with an optional .neutronrc.toml (explicit path,
// falling back to config.DefaultFileName in the current directory) and, if
// resumePath is non-empty, a restored checkpoint.Snapshot of its globals.
func newVM(configPath, resumePath string) (*vm.VM, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	m := vm.New()
	m.AddModuleSearchPaths(cfg.ModuleSearchPaths)
	m.SetGCThreshold(cfg.GCThreshold)
	if home := cfg.Env(); home != "" {
		os.Setenv("NEUTRON_HOME", home)
	}

	if resumePath != "" {
		snap, err := checkpoint.Load(resumePath)
		if err != nil {
			return nil, fmt.Errorf("loading checkpoint %s: %w", resumePath, err)
		}
		snap.Restore(m.Globals())
		if len(snap.Skipped) > 0 {
			fmt.Fprintf(os.Stderr, "neutron: checkpoint %s omitted %d global(s) of unsupported kind: %v\n",
				resumePath, len(snap.Skipped), snap.Skipped)
		}
	}
	return m, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// saveCheckpoint captures m's globals and writes them to path, used by both
// `run --save` and the REPL's `:save` command.
func saveCheckpoint(m *vm.VM, path string) error {
	snap := checkpoint.Capture(m.Globals())
	if err := checkpoint.Save(path, snap); err != nil {
		return err
	}
	if len(snap.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "neutron: checkpoint omitted %d global(s) of unsupported kind: %v\n",
			len(snap.Skipped), snap.Skipped)
	}
	return nil
}

// varsOfKind is a small debug helper the REPL's `:globals` command uses to
// list currently-defined top-level names.
func varsOfKind(m *vm.VM) []string {
	var names []string
	for name, v := range m.Globals() {
		names = append(names, fmt.Sprintf("%s (%s)", name, v.Kind()))
	}
	return names
}
