package vm

import (
	"os"
	"path/filepath"
	"plugin"

	"github.com/google/uuid"
	"github.com/yasakei/neutron/pkg/environment"
	"github.com/yasakei/neutron/pkg/module"
	"github.com/yasakei/neutron/pkg/value"
	"gopkg.in/yaml.v3"
)

// nativeEntrySymbol is the exported Go symbol a dynamically loaded
// extension must provide (spec §4.8's dlopen/dlsym contract, translated
// to Go's plugin package): a function taking the loading VM (as a
// module.Host, to keep this package decoupled from the extension build)
// and returning the natives it wants bound into its module Environment.
// Mirrors original_source/box/test_module/native.cpp's extern "C"
// neutron_module_init(NeutronVM*) entry point one level up, in Go terms.
const nativeEntrySymbol = "NeutronModuleInit"

// manifest is the optional <name>.manifest.yaml sidecar validated before
// a native extension is trusted (spec §4.5's "a mismatched native
// extension is a load-time ModuleError, not a silent partial load").
type manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (m *VM) findNativeModule(name string) (string, bool) {
	for _, dir := range m.moduleSearchPaths {
		candidates := []string{
			filepath.Join(dir, name+".so"),
			filepath.Join(dir, "modules", name, name+".so"),
		}
		for _, c := range candidates {
			if st, err := os.Stat(c); err == nil && !st.IsDir() {
				return c, true
			}
		}
	}
	return "", false
}

// loadNativeModule dlopen's the extension, validates its optional
// manifest sidecar, resolves its entry-point symbol, and harvests the
// natives it registers into a fresh module Environment. The handle is
// retained on the Module forever per spec §4.5 — Go's plugin package
// has no unload operation anyway.
func (m *VM) loadNativeModule(name, path string) (*value.Module, error) {
	if manifestPath := path[:len(path)-len(filepath.Ext(path))] + ".manifest.yaml"; fileExists(manifestPath) {
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, m.fail(ModuleErrorKind, "cannot read manifest for '%s': %v", name, err)
		}
		var mf manifest
		if err := yaml.Unmarshal(raw, &mf); err != nil {
			return nil, m.fail(ModuleErrorKind, "malformed manifest for '%s': %v", name, err)
		}
		if mf.Name != "" && mf.Name != name {
			return nil, m.fail(ModuleErrorKind, "manifest name '%s' does not match module '%s'", mf.Name, name)
		}
	}

	loadID := uuid.NewString()
	p, err := plugin.Open(path)
	if err != nil {
		return nil, m.fail(ModuleErrorKind, "cannot open native module '%s' (load %s): %v", name, loadID, err)
	}
	sym, err := p.Lookup(nativeEntrySymbol)
	if err != nil {
		return nil, m.fail(ModuleErrorKind, "native module '%s' (load %s) missing %s: %v", name, loadID, nativeEntrySymbol, err)
	}
	init, ok := sym.(func(interface{}) map[string]*value.NativeFn)
	if !ok {
		return nil, m.fail(ModuleErrorKind, "native module '%s' (load %s) has a malformed %s signature", name, loadID, nativeEntrySymbol)
	}

	env := environment.New(nil)
	for fname, nf := range init(module.Host(m)) {
		env.Define(fname, value.FromObject(nf))
	}
	return &value.Module{Name: name, Env: env, Handle: p, Native: true}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
