package vm

import (
	"os"
	"path/filepath"

	"github.com/yasakei/neutron/pkg/compiler"
	"github.com/yasakei/neutron/pkg/environment"
	"github.com/yasakei/neutron/pkg/module"
	"github.com/yasakei/neutron/pkg/parser"
	"github.com/yasakei/neutron/pkg/value"
)

// use implements the `use name;` statement (spec §4.5): resolve name
// against the built-in registry first (recognized by name, no filesystem
// search), then as a source module found on the search path, then as a
// native dynamic-library extension. A module already loaded under this
// name is returned from cache, making `use` idempotent.
func (m *VM) use(name string) error {
	if mod, ok := m.modules[name]; ok {
		m.globals[name] = value.FromObject(mod)
		return nil
	}

	if builtin, ok := module.Builtins[name]; ok {
		env := environment.New(nil)
		for fname, fn := range builtin.Natives(m) {
			env.Define(fname, value.FromObject(fn))
		}
		mod := &value.Module{Name: name, Env: env}
		m.modules[name] = mod
		m.globals[name] = value.FromObject(mod)
		return nil
	}

	if path, ok := m.findSourceModule(name); ok {
		mod, err := m.loadSourceModule(name, path)
		if err != nil {
			return err
		}
		m.modules[name] = mod
		m.globals[name] = value.FromObject(mod)
		return nil
	}

	if path, ok := m.findNativeModule(name); ok {
		mod, err := m.loadNativeModule(name, path)
		if err != nil {
			return err
		}
		m.modules[name] = mod
		m.globals[name] = value.FromObject(mod)
		return nil
	}

	return m.fail(ModuleErrorKind, "module '%s' not found", name)
}

// using implements `using "path.nt";` (spec §4.5): the file's top-level
// bindings are evaluated directly into the CURRENT global scope, not
// wrapped in a fresh Module the way `use` is — for splitting one
// program's globals across files without a namespace boundary.
func (m *VM) using(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return m.fail(IOErrorKind, "cannot read '%s': %v", path, err)
	}
	fn, err := compileSource(string(src))
	if err != nil {
		return m.fail(ModuleErrorKind, "%s: %v", path, err)
	}
	_, err = m.Interpret(fn)
	return err
}

func (m *VM) findSourceModule(name string) (string, bool) {
	for _, dir := range m.moduleSearchPaths {
		candidates := []string{
			filepath.Join(dir, name+".nt"),
			filepath.Join(dir, name, "init.nt"),
			filepath.Join(dir, "modules", name, "init.nt"),
		}
		for _, c := range candidates {
			if st, err := os.Stat(c); err == nil && !st.IsDir() {
				return c, true
			}
		}
	}
	return "", false
}

// loadSourceModule implements the globals-swap protocol of spec §4.5:
// save the caller's globals, execute the module body against a cleared
// global table, harvest the resulting bindings into a fresh Environment,
// then restore the caller's globals.
func (m *VM) loadSourceModule(name, path string) (*value.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, m.fail(IOErrorKind, "cannot read module '%s': %v", name, err)
	}
	fn, err := compileSource(string(src))
	if err != nil {
		return nil, m.fail(ModuleErrorKind, "%s: %v", path, err)
	}

	saved := m.globals
	savedTypes := m.globalTypes
	m.globals = make(map[string]value.Value)
	m.globalTypes = make(map[string]value.TypeTag)
	m.defineNatives()

	_, runErr := m.Interpret(fn)
	harvested := m.globals

	m.globals = saved
	m.globalTypes = savedTypes

	if runErr != nil {
		return nil, runErr
	}

	env := environment.New(nil)
	for k, v := range harvested {
		env.Define(k, v)
	}
	return &value.Module{Name: name, Env: env}, nil
}

func compileSource(src string) (*value.Function, error) {
	p := parser.New(src)
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return compiler.Compile(prog)
}
