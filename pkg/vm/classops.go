package vm

import "github.com/yasakei/neutron/pkg/value"

// inherit implements OP_INHERIT: pops the superclass (top) then the
// subclass, links them, and pushes the subclass back so the compiler's
// subsequent method-attachment sequence can keep operating on it.
func (m *VM) inherit() error {
	superVal := m.pop()
	subVal := m.pop()
	super, ok := superVal.AsObject().(*value.Class)
	if !ok {
		return m.fail(TypeErrorKind, "superclass must be a class, got %s", superVal.Kind())
	}
	sub := subVal.AsObject().(*value.Class)
	sub.Super = super
	sub.Initializer = super.Initializer
	m.push(subVal)
	return nil
}

// bindMethod implements OP_METHOD: pops the just-closed-over Function and
// attaches it to the class now on top of the stack (left there for the
// next method, or for the final POP that ends the class declaration).
func (m *VM) bindMethod(name string) {
	fnVal := m.pop()
	cls := m.peek(0).AsObject().(*value.Class)
	if fn, ok := fnVal.AsObject().(*value.Function); ok {
		fn.IsMethod = true
	}
	cls.Methods[name] = fnVal
	if name == "init" || name == "initialize" {
		cls.Initializer = fnVal
	}
}

// getSuper implements OP_GET_SUPER: pops the superclass (top) then the
// instance, resolves name against the superclass's method chain, and
// pushes a BoundMethod bound to the original instance — so `super.foo()`
// runs foo with `this` still referring to the subclass instance.
func (m *VM) getSuper(name string) error {
	superVal := m.pop()
	instVal := m.pop()
	super, ok := superVal.AsObject().(*value.Class)
	if !ok {
		return m.fail(TypeErrorKind, "super must resolve to a class")
	}
	methodVal, found := super.FindMethod(name)
	if !found {
		return m.fail(ReferenceErrorKind, "undefined method '%s' on superclass %s", name, super.Name)
	}
	fn, ok := methodVal.AsObject().(*value.Function)
	if !ok {
		return m.fail(RuntimeErrorKind, "malformed superclass method '%s'", name)
	}
	m.push(value.FromObject(&value.BoundMethod{Receiver: instVal, Method: fn}))
	return nil
}
