package value

// Function is a compiled callable: bytecode chunk, declared arity, the
// closure environment captured when the function expression was
// evaluated, and optional parameter/return type annotations (spec §3.2).
//
// Chunk and Closure are stored as interface{} to avoid an import cycle —
// pkg/bytecode's Chunk already holds []Value constants, so Chunk cannot
// import Function back. pkg/vm, which owns both concrete types, is
// responsible for the type assertion; the documented contract is:
//
//	Chunk   always asserts to *bytecode.Chunk
//	Closure always asserts to *vm.ClosureFrame (nil for the top-level
//	        script function and for functions with no captured scope)
type Function struct {
	header
	Name       string
	Arity      int
	Chunk      interface{}
	Closure    interface{}
	ParamTypes []string // annotation tags per spec §6; "" = unannotated
	ReturnType string   // "" = unannotated
	IsMethod   bool
	Upvalues   []UpvalueDesc
}

// UpvalueDesc describes one value a closure captures at creation time
// (spec §4.4's lexical scope chain applied to nested function literals).
// Capture is by value-copy rather than by shared mutable cell: Neutron's
// GC root set (spec §4.3) has no "open upvalues" root, which only holds
// if a captured variable can never be mutated through a second live
// reference after the closure is made — so OpClosure snapshots each
// descriptor's current value once, and mutation after capture is only
// visible through the closure if the captured Value is itself a
// reference type (array/object/instance).
type UpvalueDesc struct {
	Index     int  // slot in the enclosing function's locals, or index into its Upvalues
	FromLocal bool // true: Index is an enclosing local slot; false: Index is an enclosing upvalue
}

func (f *Function) ObjectKind() Kind { return KindCallable }
func (f *Function) ToString() string {
	if f.Name == "" {
		return "<function>"
	}
	return "<function " + f.Name + ">"
}

// NativeFn wraps a host-language function exposed to Neutron code, either
// through a built-in module or a dynamically loaded native extension
// (spec §3.2, §4.8). Arity -1 marks a variadic function.
type NativeFn struct {
	header
	Name  string
	Arity int
	Fn    func(vm interface{}, args []Value) (Value, error)
}

func (n *NativeFn) ObjectKind() Kind { return KindCallable }
func (n *NativeFn) ToString() string { return "<native fn " + n.Name + ">" }

// BoundMethod pairs a receiver value with a Function; calling it prepends
// the receiver to the argument list (spec §3.2).
type BoundMethod struct {
	header
	Receiver Value
	Method   *Function
}

func (b *BoundMethod) ObjectKind() Kind { return KindCallable }
func (b *BoundMethod) ToString() string { return "<bound method " + b.Method.Name + ">" }

// ArrayMethodName/StringMethodName enumerate the fixed built-in method
// sets the VM dispatches internally for BoundArrayMethod/BoundStringMethod
// rather than storing real Function values (spec §3.2, §4.2).
type ArrayMethodName string

const (
	ArrayLength   ArrayMethodName = "length"
	ArrayPush     ArrayMethodName = "push"
	ArrayPop      ArrayMethodName = "pop"
	ArraySlice    ArrayMethodName = "slice"
	ArrayMap      ArrayMethodName = "map"
	ArrayFilter   ArrayMethodName = "filter"
	ArrayFind     ArrayMethodName = "find"
	ArrayIndexOf  ArrayMethodName = "indexOf"
	ArrayJoin     ArrayMethodName = "join"
	ArrayReverse  ArrayMethodName = "reverse"
	ArraySort     ArrayMethodName = "sort"
)

type StringMethodName string

const (
	StringLength    StringMethodName = "length"
	StringContains  StringMethodName = "contains"
	StringSplit     StringMethodName = "split"
	StringSubstring StringMethodName = "substring"
)

// BoundArrayMethod pairs an array with one of the fixed method names above.
type BoundArrayMethod struct {
	header
	Receiver *Array
	Name     ArrayMethodName
}

func (b *BoundArrayMethod) ObjectKind() Kind { return KindCallable }
func (b *BoundArrayMethod) ToString() string { return "<array method " + string(b.Name) + ">" }

// BoundStringMethod pairs a string with one of the fixed method names above.
type BoundStringMethod struct {
	header
	Receiver *String
	Name     StringMethodName
}

func (b *BoundStringMethod) ObjectKind() Kind { return KindCallable }
func (b *BoundStringMethod) ToString() string { return "<string method " + string(b.Name) + ">" }
