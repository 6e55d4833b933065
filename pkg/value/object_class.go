package value

// Class is a Neutron class object (spec §3.2): a name, a method table, a
// cached initializer for fast constructor dispatch, and an enclosing
// environment reference so methods can see module-level symbols declared
// lexically around the class declaration.
//
// Environment is declared in pkg/environment; Class stores it as an
// interface{} to avoid an import cycle (pkg/environment never needs to
// know about Class). pkg/vm casts it back via the Enclosing accessor's
// documented contract: always a *environment.Environment or nil.
type Class struct {
	header
	Name        string
	Super       *Class
	Methods     map[string]Value // name -> Function/NativeFn callable
	Initializer Value            // cached init/initialize method, or Nil()
	Enclosing   interface{}
}

// NewClass allocates a class with an empty method table.
func NewClass(name string, super *Class) *Class {
	return &Class{Name: name, Super: super, Methods: make(map[string]Value), Initializer: Nil()}
}

// FindMethod resolves name against this class, then its superclass chain.
func (c *Class) FindMethod(name string) (Value, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Super != nil {
		return c.Super.FindMethod(name)
	}
	return Nil(), false
}

func (c *Class) ObjectKind() Kind { return KindClass }
func (c *Class) ToString() string { return "<class " + c.Name + ">" }
