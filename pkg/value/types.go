package value

// TypeTag names one of the optional type annotations from spec §6:
// int, float, string, bool, array, object, any. "int" and "float" both
// map to the number Kind at runtime (Neutron has one numeric type); `any`
// matches everything, including nil (SPEC_FULL.md §5: the more permissive
// reading of the §9 open question — `any` also permits untyped
// reassignment since nothing narrows it).
type TypeTag string

const (
	TypeInt    TypeTag = "int"
	TypeFloat  TypeTag = "float"
	TypeString TypeTag = "string"
	TypeBool   TypeTag = "bool"
	TypeArray  TypeTag = "array"
	TypeObject TypeTag = "object"
	TypeAny    TypeTag = "any"
)

// Accepts reports whether v satisfies the annotation tag t, per spec
// §4.2's typed-assignment rule.
func (t TypeTag) Accepts(v Value) bool {
	switch t {
	case TypeAny, "":
		return true
	case TypeInt, TypeFloat:
		return v.Kind() == KindNumber
	case TypeString:
		return v.Kind() == KindString
	case TypeBool:
		return v.Kind() == KindBool
	case TypeArray:
		return v.Kind() == KindArray
	case TypeObject:
		return v.Kind() == KindObject
	default:
		return true
	}
}

// typeTagBytes/byteTypeTags give DEFINE_TYPED_GLOBAL/SET_LOCAL_TYPED a
// stable one-byte encoding for their type-tag operand (bytecode §3.4).
var typeTagBytes = map[TypeTag]byte{
	TypeAny: 0, TypeInt: 1, TypeFloat: 2, TypeString: 3,
	TypeBool: 4, TypeArray: 5, TypeObject: 6,
}

var byteTypeTags = [...]TypeTag{TypeAny, TypeInt, TypeFloat, TypeString, TypeBool, TypeArray, TypeObject}

// Byte returns this tag's one-byte bytecode encoding.
func (t TypeTag) Byte() byte {
	if b, ok := typeTagBytes[t]; ok {
		return b
	}
	return 0
}

// TypeTagFromByte decodes a type tag written by Byte.
func TypeTagFromByte(b byte) TypeTag {
	if int(b) < len(byteTypeTags) {
		return byteTypeTags[b]
	}
	return TypeAny
}

// TypeTagFromName maps a source-level type annotation identifier (spec §6)
// to its TypeTag, defaulting unrecognized names to TypeAny.
func TypeTagFromName(name string) TypeTag {
	switch name {
	case "int":
		return TypeInt
	case "float":
		return TypeFloat
	case "string":
		return TypeString
	case "bool":
		return TypeBool
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	default:
		return TypeAny
	}
}
