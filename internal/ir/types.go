package ir

// ScalarType is the element type of a scalar argument or a tensor.
type ScalarType uint8

const (
	TypeInvalid ScalarType = iota
	TypeVoid
	TypeBool
	TypeInt32
	TypeInt64
	TypeFloat16
	TypeFloat32
	TypeFloat64
)

// Valid reports whether t names a concrete value type.
func (t ScalarType) Valid() bool {
	return t != TypeInvalid && t != TypeVoid
}

func (t ScalarType) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat16:
		return "float16"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	default:
		return "invalid"
	}
}

// ParseScalarType maps a type name to ScalarType. Unknown names yield TypeInvalid.
func ParseScalarType(s string) ScalarType {
	switch s {
	case "void":
		return TypeVoid
	case "bool":
		return TypeBool
	case "int32", "i32":
		return TypeInt32
	case "int64", "i64":
		return TypeInt64
	case "float16", "f16":
		return TypeFloat16
	case "float32", "f32":
		return TypeFloat32
	case "float64", "f64":
		return TypeFloat64
	default:
		return TypeInvalid
	}
}

// Var is a named scalar parameter of a lowered function.
type Var struct {
	Name string
	Type ScalarType
}
