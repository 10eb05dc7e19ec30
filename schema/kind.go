package schema

// TypeKind is the closed set of type kinds: the twelve atomic kinds plus
// the four constructed kinds. Variables carry the kind of their base type.
type TypeKind int

const (
	KindNone TypeKind = iota

	// Atomic kinds, in ascending-width order within each family.
	KindInt8
	KindUInt8
	KindChar
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindString

	// Constructed kinds.
	KindEnum
	KindOpaque
	KindStruct
	KindSequence
)

// VLenHandleSize is the fixed size of a variable-length runtime handle
// (pointer plus count). Sequence-typed and variable-size opaque fields
// occupy exactly one handle inside a compound layout, independent of their
// element type.
const VLenHandleSize = 16

// StringHandleSize is the in-memory width of one text value: a single
// pointer. Text attribute values are carried as independent handles, never
// packed, so this matters only for compound field layout.
const StringHandleSize = 8

var kindNames = map[TypeKind]string{
	KindInt8:     "int8",
	KindUInt8:    "uint8",
	KindChar:     "char",
	KindInt16:    "int16",
	KindUInt16:   "uint16",
	KindInt32:    "int32",
	KindUInt32:   "uint32",
	KindInt64:    "int64",
	KindUInt64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindString:   "string",
	KindEnum:     "enum",
	KindOpaque:   "opaque",
	KindStruct:   "struct",
	KindSequence: "sequence",
}

// String returns the canonical lowercase name of the kind.
func (k TypeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// KindByName resolves a canonical kind name to its atomic kind. Only atomic
// kinds are resolvable by name; constructed types are referenced by path.
func KindByName(name string) (TypeKind, bool) {
	for k, s := range kindNames {
		if s == name && k.IsAtomic() {
			return k, true
		}
	}
	return KindNone, false
}

// IsAtomic reports whether the kind is one of the twelve primitive kinds.
func (k TypeKind) IsAtomic() bool {
	return k >= KindInt8 && k <= KindString
}

// IsSignedInt reports whether the kind is in the signed-integer family.
// Char parses through the signed family, matching its 8-bit storage.
func (k TypeKind) IsSignedInt() bool {
	switch k {
	case KindInt8, KindChar, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// IsUnsignedInt reports whether the kind is in the unsigned-integer family.
func (k TypeKind) IsUnsignedInt() bool {
	switch k {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return true
	}
	return false
}

// IsFloat reports whether the kind is in the floating family.
func (k TypeKind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Width returns the exact byte width of an atomic kind. The width of a
// string is the width of its handle. Constructed kinds have no fixed width
// here; their sizes are computed by the builder's offset calculator.
func (k TypeKind) Width() int {
	switch k {
	case KindInt8, KindUInt8, KindChar:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt32, KindUInt32, KindFloat32:
		return 4
	case KindInt64, KindUInt64, KindFloat64:
		return 8
	case KindString:
		return StringHandleSize
	default:
		return 0
	}
}
