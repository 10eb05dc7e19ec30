// Package store declares the destination typed-metadata-store interface the
// builder emits definitions against, along with the id types shared by every
// implementation. The builder is store-agnostic above this boundary; see
// store/memstore and store/sqlstore for implementations.
package store

import "github.com/monocle-ai/dapmeta/schema"

// Ids handed out by a store. Each id family is only meaningful to the store
// that issued it.
type (
	GroupID int64
	DimID   int64
	TypeID  int64
	VarID   int64
)

// GlobalAttributes is the variable id used to attach an attribute to a
// group rather than to a variable.
const GlobalAttributes VarID = -1

// UnlimitedDim is the dimension size that marks an unlimited (growable)
// dimension.
const UnlimitedDim uint64 = 0

// Well-known type ids for the atomic kinds. These are fixed across all
// store implementations; user-defined types are issued ids above MaxAtomic.
const (
	Int8 TypeID = iota + 1
	UInt8
	Char
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	String

	MaxAtomic = String
)

// AtomicID maps an atomic schema kind to its well-known type id.
func AtomicID(k schema.TypeKind) (TypeID, bool) {
	switch k {
	case schema.KindInt8:
		return Int8, true
	case schema.KindUInt8:
		return UInt8, true
	case schema.KindChar:
		return Char, true
	case schema.KindInt16:
		return Int16, true
	case schema.KindUInt16:
		return UInt16, true
	case schema.KindInt32:
		return Int32, true
	case schema.KindUInt32:
		return UInt32, true
	case schema.KindInt64:
		return Int64, true
	case schema.KindUInt64:
		return UInt64, true
	case schema.KindFloat32:
		return Float32, true
	case schema.KindFloat64:
		return Float64, true
	case schema.KindString:
		return String, true
	default:
		return 0, false
	}
}

// AttrData carries one attribute's encoded payload: packed fixed-width
// bytes for numeric base types, or independent text values for string base
// types. Exactly one of the two is populated.
type AttrData struct {
	Bytes   []byte
	Strings []string
}

// Store is the definition surface of a typed metadata store. Every call is
// blocking and returns a status; the first failure is fatal to the build
// pass that issued it. Definitions are never retracted: a store may be left
// partially populated after a failed build.
type Store interface {
	// CreateGroup defines a subgroup under an existing group.
	CreateGroup(parent GroupID, name string) (GroupID, error)

	// DefineDimension defines a named dimension. Size UnlimitedDim marks
	// the dimension unlimited.
	DefineDimension(g GroupID, name string, size uint64) (DimID, error)

	// DefineEnum defines an enumeration type over an integer base type.
	DefineEnum(g GroupID, name string, base TypeID) (TypeID, error)

	// InsertEnumConst adds one named constant to an enum type.
	InsertEnumConst(g GroupID, enum TypeID, name string, value int64) error

	// DefineOpaque defines a fixed-size opaque type.
	DefineOpaque(g GroupID, name string, size uint64) (TypeID, error)

	// DefineVLen defines a variable-length type over an element type.
	DefineVLen(g GroupID, name string, elem TypeID) (TypeID, error)

	// DefineCompound defines a compound type with the given total byte size.
	DefineCompound(g GroupID, name string, size uint64) (TypeID, error)

	// InsertField adds a scalar field to a compound type at a byte offset.
	InsertField(g GroupID, compound TypeID, name string, offset uint64, field TypeID) error

	// InsertArrayField adds an array field with per-dimension extents.
	InsertArrayField(g GroupID, compound TypeID, name string, offset uint64, field TypeID, extents []uint64) error

	// DefineVariable defines a variable with resolved dimension ids, in
	// declared order.
	DefineVariable(g GroupID, name string, typ TypeID, dims []DimID) (VarID, error)

	// PutAttribute commits one attribute (count values of the given type)
	// on a variable, or on the group itself when v is GlobalAttributes.
	PutAttribute(g GroupID, v VarID, name string, typ TypeID, count int, data AttrData) error

	// LookupType probes a group for an existing type of the given name.
	// Absence is not an error.
	LookupType(g GroupID, name string) (TypeID, bool)
}
