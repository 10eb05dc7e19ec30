package builder

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store"
)

// reservedAttrPrefix tags internal attributes carried through the schema
// graph for the builder's own use. They are filtered out before encoding
// and never reach the destination store.
const reservedAttrPrefix = "_edu.ucar."

// mapsAttrName is the reserved attribute holding a variable's ordered map
// references as fully-qualified names.
const mapsAttrName = reservedAttrPrefix + "maps"

// scalar carries one parsed value at full width before narrowing, one slot
// per numeric family.
type scalar struct {
	i int64
	u uint64
	f float64
}

// encodeAttribute converts an attribute's ordered textual values into one
// packed typed payload: count x width little-endian bytes for numeric base
// types, or an ordered string slice for text base types. Enum base types
// resolve each value against the enum's constants and pack the constant
// values at the underlying type's width.
func (b *Builder) encodeAttribute(attr *schema.Node) (store.AttrData, error) {
	base := attr.Base
	truebase := base
	if base.Kind == schema.KindEnum {
		truebase = base.Base
	}
	if !truebase.Kind.IsAtomic() {
		return store.AttrData{}, badType(attr.Name, "attribute base type %s is not encodable", base.Kind)
	}

	if truebase.Kind == schema.KindString {
		out := make([]string, len(attr.Values))
		copy(out, attr.Values)
		return store.AttrData{Strings: out}, nil
	}

	buf := make([]byte, 0, len(attr.Values)*truebase.Kind.Width())
	for _, text := range attr.Values {
		var sc scalar
		var err error
		if base.Kind == schema.KindEnum {
			sc, err = b.resolveEnumConst(base, text)
		} else {
			sc, err = parseScalar(truebase.Kind, text)
		}
		if err != nil {
			return store.AttrData{}, &BuildError{Kind: InvalidValue, Node: attr.Name, Message: "malformed attribute value", Err: err}
		}
		buf = appendNarrowed(buf, truebase.Kind, sc)
	}
	return store.AttrData{Bytes: buf}, nil
}

// parseScalar parses text under a kind's numeric family at full 64-bit
// width. Narrowing to the declared width happens later, without range
// checks beyond the parse itself.
func parseScalar(k schema.TypeKind, s string) (scalar, error) {
	s = strings.TrimSpace(s)
	switch {
	case k.IsSignedInt():
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return scalar{}, err
		}
		return scalar{i: v, u: uint64(v)}, nil
	case k.IsUnsignedInt():
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return scalar{}, err
		}
		return scalar{i: int64(v), u: v}, nil
	default: // floating family
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return scalar{}, err
		}
		return scalar{f: v}, nil
	}
}

// resolveEnumConst maps a textual value to an enum constant: first by exact
// name against the declared constants in order, then by parsing the text
// under the underlying integer family and matching constant values exactly.
func (b *Builder) resolveEnumConst(enum *schema.Node, text string) (scalar, error) {
	for _, c := range enum.Consts {
		if c.Name == text {
			return scalar{i: c.Value, u: uint64(c.Value)}, nil
		}
	}
	sc, err := parseScalar(enum.Base.Kind, text)
	if err == nil {
		for _, c := range enum.Consts {
			if uint64(c.Value) == sc.u {
				return scalar{i: c.Value, u: uint64(c.Value)}, nil
			}
		}
	}
	return scalar{}, invalidValue(enum.Name, "no enum constant matching value %q", text)
}

// appendNarrowed truncates a parsed value to the exact declared width of
// the kind and appends its little-endian bytes.
func appendNarrowed(buf []byte, k schema.TypeKind, sc scalar) []byte {
	switch k {
	case schema.KindInt8, schema.KindChar:
		return append(buf, byte(int8(sc.i)))
	case schema.KindUInt8:
		return append(buf, uint8(sc.u))
	case schema.KindInt16:
		return binary.LittleEndian.AppendUint16(buf, uint16(int16(sc.i)))
	case schema.KindUInt16:
		return binary.LittleEndian.AppendUint16(buf, uint16(sc.u))
	case schema.KindInt32:
		return binary.LittleEndian.AppendUint32(buf, uint32(int32(sc.i)))
	case schema.KindUInt32:
		return binary.LittleEndian.AppendUint32(buf, uint32(sc.u))
	case schema.KindInt64:
		return binary.LittleEndian.AppendUint64(buf, uint64(sc.i))
	case schema.KindUInt64:
		return binary.LittleEndian.AppendUint64(buf, sc.u)
	case schema.KindFloat32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(sc.f)))
	default: // KindFloat64
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(sc.f))
	}
}
