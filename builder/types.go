package builder

import (
	"go.uber.org/zap"

	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store"
)

// bytestringName is the reserved name of the canonical variable-length
// byte type defined once in the root group for truly variable-size opaques.
const bytestringName = "_bytestring"

// compoundSuffix and innerSuffix are appended to synthesized names: one for
// the composite (or sequence wrapper) itself, one for a sequence's implicit
// inner compound row type.
const (
	compoundSuffix = "_t"
	innerSuffix    = "_cmpd_t"
)

// identityFor resolves where a type's real definition lives: its alternate
// identity when one is set, otherwise the synthesized name in its own
// enclosing group.
func (b *Builder) identityFor(t *schema.Node) (store.GroupID, string) {
	if t.AltName != "" && t.AltGroup != nil {
		return b.res.groups[t.AltGroup], t.AltName
	}
	return b.groupID(t), schema.FieldFQN(t, compoundSuffix)
}

// buildEnumeration defines an enum type and inserts its constants in
// declared order.
func (b *Builder) buildEnumeration(en *schema.Node) error {
	g := b.groupID(en)
	base, err := b.typeID(en.Base)
	if err != nil {
		return err
	}
	id, err := b.st.DefineEnum(g, en.Name, base)
	if err != nil {
		return storeFailure(en.Name, err)
	}
	b.res.types[en] = id
	for _, c := range en.Consts {
		if err := b.st.InsertEnumConst(g, id, c.Name, c.Value); err != nil {
			return storeFailure(c.Name, err)
		}
	}
	b.log.Debug("defined enum", zap.String("name", en.Name), zap.Int("consts", len(en.Consts)))
	return nil
}

// buildOpaque defines a fixed-size opaque type, honoring an alternate
// identity when present. A zero size means truly variable length: every
// such node aliases the single byte-vlen type defined lazily in the root
// group under its reserved name.
func (b *Builder) buildOpaque(op *schema.Node) error {
	if op.OpaqueSize > 0 {
		g, name := b.groupID(op), op.Name
		if op.AltName != "" && op.AltGroup != nil {
			g, name = b.res.groups[op.AltGroup], op.AltName
		}
		id, err := b.st.DefineOpaque(g, name, op.OpaqueSize)
		if err != nil {
			return storeFailure(name, err)
		}
		b.res.types[op] = id
		return nil
	}

	if b.bytestring == 0 {
		root := b.res.groups[b.ds.Root]
		if id, ok := b.st.LookupType(root, bytestringName); ok {
			b.bytestring = id
		} else {
			id, err := b.st.DefineVLen(root, bytestringName, store.UInt8)
			if err != nil {
				return storeFailure(bytestringName, err)
			}
			b.bytestring = id
		}
	}
	b.res.types[op] = b.bytestring
	return nil
}

// buildStructType defines a structure as a compound type. When the same
// logical type was already materialized under its resolved name (reachable
// via a second containment path), the existing id is adopted instead of
// redefining.
func (b *Builder) buildStructType(st *schema.Node) error {
	g, name := b.identityFor(st)
	if id, ok := b.st.LookupType(g, name); ok {
		b.res.types[st] = id
		return nil
	}
	id, err := b.buildCompound(st, g, name)
	if err != nil {
		return err
	}
	b.res.types[st] = id
	return nil
}

// buildSequenceType defines a sequence as a variable-length wrapper type.
// When the node carries the single-field marker and has exactly one row
// field, the wrapper's element is that field's base type directly; otherwise
// the row is first materialized as an implicit inner compound.
func (b *Builder) buildSequenceType(seq *schema.Node) error {
	g, wrapperName := b.identityFor(seq)
	if id, ok := b.st.LookupType(g, wrapperName); ok {
		b.res.types[seq] = id
		return nil
	}

	var elem store.TypeID
	if seq.SingleField && len(seq.Fields) == 1 {
		id, err := b.typeID(seq.Fields[0].Base)
		if err != nil {
			return err
		}
		elem = id
	} else {
		innerName := schema.FieldFQN(seq, innerSuffix)
		id, err := b.buildCompound(seq, g, innerName)
		if err != nil {
			return err
		}
		b.res.inner[seq] = id
		elem = id
	}

	id, err := b.st.DefineVLen(g, wrapperName, elem)
	if err != nil {
		return storeFailure(wrapperName, err)
	}
	b.res.types[seq] = id
	b.log.Debug("defined sequence", zap.String("name", wrapperName), zap.Bool("direct", seq.SingleField))
	return nil
}

// buildCompound computes the packed layout of a composite's fields, defines
// the compound type, then inserts one field per member: scalar members by
// offset and type, array members additionally by per-dimension extents.
// Forward references are impossible here: the dependency order guarantees
// every field type is already defined.
func (b *Builder) buildCompound(cmpd *schema.Node, g store.GroupID, name string) (store.TypeID, error) {
	size := b.computeOffsets(cmpd)
	id, err := b.st.DefineCompound(g, name, size)
	if err != nil {
		return 0, storeFailure(name, err)
	}
	for _, field := range cmpd.Fields {
		ftype, err := b.typeID(field.Base)
		if err != nil {
			return 0, err
		}
		offset := b.res.offsets[field]
		if len(field.DimRefs) == 0 {
			err = b.st.InsertField(g, id, field.Name, offset, ftype)
		} else {
			extents := make([]uint64, len(field.DimRefs))
			for i, dim := range field.DimRefs {
				extents[i] = dim.Size
			}
			err = b.st.InsertArrayField(g, id, field.Name, offset, ftype, extents)
		}
		if err != nil {
			return 0, storeFailure(field.Name, err)
		}
	}
	b.log.Debug("defined compound", zap.String("name", name), zap.Uint64("size", size))
	return id, nil
}
