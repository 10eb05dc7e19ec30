package builder

import "github.com/monocle-ai/dapmeta/schema"

// computeOffsets assigns a packed byte offset to every field of a composite
// type, in declared order with no padding or alignment, and returns the
// accumulated total as the composite's size. Results are memoized in the
// build-result table so a structure embedded along several paths is laid
// out once. Does not terminate on a cyclic structure graph; acyclicity is
// a precondition.
func (b *Builder) computeOffsets(cmpd *schema.Node) uint64 {
	if size, ok := b.res.sizes[cmpd]; ok {
		return size
	}
	var offset uint64
	for _, field := range cmpd.Fields {
		var size uint64
		switch field.Base.Kind {
		case schema.KindStruct:
			size = b.computeOffsets(field.Base)
		case schema.KindSequence:
			size = schema.VLenHandleSize
		default:
			size = b.typeSize(field.Base)
		}
		b.res.offsets[field] = offset
		offset += size
	}
	b.res.sizes[cmpd] = offset
	return offset
}

// typeSize returns the byte footprint of one value of a type when embedded
// in a compound layout. Variable-length shapes (sequences, zero-size
// opaques) occupy exactly one handle.
func (b *Builder) typeSize(t *schema.Node) uint64 {
	switch t.Kind {
	case schema.KindOpaque:
		if t.OpaqueSize == 0 {
			return schema.VLenHandleSize
		}
		return t.OpaqueSize
	case schema.KindEnum:
		return b.typeSize(t.Base)
	case schema.KindSequence:
		return schema.VLenHandleSize
	case schema.KindStruct:
		return b.computeOffsets(t)
	default:
		return uint64(t.Kind.Width())
	}
}
