package builder

import (
	"strings"

	"go.uber.org/zap"

	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store"
)

// buildVariable defines one top-level variable (atomic, structure, or
// sequence alike: the base type id carries the shape) with its dimension
// list resolved in declared order, then commits its attributes and map
// references.
func (b *Builder) buildVariable(v *schema.Node) error {
	typ, err := b.typeID(v.Base)
	if err != nil {
		return err
	}
	dims := make([]store.DimID, len(v.DimRefs))
	for i, dim := range v.DimRefs {
		id, ok := b.res.dims[dim]
		if !ok {
			return badType(v.Name, "dimension %s has no definition", dim.Name)
		}
		dims[i] = id
	}
	id, err := b.st.DefineVariable(b.groupID(v), v.Name, typ, dims)
	if err != nil {
		return storeFailure(v.Name, err)
	}
	b.res.vars[v] = id
	b.log.Debug("defined variable",
		zap.String("name", v.Name),
		zap.String("kind", v.Base.Kind.String()),
		zap.Int("rank", len(dims)))

	if err := b.buildAttributes(v); err != nil {
		return err
	}
	return b.buildMaps(v)
}

// buildAttributes encodes and commits each attribute of a variable or
// group, in declared order. Reserved internal-tag attributes are filtered
// out and never reach the store. The encode buffer lives only for the
// single put call that consumes it.
func (b *Builder) buildAttributes(owner *schema.Node) error {
	for _, attr := range owner.Attributes {
		if strings.HasPrefix(attr.Name, reservedAttrPrefix) {
			continue
		}
		data, err := b.encodeAttribute(attr)
		if err != nil {
			return err
		}
		typ, err := b.typeID(attr.Base)
		if err != nil {
			return err
		}
		varid := store.GlobalAttributes
		if owner.Sort != schema.SortGroup {
			varid = b.res.vars[owner]
		}
		if err := b.st.PutAttribute(b.groupID(owner), varid, attr.Name, typ, len(attr.Values), data); err != nil {
			return storeFailure(attr.Name, err)
		}
	}
	return nil
}

// buildMaps commits a variable's map references as one multi-valued text
// attribute holding the fully-qualified names of the mapped variables, in
// map order.
func (b *Builder) buildMaps(v *schema.Node) error {
	if len(v.Maps) == 0 {
		return nil
	}
	names := make([]string, len(v.Maps))
	for i, ref := range v.Maps {
		names[i] = schema.FQN(ref)
	}
	err := b.st.PutAttribute(b.groupID(v), b.res.vars[v], mapsAttrName, store.String,
		len(names), store.AttrData{Strings: names})
	if err != nil {
		return storeFailure(v.Name, err)
	}
	return nil
}
