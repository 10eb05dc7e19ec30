package builder

import (
	"go.uber.org/zap"

	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store"
)

// buildGroups recursively defines each subgroup under its already-defined
// parent, so a child always receives its namespace handle from a committed
// parent. The dataset root was mapped to the caller's handle before this
// runs.
func (b *Builder) buildGroups(parent *schema.Node) error {
	for _, g := range parent.Groups {
		id, err := b.st.CreateGroup(b.res.groups[parent], g.Name)
		if err != nil {
			return storeFailure(g.Name, err)
		}
		b.res.groups[g] = id
		b.log.Debug("defined group", zap.String("name", g.Name), zap.Int64("id", int64(id)))
		if err := b.buildGroups(g); err != nil {
			return err
		}
	}
	return nil
}

// buildDimension defines one dimension in its enclosing group. Unlimited
// dimensions are communicated to the store with the reserved size.
func (b *Builder) buildDimension(dim *schema.Node) error {
	size := dim.Size
	if dim.Unlimited {
		size = store.UnlimitedDim
	}
	id, err := b.st.DefineDimension(b.groupID(dim), dim.Name, size)
	if err != nil {
		return storeFailure(dim.Name, err)
	}
	b.res.dims[dim] = id
	b.log.Debug("defined dimension", zap.String("name", dim.Name), zap.Uint64("size", size))
	return nil
}
