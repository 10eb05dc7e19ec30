package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-ai/dapmeta/schema"
)

func indexOf(order []*schema.Node, n *schema.Node) int {
	for i, x := range order {
		if x == n {
			return i
		}
	}
	return -1
}

// TestDependencyOrderTypesFirst checks the ordering property: a type never
// appears before a type it embeds or uses as a base, regardless of
// declaration order.
func TestDependencyOrderTypesFirst(t *testing.T) {
	ds := schema.NewDataset("order")
	outer := ds.NewType(ds.Root, "outer", schema.KindStruct)
	en := ds.NewType(ds.Root, "flags", schema.KindEnum)
	en.Base = ds.Atomic(schema.KindInt32)
	inner := ds.NewType(ds.Root, "inner", schema.KindStruct)
	ds.NewField(inner, "f", en)
	ds.NewField(outer, "in", inner)
	seq := ds.NewType(ds.Root, "rows", schema.KindSequence)
	ds.NewField(seq, "row", outer)

	order := dependencyOrder(ds)

	require.Len(t, order, len(ds.Nodes))
	seen := make(map[*schema.Node]bool)
	for _, n := range order {
		assert.False(t, seen[n], "node visited twice")
		seen[n] = true
	}

	assert.Less(t, indexOf(order, en.Base), indexOf(order, en))
	assert.Less(t, indexOf(order, en), indexOf(order, inner))
	assert.Less(t, indexOf(order, inner), indexOf(order, outer))
	assert.Less(t, indexOf(order, outer), indexOf(order, seq))
}

// TestDependencyOrderStable checks unrelated nodes keep insertion order.
func TestDependencyOrderStable(t *testing.T) {
	ds := schema.NewDataset("stable")
	d1 := ds.NewDimension(ds.Root, "d1", 1, false)
	d2 := ds.NewDimension(ds.Root, "d2", 2, false)
	t1 := ds.NewType(ds.Root, "t1", schema.KindOpaque)
	t2 := ds.NewType(ds.Root, "t2", schema.KindOpaque)

	order := dependencyOrder(ds)

	assert.Less(t, indexOf(order, d1), indexOf(order, d2))
	assert.Less(t, indexOf(order, t1), indexOf(order, t2))
	assert.Less(t, indexOf(order, d2), indexOf(order, t1))
}
