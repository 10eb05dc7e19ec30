package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKindWidths pins the atomic width table.
func TestKindWidths(t *testing.T) {
	widths := map[TypeKind]int{
		KindInt8: 1, KindUInt8: 1, KindChar: 1,
		KindInt16: 2, KindUInt16: 2,
		KindInt32: 4, KindUInt32: 4, KindFloat32: 4,
		KindInt64: 8, KindUInt64: 8, KindFloat64: 8,
		KindString: 8,
	}
	for k, w := range widths {
		assert.Equal(t, w, k.Width(), k.String())
	}
	assert.Equal(t, 0, KindStruct.Width())
	assert.Equal(t, 0, KindSequence.Width())
}

// TestKindFamilies checks the parse-family predicates partition the
// numeric kinds.
func TestKindFamilies(t *testing.T) {
	assert.True(t, KindInt8.IsSignedInt())
	assert.True(t, KindChar.IsSignedInt())
	assert.True(t, KindUInt64.IsUnsignedInt())
	assert.True(t, KindFloat32.IsFloat())
	assert.False(t, KindString.IsSignedInt())
	assert.False(t, KindString.IsUnsignedInt())
	assert.False(t, KindString.IsFloat())
	assert.True(t, KindString.IsAtomic())
	assert.False(t, KindStruct.IsAtomic())
	assert.False(t, KindEnum.IsAtomic())
}

// TestKindByName resolves atomic names only.
func TestKindByName(t *testing.T) {
	k, ok := KindByName("float64")
	assert.True(t, ok)
	assert.Equal(t, KindFloat64, k)

	_, ok = KindByName("struct")
	assert.False(t, ok)
	_, ok = KindByName("bogus")
	assert.False(t, ok)
}
