package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-ai/dapmeta/store"
)

func TestCreateGroupRejectsDuplicates(t *testing.T) {
	s := New()
	g1, err := s.CreateGroup(s.Root(), "g")
	require.NoError(t, err)
	assert.NotEqual(t, s.Root(), g1)

	_, err = s.CreateGroup(s.Root(), "g")
	assert.Error(t, err)

	// Same name under a different parent is fine.
	_, err = s.CreateGroup(g1, "g")
	assert.NoError(t, err)
}

func TestCreateGroupRejectsInvalidParent(t *testing.T) {
	s := New()
	_, err := s.CreateGroup(999, "g")
	assert.Error(t, err)
}

func TestLookupTypeScopedToGroup(t *testing.T) {
	s := New()
	g, err := s.CreateGroup(s.Root(), "g")
	require.NoError(t, err)

	id, err := s.DefineOpaque(s.Root(), "blob", 8)
	require.NoError(t, err)
	assert.Greater(t, int64(id), int64(store.MaxAtomic))

	got, ok := s.LookupType(s.Root(), "blob")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = s.LookupType(g, "blob")
	assert.False(t, ok)

	_, err = s.DefineOpaque(s.Root(), "blob", 8)
	assert.Error(t, err, "duplicate type in the same group")
}

func TestInsertEnumConstRequiresEnum(t *testing.T) {
	s := New()
	op, err := s.DefineOpaque(s.Root(), "blob", 8)
	require.NoError(t, err)
	assert.Error(t, s.InsertEnumConst(s.Root(), op, "A", 0))

	en, err := s.DefineEnum(s.Root(), "e", store.Int32)
	require.NoError(t, err)
	require.NoError(t, s.InsertEnumConst(s.Root(), en, "A", 0))
	typ := s.TypeNamed(s.Root(), "e")
	require.NotNil(t, typ)
	assert.Equal(t, []EnumConst{{Name: "A", Value: 0}}, typ.Consts)
}

func TestInsertArrayFieldRequiresRank(t *testing.T) {
	s := New()
	c, err := s.DefineCompound(s.Root(), "c", 4)
	require.NoError(t, err)
	assert.Error(t, s.InsertArrayField(s.Root(), c, "f", 0, store.Int32, nil))
	assert.NoError(t, s.InsertArrayField(s.Root(), c, "f", 0, store.Int32, []uint64{3}))
}

func TestPutAttributeCountMatchesStrings(t *testing.T) {
	s := New()
	err := s.PutAttribute(s.Root(), store.GlobalAttributes, "a", store.String, 2,
		store.AttrData{Strings: []string{"only"}})
	assert.Error(t, err)

	err = s.PutAttribute(s.Root(), store.GlobalAttributes, "a", store.String, 1,
		store.AttrData{Strings: []string{"only"}})
	require.NoError(t, err)
	require.Len(t, s.AttrsOf(s.Root(), store.GlobalAttributes), 1)
}
