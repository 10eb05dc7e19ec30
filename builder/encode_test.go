package builder

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store/memstore"
)

func encodeWith(t *testing.T, kind schema.TypeKind, values []string) []byte {
	t.Helper()
	ds := schema.NewDataset("enc")
	attr := ds.NewAttribute(ds.Root, "a", ds.Atomic(kind), values)
	data, err := New(ds, memstore.New()).encodeAttribute(attr)
	require.NoError(t, err)
	return data.Bytes
}

// TestEncodeRoundTrip checks encoded buffers decode back to the original
// values at the declared width, in input order.
func TestEncodeRoundTrip(t *testing.T) {
	t.Run("int16", func(t *testing.T) {
		buf := encodeWith(t, schema.KindInt16, []string{"-2", "300", "7"})
		require.Len(t, buf, 6)
		assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(buf[0:])))
		assert.Equal(t, int16(300), int16(binary.LittleEndian.Uint16(buf[2:])))
		assert.Equal(t, int16(7), int16(binary.LittleEndian.Uint16(buf[4:])))
	})

	t.Run("uint8", func(t *testing.T) {
		buf := encodeWith(t, schema.KindUInt8, []string{"0", "255"})
		assert.Equal(t, []byte{0, 255}, buf)
	})

	t.Run("float64", func(t *testing.T) {
		buf := encodeWith(t, schema.KindFloat64, []string{"2.5", "-0.125"})
		require.Len(t, buf, 16)
		assert.Equal(t, 2.5, math.Float64frombits(binary.LittleEndian.Uint64(buf[0:])))
		assert.Equal(t, -0.125, math.Float64frombits(binary.LittleEndian.Uint64(buf[8:])))
	})

	t.Run("float32 narrows", func(t *testing.T) {
		buf := encodeWith(t, schema.KindFloat32, []string{"1.5"})
		require.Len(t, buf, 4)
		assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	})

	t.Run("int8 truncates", func(t *testing.T) {
		// 300 = 0x12C; the truncating cast keeps the low byte.
		buf := encodeWith(t, schema.KindInt8, []string{"300"})
		assert.Equal(t, []byte{0x2C}, buf)
	})
}

// TestEncodeStringsPassThrough checks text values are carried verbatim as
// independent handles, never packed.
func TestEncodeStringsPassThrough(t *testing.T) {
	ds := schema.NewDataset("enc")
	attr := ds.NewAttribute(ds.Root, "a", ds.Atomic(schema.KindString), []string{"x", "y z"})
	data, err := New(ds, memstore.New()).encodeAttribute(attr)
	require.NoError(t, err)
	assert.Nil(t, data.Bytes)
	assert.Equal(t, []string{"x", "y z"}, data.Strings)
}

// TestEncodeEnumResolution checks the enum property: a constant name and
// its literal value encode identically, and an unknown name fails with
// InvalidValue.
func TestEncodeEnumResolution(t *testing.T) {
	ds := schema.NewDataset("enc")
	en := ds.NewType(ds.Root, "color", schema.KindEnum)
	en.Base = ds.Atomic(schema.KindInt32)
	ds.NewEnumConst(en, "RED", 0)
	ds.NewEnumConst(en, "GREEN", 1)

	b := New(ds, memstore.New())

	byName := ds.NewAttribute(ds.Root, "a1", en, []string{"GREEN"})
	byValue := ds.NewAttribute(ds.Root, "a2", en, []string{"1"})
	d1, err := b.encodeAttribute(byName)
	require.NoError(t, err)
	d2, err := b.encodeAttribute(byValue)
	require.NoError(t, err)
	assert.Equal(t, d1.Bytes, d2.Bytes)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(d1.Bytes))

	unknown := ds.NewAttribute(ds.Root, "a3", en, []string{"BLUE"})
	_, err = b.encodeAttribute(unknown)
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, InvalidValue, be.Kind)
}

// TestEncodeParseFailures checks each numeric family rejects unparseable
// text with InvalidValue.
func TestEncodeParseFailures(t *testing.T) {
	tests := []struct {
		name string
		kind schema.TypeKind
		text string
	}{
		{"signed rejects words", schema.KindInt32, "ten"},
		{"unsigned rejects negatives", schema.KindUInt16, "-1"},
		{"float rejects words", schema.KindFloat32, "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := schema.NewDataset("enc")
			attr := ds.NewAttribute(ds.Root, "a", ds.Atomic(tt.kind), []string{tt.text})
			_, err := New(ds, memstore.New()).encodeAttribute(attr)
			require.Error(t, err)
			var be *BuildError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, InvalidValue, be.Kind)
		})
	}
}

// TestEncodeBadType checks non-primitive base types are rejected before
// any store call.
func TestEncodeBadType(t *testing.T) {
	ds := schema.NewDataset("enc")
	st := ds.NewType(ds.Root, "s", schema.KindStruct)
	ds.NewField(st, "x", ds.Atomic(schema.KindInt8))
	attr := ds.NewAttribute(ds.Root, "a", st, []string{"1"})

	_, err := New(ds, memstore.New()).encodeAttribute(attr)
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, BadType, be.Kind)
}
