package schemafile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-ai/dapmeta/builder"
	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store/memstore"
)

const sampleDoc = `{
  "name": "ocean",
  "root": {
    "dimensions": [
      {"name": "time", "unlimited": true},
      {"name": "depth", "size": 50}
    ],
    "types": [
      {
        "name": "quality", "kind": "enum", "base": "uint8",
        "consts": [{"name": "GOOD", "value": 0}, {"name": "SUSPECT", "value": 1}]
      },
      {
        "name": "sample", "kind": "struct",
        "fields": [
          {"name": "value", "type": "float64"},
          {"name": "flag", "type": "quality"}
        ]
      }
    ],
    "variables": [
      {
        "name": "temp", "type": "float64", "dims": ["time", "depth"],
        "attributes": [{"name": "units", "type": "string", "values": ["degC"]}],
        "maps": ["/coords/lat"]
      },
      {"name": "profile", "type": "sample", "dims": ["depth"]}
    ],
    "attributes": [{"name": "title", "type": "string", "values": ["ocean profile"]}],
    "groups": [
      {
        "name": "coords",
        "variables": [{"name": "lat", "type": "float32", "dims": ["/depth"]}]
      }
    ]
  }
}`

func TestParseDocument(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	root := ds.Root
	require.Len(t, root.Dims, 2)
	assert.True(t, root.Dims[0].Unlimited)
	assert.Equal(t, uint64(50), root.Dims[1].Size)

	require.Len(t, root.Types, 2)
	en := root.Types[0]
	assert.Equal(t, schema.KindEnum, en.Kind)
	require.NotNil(t, en.Base)
	assert.Equal(t, schema.KindUInt8, en.Base.Kind)
	require.Len(t, en.Consts, 2)

	st := root.Types[1]
	assert.Equal(t, schema.KindStruct, st.Kind)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, en, st.Fields[1].Base, "named type reference resolves to the same node")

	require.Len(t, root.Vars, 2)
	temp := root.Vars[0]
	require.Len(t, temp.DimRefs, 2)
	assert.Equal(t, root.Dims[0], temp.DimRefs[0])
	require.Len(t, temp.Attributes, 1)
	assert.Equal(t, []string{"degC"}, temp.Attributes[0].Values)

	require.Len(t, root.Groups, 1)
	coords := root.Groups[0]
	lat := coords.Vars[0]
	require.Len(t, temp.Maps, 1)
	assert.Equal(t, lat, temp.Maps[0])
	assert.Equal(t, root.Dims[1], lat.DimRefs[0], "absolute dimension reference")

	require.Len(t, root.Attributes, 1)
	assert.Equal(t, "title", root.Attributes[0].Name)
}

func TestParseEndToEnd(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	st := memstore.New()
	require.NoError(t, builder.New(ds, st).Build(st.Root()))

	assert.NotNil(t, st.TypeNamed(st.Root(), "quality"))
	assert.NotNil(t, st.TypeNamed(st.Root(), "sample_t"))
	temp := st.VarNamed(st.Root(), "temp")
	require.NotNil(t, temp)
	attrs := st.AttrsOf(st.Root(), temp.ID)
	require.Len(t, attrs, 2)
	assert.Equal(t, "units", attrs[0].Name)
	assert.Equal(t, "_edu.ucar.maps", attrs[1].Name)
	assert.Equal(t, []string{"/coords/lat"}, attrs[1].Data.Strings)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad json", `{"name": }`},
		{"unknown type kind", `{"name":"x","root":{"types":[{"name":"t","kind":"union"}]}}`},
		{"sizeless dimension", `{"name":"x","root":{"dimensions":[{"name":"d"}]}}`},
		{"enum without base", `{"name":"x","root":{"types":[{"name":"e","kind":"enum"}]}}`},
		{"dangling type ref", `{"name":"x","root":{"variables":[{"name":"v","type":"nope"}]}}`},
		{"dangling dim ref", `{"name":"x","root":{"variables":[{"name":"v","type":"int32","dims":["nope"]}]}}`},
		{"dangling map ref", `{"name":"x","root":{"variables":[{"name":"v","type":"int32","maps":["/nope"]}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}
