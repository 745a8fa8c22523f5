package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routePath = `{
  "@type": "g:List",
  "@value": [{
    "@type": "g:Path",
    "@value": {
      "labels": {"@type": "g:List", "@value": [
        {"@type": "g:Set", "@value": ["a"]},
        {"@type": "g:Set", "@value": []},
        {"@type": "g:Set", "@value": []}
      ]},
      "objects": {"@type": "g:List", "@value": [
        {"@type": "g:Vertex", "@value": {
          "id": {"@type": "g:Int64", "@value": 22},
          "label": "airport",
          "properties": {"code": [{"@type": "g:VertexProperty", "@value": {"id": 1, "label": "code", "value": "SJC"}}]}
        }},
        {"@type": "g:Edge", "@value": {
          "id": {"@type": "g:Int32", "@value": 7527},
          "label": "route",
          "inVLabel": "airport", "outVLabel": "airport",
          "inV": {"@type": "g:Int64", "@value": 1102},
          "outV": {"@type": "g:Int64", "@value": 22},
          "properties": {"dist": {"@type": "g:Property", "@value": {"key": "dist", "value": {"@type": "g:Int32", "@value": 1850}}}}
        }},
        {"@type": "g:Vertex", "@value": {"id": {"@type": "g:Int64", "@value": 1102}, "label": "airport"}}
      ]}
    }
  }]
}`

func TestDecodePath(t *testing.T) {
	results, err := DecodeResults([]byte(routePath))
	require.NoError(t, err)
	require.Len(t, results, 1)

	p, ok := results[0].(Path)
	require.True(t, ok, "expected a path, got %T", results[0])
	require.Len(t, p.Objects, 3)
	assert.Equal(t, [][]string{{"a"}, nil, nil}, p.Labels)

	v, ok := p.Objects[0].(Vertex)
	require.True(t, ok)
	assert.Equal(t, int64(22), v.ID)
	assert.Equal(t, "airport", v.Label)
	assert.Equal(t, "SJC", v.Properties["code"])

	e, ok := p.Objects[1].(Edge)
	require.True(t, ok)
	assert.Equal(t, "7527", e.IDString())
	assert.Equal(t, "22", e.OutV.IDString())
	assert.Equal(t, "1102", e.InV.IDString())
	assert.Equal(t, int64(1850), e.Properties["dist"])
}

func TestDecodeElementMap(t *testing.T) {
	doc := `[{"@type": "g:Map", "@value": [
	  {"@type": "g:T", "@value": "id"}, {"@type": "g:Int64", "@value": 1},
	  {"@type": "g:T", "@value": "label"}, "airport",
	  "code", "ANC"
	]}]`

	v, err := DecodeGraphSON([]byte(doc))
	require.NoError(t, err)

	list, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	m, ok := list[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{KeyID: int64(1), KeyLabel: "airport", "code": "ANC"}, m)
	assert.Equal(t, MapVertexElement, ClassifyMap(m))
}

func TestDecodeEdgeElementMap(t *testing.T) {
	doc := `[{"@type": "g:Map", "@value": [
	  {"@type": "g:T", "@value": "id"}, "e1",
	  {"@type": "g:T", "@value": "label"}, "route",
	  {"@type": "g:Direction", "@value": "IN"}, {"@type": "g:Map", "@value": [{"@type": "g:T", "@value": "id"}, "2"]},
	  {"@type": "g:Direction", "@value": "OUT"}, {"@type": "g:Map", "@value": [{"@type": "g:T", "@value": "id"}, "1"]}
	]}]`

	results, err := DecodeResults([]byte(doc))
	require.NoError(t, err)
	require.Len(t, results, 1)

	m, ok := results[0].(Map)
	require.True(t, ok)
	e, ok := EdgeFromMap(m.Entries)
	require.True(t, ok)
	assert.Equal(t, "1", e.OutV.IDString())
	assert.Equal(t, "2", e.InV.IDString())
}

func TestDecodeScalars(t *testing.T) {
	doc := `{"@type": "g:List", "@value": [
	  {"@type": "g:Double", "@value": 1.5},
	  {"@type": "g:UUID", "@value": "41d2e28a-20a4-4ab0-b379-d810dede3786"},
	  {"@type": "g:BulkSet", "@value": ["x", {"@type": "g:Int64", "@value": 2}]},
	  7
	]}`

	v, err := DecodeGraphSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []any{
		1.5,
		"41d2e28a-20a4-4ab0-b379-d810dede3786",
		[]any{"x", "x"},
		int64(7),
	}, v)
}

func TestDecodePlainJSON(t *testing.T) {
	v, err := DecodeGraphSON([]byte(`[{"code": ["SJC"], "dist": 2.5}]`))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"code": []any{"SJC"}, "dist": 2.5}}, v)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"odd map", `{"@type": "g:Map", "@value": ["a"]}`},
		{"bad int", `{"@type": "g:Int64", "@value": "x"}`},
		{"vertex not object", `{"@type": "g:Vertex", "@value": 3}`},
		{"path objects", `{"@type": "g:Path", "@value": {"objects": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeGraphSON([]byte(tt.doc))
			assert.True(t, errors.Is(err, ErrInvalidGraphSON), "got %v", err)
		})
	}
}
