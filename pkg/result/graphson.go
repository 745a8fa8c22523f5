package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ritzau/resultgraph/pkg/model"
)

// ErrInvalidGraphSON is returned when a typed GraphSON value is malformed
var ErrInvalidGraphSON = errors.New("invalid GraphSON")

// DecodeGraphSON parses GraphSON v3 (or plain JSON) into Go values:
// g:Vertex, g:Edge and g:Path become Vertex, Edge and Path; g:Map becomes
// map[string]any with T and Direction keys rendered as "T.id",
// "Direction.IN" and so on; g:List and g:Set become []any.
func DecodeGraphSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraphSON, err)
	}
	return decodeValue(raw)
}

// DecodeResults decodes a GraphSON document into a list of result elements.
// A top-level list yields one element per item; anything else yields a single
// element.
func DecodeResults(data []byte) ([]Element, error) {
	v, err := DecodeGraphSON(data)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return []Element{FromValue(v)}, nil
	}
	out := make([]Element, 0, len(items))
	for _, item := range items {
		out = append(out, FromValue(item))
	}
	return out, nil
}

func typed(m map[string]any) (string, any, bool) {
	if len(m) != 2 {
		return "", nil, false
	}
	t, ok := m["@type"].(string)
	if !ok {
		return "", nil, false
	}
	v, ok := m["@value"]
	return t, v, ok
}

func decodeValue(raw any) (any, error) {
	switch v := raw.(type) {
	case json.Number:
		return decodeNumber(v), nil
	case []any:
		return decodeList(v)
	case map[string]any:
		if t, value, ok := typed(v); ok {
			return decodeTyped(t, value)
		}
		out := make(map[string]any, len(v))
		for k, item := range v {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	default:
		return v, nil
	}
}

func decodeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func decodeList(items []any) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		decoded, err := decodeValue(item)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodeTyped(t string, value any) (any, error) {
	switch t {
	case "g:List", "g:Set":
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s value is not a list", ErrInvalidGraphSON, t)
		}
		return decodeList(items)
	case "g:BulkSet":
		return decodeBulkSet(value)
	case "g:Map":
		return decodeMap(value)
	case "g:Vertex":
		return decodeVertex(value)
	case "g:Edge":
		return decodeEdge(value)
	case "g:Path":
		return decodePath(value)
	case "g:VertexProperty", "g:Property":
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s value is not an object", ErrInvalidGraphSON, t)
		}
		return decodeValue(obj["value"])
	case "g:T":
		return TokenPrefix + model.FormatValue(value), nil
	case "g:Direction":
		return DirPrefix + model.FormatValue(value), nil
	case "g:Int32", "g:Int64", "g:Date", "g:Timestamp":
		if n, ok := value.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		}
		return nil, fmt.Errorf("%w: %s value %v", ErrInvalidGraphSON, t, value)
	case "g:Double", "g:Float":
		if n, ok := value.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		}
		// NaN and Infinity arrive as strings
		return value, nil
	case "g:UUID":
		return model.FormatValue(value), nil
	default:
		return decodeValue(value)
	}
}

func decodeBulkSet(value any) ([]any, error) {
	items, ok := value.([]any)
	if !ok || len(items)%2 != 0 {
		return nil, fmt.Errorf("%w: g:BulkSet value", ErrInvalidGraphSON)
	}
	var out []any
	for i := 0; i < len(items); i += 2 {
		v, err := decodeValue(items[i])
		if err != nil {
			return nil, err
		}
		count, err := decodeValue(items[i+1])
		if err != nil {
			return nil, err
		}
		n, _ := count.(int64)
		for j := int64(0); j < n; j++ {
			out = append(out, v)
		}
	}
	return out, nil
}

func decodeMap(value any) (map[string]any, error) {
	items, ok := value.([]any)
	if !ok || len(items)%2 != 0 {
		return nil, fmt.Errorf("%w: g:Map value must be a flat key/value list", ErrInvalidGraphSON)
	}
	out := make(map[string]any, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		key, err := decodeValue(items[i])
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(items[i+1])
		if err != nil {
			return nil, err
		}
		out[model.FormatValue(key)] = v
	}
	return out, nil
}

func object(t string, value any) (map[string]any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s value is not an object", ErrInvalidGraphSON, t)
	}
	return obj, nil
}

func decodeVertex(value any) (Vertex, error) {
	obj, err := object("g:Vertex", value)
	if err != nil {
		return Vertex{}, err
	}
	id, err := decodeValue(obj["id"])
	if err != nil {
		return Vertex{}, err
	}
	v := Vertex{ID: id, Label: model.FormatValue(obj["label"])}

	props, _ := obj["properties"].(map[string]any)
	if len(props) > 0 {
		v.Properties = make(map[string]any, len(props))
		for key, raw := range props {
			decoded, err := decodeValue(raw)
			if err != nil {
				return Vertex{}, err
			}
			// Single-cardinality properties arrive as one-element lists
			if list, ok := decoded.([]any); ok && len(list) == 1 {
				decoded = list[0]
			}
			v.Properties[key] = decoded
		}
	}
	return v, nil
}

func decodeEdge(value any) (Edge, error) {
	obj, err := object("g:Edge", value)
	if err != nil {
		return Edge{}, err
	}
	id, err := decodeValue(obj["id"])
	if err != nil {
		return Edge{}, err
	}
	inV, err := decodeValue(obj["inV"])
	if err != nil {
		return Edge{}, err
	}
	outV, err := decodeValue(obj["outV"])
	if err != nil {
		return Edge{}, err
	}

	e := Edge{
		ID:    id,
		Label: model.FormatValue(obj["label"]),
		InV:   Vertex{ID: inV, Label: model.FormatValue(obj["inVLabel"])},
		OutV:  Vertex{ID: outV, Label: model.FormatValue(obj["outVLabel"])},
	}

	props, _ := obj["properties"].(map[string]any)
	if len(props) > 0 {
		e.Properties = make(map[string]any, len(props))
		for key, raw := range props {
			decoded, err := decodeValue(raw)
			if err != nil {
				return Edge{}, err
			}
			e.Properties[key] = decoded
		}
	}
	return e, nil
}

func decodePath(value any) (Path, error) {
	obj, err := object("g:Path", value)
	if err != nil {
		return Path{}, err
	}
	objects, err := decodeValue(obj["objects"])
	if err != nil {
		return Path{}, err
	}
	items, ok := objects.([]any)
	if !ok {
		return Path{}, fmt.Errorf("%w: g:Path objects is not a list", ErrInvalidGraphSON)
	}

	p := Path{Objects: make([]Element, 0, len(items))}
	for _, item := range items {
		p.Objects = append(p.Objects, FromValue(item))
	}

	labels, err := decodeValue(obj["labels"])
	if err != nil {
		return Path{}, err
	}
	if sets, ok := labels.([]any); ok {
		for _, set := range sets {
			var names []string
			if list, ok := set.([]any); ok {
				for _, name := range list {
					names = append(names, model.FormatValue(name))
				}
			}
			p.Labels = append(p.Labels, names)
		}
	}
	return p, nil
}
