package sparql

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Term types of a binding value
const (
	TypeURI          = "uri"
	TypeLiteral      = "literal"
	TypeTypedLiteral = "typed-literal"
	TypeBNode        = "bnode"
)

// Value is one bound term
type Value struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// IsResource reports whether the term names a resource rather than a literal
func (v Value) IsResource() bool {
	return v.Type == TypeURI || v.Type == TypeBNode
}

// Literal converts a literal to a Go value using its XSD datatype. Unknown
// datatypes and unparsable lexical forms stay strings.
func (v Value) Literal() any {
	switch v.Datatype {
	case XSD + "integer", XSD + "int", XSD + "long", XSD + "short", XSD + "nonNegativeInteger":
		if i, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			return i
		}
	case XSD + "double", XSD + "float", XSD + "decimal":
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
	case XSD + "boolean":
		if b, err := strconv.ParseBool(v.Value); err == nil {
			return b
		}
	}
	return v.Value
}

// Binding maps variable names to bound terms
type Binding map[string]Value

// Results is a SPARQL JSON result document
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// ParseResults decodes a SPARQL JSON result document
func ParseResults(data []byte) (*Results, error) {
	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse SPARQL results: %w", err)
	}
	return &r, nil
}
