package opencypher

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// FromRecords converts driver records into result rows. Nodes and
// relationships are tagged by element id; paths become alternating lists
// of nodes and relationships.
func FromRecords(records []*neo4j.Record) *Results {
	r := &Results{Results: make([]Row, 0, len(records))}
	for _, record := range records {
		row := make(Row, len(record.Keys))
		for i, key := range record.Keys {
			if i < len(record.Values) {
				row[key] = fromValue(record.Values[i])
			}
		}
		r.Results = append(r.Results, row)
	}
	return r
}

// AddRecords adds driver records, as returned by an eager query result.
func (n *Network) AddRecords(records []*neo4j.Record) error {
	return n.AddResults(FromRecords(records))
}

func fromValue(value any) any {
	switch v := value.(type) {
	case neo4j.Node:
		return fromNode(v)
	case neo4j.Relationship:
		return fromRelationship(v)
	case neo4j.Path:
		items := make([]any, 0, len(v.Nodes)+len(v.Relationships))
		for i, node := range v.Nodes {
			items = append(items, fromNode(node))
			if i < len(v.Relationships) {
				items = append(items, fromRelationship(v.Relationships[i]))
			}
		}
		return items
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			items = append(items, fromValue(item))
		}
		return items
	default:
		return v
	}
}

func fromNode(node neo4j.Node) map[string]any {
	labels := make([]any, 0, len(node.Labels))
	for _, l := range node.Labels {
		labels = append(labels, l)
	}
	return map[string]any{
		KeyID:         node.ElementId,
		KeyEntityType: EntityNode,
		KeyLabels:     labels,
		KeyProperties: node.Props,
	}
}

func fromRelationship(rel neo4j.Relationship) map[string]any {
	return map[string]any{
		KeyID:         rel.ElementId,
		KeyEntityType: EntityRelationship,
		KeyStart:      rel.StartElementId,
		KeyEnd:        rel.EndElementId,
		KeyType:       rel.Type,
		KeyProperties: rel.Props,
	}
}
