package gremlin

import (
	"fmt"

	"github.com/ritzau/resultgraph/pkg/ident"
	"github.com/ritzau/resultgraph/pkg/model"
	"github.com/ritzau/resultgraph/pkg/result"
)

// addVertices inserts every vertex-like element of a path and returns the
// node id per position ("" at edge positions). isEdge decides which
// positions hold edges.
func (n *Network) addVertices(objs []result.Element, isEdge func(i int) bool) ([]string, error) {
	ids := make([]string, len(objs))
	depth := 0
	for i, obj := range objs {
		if isEdge(i) {
			continue
		}
		id, err := n.addVertex(obj, depth)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		ids[i] = id
		depth++
	}
	return ids, nil
}

// addUnguidedPath infers connectivity from element shapes. Edges connect
// their neighbours; consecutive vertex-like elements get an anonymous,
// non-directed edge.
func (n *Network) addUnguidedPath(p result.Path) error {
	objs := p.Objects
	if len(objs) == 0 {
		return nil
	}
	if result.IsEdgeLike(objs[0]) || result.IsEdgeLike(objs[len(objs)-1]) {
		return ErrInvalidPathShape
	}
	for i := 1; i < len(objs); i++ {
		if result.IsEdgeLike(objs[i]) && result.IsEdgeLike(objs[i-1]) {
			return fmt.Errorf("%w: consecutive edges at position %d", ErrInvalidPathShape, i)
		}
	}

	ids, err := n.addVertices(objs, func(i int) bool { return result.IsEdgeLike(objs[i]) })
	if err != nil {
		return err
	}

	for i := 1; i < len(objs); i++ {
		switch {
		case result.IsEdgeLike(objs[i]):
			edge, _ := asEdge(objs[i])
			if err := n.addPathEdge(ids[i-1], ids[i+1], edge); err != nil {
				return err
			}
		case !result.IsEdgeLike(objs[i-1]):
			if _, err := n.insertUnlabeledEdge(ids[i-1], ids[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// addPathEdge uses the edge's own endpoints when they match its neighbours
// in either orientation; otherwise it falls back to an unlabeled edge
// carrying the edge's identity.
func (n *Network) addPathEdge(prev, next string, e result.Edge) error {
	if e.HasEndpoints() {
		out, in := e.OutV.IDString(), e.InV.IDString()
		switch {
		case out == prev && in == next:
			return n.insertEdge(prev, next, e, true)
		case out == next && in == prev:
			return n.insertEdge(next, prev, e, true)
		}
	}
	return n.insertFallbackEdge(prev, next, e)
}

// addGuidedPath aligns the path with the pattern, repeated cyclically.
func (n *Network) addGuidedPath(p result.Path, pattern Pattern) error {
	objs := p.Objects
	if len(objs) == 0 {
		return nil
	}

	for i, obj := range objs {
		tok := pattern.At(i)
		if tok.IsVertex() {
			if result.IsEdgeLike(obj) {
				return fmt.Errorf("%w: %s at position %d", ErrVertexPatternMismatch, tok, i)
			}
			continue
		}
		if _, isVertex := obj.(result.Vertex); isVertex {
			return fmt.Errorf("%w: %s at position %d", ErrEdgePatternMismatch, tok, i)
		}
		if i == 0 || i == len(objs)-1 {
			return fmt.Errorf("%w: edge token %s at position %d", ErrInvalidPathShape, tok, i)
		}
		if !pattern.At(i - 1).IsVertex() || !pattern.At(i + 1).IsVertex() {
			return fmt.Errorf("%w: edge token %s is not between vertex tokens", ErrInvalidPattern, tok)
		}
	}

	ids, err := n.addVertices(objs, func(i int) bool { return !pattern.At(i).IsVertex() })
	if err != nil {
		return err
	}

	for i := 1; i < len(objs); i++ {
		prev, cur := pattern.At(i-1), pattern.At(i)
		switch {
		case !cur.IsVertex():
			if err := n.addGuidedEdge(ids[i-1], ids[i+1], objs[i], prev, cur, pattern.At(i+1)); err != nil {
				return err
			}
		case prev.IsVertex():
			directed, reversed, err := vertexLink(prev, cur)
			if err != nil {
				return err
			}
			from, to := ids[i-1], ids[i]
			if reversed {
				from, to = to, from
			}
			if err := n.insertLink(from, to, directed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *Network) addGuidedEdge(prev, next string, obj result.Element, prevTok, tok, nextTok Token) error {
	reversed, explicit, err := edgeDirection(prevTok, tok, nextTok)
	if err != nil {
		return err
	}

	edge, structured := asEdge(obj)
	if !explicit {
		if structured && edge.HasEndpoints() && edge.OutV.IDString() == next && edge.InV.IDString() == prev {
			return n.insertEdge(next, prev, edge, true)
		}
		return n.insertEdge(prev, next, edge, true)
	}
	if reversed {
		return n.insertEdge(next, prev, edge, true)
	}
	return n.insertEdge(prev, next, edge, true)
}

// insertLink connects two consecutive vertices without an edge element
// between them.
func (n *Network) insertLink(from, to string, directed bool) error {
	if !directed {
		_, err := n.insertUnlabeledEdge(from, to)
		return err
	}
	key := ident.ContentID([]string{from, to})
	return n.net.AddEdge(from, to, key, "", "", map[string]any{
		model.AttrProperties: map[string]any{},
		model.AttrDirected:   true,
	})
}

// asEdge views an element at an edge position as an Edge. structured is
// false for elements that only stand in for an edge, such as value maps or
// scalars; they get a content-derived key and no label.
func asEdge(obj result.Element) (result.Edge, bool) {
	switch val := obj.(type) {
	case result.Edge:
		return val, true
	case result.Map:
		if e, ok := result.EdgeFromMap(val.Entries); ok {
			return e, true
		}
		if result.HasMarkers(val.Entries) {
			return result.Edge{
				ID:    val.Entries[result.KeyID],
				Label: model.FormatValue(val.Entries[result.KeyLabel]),
			}, false
		}
		return result.Edge{ID: ident.ContentID(val.Entries), Properties: val.Entries}, false
	case result.Scalar:
		return result.Edge{ID: model.FormatValue(val.Value), Label: model.FormatValue(val.Value)}, false
	default:
		return result.Edge{ID: ident.ContentID(obj)}, false
	}
}
