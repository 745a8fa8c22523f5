package gremlin

import (
	"errors"
	"testing"

	"github.com/ritzau/resultgraph/pkg/network"
	"github.com/ritzau/resultgraph/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("V, outE, inV")
	require.NoError(t, err)
	assert.Equal(t, Pattern{V, OutE, InV}, p)
	assert.Equal(t, "V,outE,inV", p.String())

	p, err = ParsePattern("v oute INV")
	require.NoError(t, err)
	assert.Equal(t, Pattern{V, OutE, InV}, p)

	_, err = ParsePattern("V,bothE,V")
	assert.True(t, errors.Is(err, ErrInvalidPattern), "got %v", err)
}

func scalars(values ...string) []result.Element {
	out := make([]result.Element, 0, len(values))
	for _, v := range values {
		out = append(out, result.Scalar{Value: v})
	}
	return out
}

func TestGuidedVertexLinks(t *testing.T) {
	tests := []struct {
		name     string
		pattern  Pattern
		from, to string
		directed bool
	}{
		{"V,V", Pattern{V, V}, "a", "b", false},
		{"V,inV", Pattern{V, InV}, "b", "a", true},
		{"V,outV", Pattern{V, OutV}, "a", "b", true},
		{"outV,inV", Pattern{OutV, InV}, "b", "a", true},
		{"inV,outV", Pattern{InV, OutV}, "a", "b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := network.New()
			gn := New(net, Options{Pattern: tt.pattern})
			require.NoError(t, gn.AddPath(result.Path{Objects: scalars("a", "b")}))

			edges := net.Graph().Edges()
			require.Len(t, edges, 1)
			assert.Equal(t, tt.from, edges[0].From)
			assert.Equal(t, tt.to, edges[0].To)
			assert.Equal(t, tt.directed, edges[0].Directed)
		})
	}
}

func TestGuidedAmbiguousDirection(t *testing.T) {
	for _, p := range []Pattern{{InV, InV}, {OutV, OutV}} {
		t.Run(p.String(), func(t *testing.T) {
			err := New(network.New(), Options{Pattern: p}).AddPath(result.Path{Objects: scalars("a", "b")})
			assert.True(t, errors.Is(err, ErrAmbiguousEdgeDirection), "got %v", err)
		})
	}
}

func TestGuidedPatternRepeats(t *testing.T) {
	net := network.New()
	gn := New(net, Options{Pattern: Pattern{V, OutV}})
	require.NoError(t, gn.AddPath(result.Path{Objects: scalars("a", "b", "c", "d")}))

	g := net.Graph()
	require.Equal(t, 3, g.EdgeCount())
	edges := g.Edges()
	assert.True(t, edges[0].Directed)  // V,outV
	assert.False(t, edges[1].Directed) // outV,V
	assert.True(t, edges[2].Directed)  // V,outV
}

func TestGuidedEdgeDirection(t *testing.T) {
	a, b := airport(1, "SEA"), airport(2, "DFW")
	// Stored direction is b -> a
	e := route("e1", b, a)

	tests := []struct {
		name     string
		pattern  Pattern
		from, to string
	}{
		{"own direction", Pattern{V, E, V}, "2", "1"},
		{"inV overrides", Pattern{V, E, InV}, "1", "2"},
		{"outV overrides", Pattern{V, E, OutV}, "2", "1"},
		{"outV tail", Pattern{OutV, E, V}, "1", "2"},
		{"outE", Pattern{V, OutE, V}, "1", "2"},
		{"inE", Pattern{V, InE, V}, "2", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := network.New()
			gn := New(net, Options{Pattern: tt.pattern})
			require.NoError(t, gn.AddPath(result.Path{Objects: []result.Element{a, e, b}}))

			edges := net.Graph().Edges()
			require.Len(t, edges, 1)
			assert.Equal(t, tt.from, edges[0].From)
			assert.Equal(t, tt.to, edges[0].To)
			assert.Equal(t, "e1", edges[0].Key)
			assert.Equal(t, "route", edges[0].Label)
			assert.True(t, edges[0].Directed)
		})
	}
}

func TestGuidedEdgeWithoutStructure(t *testing.T) {
	net := network.New()
	gn := New(net, Options{Pattern: Pattern{V, OutE, InV}})

	objs := []result.Element{
		result.Scalar{Value: "SEA"},
		result.Map{Entries: map[string]any{"dist": int64(1660)}},
		result.Scalar{Value: "DFW"},
	}
	require.NoError(t, gn.AddPath(result.Path{Objects: objs}))

	g := net.Graph()
	assert.Equal(t, 2, g.NodeCount())
	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "SEA", edges[0].From)
	assert.Equal(t, "DFW", edges[0].To)
	assert.Equal(t, int64(1660), edges[0].Properties["dist"])
}

func TestGuidedMismatch(t *testing.T) {
	a, b := airport(1, "SEA"), airport(2, "DFW")
	e := route("e1", a, b)

	tests := []struct {
		name    string
		pattern Pattern
		objs    []result.Element
		want    error
	}{
		{"edge at vertex token", Pattern{V, V, V}, []result.Element{a, e, b}, ErrVertexPatternMismatch},
		{"vertex at edge token", Pattern{V, E, V}, []result.Element{a, b, b}, ErrEdgePatternMismatch},
		{"edge token first", Pattern{E, V}, []result.Element{result.Scalar{Value: "x"}, a}, ErrInvalidPathShape},
		{"ambiguous edge", Pattern{InV, E, InV}, []result.Element{a, e, b}, ErrAmbiguousEdgeDirection},
		{"edge tokens adjacent", Pattern{V, E, E, V}, []result.Element{a, e, e, b}, ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(network.New(), Options{Pattern: tt.pattern}).AddPath(result.Path{Objects: tt.objs})
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
