package sparql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitURI(t *testing.T) {
	tests := []struct {
		uri, ns, local string
	}{
		{"http://www.w3.org/2000/01/rdf-schema#label", RDFS, "label"},
		{"http://x/datatypeProperty/icao", "http://x/datatypeProperty/", "icao"},
		{"http://x/ns/", "http://x/ns/", ""},
		{"urn:isbn", "", "urn:isbn"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			ns, local := SplitURI(tt.uri)
			assert.Equal(t, tt.ns, ns)
			assert.Equal(t, tt.local, local)
		})
	}
}

func TestWellKnownPrefixes(t *testing.T) {
	p := NewPrefixes()
	assert.Equal(t, "rdfs:label", p.Shorten(LabelPredicate))
	assert.Equal(t, "rdf:type", p.Shorten(TypePredicate))
	assert.Equal(t, "skos:prefLabel", p.Shorten(SKOS+"prefLabel"))
	assert.Equal(t, "http://x/ns/", p.Shorten("http://x/ns/"))
}

func TestScanDeclarations(t *testing.T) {
	p := NewPrefixes()
	query := `PREFIX prop: <http://kelvinlawrence.net/air-routes/datatypeProperty/>
prefix res:<http://kelvinlawrence.net/air-routes/resource/>
PREFIX : <http://example.org/>
SELECT * WHERE { ?s ?p ?o }`

	assert.Equal(t, 3, p.Scan(query))
	assert.Equal(t, "prop:icao", p.Shorten("http://kelvinlawrence.net/air-routes/datatypeProperty/icao"))
	assert.Equal(t, "res:24", p.Shorten("http://kelvinlawrence.net/air-routes/resource/24"))
	assert.Equal(t, ":thing", p.Shorten("http://example.org/thing"))
}

func TestDeclarationOverridesWellKnown(t *testing.T) {
	p := NewPrefixes()
	p.Declare("label", RDFS)
	assert.Equal(t, "label:comment", p.Shorten(RDFS+"comment"))

	_, ok := p.Namespace("rdfs")
	assert.False(t, ok)
}

func TestGeneratedPrefixes(t *testing.T) {
	p := NewPrefixes()

	assert.Equal(t, "resource:1", p.Shorten("http://a.org/resource/1"))
	assert.Equal(t, "resource-2:1", p.Shorten("http://b.org/resource/1"))
	assert.Equal(t, "resource-3:1", p.Shorten("http://c.org/resource/1"))
	assert.Equal(t, "resource:2", p.Shorten("http://a.org/resource/2"))
	assert.Equal(t, "ns:x", p.Shorten("http://a.org/2024/x"))
	assert.Equal(t, "ns-2:x", p.Shorten("http://b.org/2024/x"))
}

func TestTablesAreIndependent(t *testing.T) {
	a, b := NewPrefixes(), NewPrefixes()
	a.Declare("ex", "http://example.org/")

	_, ok := b.Lookup("http://example.org/")
	assert.False(t, ok)
	_, ok = NewPrefixes().Namespace("ex")
	assert.False(t, ok)
}
