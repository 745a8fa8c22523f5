package sparql

import (
	"fmt"
	"regexp"
	"strings"
)

// Well-known vocabulary namespaces
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	DC      = "http://purl.org/dc/elements/1.1/"
	DCTerms = "http://purl.org/dc/terms/"
	FOAF    = "http://xmlns.com/foaf/0.1/"
	Schema  = "https://schema.org/"
	PROV    = "http://www.w3.org/ns/prov#"
	SOSA    = "http://www.w3.org/ns/sosa/"
	SSN     = "http://www.w3.org/ns/ssn/"
)

// Predicates with special meaning to the adapter
const (
	LabelPredicate = RDFS + "label"
	TypePredicate  = RDF + "type"
)

var wellKnown = map[string]string{
	RDF:     "rdf",
	RDFS:    "rdfs",
	OWL:     "owl",
	XSD:     "xsd",
	SKOS:    "skos",
	DC:      "dc",
	DCTerms: "dcterms",
	FOAF:    "foaf",
	Schema:  "schema",
	PROV:    "prov",
	SOSA:    "sosa",
	SSN:     "ssn",
}

var (
	prefixDecl  = regexp.MustCompile(`(?i)PREFIX\s+([\w\-]*):\s*<([^>]+)>`)
	prefixChars = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
)

// Prefixes maps namespaces to short prefixes. Each adapter owns one table;
// it starts from the well-known vocabularies and grows as queries declare
// prefixes and unseen namespaces are encountered.
type Prefixes struct {
	byNamespace map[string]string
	byPrefix    map[string]string
}

// NewPrefixes returns a table seeded with the well-known vocabularies.
func NewPrefixes() *Prefixes {
	p := &Prefixes{
		byNamespace: make(map[string]string, len(wellKnown)),
		byPrefix:    make(map[string]string, len(wellKnown)),
	}
	for ns, prefix := range wellKnown {
		p.byNamespace[ns] = prefix
		p.byPrefix[prefix] = ns
	}
	return p
}

// Declare binds prefix to namespace, replacing earlier bindings of either.
func (p *Prefixes) Declare(prefix, namespace string) {
	if old, ok := p.byPrefix[prefix]; ok {
		delete(p.byNamespace, old)
	}
	if old, ok := p.byNamespace[namespace]; ok {
		delete(p.byPrefix, old)
	}
	p.byNamespace[namespace] = prefix
	p.byPrefix[prefix] = namespace
}

// Scan declares every PREFIX found in query text and returns how many were
// found.
func (p *Prefixes) Scan(query string) int {
	matches := prefixDecl.FindAllStringSubmatch(query, -1)
	for _, m := range matches {
		p.Declare(m[1], m[2])
	}
	return len(matches)
}

// Lookup returns the prefix bound to namespace.
func (p *Prefixes) Lookup(namespace string) (string, bool) {
	prefix, ok := p.byNamespace[namespace]
	return prefix, ok
}

// Namespace returns the namespace bound to prefix.
func (p *Prefixes) Namespace(prefix string) (string, bool) {
	ns, ok := p.byPrefix[prefix]
	return ns, ok
}

// PrefixFor returns the prefix of namespace, generating and binding one
// when the namespace has not been seen before.
func (p *Prefixes) PrefixFor(namespace string) string {
	if prefix, ok := p.byNamespace[namespace]; ok {
		return prefix
	}

	candidate := candidatePrefix(namespace)
	prefix := candidate
	for i := 2; ; i++ {
		if _, taken := p.byPrefix[prefix]; !taken {
			break
		}
		prefix = fmt.Sprintf("%s-%d", candidate, i)
	}
	p.byNamespace[namespace] = prefix
	p.byPrefix[prefix] = namespace
	return prefix
}

// Shorten renders uri as prefix:local. A URI without a local part is
// returned unchanged.
func (p *Prefixes) Shorten(uri string) string {
	ns, local := SplitURI(uri)
	if ns == "" || local == "" {
		return uri
	}
	return p.PrefixFor(ns) + ":" + local
}

// SplitURI splits uri after its fragment marker, or after its last path
// separator when it has no fragment.
func SplitURI(uri string) (namespace, local string) {
	i := strings.LastIndexByte(uri, '#')
	if i < 0 {
		i = strings.LastIndexByte(uri, '/')
	}
	if i < 0 {
		return "", uri
	}
	return uri[:i+1], uri[i+1:]
}

func candidatePrefix(namespace string) string {
	trimmed := strings.TrimRight(namespace, "/#")
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	candidate := prefixChars.ReplaceAllString(trimmed, "")
	if candidate == "" || !isLetter(candidate[0]) {
		return "ns"
	}
	return candidate
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
