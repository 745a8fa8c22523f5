// Package sparql populates a graph from SPARQL SELECT results that bind
// subject, predicate and object variables.
package sparql

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/ritzau/resultgraph/pkg/logging"
	"github.com/ritzau/resultgraph/pkg/model"
	"github.com/ritzau/resultgraph/pkg/network"
	"github.com/ritzau/resultgraph/pkg/property"
)

// ErrInvalidBindingsCombination is returned when results bind both the long
// and the short triple variable names.
var ErrInvalidBindingsCombination = errors.New("results bind both subject/predicate/object and s/p/o")

var (
	longTriple  = [3]string{"subject", "predicate", "object"}
	shortTriple = [3]string{"s", "p", "o"}
)

// Options configures the adapter. Zero values select the defaults.
type Options struct {
	Nodes     property.Options
	Edges     property.Options
	ExpandAll bool // Every binding becomes an edge, literals included
}

// Network adds SPARQL results to a graph through a Mutator.
type Network struct {
	net       network.Mutator
	nodes     *property.Resolver
	edges     *property.Resolver
	expandAll bool
	prefixes  *Prefixes
	logger    *slog.Logger
}

// New creates an adapter writing to m with its own prefix table.
func New(m network.Mutator, opts Options) *Network {
	return &Network{
		net:       m,
		nodes:     property.NewResolver(opts.Nodes.WithDefaultLength()),
		edges:     property.NewResolver(opts.Edges.WithDefaultLength()),
		expandAll: opts.ExpandAll,
		prefixes:  NewPrefixes(),
		logger:    logging.New("sparql"),
	}
}

// Prefixes returns the adapter's prefix table
func (n *Network) Prefixes() *Prefixes { return n.prefixes }

// LoadPrefixes declares the PREFIX lines of a query so its shorthands are
// used when rendering URIs.
func (n *Network) LoadPrefixes(query string) {
	count := n.prefixes.Scan(query)
	n.logger.Debug("Loaded query prefixes", "count", count)
}

// triple holds one binding resolved against the triple variable names
type triple struct {
	subject, predicate, object Value
}

// pending accumulates the node insertion of one subject
type pending struct {
	id            string
	label         string
	discriminator string
	properties    map[string]any
}

// AddResults adds every triple of r. Results that do not bind a triple of
// variables are ignored.
func (n *Network) AddResults(r *Results) error {
	names, ok, err := tripleNames(r.Head.Vars)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	triples := make([]triple, 0, len(r.Results.Bindings))
	for _, b := range r.Results.Bindings {
		s, sok := b[names[0]]
		p, pok := b[names[1]]
		o, ook := b[names[2]]
		if !sok || !pok || !ook {
			continue
		}
		triples = append(triples, triple{subject: s, predicate: p, object: o})
	}
	slices.SortStableFunc(triples, func(a, b triple) int {
		return strings.Compare(a.subject.Value, b.subject.Value)
	})

	var edges []triple
	var current *pending
	for _, t := range triples {
		if current == nil || current.id != t.subject.Value {
			if err := n.flush(current); err != nil {
				return err
			}
			current = &pending{id: t.subject.Value, properties: map[string]any{}}
		}

		if n.isEdge(t) {
			edges = append(edges, t)
		}
		n.accumulate(current, t)
	}
	if err := n.flush(current); err != nil {
		return err
	}

	for _, t := range edges {
		if err := n.addEdge(t); err != nil {
			return err
		}
	}
	n.logger.Debug("Added bindings", "triples", len(triples), "edges", len(edges))
	return nil
}

func tripleNames(vars []string) ([3]string, bool, error) {
	if len(vars) < 3 {
		return [3]string{}, false, nil
	}
	hasLong := containsAll(vars, longTriple)
	hasShort := containsAll(vars, shortTriple)
	switch {
	case hasLong && hasShort:
		return [3]string{}, false, ErrInvalidBindingsCombination
	case hasLong:
		return longTriple, true, nil
	case hasShort:
		return shortTriple, true, nil
	default:
		return [3]string{}, false, nil
	}
}

func containsAll(vars []string, names [3]string) bool {
	for _, name := range names {
		if !slices.Contains(vars, name) {
			return false
		}
	}
	return true
}

func (n *Network) isEdge(t triple) bool {
	if n.expandAll {
		return true
	}
	if t.predicate.Value == LabelPredicate {
		return false
	}
	return t.object.IsResource()
}

// accumulate records a binding on its subject. Bindings that become edges
// are not properties, except for rdf:type, which is both.
func (n *Network) accumulate(p *pending, t triple) {
	pred := t.predicate.Value
	switch pred {
	case LabelPredicate:
		if p.label == "" {
			p.label = t.object.Value
		}
	case TypePredicate:
		if p.discriminator == "" {
			p.discriminator = n.render(t.object)
		}
	}

	if n.isEdge(t) && pred != TypePredicate {
		return
	}

	key := n.prefixes.Shorten(pred)
	value := n.value(t.object)
	switch existing := p.properties[key].(type) {
	case nil:
		p.properties[key] = value
	case []any:
		p.properties[key] = append(existing, value)
	default:
		p.properties[key] = []any{existing, value}
	}
}

// flush inserts the node of a subject group with a single mutation.
func (n *Network) flush(p *pending) error {
	if p == nil {
		return nil
	}
	fallback := p.label
	if fallback == "" {
		fallback = n.prefixes.Shorten(p.id)
	}
	ent := property.Entity{
		ID:            p.id,
		Discriminator: p.discriminator,
		Properties:    p.properties,
		Raw:           p.id,
	}
	return n.net.AddNode(p.id, n.nodeData(ent, fallback))
}

func (n *Network) nodeData(ent property.Entity, fallback string) map[string]any {
	display := ent
	if n.nodes.Options().Display.IsDefault() {
		display.Discriminator = fallback
	}
	label, title := n.nodes.LabelTitle(display, fallback)

	props := ent.Properties
	if props == nil {
		props = map[string]any{}
	}
	return map[string]any{
		model.AttrLabel:      label,
		model.AttrTitle:      title,
		model.AttrGroup:      n.nodes.Group(ent),
		model.AttrProperties: props,
	}
}

// addEdge inserts the edge of a deferred binding, creating the object node
// when it has not been seen as a subject.
func (n *Network) addEdge(t triple) error {
	from, to := t.subject.Value, t.object.Value
	if !n.net.HasNode(to) {
		ent := property.Entity{ID: to, Raw: to}
		if err := n.net.AddNode(to, n.nodeData(ent, n.render(t.object))); err != nil {
			return err
		}
	}

	pred := t.predicate.Value
	short := n.prefixes.Shorten(pred)
	ent := property.Entity{ID: pred, Discriminator: short, Raw: pred}
	label, title := n.edges.LabelTitle(ent, short)

	data := map[string]any{
		model.AttrProperties: map[string]any{},
		model.AttrDirected:   true,
	}
	if !n.edges.Options().Group.IsDefault() {
		data[model.AttrGroup] = n.edges.Group(ent)
	}
	return n.net.AddEdge(from, to, pred, label, title, data)
}

// render returns the display text of a term
func (n *Network) render(v Value) string {
	if v.Type == TypeURI {
		return n.prefixes.Shorten(v.Value)
	}
	return v.Value
}

// value returns the property value of a term
func (n *Network) value(v Value) any {
	if v.IsResource() {
		return n.render(v)
	}
	return v.Literal()
}
