package property

import (
	"fmt"

	"github.com/ritzau/resultgraph/pkg/ident"
	"github.com/ritzau/resultgraph/pkg/model"
)

// DefaultLabelMaxLength is the label length of adapters built without
// display configuration
const DefaultLabelMaxLength = 10

// Options configures how one entity kind (nodes or edges) is displayed
type Options struct {
	MaxLength    int
	Display      Spec
	Tooltip      Spec // Default means "same as Display"
	Group        Spec
	IgnoreGroups bool
}

// WithDefaultLength returns o with DefaultLabelMaxLength when no length is
// set. Configured lengths, including zero, go through NewResolver's floor.
func (o Options) WithDefaultLength() Options {
	if o.MaxLength == 0 {
		o.MaxLength = DefaultLabelMaxLength
	}
	return o
}

// Display is the resolved presentation of an entity
type Display struct {
	Label string // Truncated to the configured length
	Title string // Full text, used as tooltip
	Group string
}

// Resolver computes labels, tooltips and groups for one entity kind
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver. The label length is clamped to its minimum.
func NewResolver(opts Options) *Resolver {
	opts.MaxLength = ident.ClampLength(opts.MaxLength)
	return &Resolver{opts: opts}
}

// Options returns the effective options
func (r *Resolver) Options() Options { return r.opts }

// LabelTitle resolves the display spec, then the tooltip spec. fallback is
// used when the display spec does not resolve. A distinct tooltip spec that
// does not resolve leaves the title produced by label resolution.
func (r *Resolver) LabelTitle(e Entity, fallback string) (label, title string) {
	text := fallback
	if v, ok := r.opts.Display.Resolve(e); ok {
		text = model.FormatValue(v)
	}
	title, label = ident.Truncate(text, r.opts.MaxLength)

	if !r.opts.Tooltip.IsDefault() {
		if v, ok := r.opts.Tooltip.Resolve(e); ok {
			title = model.FormatValue(v)
		}
	}
	return label, title
}

// Group resolves the grouping spec, falling back to the default group
func (r *Resolver) Group(e Entity) string {
	if r.opts.IgnoreGroups {
		return model.DefaultGroup
	}
	v, ok := r.opts.Group.Resolve(e)
	if !ok {
		return model.DefaultGroup
	}
	if group := model.FormatValue(v); group != "" {
		return group
	}
	return model.DefaultGroup
}

// DepthGroup returns the group used when grouping by traversal depth,
// honoring IgnoreGroups.
func (r *Resolver) DepthGroup(depth int) string {
	if r.opts.IgnoreGroups {
		return model.DefaultGroup
	}
	return DepthGroupName(depth)
}

// DepthGroupName formats the synthetic group of a traversal depth
func DepthGroupName(depth int) string {
	return fmt.Sprintf("__DEPTH-%d__", depth)
}

// Resolve computes label, title and group in that order
func (r *Resolver) Resolve(e Entity, fallback string) Display {
	label, title := r.LabelTitle(e, fallback)
	return Display{Label: label, Title: title, Group: r.Group(e)}
}
