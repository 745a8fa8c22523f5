// Package property resolves configurable property specifications against
// graph entities to produce display labels, tooltips and group values.
//
// A specification is configured as text and parsed once:
//
//	""                          discriminator (the entity's label or type)
//	"name"                      properties["name"]
//	"names[1]"                  element 1 of the list in properties["names"]
//	`{"airport":"code"}`        per-discriminator sub-specs
//	`{"airport":["names",1]}`   per-discriminator indexed sub-spec
//	"raw"                       the entity's raw string form (grouping only)
//
// The keys "id" and "label" (and their T./~ variants) are reserved aliases
// for the entity's identity and discriminator. Text that cannot be parsed
// yields a spec that never resolves; it is never an error.
package property

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the variant of a parsed Spec
type Kind int

const (
	KindDefault Kind = iota
	KindPlain
	KindPerVariant
	KindIndexed
	KindRaw
	KindUnresolvable
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindPlain:
		return "plain"
	case KindPerVariant:
		return "per-variant"
	case KindIndexed:
		return "indexed"
	case KindRaw:
		return "raw"
	case KindUnresolvable:
		return "unresolvable"
	default:
		return "unknown"
	}
}

// RawSentinel selects grouping by the entity's raw string form
const RawSentinel = "raw"

// Reserved aliases resolving to the entity's identity or discriminator
// instead of a property lookup.
var (
	idAliases    = map[string]bool{"id": true, "T.id": true, "~id": true}
	labelAliases = map[string]bool{"label": true, "T.label": true, "~labels": true, "~type": true}
)

var indexedPattern = regexp.MustCompile(`^(.+)\[(\d+)\]$`)

// Spec is a parsed property specification
type Spec struct {
	kind     Kind
	key      string
	index    int
	variants map[string]Spec
	text     string
}

// Default returns the spec that resolves to the entity's discriminator
func Default() Spec { return Spec{kind: KindDefault} }

// Plain returns a spec reading properties[key]
func Plain(key string) Spec { return Spec{kind: KindPlain, key: key, text: key} }

// Indexed returns a spec reading element index of the list properties[key]
func Indexed(key string, index int) Spec {
	return Spec{kind: KindIndexed, key: key, index: index, text: fmt.Sprintf("%s[%d]", key, index)}
}

// PerVariant returns a spec selecting a sub-spec by discriminator
func PerVariant(variants map[string]Spec) Spec {
	return Spec{kind: KindPerVariant, variants: variants}
}

// Parse converts configuration text into a Spec
func Parse(text string) Spec {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return Default()
	case trimmed == RawSentinel:
		return Spec{kind: KindRaw, text: trimmed}
	case strings.HasPrefix(trimmed, "{"):
		return parseVariants(trimmed)
	}

	if m := indexedPattern.FindStringSubmatch(trimmed); m != nil {
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return unresolvable(trimmed)
		}
		return Indexed(m[1], index)
	}
	return Plain(trimmed)
}

func unresolvable(text string) Spec {
	return Spec{kind: KindUnresolvable, text: text}
}

func parseVariants(text string) Spec {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return unresolvable(text)
	}

	variants := make(map[string]Spec, len(raw))
	for discriminator, msg := range raw {
		variants[discriminator] = parseVariant(msg)
	}
	s := PerVariant(variants)
	s.text = text
	return s
}

// parseVariant accepts "key", "key[1]" or ["key", 1]
func parseVariant(msg json.RawMessage) Spec {
	var key string
	if err := json.Unmarshal(msg, &key); err == nil {
		sub := Parse(key)
		if sub.kind == KindPerVariant || sub.kind == KindRaw {
			return unresolvable(key)
		}
		return sub
	}

	var tuple []any
	if err := json.Unmarshal(msg, &tuple); err == nil && len(tuple) == 2 {
		k, kok := tuple[0].(string)
		idx, iok := tuple[1].(float64)
		if kok && iok && idx >= 0 && idx == float64(int(idx)) {
			return Indexed(k, int(idx))
		}
	}
	return unresolvable(string(msg))
}

// Kind returns the variant of the spec
func (s Spec) Kind() Kind { return s.kind }

// IsDefault reports whether the spec falls back to the discriminator
func (s Spec) IsDefault() bool { return s.kind == KindDefault }

// String returns the configuration text the spec was parsed from
func (s Spec) String() string { return s.text }

// Entity is the view of a node or edge that specs resolve against
type Entity struct {
	ID            string
	Discriminator string
	Properties    map[string]any
	Raw           string // Raw string form, used by the raw grouping sentinel
}

// Resolve evaluates the spec against e. The boolean is false when the spec
// does not apply to the entity; callers then use their fallback.
func (s Spec) Resolve(e Entity) (any, bool) {
	switch s.kind {
	case KindDefault:
		return e.Discriminator, e.Discriminator != ""
	case KindRaw:
		return e.Raw, e.Raw != ""
	case KindPerVariant:
		sub, ok := s.variants[e.Discriminator]
		if !ok {
			return nil, false
		}
		return sub.Resolve(e)
	case KindIndexed:
		list, ok := e.Properties[s.key].([]any)
		if !ok || s.index < 0 || s.index >= len(list) {
			return nil, false
		}
		return list[s.index], true
	case KindPlain:
		if idAliases[s.key] {
			return e.ID, e.ID != ""
		}
		if labelAliases[s.key] {
			return e.Discriminator, e.Discriminator != ""
		}
		v, ok := e.Properties[s.key]
		return v, ok
	default:
		return nil, false
	}
}
