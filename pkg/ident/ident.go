// Package ident synthesizes identifiers and display labels for entities that
// arrive without them.
package ident

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ritzau/resultgraph/pkg/model"
)

// Namespace scopes content-derived identifiers so the same content always
// maps to the same id and never collides with ids from other namespaces.
var Namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("resultgraph.content"))

// Ellipsis marks a truncated label
const Ellipsis = "..."

// MinLabelLength is the floor applied to any configured label length
const MinLabelLength = 3

// ContentID returns a deterministic identifier for v derived from its JSON
// serialization. Map keys serialize in sorted order, so equal maps yield equal
// ids regardless of construction order.
func ContentID(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	return uuid.NewSHA1(Namespace, data).String()
}

// ConcatValues joins the formatted values of m in key order. Maps without a
// natural label get this as their discriminator. An empty map falls back to
// its content id so the result is never empty.
func ConcatValues(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(model.FormatValue(m[k]))
	}
	if b.Len() == 0 {
		return ContentID(m)
	}
	return b.String()
}

// ClampLength applies the minimum label length.
func ClampLength(maxLength int) int {
	if maxLength < MinLabelLength {
		return MinLabelLength
	}
	return maxLength
}

// Truncate returns the full text as title and a label of at most maxLength
// characters. A label that had to be cut ends in an ellipsis.
func Truncate(text string, maxLength int) (title, label string) {
	maxLength = ClampLength(maxLength)
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text, text
	}
	return text, string(runes[:maxLength-len(Ellipsis)]) + Ellipsis
}
