package ident

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		label     string
	}{
		{"fits", "route", 10, "route"},
		{"exact", "0123456789", 10, "0123456789"},
		{"cut", "San Jose International", 10, "San Jos..."},
		{"floor applied", "abcdef", 1, "..."},
		{"floor fits", "abc", 0, "abc"},
		{"multibyte", "Zürich-Flughafen", 8, "Züric..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, label := Truncate(tt.text, tt.maxLength)
			assert.Equal(t, tt.text, title)
			assert.Equal(t, tt.label, label)
			assert.LessOrEqual(t, utf8.RuneCountInString(label), ClampLength(tt.maxLength))
		})
	}
}

func TestTruncateProperties(t *testing.T) {
	inputs := []string{"", "a", "abc", "abcd", "graph database", strings.Repeat("x", 100)}

	for _, s := range inputs {
		for max := 3; max <= 12; max++ {
			title, label := Truncate(s, max)
			assert.Equal(t, s, title)
			assert.LessOrEqual(t, utf8.RuneCountInString(label), max)
			if utf8.RuneCountInString(s) <= max {
				assert.Equal(t, title, label)
			} else {
				assert.NotEqual(t, title, label)
				assert.True(t, strings.HasSuffix(label, Ellipsis))
			}
		}
	}
}

func TestContentIDDeterministic(t *testing.T) {
	a := map[string]any{"name": "SJC", "runways": 3.0}
	b := map[string]any{"runways": 3.0, "name": "SJC"}
	c := map[string]any{"name": "AUS", "runways": 3.0}

	assert.Equal(t, ContentID(a), ContentID(b))
	assert.NotEqual(t, ContentID(a), ContentID(c))
}

func TestConcatValues(t *testing.T) {
	assert.Equal(t, "SJC3", ConcatValues(map[string]any{"b": 3.0, "a": "SJC"}))
	assert.NotEmpty(t, ConcatValues(map[string]any{}))
}
