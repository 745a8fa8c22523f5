package property

import (
	"testing"

	"github.com/ritzau/resultgraph/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func airport() Entity {
	return Entity{
		ID:            "22",
		Discriminator: "airport",
		Properties: map[string]any{
			"code":  "SJC",
			"desc":  "Norman Y. Mineta San Jose International Airport",
			"names": []any{"San Jose", "Mineta"},
		},
		Raw: "v[22]",
	}
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		text string
		kind Kind
	}{
		{"", KindDefault},
		{"   ", KindDefault},
		{"code", KindPlain},
		{"names[1]", KindIndexed},
		{`{"airport":"code"}`, KindPerVariant},
		{`{"airport":`, KindUnresolvable},
		{"raw", KindRaw},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.kind, Parse(tt.text).Kind())
		})
	}
}

func TestResolve(t *testing.T) {
	e := airport()

	tests := []struct {
		name  string
		text  string
		want  any
		found bool
	}{
		{"default is discriminator", "", "airport", true},
		{"id alias", "id", "22", true},
		{"T.id alias", "T.id", "22", true},
		{"label alias", "label", "airport", true},
		{"plain", "code", "SJC", true},
		{"plain missing", "city", nil, false},
		{"indexed", "names[1]", "Mineta", true},
		{"indexed out of range", "names[5]", nil, false},
		{"indexed on scalar", "code[0]", nil, false},
		{"per-variant match", `{"airport":"code"}`, "SJC", true},
		{"per-variant indexed", `{"airport":["names",0]}`, "San Jose", true},
		{"per-variant indexed text", `{"airport":"names[0]"}`, "San Jose", true},
		{"per-variant miss", `{"country":"code"}`, nil, false},
		{"malformed", `{"airport":"code"`, nil, false},
		{"raw", "raw", "v[22]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Parse(tt.text).Resolve(e)
			require.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelFallsBackToDiscriminatorForOtherVariant(t *testing.T) {
	r := NewResolver(Options{MaxLength: 10, Display: Parse(`{"airport":"code"}`)})
	country := Entity{ID: "c1", Discriminator: "country", Properties: map[string]any{"code": "US"}}

	label, title := r.LabelTitle(country, country.Discriminator)
	assert.Equal(t, "country", label)
	assert.Equal(t, "country", title)
}

func TestTooltipFallsBackToResolvedLabel(t *testing.T) {
	r := NewResolver(Options{
		MaxLength: 10,
		Display:   Parse("desc"),
		Tooltip:   Parse("missing"),
	})

	label, title := r.LabelTitle(airport(), "airport")
	assert.Equal(t, "Norman ...", label)
	assert.Equal(t, "Norman Y. Mineta San Jose International Airport", title)
}

func TestDistinctTooltip(t *testing.T) {
	r := NewResolver(Options{
		MaxLength: 20,
		Display:   Parse("code"),
		Tooltip:   Parse("desc"),
	})

	label, title := r.LabelTitle(airport(), "airport")
	assert.Equal(t, "SJC", label)
	assert.Equal(t, "Norman Y. Mineta San Jose International Airport", title)
}

func TestMaxLengthFloor(t *testing.T) {
	r := NewResolver(Options{MaxLength: 1, Display: Parse("code")})
	assert.Equal(t, 3, r.Options().MaxLength)

	label, _ := r.LabelTitle(airport(), "")
	assert.Equal(t, "SJC", label)

	r = NewResolver(Options{MaxLength: 0})
	assert.Equal(t, 3, r.Options().MaxLength)

	label, title := r.LabelTitle(Entity{ID: "x"}, "international")
	assert.Equal(t, "...", label)
	assert.Equal(t, "international", title)
}

func TestWithDefaultLength(t *testing.T) {
	assert.Equal(t, DefaultLabelMaxLength, Options{}.WithDefaultLength().MaxLength)
	assert.Equal(t, 4, Options{MaxLength: 4}.WithDefaultLength().MaxLength)
}

func TestGroup(t *testing.T) {
	e := airport()

	assert.Equal(t, "airport", NewResolver(Options{}).Group(e))
	assert.Equal(t, "SJC", NewResolver(Options{Group: Parse("code")}).Group(e))
	assert.Equal(t, model.DefaultGroup, NewResolver(Options{Group: Parse("city")}).Group(e))
	assert.Equal(t, "v[22]", NewResolver(Options{Group: Parse(RawSentinel)}).Group(e))
	assert.Equal(t, model.DefaultGroup, NewResolver(Options{Group: Parse("code"), IgnoreGroups: true}).Group(e))
}

func TestDepthGroup(t *testing.T) {
	assert.Equal(t, "__DEPTH-2__", NewResolver(Options{}).DepthGroup(2))
	assert.Equal(t, model.DefaultGroup, NewResolver(Options{IgnoreGroups: true}).DepthGroup(2))
}
