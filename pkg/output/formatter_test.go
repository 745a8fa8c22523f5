package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/resultgraph/pkg/graph"
	"github.com/ritzau/resultgraph/pkg/model"
)

func TestSummarize(t *testing.T) {
	g := graph.New()
	g.AddNode("1", map[string]any{model.AttrGroup: "airport"})
	g.AddNode("2", map[string]any{model.AttrGroup: "airport"})
	g.AddNode("3", map[string]any{model.AttrGroup: "country"})
	g.AddNode("4", nil)
	g.AddEdge("1", "2", "e1", "route", "route", map[string]any{model.AttrDirected: true})
	g.AddEdge("3", "1", "e2", "contains", "contains", map[string]any{model.AttrDirected: false})

	s := Summarize(g)

	if s.Nodes != 4 || s.Edges != 2 {
		t.Errorf("Expected 4 nodes and 2 edges, got %d and %d", s.Nodes, s.Edges)
	}
	if s.Directed != 1 || s.Undirected != 1 {
		t.Errorf("Expected 1 directed and 1 undirected edge, got %d and %d", s.Directed, s.Undirected)
	}
	want := []GroupCount{{Group: "airport", Nodes: 2}, {Group: "country", Nodes: 1}}
	if len(s.Groups) != len(want) {
		t.Fatalf("Expected groups %v, got %v", want, s.Groups)
	}
	for i := range want {
		if s.Groups[i] != want[i] {
			t.Errorf("Group %d: expected %v, got %v", i, want[i], s.Groups[i])
		}
	}
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	PrintSummary(&buf, "routes.json", Summary{
		Nodes:    3,
		Edges:    2,
		Directed: 2,
		Groups:   []GroupCount{{Group: "airport", Nodes: 3}},
	})

	out := buf.String()
	for _, want := range []string{"Source: routes.json", "Nodes: 3", "Edges: 2 (2 directed, 0 undirected)", "GROUPS:", "airport"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintEmptySummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	PrintSummary(&buf, "", Summary{})

	if !strings.Contains(buf.String(), "The graph is empty") {
		t.Errorf("Expected empty notice, got:\n%s", buf.String())
	}
}
