package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/ritzau/resultgraph/pkg/graph"
)

// GroupCount is the number of nodes sharing a group
type GroupCount struct {
	Group string
	Nodes int
}

// Summary counts the contents of a populated graph
type Summary struct {
	Nodes      int
	Edges      int
	Directed   int
	Undirected int
	Groups     []GroupCount // Largest first
}

// Summarize counts nodes, edges and node groups of g
func Summarize(g *graph.Graph) Summary {
	s := Summary{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
	}

	counts := make(map[string]int)
	for _, n := range g.Nodes() {
		if n.Group != "" {
			counts[n.Group]++
		}
	}
	for group, n := range counts {
		s.Groups = append(s.Groups, GroupCount{Group: group, Nodes: n})
	}
	sort.Slice(s.Groups, func(i, j int) bool {
		if s.Groups[i].Nodes != s.Groups[j].Nodes {
			return s.Groups[i].Nodes > s.Groups[j].Nodes
		}
		return s.Groups[i].Group < s.Groups[j].Group
	})

	for _, e := range g.Edges() {
		if e.Directed {
			s.Directed++
		} else {
			s.Undirected++
		}
	}
	return s
}

// PrintSummary prints a nicely formatted graph summary with colors
func PrintSummary(w io.Writer, source string, s Summary) {
	// Color definitions
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Result Graph - Summary")
	bold.Fprintln(w, "======================")
	if source != "" {
		fmt.Fprintf(w, "Source: %s\n", source)
	}

	if s.Nodes == 0 {
		yellow.Fprintln(w, "The graph is empty")
		return
	}

	green.Fprintf(w, "Nodes: %d\n", s.Nodes)
	green.Fprintf(w, "Edges: %d", s.Edges)
	fmt.Fprintf(w, " (%d directed, %d undirected)\n", s.Directed, s.Undirected)
	fmt.Fprintln(w)

	if len(s.Groups) > 0 {
		bold.Fprintln(w, "GROUPS:")
		for _, gc := range s.Groups {
			cyan.Fprintf(w, "  %-30s", gc.Group)
			fmt.Fprintf(w, " %d node(s)\n", gc.Nodes)
		}
	}
}
