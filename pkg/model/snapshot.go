package model

// Snapshot is the node-link JSON form of a graph:
//
//	{"graph": {"directed": true, "multigraph": true, "nodes": [...], "links": [...]}}
type Snapshot struct {
	Graph NodeLinkData `json:"graph"`
}

// NodeLinkData holds the node and link lists of a snapshot. Each node entry
// is {"id": ..., attrs...} and each link entry is
// {"source": ..., "target": ..., "key": ..., attrs...}.
type NodeLinkData struct {
	Directed   bool             `json:"directed"`
	Multigraph bool             `json:"multigraph"`
	Graph      map[string]any   `json:"graph"`
	Nodes      []map[string]any `json:"nodes"`
	Links      []map[string]any `json:"links"`
}

// Keys reserved by the link entries of a snapshot.
const (
	LinkSource = "source"
	LinkTarget = "target"
	LinkKey    = "key"
)
