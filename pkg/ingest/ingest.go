// Package ingest is the integration layer between decoded query results and
// the result adapters. It detects result formats, builds adapters from the
// display configuration and serializes access to the shared graph.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ritzau/resultgraph/pkg/config"
	"github.com/ritzau/resultgraph/pkg/graph"
	"github.com/ritzau/resultgraph/pkg/gremlin"
	"github.com/ritzau/resultgraph/pkg/ident"
	"github.com/ritzau/resultgraph/pkg/logging"
	"github.com/ritzau/resultgraph/pkg/model"
	"github.com/ritzau/resultgraph/pkg/network"
	"github.com/ritzau/resultgraph/pkg/opencypher"
	"github.com/ritzau/resultgraph/pkg/property"
	"github.com/ritzau/resultgraph/pkg/result"
	"github.com/ritzau/resultgraph/pkg/sparql"
)

// ErrUnknownFormat is returned for a format name no adapter handles
var ErrUnknownFormat = errors.New("unknown result format")

// Format names a result shape
type Format string

const (
	FormatAuto       Format = "auto"
	FormatGremlin    Format = "gremlin"
	FormatSPARQL     Format = "sparql"
	FormatOpenCypher Format = "opencypher"
)

// ParseFormat validates a format name. The empty name means auto detection.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatGremlin, FormatSPARQL, FormatOpenCypher:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DetectFormat sniffs a result document. SPARQL JSON carries head.vars and
// results.bindings; openCypher carries a results list; anything else is
// treated as a property-graph result.
func DetectFormat(raw []byte) Format {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return FormatGremlin
	}

	results, hasResults := doc["results"]
	if _, hasHead := doc["head"]; hasHead && hasResults {
		var inner map[string]json.RawMessage
		if json.Unmarshal(results, &inner) == nil {
			if _, ok := inner["bindings"]; ok {
				return FormatSPARQL
			}
		}
	}
	if hasResults && bytes.HasPrefix(bytes.TrimSpace(results), []byte("[")) {
		return FormatOpenCypher
	}
	return FormatGremlin
}

// NodeOptions builds the node display options of the adapters
func NodeOptions(d config.Display) property.Options {
	return property.Options{
		MaxLength:    ident.ClampLength(d.LabelMaxLength),
		Display:      property.Parse(d.DisplayProperty),
		Tooltip:      property.Parse(d.TooltipProperty),
		Group:        property.Parse(d.GroupByProperty),
		IgnoreGroups: d.IgnoreGroups,
	}
}

// EdgeOptions builds the edge display options of the adapters
func EdgeOptions(d config.Display) property.Options {
	return property.Options{
		MaxLength:    ident.ClampLength(d.EdgeLabelMaxLength),
		Display:      property.Parse(d.EdgeDisplayProperty),
		Tooltip:      property.Parse(d.EdgeTooltipProperty),
		Group:        property.Parse(d.EdgeGroupByProperty),
		IgnoreGroups: d.IgnoreGroups,
	}
}

// Ingestor feeds result documents into one shared network. All methods are
// safe for concurrent use; adapters run one at a time.
type Ingestor struct {
	mu      sync.Mutex
	net     *network.Network
	format  Format
	display config.Display
	query   string
	logger  *slog.Logger
}

// New creates an ingestor. format is used for documents ingested without
// an explicit format.
func New(net *network.Network, format Format, display config.Display) *Ingestor {
	if format == "" {
		format = FormatAuto
	}
	return &Ingestor{
		net:     net,
		format:  format,
		display: display,
		logger:  logging.New("ingest"),
	}
}

// SetQuery sets the query text scanned for SPARQL prefix declarations
func (in *Ingestor) SetQuery(query string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.query = query
}

// Ingest adds one result document using the given format. FormatAuto and
// the empty format fall back to the ingestor's default, then to detection.
// Returns the format that was used.
func (in *Ingestor) Ingest(format Format, raw []byte) (Format, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if format == "" || format == FormatAuto {
		format = in.format
	}
	if format == FormatAuto {
		format = DetectFormat(raw)
	}

	var err error
	switch format {
	case FormatGremlin:
		err = in.ingestGremlin(raw)
	case FormatSPARQL:
		err = in.ingestSPARQL(raw)
	case FormatOpenCypher:
		err = in.ingestOpenCypher(raw)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return format, err
	}

	g := in.net.Graph()
	in.logger.Debug("Ingested results", "format", format, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return format, nil
}

// IngestFile reads and ingests one result file with the default format
func (in *Ingestor) IngestFile(path string) (Format, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	format, err := in.Ingest(FormatAuto, raw)
	if err != nil {
		return format, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return format, nil
}

// SeedDir ingests every *.json file of dir in name order. A file that fails
// is logged and skipped. Returns the number of files ingested.
func (in *Ingestor) SeedDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed directory: %w", err)
	}

	ingested := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := in.IngestFile(path); err != nil {
			in.logger.Warn("Skipping result file", "file", entry.Name(), "error", err)
			continue
		}
		ingested++
	}
	in.logger.Info("Seeded graph", "dir", dir, "files", ingested)
	return ingested, nil
}

// Reset replaces the graph with an empty one. Observers registered on the
// network's dispatcher stay registered.
func (in *Ingestor) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.net = network.Wrap(graph.New(), in.net.Events())
}

// View runs fn with the current graph while no ingestion is running
func (in *Ingestor) View(fn func(g *graph.Graph)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	fn(in.net.Graph())
}

// Snapshot returns the node-link form of the current graph
func (in *Ingestor) Snapshot() model.Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.net.Snapshot()
}

// Network returns the network the ingestor writes to
func (in *Ingestor) Network() *network.Network {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.net
}

func (in *Ingestor) ingestGremlin(raw []byte) error {
	v, err := result.DecodeGraphSON(raw)
	if err != nil {
		return err
	}
	pattern, err := gremlin.ParsePattern(in.display.PathPattern)
	if err != nil {
		return err
	}
	gn := gremlin.New(in.net, gremlin.Options{
		Nodes:        NodeOptions(in.display),
		Edges:        EdgeOptions(in.display),
		GroupByDepth: in.display.GroupByDepth,
		Pattern:      pattern,
	})
	return gn.AddResults(v)
}

func (in *Ingestor) ingestSPARQL(raw []byte) error {
	r, err := sparql.ParseResults(raw)
	if err != nil {
		return err
	}
	sn := sparql.New(in.net, sparql.Options{
		Nodes:     NodeOptions(in.display),
		Edges:     EdgeOptions(in.display),
		ExpandAll: in.display.ExpandAll,
	})
	sn.LoadPrefixes(in.query)
	return sn.AddResults(r)
}

func (in *Ingestor) ingestOpenCypher(raw []byte) error {
	r, err := opencypher.ParseResults(raw)
	if err != nil {
		return err
	}
	on := opencypher.New(in.net, opencypher.Options{
		Nodes:        NodeOptions(in.display),
		Edges:        EdgeOptions(in.display),
		GroupByDepth: in.display.GroupByDepth,
	})
	return on.AddResults(r)
}
