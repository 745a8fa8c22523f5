package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ritzau/resultgraph/pkg/ingest"
	"github.com/ritzau/resultgraph/pkg/logging"
)

// ChangePlan describes what a batch of changes requires from the graph
type ChangePlan struct {
	NeedReseed      bool     // Rebuild the graph from the whole seed directory
	NeedQueryReload bool     // Re-read the query file before ingesting
	Ingest          []string // Result files to add to the current graph
	ChangedFiles    []string
}

// AnalyzeChanges determines how the graph must be updated for an event.
// Graph insertion only ever adds or replaces entities, so anything that can
// take entities away requires a reseed.
func AnalyzeChanges(event ChangeEvent) *ChangePlan {
	plan := &ChangePlan{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeRemoved:
		plan.NeedReseed = true

	case ChangeTypeQueryFile:
		// Prefix declarations change how every RDF entity is labeled
		plan.NeedQueryReload = true
		plan.NeedReseed = true

	case ChangeTypeResultFile:
		plan.Ingest = event.Paths
	}

	return plan
}

// Reloader applies change plans to an ingestor
type Reloader struct {
	in        *ingest.Ingestor
	dir       string
	queryFile string
	logger    *slog.Logger
}

// NewReloader creates a reloader for the seed directory dir. queryFile may
// be empty.
func NewReloader(in *ingest.Ingestor, dir, queryFile string) *Reloader {
	return &Reloader{in: in, dir: dir, queryFile: queryFile, logger: logging.New("watcher")}
}

// LoadQuery reads the query file into the ingestor
func (r *Reloader) LoadQuery() error {
	if r.queryFile == "" {
		return nil
	}
	query, err := os.ReadFile(r.queryFile)
	if err != nil {
		return fmt.Errorf("failed to read query file: %w", err)
	}
	r.in.SetQuery(string(query))
	return nil
}

// Apply updates the graph according to plan. Returns the number of result
// files ingested. A file that fails to ingest is logged and skipped.
func (r *Reloader) Apply(plan *ChangePlan) (int, error) {
	if plan.NeedQueryReload {
		if err := r.LoadQuery(); err != nil {
			return 0, err
		}
	}

	if plan.NeedReseed {
		r.in.Reset()
		return r.in.SeedDir(r.dir)
	}

	ingested := 0
	for _, path := range plan.Ingest {
		if _, err := os.Stat(path); err != nil {
			// Written and removed again within one batch
			continue
		}
		if _, err := r.in.IngestFile(path); err != nil {
			r.logger.Warn("Skipping result file", "file", filepath.Base(path), "error", err)
			continue
		}
		ingested++
	}
	return ingested, nil
}

// Run applies every change read from changes until ctx is done or changes
// is closed. notify, when set, is called after each applied batch.
func (r *Reloader) Run(ctx context.Context, changes <-chan ChangeEvent, notify func(ChangeEvent, int, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-changes:
			if !ok {
				return
			}
			plan := AnalyzeChanges(event)
			n, err := r.Apply(plan)
			if err != nil {
				r.logger.Error("Failed to apply changes", "type", event.Type, "files", len(event.Paths), "error", err)
			} else {
				r.logger.Info("Applied changes", "type", event.Type, "reseed", plan.NeedReseed, "ingested", n)
			}
			if notify != nil {
				notify(event, n, err)
			}
		}
	}
}
