package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ritzau/resultgraph/pkg/config"
	"github.com/ritzau/resultgraph/pkg/graph"
	"github.com/ritzau/resultgraph/pkg/ingest"
	"github.com/ritzau/resultgraph/pkg/logging"
	"github.com/ritzau/resultgraph/pkg/network"
	"github.com/ritzau/resultgraph/pkg/output"
	"github.com/ritzau/resultgraph/pkg/watcher"
	"github.com/ritzau/resultgraph/pkg/web"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("resultgraph", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resultgraph [flags] [result.json ...]\n\n")
		fs.PrintDefaults()
	}

	// Input
	fs.String("format", "auto", "Result format: auto, gremlin, sparql or opencypher")
	fs.StringP("input", "i", "", "Result file to ingest")
	fs.StringP("query", "q", "", "Query file scanned for SPARQL PREFIX declarations")
	fs.String("seed-dir", "", "Directory of *.json result files to ingest")

	// Output and modes
	fs.Bool("json", false, "Print the node-link JSON snapshot")
	fs.Bool("dot", false, "Print the graph in Graphviz DOT format")
	fs.Bool("web", false, "Serve the graph over HTTP")
	fs.Int("port", 8080, "Port for web server (only used with --web)")
	fs.Bool("watch", false, "Re-ingest the seed directory when its files change")
	fs.String("verbosity", "", "Log level: trace, debug, info, warn or error")
	fs.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	fs.Bool("log-json", false, "Write logs as JSON to stderr")

	// Display
	fs.Int("label-max-length", 10, "Maximum node label length")
	fs.Int("edge-label-max-length", 10, "Maximum edge label length")
	fs.String("display-property", "", "Node label property spec")
	fs.String("edge-display-property", "", "Edge label property spec")
	fs.String("tooltip-property", "", "Node tooltip property spec")
	fs.String("edge-tooltip-property", "", "Edge tooltip property spec")
	fs.String("group-by-property", "", "Node group property spec")
	fs.String("edge-group-by-property", "", "Edge group property spec")
	fs.Bool("ignore-groups", false, "Put every node in the default group")
	fs.Bool("group-by-depth", false, "Group nodes by traversal depth")
	fs.Bool("expand-all", false, "Treat every RDF binding as an edge")
	fs.String("path-pattern", "", "Path pattern, e.g. \"V,outE,inV\"")

	fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(logLevel(cfg))
	if cfg.LogJSON {
		logging.SetJSONOutput(os.Stderr)
	}

	if err := run(cfg, fs.Args()); err != nil {
		logging.Error("resultgraph failed", "error", err)
		os.Exit(1)
	}
}

// logLevel resolves the log level from --verbosity, falling back to the -v
// count.
func logLevel(cfg *config.Config) slog.Level {
	switch strings.ToLower(cfg.Verbosity) {
	case "trace":
		return logging.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	switch {
	case cfg.VerboseCnt >= 2:
		return logging.LevelTrace
	case cfg.VerboseCnt == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func run(cfg *config.Config, files []string) error {
	format, err := ingest.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	in := ingest.New(network.New(), format, cfg.Display)
	reloader := watcher.NewReloader(in, cfg.SeedDir, cfg.Query)
	if err := reloader.LoadQuery(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server registers its event forwarding before anything is ingested
	var server *web.Server
	if cfg.WebMode {
		if server, err = web.NewServer(in); err != nil {
			return err
		}
	}

	if err := seed(in, cfg, files); err != nil {
		return err
	}
	if server != nil {
		if err := server.PublishStatus("ingested", cfg.SeedDir, format, nil); err != nil {
			logging.Warn("Failed to publish status", "error", err)
		}
	}

	if cfg.Watch {
		if cfg.SeedDir == "" {
			return fmt.Errorf("--watch requires --seed-dir")
		}
		changes, err := startWatcher(ctx, cfg)
		if err != nil {
			return err
		}
		go reloader.Run(ctx, changes, func(event watcher.ChangeEvent, _ int, err error) {
			if server != nil {
				state := "ingested"
				if err != nil {
					state = "failed"
				}
				if perr := server.PublishStatus(state, cfg.SeedDir, format, err); perr != nil {
					logging.Warn("Failed to publish status", "error", perr)
				}
				return
			}
			in.View(func(g *graph.Graph) {
				output.PrintSummary(os.Stdout, cfg.SeedDir, output.Summarize(g))
			})
		})
	}

	if server != nil {
		errc := make(chan error, 1)
		go func() { errc <- server.Start(cfg.Port) }()
		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
			logging.Info("Shutting down")
			return server.Publisher().Close()
		}
	}

	if err := printGraph(in, cfg, files); err != nil {
		return err
	}

	if cfg.Watch {
		<-ctx.Done()
	}
	return nil
}

// seed ingests the seed directory, then --input, then positional files.
// Only seed directory failures are skipped; an explicit file that fails
// aborts the run.
func seed(in *ingest.Ingestor, cfg *config.Config, files []string) error {
	if cfg.SeedDir != "" {
		if _, err := in.SeedDir(cfg.SeedDir); err != nil {
			return err
		}
	}

	if cfg.Input != "" {
		files = append([]string{cfg.Input}, files...)
	}
	for _, path := range files {
		used, err := in.IngestFile(path)
		if err != nil {
			return err
		}
		logging.Debug("Ingested result file", "file", path, "format", used)
	}
	return nil
}

func printGraph(in *ingest.Ingestor, cfg *config.Config, files []string) error {
	switch {
	case cfg.JSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(in.Snapshot())

	case cfg.DOT:
		var (
			out []byte
			err error
		)
		in.View(func(g *graph.Graph) {
			out, err = g.MarshalDOT("results")
		})
		if err != nil {
			return fmt.Errorf("failed to render DOT: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err

	default:
		source := cfg.SeedDir
		if len(files) > 0 || cfg.Input != "" {
			source = strings.Join(append(nonEmpty(cfg.Input), files...), ", ")
		}
		in.View(func(g *graph.Graph) {
			output.PrintSummary(os.Stdout, source, output.Summarize(g))
		})
		return nil
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func startWatcher(ctx context.Context, cfg *config.Config) (<-chan watcher.ChangeEvent, error) {
	fw, err := watcher.NewFileWatcher(cfg.SeedDir, cfg.Query)
	if err != nil {
		return nil, err
	}
	if err := fw.Start(ctx); err != nil {
		return nil, err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)
	return debouncer.Output(), nil
}
