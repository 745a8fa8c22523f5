package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Format     string  `koanf:"format"`   // auto, gremlin, sparql or opencypher
	Input      string  `koanf:"input"`    // Result file to ingest at startup
	Query      string  `koanf:"query"`    // Query text file, scanned for SPARQL prefixes
	SeedDir    string  `koanf:"seed_dir"` // Directory of result files to ingest
	WebMode    bool    `koanf:"web"`
	Port       int     `koanf:"port"`
	Watch      bool    `koanf:"watch"`
	JSON       bool    `koanf:"json"` // Print the node-link snapshot
	DOT        bool    `koanf:"dot"`  // Print the graph as DOT
	Verbosity  string  `koanf:"verbosity"`
	VerboseCnt int     `koanf:"verbose"`
	LogJSON    bool    `koanf:"log_json"` // Structured JSON logs instead of the compact console format
	Display    Display `koanf:"display"`
}

// Display configures how adapters label, describe and group entities.
// Property specs are kept as text and parsed when an adapter is built.
type Display struct {
	LabelMaxLength      int    `koanf:"label_max_length"`
	EdgeLabelMaxLength  int    `koanf:"edge_label_max_length"`
	DisplayProperty     string `koanf:"display_property"`
	EdgeDisplayProperty string `koanf:"edge_display_property"`
	TooltipProperty     string `koanf:"tooltip_property"`
	EdgeTooltipProperty string `koanf:"edge_tooltip_property"`
	GroupByProperty     string `koanf:"group_by_property"`
	EdgeGroupByProperty string `koanf:"edge_group_by_property"`
	IgnoreGroups        bool   `koanf:"ignore_groups"`
	GroupByDepth        bool   `koanf:"group_by_depth"`
	ExpandAll           bool   `koanf:"expand_all"`
	PathPattern         string `koanf:"path_pattern"`
}

// Defaults returns the default configuration values
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"format":    "auto",
		"input":     "",
		"query":     "",
		"seed_dir":  "",
		"web":       false,
		"port":      8080,
		"watch":     false,
		"json":      false,
		"dot":       false,
		"verbosity": "",
		"verbose":   0,
		"log_json":  false,
		"display": map[string]interface{}{
			"label_max_length":       10,
			"edge_label_max_length":  10,
			"display_property":       "",
			"edge_display_property":  "",
			"tooltip_property":       "",
			"edge_tooltip_property":  "",
			"group_by_property":      "",
			"edge_group_by_property": "",
			"ignore_groups":          false,
			"group_by_depth":         false,
			"expand_all":             false,
			"path_pattern":           "",
		},
	}
}

// displayFlags are command-line flags that set keys of the display block
var displayFlags = map[string]bool{
	"label-max-length":       true,
	"edge-label-max-length":  true,
	"display-property":       true,
	"edge-display-property":  true,
	"tooltip-property":       true,
	"edge-tooltip-property":  true,
	"group-by-property":      true,
	"edge-group-by-property": true,
	"ignore-groups":          true,
	"group-by-depth":         true,
	"expand-all":             true,
	"path-pattern":           true,
}

// FlagKey maps a command-line flag name to its configuration key
func FlagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if displayFlags[name] {
		return "display." + key
	}
	return key
}

// EnvKey maps an environment variable to its configuration key. A double
// underscore separates nesting levels: RESULTGRAPH_DISPLAY__EXPAND_ALL sets
// display.expand_all.
func EnvKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "RESULTGRAPH_"))
	return strings.ReplaceAll(s, "__", ".")
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return LoadFile("resultgraph.toml", f)
}

// LoadFile is Load with an explicit configuration file path
func LoadFile(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	// We ignore errors here as the file might not exist
	if path != "" {
		_ = k.Load(file.Provider(path), toml.Parser())
	}

	// 3. Environment Variables
	if err := k.Load(env.Provider("RESULTGRAPH_", ".", EnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		provider := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return FlagKey(fl.Name), posflag.FlagVal(f, fl)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
