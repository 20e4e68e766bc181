package manager

import (
	"encoding/json"
	"fmt"
)

// Config is the top-level engine configuration document.
type Config struct {
	AdditionalPackageFolders []string      `json:"additionalPackageFolders"`
	Blocks                   []BlockConfig `json:"blocks"`
	Routes                   []RouteConfig `json:"routes"`
}

// BlockConfig describes one block entry in the configuration document.
type BlockConfig struct {
	Name      string          `json:"name"`
	ClassName string          `json:"className"`
	Config    json.RawMessage `json:"config"`
}

// RouteConfig describes one route entry in the configuration document.
// Source strings take the form "block" or "block.port".
type RouteConfig struct {
	Name         string   `json:"name,omitempty"`
	Dispatcher   string   `json:"dispatcher,omitempty"`
	Sources      []string `json:"sources"`
	Destinations []string `json:"destinations"`
}

// ParseConfig decodes raw as a Config document and runs the structural
// checks a JSON Schema would, modeled on the teacher's hand-rolled
// component.ValidateConfig rather than a schema-description library: no
// such library appears anywhere in the retrieved corpus. This turns
// malformed documents into one readable error instead of a confusing
// cascade of graph-build errors.
func ParseConfig(raw []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := validateConfigShape(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfigShape(cfg Config) error {
	for i, b := range cfg.Blocks {
		if b.Name == "" {
			return fmt.Errorf("config: blocks[%d]: name is required", i)
		}
		if b.ClassName == "" {
			return fmt.Errorf("config: blocks[%d]: className is required", i)
		}
	}
	for i, r := range cfg.Routes {
		if len(r.Sources) == 0 {
			return fmt.Errorf("config: routes[%d]: sources must be non-empty", i)
		}
		if len(r.Destinations) == 0 {
			return fmt.Errorf("config: routes[%d]: destinations must be non-empty", i)
		}
	}
	return nil
}
