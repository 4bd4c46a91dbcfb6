// Package config loads CLI-wide toolchain settings from a YAML file,
// grounded on the corpus's habit of keeping ambient tool config in
// small, independently loadable structs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stanford-oval/thingtalk-go/nnsyntax"
)

// Config holds the settings shared by the ttc and tt2nn command-line
// tools.
type Config struct {
	// NNVersion selects the legacy-rewrite table UpgradeLegacy applies
	// before decoding, "" meaning the current grammar.
	NNVersion string `yaml:"nn_version"`
	// EntityAllocation selects the entity numbering scheme Encode uses.
	EntityAllocation nnsyntax.AllocationMode `yaml:"entity_allocation"`
	// SchemaCacheTTLSeconds is passed by cmd/ttc to
	// schema.NewCachingRetriever as its per-fetch deadline. Cached
	// schemas do not expire by age; the cache evicts by LRU only.
	SchemaCacheTTLSeconds int `yaml:"schema_cache_ttl_seconds"`
	// RequireGrounding rejects Encode calls whose literals cannot be
	// matched against the source sentence.
	RequireGrounding bool `yaml:"require_grounding"`
}

// Default returns the configuration ttc/tt2nn fall back to when no
// config file is given.
func Default() Config {
	return Config{
		NNVersion:             "",
		EntityAllocation:      nnsyntax.Sequential,
		SchemaCacheTTLSeconds: 300,
		RequireGrounding:      false,
	}
}

// Load reads and validates a YAML config file at path, filling in
// Default() for any field left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	switch cfg.EntityAllocation {
	case nnsyntax.Sequential, nnsyntax.Consecutive, nnsyntax.NonConsecutive:
	default:
		return Config{}, fmt.Errorf("config: unknown entity_allocation %q", cfg.EntityAllocation)
	}
	return cfg, nil
}
