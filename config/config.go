// Package config loads querykit settings from YAML.
//
//	assemblers:
//	  todo_item:
//	    fields: { id: entityId, title: entityTitle }
//	relations:
//	  concurrency: 4
//	cache:
//	  namespace: todo_items
//	  ttl: 5m
//	stats:
//	  slowThreshold: 200ms
//	  logSlow: true
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

// Config holds the settings of one querykit composition.
type Config struct {
	// Assemblers maps an assembler name to its field map.
	Assemblers map[string]Assembler `yaml:"assemblers,omitempty"`

	// Relations configures relation fan-out.
	Relations Relations `yaml:"relations,omitempty"`

	// Cache configures the cached query service.
	Cache Cache `yaml:"cache,omitempty"`

	// Stats configures the stats query service.
	Stats Stats `yaml:"stats,omitempty"`
}

// Assembler holds the DTO to entity field names of an assembler.
type Assembler struct {
	Fields map[string]string `yaml:"fields"`
}

// Relations configures relation fan-out.
type Relations struct {
	// Concurrency is the number of owners of a batch resolved at once.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// Cache configures the cached query service.
type Cache struct {
	Namespace string        `yaml:"namespace,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty"`
}

// Stats configures the stats query service.
type Stats struct {
	SlowThreshold time.Duration `yaml:"slowThreshold,omitempty"`
	// LogSlow logs slow operations to the default slog logger.
	LogSlow bool `yaml:"logSlow,omitempty"`
}

// Load reads and validates a configuration. Unknown keys are rejected.
// An empty document yields the zero configuration.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and validates the configuration file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate reports every invalid setting. A field map is invalid if it maps
// two DTO fields to one entity field, since responses could not be renamed
// back.
func (c *Config) Validate() error {
	var errs []error
	for _, name := range sortedKeys(c.Assemblers) {
		seen := make(map[string]string)
		fields := c.Assemblers[name].Fields
		for _, from := range sortedKeys(fields) {
			to := fields[from]
			switch prev, dup := seen[to]; {
			case from == "" || to == "":
				errs = append(errs, fmt.Errorf("config: assembler %q: empty field name", name))
			case dup:
				errs = append(errs, fmt.Errorf("config: assembler %q: %q and %q both map to %q", name, prev, from, to))
			default:
				seen[to] = from
			}
		}
	}
	if c.Relations.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("config: relations: negative concurrency %d", c.Relations.Concurrency))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("config: cache: negative ttl %s", c.Cache.TTL))
	}
	if c.Stats.SlowThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: stats: negative slow threshold %s", c.Stats.SlowThreshold))
	}
	return errors.Join(errs...)
}

// FieldMapFor returns the field map of the named assembler.
func FieldMapFor[DTO, Entity any](c *Config, name string) (query.FieldMap[DTO, Entity], error) {
	a, ok := c.Assemblers[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown assembler %q", name)
	}
	m := make(query.FieldMap[DTO, Entity], len(a.Fields))
	for from, to := range a.Fields {
		m[from] = to
	}
	return m, nil
}

// RelationOptions returns the options for service.NewRelationQueryService.
func (c *Config) RelationOptions() []service.RelationOption {
	var opts []service.RelationOption
	if c.Relations.Concurrency > 0 {
		opts = append(opts, service.WithConcurrency(c.Relations.Concurrency))
	}
	return opts
}

// CacheOptions returns the options for service.NewCachedQueryService.
func (c *Config) CacheOptions() []service.CacheOption {
	var opts []service.CacheOption
	if c.Cache.Namespace != "" {
		opts = append(opts, service.WithNamespace(c.Cache.Namespace))
	}
	if c.Cache.TTL > 0 {
		opts = append(opts, service.WithTTL(c.Cache.TTL))
	}
	return opts
}

// StatsOptions returns the options for service.NewStatsQueryService.
func (c *Config) StatsOptions() []service.StatsOption {
	var opts []service.StatsOption
	if c.Stats.SlowThreshold > 0 {
		opts = append(opts, service.WithSlowThreshold(c.Stats.SlowThreshold))
	}
	if c.Stats.LogSlow {
		opts = append(opts, service.WithSlowQueryLog(nil))
	}
	return opts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
