// Package config loads cache presets and logging settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure reported by Validate.
var ErrInvalid = errors.New("config: invalid")

// Preset names used by the default configuration.
const (
	PresetGeocoding = "geocoding"
	PresetWeather   = "weather"
	PresetLists     = "lists"
)

// Config is the root document.
type Config struct {
	Log    Log              `yaml:"log"`
	Caches map[string]Cache `yaml:"caches"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | text
	Output string `yaml:"output"` // stdout | stderr | file path
}

// Cache holds the four limits of one bounded cache.
// Durations are written as Go duration strings ("30m", "72h").
type Cache struct {
	MaxEntries     int           `yaml:"max_entries"`
	MaxMemoryBytes int64         `yaml:"max_memory_bytes"`
	TTL            time.Duration `yaml:"ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// Default returns the built-in presets: short-lived, high-volume geocoding
// lookups; forecasts valid for a few hours; generated lists kept for days.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Format: "json", Output: "stderr"},
		Caches: map[string]Cache{
			PresetGeocoding: {
				MaxEntries:     2000,
				MaxMemoryBytes: 8 << 20,
				TTL:            30 * time.Minute,
				SweepInterval:  5 * time.Minute,
			},
			PresetWeather: {
				MaxEntries:     1000,
				MaxMemoryBytes: 16 << 20,
				TTL:            3 * time.Hour,
				SweepInterval:  10 * time.Minute,
			},
			PresetLists: {
				MaxEntries:     500,
				MaxMemoryBytes: 32 << 20,
				TTL:            72 * time.Hour,
				SweepInterval:  time.Hour,
			},
		},
	}
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default() and validates the result.
//
// Presets are merged by name: a preset that is only partly given keeps the
// default for every omitted field, while a field that is present wins even
// when it is zero ("ttl: 0s"). Built-in presets not named in the file are
// kept unless the document sets "replace_presets: true", in which case the
// file's presets are the complete set.
func Parse(data []byte) (Config, error) {
	def := Default()
	doc := document{Log: def.Log}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	cfg := Config{Log: doc.Log, Caches: def.Caches}
	if doc.ReplacePresets {
		cfg.Caches = make(map[string]Cache, len(doc.Caches))
	}
	for name, c := range doc.Caches {
		cfg.Caches[name] = c.over(def.Caches[name])
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format))
	}
	for _, name := range c.Names() {
		if err := c.Caches[name].validate(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Names returns the configured preset names in sorted order.
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Caches))
	for name := range c.Caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Cache) validate(name string) error {
	var errs []error
	if c.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("%w: caches.%s.max_entries must be > 0, got %d", ErrInvalid, name, c.MaxEntries))
	}
	if c.MaxMemoryBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: caches.%s.max_memory_bytes must be > 0, got %d", ErrInvalid, name, c.MaxMemoryBytes))
	}
	if c.TTL < 0 {
		errs = append(errs, fmt.Errorf("%w: caches.%s.ttl must be >= 0, got %s", ErrInvalid, name, c.TTL))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: caches.%s.sweep_interval must be > 0, got %s", ErrInvalid, name, c.SweepInterval))
	}
	return errors.Join(errs...)
}

// document is the on-disk shape. Preset fields are pointers so that an
// omitted key can be told apart from an explicit zero.
type document struct {
	Log            Log                 `yaml:"log"`
	ReplacePresets bool                `yaml:"replace_presets"`
	Caches         map[string]cacheDoc `yaml:"caches"`
}

type cacheDoc struct {
	MaxEntries     *int           `yaml:"max_entries"`
	MaxMemoryBytes *int64         `yaml:"max_memory_bytes"`
	TTL            *time.Duration `yaml:"ttl"`
	SweepInterval  *time.Duration `yaml:"sweep_interval"`
}

// over returns def with every field present in d applied on top.
func (d cacheDoc) over(def Cache) Cache {
	c := def
	if d.MaxEntries != nil {
		c.MaxEntries = *d.MaxEntries
	}
	if d.MaxMemoryBytes != nil {
		c.MaxMemoryBytes = *d.MaxMemoryBytes
	}
	if d.TTL != nil {
		c.TTL = *d.TTL
	}
	if d.SweepInterval != nil {
		c.SweepInterval = *d.SweepInterval
	}
	return c
}
