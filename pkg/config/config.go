package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rubiojr/diplomatarium/pkg/core"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/textindex"
)

//go:embed config.toml.sample
var configTemplate string

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultSource         = "data"
	DefaultMetadata       = shards.DefaultMetadata
	DefaultShardPattern   = shards.DefaultPattern
	DefaultFetchTimeout   = 30 * time.Second
	DefaultPageSize       = 50
	DefaultMinQueryLength = 2
	DefaultFuzzy          = 0.2
	DefaultListen         = "localhost:8080"
	DefaultResultCache    = 256
	DefaultResultTTL      = 15 * time.Minute
)

// DefaultBoost weighs place matches above summary and full text matches.
func DefaultBoost() map[string]float64 {
	return map[string]float64{"sted": 4, "sammendrag": 3, "brevtekst": 2}
}

type Config struct {
	// Source is the base URL or local directory holding the description
	// and the shards.
	Source       string   `toml:"source"`
	Metadata     string   `toml:"metadata"`
	ShardPattern string   `toml:"shard_pattern"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	// Debug is a comma separated list of components to debug, or "all".
	Debug  string       `toml:"debug,omitempty"`
	Search SearchConfig `toml:"search"`
	Web    WebConfig    `toml:"web"`
}

type SearchConfig struct {
	PageSize       int                `toml:"page_size"`
	MinQueryLength int                `toml:"min_query_length"`
	Fuzzy          *float64           `toml:"fuzzy,omitempty"`
	Prefix         *bool              `toml:"prefix,omitempty"`
	Fields         []string           `toml:"fields,omitempty"`
	Boost          map[string]float64 `toml:"boost,omitempty"`
}

type WebConfig struct {
	Listen string `toml:"listen"`
	// ResultCache is how many result sets the API keeps for paging.
	ResultCache int      `toml:"result_cache"`
	ResultTTL   Duration `toml:"result_ttl"`
	// Watch reloads a local source when its description changes.
	Watch bool `toml:"watch"`
	// RefreshInterval reads the description again periodically to pick up
	// new shards. Zero disables it.
	RefreshInterval Duration `toml:"refresh_interval,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.Metadata == "" {
		c.Metadata = DefaultMetadata
	}
	if c.ShardPattern == "" {
		c.ShardPattern = DefaultShardPattern
	}
	if c.FetchTimeout.Duration == 0 {
		c.FetchTimeout = Duration{DefaultFetchTimeout}
	}
	if c.Search.PageSize == 0 {
		c.Search.PageSize = DefaultPageSize
	}
	if c.Search.MinQueryLength == 0 {
		c.Search.MinQueryLength = DefaultMinQueryLength
	}
	if c.Search.Fuzzy == nil {
		fuzzy := DefaultFuzzy
		c.Search.Fuzzy = &fuzzy
	}
	if c.Search.Prefix == nil {
		prefix := true
		c.Search.Prefix = &prefix
	}
	if c.Search.Boost == nil {
		c.Search.Boost = DefaultBoost()
	}
	if c.Web.Listen == "" {
		c.Web.Listen = DefaultListen
	}
	if c.Web.ResultCache == 0 {
		c.Web.ResultCache = DefaultResultCache
	}
	if c.Web.ResultTTL.Duration == 0 {
		c.Web.ResultTTL = Duration{DefaultResultTTL}
	}
}

// Validate reports the first problem found in the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("%w: source is empty", ErrInvalid)
	}
	if !strings.Contains(c.ShardPattern, "%") {
		return fmt.Errorf("%w: shard_pattern %q has no index verb", ErrInvalid, c.ShardPattern)
	}
	if c.FetchTimeout.Duration < 0 {
		return fmt.Errorf("%w: negative fetch_timeout", ErrInvalid)
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("%w: search.page_size must be positive", ErrInvalid)
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("%w: search.min_query_length must be positive", ErrInvalid)
	}
	if f := *c.Search.Fuzzy; f < 0 || f > 6 {
		return fmt.Errorf("%w: search.fuzzy %v out of range", ErrInvalid, f)
	}
	if _, err := textFields(c.Search.Fields); err != nil {
		return fmt.Errorf("%w: search.fields: %v", ErrInvalid, err)
	}
	for name, b := range c.Search.Boost {
		if _, err := textFields([]string{name}); err != nil {
			return fmt.Errorf("%w: search.boost: %v", ErrInvalid, err)
		}
		if b <= 0 {
			return fmt.Errorf("%w: search.boost.%s must be positive", ErrInvalid, name)
		}
	}
	if c.Web.RefreshInterval.Duration < 0 {
		return fmt.Errorf("%w: negative web.refresh_interval", ErrInvalid)
	}
	if c.Web.ResultCache < 1 {
		return fmt.Errorf("%w: web.result_cache must be positive", ErrInvalid)
	}
	return nil
}

// IndexOptions returns the text index settings.
func (c *Config) IndexOptions() textindex.Options {
	opts := textindex.Options{
		Fuzzy:  *c.Search.Fuzzy,
		Prefix: *c.Search.Prefix,
		Boost:  make(map[string]float64, len(c.Search.Boost)),
	}
	for name, b := range c.Search.Boost {
		if f, ok := core.ParseField(name); ok {
			opts.Boost[f.String()] = b
		}
	}
	return opts
}

// SearchFields returns the default field selection. Empty means all text
// fields.
func (c *Config) SearchFields() []core.Field {
	fields, _ := textFields(c.Search.Fields)
	return fields
}

func textFields(names []string) ([]core.Field, error) {
	var out []core.Field
	for _, name := range names {
		f, ok := core.ParseField(name)
		if !ok || f.Exact() {
			return nil, fmt.Errorf("%q is not a text field", name)
		}
		out = append(out, f)
	}
	return out, nil
}

// IsRemote reports whether the source is an HTTP location.
func (c *Config) IsRemote() bool {
	return shards.IsRemote(c.Source)
}

// MetadataPath returns the local path of the description file, or "" for
// remote sources.
func (c *Config) MetadataPath() string {
	if c.IsRemote() {
		return ""
	}
	return filepath.Join(c.Source, filepath.FromSlash(c.Metadata))
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample configuration with source
// filled in.
func SaveTemplateConfig(configPath, source string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if source == "" {
		source = DefaultSource
	}
	template := strings.Replace(configTemplate, `source = "data"`, fmt.Sprintf("source = %q", source), 1)
	return os.WriteFile(configPath, []byte(template), 0644)
}

// GetConfigDir returns the configuration directory for diplomatarium
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "diplomatarium")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
