package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/intentgraph/pkg/core/drag"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/errors"
)

// AppName names the default data directory and the environment prefix.
const AppName = "intentgraph"

// Store backends.
const (
	BackendMemory = "memory"
	BackendNull   = "null"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every store backend accepted by [StoreConfig.Backend].
var Backends = []string{BackendMemory, BackendNull, BackendFile, BackendSQLite, BackendRedis, BackendMongo}

// Config is the complete engine configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Layout  LayoutConfig  `toml:"layout"`
	Drag    DragConfig    `toml:"drag"`
	Store   StoreConfig   `toml:"store"`
	Extract ExtractConfig `toml:"extract"`
	Server  ServerConfig  `toml:"server"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.Log, &c.Layout, &c.Drag, &c.Store, &c.Extract, &c.Server} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Sections
// =============================================================================

// LogConfig selects the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.By(func(v any) error {
			_, err := log.ParseLevel(v.(string))
			return err
		})),
	)
}

// ParsedLevel returns the charm log level, falling back to info.
func (c LogConfig) ParsedLevel() log.Level {
	l, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// LayoutConfig holds layout spacing and the default viewport.
type LayoutConfig struct {
	Orientation   string  `toml:"orientation"`
	Width         float64 `toml:"width"`
	Height        float64 `toml:"height"`
	TierDistance  float64 `toml:"tier_distance"`
	HighSpacing   float64 `toml:"high_spacing"`
	LowSpacing    float64 `toml:"low_spacing"`
	RecordSpacing float64 `toml:"record_spacing"`
}

// Validate validates the layout configuration.
func (c *LayoutConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Orientation, validation.In(layout.Stacked.String(), layout.Columnar.String())),
		validation.Field(&c.Width, validation.Min(0.0)),
		validation.Field(&c.Height, validation.Min(0.0)),
		validation.Field(&c.TierDistance, validation.Required, validation.Min(1.0)),
		validation.Field(&c.HighSpacing, validation.Required, validation.Min(1.0)),
		validation.Field(&c.LowSpacing, validation.Required, validation.Min(1.0)),
		validation.Field(&c.RecordSpacing, validation.Required, validation.Min(1.0)),
	)
}

// Options converts the section into layout options.
func (c LayoutConfig) Options() layout.Options {
	o, _ := layout.ParseOrientation(c.Orientation)
	return layout.Options{
		Orientation:  o,
		Viewport:     layout.Viewport{Width: c.Width, Height: c.Height},
		TierDistance: c.TierDistance,
		Spacing:      [3]float64{c.HighSpacing, c.LowSpacing, c.RecordSpacing},
	}
}

// DragConfig tunes collision detection.
type DragConfig struct {
	Opacity         float64 `toml:"opacity"`
	Buffer          float64 `toml:"buffer"`
	MinDisplacement float64 `toml:"min_displacement"`
	// MaxLive bounds the drags a serving session keeps open.
	MaxLive int `toml:"max_live"`
}

// Validate validates the drag configuration.
func (c *DragConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Opacity, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Buffer, validation.Min(0.0)),
		validation.Field(&c.MinDisplacement, validation.Min(0.0)),
		validation.Field(&c.MaxLive, validation.Min(1)),
	)
}

// Options converts the section into drag options.
func (c DragConfig) Options() drag.Options {
	return drag.Options{DragOpacity: c.Opacity, Buffer: c.Buffer, MinDisplacement: c.MinDisplacement}
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend   string        `toml:"backend"`
	Namespace string        `toml:"namespace"`
	Timeout   time.Duration `toml:"timeout"`
	File      FileConfig    `toml:"file"`
	SQLite    SQLiteConfig  `toml:"sqlite"`
	Redis     RedisConfig   `toml:"redis"`
	Mongo     MongoConfig   `toml:"mongo"`
}

// FileConfig configures the file backend.
type FileConfig struct {
	Dir string `toml:"dir"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Validate validates the store configuration. Backend-specific fields are
// only required for the selected backend.
func (c *StoreConfig) Validate() error {
	backends := make([]any, len(Backends))
	for i, b := range Backends {
		backends[i] = b
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(backends...)),
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	return validation.Errors{
		"file.dir":         validation.Validate(c.File.Dir, validation.When(c.Backend == BackendFile, validation.Required)),
		"sqlite.path":      validation.Validate(c.SQLite.Path, validation.When(c.Backend == BackendSQLite, validation.Required)),
		"redis.addr":       validation.Validate(c.Redis.Addr, validation.When(c.Backend == BackendRedis, validation.Required)),
		"mongo.uri":        validation.Validate(c.Mongo.URI, validation.When(c.Backend == BackendMongo, validation.Required)),
		"mongo.database":   validation.Validate(c.Mongo.Database, validation.When(c.Backend == BackendMongo, validation.Required)),
		"mongo.collection": validation.Validate(c.Mongo.Collection, validation.When(c.Backend == BackendMongo, validation.Required)),
	}.Filter()
}

// ExtractConfig configures the extraction service client. An empty URL
// disables re-extraction.
type ExtractConfig struct {
	URL             string        `toml:"url"`
	Timeout         time.Duration `toml:"timeout"`
	Retries         int           `toml:"retries"`
	BreakerFailures uint32        `toml:"breaker_failures"`
	BreakerCooldown time.Duration `toml:"breaker_cooldown"`
}

// Enabled reports whether an extraction service is configured.
func (c ExtractConfig) Enabled() bool { return c.URL != "" }

// Validate validates the extraction configuration.
func (c *ExtractConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.By(func(v any) error {
			s := v.(string)
			if s == "" {
				return nil
			}
			return errors.ValidateURL(s)
		})),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Retries, validation.Min(1), validation.Max(10)),
		validation.Field(&c.BreakerFailures, validation.Required),
	)
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// =============================================================================
// Defaults and Loading
// =============================================================================

// Default returns a configuration that works without a file: in-memory
// storage, default spacing and drag tuning, no extraction service.
func Default() *Config {
	lo := layout.DefaultOptions()
	do := drag.DefaultOptions()
	dir := DataDir()
	return &Config{
		Log: LogConfig{Level: "info"},
		Layout: LayoutConfig{
			Orientation:   lo.Orientation.String(),
			Width:         lo.Viewport.Width,
			Height:        lo.Viewport.Height,
			TierDistance:  lo.TierDistance,
			HighSpacing:   lo.Spacing[0],
			LowSpacing:    lo.Spacing[1],
			RecordSpacing: lo.Spacing[2],
		},
		Drag: DragConfig{Opacity: do.DragOpacity, Buffer: do.Buffer, MinDisplacement: do.MinDisplacement, MaxLive: 32},
		Store: StoreConfig{
			Backend:   BackendMemory,
			Namespace: "default",
			Timeout:   5 * time.Second,
			File:      FileConfig{Dir: filepath.Join(dir, "store")},
			SQLite:    SQLiteConfig{Path: filepath.Join(dir, AppName+".db")},
			Redis:     RedisConfig{Addr: "localhost:6379"},
			Mongo:     MongoConfig{Database: AppName, Collection: "blobs"},
		},
		Extract: ExtractConfig{
			Timeout:         30 * time.Second,
			Retries:         3,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Server: ServerConfig{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
	}
}

// Load reads a TOML file on top of [Default]. ${VAR} references are expanded
// from the environment before decoding. The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML bytes on top of [Default] and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(os.ExpandEnv(string(data)), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is non-empty and exists, and returns
// [Default] otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// DataDir returns the data directory using the XDG standard
// (~/.local/share/intentgraph/).
func DataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// ConfigDir returns the configuration directory using the XDG standard
// (~/.config/intentgraph/).
func ConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}
