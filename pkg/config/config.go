// Package config loads runshape settings from a TOML file and the
// environment.
//
// Values come from, in increasing precedence: built-in defaults,
// runshape.toml (current directory, then $XDG_CONFIG_HOME/runshape), and
// RUNSHAPE_* environment variables, where nested keys join with an
// underscore (layout.engine → RUNSHAPE_LAYOUT_ENGINE).
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RUNSHAPE"

// Source kinds.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceMongo = "mongo"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// LayoutConfig configures the graph layout.
type LayoutConfig struct {
	Engine     string  `mapstructure:"engine"`
	RankDir    string  `mapstructure:"rankdir"`
	NodeWidth  float64 `mapstructure:"node_width"`
	NodeHeight float64 `mapstructure:"node_height"`
	RankSep    float64 `mapstructure:"rank_sep"`
	NodeSep    float64 `mapstructure:"node_sep"`
}

// ViewConfig configures view selection.
type ViewConfig struct {
	DefaultMode string `mapstructure:"default_mode"`
}

// MemoConfig configures the view memo.
type MemoConfig struct {
	Size int `mapstructure:"size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// SourceConfig selects where remote runs are loaded from.
type SourceConfig struct {
	Kind        string `mapstructure:"kind"`
	BaseURL     string `mapstructure:"base_url"`
	URLTemplate string `mapstructure:"url_template"`
	Token       string `mapstructure:"token"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Kind string        `mapstructure:"kind"`
	TTL  time.Duration `mapstructure:"ttl"`
	Dir  string        `mapstructure:"dir"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// MongoConfig configures the MongoDB snapshot source.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// Config holds all runshape settings.
type Config struct {
	Layout LayoutConfig `mapstructure:"layout"`
	View   ViewConfig   `mapstructure:"view"`
	Memo   MemoConfig   `mapstructure:"memo"`
	Server ServerConfig `mapstructure:"server"`
	Source SourceConfig `mapstructure:"source"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Mongo  MongoConfig  `mapstructure:"mongo"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

var defaults = map[string]any{
	"layout.engine":       graphlayout.EngineGraphviz,
	"layout.rankdir":      graphlayout.RankDirLR,
	"layout.node_width":   graphlayout.NodeWidth,
	"layout.node_height":  graphlayout.NodeHeight,
	"layout.rank_sep":     graphlayout.DefaultRankSep,
	"layout.node_sep":     graphlayout.DefaultNodeSep,
	"view.default_mode":   string(view.DefaultMode),
	"memo.size":           view.DefaultMemoSize,
	"server.addr":         ":8080",
	"source.kind":         SourceFile,
	"source.base_url":     "",
	"source.url_template": "{base}/api/v1/stable/tenants/{tenant}/workflow-runs/{run}/details",
	"source.token":        "",
	"cache.kind":          CacheFile,
	"cache.ttl":           "5m",
	"cache.dir":           "",
	"redis.addr":          "localhost:6379",
	"mongo.uri":           "mongodb://localhost:27017",
	"mongo.database":      "runshape",
	"mongo.collection":    "snapshots",
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, _ := load(newViper())
	return cfg
}

// Load reads configuration. An empty path searches the default locations
// and tolerates a missing file; an explicit path must exist.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("runshape")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	cfg, err := load(v)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

// configDir returns $XDG_CONFIG_HOME/runshape or ~/.config/runshape.
func configDir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "runshape"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "runshape"), nil
}

// Validate checks enumerated values and required companions.
func (c Config) Validate() error {
	switch c.Layout.Engine {
	case graphlayout.EngineGraphviz, graphlayout.EngineLayered:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.engine: unknown engine %q", c.Layout.Engine)
	}
	switch c.Layout.RankDir {
	case graphlayout.RankDirLR, graphlayout.RankDirTB:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.rankdir: unknown direction %q", c.Layout.RankDir)
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout: node size must be positive")
	}
	if _, err := view.ParseMode(c.View.DefaultMode); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "view.default_mode")
	}
	switch c.Source.Kind {
	case SourceFile, SourceMongo:
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.base_url is required for the http source")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "source.kind: unknown kind %q", c.Source.Kind)
	}
	switch c.Cache.Kind {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.kind: unknown kind %q", c.Cache.Kind)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// LayoutOptions converts the layout section into graph layout options.
func (c Config) LayoutOptions() graphlayout.Options {
	return graphlayout.Options{
		Engine:     c.Layout.Engine,
		RankDir:    c.Layout.RankDir,
		NodeWidth:  c.Layout.NodeWidth,
		NodeHeight: c.Layout.NodeHeight,
		RankSep:    c.Layout.RankSep,
		NodeSep:    c.Layout.NodeSep,
	}
}

// DefaultMode returns the configured default view mode.
func (c Config) DefaultMode() view.Mode {
	m, err := view.ParseMode(c.View.DefaultMode)
	if err != nil {
		return view.DefaultMode
	}
	return m
}
