// Package config loads blendview's settings.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file (--config)
//  3. A .env file and BLENDVIEW_* environment variables
//  4. Command-line flags, applied by the CLI on top of [Load]'s result
//
// The result is validated with struct tags; every failure is reported as an
// INVALID_SETTINGS error.
//
// A complete file:
//
//	[settings]
//	show_inspector = true
//	show_legend = true
//	max_normalized_node_size = 0.8
//	max_node_size_in_pixels = 100
//	aspect_ratio = 1.5
//	orientation = "top-down"
//
//	[limits]
//	max_depth = 256
//	max_nodes = 10000
//
//	[poll]
//	active_interval = "100ms"
//	idle_interval = "1s"
//
//	[canvas]
//	width = 800
//	height = 600
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "blendview"
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/blendview/pkg/cache"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/layout"
	"github.com/matzehuels/blendview/pkg/render"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// Config is the complete configuration.
type Config struct {
	Settings Settings `toml:"settings"`
	Limits   Limits   `toml:"limits"`
	Poll     Poll     `toml:"poll"`
	Canvas   Canvas   `toml:"canvas"`
	Server   Server   `toml:"server"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
}

// Settings holds the recognized display options.
type Settings struct {
	ShowInspector         bool    `toml:"show_inspector"`
	ShowLegend            bool    `toml:"show_legend"`
	MaxNormalizedNodeSize float64 `toml:"max_normalized_node_size" validate:"gt=0,lte=1"`
	MaxNodeSizeInPixels   float64 `toml:"max_node_size_in_pixels" validate:"gt=0"`
	AspectRatio           float64 `toml:"aspect_ratio" validate:"gt=0"`
	Orientation           string  `toml:"orientation" validate:"omitempty,oneof=top-down bottom-up left-to-right right-to-left tb bt lr rl"`
}

// Limits bounds one snapshot walk.
type Limits struct {
	MaxDepth int `toml:"max_depth" validate:"gte=1"`
	MaxNodes int `toml:"max_nodes" validate:"gte=1"`
}

// Poll sets the live view cadence.
type Poll struct {
	ActiveInterval time.Duration `toml:"active_interval" validate:"gt=0"`
	IdleInterval   time.Duration `toml:"idle_interval" validate:"gt=0"`
}

// Canvas is the layout target size in pixels.
type Canvas struct {
	Width  float64 `toml:"width" validate:"gt=0"`
	Height float64 `toml:"height" validate:"gt=0"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `toml:"addr" validate:"required"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend   string        `toml:"backend" validate:"oneof=none file redis"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       time.Duration `toml:"ttl" validate:"gte=0"`
}

// Store selects the capture archive backend.
type Store struct {
	Backend  string `toml:"backend" validate:"oneof=memory file mongo"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Settings: Settings{
			ShowInspector:         true,
			ShowLegend:            true,
			MaxNormalizedNodeSize: layout.DefaultMaxNormalizedNodeSize,
			MaxNodeSizeInPixels:   layout.DefaultMaxNodeSizeInPixels,
			AspectRatio:           layout.DefaultAspectRatio,
			Orientation:           layout.TopDown.String(),
		},
		Limits: Limits{MaxDepth: snapshot.DefaultMaxDepth, MaxNodes: snapshot.DefaultMaxNodes},
		Poll: Poll{
			ActiveInterval: inspect.DefaultActiveInterval,
			IdleInterval:   inspect.DefaultIdleInterval,
		},
		Canvas: Canvas{Width: inspect.DefaultWidth, Height: inspect.DefaultHeight},
		Server: Server{Addr: ":8080"},
		Cache:  Cache{Backend: "file", TTL: cache.TTLArtifact},
		Store:  Store{Backend: "memory"},
	}
}

// Load builds a configuration from defaults, the TOML file at path (if
// non-empty), the .env file at envFile (if present) and the process
// environment.
func Load(path, envFile string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(osLookup); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "open config")
	}
	defer f.Close()
	return c.Decode(f)
}

// Decode overlays TOML from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidSettings, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

var validate = validator.New()

// Validate checks struct constraints and the derived layout settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, formatValidationError(err), "invalid config")
	}
	s, err := c.LayoutSettings()
	if err != nil {
		return err
	}
	return s.Validate()
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "gt", "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, comparison[e.Tag()], e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

var comparison = map[string]string{"gt": ">", "gte": ">=", "lte": "<="}

// =============================================================================
// Conversions
// =============================================================================

// LayoutSettings returns the layout engine settings.
func (c *Config) LayoutSettings() (layout.Settings, error) {
	o, err := layout.ParseOrientation(c.Settings.Orientation)
	if err != nil {
		return layout.Settings{}, err
	}
	return layout.Settings{
		MaxNormalizedNodeSize: c.Settings.MaxNormalizedNodeSize,
		MaxNodeSizeInPixels:   c.Settings.MaxNodeSizeInPixels,
		AspectRatio:           c.Settings.AspectRatio,
		Orientation:           o,
	}, nil
}

// RenderOptions returns the overlay options with nothing selected.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		ShowInspector: c.Settings.ShowInspector,
		ShowLegend:    c.Settings.ShowLegend,
		Selected:      render.NoSelection,
	}
}

// InspectOptions returns inspector options using logger.
func (c *Config) InspectOptions(logger *log.Logger) (inspect.Options, error) {
	s, err := c.LayoutSettings()
	if err != nil {
		return inspect.Options{}, err
	}
	return inspect.Options{
		Settings: s,
		Limits:   inspect.Limits{MaxDepth: c.Limits.MaxDepth, MaxNodes: c.Limits.MaxNodes},
		Canvas:   layout.Size(c.Canvas.Width, c.Canvas.Height),
		Logger:   logger,
	}, nil
}

// Cadence returns the live view poll cadence.
func (c *Config) Cadence() inspect.Cadence {
	return inspect.Cadence{Active: c.Poll.ActiveInterval, Idle: c.Poll.IdleInterval}
}
