package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/blendview/pkg/errors"
)

// EnvPrefix prefixes every environment variable blendview reads.
const EnvPrefix = "BLENDVIEW_"

// DefaultEnvFile is read by the CLI when present.
const DefaultEnvFile = ".env"

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

var osLookup LookupFunc = os.LookupEnv

// loadEnvFile exports the variables of a .env file into the process
// environment. Variables already set win. A missing file is ignored.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "load %s", path)
	}
	return nil
}

type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

var envVars = []envVar{
	{"SHOW_INSPECTOR", func(c *Config, v string) error { return setBool(&c.Settings.ShowInspector, v) }},
	{"SHOW_LEGEND", func(c *Config, v string) error { return setBool(&c.Settings.ShowLegend, v) }},
	{"MAX_NORMALIZED_NODE_SIZE", func(c *Config, v string) error { return setFloat(&c.Settings.MaxNormalizedNodeSize, v) }},
	{"MAX_NODE_SIZE_IN_PIXELS", func(c *Config, v string) error { return setFloat(&c.Settings.MaxNodeSizeInPixels, v) }},
	{"ASPECT_RATIO", func(c *Config, v string) error { return setFloat(&c.Settings.AspectRatio, v) }},
	{"ORIENTATION", func(c *Config, v string) error { c.Settings.Orientation = v; return nil }},
	{"MAX_DEPTH", func(c *Config, v string) error { return setInt(&c.Limits.MaxDepth, v) }},
	{"MAX_NODES", func(c *Config, v string) error { return setInt(&c.Limits.MaxNodes, v) }},
	{"POLL_ACTIVE", func(c *Config, v string) error { return setDuration(&c.Poll.ActiveInterval, v) }},
	{"POLL_IDLE", func(c *Config, v string) error { return setDuration(&c.Poll.IdleInterval, v) }},
	{"CANVAS_WIDTH", func(c *Config, v string) error { return setFloat(&c.Canvas.Width, v) }},
	{"CANVAS_HEIGHT", func(c *Config, v string) error { return setFloat(&c.Canvas.Height, v) }},
	{"ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	{"CACHE_TTL", func(c *Config, v string) error { return setDuration(&c.Cache.TTL, v) }},
	{"REDIS_ADDR", func(c *Config, v string) error { c.Cache.RedisAddr = v; return nil }},
	{"STORE_BACKEND", func(c *Config, v string) error { c.Store.Backend = v; return nil }},
	{"STORE_DIR", func(c *Config, v string) error { c.Store.Dir = v; return nil }},
	{"MONGO_URI", func(c *Config, v string) error { c.Store.MongoURI = v; return nil }},
	{"MONGO_DATABASE", func(c *Config, v string) error { c.Store.Database = v; return nil }},
}

// ApplyEnv overlays BLENDVIEW_* variables read through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok {
			continue
		}
		if err := ev.apply(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSettings, err, "%s%s", EnvPrefix, ev.name)
		}
	}
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err == nil {
		*dst = b
	}
	return err
}

func setFloat(dst *float64, v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err == nil {
		*dst = f
	}
	return err
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err == nil {
		*dst = n
	}
	return err
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err == nil {
		*dst = d
	}
	return err
}
