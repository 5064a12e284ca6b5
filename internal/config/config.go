// Package config wraps viper so components depend on a small read-only
// configuration surface.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is a read-only view over a viper instance.
type Config struct {
	v *viper.Viper
}

// New wraps v. A nil viper yields an empty configuration.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

func (c *Config) GetString(key string) string          { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *Config) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *Config) GetFloat64(key string) float64        { return c.v.GetFloat64(key) }
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *Config) IsSet(key string) bool                { return c.v.IsSet(key) }

// Sub returns the subtree rooted at key. Missing subtrees yield an empty
// Config rather than nil.
func (c *Config) Sub(key string) *Config {
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole configuration into target using
// mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	return c.v.Unmarshal(target)
}

// Viper exposes the underlying instance for the plugin registry.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// Defaults installs the default value of every known key.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.swagger", true)
	v.SetDefault("database.path", "netlab.db")

	v.SetDefault("canvas.link_tolerance", 6.0)
	v.SetDefault("canvas.port_selection", true)
	v.SetDefault("canvas.default_cable", "STRAIGHT")

	v.SetDefault("plugins.simulation.enabled", true)
	v.SetDefault("plugins.simulation.interval", "1s")
	v.SetDefault("plugins.simulation.max_step", 5.0)
	v.SetDefault("plugins.simulation.autostart", false)

	v.SetDefault("plugins.projects.enabled", true)
	v.SetDefault("plugins.projects.autosave_schedule", "@every 1m")

	v.SetDefault("plugins.telemetry.enabled", false)
	v.SetDefault("plugins.telemetry.broker", "tcp://localhost:1883")
	v.SetDefault("plugins.telemetry.topic_prefix", "netlab")
	v.SetDefault("plugins.telemetry.client_id", "netlab-server")
	v.SetDefault("plugins.telemetry.qos", 0)
	v.SetDefault("plugins.telemetry.connect_timeout", "10s")
	v.SetDefault("plugins.telemetry.queue_size", 256)

	v.SetDefault("plugins.tutor.enabled", true)
	v.SetDefault("plugins.tutor.provider_url", "http://localhost:11434")
	v.SetDefault("plugins.tutor.model", "llama3.2")
	v.SetDefault("plugins.tutor.command_model", "")
	v.SetDefault("plugins.tutor.rate_per_minute", 30)
	v.SetDefault("plugins.tutor.timeout", "60s")

	v.SetDefault("plugins.metrics.enabled", true)
	v.SetDefault("plugins.metrics.runtime", true)

	v.SetDefault("plugins.mcp.enabled", true)
	v.SetDefault("plugins.mcp.server_name", "netlab")

	v.SetDefault("events.max_clients", 32)
	v.SetDefault("events.origin_patterns", []string{})
}

// Load layers NETLAB_* environment variables over the config file over
// the built-in defaults. An empty path searches ./netlab.yaml and
// /etc/netlab/netlab.yaml and tolerates neither existing.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix("NETLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("netlab")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/netlab")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}
