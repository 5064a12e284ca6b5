// Package plugin defines the lifecycle contract of netlab's optional
// modules and the registry that drives it.
package plugin

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route represents an HTTP route exposed by a plugin. Paths are relative
// to /api/v1/<plugin name>.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Plugin defines the interface that all netlab modules must implement.
type Plugin interface {
	// Name returns the plugin's unique identifier (e.g., "simulation", "tutor").
	Name() string

	// Version returns the plugin's semantic version.
	Version() string

	// Init initializes the plugin with its configuration subtree and logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start begins the plugin's background operations. ctx lives as long
	// as the server.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the plugin.
	Stop() error

	// Routes returns the HTTP routes this plugin exposes.
	Routes() []Route
}
