package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/canvas"
	"github.com/danmudi/netlab/internal/plugin"
	"github.com/danmudi/netlab/internal/version"
)

var _ plugin.Plugin = (*Plugin)(nil)

// Plugin serves the MCP tools over streamable HTTP at /api/v1/mcp.
type Plugin struct {
	tools   *tools
	logger  *zap.Logger
	server  *mcp.Server
	handler http.Handler
}

// New creates the MCP plugin. commands may be nil, in which case the
// run_command tool is not offered.
func New(engine *canvas.Engine, commands CommandFunc) *Plugin {
	return &Plugin{tools: &tools{engine: engine, commands: commands}}
}

func (p *Plugin) Name() string    { return "mcp" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	name := config.GetString("server_name")
	if name == "" {
		name = "netlab"
	}
	p.server = newServer(name, p.tools)
	p.handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return p.server
	}, nil)
	p.logger.Info("mcp module initialized",
		zap.String("server_name", name),
		zap.Bool("commands", p.tools.commands != nil),
	)
	return nil
}

func (p *Plugin) Start(_ context.Context) error { return nil }
func (p *Plugin) Stop() error                   { return nil }

// Server returns the MCP server. Nil before Init.
func (p *Plugin) Server() *mcp.Server { return p.server }

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: p.serve},
		{Method: "POST", Path: "", Handler: p.serve},
		{Method: "DELETE", Path: "", Handler: p.serve},
	}
}

func (p *Plugin) serve(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// newServer builds an MCP server with the lab tools registered.
func newServer(name string, t *tools) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: name, Version: version.Short()}, nil)
	t.register(s)
	return s
}
