package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/canvas"
	"github.com/danmudi/netlab/internal/catalog"
	"github.com/danmudi/netlab/internal/config"
	"github.com/danmudi/netlab/internal/event"
	"github.com/danmudi/netlab/internal/mcpserver"
	"github.com/danmudi/netlab/internal/metrics"
	"github.com/danmudi/netlab/internal/plugin"
	"github.com/danmudi/netlab/internal/projects"
	"github.com/danmudi/netlab/internal/server"
	"github.com/danmudi/netlab/internal/simulation"
	"github.com/danmudi/netlab/internal/store"
	"github.com/danmudi/netlab/internal/telemetry"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/internal/tutor"
	"github.com/danmudi/netlab/internal/version"
	pkgcatalog "github.com/danmudi/netlab/pkg/catalog"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("netlab server starting", zap.String("version", version.Short()))

	v, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	cfg := config.New(v)

	bus := event.NewBus(logger.Named("events"))
	topo := topology.NewStore(logger.Named("topology"), topology.WithBus(bus))
	engine := canvas.NewEngine(topo, canvas.SettingsFromConfig(cfg), logger.Named("canvas"), canvas.WithBus(bus))

	db, err := store.New(cfg.GetString("database.path"), store.WithLogger(logger.Named("store")))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	registry := plugin.NewRegistry(logger)

	// metrics first so it observes simulation.started on autostart.
	metricsPlugin := metrics.New(topo, bus)
	tutorPlugin := tutor.New(topo, bus)
	plugins := []plugin.Plugin{
		metricsPlugin,
		simulation.New(topo, bus),
		projects.New(db, topo, engine),
		telemetry.New(bus),
		tutorPlugin,
		mcpserver.New(engine, mcpserver.TutorCommands(tutorPlugin)),
	}
	for _, p := range plugins {
		if err := registry.Register(p); err != nil {
			logger.Fatal("failed to register plugin", zap.Error(err))
		}
	}

	if err := registry.InitAll(v); err != nil {
		logger.Fatal("failed to initialize plugins", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start plugins", zap.Error(err))
	}

	hub := server.NewHub(bus, logger.Named("hub"),
		server.WithMaxClients(cfg.GetInt("events.max_clients")),
		server.WithOriginPatterns(v.GetStringSlice("events.origin_patterns")...),
	)
	opts := []server.Option{
		server.WithHandlers(
			canvas.NewHandler(engine, logger.Named("canvas")),
			catalog.NewHandler(catalog.NewEngine(pkgcatalog.NewCatalog()), engine, logger.Named("catalog")),
		),
		server.WithEvents(hub),
	}
	if registry.Enabled("metrics") {
		opts = append(opts, server.WithMetrics(metricsPlugin.Handler()))
	}
	if cfg.GetBool("server.swagger") {
		opts = append(opts, server.WithAPIDocs())
	}

	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	srv := server.New(addr, registry, logger, opts...)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("netlab server ready", zap.String("addr", addr))

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	registry.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("netlab server stopped")
}
