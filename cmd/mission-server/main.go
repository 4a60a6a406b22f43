package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/asteroid-defense-simulator/core"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/api"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/audio"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/config"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/logging"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/mission"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/observability"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/store"
	"github.com/signalsfoundry/asteroid-defense-simulator/internal/stream"
	"github.com/signalsfoundry/asteroid-defense-simulator/kb"
)

func main() {
	cfg := config.Load()
	log := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewMissionCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	scenario, err := core.LoadScenarioFile(cfg.Scenario.Path)
	if err != nil {
		log.Error(ctx, "scenario load failed",
			logging.String("path", cfg.Scenario.Path),
			logging.String("error", err.Error()),
		)
		os.Exit(1)
	}

	catalog := kb.NewCatalog()
	for i := range scenario.Asteroids {
		if err := catalog.AddAsteroid(&scenario.Asteroids[i]); err != nil {
			log.Warn(ctx, "skipping scenario asteroid", logging.String("error", err.Error()))
		}
	}
	for i := range scenario.Strategies {
		if err := catalog.AddStrategy(&scenario.Strategies[i]); err != nil {
			log.Warn(ctx, "skipping scenario strategy", logging.String("error", err.Error()))
		}
	}
	asteroids, strategies := catalog.Counts()
	collector.SetCatalogCounts(asteroids, strategies)
	catalog.Subscribe(func(kb.Event) {
		a, s := catalog.Counts()
		collector.SetCatalogCounts(a, s)
	})
	log.Info(ctx, "catalog seeded",
		logging.Int("asteroids", asteroids),
		logging.Int("strategies", strategies),
	)

	asteroidStore := store.Connect(ctx, cfg.Redis, log)
	defer asteroidStore.Close()

	hub := stream.NewHub(
		stream.WithHubLogger(log),
		stream.WithClientHooks(collector.ClientConnected, collector.ClientDisconnected),
	)
	go hub.Run(ctx)
	defer hub.Stop()

	var effects core.EffectListener
	if cfg.Audio.Enabled {
		engine := audio.NewEngine(log)
		engine.Start(ctx)
		defer engine.Stop()
		effects = engine
	}

	runner := mission.NewRunner(scenario.Run, cfg.Scenario.TickInterval,
		mission.WithRunnerLogger(log),
		mission.WithHub(hub),
		mission.WithAudio(effects),
		mission.WithCollector(collector),
	)
	defer runner.Shutdown()

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(catalog, asteroidStore, runner, hub, collector.Handler(), log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "mission server listening", logging.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server failed", logging.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn(context.Background(), "http shutdown failed", logging.String("error", err.Error()))
	}
}
