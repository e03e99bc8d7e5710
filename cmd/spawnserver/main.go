package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/regionspawn/internal/config"
	"github.com/udisondev/regionspawn/internal/db"
	"github.com/udisondev/regionspawn/internal/entity"
	"github.com/udisondev/regionspawn/internal/model"
	"github.com/udisondev/regionspawn/internal/region"
	"github.com/udisondev/regionspawn/internal/spawn"
	"github.com/udisondev/regionspawn/internal/world"
)

const (
	ConfigPath = "config/spawnserver.yaml"

	// shutdownTimeout bounds the final cull and save after a signal.
	shutdownTimeout = 30 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("REGIONSPAWN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSpawnServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	slog.Info("regionspawn starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"storage", cfg.Storage,
		"tick_interval", cfg.TickInterval)

	regions, state, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	worlds := world.NewRegistry()
	for _, dim := range cfg.World.Dimensions {
		w := world.NewFlat(dim, world.FlatOptions{
			Radius:  cfg.World.FlatRadius,
			GroundY: cfg.World.GroundY,
			TopY:    cfg.World.TopY,
		})
		worlds.Add(w)
		slog.Info("world ready",
			"dimension", w.Dimension(),
			"blocks", w.BlockCount(),
			"chunks", w.LoadedChunks())
	}

	entities := entity.NewRegistry()
	collab := spawn.Collaborators{
		Worlds:   worlds,
		Factory:  entities,
		Entities: entities,
	}
	if len(cfg.Species) > 0 {
		catalog := entity.NewCatalogFrom(cfg.Species)
		collab.Species = catalog
		slog.Info("species catalog loaded", "species", catalog.Len())
	}

	mgr := spawn.NewManager(region.NewStore(), regions, state, collab, entities, nil, cfg.ManagerConfig())
	mgr.SetVisualizationSink(logSink{})

	worlds.Subscribe(func(dimension string, at model.Coord, _, next world.BlockKind) {
		mgr.OnBlockChanged(dimension, at, next == world.Air)
	})

	if err := mgr.Load(ctx, worlds.Tick()); err != nil {
		return fmt.Errorf("loading regions: %w", err)
	}

	runner := spawn.NewRunner(mgr, worlds, cfg.TickInterval)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := runner.Start(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("spawn runner: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := runner.RunSaveLoop(gctx, cfg.AutosaveInterval); err != nil {
			return fmt.Errorf("autosave loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		runner.Stop()
		return nil
	})

	waitErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := mgr.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown save failed", "error", err)
	}

	stats := mgr.Stats()
	slog.Info("regionspawn stopped",
		"regions", stats.Regions,
		"population", stats.Population,
		"last_tick", stats.LastTick,
		"entities", entities.Count())

	if waitErr != nil {
		return fmt.Errorf("server error: %w", waitErr)
	}
	return nil
}

// openStorage returns the repositories for the configured backend and a
// function releasing them.
func openStorage(ctx context.Context, cfg config.SpawnServer) (spawn.RegionRepository, spawn.SpawnStateRepository, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")

		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		version, err := database.SchemaVersion(ctx)
		if err != nil {
			database.Close()
			return nil, nil, nil, err
		}
		slog.Info("database migrations applied", "version", version)

		return db.NewRegionRepository(database.Pool()),
			db.NewSpawnStateRepository(database.Pool()),
			database.Close,
			nil

	default:
		store := config.NewFileStore(cfg.RegionsFile)
		slog.Info("using file storage", "path", store.Path())
		return store, store, func() {}, nil
	}
}

// logSink writes radius visualizations to the log.
type logSink struct{}

func (logSink) Visualize(viewer string, r model.Region, positions []model.Coord) {
	slog.Info("region visualization",
		"viewer", viewer,
		"region", r.Name,
		"key", r.Key,
		"radius_width", r.Radius.Width,
		"radius_height", r.Radius.Height,
		"positions", len(positions),
		"particles", r.ShowParticles)
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
