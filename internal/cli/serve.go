package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casegraph/casegraph/internal/server"
	"github.com/casegraph/casegraph/pkg/cache"
	"github.com/casegraph/casegraph/pkg/config"
	"github.com/casegraph/casegraph/pkg/pipeline"
	"github.com/casegraph/casegraph/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the casegraph HTTP API server",
		Long: `Run the casegraph HTTP API server.

The server exposes the same pipeline the CLI uses: case listing, network
fetch, layout, export, and snapshot endpoints. When Redis and MongoDB are
configured they back the shared cache and snapshot persistence; otherwise
the server falls back to the local file cache and an in-memory store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config, default :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	client, err := c.newBackend(cfg)
	if err != nil {
		return err
	}

	serverCache, err := c.newServerCache(ctx, cfg)
	if err != nil {
		return err
	}

	snapshots, err := c.newSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer snapshots.Close(context.Background())

	runner := pipeline.NewRunner(client, serverCache, nil, c.Logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:   cfg.Server.Addr,
		Runner: runner,
		Cases:  client,
		Store:  snapshots,
		Logger: c.Logger,
	})

	return srv.Serve(ctx)
}

// newServerCache prefers Redis when configured, so multiple server instances
// share one cache.
func (c *CLI) newServerCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis at %s: %w", cfg.Redis.Addr, err)
		}
		c.Logger.Info("using redis cache", "addr", cfg.Redis.Addr)
		return redisCache, nil
	}
	return newCache(cfg, false)
}

// newSnapshotStore prefers MongoDB when configured; snapshots otherwise live
// only for the lifetime of the process.
func (c *CLI) newSnapshotStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Mongo.URI == "" {
		c.Logger.Warn("no mongo configured, snapshots are in-memory only")
		return store.NewMemoryStore(), nil
	}
	mongoStore, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	c.Logger.Info("using mongo snapshot store", "database", cfg.Mongo.Database)
	return mongoStore, nil
}
