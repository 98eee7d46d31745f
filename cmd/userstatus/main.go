// Command userstatus runs the status update service and its maintenance
// tasks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/config"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/logger"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/postgres"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/redis"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

var rootCmd = &cobra.Command{
	Use:           "userstatus",
	Short:         "User status updates for sport and team networks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recountCmd)
	rootCmd.AddCommand(invalidateCmd)

	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Revert all migrations instead")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env holds what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		logger: logger.New(os.Stderr, cfg.LogLevel),
	}, nil
}

// stores connects to both backends. The returned func closes them.
func (e *env) stores(ctx context.Context) (*postgres.Postgres, *redis.Redis, func(), error) {
	pg, err := postgres.Connect(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	rdb, err := redis.Connect(ctx, e.cfg.RedisAddr)
	if err != nil {
		pg.Close()
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	closeAll := func() {
		if err := rdb.Close(); err != nil {
			e.logger.Warn("Could not close redis", "error", err.Error())
		}
		if err := pg.Close(); err != nil {
			e.logger.Warn("Could not close postgres", "error", err.Error())
		}
	}
	return pg, rdb, closeAll, nil
}

func (e *env) service(pg *postgres.Postgres, rdb *redis.Redis) *status.Service {
	readOnly := e.cfg.ReadOnly
	return &status.Service{
		Logger:   e.logger,
		Store:    pg,
		Stats:    rdb,
		Networks: rdb.NetworkCache(pg, e.cfg.NetworkCacheTTL, e.logger),
		ReadOnly: func() bool { return readOnly },
	}
}

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		if err := postgres.Migrate(e.cfg.DatabaseURL, migrateDown); err != nil {
			return err
		}
		e.logger.Info("Migrations applied", "down", migrateDown)
		return nil
	},
}

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Rebuild the per-user status counts from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pg, rdb, closeAll, err := e.stores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeAll()

		n, err := e.service(pg, rdb).Recount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt status counts of %d users\n", n)
		return nil
	},
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate-network SPORT_ID...",
	Short: "Drop cached team lists and names of sport networks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pg, rdb, closeAll, err := e.stores(cmd.Context())
		if err != nil {
			return err
		}
		defer closeAll()

		cache := rdb.NetworkCache(pg, e.cfg.NetworkCacheTTL, e.logger)
		for _, id := range ids {
			if err := cache.Invalidate(cmd.Context(), id); err != nil {
				return fmt.Errorf("sport %d: %w", id, err)
			}
		}
		e.logger.Info("Network cache invalidated", "sports", ids)
		return nil
	},
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid sport id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
