package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/impawawa/Final-Project/internal/server"
	"github.com/impawawa/Final-Project/internal/storage"
)

var (
	autoMigrate     bool
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown on SIGINT or SIGTERM.

Redis is only dialed when rate_limit.store is "redis".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		postgres, err := storage.NewPostgres(cfg.Database.DSN, cfg.Log.Level == "debug")
		if err != nil {
			logger.Error("failed to connect to postgres", zap.Error(err))
			return err
		}
		defer postgres.Close()
		logger.Info("connected to postgres")

		if autoMigrate {
			if err := postgres.AutoMigrate(); err != nil {
				logger.Error("migration failed", zap.Error(err))
				return err
			}
		}

		var redis *storage.RedisClient
		if cfg.RateLimit.Enabled && cfg.RateLimit.Store == "redis" {
			redis, err = storage.NewRedis(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				logger.Error("failed to connect to redis", zap.String("addr", cfg.Redis.GetRedisAddr()), zap.Error(err))
				return err
			}
			defer redis.Close()
			logger.Info("connected to redis", zap.String("addr", cfg.Redis.GetRedisAddr()))
		}

		srv := server.New(cfg, logger, postgres, redis)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Run(":" + cfg.Server.Port)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("server failed", zap.Error(err))
			}
			return err
		case sig := <-quit:
			logger.Info("received signal", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
			return err
		}

		logger.Info("server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run database migrations before serving")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
}
