package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/impawawa/Final-Project/internal/config"
	"github.com/impawawa/Final-Project/internal/observability"
)

var (
	cfgFile  string
	logLevel string

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "car-rental",
	Short: "Car rental REST API",
	Long: `Car rental REST API with JWT auth and per-IP rate limiting.

Configuration is read from --config (YAML) and CARRENTAL_* environment
variables, e.g. CARRENTAL_AUTH_JWT_SECRET or CARRENTAL_RATE_LIMIT_LIMIT.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

// loadRuntime loads configuration and builds the logger every subcommand needs
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := observability.NewLogger(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return cfg, logger, nil
}
