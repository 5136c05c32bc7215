/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osuvault/pkg/archive"
	"github.com/ssargent/osuvault/pkg/config"
	"github.com/ssargent/osuvault/pkg/logging"
	"github.com/ssargent/osuvault/pkg/metrics"
	"github.com/ssargent/osuvault/pkg/model"
	"github.com/ssargent/osuvault/pkg/storage"
	"github.com/ssargent/osuvault/pkg/vault"
)

// runtime holds everything a command needs once the config is loaded
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *storage.ArchiveStore
	users   *vault.Vault[model.User, archive.RecordResolver]
}

type configKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "osuvault",
	Short: "osuvault - snapshot archive for osu! users",
	Long: `osuvault archives osu! API user profiles into compact zero-copy
snapshots and keeps a history of them per user.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.GetDefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the store (overrides the config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the config)")
}

// loadConfig reads the config file if one exists and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg := config.DefaultConfig()
	if configPath != "" && config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openRuntime(cfg *config.Config) (*runtime, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := storage.Open(storage.Options{
		Dir:           filepath.Join(cfg.DataDir, "snapshots"),
		Sync:          cfg.Storage.Sync,
		KeepSnapshots: cfg.Storage.KeepSnapshots,
		Logger:        logger,
		Metrics:       m,
	})
	if err != nil {
		return nil, err
	}

	users := vault.New(store, model.UserArchiver(),
		vault.WithArchiveOptions(cfg.ArchiveOptions()...),
		vault.WithLogger(logger),
		vault.WithMetrics(m),
	)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		store:   store,
		users:   users,
	}, nil
}

// Close closes the store and writes the metrics textfile when one is configured.
func (rt *runtime) Close() error {
	err := rt.store.Close()
	if rt.metrics != nil && rt.cfg.Metrics.TextFile != "" {
		err = errors.Join(err, rt.metrics.WriteTextfile(rt.cfg.Metrics.TextFile))
	}
	_ = rt.logger.Sync()
	return err
}

// withRuntime opens the store for the duration of a command and closes it
// whether or not the command fails.
func withRuntime(run func(cmd *cobra.Command, rt *runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
		if !ok {
			return errors.New("config not found in context")
		}
		rt, err := openRuntime(cfg)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, rt.Close())
		}()
		return run(cmd, rt, args)
	}
}

// userKey is the store key of an osu! user id.
func userKey(arg string) (string, error) {
	id, err := parseUserID(arg)
	if err != nil {
		return "", err
	}
	return keyOf(id), nil
}

func keyOf(id uint32) string {
	return fmt.Sprintf("user:%d", id)
}
