// ABOUTME: Root cobra command, shared flags, and service construction helpers
// ABOUTME: Wires config, logger, keychain backend, and key manager together

// Package cmd provides the CLI commands for iterable-mcp.
package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iterable-tools/iterable-mcp/internal/config"
	"github.com/iterable-tools/iterable-mcp/internal/keychain"
	"github.com/iterable-tools/iterable-mcp/internal/keystore"
)

// version is set by goreleaser at build time.
var version = "dev"

var (
	cfgFile    string
	configDir  string
	jsonOutput bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "iterable-mcp",
	Short: "MCP server exposing the Iterable API to AI assistants",
	Long: `iterable-mcp exposes the Iterable marketing API as MCP tools, gated by a
three-axis permission model (PII access, writes, sends).

Get started:
  iterable-mcp keys add --name prod --secret <api-key> --endpoint https://api.iterable.com
  iterable-mcp serve

API keys are stored in the OS keychain where available; tool access is
deny-by-default until permissions are granted per key or via environment.`,
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// Best effort: a missing .env is the normal case
		_ = godotenv.Load()
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default <config-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "key store directory (default ~/.config/iterable-mcp)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
}

// loadConfig builds the process configuration from flags, file, and env.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.DefaultConfigDir(), "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	return cfg, nil
}

// newManager constructs the key manager with the platform keychain backend.
func newManager(cfg *config.Config, logger *slog.Logger) *keystore.Manager {
	return keystore.NewManager(cfg.ConfigDir, keychain.New(), logger)
}

// setup is the shared preamble for every command needing the key store.
func setup() (*config.Config, *slog.Logger, *keystore.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)
	return cfg, logger, newManager(cfg, logger), nil
}
