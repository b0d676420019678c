// ABOUTME: The serve command: resolves a credential and permissions, then runs MCP over stdio
// ABOUTME: Endpoint overrides and the permission filter are applied here, once, at startup

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iterable-tools/iterable-mcp/internal/config"
	"github.com/iterable-tools/iterable-mcp/internal/iterable"
	"github.com/iterable-tools/iterable-mcp/internal/keystore"
	"github.com/iterable-tools/iterable-mcp/internal/mcpserver"
	"github.com/iterable-tools/iterable-mcp/internal/permissions"
	"github.com/iterable-tools/iterable-mcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Serve runs the MCP server over stdio for an AI client to connect to.

The credential comes from the key store: the active key by default, or the
key named by --key / ITERABLE_KEY_NAME. Permissions are resolved once at
startup from the key's overrides and the environment; tools outside the
granted permissions are never registered.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveKeyName string

func init() {
	serveCmd.Flags().StringVar(&serveKeyName, "key", "", "serve with this key instead of the active one")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, mgr, err := setup()
	if err != nil {
		return err
	}
	if serveKeyName != "" {
		cfg.KeyName = serveKeyName
	}

	// Orphan check is advisory at startup; remediation happens via keys audit.
	if _, err := mgr.ValidateAndCleanup(); err != nil {
		logger.Warn("keychain validation failed", "error", err)
	}

	meta, secret, err := selectKey(cfg, mgr)
	if err != nil {
		if errors.Is(err, keystore.ErrNoActiveKey) {
			return fmt.Errorf("no API key configured: run 'iterable-mcp keys add' first")
		}
		return err
	}

	baseURL := meta.BaseURL
	if cfg.BaseURL != "" && cfg.BaseURL != meta.BaseURL {
		logger.Warn("endpoint override in effect",
			"key_endpoint", meta.BaseURL,
			"override", cfg.BaseURL,
		)
		baseURL = cfg.BaseURL
	}

	eff := permissions.Normalize(permissions.Resolve(meta.Env, nil), logger)

	client := iterable.New(baseURL, secret, iterable.WithLogger(logger))
	all := tools.All(client)
	granted := permissions.FilterTools(all, eff)

	logger.Info("starting server",
		"key", meta.Name,
		"endpoint", baseURL,
		slog.Group("permissions",
			"pii", eff.AllowPII,
			"writes", eff.AllowWrites,
			"sends", eff.AllowSends,
		),
		"tools_granted", len(granted),
		"tools_withheld", len(all)-len(granted),
	)

	srv := mcpserver.New(mcpserver.Config{
		Version: version,
		Tools:   granted,
		Logger:  logger,
	})
	return srv.ServeStdio()
}

// selectKey picks the serving credential: the named key when configured,
// otherwise the active one. Returns redacted metadata plus the plaintext
// secret.
func selectKey(cfg *config.Config, mgr *keystore.Manager) (*keystore.KeyRecord, string, error) {
	if cfg.KeyName == "" {
		meta, err := mgr.GetActiveKeyMetadata()
		if err != nil {
			return nil, "", err
		}
		secret, err := mgr.GetActiveKey()
		if err != nil {
			return nil, "", err
		}
		return meta, secret, nil
	}

	meta, err := mgr.GetKeyMetadata(cfg.KeyName)
	if err != nil {
		return nil, "", err
	}
	secret, err := mgr.GetKey(cfg.KeyName)
	if err != nil {
		return nil, "", err
	}
	return meta, secret, nil
}
