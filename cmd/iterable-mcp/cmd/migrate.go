// ABOUTME: The migrate command: imports a legacy env-var credential into the key store
// ABOUTME: Idempotent; re-running against an existing name is a no-op

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iterable-tools/iterable-mcp/internal/config"
	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import the legacy ITERABLE_API_KEY into the key store",
	Long: `Migrate imports a credential configured the old way, via the
ITERABLE_API_KEY environment variable, into the managed key store. The
endpoint comes from ITERABLE_BASE_URL when set, defaulting to the US API.

Safe to re-run: if a key with the target name already exists, its id is
printed and nothing changes.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateName string

func init() {
	migrateCmd.Flags().StringVar(&migrateName, "name", "default", "name for the imported key")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	secret := os.Getenv(config.EnvLegacyAPIKey)
	if secret == "" {
		return fmt.Errorf("%s is not set; nothing to migrate", config.EnvLegacyAPIKey)
	}

	cfg, _, mgr, err := setup()
	if err != nil {
		return err
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = iterable.BaseURLUS
	}

	id, err := mgr.MigrateLegacyKey(secret, endpoint, migrateName)
	if err != nil {
		return err
	}

	fmt.Printf("Key %s stored as %s\n", color.CyanString(migrateName), id)
	fmt.Printf("You can now unset %s.\n", config.EnvLegacyAPIKey)
	return nil
}
