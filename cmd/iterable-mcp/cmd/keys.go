// ABOUTME: The keys command family: add, list, use, delete, update, audit
// ABOUTME: Human-readable output with an optional --json mode for scripting

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
	"github.com/iterable-tools/iterable-mcp/internal/keystore"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage stored Iterable API keys",
}

var keysAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a new API key",
	Long: `Add stores a new API key under a unique name. The secret goes to the OS
keychain where available; only metadata is written to disk.

Permission flags set per-key overrides that win over the environment when
serving with this key. Flags you don't pass leave the permission to the
environment.`,
	Args: cobra.NoArgs,
	RunE: runKeysAdd,
}

var keysListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored keys",
	Args:    cobra.NoArgs,
	RunE:    runKeysList,
}

var keysUseCmd = &cobra.Command{
	Use:   "use <id-or-name>",
	Short: "Make a key the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, mgr, err := setup()
		if err != nil {
			return err
		}
		if err := mgr.SetActiveKey(args[0]); err != nil {
			return err
		}
		fmt.Printf("Active key is now %s\n", color.CyanString(args[0]))
		return nil
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a key by id",
	Long: `Delete removes a key's metadata and its keychain entry. Deletion takes an
id, never a name, and refuses to remove the active key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, mgr, err := setup()
		if err != nil {
			return err
		}
		if err := mgr.DeleteKey(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted key %s\n", args[0])
		return nil
	},
}

var keysUpdateCmd = &cobra.Command{
	Use:   "update <id-or-name>",
	Short: "Update a key's permission overrides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := permissionOverrides(cmd)
		if overrides == nil {
			return fmt.Errorf("nothing to update: pass at least one of --pii, --writes, --sends")
		}
		_, _, mgr, err := setup()
		if err != nil {
			return err
		}
		if err := mgr.UpdateKeyEnv(args[0], overrides); err != nil {
			return err
		}
		fmt.Printf("Updated key %s\n", color.CyanString(args[0]))
		return nil
	},
}

var keysAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check every key's keychain entry",
	Long: `Audit probes the OS keychain for each stored key and reports records whose
secret is missing. Nothing is deleted; remediation is left to the operator.`,
	Args: cobra.NoArgs,
	RunE: runKeysAudit,
}

var (
	addName     string
	addSecret   string
	addEndpoint string
)

func init() {
	keysAddCmd.Flags().StringVar(&addName, "name", "", "unique name for the key (required)")
	keysAddCmd.Flags().StringVar(&addSecret, "secret", "", "the API key value (required)")
	keysAddCmd.Flags().StringVar(&addEndpoint, "endpoint", iterable.BaseURLUS, "API endpoint the key belongs to")
	_ = keysAddCmd.MarkFlagRequired("name")
	_ = keysAddCmd.MarkFlagRequired("secret")

	for _, c := range []*cobra.Command{keysAddCmd, keysUpdateCmd} {
		c.Flags().Bool("pii", false, "allow tools that expose user PII")
		c.Flags().Bool("writes", false, "allow tools that modify data")
		c.Flags().Bool("sends", false, "allow tools that send messages (requires writes)")
	}

	keysCmd.AddCommand(keysAddCmd, keysListCmd, keysUseCmd, keysDeleteCmd, keysUpdateCmd, keysAuditCmd)
	rootCmd.AddCommand(keysCmd)
}

// permissionOverrides collects per-key overrides from the permission flags.
// Only flags the user actually passed become overrides; returns nil when
// none were passed so absent flags keep deferring to the environment.
func permissionOverrides(cmd *cobra.Command) map[string]string {
	overrides := make(map[string]string)
	for flag, env := range map[string]string{
		"pii":    keystore.EnvUserPII,
		"writes": keystore.EnvEnableWrites,
		"sends":  keystore.EnvEnableSends,
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetBool(flag)
			overrides[env] = strconv.FormatBool(v)
		}
	}
	if len(overrides) == 0 {
		return nil
	}
	return overrides
}

func runKeysAdd(cmd *cobra.Command, args []string) error {
	_, logger, mgr, err := setup()
	if err != nil {
		return err
	}

	if dup, err := mgr.FindKeyByValue(addSecret); err != nil {
		logger.Warn("duplicate scan failed", "error", err)
	} else if dup != nil {
		fmt.Fprintf(os.Stderr, "%s this secret is already stored as %q (%s)\n",
			color.YellowString("warning:"), dup.Name, dup.ID)
	}

	id, err := mgr.AddKey(addName, addSecret, addEndpoint, permissionOverrides(cmd))
	if err != nil {
		return err
	}

	fmt.Printf("Added key %s (%s)\n", color.CyanString(addName), id)
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	_, _, mgr, err := setup()
	if err != nil {
		return err
	}
	records, err := mgr.ListKeys()
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(records)
	}
	if len(records) == 0 {
		fmt.Println("No keys stored. Run 'iterable-mcp keys add' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tENDPOINT\tID\tCREATED")
	for _, rec := range records {
		marker := ""
		if rec.IsActive {
			marker = color.GreenString("*")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			marker, rec.Name, rec.BaseURL, rec.ID, rec.Created.Format("2006-01-02"))
	}
	return w.Flush()
}

func runKeysAudit(cmd *cobra.Command, args []string) error {
	_, _, mgr, err := setup()
	if err != nil {
		return err
	}
	orphans, err := mgr.ValidateAndCleanup()
	if err != nil {
		return err
	}

	if jsonOutput {
		if orphans == nil {
			orphans = []*keystore.KeyRecord{}
		}
		return json.NewEncoder(os.Stdout).Encode(orphans)
	}
	if len(orphans) == 0 {
		fmt.Println(color.GreenString("All keys verified."))
		return nil
	}

	fmt.Printf("%s %d key(s) have metadata but no keychain entry:\n",
		color.YellowString("warning:"), len(orphans))
	for _, rec := range orphans {
		fmt.Printf("  %s (%s)\n", rec.Name, rec.ID)
	}
	fmt.Println("\nNothing was deleted. To drop a stale record:")
	fmt.Println("  iterable-mcp keys delete <id>")
	return nil
}
