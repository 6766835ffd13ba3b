// Command landingctl is the operator CLI: database migrations, project
// seeding, admin credentials and a quick look at recent leads. It reads the
// same environment variables as the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"landing/internal/platform/config"
)

var rootCmd = &cobra.Command{
	Use:           "landingctl",
	Short:         "Operate the landing service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, tokenCmd, hashKeyCmd, leadsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig is a var so tests can inject configuration.
var loadConfig = config.FromEnv
