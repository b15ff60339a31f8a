// cmd/claims-orchestrator/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "claims-orchestrator",
	Short: "Dental claim intake pipeline",
	Long: "Runs pre-approval, reimbursement and dentist search intents through the claim pipeline, " +
		"either behind the HTTP intake API or as a Zeebe job worker.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: configs/config.yaml with APP_ENVIRONMENT overlay)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
