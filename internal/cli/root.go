// Package cli implements the coach command-line interface using Cobra.
// Every command runs in-process against the configured state store.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// profileFlag is the --profile value; empty means the configured default.
var profileFlag string

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "coach: XP, levels, streaks and badges for sales reps",
	Long: `coach tracks gamification progress for CRM users.
Award XP for sales activities, keep daily streaks alive and unlock badges.

Run 'coach serve' to expose the same state over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "Profile to act on (default from config)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
