package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/app"
)

// errDisconnected makes the command exit non-zero without extra output.
var errDisconnected = errors.New("backend disconnected")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the active profile's backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := cfg.Current()
		client, err := app.NewDispatcher(profile, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := client.Probe(context.Background()); err != nil {
			fmt.Fprintf(out, "%s (%s): disconnected\n  %v\n", cfg.ActiveProfile, profile.BaseURL, err)
			cmd.SilenceErrors = true
			return errDisconnected
		}
		fmt.Fprintf(out, "%s (%s): connected\n", cfg.ActiveProfile, profile.BaseURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
