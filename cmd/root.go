package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/app"
	"github.com/Rorical/CodeAssist/internal/config"
	"github.com/Rorical/CodeAssist/internal/logging"
)

var (
	verbose     bool
	profileFlag string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codeassist",
	Short: "Terminal code editor with an AI assistant",
	Long: `CodeAssist is a terminal code editor with an AI assistant panel.
Write code, ask the assistant to explain it, find bugs or improve it, and
apply suggested code back to the editor with one key.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if profileFlag != "" {
			if err := cfg.Use(profileFlag); err != nil {
				return err
			}
		}

		dir, err := config.HomeDir()
		if err != nil {
			return err
		}
		logger, err = logging.New(filepath.Join(dir, logging.FileName), verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

func runApp() error {
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile to use for this run (not saved)")

	rootCmd.AddCommand(profileCmd)
}
