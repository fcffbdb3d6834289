package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/analyzer"
	"github.com/Rorical/CodeAssist/internal/app"
	"github.com/Rorical/CodeAssist/internal/extract"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/workspace"
	"github.com/Rorical/CodeAssist/ui/components"
	"github.com/Rorical/CodeAssist/ui/styles"
)

var (
	analyzeAction   string
	analyzeLanguage string
	analyzeApply    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run one analysis round on a file and print the reply",
	Long: `Send a file to the backend with one of the actions explain, find_bugs
or improve and print the reply. With --apply, code extracted from a
find_bugs or improve reply replaces the file contents.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := models.ParseAction(analyzeAction)
		if err != nil {
			return err
		}

		file, err := workspace.Import(args[0])
		if err != nil {
			return err
		}
		language := analyzeLanguage
		if language == "" {
			language = file.Language
		}
		if language == "" {
			return fmt.Errorf("cannot detect the language of %s, pass --language", args[0])
		}

		client, err := app.NewDispatcher(cfg.Current(), logger)
		if err != nil {
			return err
		}

		resp, err := client.Analyze(context.Background(), analyzer.NewRequest(action, file.Code, language))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			theme := styles.NewTheme(cfg.UI.ThemeMode, cfg.UI.ThemeColor)
			fmt.Fprintln(out, components.RenderMarkdown(resp.Response, 100, theme))
		} else {
			fmt.Fprintln(out, resp.Response)
		}

		if !analyzeApply {
			return nil
		}
		res := extract.Interpret(action, resp.Response, language)
		if !res.HasCode {
			fmt.Fprintln(cmd.ErrOrStderr(), "no applicable code block in the reply, file left unchanged")
			return nil
		}
		if err := workspace.WriteBack(file.Path, res.Code+"\n"); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "applied extracted code to %s\n", file.Path)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeAction, "action", "a", string(models.ActionExplain), "explain, find_bugs or improve")
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "language sent to the backend (default: from the file extension)")
	analyzeCmd.Flags().BoolVar(&analyzeApply, "apply", false, "write extracted code back to the file")

	rootCmd.AddCommand(analyzeCmd)
}
