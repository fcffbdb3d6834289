package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/CodeAssist/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage backend profiles: the analysis server or OpenAI-compatible endpoint to talk to.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Fprintln(out, "Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Fprintf(out, "  %s%s\n", name, marker)
			printProfile(cmd, cfg.Profiles[name], "    ")
			fmt.Fprintln(out)
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.ActiveProfile
		if len(args) > 0 {
			name = args[0]
		}
		profile, exists := cfg.Profiles[name]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\n", name)
		printProfile(cmd, profile, "")
		return nil
	},
}

func printProfile(cmd *cobra.Command, p config.Profile, indent string) {
	out := cmd.OutOrStdout()
	p = p.WithDefaults()
	fmt.Fprintf(out, "%sBackend: %s\n", indent, p.Backend)
	if p.BaseURL != "" {
		fmt.Fprintf(out, "%sBase URL: %s\n", indent, p.BaseURL)
	}
	if p.Backend == config.BackendOpenAI {
		fmt.Fprintf(out, "%sModel: %s\n", indent, p.Model)
		hasKey := "Not set"
		if p.APIKey != "" {
			hasKey = "Set (hidden)"
		}
		fmt.Fprintf(out, "%sAPI Key: %s\n", indent, hasKey)
	} else {
		fmt.Fprintf(out, "%sMock replies: %t\n", indent, p.UseMock)
	}
	fmt.Fprintf(out, "%sTimeouts: analyze %s, probe %s, re-probe %s\n",
		indent, p.Timeout(), p.ProbeTimeout(), p.ReprobeInterval())
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			prompt := promptui.Prompt{Label: "Profile name"}
			var err error
			if name, err = prompt.Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		if _, exists := cfg.Profiles[name]; exists {
			return fmt.Errorf("profile '%s' already exists", name)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			return err
		}
		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully!\n", name)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := profileArg(args, "Select profile to edit", "")
		if err != nil {
			return err
		}
		profile, exists := cfg.Profiles[name]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", name)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			return err
		}
		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' updated successfully!\n", name)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := profileArg(args, "Select profile to delete", "")
		if err != nil {
			return err
		}
		if _, exists := cfg.Profiles[name]; !exists {
			return fmt.Errorf("profile '%s' does not exist", name)
		}

		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", name),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
			return nil
		}

		delete(cfg.Profiles, name)
		if len(cfg.Profiles) == 0 {
			cfg.Profiles[config.DefaultProfileName] = config.DefaultProfile()
		}
		if cfg.ActiveProfile == name {
			cfg.ActiveProfile = cfg.ProfileNames()[0]
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted successfully!\n", name)
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := profileArg(args, "Select profile to switch to", cfg.ActiveProfile)
		if err != nil {
			return err
		}
		if err := cfg.Use(name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'\n", name)
		return nil
	},
}

// profileArg returns args[0] or lets the user pick a profile, skipping exclude.
func profileArg(args []string, label, exclude string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	names := make([]string, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		if name != exclude {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", errors.New("no other profiles available")
	}

	prompt := promptui.Select{Label: label, Items: names}
	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return name, nil
}

// promptProfile asks for every field, offering current values as defaults.
func promptProfile(p config.Profile) (config.Profile, error) {
	backends := []string{config.BackendHTTP, config.BackendOpenAI}
	cursor := 0
	if p.Backend == config.BackendOpenAI {
		cursor = 1
	}
	sel := promptui.Select{Label: "Backend", Items: backends, CursorPos: cursor}
	_, backend, err := sel.Run()
	if err != nil {
		return p, fmt.Errorf("selection failed: %w", err)
	}
	p.Backend = backend

	baseURLLabel := "Base URL"
	if backend == config.BackendOpenAI {
		baseURLLabel = "Base URL (optional)"
		if p.BaseURL == config.DefaultBaseURL {
			p.BaseURL = ""
		}
	}
	if p.BaseURL, err = (&promptui.Prompt{Label: baseURLLabel, Default: p.BaseURL}).Run(); err != nil {
		return p, fmt.Errorf("prompt failed: %w", err)
	}

	if backend == config.BackendOpenAI {
		keyPrompt := promptui.Prompt{
			Label:   "API Key",
			Default: p.APIKey,
			Mask:    '*',
			Validate: func(s string) error {
				if s == "" {
					return errors.New("an API key is required")
				}
				return nil
			},
		}
		if p.APIKey, err = keyPrompt.Run(); err != nil {
			return p, fmt.Errorf("prompt failed: %w", err)
		}
		if p.Model, err = (&promptui.Prompt{Label: "Model", Default: p.Model}).Run(); err != nil {
			return p, fmt.Errorf("prompt failed: %w", err)
		}
	} else {
		mockPrompt := promptui.Prompt{Label: "Ask the backend for mock replies", IsConfirm: true}
		_, err := mockPrompt.Run()
		p.UseMock = err == nil
	}

	timeout, err := promptSeconds("Analyze timeout (seconds)", p.TimeoutSeconds, config.DefaultTimeoutSeconds)
	if err != nil {
		return p, err
	}
	p.TimeoutSeconds = timeout
	return p, nil
}

func promptSeconds(label string, current, fallback int) (int, error) {
	if current <= 0 {
		current = fallback
	}
	prompt := promptui.Prompt{
		Label:   label,
		Default: strconv.Itoa(current),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return errors.New("enter a positive number")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("prompt failed: %w", err)
	}
	return strconv.Atoi(value)
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
