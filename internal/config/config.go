// Package config loads the JSON settings file under ~/.codeassist.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Backend kinds.
const (
	BackendHTTP   = "http"
	BackendOpenAI = "openai"
)

const (
	DefaultBaseURL             = "http://localhost:8000"
	DefaultModel               = "gpt-4o-mini"
	DefaultTimeoutSeconds      = 60
	DefaultProbeTimeoutSeconds = 5
	DefaultReprobeSeconds      = 15

	DefaultProfileName = "default"
)

// Profile describes one analysis backend.
type Profile struct {
	Backend             string `json:"backend"`
	BaseURL             string `json:"base_url,omitempty"`
	APIKey              string `json:"api_key,omitempty"`
	Model               string `json:"model,omitempty"`
	TimeoutSeconds      int    `json:"timeout_seconds,omitempty"`
	ProbeTimeoutSeconds int    `json:"probe_timeout_seconds,omitempty"`

	// ReprobeSeconds is the liveness re-check interval while disconnected.
	// A negative value disables re-probing; zero means the default.
	ReprobeSeconds int  `json:"reprobe_seconds,omitempty"`
	UseMock        bool `json:"use_mock,omitempty"`
}

// UIConfig holds first-run theme defaults. Stored preferences win.
type UIConfig struct {
	ThemeMode  string `json:"theme_mode,omitempty"`
	ThemeColor string `json:"theme_color,omitempty"`
}

type Config struct {
	Profiles      map[string]Profile `json:"profiles"`
	ActiveProfile string             `json:"active_profile"`
	UI            UIConfig           `json:"ui"`

	currentProfile *Profile
	path           string
}

func DefaultProfile() Profile {
	return Profile{
		Backend:             BackendHTTP,
		BaseURL:             DefaultBaseURL,
		Model:               DefaultModel,
		TimeoutSeconds:      DefaultTimeoutSeconds,
		ProbeTimeoutSeconds: DefaultProbeTimeoutSeconds,
		ReprobeSeconds:      DefaultReprobeSeconds,
	}
}

func LoadConfig() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the file at configPath, writing defaults when it
// does not exist yet.
func LoadConfigFrom(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.path = configPath

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}
	return config, nil
}

// HomeDir is the directory holding config, logs and the preference database.
// CODEASSIST_HOME replaces the user's home directory as its parent.
func HomeDir() (string, error) {
	base := os.Getenv("CODEASSIST_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = homeDir
	}
	return filepath.Join(base, ".codeassist"), nil
}

func ConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles:      map[string]Profile{DefaultProfileName: DefaultProfile()},
		ActiveProfile: DefaultProfileName,
		UI:            UIConfig{ThemeMode: "dark", ThemeColor: "blue"},
	}
	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}
	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	// 0600: profiles may hold API keys.
	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	return saveConfig(c, path)
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Use makes name the active profile without saving.
func (c *Config) Use(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	return c.setCurrentProfile()
}

// Current returns the active profile with defaults filled in.
func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return DefaultProfile()
	}
	return c.currentProfile.WithDefaults()
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order.
		c.ActiveProfile = c.ProfileNames()[0]
		profile = c.Profiles[c.ActiveProfile]
	}

	c.currentProfile = &profile
	return nil
}

// WithDefaults fills unset fields with the package defaults.
func (p Profile) WithDefaults() Profile {
	d := DefaultProfile()
	if p.Backend == "" {
		p.Backend = d.Backend
	}
	if p.BaseURL == "" && p.Backend == BackendHTTP {
		p.BaseURL = d.BaseURL
	}
	if p.Model == "" {
		p.Model = d.Model
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = d.TimeoutSeconds
	}
	if p.ProbeTimeoutSeconds <= 0 {
		p.ProbeTimeoutSeconds = d.ProbeTimeoutSeconds
	}
	if p.ReprobeSeconds == 0 {
		p.ReprobeSeconds = d.ReprobeSeconds
	}
	return p
}

// Validate reports a profile that cannot be used to build a client.
func (p Profile) Validate() error {
	switch p.Backend {
	case "", BackendHTTP:
		return nil
	case BackendOpenAI:
		if p.APIKey == "" {
			return fmt.Errorf("backend %q requires an api_key", BackendOpenAI)
		}
		return nil
	}
	return fmt.Errorf("unknown backend %q (want %s or %s)", p.Backend, BackendHTTP, BackendOpenAI)
}

func (p Profile) Timeout() time.Duration {
	return time.Duration(p.WithDefaults().TimeoutSeconds) * time.Second
}

func (p Profile) ProbeTimeout() time.Duration {
	return time.Duration(p.WithDefaults().ProbeTimeoutSeconds) * time.Second
}

// ReprobeInterval is zero when re-probing is disabled.
func (p Profile) ReprobeInterval() time.Duration {
	s := p.WithDefaults().ReprobeSeconds
	if s < 0 {
		return 0
	}
	return time.Duration(s) * time.Second
}
