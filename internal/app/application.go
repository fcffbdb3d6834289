package app

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/analyzer"
	"github.com/Rorical/CodeAssist/internal/config"
	"github.com/Rorical/CodeAssist/internal/core"
	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/storage"
	"github.com/Rorical/CodeAssist/internal/update"
	"github.com/Rorical/CodeAssist/internal/workspace"
	"github.com/Rorical/CodeAssist/ui/styles"
)

const PreferencesFile = "preferences.db"

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.AssistantService
	prefs      *storage.PreferenceStore // nil when the database could not be opened
	model      *AppModel
}

// NewDispatcher builds the analysis client described by a profile.
func NewDispatcher(profile config.Profile, logger *zap.Logger) (analyzer.Dispatcher, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	switch profile.Backend {
	case config.BackendOpenAI:
		client, err := analyzer.NewOpenAIClient(analyzer.OpenAIConfig{
			APIKey:       profile.APIKey,
			BaseURL:      profile.BaseURL,
			Model:        profile.Model,
			Timeout:      profile.Timeout(),
			ProbeTimeout: profile.ProbeTimeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return analyzer.NewClient(&analyzer.ClientConfig{
			BaseURL:      profile.BaseURL,
			Timeout:      profile.Timeout(),
			ProbeTimeout: profile.ProbeTimeout(),
			UseMock:      profile.UseMock,
		}, logger), nil
	}
}

func NewApplication(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", uuid.NewString()))

	profile := cfg.Current()
	client, err := NewDispatcher(profile, logger)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", cfg.ActiveProfile, err)
	}

	prefs := openPreferences(logger)
	defaults := storage.Preferences{
		Code:       models.PlaceholderCode,
		Language:   workspace.DefaultLanguage,
		ThemeMode:  cfg.UI.ThemeMode,
		ThemeColor: cfg.UI.ThemeColor,
	}
	loaded := defaults
	if prefs != nil {
		loaded = prefs.Load(defaults)
	}
	if _, ok := workspace.Lookup(loaded.Language); !ok {
		loaded.Language = workspace.DefaultLanguage
	}

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Warn("event bus error", zap.String("op", e.Operation), zap.Error(e.Err))
	})
	disp := dispatcher.NewEventDispatcher(eb)

	opts := core.Options{
		Logger:          logger,
		ReprobeInterval: profile.ReprobeInterval(),
	}
	if prefs != nil {
		opts.Preferences = prefs
	}
	service := core.NewAssistantService(client, eb, opts)

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	theme := styles.NewTheme(loaded.ThemeMode, loaded.ThemeColor)
	model := &AppModel{
		appModel:   models.NewAppModel(loaded.Code, loaded.Language, theme),
		dispatcher: disp,
		env:        update.NewEnv(eb, exportDir),
	}

	logger.Info("application created",
		zap.String("profile", cfg.ActiveProfile),
		zap.String("backend", profile.Backend),
		zap.String("base_url", profile.BaseURL))

	return &Application{
		config:     cfg,
		logger:     logger,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		prefs:      prefs,
		model:      model,
	}, nil
}

func openPreferences(logger *zap.Logger) *storage.PreferenceStore {
	dir, err := config.HomeDir()
	if err != nil {
		logger.Warn("preferences disabled", zap.Error(err))
		return nil
	}
	store, err := storage.OpenPreferenceStore(filepath.Join(dir, PreferencesFile), logger)
	if err != nil {
		logger.Warn("preferences disabled", zap.Error(err))
		return nil
	}
	return store
}

func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()

	if m, ok := final.(*AppModel); ok && app.prefs != nil {
		if saveErr := app.prefs.Save(update.Preferences(&m.appModel)); saveErr != nil {
			app.logger.Warn("failed to save preferences on exit", zap.Error(saveErr))
		}
	}
	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	if app.prefs != nil {
		if err := app.prefs.Close(); err != nil {
			app.logger.Warn("failed to close preference store", zap.Error(err))
		}
	}
	app.logger.Info("application stopped")
}
