package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is looked up in the working directory
	ProjectConfigFile = "bookshop.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/bookshop"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	getenv  func(string) string
	homeDir func() (string, error)
	workDir func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger,
		getenv:  os.Getenv,
		homeDir: os.UserHomeDir,
		workDir: os.Getwd,
	}
}

// WithDirs pins the home and working directories used for config discovery.
func (l *Loader) WithDirs(home, wd string) *Loader {
	l.homeDir = func() (string, error) { return home, nil }
	l.workDir = func() (string, error) { return wd, nil }
	return l
}

// WithEnv replaces the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Load builds the configuration with layered precedence:
// 1. Defaults
// 2. User config (~/.config/bookshop/config.yaml)
// 3. Project config (bookshop.yaml in the working directory), or explicitPath when set
// 4. BOOKSHOP_* environment variables
//
// Flags are applied by the caller on top of the result, then Validate runs.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	if p := l.userConfigPath(); p != "" {
		if userCfg, err := LoadFromFile(p); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", p))
			cfg.Merge(userCfg)
		} else if !os.IsNotExist(err) {
			l.logger.Warn("Failed to load user config", slog.String("path", p), slog.String("error", err.Error()))
		}
	}

	if explicitPath != "" {
		fileCfg, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicitPath))
		cfg.Merge(fileCfg)
	} else if p := l.projectConfigPath(); p != "" {
		if projCfg, err := LoadFromFile(p); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", p))
			cfg.Merge(projCfg)
		} else if !os.IsNotExist(err) {
			l.logger.Warn("Failed to load project config", slog.String("path", p), slog.String("error", err.Error()))
		}
	}

	if err := cfg.ApplyEnv(l.getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := l.homeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

func (l *Loader) projectConfigPath() string {
	wd, err := l.workDir()
	if err != nil {
		return ""
	}
	return filepath.Join(wd, ProjectConfigFile)
}
