package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	streamsconfig "github.com/c360studio/semstreams/config"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semscore.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semscore"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semscore/config.yaml)
// 3. Project config (explicit path, or semscore.yaml in current or parent directories)
// 4. Environment variables (POSTGRES_*, NATS_URL, SEMSCORE_API_KEY)
//
// File contents are expanded with ${VAR} substitution before parsing.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := l.loadExpanded(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !os.IsNotExist(err) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config. An explicit path must exist; a discovered one is
	// optional.
	projectConfigPath := explicitPath
	if projectConfigPath == "" {
		projectConfigPath = l.findProjectConfig()
	}
	if projectConfigPath != "" {
		projectConfig, err := l.loadExpanded(projectConfigPath)
		if err != nil {
			if explicitPath != "" {
				return nil, err
			}
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		} else {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Environment overrides
	l.applyEnvOverrides(config)

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadExpanded reads a config file and expands environment variables before
// parsing. Supports ${VAR} and $VAR syntax.
func (l *Loader) loadExpanded(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	expanded := streamsconfig.ExpandEnvWithDefaults(string(data))
	return LoadFromBytes([]byte(expanded))
}

// applyEnvOverrides applies the original deployment environment variables on
// top of whatever the files configured.
func (l *Loader) applyEnvOverrides(config *Config) {
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		config.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Postgres.Port = port
		} else {
			l.logger.Warn("Ignoring unparseable POSTGRES_PORT", slog.String("value", v))
		}
	}
	if v := os.Getenv("POSTGRES_USERNAME"); v != "" {
		config.Postgres.Username = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		config.Postgres.Password = v
	}
	if v := os.Getenv("POSTGRES_DB_NAME"); v != "" {
		config.Postgres.DBName = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		config.NATS.URL = v
	}
	if v := os.Getenv("SEMSCORE_API_KEY"); v != "" {
		config.API.APIKey = v
	}
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semscore.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
