package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/kaiwa/internal/app/config"
)

// RawSettings represents the structure of the setting.yaml file.
// Pointer fields distinguish "absent" from zero values.
type RawSettings struct {
	Home       *string `yaml:"home"`
	AgentType  *string `yaml:"agent_type"`
	AgentBin   *string `yaml:"agent_bin"`
	TimeoutSec *int    `yaml:"timeout_sec"`

	MaxRetries   *int  `yaml:"max_retries"`
	RetryDelayMs *int  `yaml:"retry_delay_ms"`
	LogErrors    *bool `yaml:"log_errors"`

	StderrLevel *string `yaml:"stderr_level"`
}

// LoadSettings loads configuration with priority:
// setting.yaml > KAIWA_* environment variables > defaults.
// A .env file in the working directory is loaded first if present.
func LoadSettings(baseDir string) (*config.AppConfig, error) {
	// Best effort; a missing .env is the common case
	_ = godotenv.Load()

	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	yamlPath := filepath.Join(baseDir, "setting.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", yamlPath, err)
		}
		configSource = "yaml"
		settingPath = yamlPath
	}

	if applyEnvOverrides(settings) && configSource == "default" {
		configSource = "env"
	}

	applyDefaults(settings, baseDir)

	return config.NewAppConfig(
		*settings.Home,
		*settings.AgentType,
		*settings.AgentBin,
		*settings.TimeoutSec,
		*settings.MaxRetries,
		*settings.RetryDelayMs,
		*settings.LogErrors,
		*settings.StderrLevel,
		configSource,
		settingPath,
	), nil
}

// applyEnvOverrides fills unset fields from KAIWA_* environment variables
// and reports whether any were applied.
func applyEnvOverrides(settings *RawSettings) bool {
	applied := false

	if settings.Home == nil {
		if v := os.Getenv("KAIWA_HOME"); v != "" {
			settings.Home = &v
			applied = true
		}
	}
	if settings.AgentType == nil {
		if v := os.Getenv("KAIWA_AGENT_TYPE"); v != "" {
			settings.AgentType = &v
			applied = true
		}
	}
	if settings.AgentBin == nil {
		if v := os.Getenv("KAIWA_AGENT_BIN"); v != "" {
			settings.AgentBin = &v
			applied = true
		}
	}
	if settings.TimeoutSec == nil {
		if v, ok := envInt("KAIWA_TIMEOUT_SEC"); ok {
			settings.TimeoutSec = &v
			applied = true
		}
	}
	if settings.MaxRetries == nil {
		if v, ok := envInt("KAIWA_MAX_RETRIES"); ok {
			settings.MaxRetries = &v
			applied = true
		}
	}
	if settings.RetryDelayMs == nil {
		if v, ok := envInt("KAIWA_RETRY_DELAY_MS"); ok {
			settings.RetryDelayMs = &v
			applied = true
		}
	}
	if settings.LogErrors == nil {
		if v := os.Getenv("KAIWA_LOG_ERRORS"); v != "" {
			b, err := strconv.ParseBool(v)
			if err == nil {
				settings.LogErrors = &b
				applied = true
			}
		}
	}
	if settings.StderrLevel == nil {
		if v := os.Getenv("KAIWA_STDERR_LEVEL"); v != "" {
			settings.StderrLevel = &v
			applied = true
		}
	}

	return applied
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings, baseDir string) {
	if settings.Home == nil {
		v := baseDir
		settings.Home = &v
	}
	if settings.AgentType == nil {
		v := "claude-cli"
		settings.AgentType = &v
	}
	if settings.AgentBin == nil {
		v := "claude"
		settings.AgentBin = &v
	}
	if settings.TimeoutSec == nil {
		v := 600 // 10 minutes; agent turns can be slow
		settings.TimeoutSec = &v
	}
	if settings.MaxRetries == nil {
		v := 3
		settings.MaxRetries = &v
	}
	if settings.RetryDelayMs == nil {
		v := 1000
		settings.RetryDelayMs = &v
	}
	if settings.LogErrors == nil {
		v := true
		settings.LogErrors = &v
	}
	if settings.StderrLevel == nil {
		v := "warn"
		settings.StderrLevel = &v
	}
}
