package config

import "time"

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (YAML, ENV, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Core settings
	Home() string           // Base directory for kaiwa state (KAIWA_HOME)
	AgentType() string      // Agent backend: claude-cli, openai, mock (KAIWA_AGENT_TYPE)
	AgentBin() string       // Agent binary path for CLI backends (KAIWA_AGENT_BIN)
	TimeoutSec() int        // Agent execution timeout in seconds (KAIWA_TIMEOUT_SEC)
	Timeout() time.Duration // Agent execution timeout as Duration

	// Fault handling
	MaxRetries() int           // Recovery attempts per fault (KAIWA_MAX_RETRIES)
	RetryDelay() time.Duration // Fixed delay between recovery attempts
	LogErrors() bool           // Log every handled fault (KAIWA_LOG_ERRORS)

	// Logging
	StderrLevel() string // Stderr log level (KAIWA_STDERR_LEVEL)

	// Metadata
	ConfigSource() string // Source of configuration: "yaml", "env", or "default"
	SettingPath() string  // Path to setting.yaml if loaded from file
}

// AppConfig is the concrete implementation of Config interface
type AppConfig struct {
	home       string
	agentType  string
	agentBin   string
	timeoutSec int

	maxRetries   int
	retryDelayMs int
	logErrors    bool

	stderrLevel string

	configSource string
	settingPath  string
}

// NewAppConfig creates an AppConfig from resolved values
func NewAppConfig(
	home string,
	agentType string,
	agentBin string,
	timeoutSec int,
	maxRetries int,
	retryDelayMs int,
	logErrors bool,
	stderrLevel string,
	configSource string,
	settingPath string,
) *AppConfig {
	return &AppConfig{
		home:         home,
		agentType:    agentType,
		agentBin:     agentBin,
		timeoutSec:   timeoutSec,
		maxRetries:   maxRetries,
		retryDelayMs: retryDelayMs,
		logErrors:    logErrors,
		stderrLevel:  stderrLevel,
		configSource: configSource,
		settingPath:  settingPath,
	}
}

// Home returns the base directory for kaiwa state
func (c *AppConfig) Home() string {
	return c.home
}

// AgentType returns the agent backend identifier
func (c *AppConfig) AgentType() string {
	return c.agentType
}

// AgentBin returns the agent binary path
func (c *AppConfig) AgentBin() string {
	return c.agentBin
}

// TimeoutSec returns the timeout in seconds
func (c *AppConfig) TimeoutSec() int {
	return c.timeoutSec
}

// Timeout returns the timeout as a Duration
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.timeoutSec) * time.Second
}

// MaxRetries returns the recovery attempts per fault
func (c *AppConfig) MaxRetries() int {
	return c.maxRetries
}

// RetryDelay returns the fixed delay between recovery attempts
func (c *AppConfig) RetryDelay() time.Duration {
	return time.Duration(c.retryDelayMs) * time.Millisecond
}

// LogErrors returns whether every handled fault is logged
func (c *AppConfig) LogErrors() bool {
	return c.logErrors
}

// StderrLevel returns the stderr log level
func (c *AppConfig) StderrLevel() string {
	return c.stderrLevel
}

// ConfigSource returns where the configuration came from
func (c *AppConfig) ConfigSource() string {
	return c.configSource
}

// SettingPath returns the path to setting.yaml if loaded from file
func (c *AppConfig) SettingPath() string {
	return c.settingPath
}
