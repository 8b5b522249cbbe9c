// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Profile ProfileConfig `mapstructure:"profile" yaml:"profile"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the terminal color per log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the driven Chrome instance. When RemoteURL
// is set the agent attaches to a running browser over CDP (typically the
// user's real profile started with --remote-debugging-port); otherwise it
// launches its own instance.
type BrowserConfig struct {
	RemoteURL         string        `mapstructure:"remote_url" yaml:"remote_url"`
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostNavWait       time.Duration `mapstructure:"post_nav_wait" yaml:"post_nav_wait"`
	KeyDelayMs        int           `mapstructure:"key_delay_ms" yaml:"key_delay_ms"`
	KeyDelayJitterMs  int           `mapstructure:"key_delay_jitter_ms" yaml:"key_delay_jitter_ms"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// AgentConfig holds settings for the decision loop.
type AgentConfig struct {
	MaxSteps      int             `mapstructure:"max_steps" yaml:"max_steps"`
	ConfirmSubmit bool            `mapstructure:"confirm_submit" yaml:"confirm_submit"`
	LLM           LLMRouterConfig `mapstructure:"llm" yaml:"llm"`
}

// LLMProvider identifies a model backend.
type LLMProvider string

const ProviderGemini LLMProvider = "gemini"

// LLMRouterConfig configures the model routing logic.
type LLMRouterConfig struct {
	DefaultFastModel     string                    `mapstructure:"default_fast_model" yaml:"default_fast_model"`
	DefaultPowerfulModel string                    `mapstructure:"default_powerful_model" yaml:"default_powerful_model"`
	RequestsPerMinute    float64                   `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Models               map[string]LLMModelConfig `mapstructure:"models" yaml:"models"`
}

// LLMModelConfig defines the configuration for a single model.
type LLMModelConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ProfileConfig points at the applicant profile file.
type ProfileConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ExtractConfig configures where extraction sessions land.
type ExtractConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "jobagent")
	v.SetDefault("logger.log_file", "logs/jobagent.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.navigation_timeout", "45s")
	v.SetDefault("browser.post_nav_wait", "2s")
	v.SetDefault("browser.key_delay_ms", 40)
	v.SetDefault("browser.key_delay_jitter_ms", 60)

	// -- Agent --
	v.SetDefault("agent.max_steps", 25)
	v.SetDefault("agent.confirm_submit", false)
	v.SetDefault("agent.llm.default_fast_model", "flash")
	v.SetDefault("agent.llm.default_powerful_model", "pro")
	v.SetDefault("agent.llm.requests_per_minute", 12)
	v.SetDefault("agent.llm.models.flash.provider", "gemini")
	v.SetDefault("agent.llm.models.flash.model", "gemini-2.5-flash")
	v.SetDefault("agent.llm.models.flash.api_timeout", "60s")
	v.SetDefault("agent.llm.models.pro.provider", "gemini")
	v.SetDefault("agent.llm.models.pro.model", "gemini-2.5-pro")
	v.SetDefault("agent.llm.models.pro.api_timeout", "120s")

	// -- Profile / Extract --
	v.SetDefault("profile.path", "profile.yaml")
	v.SetDefault("extract.dir", "logs/extractions")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
// API keys are bound to environment variables rather than the config file.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	for name := range v.GetStringMap("agent.llm.models") {
		v.BindEnv("agent.llm.models."+name+".api_key", "JOBAGENT_GEMINI_API_KEY", "GEMINI_API_KEY")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves ~ in all file path settings.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Logger.LogFile, &c.Profile.Path, &c.Extract.Dir} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be a positive integer")
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser window dimensions must be positive")
	}
	if c.Agent.LLM.RequestsPerMinute <= 0 {
		return fmt.Errorf("agent.llm.requests_per_minute must be positive")
	}
	llm := c.Agent.LLM
	if len(llm.Models) == 0 {
		return fmt.Errorf("at least one model must be configured under agent.llm.models")
	}
	if _, ok := llm.Models[llm.DefaultFastModel]; !ok {
		return fmt.Errorf("default fast model %q not found under agent.llm.models", llm.DefaultFastModel)
	}
	if _, ok := llm.Models[llm.DefaultPowerfulModel]; !ok {
		return fmt.Errorf("default powerful model %q not found under agent.llm.models", llm.DefaultPowerfulModel)
	}
	return nil
}
