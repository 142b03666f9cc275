package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port         string       `mapstructure:"port"`
	Provider     string       `mapstructure:"provider"`
	AIEndpoint   string       `mapstructure:"ai_endpoint"`
	Model        string       `mapstructure:"model"`
	SystemPrompt string       `mapstructure:"system_prompt"`
	OpenAIAPIKey string       `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string       `mapstructure:"GEMINI_API_KEY"`
	LogLevel     string       `mapstructure:"log_level"`
	Agent        AgentConfig  `mapstructure:"agent"`
	Widget       WidgetConfig `mapstructure:"widget"`
}

// AgentConfig configures the server-side agents.
type AgentConfig struct {
	// MaxHistory is the number of past turns kept per agent; 0 keeps all.
	MaxHistory int `mapstructure:"max_history"`
}

// WidgetConfig configures the chat widget hosts (terminal and one-shot).
type WidgetConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	AgentName string        `mapstructure:"agent_name"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogFile   string        `mapstructure:"log_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("ai_endpoint", "https://api.openai.com/v1")
	v.SetDefault("model", "gpt-4")
	v.SetDefault("system_prompt", "You are a helpful assistant.")
	v.SetDefault("log_level", "info")
	v.SetDefault("agent.max_history", 20)
	v.SetDefault("widget.server_url", "http://localhost:8080")
	v.SetDefault("widget.agent_name", "")
	v.SetDefault("widget.timeout", 0)
	v.SetDefault("widget.log_file", "chatwidget.log")
}

// LoadConfig reads configPath when it is not empty, then layers environment
// variables on top. A missing file is an error only when a path was given.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set up Viper to read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Agent.MaxHistory < 0 {
		return fmt.Errorf("agent.max_history must not be negative")
	}
	if c.Widget.Timeout < 0 {
		return fmt.Errorf("widget.timeout must not be negative")
	}
	return nil
}
