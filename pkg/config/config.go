// Package config provides configuration loading for the InkPilot server.
// Values come from defaults, then an optional YAML or TOML file, then the
// environment (including a .env file), then command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Code-Monger/InkPilot/pkg/annotate"
	"github.com/Code-Monger/InkPilot/pkg/quota"
)

// Annotator choices.
const (
	AnnotatorAuto  = "auto"
	AnnotatorLLM   = "llm"
	AnnotatorLocal = "local"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	// DataDir holds the stats, usage and project files
	DataDir string `yaml:"data_dir" toml:"data_dir"`
	// Annotator selects the finding source: auto, llm or local
	Annotator  string           `yaml:"annotator" toml:"annotator"`
	Model      ModelConfig      `yaml:"model" toml:"model"`
	Quota      quota.Limits     `yaml:"quota" toml:"quota"`
	Matching   MatchingConfig   `yaml:"matching" toml:"matching"`
	Spellcheck SpellcheckConfig `yaml:"spellcheck" toml:"spellcheck"`
}

// ServerConfig configures the MCP server
type ServerConfig struct {
	Port         int           `yaml:"port" toml:"port"`
	BaseURL      string        `yaml:"base_url" toml:"base_url"`
	Name         string        `yaml:"name" toml:"name"`
	Version      string        `yaml:"version" toml:"version"`
	Instructions string        `yaml:"instructions" toml:"instructions"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout"`
}

// ModelConfig configures the language model annotator
type ModelConfig struct {
	// Endpoint is an OpenAI compatible API root
	Endpoint string `yaml:"endpoint" toml:"endpoint"`
	APIKey   string `yaml:"api_key" toml:"api_key"`
	// Name is the model to request (e.g., "gpt-4o-mini")
	Name string `yaml:"name" toml:"name"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64       `yaml:"temperature" toml:"temperature"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" toml:"max_attempts"`
}

// MatchingConfig tunes how claimed text is located
type MatchingConfig struct {
	// UseContext anchors repeated phrases on the finding's context
	UseContext bool `yaml:"use_context" toml:"use_context"`
}

// SpellcheckConfig configures the offline annotator
type SpellcheckConfig struct {
	// Words are accepted in addition to the built-in dictionary
	Words []string `yaml:"words" toml:"words"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			Name:    "InkPilot",
			Version: "1.0.0",
			Instructions: "InkPilot checks prose for grammar and style problems. Open a session with the editor tool, " +
				"run the analyze tool, then read the highlights and apply suggestions by finding ID.",
			Timeout: 30 * time.Second,
		},
		DataDir:   defaultDataDir(),
		Annotator: AnnotatorAuto,
		Model: ModelConfig{
			Endpoint:    annotate.DefaultBaseURL,
			Name:        "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     2 * time.Minute,
			MaxAttempts: 3,
		},
		Quota: quota.DefaultLimits(),
		Matching: MatchingConfig{
			UseContext: true,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inkpilot"
	}
	return filepath.Join(home, ".inkpilot")
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	switch c.Annotator {
	case AnnotatorAuto, AnnotatorLocal:
	case AnnotatorLLM:
		if c.Model.Name == "" {
			return fmt.Errorf("model.name is required for the llm annotator")
		}
	default:
		return fmt.Errorf("annotator must be one of auto, llm or local, got %q", c.Annotator)
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.MaxAttempts < 1 {
		return fmt.Errorf("model.max_attempts must be at least 1")
	}
	if c.Quota.Grammar < 0 || c.Quota.Style < 0 {
		return fmt.Errorf("quota limits must not be negative")
	}
	return nil
}

// AnnotatorKind resolves auto to llm when an API key is configured and to
// local otherwise.
func (c *Config) AnnotatorKind() string {
	if c.Annotator != AnnotatorAuto {
		return c.Annotator
	}
	if c.Model.APIKey != "" {
		return AnnotatorLLM
	}
	return AnnotatorLocal
}

// LoadFromFile loads configuration over the defaults from a YAML (.yaml,
// .yml) or TOML (.toml) file
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads path when it is not empty, applies the environment and
// validates the result.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		var err error
		config, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
