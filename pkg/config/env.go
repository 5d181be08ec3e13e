package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envFileOnce sync.Once

// ApplyEnv overrides the configuration from INKPILOT_* variables and
// OPENAI_API_KEY. A .env file in the working directory is read once and
// never overrides variables that are already set.
func (c *Config) ApplyEnv() error {
	envFileOnce.Do(func() {
		loadEnvFile(".env")
	})

	c.Server.BaseURL = getEnv("INKPILOT_BASE_URL", c.Server.BaseURL)
	c.DataDir = getEnv("INKPILOT_DATA_DIR", c.DataDir)
	c.Annotator = getEnv("INKPILOT_ANNOTATOR", c.Annotator)
	c.Model.Endpoint = getEnv("INKPILOT_MODEL_ENDPOINT", c.Model.Endpoint)
	c.Model.Name = getEnv("INKPILOT_MODEL", c.Model.Name)
	c.Model.APIKey = getEnv("INKPILOT_API_KEY", getEnv("OPENAI_API_KEY", c.Model.APIKey))

	var err error
	if c.Server.Port, err = getEnvInt("INKPILOT_PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Quota.Grammar, err = getEnvInt("INKPILOT_GRAMMAR_LIMIT", c.Quota.Grammar); err != nil {
		return err
	}
	if c.Quota.Style, err = getEnvInt("INKPILOT_STYLE_LIMIT", c.Quota.Style); err != nil {
		return err
	}
	if c.Model.Timeout, err = getEnvDuration("INKPILOT_MODEL_TIMEOUT", c.Model.Timeout); err != nil {
		return err
	}
	if value := os.Getenv("INKPILOT_USE_CONTEXT"); value != "" {
		useContext, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("INKPILOT_USE_CONTEXT: %w", err)
		}
		c.Matching.UseContext = useContext
	}
	return nil
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		// Split by first equals sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Set environment variable if not already set
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
