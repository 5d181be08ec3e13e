package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10, c.Quota.Grammar)
	assert.True(t, c.Matching.UseContext)
	assert.Equal(t, AnnotatorLocal, c.AnnotatorKind())
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeFile(t, "inkpilot.yaml", `
server:
  port: 9090
  name: Test
  timeout: 5s
data_dir: /tmp/inkpilot
annotator: llm
model:
  name: test-model
  api_key: secret
  timeout: 45s
quota:
  grammar: 3
  style: 2
matching:
  use_context: false
spellcheck:
  words: [inkpilot, zorblax]
`)

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "Test", c.Server.Name)
	assert.Equal(t, 5*time.Second, c.Server.Timeout)
	assert.Equal(t, "/tmp/inkpilot", c.DataDir)
	assert.Equal(t, AnnotatorLLM, c.AnnotatorKind())
	assert.Equal(t, "test-model", c.Model.Name)
	assert.Equal(t, 45*time.Second, c.Model.Timeout)
	assert.Equal(t, 3, c.Quota.Grammar)
	assert.Equal(t, 2, c.Quota.Style)
	assert.False(t, c.Matching.UseContext)
	assert.Equal(t, []string{"inkpilot", "zorblax"}, c.Spellcheck.Words)

	// Unset values keep their defaults
	assert.Equal(t, 0.2, c.Model.Temperature)
	assert.Equal(t, 3, c.Model.MaxAttempts)
}

func TestLoadFromFileTOML(t *testing.T) {
	path := writeFile(t, "inkpilot.toml", `
data_dir = "/srv/inkpilot"
annotator = "local"

[server]
port = 7070

[model]
temperature = 0.5
timeout = "1m"

[quota]
grammar = 20
style = 5
`)

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, c.Server.Port)
	assert.Equal(t, "InkPilot", c.Server.Name)
	assert.Equal(t, "/srv/inkpilot", c.DataDir)
	assert.Equal(t, AnnotatorLocal, c.Annotator)
	assert.Equal(t, 0.5, c.Model.Temperature)
	assert.Equal(t, time.Minute, c.Model.Timeout)
	assert.Equal(t, 20, c.Quota.Grammar)
	assert.Equal(t, 5, c.Quota.Style)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(writeFile(t, "config.json", `{}`))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "bad.yaml", "server: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "bad.toml", "[server\nport = 1"))
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "port", modify: func(c *Config) { c.Server.Port = 0 }},
		{name: "name", modify: func(c *Config) { c.Server.Name = "" }},
		{name: "data dir", modify: func(c *Config) { c.DataDir = "" }},
		{name: "annotator", modify: func(c *Config) { c.Annotator = "remote" }},
		{name: "llm without model", modify: func(c *Config) { c.Annotator = AnnotatorLLM; c.Model.Name = "" }},
		{name: "temperature", modify: func(c *Config) { c.Model.Temperature = 1.5 }},
		{name: "attempts", modify: func(c *Config) { c.Model.MaxAttempts = 0 }},
		{name: "quota", modify: func(c *Config) { c.Quota.Style = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INKPILOT_PORT", "9191")
	t.Setenv("INKPILOT_DATA_DIR", "/var/lib/inkpilot")
	t.Setenv("INKPILOT_MODEL", "env-model")
	t.Setenv("INKPILOT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INKPILOT_STYLE_LIMIT", "4")
	t.Setenv("INKPILOT_MODEL_TIMEOUT", "10s")
	t.Setenv("INKPILOT_USE_CONTEXT", "false")

	c := DefaultConfig()
	require.NoError(t, c.ApplyEnv())
	assert.Equal(t, 9191, c.Server.Port)
	assert.Equal(t, "/var/lib/inkpilot", c.DataDir)
	assert.Equal(t, "env-model", c.Model.Name)
	assert.Equal(t, "sk-test", c.Model.APIKey)
	assert.Equal(t, 4, c.Quota.Style)
	assert.Equal(t, 10*time.Second, c.Model.Timeout)
	assert.False(t, c.Matching.UseContext)
	assert.Equal(t, AnnotatorLLM, c.AnnotatorKind())
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "INKPILOT_PORT", value: "eighty"},
		{key: "INKPILOT_GRAMMAR_LIMIT", value: "lots"},
		{key: "INKPILOT_MODEL_TIMEOUT", value: "soon"},
		{key: "INKPILOT_USE_CONTEXT", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := DefaultConfig().ApplyEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("INKPILOT_PORT", "")
	path := writeFile(t, "inkpilot.yml", "server:\n  port: 70000\n")
	_, err := Load(path)
	assert.Error(t, err)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "InkPilot", c.Server.Name)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "# comment\nINKPILOT_TEST_A=one\nINKPILOT_TEST_B = \"two\"\nnot a pair\n")
	t.Setenv("INKPILOT_TEST_A", "")
	t.Setenv("INKPILOT_TEST_B", "preset")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "one", os.Getenv("INKPILOT_TEST_A"))
	assert.Equal(t, "preset", os.Getenv("INKPILOT_TEST_B"))

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inkpilot.yaml")
	c := DefaultConfig()
	c.Server.Port = 6060
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6060, loaded.Server.Port)
	assert.Equal(t, c.Model.Timeout, loaded.Model.Timeout)
}
