package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/aacflow/pkg/adapters/llm"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "phrases:", cfg.Store.KeyPrefix)
	assert.Equal(t, 10, cfg.Store.Window)
	assert.Equal(t, llm.KindOpenAI, cfg.Generator.Kind)
	assert.Equal(t, llm.KindGemini, cfg.Verifier.Kind)
	assert.Equal(t, 3, cfg.Workflow.MaxAttempts)
	assert.Equal(t, 64, cfg.Workflow.MaxSteps)
	assert.Equal(t, "Korean", cfg.Workflow.Language)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: memory
  window: 5
generator:
  kind: scripted
  replies: ["{\"intent\":\"OTHER\"}", "hello"]
workflow:
  max_attempts: 2
  language: English
`), 0o644))

	t.Setenv("AACFLOW_VERIFIER_API_KEY", "from-env")
	t.Setenv("AACFLOW_WORKFLOW_LANGUAGE", "Japanese")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("max-attempts", 3, "")
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--log-level=debug"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Store.Window)
	assert.Equal(t, []string{`{"intent":"OTHER"}`, "hello"}, cfg.Generator.Replies)
	assert.Equal(t, "from-env", cfg.Verifier.APIKey)
	assert.Equal(t, "Japanese", cfg.Workflow.Language, "env overrides the file")
	assert.Equal(t, 2, cfg.Workflow.MaxAttempts, "an unset flag does not override the file")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:     StoreConfig{Driver: DriverMemory},
			Generator: llm.Config{Kind: llm.KindScripted, Replies: []string{"x"}},
			Verifier:  llm.Config{Kind: llm.KindScripted, Replies: []string{"OK"}},
			Workflow:  WorkflowConfig{MaxAttempts: 1},
			Log:       LogConfig{Level: "info"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "etcd" }},
		{"redis without addr", func(c *Config) { c.Store.Driver = DriverRedis }},
		{"bad generator", func(c *Config) { c.Generator = llm.Config{Kind: llm.KindOpenAI} }},
		{"bad verifier", func(c *Config) { c.Verifier = llm.Config{Kind: "?"} }},
		{"zero attempts", func(c *Config) { c.Workflow.MaxAttempts = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"encryption key not base64", func(c *Config) { c.Store.EncryptionKey = "%%%" }},
		{"encryption key too short", func(c *Config) { c.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short")) }},
		{"bad fallback key", func(c *Config) {
			c.Store.EncryptionKey = testKey
			c.Store.FallbackKeys = []string{"%%%"}
		}},
		{"max steps below attempt budget", func(c *Config) {
			c.Workflow.MaxAttempts = 31
			c.Workflow.MaxSteps = 64
		}},
		{"negative lock ttl", func(c *Config) { c.Workflow.LockTTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

var testKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestStoreConfig_Encryption(t *testing.T) {
	enc, err := StoreConfig{}.Encryption()
	require.NoError(t, err)
	assert.Nil(t, enc, "no key means no encryption")

	enc, err = StoreConfig{EncryptionKey: testKey, FallbackKeys: []string{testKey}}.Encryption()
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Len(t, enc.ActiveKey, 32)
	assert.Len(t, enc.FallbackKeys, 1)
}

func TestLoad_StoreProtectionFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AACFLOW_STORE_ENCRYPTION_KEY", testKey)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, testKey, cfg.Store.EncryptionKey)
	assert.False(t, cfg.Workflow.SerializeRuns, "run locking is opt-in")
	assert.Equal(t, 2*time.Minute, cfg.Workflow.LockTTL)
}
