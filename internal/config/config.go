package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/pkg/adapters/llm"
	"github.com/aretw0/aacflow/pkg/persistence/middleware"
	"github.com/aretw0/aacflow/pkg/workflow"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AACFLOW_STORE_ADDR.
const EnvPrefix = "AACFLOW"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "aacflow.yaml"

// Store drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the root of the application configuration.
type Config struct {
	Store     StoreConfig    `mapstructure:"store" yaml:"store"`
	Generator llm.Config     `mapstructure:"generator" yaml:"generator"`
	Verifier  llm.Config     `mapstructure:"verifier" yaml:"verifier"`
	Workflow  WorkflowConfig `mapstructure:"workflow" yaml:"workflow"`
	HTTP      HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
}

// StoreConfig selects and configures the phrase store.
type StoreConfig struct {
	Driver    string        `mapstructure:"driver" yaml:"driver"`
	Addr      string        `mapstructure:"addr" yaml:"addr"`
	Password  string        `mapstructure:"password" yaml:"password"`
	DB        int           `mapstructure:"db" yaml:"db"`
	KeyPrefix string        `mapstructure:"key_prefix" yaml:"key_prefix"`
	Window    int           `mapstructure:"window" yaml:"window"`
	Cap       int64         `mapstructure:"cap" yaml:"cap"` // list length kept by record, 0 keeps everything
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// EncryptionKey is a base64 AES-256 key; when set tokens are sealed at rest.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
	MaskPatterns  []string `mapstructure:"mask_patterns" yaml:"mask_patterns"` // tokens matching are stored as ***
}

// Encryption decodes the configured keys. It returns nil when encryption is off.
func (c StoreConfig) Encryption() (*middleware.EncryptionConfig, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	active, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range c.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	return enc, nil
}

// WorkflowConfig bounds and localises a run.
type WorkflowConfig struct {
	MaxAttempts int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	MaxSteps    int    `mapstructure:"max_steps" yaml:"max_steps"`
	Language    string `mapstructure:"language" yaml:"language"`

	// SerializeRuns allows one run per user at a time, across replicas when the store is redis.
	SerializeRuns bool          `mapstructure:"serialize_runs" yaml:"serialize_runs"`
	LockTTL       time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`
	Format   string `mapstructure:"format" yaml:"format"`
	Payloads bool   `mapstructure:"payloads" yaml:"payloads"` // log provider prompts and replies
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"config":         "",
	"store":          "store.driver",
	"redis-addr":     "store.addr",
	"redis-password": "store.password",
	"redis-db":       "store.db",
	"key-prefix":     "store.key_prefix",
	"window":         "store.window",
	"max-attempts":   "workflow.max_attempts",
	"max-steps":      "workflow.max_steps",
	"language":       "workflow.language",
	"http-addr":      "http.addr",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// Load reads defaults, then the config file at path (DefaultFile when empty;
// a missing file is not an error), then AACFLOW_* environment variables, then
// any flags in fs that were set explicitly.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if explicit || !(errors.As(err, &pathErr) || os.IsNotExist(err)) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if key == "" {
				continue
			}
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for the commands that run the workflow.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverRedis:
		if c.Store.Addr == "" {
			errs = append(errs, errors.New("store.addr is required for the redis driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if _, err := c.Store.Encryption(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Generator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generator: %w", err))
	}
	if err := c.Verifier.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("verifier: %w", err))
	}
	if c.Workflow.MaxAttempts < 1 {
		errs = append(errs, errors.New("workflow.max_attempts must be at least 1"))
	} else if need := workflow.MaxInvocations(c.Workflow.MaxAttempts); c.Workflow.MaxSteps > 0 && c.Workflow.MaxSteps < need {
		errs = append(errs, fmt.Errorf("workflow.max_steps must be at least %d for max_attempts %d", need, c.Workflow.MaxAttempts))
	}
	if c.Workflow.LockTTL < 0 {
		errs = append(errs, errors.New("workflow.lock_ttl must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
