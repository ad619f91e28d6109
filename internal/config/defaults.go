package config

import (
	"time"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/internal/runtime"
	"github.com/aretw0/aacflow/pkg/adapters/llm"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/session"
	"github.com/aretw0/aacflow/pkg/workflow"
	"github.com/spf13/viper"
)

// SetDefaults registers the default of every key. Keys without a default
// are invisible to environment overrides, so every field is listed.
func SetDefaults(v *viper.Viper) {
	// Store
	v.SetDefault("store.driver", DriverRedis)
	v.SetDefault("store.addr", "localhost:6379")
	v.SetDefault("store.password", "")
	v.SetDefault("store.db", 0)
	v.SetDefault("store.key_prefix", workflow.DefaultKeyPrefix)
	v.SetDefault("store.window", workflow.DefaultWindow)
	v.SetDefault("store.cap", 100)
	v.SetDefault("store.ttl", time.Duration(0))
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.mask_patterns", []string{})

	// Providers
	setProviderDefaults(v, "generator", llm.KindOpenAI, "gpt-4.1")
	setProviderDefaults(v, "verifier", llm.KindGemini, "gemini-2.5-flash")

	// Workflow
	v.SetDefault("workflow.max_attempts", domain.DefaultMaxAttempts)
	v.SetDefault("workflow.max_steps", runtime.DefaultMaxSteps)
	v.SetDefault("workflow.language", workflow.DefaultLanguage)
	v.SetDefault("workflow.serialize_runs", false)
	v.SetDefault("workflow.lock_ttl", session.DefaultLockTTL)

	// HTTP
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatText)
	v.SetDefault("log.payloads", false)
}

func setProviderDefaults(v *viper.Viper, prefix, kind, model string) {
	v.SetDefault(prefix+".kind", kind)
	v.SetDefault(prefix+".model", model)
	v.SetDefault(prefix+".api_key", "")
	v.SetDefault(prefix+".base_url", "")
	v.SetDefault(prefix+".max_tokens", 0)
	v.SetDefault(prefix+".rate_limit", 0.0)
	v.SetDefault(prefix+".burst", 1)
	v.SetDefault(prefix+".replies", []string{})
}
