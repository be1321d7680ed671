// Package config loads intake settings from defaults, an optional YAML file,
// a .env file and INTAKE_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/intake/pkg/validator/interrupt"
	"github.com/aretw0/intake/pkg/validator/llm"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "INTAKE_"

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "intake.yaml"

// Store types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Transcript TranscriptConfig `koanf:"transcript"`
	LLM        LLMConfig        `koanf:"llm"`
	Vehicle    VehicleConfig    `koanf:"vehicle"`
	Interrupt  InterruptConfig  `koanf:"interrupt"`
	PII        PIIConfig        `koanf:"pii"`
	Flow       FlowConfig       `koanf:"flow"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

type ServerConfig struct {
	Port         int `koanf:"port"`
	MaxInputSize int `koanf:"max_input_size"`
}

type StoreConfig struct {
	Type          string      `koanf:"type"` // memory, file, redis
	Path          string      `koanf:"path"` // directory of the file store
	Redis         RedisConfig `koanf:"redis"`
	EncryptionKey string      `koanf:"encryption_key"` // hex, 32 bytes
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

type TranscriptConfig struct {
	SQLitePath string `koanf:"sqlite_path"` // empty disables transcripts
}

type LLMConfig struct {
	APIKey     string        `koanf:"api_key"` // empty selects the offline rules validator
	BaseURL    string        `koanf:"base_url"`
	Model      string        `koanf:"model"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
}

type VehicleConfig struct {
	Enabled   bool          `koanf:"enabled"`
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	CacheSize int           `koanf:"cache_size"`
	MaxYear   int           `koanf:"max_year"`
}

type InterruptConfig struct {
	QuotesURL string   `koanf:"quotes_url"` // set to "" for the canned response
	Keywords  []string `koanf:"keywords"`
}

// PIIConfig names the questions whose answers are masked in transcripts and
// session inspection. Sessions themselves keep the real values.
type PIIConfig struct {
	Patterns []string `koanf:"patterns"`
}

type FlowConfig struct {
	MaxAttempts int `koanf:"max_attempts"`
	// ValidatorTimeout bounds one answer's validation. Zero derives it from
	// the LLM retry budget.
	ValidatorTimeout time.Duration `koanf:"validator_timeout"`
	CatalogPath      string        `koanf:"catalog_path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"` // empty disables the standalone listener
}

type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Defaults holds the value of every known key.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":            8080,
		"server.max_input_size":  4096,
		"store.type":             StoreMemory,
		"store.path":             ".intake/sessions",
		"store.redis.addr":       "localhost:6379",
		"store.redis.password":   "",
		"store.redis.db":         0,
		"store.redis.prefix":     "intake:",
		"store.redis.ttl":        "24h",
		"store.encryption_key":   "",
		"transcript.sqlite_path": "",
		"llm.api_key":            "",
		"llm.base_url":           "",
		"llm.model":              "gpt-4",
		"llm.timeout":            "30s",
		"llm.max_retries":        3,
		"vehicle.enabled":        true,
		"vehicle.base_url":       "https://vpic.nhtsa.dot.gov",
		"vehicle.timeout":        "10s",
		"vehicle.cache_size":     256,
		"vehicle.max_year":       2026,
		"interrupt.quotes_url":   interrupt.DefaultQuotesURL,
		"interrupt.keywords":     []string{},
		"pii.patterns":           []string{},
		"flow.max_attempts":      3,
		"flow.validator_timeout": "0s",
		"flow.catalog_path":      "",
		"log.level":              "info",
		"metrics.addr":           "",
		"telemetry.enabled":      false,
	}
}

// Load reads the configuration. An empty path reads DefaultFile when present;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	filePath := path
	if filePath == "" {
		filePath = DefaultFile
	}
	if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
		if path != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config %s: %w", filePath, err)
		}
	}

	defaults := Defaults()
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey(defaults)), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for key, val := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, val); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.LLM.APIKey = substituteEnvVars(cfg.LLM.APIKey)
	cfg.Store.EncryptionKey = substituteEnvVars(cfg.Store.EncryptionKey)
	cfg.Store.Redis.Password = substituteEnvVars(cfg.Store.Redis.Password)
	cfg.PII.Patterns = splitList(cfg.PII.Patterns)
	cfg.Interrupt.Keywords = splitList(cfg.Interrupt.Keywords)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps INTAKE_LLM_API_KEY to llm.api_key. Known keys are matched with
// their underscores intact; anything else uses "__" as the level separator.
func envKey(defaults map[string]any) func(string) string {
	known := make(map[string]string, len(defaults))
	for key := range defaults {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}
	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if key, ok := known[name]; ok {
			return key
		}
		return strings.ReplaceAll(name, "__", ".")
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		problems = append(problems, fmt.Sprintf("store.type %q is not one of memory, file, redis", c.Store.Type))
	}
	if c.Store.Type == StoreFile && c.Store.Path == "" {
		problems = append(problems, "store.path is required for the file store")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Flow.MaxAttempts < 1 {
		problems = append(problems, "flow.max_attempts must be at least 1")
	}
	if c.LLM.MaxRetries < 1 {
		problems = append(problems, "llm.max_retries must be at least 1")
	}
	if c.Vehicle.CacheSize < 1 {
		problems = append(problems, "vehicle.cache_size must be at least 1")
	}
	if c.Flow.ValidatorTimeout < 0 {
		problems = append(problems, "flow.validator_timeout must not be negative")
	}
	if budget := c.llmBudget(); c.LLM.APIKey != "" && c.Flow.ValidatorTimeout > 0 && c.Flow.ValidatorTimeout < budget {
		problems = append(problems, fmt.Sprintf(
			"flow.validator_timeout %s is shorter than the LLM retry budget %s (llm.timeout x llm.max_retries plus backoff)",
			c.Flow.ValidatorTimeout, budget))
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// ValidatorTimeout is flow.validator_timeout, or when unset the longest any
// validator may need: the LLM with all its retries, or one registry lookup.
func (c *Config) ValidatorTimeout() time.Duration {
	if c.Flow.ValidatorTimeout > 0 {
		return c.Flow.ValidatorTimeout
	}
	return max(c.llmBudget(), c.Vehicle.Timeout)
}

func (c *Config) llmBudget() time.Duration {
	return llm.RetryBudget(c.LLM.Timeout, c.LLM.MaxRetries, llm.DefaultInitialBackoff)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars expands ${VAR} references, so secrets can stay out of the file.
func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// splitList accepts both YAML lists and a single comma separated value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
