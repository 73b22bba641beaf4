package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	SourceLocal = "local"
	SourceS3    = "s3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	Loader        LoaderConfig
	Store         StoreConfig
	Schema        SchemaConfig
	Session       SessionConfig
	AI            AIConfig
	ObjectStore   ObjectStoreConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type LoaderConfig struct {
	Source      string
	DataDir     string
	TablePrefix string
	Strict      bool
}

type StoreConfig struct {
	Driver      string
	DSN         string
	PingTimeout time.Duration
}

type SchemaConfig struct {
	Path  string
	Title string
}

type SessionConfig struct {
	TranscriptPath string
	HistoryFile    string
}

type AIConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type ObjectStoreConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Prefix          string
}

type ObservabilityConfig struct {
	LogLevel        slog.Level
	LogJSON         bool
	MetricsTextfile string
}

// LoadDotEnv reads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("NLSQL_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid NLSQL_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "NLSQL_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "NLSQL_SOURCE", &cfg.Loader.Source) },
		func() error { return applyString(lookup, "NLSQL_DATA_DIR", &cfg.Loader.DataDir) },
		func() error { return applyRawString(lookup, "NLSQL_TABLE_PREFIX", &cfg.Loader.TablePrefix) },
		func() error { return applyBool(lookup, "NLSQL_LOADER_STRICT", &cfg.Loader.Strict) },
		func() error { return applyString(lookup, "NLSQL_STORE_DRIVER", &cfg.Store.Driver) },
		func() error { return applyString(lookup, "NLSQL_STORE_DSN", &cfg.Store.DSN) },
		func() error { return applyDuration(lookup, "NLSQL_STORE_PING_TIMEOUT", &cfg.Store.PingTimeout) },
		func() error { return applyString(lookup, "NLSQL_SCHEMA_PATH", &cfg.Schema.Path) },
		func() error { return applyString(lookup, "NLSQL_SCHEMA_TITLE", &cfg.Schema.Title) },
		func() error { return applyString(lookup, "NLSQL_TRANSCRIPT_PATH", &cfg.Session.TranscriptPath) },
		func() error { return applyString(lookup, "NLSQL_HISTORY_FILE", &cfg.Session.HistoryFile) },
		func() error { return applyString(lookup, "NLSQL_AI_PROVIDER", &cfg.AI.Provider) },
		func() error { return applyString(lookup, "NLSQL_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "NLSQL_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "NLSQL_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "NLSQL_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyString(lookup, "NLSQL_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "NLSQL_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "NLSQL_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error { return applyString(lookup, "NLSQL_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID) },
		func() error {
			return applyString(lookup, "NLSQL_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "NLSQL_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "NLSQL_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error { return applyBool(lookup, "NLSQL_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "NLSQL_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyString(lookup, "NLSQL_METRICS_TEXTFILE", &cfg.Observability.MetricsTextfile) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	cfg.Loader.Source = strings.ToLower(cfg.Loader.Source)
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	applyProviderDefaults(lookup, &cfg.AI)
	if err := applyString(lookup, "NLSQL_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	switch cfg.Loader.Source {
	case SourceLocal, SourceS3:
	default:
		return Config{}, fmt.Errorf("invalid NLSQL_SOURCE: %q", cfg.Loader.Source)
	}
	switch cfg.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return Config{}, fmt.Errorf("invalid NLSQL_AI_PROVIDER: %q", cfg.AI.Provider)
	}
	if cfg.Store.DSN == "" {
		return Config{}, fmt.Errorf("store dsn is required")
	}
	if cfg.Schema.Path == "" {
		return Config{}, fmt.Errorf("schema path is required")
	}
	if cfg.Session.TranscriptPath == "" {
		return Config{}, fmt.Errorf("transcript path is required")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "nlsql"},
		Loader: LoaderConfig{
			Source:      SourceLocal,
			DataDir:     "./data/simpsons_raw",
			TablePrefix: "simpsons_",
			Strict:      false,
		},
		Store: StoreConfig{
			Driver:      "sqlite",
			DSN:         "simpsons.db",
			PingTimeout: 5 * time.Second,
		},
		Schema: SchemaConfig{
			Path:  "database_schema.txt",
			Title: "SIMPSONS DATABASE SCHEMA",
		},
		Session: SessionConfig{
			TranscriptPath: "assignment_results.txt",
		},
		AI: AIConfig{
			Provider:    ProviderGemini,
			Temperature: 0,
			Timeout:     30 * time.Second,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:        "localhost:9000",
			Region:          "us-east-1",
			Bucket:          "nlsql",
			AccessKeyID:     "minio",
			SecretAccessKey: "miniostorage",
			UseSSL:          false,
			Prefix:          "",
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelInfo,
			LogJSON:  false,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogJSON = true
		cfg.ObjectStore.UseSSL = true
	}

	return cfg
}

// applyProviderDefaults fills the base URL, model and credential left empty
// for the chosen provider. NLSQL_AI_API_KEY is applied afterwards and wins.
func applyProviderDefaults(lookup LookupFunc, ai *AIConfig) {
	switch ai.Provider {
	case ProviderGemini:
		if ai.BaseURL == "" {
			ai.BaseURL = "https://generativelanguage.googleapis.com"
		}
		if ai.Model == "" {
			ai.Model = "gemini-2.5-flash"
		}
		_ = applyString(lookup, "GOOGLE_API_KEY", &ai.APIKey)
	case ProviderOpenAI:
		if ai.BaseURL == "" {
			ai.BaseURL = "https://api.openai.com"
		}
		if ai.Model == "" {
			ai.Model = "gpt-5"
		}
		_ = applyString(lookup, "OPENAI_API_KEY", &ai.APIKey)
	}
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

// applyRawString keeps surrounding whitespace; an empty value is meaningful.
func applyRawString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = raw
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
