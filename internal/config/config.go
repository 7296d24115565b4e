package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLMProvider identifies a text-generation backend.
type LLMProvider string

const (
	ProviderOllama    LLMProvider = "ollama"
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderBedrock   LLMProvider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Primary generation path
	LLMProvider     LLMProvider
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	BedrockModelID  string

	// Secondary generation path (always-available fallback model)
	FallbackProvider LLMProvider
	FallbackModel    string

	// Hybrid fallback controller
	HybridEnabled     bool
	PrimaryTimeout    time.Duration
	MaxRetries        int
	PrimaryPreference []string

	// Routing
	AdvancedRoutingEnabled   bool
	RoutingOverrideThreshold float64

	// Retrieval
	MaxRetrievedDocuments int
	DealershipInfoEnabled bool

	// Handover
	DefaultHandoverRecipients []string
	ReconcileBatchSize        int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "driveline"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "dealership"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     LLMProvider(getEnv("DRIVELINE_LLM_PROVIDER", "openai")),
		LLMModel:        getEnv("DRIVELINE_LLM_MODEL", "gpt-4o-mini"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		BedrockModelID:  getEnv("DRIVELINE_BEDROCK_MODEL", "anthropic.claude-3-haiku-20240307-v1:0"),

		FallbackProvider: LLMProvider(getEnv("DRIVELINE_FALLBACK_PROVIDER", "ollama")),
		FallbackModel:    getEnv("DRIVELINE_FALLBACK_MODEL", "llama3.1:8b"),

		HybridEnabled:  getEnv("DRIVELINE_HYBRID_ENABLED", "true") == "true",
		PrimaryTimeout: getDuration("DRIVELINE_PRIMARY_TIMEOUT", 30*time.Second),
		MaxRetries:     getInt("DRIVELINE_MAX_RETRIES", 3),
		PrimaryPreference: getList("DRIVELINE_PRIMARY_PREFERENCE",
			[]string{"inventory", "pricing", "availability", "stock", "in stock"}),

		AdvancedRoutingEnabled:   getEnv("DRIVELINE_ADVANCED_ROUTING", "true") == "true",
		RoutingOverrideThreshold: getFloat("DRIVELINE_OVERRIDE_THRESHOLD", 0.7),

		MaxRetrievedDocuments: getInt("DRIVELINE_MAX_DOCUMENTS", 10),
		DealershipInfoEnabled: getEnv("DRIVELINE_DEALERSHIP_INFO", "true") == "true",

		DefaultHandoverRecipients: getList("DRIVELINE_HANDOVER_RECIPIENTS", nil),
		ReconcileBatchSize:        getInt("DRIVELINE_RECONCILE_BATCH", 25),

		LogFile:  getEnv("DRIVELINE_LOG_FILE", "/tmp/driveline.log"),
		LogLevel: parseLogLevel(getEnv("DRIVELINE_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
