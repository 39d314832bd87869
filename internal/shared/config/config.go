package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	ShutdownTimeout time.Duration

	LLMProvider       string
	LLMModel          string
	LLMMaxTokens      int
	LLMRetryAttempts  int
	LLMRetryBaseDelay time.Duration
	AnthropicAPIKey   string
	AnthropicBaseURL  string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	GeminiBaseURL     string

	GenerationTimeout time.Duration
	StreamChunkBytes  int
	SchemaValidation  bool

	RateLimitGeneratePerMin float64
	RateLimitGenerateBurst  int

	PDFRenderEnabled bool
	ChromePath       string
	PDFTimeout       time.Duration

	DatabaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL not set in production, generation history stays in memory")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		LLMProvider:       normalizeProvider(getEnv("LLM_PROVIDER", "anthropic")),
		LLMModel:          getEnv("LLM_MODEL", ""),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 4000),
		LLMRetryAttempts:  getEnvInt("LLM_RETRY_ATTEMPTS", 2),
		LLMRetryBaseDelay: getEnvDuration("LLM_RETRY_BASE_DELAY", 300*time.Millisecond),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL:  getEnv("ANTHROPIC_BASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", ""),

		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 120*time.Second),
		StreamChunkBytes:  getEnvInt("STREAM_CHUNK_BYTES", 512),
		SchemaValidation:  getEnvBool("SCHEMA_VALIDATION", true),

		RateLimitGeneratePerMin: float64(getEnvInt("RATE_LIMIT_GENERATE_PER_MIN", 10)),
		RateLimitGenerateBurst:  getEnvInt("RATE_LIMIT_GENERATE_BURST", 3),

		PDFRenderEnabled: getEnvBool("PDF_RENDER_ENABLED", false),
		ChromePath:       getEnv("CHROME_PATH", ""),
		PDFTimeout:       getEnvDuration("PDF_TIMEOUT", 60*time.Second),

		DatabaseURL: dbURL,
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		// Bare integers are seconds.
		if secs, convErr := strconv.Atoi(raw); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	case "stub", "fake":
		return "stub"
	case "none", "placeholder":
		return "placeholder"
	default:
		return "anthropic"
	}
}
