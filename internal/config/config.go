package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Llm      LLMConfig
	Audit    AuditConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	ServiceSecret      string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection      string
	CacheTTLSeconds int
}

type SessionConfig struct {
	Backend  string // "memory" or "redis"
	Limit    int
	RedisURL string
}

type LLMConfig struct {
	ProviderOrder string // comma separated, e.g. "groq,gemini"
	GroqAPIKey    string
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string
}

type AuditConfig struct {
	NatsURL string
	Topic   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			ServiceSecret:      getEnv("AGENT_SERVICE_SECRET", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			CacheTTLSeconds: getEnvAsInt("DATA_CACHE_TTL_SECONDS", 30),
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_BACKEND", "memory"),
			Limit:    getEnvAsInt("SESSION_LIMIT", 100),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Llm: LLMConfig{
			ProviderOrder: getEnv("LLM_PROVIDER_ORDER", "groq,gemini"),
			GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
			GeminiAPIKey:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		},
		Audit: AuditConfig{
			NatsURL: getEnv("NATS_URL", "nats://localhost:4222"),
			Topic:   getEnv("AUDIT_TOPIC", "AGENT_REQUEST_PROCESSED"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
