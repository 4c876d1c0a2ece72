package config

import (
	"os"
	"strconv"
	"time"
)

// AppConfig содержит настройки приложения из переменных окружения
type AppConfig struct {
	Ollama   OllamaConfig
	Sessions SessionsConfig
}

// OllamaConfig содержит настройки локального inference-сервиса
type OllamaConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// SessionsConfig содержит настройки хранения сессий
type SessionsConfig struct {
	Dir           string
	FallbackDepth int
}

// LoadAppConfig загружает настройки приложения из переменных окружения
func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Ollama: OllamaConfig{
			URL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:   getEnv("OLLAMA_MODEL", "llama3.1:8b"),
			Timeout: getEnvAsDuration("OLLAMA_TIMEOUT", 5*time.Second),
		},
		Sessions: SessionsConfig{
			Dir:           getEnv("SESSIONS_DIR", "sessions"),
			FallbackDepth: getEnvAsInt("FALLBACK_DEPTH", 2),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
