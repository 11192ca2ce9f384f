package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
	SessionStoreSQLite   = "sqlite"
)

// EngineConfig is shared by every binary that builds the routing engine.
type EngineConfig struct {
	BotName             string
	IntentsPath         string
	VectorizerPath      string
	ModelPath           string
	ConfidenceThreshold float64
	WeatherBaseURL      string
	WeatherAPIKey       string
	WeatherDefaultCity  string
	WeatherTimeout      time.Duration
	WorldTimeBaseURL    string
	WorldTimeTimeout    time.Duration
	TimezoneMatchCutoff float64
	LogLevel            slog.Level
}

type ServerConfig struct {
	EngineConfig
	HTTPAddr           string
	CORSAllowedOrigins []string
	SessionStore       string
	SessionTTL         time.Duration
	DBDSN              string
	SQLitePath         string
	MQTTBrokerURL      string
	MQTTClientID       string
	MQTTUsername       string
	MQTTPassword       string
	MQTTTopicPrefix    string
}

func LoadServerConfig() (ServerConfig, error) {
	engine, err := loadEngineConfig()
	if err != nil {
		return ServerConfig{}, err
	}
	cfg := ServerConfig{
		EngineConfig:       engine,
		HTTPAddr:           getenvDefault("MOYEN_HTTP_ADDR", ":5000"),
		CORSAllowedOrigins: splitList(getenvDefault("CORS_ALLOWED_ORIGINS", "https://adebola-stephen.github.io")),
		SessionStore:       strings.ToLower(getenvDefault("SESSION_STORE", SessionStoreMemory)),
		SessionTTL:         time.Duration(getenvIntDefault("SESSION_TTL_SECONDS", 1800)) * time.Second,
		DBDSN:              os.Getenv("DB_DSN"),
		SQLitePath:         getenvDefault("SQLITE_PATH", "moyen-sessions.db"),
		MQTTBrokerURL:      os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:       getenvDefault("MQTT_CLIENT_ID", "moyen-server"),
		MQTTUsername:       os.Getenv("MQTT_USERNAME"),
		MQTTPassword:       os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix:    getenvDefault("MQTT_TOPIC_PREFIX", "moyen"),
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreSQLite:
	case SessionStorePostgres:
		if cfg.DBDSN == "" {
			return ServerConfig{}, fmt.Errorf("DB_DSN is required when SESSION_STORE=postgres")
		}
	default:
		return ServerConfig{}, fmt.Errorf("unsupported SESSION_STORE: %s", cfg.SessionStore)
	}
	return cfg, nil
}

// LoadCLIConfig loads the engine settings only; the CLI keeps sessions in
// memory.
func LoadCLIConfig() (EngineConfig, error) {
	return loadEngineConfig()
}

// ClassifierPaths locates the two classifier artifacts.
type ClassifierPaths struct {
	VectorizerPath string
	ModelPath      string
}

// LoadClassifierPaths reads only the artifact locations, for tools that
// classify without building the whole engine.
func LoadClassifierPaths() ClassifierPaths {
	return ClassifierPaths{
		VectorizerPath: getenvDefault("VECTORIZER_PATH", "vectorizer.json"),
		ModelPath:      getenvDefault("MODEL_PATH", "model.json"),
	}
}

func loadEngineConfig() (EngineConfig, error) {
	paths := LoadClassifierPaths()
	cfg := EngineConfig{
		BotName:             getenvDefault("BOT_NAME", "Moyennn"),
		IntentsPath:         getenvDefault("INTENTS_PATH", "chatbot_intents.json"),
		VectorizerPath:      paths.VectorizerPath,
		ModelPath:           paths.ModelPath,
		ConfidenceThreshold: getenvFloatDefault("CONFIDENCE_THRESHOLD", 0.75),
		WeatherBaseURL:      getenvDefault("WEATHER_BASE_URL", "http://api.openweathermap.org/data/2.5/weather"),
		WeatherAPIKey:       os.Getenv("WEATHER_API_KEY"),
		WeatherDefaultCity:  getenvDefault("WEATHER_DEFAULT_CITY", "Lagos"),
		WeatherTimeout:      time.Duration(getenvIntDefault("WEATHER_TIMEOUT_SECONDS", 5)) * time.Second,
		WorldTimeBaseURL:    strings.TrimRight(getenvDefault("WORLDTIME_BASE_URL", "http://worldtimeapi.org/api/timezone"), "/"),
		WorldTimeTimeout:    time.Duration(getenvIntDefault("WORLDTIME_TIMEOUT_SECONDS", 5)) * time.Second,
		TimezoneMatchCutoff: getenvFloatDefault("TIMEZONE_MATCH_CUTOFF", 0.6),
		LogLevel:            parseLevel(getenvDefault("LOG_LEVEL", "info")),
	}

	if cfg.WeatherAPIKey == "" {
		return EngineConfig{}, fmt.Errorf("WEATHER_API_KEY is required")
	}
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		return EngineConfig{}, fmt.Errorf("CONFIDENCE_THRESHOLD must be in (0,1], got %v", cfg.ConfidenceThreshold)
	}
	if cfg.TimezoneMatchCutoff <= 0 || cfg.TimezoneMatchCutoff > 1 {
		return EngineConfig{}, fmt.Errorf("TIMEZONE_MATCH_CUTOFF must be in (0,1], got %v", cfg.TimezoneMatchCutoff)
	}
	if cfg.WeatherTimeout <= 0 || cfg.WorldTimeTimeout <= 0 {
		return EngineConfig{}, fmt.Errorf("lookup timeouts must be positive")
	}
	return cfg, nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvFloatDefault(key string, val float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return val
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
