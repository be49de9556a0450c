package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config структура конфигурации
type Config struct {
	Port              string
	RealtimeAddr      string
	JWTSecret         string
	DatabaseURL       string
	DatabaseConfig    DatabaseConfig
	RedisConfig       RedisConfig
	StoreDriver       string // postgres или memory
	RunMigrations     bool
	ConfirmMaxRetries int
	AppEnv            string
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig содержит конфигурацию Redis для рассылки сообщений между инстансами.
// Пустой Addr означает, что используется брокер в памяти процесса.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// LoadConfig загружает переменные из .env
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️ .env файл не найден, используем переменные окружения")
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}
	return cfg
}

// FromEnv собирает конфигурацию из переменных окружения без загрузки .env
func FromEnv() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "flippy_user"),
		Password: getEnv("PGPASSWORD", "flippy_pass"),
		Name:     getEnv("PGDATABASE", "flippy"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	// Формируем строку подключения к базе данных, если она не задана целиком
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	runMigrations, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("RUN_MIGRATIONS: %w", err)
	}

	maxRetries, err := strconv.Atoi(getEnv("CONFIRM_MAX_RETRIES", "5"))
	if err != nil {
		return nil, fmt.Errorf("CONFIRM_MAX_RETRIES: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		RealtimeAddr:   getEnv("REALTIME_ADDR", ":8081"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		DatabaseURL:    dbURL,
		DatabaseConfig: dbConfig,
		RedisConfig: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		StoreDriver:       getEnv("STORE_DRIVER", StoreDriverPostgres),
		RunMigrations:     runMigrations,
		ConfirmMaxRetries: maxRetries,
		AppEnv:            getEnv("APP_ENV", "production"), // По умолчанию production
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("не задана обязательная переменная JWT_SECRET")
	}
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		return nil, fmt.Errorf("неизвестный STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.ConfirmMaxRetries < 0 {
		return nil, fmt.Errorf("CONFIRM_MAX_RETRIES не может быть отрицательным")
	}

	return cfg, nil
}

// getEnv получает переменную окружения или использует дефолтное значение
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
