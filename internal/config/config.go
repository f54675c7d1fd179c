// Package config loads the storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

var ErrMissingEnv = errors.New("required environment variable not set")

type Config struct {
	HTTPPort        string
	GRPCPort        string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CatalogDBPath   string
	RedisAddr       string
	CatalogCacheTTL time.Duration

	MongoURI        string
	MongoDatabase   string
	OpeningHoursSet string

	Postgres PostgresConfig

	KafkaBrokers []string
	KafkaTopic   string

	MailerSendAPIKey string
	SiteTitle        string
	AdminEmail       string
	PrinterEmail     string

	PostHogAPIKey   string
	PostHogEndpoint string

	SiteURL  string
	ShopPath string

	OrderConfirmationSecret string
	CartCookieSecret        string
	CookieSecure            bool

	PickupMinOffset int
	PickupMaxOffset int
	Location        *time.Location
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Load reads an optional .env file and then the environment. Variables already
// set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCPort:        getEnv("GRPC_PORT", "50051"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		CatalogDBPath: getEnv("CATALOG_DB_PATH", "catalog.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "storefront"),
		OpeningHoursSet: getEnv("OPENING_HOURS_SET", "default"),

		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "orders"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "order-events"),

		MailerSendAPIKey: os.Getenv("MAILERSEND_API_KEY"),
		SiteTitle:        getEnv("SITE_TITLE", "Bageri Leve"),
		AdminEmail:       os.Getenv("ORDER_ADMIN_EMAIL"),
		PrinterEmail:     os.Getenv("ORDER_ADMIN_PRINTER_EMAIL"),

		PostHogAPIKey:   os.Getenv("POSTHOG_PROJECT_API_KEY"),
		PostHogEndpoint: getEnv("POSTHOG_HOST", "https://eu.i.posthog.com"),

		SiteURL:  getEnv("SITE_URL", "http://localhost:8080"),
		ShopPath: getEnv("SHOP_PATH", "/bestall"),

		OrderConfirmationSecret: os.Getenv("ORDER_CONFIRMATION_SECRET"),
		CartCookieSecret:        os.Getenv("CART_COOKIE_SECRET"),
	}

	var err error
	if cfg.Postgres.Port, err = getEnvInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.PickupMinOffset, err = getEnvInt("PICKUP_DATE_MIN_OFFSET", 1); err != nil {
		return nil, err
	}
	if cfg.PickupMaxOffset, err = getEnvInt("PICKUP_DATE_MAX_OFFSET", 14); err != nil {
		return nil, err
	}
	if cfg.PickupMinOffset > cfg.PickupMaxOffset {
		return nil, fmt.Errorf("PICKUP_DATE_MIN_OFFSET %d is after PICKUP_DATE_MAX_OFFSET %d", cfg.PickupMinOffset, cfg.PickupMaxOffset)
	}
	if cfg.CatalogCacheTTL, err = time.ParseDuration(getEnv("CATALOG_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("CATALOG_CACHE_TTL: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(getEnv("TIME_ZONE", "Europe/Stockholm")); err != nil {
		return nil, fmt.Errorf("TIME_ZONE: %w", err)
	}

	if cfg.OrderConfirmationSecret == "" {
		return nil, fmt.Errorf("ORDER_CONFIRMATION_SECRET: %w", ErrMissingEnv)
	}
	if cfg.CartCookieSecret == "" {
		return nil, fmt.Errorf("CART_COOKIE_SECRET: %w", ErrMissingEnv)
	}
	if len(cfg.CartCookieSecret) < 32 {
		return nil, errors.New("CART_COOKIE_SECRET must be at least 32 bytes")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
