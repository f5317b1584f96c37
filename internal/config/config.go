package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration. Everything comes from the
// environment; the product catalog may additionally be overridden by a YAML
// file (CATALOG_PATH).
type AppConfig struct {
	CustomerToken string
	AdminToken    string
	// AdminID is the only Telegram identity allowed into the admin bot and
	// the target of all customer-side notifications.
	AdminID int64

	HTTPAddr string
	DBPath   string

	// Redis is optional: an empty addr disables the inbound message limiter.
	RedisAddr string
	RedisDB   int

	MsgRateLimit  int
	MsgRateWindow time.Duration

	Catalog Catalog
}

// Load reads and validates configuration, falling back to defaults where a
// variable is unset. Missing bot credentials are an error here, not later.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		CustomerToken: getEnv("CUSTOMER_BOT_TOKEN", ""),
		AdminToken:    getEnv("ADMIN_BOT_TOKEN", ""),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "shop_bots.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisDB:       0,
		MsgRateLimit:  30,
		MsgRateWindow: time.Minute,
	}

	if cfg.CustomerToken == "" {
		return AppConfig{}, fmt.Errorf("CUSTOMER_BOT_TOKEN must not be empty")
	}
	if cfg.AdminToken == "" {
		return AppConfig{}, fmt.Errorf("ADMIN_BOT_TOKEN must not be empty")
	}

	adminID, err := strconv.ParseInt(getEnv("ADMIN_ID", ""), 10, 64)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid ADMIN_ID: %w", err)
	}
	if adminID <= 0 {
		return AppConfig{}, fmt.Errorf("ADMIN_ID must be > 0")
	}
	cfg.AdminID = adminID

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("MSG_RATE_LIMIT", cfg.MsgRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid MSG_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("MSG_RATE_LIMIT must be > 0")
	}
	cfg.MsgRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("MSG_RATE_WINDOW_SEC", int(cfg.MsgRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid MSG_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("MSG_RATE_WINDOW_SEC must be > 0")
	}
	cfg.MsgRateWindow = time.Duration(rateWindowSec) * time.Second

	catalogPath := getEnv("CATALOG_PATH", "")
	if catalogPath == "" {
		cfg.Catalog = DefaultCatalog()
	} else {
		catalog, err := LoadCatalog(catalogPath)
		if err != nil {
			return AppConfig{}, fmt.Errorf("load catalog: %w", err)
		}
		cfg.Catalog = catalog
	}

	return cfg, nil
}

// getEnv reads a string variable, returning fallback when unset or blank.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt reads an integer variable, returning fallback when unset.
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
