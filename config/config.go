package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Storage
	DBPath string

	// HTTP API
	ListenAddr string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Collection run configuration
	ScrapeInterval time.Duration
	RequestDelay   time.Duration

	// Business filter: inclusive model-year bound and the price floor below
	// which a listing is assumed to be parts, not a car
	YearFrom int
	YearTo   int
	MinPrice float64

	// Marketplace base URLs
	MarktplaatsURL   string
	TweedehandsURL   string
	KleinanzeigenURL string
	AutoScout24NLURL string
	AutoScout24DEURL string
	AutoScout24BEURL string
	MobileDeURL      string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	intervalHours, _ := strconv.Atoi(getEnv("SCRAPE_INTERVAL_HOURS", "24"))
	delaySeconds, _ := strconv.Atoi(getEnv("REQUEST_DELAY_SECONDS", "2"))
	yearFrom, _ := strconv.Atoi(getEnv("YEAR_FROM", "1979"))
	yearTo, _ := strconv.Atoi(getEnv("YEAR_TO", "1986"))
	minPrice, _ := strconv.ParseFloat(getEnv("MIN_PRICE", "500"), 64)

	return Config{
		DBPath:               getEnv("DB_PATH", "oldtimer_ads.db"),
		ListenAddr:           getEnv("LISTEN_ADDR", ":5000"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "advertisements"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ScrapeInterval:       time.Duration(intervalHours) * time.Hour,
		RequestDelay:         time.Duration(delaySeconds) * time.Second,
		YearFrom:             yearFrom,
		YearTo:               yearTo,
		MinPrice:             minPrice,
		MarktplaatsURL:       getEnv("MARKTPLAATS_URL", "https://www.marktplaats.nl"),
		TweedehandsURL:       getEnv("TWEEDEHANDS_URL", "https://www.2dehands.be"),
		KleinanzeigenURL:     getEnv("KLEINANZEIGEN_URL", "https://www.kleinanzeigen.de"),
		AutoScout24NLURL:     getEnv("AUTOSCOUT24_NL_URL", "https://www.autoscout24.nl"),
		AutoScout24DEURL:     getEnv("AUTOSCOUT24_DE_URL", "https://www.autoscout24.de"),
		AutoScout24BEURL:     getEnv("AUTOSCOUT24_BE_URL", "https://www.autoscout24.be"),
		MobileDeURL:          getEnv("MOBILE_DE_URL", "https://suchen.mobile.de"),
		Environment:          getEnv("FINDER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.YearFrom > c.YearTo {
		return fmt.Errorf("invalid year bound: YEAR_FROM %d > YEAR_TO %d", c.YearFrom, c.YearTo)
	}
	if c.ScrapeInterval <= 0 {
		return fmt.Errorf("SCRAPE_INTERVAL_HOURS must be positive")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("REQUEST_DELAY_SECONDS must not be negative")
	}
	if c.MinPrice < 0 {
		return fmt.Errorf("MIN_PRICE must not be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
