package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            int
	DataDir         string
	LogLevel        string
	LogEncoding     string
	CacheType       string
	CacheMaxEntries int
	CacheFileDir    string
	Decoder         string
	VipsMaxCacheMB  int
	VipsConcurrency int
	SingleFlight    bool
	StrictStatus    bool
	HTTPTimeout     time.Duration
	MaxImageBytes   int64
	DNSCacheRefresh time.Duration
	WarmupURLs      []string
	WarmupWorkers   int
	PlaceholderFile string
	AllowedOrigin   string
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", "/data")

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		DataDir:         dataDir,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogEncoding:     getEnv("LOG_ENCODING", "json"),
		CacheType:       getEnv("CACHE", "memory"),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 1000),
		CacheFileDir:    getEnv("CACHE_FILE_DIR", filepath.Join(dataDir, "cache")),
		Decoder:         getEnv("DECODER", "vips"),
		VipsMaxCacheMB:  getEnvInt("VIPS_MAX_CACHE_MB", 64),
		VipsConcurrency: getEnvInt("VIPS_CONCURRENCY", 1),
		SingleFlight:    getEnvBool("SINGLE_FLIGHT", false),
		StrictStatus:    getEnvBool("STRICT_STATUS", false),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 0), // 0 keeps transport defaults
		MaxImageBytes:   getEnvInt64("MAX_IMAGE_BYTES", 0),
		DNSCacheRefresh: getEnvDuration("DNS_CACHE_REFRESH", 5*time.Minute),
		WarmupURLs:      getEnvList("WARMUP_URLS"),
		WarmupWorkers:   getEnvInt("WARMUP_WORKERS", 2),
		PlaceholderFile: getEnv("PLACEHOLDER_FILE", ""),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", ""),
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma or whitespace separated value
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}
