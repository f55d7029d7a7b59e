package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TDS modes for the per-symbol withholding offset.
const (
	TDSModeLast = "last"
	TDSModeSum  = "sum"
)

type AppConfig struct {
	Port               string
	DatabasePath       string
	LogLevel           string
	MaxUploadSizeBytes int64
	AllowedOrigin      string

	// Tax engine
	TaxRate       float64
	SurchargeRate float64
	TDSMode       string

	// Price resolution
	PriceLookupTimeout     time.Duration
	PriceLookupConcurrency int
	PriceCacheTTL          time.Duration

	// Reporting
	ReportCacheTTL   time.Duration
	ReportDecimals   int
	QuantityDecimals int

	RateLimitRPS   float64
	RateLimitBurst int
}

var Cfg *AppConfig

// Default returns the configuration used when no environment is set.
func Default() *AppConfig {
	return &AppConfig{
		Port:                   "8080",
		DatabasePath:           "./cryptotax.db",
		LogLevel:               "info",
		MaxUploadSizeBytes:     10 * 1024 * 1024,
		AllowedOrigin:          "http://localhost:3000",
		TaxRate:                0.3,
		SurchargeRate:          0.04,
		TDSMode:                TDSModeLast,
		PriceLookupTimeout:     5 * time.Second,
		PriceLookupConcurrency: 4,
		PriceCacheTTL:          30 * time.Minute,
		ReportCacheTTL:         15 * time.Minute,
		ReportDecimals:         2,
		QuantityDecimals:       6,
		RateLimitRPS:           10,
		RateLimitBurst:         30,
	}
}

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")
	def := Default()

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", strconv.FormatInt(def.MaxUploadSizeBytes, 10))
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil || maxUploadSizeBytes <= 0 {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = def.MaxUploadSizeBytes
	}

	tdsMode := strings.ToLower(getEnv("TDS_MODE", def.TDSMode))
	if tdsMode != TDSModeLast && tdsMode != TDSModeSum {
		log.Printf("WARNING: Invalid TDS_MODE '%s'. Using default '%s'.", tdsMode, def.TDSMode)
		tdsMode = def.TDSMode
	}

	concurrency := getEnvAsInt("PRICE_LOOKUP_CONCURRENCY", def.PriceLookupConcurrency)
	if concurrency < 1 {
		log.Printf("WARNING: PRICE_LOOKUP_CONCURRENCY must be at least 1, got %d. Using 1.", concurrency)
		concurrency = 1
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", def.Port),
		DatabasePath:       getEnv("DATABASE_PATH", def.DatabasePath),
		LogLevel:           getEnv("LOG_LEVEL", def.LogLevel),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", def.AllowedOrigin),

		TaxRate:       getEnvAsFloat("TAX_RATE", def.TaxRate),
		SurchargeRate: getEnvAsFloat("SURCHARGE_RATE", def.SurchargeRate),
		TDSMode:       tdsMode,

		PriceLookupTimeout:     getEnvAsDuration("PRICE_LOOKUP_TIMEOUT", def.PriceLookupTimeout),
		PriceLookupConcurrency: concurrency,
		PriceCacheTTL:          getEnvAsDuration("PRICE_CACHE_TTL", def.PriceCacheTTL),

		ReportCacheTTL:   getEnvAsDuration("REPORT_CACHE_TTL", def.ReportCacheTTL),
		ReportDecimals:   getEnvAsInt("REPORT_DECIMALS", def.ReportDecimals),
		QuantityDecimals: getEnvAsInt("QUANTITY_DECIMALS", def.QuantityDecimals),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", def.RateLimitRPS),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", def.RateLimitBurst),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, TaxRate=%.4f, Surcharge=%.4f, TDSMode=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.TaxRate, Cfg.SurchargeRate, Cfg.TDSMode)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid float value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
