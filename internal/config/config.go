package config

import (
	"os"
	"strconv"

	"sleeptrend/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the analysis-archive connection settings.
// The archive is optional: an empty URL disables persistence and the
// engine runs purely in-memory.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	SleepFile       string
	PerformanceFile string
}

// AnalysisConfig holds the engine policy defaults. Every threshold here is
// a policy constant surfaced to the environment, not a magic literal.
type AnalysisConfig struct {
	LagDays            int
	MinSampleSize      int
	PThreshold         float64
	MinEffectThreshold float64
	ConfidenceLevel    float64
	QualitySplit       float64
	MinTrendPoints     int
	RemoveOutliers     bool
	LowerIsBetter      bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Data: DataConfig{
			SleepFile:       os.Getenv("SLEEP_FILE"),
			PerformanceFile: os.Getenv("PERFORMANCE_FILE"),
		},
		Analysis: AnalysisConfig{
			LagDays:            getEnvInt("ANALYSIS_LAG_DAYS", 1),
			MinSampleSize:      getEnvInt("ANALYSIS_MIN_SAMPLES", 7),
			PThreshold:         getEnvFloat("ANALYSIS_P_THRESHOLD", 0.05),
			MinEffectThreshold: getEnvFloat("ANALYSIS_MIN_EFFECT", 0.3),
			ConfidenceLevel:    getEnvFloat("ANALYSIS_CONFIDENCE", 0.95),
			QualitySplit:       getEnvFloat("ANALYSIS_QUALITY_SPLIT", 70),
			MinTrendPoints:     getEnvInt("ANALYSIS_MIN_TREND_POINTS", 5),
			RemoveOutliers:     getEnvBool("ANALYSIS_REMOVE_OUTLIERS", true),
			LowerIsBetter:      getEnvBool("ANALYSIS_LOWER_IS_BETTER", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.LagDays < 0 {
		return errors.ConfigInvalid("ANALYSIS_LAG_DAYS must not be negative")
	}
	if c.Analysis.PThreshold <= 0 || c.Analysis.PThreshold >= 1 {
		return errors.ConfigInvalid("ANALYSIS_P_THRESHOLD must be in (0, 1)")
	}
	if c.Analysis.ConfidenceLevel <= 0 || c.Analysis.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid("ANALYSIS_CONFIDENCE must be in (0, 1)")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
