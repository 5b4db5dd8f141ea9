package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

type Config struct {
	LogLevel string

	APIBase    string
	AdminToken string
	Folder     string

	MinTextLength       int
	MaxFileSize         int64
	ClassifierRulesFile string
	DryRun              bool

	OCREnabled       bool
	OCRLanguage      string
	OCRDPI           int
	OCRRasterizerBin string
	OCRRecognizerBin string

	XLSEnabled bool

	UploadTimeoutSeconds int

	BreakerEnabled          bool
	BreakerMinRequests      int
	BreakerFailureRatio     float64
	BreakerOpenTimeoutSec   int
	BreakerHalfOpenMaxCalls int
	UploadRatePerSec        float64
	UploadRateBurst         int

	NATSURL     string
	NATSSubject string

	MetricsTextfile string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		APIBase:    mustEnv("APP_BASE_URL", "http://localhost:3000"),
		AdminToken: mustEnv("ADMIN_API_TOKEN", ""),
		Folder:     mustEnv("INGEST_FOLDER", ""),

		MinTextLength:       mustEnvInt("MIN_TEXT_LENGTH", 20),
		MaxFileSize:         mustEnvInt64("MAX_FILE_SIZE_BYTES", 100<<20),
		ClassifierRulesFile: mustEnv("CLASSIFIER_RULES_FILE", ""),
		DryRun:              mustEnvBool("INGEST_DRY_RUN", false),

		OCREnabled:       mustEnvBool("OCR_ENABLED", true),
		OCRLanguage:      mustEnv("OCR_LANGUAGE", "por"),
		OCRDPI:           mustEnvInt("OCR_DPI", 200),
		OCRRasterizerBin: mustEnv("OCR_RASTERIZER_BIN", "pdftoppm"),
		OCRRecognizerBin: mustEnv("OCR_RECOGNIZER_BIN", "tesseract"),

		XLSEnabled: mustEnvBool("XLS_ENABLED", true),

		UploadTimeoutSeconds: mustEnvInt("UPLOAD_TIMEOUT_SECONDS", 60),

		BreakerEnabled:          mustEnvBool("UPLOAD_BREAKER_ENABLED", false),
		BreakerMinRequests:      mustEnvInt("UPLOAD_BREAKER_MIN_REQUESTS", 5),
		BreakerFailureRatio:     mustEnvFloat("UPLOAD_BREAKER_FAILURE_RATIO", 0.8),
		BreakerOpenTimeoutSec:   mustEnvInt("UPLOAD_BREAKER_OPEN_TIMEOUT_SECONDS", 30),
		BreakerHalfOpenMaxCalls: mustEnvInt("UPLOAD_BREAKER_HALF_OPEN_MAX_CALLS", 1),
		UploadRatePerSec:        mustEnvFloat("UPLOAD_RATE_PER_SEC", 0),
		UploadRateBurst:         mustEnvInt("UPLOAD_RATE_BURST", 1),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "knowledge.ingested"),

		MetricsTextfile: mustEnv("METRICS_TEXTFILE", ""),
	}
}

// Validate checks the values a run cannot start without.
func (c Config) Validate() error {
	var problems []error
	if strings.TrimSpace(c.AdminToken) == "" && !c.DryRun {
		problems = append(problems, errors.New("ADMIN_API_TOKEN is required"))
	}
	if strings.TrimSpace(c.Folder) == "" {
		problems = append(problems, errors.New("INGEST_FOLDER is required"))
	} else if info, err := os.Stat(c.Folder); err != nil {
		problems = append(problems, fmt.Errorf("INGEST_FOLDER: %w", err))
	} else if !info.IsDir() {
		problems = append(problems, fmt.Errorf("INGEST_FOLDER: %s is not a directory", c.Folder))
	}
	if u, err := url.Parse(c.APIBase); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Errorf("APP_BASE_URL: invalid url %q", c.APIBase))
	}
	if c.MinTextLength < 1 {
		problems = append(problems, fmt.Errorf("MIN_TEXT_LENGTH must be >= 1, got %d", c.MinTextLength))
	}
	if len(problems) == 0 {
		return nil
	}
	return domain.WrapError(domain.ErrInvalidConfig, "validate config", errors.Join(problems...))
}

func (c Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutSeconds) * time.Second
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
