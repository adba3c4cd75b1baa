package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Submission transports
const (
	TransportSimulated = "simulated"
	TransportHTTP      = "http"
	TransportSMTP      = "smtp"
)

type Config struct {
	LogLevel string
	// Submission
	SubmitTransport  string // simulated | http | smtp
	SubmitEndpoint   string // Applications endpoint for the http transport
	SubmitTimeout    time.Duration
	SimulatedLatency time.Duration
	AutoCloseDelay   time.Duration
	RequireCV        bool // Attachment-bearing variant of the form
	// Resilience
	SubmitRatePerMinute int
	BreakerMaxFailures  int
	BreakerOpenTimeout  time.Duration
	// SMTP Configuration
	SMTPHost            string
	SMTPPort            string
	SMTPUsername        string
	SMTPPassword        string
	SMTPFromEmail       string // Verified sender email (different from SMTP login)
	ApplicationsEmailTo string
}

func LoadConfig() (*Config, error) {
	// Load .env file (only present in local development)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SubmitTransport:  strings.ToLower(getEnv("SUBMIT_TRANSPORT", TransportSimulated)),
		SubmitEndpoint:   strings.TrimRight(getEnv("SUBMIT_ENDPOINT", ""), "/"),
		SubmitTimeout:    time.Duration(getEnvInt("SUBMIT_TIMEOUT_SECONDS", 30)) * time.Second,
		SimulatedLatency: getEnvMillis("SIMULATED_LATENCY_MS", 2000),
		AutoCloseDelay:   getEnvMillis("AUTO_CLOSE_DELAY_MS", 3000),
		RequireCV:        getEnvBool("REQUIRE_CV", false),
		// Resilience (with sensible defaults)
		SubmitRatePerMinute: getEnvInt("SUBMIT_RATE_PER_MINUTE", 3),
		BreakerMaxFailures:  getEnvInt("BREAKER_MAX_FAILURES", 3),
		BreakerOpenTimeout:  time.Duration(getEnvInt("BREAKER_OPEN_SECONDS", 60)) * time.Second,
		// SMTP Configuration
		SMTPHost:            getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:       getEnv("SMTP_FROM_EMAIL", "noreply@kingsquant.com"),
		ApplicationsEmailTo: getEnv("APPLICATIONS_EMAIL_TO", "contact@kingsquant.com"),
	}

	switch cfg.SubmitTransport {
	case TransportSimulated, TransportHTTP, TransportSMTP:
	default:
		log.Printf("WARNING: unknown SUBMIT_TRANSPORT %q, using %q", cfg.SubmitTransport, TransportSimulated)
		cfg.SubmitTransport = TransportSimulated
	}

	if cfg.SubmitTransport == TransportHTTP && cfg.SubmitEndpoint == "" {
		log.Println("WARNING: SUBMIT_ENDPOINT is missing. Submissions will fail.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvMillis reads a millisecond count; negative values fall back too
func getEnvMillis(key string, fallback int) time.Duration {
	ms := getEnvInt(key, fallback)
	if ms < 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
