package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Firestore   FirestoreConfig
	Firebase    FirebaseConfig
	Events      EventsConfig
	Idempotency IdempotencyConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type FirestoreConfig struct {
	ProjectID       string
	EmulatorHost    string
	CredentialsFile string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	AdminRole       string
}

type EventsConfig struct {
	Enabled bool
	Topic   string
}

type IdempotencyConfig struct {
	Enabled    bool
	Collection string
	TTL        time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// ValidationError reports a configuration field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Server: ServerConfig{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: env("LOG_LEVEL", "info")},
		Firestore: FirestoreConfig{
			ProjectID:       env("FIRESTORE_PROJECT_ID", env("GOOGLE_CLOUD_PROJECT", "")),
			EmulatorHost:    env("FIRESTORE_EMULATOR_HOST", ""),
			CredentialsFile: env("FIRESTORE_CREDENTIALS_FILE", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:       env("FIREBASE_PROJECT_ID", env("GOOGLE_CLOUD_PROJECT", "")),
			CredentialsFile: env("FIREBASE_CREDENTIALS_FILE", ""),
			AdminRole:       env("FIREBASE_ADMIN_ROLE", "admin"),
		},
		Events: EventsConfig{
			Topic: env("EVENTS_TOPIC", ""),
		},
		Idempotency: IdempotencyConfig{
			Collection: env("IDEMPOTENCY_COLLECTION", "idempotency_keys"),
		},
	}

	port, err := parseInt(env("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, &ValidationError{Field: "PORT", Reason: "must be a valid port number"}
	}
	cfg.Server.Port = port

	if v := env("SERVER_READ_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, &ValidationError{Field: "SERVER_READ_TIMEOUT", Reason: "must be a positive duration"}
		}
		cfg.Server.ReadTimeout = d
	}
	if v := env("SERVER_WRITE_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, &ValidationError{Field: "SERVER_WRITE_TIMEOUT", Reason: "must be a positive duration"}
		}
		cfg.Server.WriteTimeout = d
	}

	cfg.Events.Enabled, err = parseBool(env("EVENTS_ENABLED", "false"))
	if err != nil {
		return nil, &ValidationError{Field: "EVENTS_ENABLED", Reason: "must be true or false"}
	}
	if cfg.Events.Enabled && cfg.Events.Topic == "" {
		return nil, &ValidationError{Field: "EVENTS_TOPIC", Reason: "is required when events are enabled"}
	}

	cfg.Idempotency.Enabled, err = parseBool(env("IDEMPOTENCY_ENABLED", "true"))
	if err != nil {
		return nil, &ValidationError{Field: "IDEMPOTENCY_ENABLED", Reason: "must be true or false"}
	}
	ttl, err := time.ParseDuration(env("IDEMPOTENCY_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, &ValidationError{Field: "IDEMPOTENCY_TTL", Reason: "must be a positive duration"}
	}
	cfg.Idempotency.TTL = ttl

	cfg.RateLimit.Enabled, err = parseBool(env("RATE_LIMIT_ENABLED", "true"))
	if err != nil {
		return nil, &ValidationError{Field: "RATE_LIMIT_ENABLED", Reason: "must be true or false"}
	}
	requests, err := parseInt(env("RATE_LIMIT_REQUESTS", "30"))
	if err != nil || requests <= 0 {
		return nil, &ValidationError{Field: "RATE_LIMIT_REQUESTS", Reason: "must be a positive integer"}
	}
	cfg.RateLimit.Requests = requests
	window, err := time.ParseDuration(env("RATE_LIMIT_WINDOW", "1m"))
	if err != nil || window <= 0 {
		return nil, &ValidationError{Field: "RATE_LIMIT_WINDOW", Reason: "must be a positive duration"}
	}
	cfg.RateLimit.Window = window

	if cfg.Firestore.ProjectID == "" && cfg.Firestore.EmulatorHost == "" {
		return nil, &ValidationError{Field: "FIRESTORE_PROJECT_ID", Reason: "is required"}
	}

	return cfg, nil
}

func parseInt(v string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(v))
}

func parseBool(v string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(v))
}
