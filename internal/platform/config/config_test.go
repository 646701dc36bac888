package config

import (
	"errors"
	"testing"
	"time"
)

func getenvFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(getenvFrom(map[string]string{
		"FIRESTORE_PROJECT_ID": "demo-project",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if !cfg.Idempotency.Enabled || cfg.Idempotency.TTL != 24*time.Hour {
		t.Errorf("idempotency = %+v, want enabled with 24h ttl", cfg.Idempotency)
	}
	if cfg.Events.Enabled {
		t.Error("events should be disabled by default")
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Requests != 30 {
		t.Errorf("rate limit = %+v, want enabled with 30 requests", cfg.RateLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(getenvFrom(map[string]string{
		"PORT":                    "9090",
		"LOG_LEVEL":               "debug",
		"FIRESTORE_EMULATOR_HOST": "localhost:8088",
		"EVENTS_ENABLED":          "true",
		"EVENTS_TOPIC":            "orders",
		"RATE_LIMIT_WINDOW":       "30s",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Events.Enabled || cfg.Events.Topic != "orders" {
		t.Errorf("events = %+v, want enabled with topic orders", cfg.Events)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("rate limit window = %v, want 30s", cfg.RateLimit.Window)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "bad port",
			env:   map[string]string{"FIRESTORE_PROJECT_ID": "p", "PORT": "not-a-port"},
			field: "PORT",
		},
		{
			name:  "events enabled without topic",
			env:   map[string]string{"FIRESTORE_PROJECT_ID": "p", "EVENTS_ENABLED": "true"},
			field: "EVENTS_TOPIC",
		},
		{
			name:  "missing project",
			env:   map[string]string{},
			field: "FIRESTORE_PROJECT_ID",
		},
		{
			name:  "bad idempotency ttl",
			env:   map[string]string{"FIRESTORE_PROJECT_ID": "p", "IDEMPOTENCY_TTL": "-1h"},
			field: "IDEMPOTENCY_TTL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(getenvFrom(tc.env))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}
