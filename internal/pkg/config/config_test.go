package config

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/sunbooking/booking-system/internal/core/domain"
)

func validEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":  strings.Repeat("0f", 64),
		"JWT_TTL":     "24h",
		"SESSION_KEY": strings.Repeat("k", 32),
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(validEnv()))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %v", cfg.JWT.TTL)
	}
	if cfg.Security.SweepSchedule != "@every 5m" || cfg.Security.AuditWorkers != 4 {
		t.Fatalf("unexpected security defaults: %+v", cfg.Security)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported as production")
	}
}

func TestLoadFrom_ConfigurationErrors(t *testing.T) {
	cases := map[string]func(env map[string]string){
		"missing secret":      func(env map[string]string) { delete(env, "JWT_SECRET") },
		"secret not hex":      func(env map[string]string) { env["JWT_SECRET"] = "not-hex-at-all" },
		"secret too short":    func(env map[string]string) { env["JWT_SECRET"] = "abcd" },
		"missing ttl":         func(env map[string]string) { delete(env, "JWT_TTL") },
		"zero ttl":            func(env map[string]string) { env["JWT_TTL"] = "0s" },
		"malformed ttl":       func(env map[string]string) { env["JWT_TTL"] = "soon" },
		"short session key":   func(env map[string]string) { env["SESSION_KEY"] = "short" },
		"half bootstrap pair": func(env map[string]string) { env["BOOTSTRAP_ADMIN_EMAIL"] = "root@example.com" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			env := validEnv()
			mutate(env)
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
