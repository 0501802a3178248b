package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env != "dev" {
		t.Errorf("expected env=dev, got %q", cfg.Env)
	}
	if cfg.HTTP.Addr != ":3001" {
		t.Errorf("expected http addr :3001, got %q", cfg.HTTP.Addr)
	}
	if cfg.GRPC.Addr != "" {
		t.Errorf("expected grpc disabled, got %q", cfg.GRPC.Addr)
	}
	if cfg.Dedup.Window != 2*time.Second {
		t.Errorf("expected dedup window 2s, got %s", cfg.Dedup.Window)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected token ttl 24h, got %s", cfg.Auth.TokenTTL)
	}
	if !cfg.Auth.Enforce {
		t.Error("expected auth enforcement on by default")
	}
	if cfg.Client.APIBaseURL != "http://localhost:3001/api" {
		t.Errorf("unexpected api url %q", cfg.Client.APIBaseURL)
	}
	if cfg.RabbitMQ.Queue != "access.recorded" {
		t.Errorf("unexpected queue %q", cfg.RabbitMQ.Queue)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"CAMPUSGATE_ENV":          "PROD",
		"CAMPUSGATE_DEDUP_WINDOW": "500ms",
		"CAMPUSGATE_REDIS_ADDR":   "redis:6379",
		"CAMPUSGATE_API_URL":      "https://gate.example.edu/api/",
		"CAMPUSGATE_AUTH_ENFORCE": "false",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("expected env=prod, got %q", cfg.Env)
	}
	if cfg.Dedup.Window != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", cfg.Dedup.Window)
	}
	if cfg.Dedup.RedisAddr != "redis:6379" {
		t.Errorf("unexpected redis addr %q", cfg.Dedup.RedisAddr)
	}
	if cfg.Client.APIBaseURL != "https://gate.example.edu/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Client.APIBaseURL)
	}
	if cfg.Auth.Enforce {
		t.Error("expected enforcement off")
	}
}

func TestLoad_UnknownEnvFallsBackToDev(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"CAMPUSGATE_ENV": "staging",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("expected dev, got %q", cfg.Env)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"CAMPUSGATE_DEDUP_WINDOW": "soon",
	}))
	if err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestValidate_RequiresSecret(t *testing.T) {
	cfg := Config{Auth: AuthConfig{TokenTTL: time.Hour}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without jwt secret")
	}
	cfg.Auth.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
