package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected IsProd() to be true")
	}

	if cfg.ProductAPI.BaseURL != "https://api.techhub.example" {
		t.Fatalf("unexpected product API base URL: %q", cfg.ProductAPI.BaseURL)
	}
	if cfg.ProductAPI.Timeout != 30*time.Second {
		t.Fatalf("expected default product API timeout 30s, got %v", cfg.ProductAPI.Timeout)
	}

	if cfg.Media.MinImages != 4 || cfg.Media.MaxImages != 10 {
		t.Fatalf("unexpected media limits min=%d max=%d", cfg.Media.MinImages, cfg.Media.MaxImages)
	}
	if cfg.Media.MaxUploadBytes() != 10*1024*1024 {
		t.Fatalf("unexpected upload cap %d", cfg.Media.MaxUploadBytes())
	}

	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without a URL")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsInvertedImageLimits(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("TECHHUB_MEDIA_MIN_IMAGES", "8")
	t.Setenv("TECHHUB_MEDIA_MAX_IMAGES", "4")

	if _, err := Load(); err == nil {
		t.Fatal("expected max < min image limits to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvProductAPIURL, "https://api.techhub.example")
	t.Setenv(EnvGCPProjectID, "project-123")
	t.Setenv(EnvGCSBucket, "techhub-products")
}
