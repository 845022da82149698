package config

import (
	"log/slog"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.API.Port)
	}
	if cfg.AI.MaxAttempts != 3 || cfg.AI.BackoffStep != time.Second {
		t.Fatalf("unexpected retry defaults: %d %s", cfg.AI.MaxAttempts, cfg.AI.BackoffStep)
	}
	if cfg.Export.DefaultTemplate != "Modern" {
		t.Fatalf("unexpected default template %q", cfg.Export.DefaultTemplate)
	}
	if cfg.Renderer.Engine != "rod" {
		t.Fatalf("unexpected renderer engine %q", cfg.Renderer.Engine)
	}
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("AI_BACKOFF_STEP", "250ms")
	t.Setenv("RENDERER_ENGINE", "chromedp")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.API.Port)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.BackoffStep != 250*time.Millisecond {
		t.Fatalf("unexpected ai config: %+v", cfg.AI)
	}
	if cfg.Renderer.Engine != "chromedp" {
		t.Fatalf("unexpected engine %q", cfg.Renderer.Engine)
	}
	if got := cfg.API.Origins(); len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"provider": {"AI_PROVIDER", "llama"},
		"engine":   {"RENDERER_ENGINE", "wkhtmltopdf"},
		"locale":   {"EXPORT_LOCALE", "fr"},
		"attempts": {"AI_MAX_ATTEMPTS", "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(env[0], env[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", env[0], env[1])
			}
		})
	}
}

func TestLoadRequiresMinioCredentials(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing minio credentials to fail")
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (Config{LogLevel: in}).SlogLevel(); got != want {
			t.Fatalf("SlogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
