package config

import (
	"os"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "WORD_TIMEOUT", "EXPORT_ENABLED"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("should load defaults: %v", err)
	}
	if c.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", c.Port)
	}
	if c.WordTimeout != 8*time.Second {
		t.Fatalf("expected word timeout 8s, got %s", c.WordTimeout)
	}
	if c.ExportEnabled {
		t.Fatal("export should be off by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DEFAULT_PROVIDER", "ollama")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TITLE_TIMEOUT", "250ms")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("should load config: %v", err)
	}
	if c.Port != "3000" || c.RedisAddr != "localhost:6379" {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.TitleTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", c.TitleTimeout)
	}
	if c.AI().Provider != "ollama" {
		t.Fatalf("expected ollama provider, got %s", c.AI().Provider)
	}
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("WORD_TIMEOUT", "soon")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for an unparsable duration")
	}
}
